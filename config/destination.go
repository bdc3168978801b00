package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DestinationKind selects how statements are delivered to the graph.
type DestinationKind string

const (
	// DestinationTopic publishes with core NATS; subscribers that are not
	// listening miss the message.
	DestinationTopic DestinationKind = "topic"

	// DestinationQueue publishes to a JetStream stream and waits for the ack.
	DestinationQueue DestinationKind = "queue"
)

// ParseDestinationKind parses a destination kind, ignoring case.
func ParseDestinationKind(s string) (DestinationKind, error) {
	switch DestinationKind(strings.ToLower(strings.TrimSpace(s))) {
	case DestinationTopic:
		return DestinationTopic, nil
	case DestinationQueue:
		return DestinationQueue, nil
	default:
		return "", fmt.Errorf("unknown destination kind %q (valid: topic, queue)", s)
	}
}

func (k DestinationKind) String() string {
	return string(k)
}

// UnmarshalYAML accepts any letter case and rejects unknown kinds.
func (k *DestinationKind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseDestinationKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
