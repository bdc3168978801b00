package graph

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "repo",
		Category:    "node",
		Version:     "v1",
		Description: "Repository node with the statements converted from its properties",
		Factory:     func() any { return &NodePayload{} },
	})
	if err != nil {
		panic("failed to register NodePayload: " + err.Error())
	}
}

// NodeType is the message type for repository node payloads.
var NodeType = message.Type{Domain: "repo", Category: "node", Version: "v1"}

// NodePayload implements message.Payload and graph.Graphable for node
// ingestion. The entity ID is the node's subject IRI.
type NodePayload struct {
	ID          string           `json:"id"`
	Path        string           `json:"path,omitempty"`
	PrimaryType string           `json:"primary_type,omitempty"`
	TripleData  []message.Triple `json:"triples"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (p *NodePayload) EntityID() string          { return p.ID }
func (p *NodePayload) Triples() []message.Triple { return p.TripleData }
func (p *NodePayload) Schema() message.Type      { return NodeType }

func (p *NodePayload) Validate() error {
	if p.ID == "" {
		return errors.New("entity ID is required")
	}
	for _, t := range p.TripleData {
		if t.Subject != p.ID {
			return errors.New("triple subject " + t.Subject + " does not match entity " + p.ID)
		}
	}
	return nil
}

func (p *NodePayload) MarshalJSON() ([]byte, error) {
	type Alias NodePayload
	return json.Marshal((*Alias)(p))
}

func (p *NodePayload) UnmarshalJSON(data []byte) error {
	type Alias NodePayload
	return json.Unmarshal(data, (*Alias)(p))
}
