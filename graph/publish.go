// Package graph publishes converted repository nodes for graph ingestion.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/c360studio/semrepo/config"
	"github.com/c360studio/semrepo/convert"
	"github.com/c360studio/semrepo/identifier"
	"github.com/c360studio/semrepo/rdf"
	"github.com/c360studio/semrepo/repository"
	"github.com/c360studio/semstreams/message"
)

// GraphIngestSubject is the default subject for graph ingestion.
const GraphIngestSubject = "graph.ingest.entity"

// Source is recorded on every published triple.
const Source = "semrepo"

// Transport sends encoded messages. *natsclient.Client satisfies it.
type Transport interface {
	Publish(ctx context.Context, subject string, data []byte) error
	PublishToStream(ctx context.Context, subject string, data []byte) error
}

// Publisher sends one NodePayload per node.
type Publisher struct {
	transport   Transport
	transform   *convert.PropertyToTriple
	subjects    identifier.SubjectResolver
	subject     string
	destination config.DestinationKind
	logger      *slog.Logger
	now         func() time.Time
}

// PublisherConfig configures a Publisher.
type PublisherConfig struct {
	// Subject defaults to GraphIngestSubject.
	Subject string
	// Destination defaults to DestinationQueue.
	Destination config.DestinationKind
	Logger      *slog.Logger
}

// NewPublisher creates a publisher. subjects must name nodes the same way
// the transform does.
func NewPublisher(transport Transport, transform *convert.PropertyToTriple, subjects identifier.SubjectResolver, cfg PublisherConfig) *Publisher {
	p := &Publisher{
		transport:   transport,
		transform:   transform,
		subjects:    subjects,
		subject:     cfg.Subject,
		destination: cfg.Destination,
		logger:      cfg.Logger,
		now:         time.Now,
	}
	if p.subject == "" {
		p.subject = GraphIngestSubject
	}
	if p.destination == "" {
		p.destination = config.DestinationQueue
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// PublishNode converts every property of node and publishes the result as
// one entity. It returns the number of statements sent. Nothing is sent if
// conversion fails.
func (p *Publisher) PublishNode(ctx context.Context, node repository.Node) (int, error) {
	triples, err := convert.Collect(p.transform.NodeTriples(ctx, node))
	if err != nil {
		return 0, fmt.Errorf("convert node %s: %w", node.Path, err)
	}
	subject, err := p.subjects.Reverse(ctx, node)
	if err != nil {
		return 0, fmt.Errorf("convert node %s: %w", node.Path, repository.NewAccessError(convert.StepSubject, err))
	}
	if err := p.PublishEntity(ctx, subject, node, triples); err != nil {
		return 0, err
	}
	return len(triples), nil
}

// PublishEntity publishes pre-converted statements for node under subject.
func (p *Publisher) PublishEntity(ctx context.Context, subject rdf.Term, node repository.Node, triples []rdf.Triple) error {
	if p.transport == nil {
		return nil // Skip publishing if no transport (graceful degradation)
	}

	now := p.now()
	payload := &NodePayload{
		ID:          subject.Value,
		Path:        node.Path,
		PrimaryType: node.PrimaryType,
		TripleData:  make([]message.Triple, len(triples)),
		UpdatedAt:   now,
	}
	for i, t := range triples {
		payload.TripleData[i] = t.Message(Source, now)
	}
	if err := payload.Validate(); err != nil {
		return fmt.Errorf("node %s: %w", node.Path, err)
	}

	msg := message.NewBaseMessage(NodeType, payload, Source)
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal node entity: %w", err)
	}

	switch p.destination {
	case config.DestinationTopic:
		err = p.transport.Publish(ctx, p.subject, data)
	default:
		err = p.transport.PublishToStream(ctx, p.subject, data)
	}
	if err != nil {
		return fmt.Errorf("publish node entity: %w", err)
	}

	p.logger.Debug("Published node",
		"path", node.Path,
		"entity_id", payload.ID,
		"triples", len(triples),
		"destination", p.destination)
	return nil
}
