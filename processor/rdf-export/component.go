// Package rdfexport provides a streaming output component that subscribes
// to repository node ingestion messages and serializes each node to RDF.
package rdfexport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semrepo/export"
	"github.com/c360studio/semrepo/graph"
	"github.com/c360studio/semrepo/rdf"
	"github.com/c360studio/semstreams/component"
	ssgraph "github.com/c360studio/semstreams/graph"
	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"
	"github.com/nats-io/nats.go/jetstream"
)

// Renderer turns one ingestion message into a serialized document.
type Renderer struct {
	format  export.Format
	profile export.Profile
	types   *export.TypeAsserter
	baseIRI string
}

// NewRenderer creates a renderer from component configuration.
func NewRenderer(cfg Config) *Renderer {
	profile := cfg.GetProfile()
	return &Renderer{
		format:  cfg.GetFormat(),
		profile: profile,
		types:   export.NewTypeAsserter(profile, cfg.GetTypeNamespace()),
		baseIRI: cfg.BaseIRI,
	}
}

// Render decodes a BaseMessage, prepends type statements when the payload
// is a repository node and serializes the result.
func (r *Renderer) Render(data []byte) (*Payload, error) {
	var baseMsg message.BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		return nil, fmt.Errorf("unmarshal base message: %w", err)
	}

	graphable, ok := baseMsg.Payload().(ssgraph.Graphable)
	if !ok {
		return nil, fmt.Errorf("payload %s does not implement Graphable", baseMsg.Type())
	}

	entityID := graphable.EntityID()
	var path string
	var triples []message.Triple
	if node, ok := graphable.(*graph.NodePayload); ok {
		path = node.Path
		now := time.Now()
		for _, t := range r.types.Triples(rdf.NewIRI(entityID), node.PrimaryType) {
			triples = append(triples, t.Message(graph.Source, now))
		}
	}
	triples = append(triples, graphable.Triples()...)

	content, err := export.SerializeMessages(triples, r.format, r.baseIRI)
	if err != nil {
		return nil, err
	}
	return &Payload{
		EntityID: entityID,
		Path:     path,
		Format:   string(r.format),
		Profile:  string(r.profile),
		Content:  content,
	}, nil
}

// Component implements the rdf-export output processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger
	renderer   *Renderer

	inputSubject  string
	inputStream   string
	outputSubject string

	running   bool
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc

	messagesProcessed atomic.Int64
	renderErrors      atomic.Int64
	publishErrors     atomic.Int64
	lastActivityMu    sync.RWMutex
	lastActivity      time.Time
}

// NewComponent creates a new rdf-export output component.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	var config Config
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if config.Ports == nil {
		config = DefaultConfig()
		if err := json.Unmarshal(rawConfig, &config); err != nil {
			return nil, fmt.Errorf("unmarshal config with defaults: %w", err)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	inputSubject := graph.GraphIngestSubject
	inputStream := "GRAPH"
	outputSubject := "graph.export.rdf"

	if config.Ports != nil {
		if len(config.Ports.Inputs) > 0 {
			inputSubject = config.Ports.Inputs[0].Subject
			inputStream = config.Ports.Inputs[0].StreamName
		}
		if len(config.Ports.Outputs) > 0 {
			outputSubject = config.Ports.Outputs[0].Subject
		}
	}

	return &Component{
		name:          "rdf-export",
		config:        config,
		natsClient:    deps.NATSClient,
		logger:        deps.GetLogger(),
		renderer:      NewRenderer(config),
		inputSubject:  inputSubject,
		inputStream:   inputStream,
		outputSubject: outputSubject,
	}, nil
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	return nil
}

// Start begins consuming node messages and producing RDF documents.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("component already running")
	}
	if c.natsClient == nil {
		c.mu.Unlock()
		return fmt.Errorf("NATS client required")
	}

	c.running = true
	c.startTime = time.Now()

	consumeCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.mu.Unlock()

	consumerCfg := natsclient.StreamConsumerConfig{
		StreamName:    c.inputStream,
		ConsumerName:  "semrepo-rdf-export",
		FilterSubject: c.inputSubject,
		DeliverPolicy: "new",
		AckPolicy:     "explicit",
		MaxDeliver:    3,
		AckWait:       10 * time.Second,
	}

	err := c.natsClient.ConsumeStreamWithConfig(consumeCtx, consumerCfg, c.handleMessage)
	if err != nil {
		c.mu.Lock()
		c.running = false
		c.cancel = nil
		c.mu.Unlock()
		cancel()
		return fmt.Errorf("start consumer: %w", err)
	}

	c.logger.Info("rdf-export started",
		"format", c.renderer.format,
		"profile", c.renderer.profile,
		"input", c.inputSubject,
		"output", c.outputSubject)

	return nil
}

func (c *Component) handleMessage(ctx context.Context, msg jetstream.Msg) {
	doc, err := c.renderer.Render(msg.Data())
	if err != nil {
		c.logger.Warn("Failed to render node",
			"subject", msg.Subject(),
			"error", err)
		c.renderErrors.Add(1)
		// A payload that cannot be rendered will not render on redelivery.
		_ = msg.Term()
		return
	}

	out := message.NewBaseMessage(DocumentType, doc, graph.Source)
	data, err := json.Marshal(out)
	if err != nil {
		c.logger.Warn("Failed to marshal document", "entity_id", doc.EntityID, "error", err)
		c.renderErrors.Add(1)
		_ = msg.Term()
		return
	}

	if err := c.natsClient.PublishToStream(ctx, c.outputSubject, data); err != nil {
		c.logger.Warn("Failed to publish RDF document",
			"entity_id", doc.EntityID,
			"subject", c.outputSubject,
			"error", err)
		c.publishErrors.Add(1)
		_ = msg.Nak()
		return
	}

	_ = msg.Ack()
	c.messagesProcessed.Add(1)
	c.updateLastActivity()

	c.logger.Debug("Exported node to RDF",
		"entity_id", doc.EntityID,
		"path", doc.Path,
		"output_bytes", len(doc.Content))
}

// Stop gracefully stops the component.
func (c *Component) Stop(_ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	c.running = false
	c.logger.Info("rdf-export stopped",
		"messages_processed", c.messagesProcessed.Load(),
		"render_errors", c.renderErrors.Load(),
		"publish_errors", c.publishErrors.Load())

	return nil
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "rdf-export",
		Type:        "output",
		Description: "Serializes published repository nodes as RDF documents",
		Version:     "1.0.0",
	}
}

// InputPorts returns configured input port definitions.
func (c *Component) InputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}
	ports := make([]component.Port, len(c.config.Ports.Inputs))
	for i, portDef := range c.config.Ports.Inputs {
		ports[i] = buildPort(portDef, component.DirectionInput)
	}
	return ports
}

// OutputPorts returns configured output port definitions.
func (c *Component) OutputPorts() []component.Port {
	if c.config.Ports == nil {
		return []component.Port{}
	}
	ports := make([]component.Port, len(c.config.Ports.Outputs))
	for i, portDef := range c.config.Ports.Outputs {
		ports[i] = buildPort(portDef, component.DirectionOutput)
	}
	return ports
}

func buildPort(portDef component.PortDefinition, direction component.Direction) component.Port {
	port := component.Port{
		Name:        portDef.Name,
		Direction:   direction,
		Required:    portDef.Required,
		Description: portDef.Description,
	}
	if portDef.Type == "jetstream" {
		port.Config = component.JetStreamPort{
			StreamName: portDef.StreamName,
			Subjects:   []string{portDef.Subject},
		}
	} else {
		port.Config = component.NATSPort{
			Subject: portDef.Subject,
		}
	}
	return port
}

// ConfigSchema returns the configuration schema.
func (c *Component) ConfigSchema() component.ConfigSchema {
	return rdfExportSchema
}

// Health returns the current health status.
func (c *Component) Health() component.HealthStatus {
	c.mu.RLock()
	running := c.running
	startTime := c.startTime
	c.mu.RUnlock()

	status := "stopped"
	if running {
		status = "running"
	}
	return component.HealthStatus{
		Healthy:    running,
		LastCheck:  time.Now(),
		ErrorCount: int(c.renderErrors.Load() + c.publishErrors.Load()),
		Uptime:     time.Since(startTime),
		Status:     status,
	}
}

// DataFlow returns current data flow metrics.
func (c *Component) DataFlow() component.FlowMetrics {
	return component.FlowMetrics{
		LastActivity: c.getLastActivity(),
	}
}

func (c *Component) updateLastActivity() {
	c.lastActivityMu.Lock()
	c.lastActivity = time.Now()
	c.lastActivityMu.Unlock()
}

func (c *Component) getLastActivity() time.Time {
	c.lastActivityMu.RLock()
	defer c.lastActivityMu.RUnlock()
	return c.lastActivity
}
