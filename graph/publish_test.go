package graph

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semrepo/config"
	"github.com/c360studio/semrepo/convert"
	"github.com/c360studio/semrepo/identifier"
	"github.com/c360studio/semrepo/rdf"
	"github.com/c360studio/semrepo/repository"
)

type sent struct {
	stream  bool
	subject string
	data    []byte
}

type recordingTransport struct {
	sent []sent
	err  error
}

func (r *recordingTransport) Publish(_ context.Context, subject string, data []byte) error {
	r.sent = append(r.sent, sent{subject: subject, data: data})
	return r.err
}

func (r *recordingTransport) PublishToStream(_ context.Context, subject string, data []byte) error {
	r.sent = append(r.sent, sent{stream: true, subject: subject, data: data})
	return r.err
}

func newFixture(t *testing.T) (*repository.MemoryStore, *convert.PropertyToTriple, *identifier.PathConverter) {
	t.Helper()
	store := repository.NewMemoryStore()
	_, err := store.AddNode("/N", "page")
	require.NoError(t, err)
	require.NoError(t, store.SetProperty("/N", "title", repository.StringValue("Hello")))
	require.NoError(t, store.SetMultiProperty("/N", "tags", []repository.Value{
		repository.StringValue("a"), repository.StringValue("b"),
	}))
	ids := identifier.NewPathConverter("urn:node:", store)
	return store, convert.NewPropertyToTriple(store, ids), ids
}

func TestPublishNodeDestinations(t *testing.T) {
	tests := []struct {
		kind       config.DestinationKind
		wantStream bool
	}{
		{config.DestinationQueue, true},
		{config.DestinationTopic, false},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			store, tr, ids := newFixture(t)
			transport := &recordingTransport{}
			pub := NewPublisher(transport, tr, ids, PublisherConfig{Destination: tt.kind})

			node, err := store.Node(context.Background(), "/N")
			require.NoError(t, err)
			n, err := pub.PublishNode(context.Background(), node)
			require.NoError(t, err)
			assert.Equal(t, 3, n)

			require.Len(t, transport.sent, 1)
			assert.Equal(t, tt.wantStream, transport.sent[0].stream)
			assert.Equal(t, GraphIngestSubject, transport.sent[0].subject)
		})
	}
}

func TestPublishNodePayload(t *testing.T) {
	store, tr, ids := newFixture(t)
	transport := &recordingTransport{}
	pub := NewPublisher(transport, tr, ids, PublisherConfig{Subject: "graph.ingest.test"})
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	pub.now = func() time.Time { return fixed }

	node, err := store.Node(context.Background(), "/N")
	require.NoError(t, err)
	_, err = pub.PublishNode(context.Background(), node)
	require.NoError(t, err)

	require.Len(t, transport.sent, 1)
	assert.Equal(t, "graph.ingest.test", transport.sent[0].subject)

	var envelope struct {
		Payload NodePayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(transport.sent[0].data, &envelope))
	p := envelope.Payload
	assert.Equal(t, "urn:node:N", p.ID)
	assert.Equal(t, "/N", p.Path)
	assert.Equal(t, "page", p.PrimaryType)
	require.Len(t, p.TripleData, 3)
	assert.Equal(t, "urn:prop:tags", p.TripleData[0].Predicate)
	assert.Equal(t, "a", p.TripleData[0].Object)
	assert.Equal(t, "urn:prop:title", p.TripleData[2].Predicate)
	assert.Equal(t, Source, p.TripleData[2].Source)
}

func TestPublishNodeConversionFailure(t *testing.T) {
	store, tr, ids := newFixture(t)
	require.NoError(t, store.SetProperty("/N", "count", repository.Value{Type: repository.TypeLong, Lexical: "many"}))
	transport := &recordingTransport{}
	pub := NewPublisher(transport, tr, ids, PublisherConfig{})

	node, err := store.Node(context.Background(), "/N")
	require.NoError(t, err)
	_, err = pub.PublishNode(context.Background(), node)
	require.Error(t, err)
	assert.True(t, repository.IsAccessError(err))
	assert.Empty(t, transport.sent, "nothing is sent when conversion fails")
}

func TestPublishTransportError(t *testing.T) {
	store, tr, ids := newFixture(t)
	boom := errors.New("no responders")
	pub := NewPublisher(&recordingTransport{err: boom}, tr, ids, PublisherConfig{})

	node, err := store.Node(context.Background(), "/N")
	require.NoError(t, err)
	_, err = pub.PublishNode(context.Background(), node)
	assert.ErrorIs(t, err, boom)
}

func TestPublishWithoutTransport(t *testing.T) {
	_, tr, ids := newFixture(t)
	pub := NewPublisher(nil, tr, ids, PublisherConfig{})
	err := pub.PublishEntity(context.Background(), rdf.NewIRI("urn:node:N"), repository.Node{Path: "/N"}, nil)
	assert.NoError(t, err)
}

func TestNodePayloadValidate(t *testing.T) {
	assert.Error(t, (&NodePayload{}).Validate())

	p := &NodePayload{ID: "urn:node:N"}
	assert.NoError(t, p.Validate())
	assert.Equal(t, NodeType, p.Schema())

	p.TripleData = append(p.TripleData, rdf.NewTriple(rdf.NewIRI("urn:node:M"), rdf.NewIRI("urn:p"), rdf.NewLiteral("x")).Message(Source, time.Now()))
	assert.Error(t, p.Validate())
}
