package identifier

import (
	"context"
	"errors"
	"testing"

	"github.com/c360studio/semrepo/rdf"
	"github.com/c360studio/semrepo/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T) *repository.MemoryStore {
	t.Helper()
	s := repository.NewMemoryStore()
	for _, p := range []string{"/content", "/content/a b", "/N"} {
		_, err := s.AddNode(p, "page")
		require.NoError(t, err)
	}
	return s
}

func TestPathConverter_Reverse(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)

	tests := []struct {
		name string
		base string
		path string
		want string
	}{
		{"urn base", "urn:node:", "/N", "urn:node:N"},
		{"http base", "https://example.org/rest/", "/content", "https://example.org/rest/content"},
		{"escaped segment", "urn:node:", "/content/a b", "urn:node:content/a%20b"},
		{"root", "https://example.org/rest/", "/", "https://example.org/rest/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewPathConverter(tt.base, s)
			got, err := c.Reverse(ctx, repository.Node{ID: "x", Path: tt.path})
			require.NoError(t, err)
			assert.Equal(t, rdf.NewIRI(tt.want), got)
		})
	}

	_, err := NewPathConverter("urn:node:", s).Reverse(ctx, repository.Node{ID: "x"})
	assert.Error(t, err)
}

func TestPathConverter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	c := NewPathConverter("https://example.org/rest/", s)

	for _, p := range []string{"/", "/content", "/content/a b", "/N"} {
		t.Run(p, func(t *testing.T) {
			node, err := s.Node(ctx, p)
			require.NoError(t, err)
			subject, err := c.Reverse(ctx, node)
			require.NoError(t, err)
			back, err := c.Forward(ctx, subject)
			require.NoError(t, err)
			assert.Equal(t, node, back)
		})
	}
}

func TestPathConverter_Forward(t *testing.T) {
	ctx := context.Background()
	s := newSession(t)
	c := NewPathConverter("https://example.org/rest/", s)

	node, err := c.Forward(ctx, rdf.NewIRI("https://example.org/rest/content#frag"))
	require.NoError(t, err)
	assert.Equal(t, "/content", node.Path)

	_, err = c.Forward(ctx, rdf.NewIRI("https://other.org/content"))
	assert.True(t, errors.Is(err, ErrOutOfDomain))

	_, err = c.Forward(ctx, rdf.NewLiteral("https://example.org/rest/content"))
	assert.True(t, errors.Is(err, ErrOutOfDomain))

	_, err = c.Forward(ctx, rdf.NewIRI("https://example.org/rest/missing"))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.True(t, c.IsInDomain(rdf.NewIRI("https://example.org/rest/x")))
	assert.False(t, c.IsInDomain(rdf.NewIRI("urn:other")))
}

func TestSubjectFunc(t *testing.T) {
	var r SubjectResolver = SubjectFunc(func(_ context.Context, n repository.Node) (rdf.Term, error) {
		return rdf.NewIRI("urn:node:" + string(n.ID)), nil
	})
	got, err := r.Reverse(context.Background(), repository.Node{ID: "N"})
	require.NoError(t, err)
	assert.Equal(t, rdf.NewIRI("urn:node:N"), got)
}
