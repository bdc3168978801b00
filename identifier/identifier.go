// Package identifier maps repository nodes to and from graph subjects.
//
// The two directions are separate capabilities so that consumers depend only
// on the one they use: graph conversion needs SubjectResolver alone, while
// request routing from a subject back to content needs NodeResolver.
package identifier

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/c360studio/semrepo/rdf"
	"github.com/c360studio/semrepo/repository"
)

// ErrOutOfDomain is returned when a subject does not belong to the
// converter's base.
var ErrOutOfDomain = errors.New("subject outside repository domain")

// SubjectResolver maps a node to its subject term.
type SubjectResolver interface {
	Reverse(ctx context.Context, node repository.Node) (rdf.Term, error)
}

// NodeResolver maps a subject term back to a node.
type NodeResolver interface {
	Forward(ctx context.Context, subject rdf.Term) (repository.Node, error)
}

// Converter is the bidirectional node identity mapping.
type Converter interface {
	SubjectResolver
	NodeResolver
}

// SubjectFunc adapts a function to SubjectResolver.
type SubjectFunc func(ctx context.Context, node repository.Node) (rdf.Term, error)

// Reverse calls f(ctx, node).
func (f SubjectFunc) Reverse(ctx context.Context, node repository.Node) (rdf.Term, error) {
	return f(ctx, node)
}

// PathConverter derives subjects from node paths: subject = base + path.
// The root node maps to the bare base.
//
//	base "urn:node:"                  /content/a -> <urn:node:content/a>
//	base "https://example.org/rest/"  /content/a -> <https://example.org/rest/content/a>
type PathConverter struct {
	base    string
	session repository.Session
}

// NewPathConverter creates a converter rooted at base. The session is used
// by Forward to resolve paths back to nodes.
func NewPathConverter(base string, session repository.Session) *PathConverter {
	return &PathConverter{base: base, session: session}
}

// Base returns the converter's subject prefix.
func (c *PathConverter) Base() string {
	return c.base
}

// Reverse implements SubjectResolver. It performs no I/O.
func (c *PathConverter) Reverse(_ context.Context, node repository.Node) (rdf.Term, error) {
	if node.Path == "" {
		return rdf.Term{}, fmt.Errorf("node %s has no path", node.ID)
	}
	rel := strings.TrimPrefix(node.Path, "/")
	if rel == "" {
		return rdf.NewIRI(c.base), nil
	}
	return rdf.NewIRI(c.base + escapePath(rel)), nil
}

// Forward implements NodeResolver.
func (c *PathConverter) Forward(ctx context.Context, subject rdf.Term) (repository.Node, error) {
	if !subject.IsIRI() || !strings.HasPrefix(subject.Value, c.base) {
		return repository.Node{}, fmt.Errorf("%w: %s", ErrOutOfDomain, subject)
	}
	rel := strings.TrimPrefix(subject.Value, c.base)
	if i := strings.IndexAny(rel, "#?"); i >= 0 {
		rel = rel[:i]
	}
	p, err := url.PathUnescape(rel)
	if err != nil {
		return repository.Node{}, fmt.Errorf("%w: %s: %v", ErrOutOfDomain, subject, err)
	}
	return c.session.Node(ctx, "/"+strings.TrimSuffix(p, "/"))
}

// IsInDomain reports whether the subject falls under the converter's base.
func (c *PathConverter) IsInDomain(subject rdf.Term) bool {
	return subject.IsIRI() && strings.HasPrefix(subject.Value, c.base)
}

func escapePath(rel string) string {
	segments := strings.Split(rel, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
