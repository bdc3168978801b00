// Package convert turns repository properties into graph statements.
//
// PropertyToTriple is the entry point. It composes three mappings, each a
// separate collaborator: node to subject (identifier.SubjectResolver),
// property name to predicate (PropertyConverter) and stored value to object
// (ValueConverter).
package convert

import (
	"net/url"
	"strings"

	"github.com/c360studio/semrepo/rdf"
	"github.com/c360studio/semstreams/vocabulary"
)

// DefaultPropertyNamespace is used for property names with no registered
// predicate and no known prefix.
const DefaultPropertyNamespace = "urn:prop:"

// PropertyConverter maps property names to predicate terms. It is pure and
// safe for concurrent use.
type PropertyConverter struct {
	defaultNamespace string
	namespaces       map[string]string
}

// NewPropertyConverter creates a converter. namespaces maps prefixes (as in
// "dc:title") to namespace IRIs; an empty defaultNamespace falls back to
// DefaultPropertyNamespace.
func NewPropertyConverter(defaultNamespace string, namespaces map[string]string) *PropertyConverter {
	if defaultNamespace == "" {
		defaultNamespace = DefaultPropertyNamespace
	}
	ns := make(map[string]string, len(namespaces))
	for prefix, iri := range namespaces {
		ns[prefix] = iri
	}
	return &PropertyConverter{defaultNamespace: defaultNamespace, namespaces: ns}
}

// Forward returns the predicate for a property name. Names are resolved in
// order: registered vocabulary predicates, known namespace prefixes,
// absolute IRIs, then the default namespace.
func (c *PropertyConverter) Forward(name string) rdf.Term {
	if meta := vocabulary.GetPredicateMetadata(name); meta != nil && meta.StandardIRI != "" {
		return rdf.NewIRI(meta.StandardIRI)
	}
	if prefix, local, ok := strings.Cut(name, ":"); ok {
		if iri, known := c.namespaces[prefix]; known {
			return rdf.NewIRI(iri + local)
		}
	}
	if isAbsoluteIRI(name) {
		return rdf.NewIRI(name)
	}
	return rdf.NewIRI(c.defaultNamespace + url.PathEscape(name))
}

// opaqueSchemes are the schemes accepted without an authority. Anything
// else of the form "ns:local" is a namespaced property name.
var opaqueSchemes = map[string]bool{
	"urn":    true,
	"mailto": true,
	"tag":    true,
	"did":    true,
}

func isAbsoluteIRI(s string) bool {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" {
		return false
	}
	if u.Host != "" {
		return true
	}
	return u.Opaque != "" && opaqueSchemes[strings.ToLower(u.Scheme)]
}
