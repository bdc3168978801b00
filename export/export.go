// Package export serializes converted repository statements.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/c360studio/semrepo/rdf"
	"github.com/c360studio/semstreams/message"
	ssexport "github.com/c360studio/semstreams/vocabulary/export"
)

// Format specifies the output serialization format.
type Format string

const (
	// FormatTurtle produces Turtle (.ttl) output.
	FormatTurtle Format = "turtle"

	// FormatNTriples produces N-Triples (.nt) output.
	FormatNTriples Format = "ntriples"

	// FormatJSONLD produces JSON-LD (.jsonld) output.
	FormatJSONLD Format = "jsonld"
)

// ParseFormat parses a format name, case-insensitively. Common file
// extensions are accepted as aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "turtle", "ttl":
		return FormatTurtle, nil
	case "ntriples", "n-triples", "nt":
		return FormatNTriples, nil
	case "jsonld", "json-ld":
		return FormatJSONLD, nil
	default:
		return "", fmt.Errorf("unsupported format: %s (valid: turtle, ntriples, jsonld)", s)
	}
}

// Entity is one node's worth of statements.
type Entity struct {
	Subject     rdf.Term
	PrimaryType string
	Triples     []rdf.Triple
}

// Exporter accumulates entities and serializes them.
type Exporter struct {
	profile       Profile
	typeNamespace string
	types         *TypeAsserter
	baseIRI       string
	prefixes      map[string]string
	entities      []Entity
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithPrefixes adds namespace prefixes used to abbreviate Turtle output.
func WithPrefixes(prefixes map[string]string) ExporterOption {
	return func(e *Exporter) {
		for k, v := range prefixes {
			e.prefixes[k] = v
		}
	}
}

// WithTypeNamespace sets the namespace primary types are minted in.
func WithTypeNamespace(ns string) ExporterOption {
	return func(e *Exporter) {
		if ns != "" {
			e.typeNamespace = ns
		}
	}
}

// WithBaseIRI sets the base IRI passed to the JSON-LD serializer.
func WithBaseIRI(base string) ExporterOption {
	return func(e *Exporter) {
		e.baseIRI = base
	}
}

// NewExporter creates an exporter for the given profile.
func NewExporter(profile Profile, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		profile:       profile,
		typeNamespace: DefaultTypeNamespace,
		prefixes:      rdf.DefaultPrefixes(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.types = NewTypeAsserter(e.profile, e.typeNamespace)
	return e
}

// Add queues an entity for export.
func (e *Exporter) Add(entity Entity) {
	e.entities = append(e.entities, entity)
}

// Len returns the number of queued entities.
func (e *Exporter) Len() int {
	return len(e.entities)
}

// Triples returns every statement to be exported: per entity, its type
// assertions (if the profile asks for them) followed by its own statements.
func (e *Exporter) Triples() []rdf.Triple {
	var out []rdf.Triple
	for _, ent := range e.entities {
		out = append(out, e.types.Triples(ent.Subject, ent.PrimaryType)...)
		out = append(out, ent.Triples...)
	}
	return out
}

// Export serializes all entities to the specified format.
func (e *Exporter) Export(format Format) (string, error) {
	var sb strings.Builder
	if err := e.WriteTo(&sb, format); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// WriteTo serializes all entities to w.
func (e *Exporter) WriteTo(w io.Writer, format Format) error {
	triples := e.Triples()
	switch format {
	case FormatNTriples:
		return WriteNTriples(w, triples)
	case FormatTurtle:
		tw := NewTurtleWriter(w)
		for prefix, iri := range e.prefixes {
			tw.SetPrefix(prefix, iri)
		}
		return tw.Write(triples)
	case FormatJSONLD:
		out, err := Serialize(triples, FormatJSONLD, e.baseIRI)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// Serialize renders triples through the semstreams serializers. Object terms
// are reduced to their native values on the way, so datatypes the semstreams
// encoders do not model are lost; use WriteNTriples or TurtleWriter when the
// exact terms matter.
func Serialize(triples []rdf.Triple, format Format, baseIRI string) (string, error) {
	msgs := make([]message.Triple, len(triples))
	now := time.Now()
	for i, t := range triples {
		msgs[i] = t.Message("semrepo", now)
	}
	return SerializeMessages(msgs, format, baseIRI)
}

// SerializeMessages renders semstreams triples, as carried by graph
// ingestion payloads.
func SerializeMessages(msgs []message.Triple, format Format, baseIRI string) (string, error) {
	var ssFormat ssexport.Format
	switch format {
	case FormatTurtle:
		ssFormat = ssexport.Turtle
	case FormatNTriples:
		ssFormat = ssexport.NTriples
	case FormatJSONLD:
		ssFormat = ssexport.JSONLD
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}

	var out string
	var err error
	if baseIRI != "" {
		out, err = ssexport.SerializeToString(msgs, ssFormat, ssexport.WithBaseIRI(baseIRI))
	} else {
		out, err = ssexport.SerializeToString(msgs, ssFormat)
	}
	if err != nil {
		return "", fmt.Errorf("serialize %s: %w", format, err)
	}
	return out, nil
}
