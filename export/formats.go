package export

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/c360studio/semrepo/rdf"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatTurtle: {
		Name:        FormatTurtle,
		MIMEType:    "text/turtle",
		Extension:   ".ttl",
		Description: "Turtle - Terse RDF Triple Language",
	},
	FormatNTriples: {
		Name:        FormatNTriples,
		MIMEType:    "application/n-triples",
		Extension:   ".nt",
		Description: "N-Triples - Line-based RDF format",
	},
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".jsonld",
		Description: "JSON-LD - JSON for Linked Data",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// FormatForExtension returns the format whose extension matches ext.
func FormatForExtension(ext string) (Format, bool) {
	ext = strings.ToLower(ext)
	for _, info := range FormatRegistry {
		if info.Extension == ext {
			return info.Name, true
		}
	}
	return "", false
}

// WriteNTriples writes one N-Triples line per statement, preserving every
// term exactly.
func WriteNTriples(w io.Writer, triples []rdf.Triple) error {
	bw := bufio.NewWriter(w)
	for _, t := range triples {
		if _, err := bw.WriteString(t.String()); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// pnLocal matches local names that can be written as prefixed names without
// escaping.
var pnLocal = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// TurtleWriter writes statements in Turtle, grouping consecutive statements
// that share a subject and abbreviating IRIs with the configured prefixes.
type TurtleWriter struct {
	w        io.Writer
	prefixes map[string]string
}

// NewTurtleWriter creates a Turtle writer with no prefixes.
func NewTurtleWriter(w io.Writer) *TurtleWriter {
	return &TurtleWriter{w: w, prefixes: make(map[string]string)}
}

// SetPrefix sets a namespace prefix.
func (tw *TurtleWriter) SetPrefix(prefix, iri string) {
	tw.prefixes[prefix] = iri
}

// Write writes the prefix block followed by the statements.
func (tw *TurtleWriter) Write(triples []rdf.Triple) error {
	bw := bufio.NewWriter(tw.w)

	// Sort prefixes for consistent output
	keys := make([]string, 0, len(tw.prefixes))
	for k := range tw.prefixes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, prefix := range keys {
		fmt.Fprintf(bw, "@prefix %s: <%s> .\n", prefix, tw.prefixes[prefix])
	}
	if len(keys) > 0 && len(triples) > 0 {
		bw.WriteString("\n")
	}

	for i, t := range triples {
		sameSubject := i > 0 && triples[i-1].Subject == t.Subject
		if !sameSubject {
			if i > 0 {
				bw.WriteString(" .\n")
			}
			bw.WriteString(tw.term(t.Subject))
			bw.WriteString("\n")
		} else {
			bw.WriteString(" ;\n")
		}
		bw.WriteString("    ")
		bw.WriteString(tw.predicate(t.Predicate))
		bw.WriteString(" ")
		bw.WriteString(tw.term(t.Object))
	}
	if len(triples) > 0 {
		bw.WriteString(" .\n")
	}
	return bw.Flush()
}

func (tw *TurtleWriter) predicate(p rdf.Term) string {
	if p.IsIRI() && p.Value == rdf.RDFType {
		return "a"
	}
	return tw.term(p)
}

func (tw *TurtleWriter) term(t rdf.Term) string {
	switch {
	case t.IsIRI():
		return tw.iri(t.Value)
	case t.IsLiteral():
		lit := `"` + rdf.EscapeLiteral(t.Value) + `"`
		if t.Lang != "" {
			return lit + "@" + t.Lang
		}
		if t.Datatype != "" {
			return lit + "^^" + tw.iri(t.Datatype)
		}
		return lit
	default:
		return t.String()
	}
}

// iri returns the prefixed name for iri when one applies, picking the
// longest matching namespace.
func (tw *TurtleWriter) iri(iri string) string {
	best, bestNS := "", ""
	for prefix, ns := range tw.prefixes {
		if !strings.HasPrefix(iri, ns) || len(ns) <= len(bestNS) {
			continue
		}
		if local := iri[len(ns):]; pnLocal.MatchString(local) {
			best, bestNS = prefix+":"+local, ns
		}
	}
	if best != "" {
		return best
	}
	return "<" + iri + ">"
}
