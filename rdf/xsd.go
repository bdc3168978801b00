package rdf

import (
	"strconv"
	"time"
)

// XSD datatype IRIs used for typed literals.
const (
	XSDNamespace    = "http://www.w3.org/2001/XMLSchema#"
	XSDString       = XSDNamespace + "string"
	XSDLong         = XSDNamespace + "long"
	XSDDouble       = XSDNamespace + "double"
	XSDDecimal      = XSDNamespace + "decimal"
	XSDBoolean      = XSDNamespace + "boolean"
	XSDDateTime     = XSDNamespace + "dateTime"
	XSDAnyURI       = XSDNamespace + "anyURI"
	XSDBase64Binary = XSDNamespace + "base64Binary"
)

// RDFType is the rdf:type predicate IRI.
const RDFType = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"

// DefaultPrefixes returns the standard namespace prefixes.
func DefaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":  "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
		"rdfs": "http://www.w3.org/2000/01/rdf-schema#",
		"owl":  "http://www.w3.org/2002/07/owl#",
		"xsd":  XSDNamespace,
		"dc":   "http://purl.org/dc/terms/",
		"skos": "http://www.w3.org/2004/02/skos/core#",
		"prov": "http://www.w3.org/ns/prov#",
	}
}

// Native returns the term as a Go value: IRIs and blank nodes as their
// string form, literals parsed by datatype. A literal whose lexical form does
// not parse is returned as its string.
func (t Term) Native() any {
	if t.Kind != KindLiteral {
		return t.Value
	}
	switch t.Datatype {
	case XSDLong:
		if n, err := strconv.ParseInt(t.Value, 10, 64); err == nil {
			return n
		}
	case XSDDouble, XSDDecimal:
		if f, err := strconv.ParseFloat(t.Value, 64); err == nil {
			return f
		}
	case XSDBoolean:
		if b, err := strconv.ParseBool(t.Value); err == nil {
			return b
		}
	case XSDDateTime:
		if ts, err := time.Parse(time.RFC3339Nano, t.Value); err == nil {
			return ts.Format(time.RFC3339Nano)
		}
	}
	return t.Value
}
