package rdf

import (
	"time"

	"github.com/c360studio/semstreams/message"
)

// Triple is one subject-predicate-object statement. It has no identity
// beyond its three terms.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

// NewTriple builds a statement from its three terms.
func NewTriple(subject, predicate, object Term) Triple {
	return Triple{Subject: subject, Predicate: predicate, Object: object}
}

// String renders the statement as a single N-Triples line without the
// trailing newline.
func (t Triple) String() string {
	return t.Subject.String() + " " + t.Predicate.String() + " " + t.Object.String() + " ."
}

// Message converts the statement into a semstreams triple for graph
// ingestion. IRI objects are carried as their IRI string, literals as their
// native Go value where the datatype has one.
func (t Triple) Message(source string, ts time.Time) message.Triple {
	return message.Triple{
		Subject:    t.Subject.Value,
		Predicate:  t.Predicate.Value,
		Object:     t.Object.Native(),
		Source:     source,
		Timestamp:  ts,
		Confidence: 1.0,
	}
}
