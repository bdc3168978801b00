package rdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTerm_String(t *testing.T) {
	tests := []struct {
		name string
		term Term
		want string
	}{
		{"iri", NewIRI("urn:node:N"), "<urn:node:N>"},
		{"plain literal", NewLiteral("Hello"), `"Hello"`},
		{"typed literal", NewTypedLiteral("42", XSDLong), `"42"^^<http://www.w3.org/2001/XMLSchema#long>`},
		{"xsd string normalized", NewTypedLiteral("x", XSDString), `"x"`},
		{"lang literal", NewLangLiteral("hallo", "DE"), `"hallo"@de`},
		{"blank", NewBlank("b0"), "_:b0"},
		{"escaped", NewLiteral("a \"quoted\"\nline"), `"a \"quoted\"\nline"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.term.String())
		})
	}
}

func TestTerm_Equality(t *testing.T) {
	assert.Equal(t, NewLiteral("a"), NewTypedLiteral("a", XSDString))
	assert.NotEqual(t, NewLiteral("1"), NewTypedLiteral("1", XSDLong))
	assert.True(t, Term{}.IsZero())
	assert.False(t, NewIRI("urn:x").IsZero())
}

func TestTriple_String(t *testing.T) {
	tr := NewTriple(NewIRI("urn:node:N"), NewIRI("urn:prop:title"), NewLiteral("Hello"))
	assert.Equal(t, `<urn:node:N> <urn:prop:title> "Hello" .`, tr.String())
}

func TestTriple_Message(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name   string
		object Term
		want   any
	}{
		{"iri object", NewIRI("urn:node:M"), "urn:node:M"},
		{"plain literal", NewLiteral("Hello"), "Hello"},
		{"long", NewTypedLiteral("7", XSDLong), int64(7)},
		{"double", NewTypedLiteral("1.5", XSDDouble), 1.5},
		{"boolean", NewTypedLiteral("true", XSDBoolean), true},
		{"bad long falls back to lexical", NewTypedLiteral("x", XSDLong), "x"},
		{"datetime keeps fraction", NewTypedLiteral("2024-03-01T11:30:05.123456Z", XSDDateTime), "2024-03-01T11:30:05.123456Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := NewTriple(NewIRI("urn:node:N"), NewIRI("urn:prop:p"), tt.object).Message("semrepo.test", ts)
			assert.Equal(t, "urn:node:N", msg.Subject)
			assert.Equal(t, "urn:prop:p", msg.Predicate)
			assert.Equal(t, tt.want, msg.Object)
			assert.Equal(t, "semrepo.test", msg.Source)
			assert.Equal(t, ts, msg.Timestamp)
			assert.Equal(t, 1.0, msg.Confidence)
		})
	}
}
