package repository

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
nodes:
  - path: /content/page
    id: page-1
    type: page
    properties:
      title: Hello
      tags: [a, b]
      count: 3
      ratio: 0.5
      published: true
      created: 2014-10-10T12:00:00Z
      label: {value: hallo, lang: de}
      related: {type: reference, value: /content/other}
      aliases: {multiple: true, values: []}
      homepage: {type: uri, value: "https://example.org/"}
  - path: /content
    type: folder
  - path: /content/other
    id: other-1
    type: page
`

func TestLoadYAML(t *testing.T) {
	ctx := context.Background()
	store, err := LoadYAML([]byte(seedYAML))
	require.NoError(t, err)

	page, err := store.Node(ctx, "/content/page")
	require.NoError(t, err)
	assert.Equal(t, NodeID("page-1"), page.ID)
	assert.Equal(t, "page", page.PrimaryType)

	rec, err := store.ReadRecord(ctx, "/content/page")
	require.NoError(t, err)

	tests := []struct {
		name     string
		multiple bool
		values   []Value
	}{
		{"title", false, []Value{StringValue("Hello")}},
		{"tags", true, []Value{StringValue("a"), StringValue("b")}},
		{"count", false, []Value{{Type: TypeLong, Lexical: "3"}}},
		{"ratio", false, []Value{{Type: TypeDouble, Lexical: "0.5"}}},
		{"published", false, []Value{{Type: TypeBoolean, Lexical: "true"}}},
		{"created", false, []Value{{Type: TypeDate, Lexical: "2014-10-10T12:00:00Z"}}},
		{"label", false, []Value{LangStringValue("hallo", "de")}},
		{"related", false, []Value{ReferenceValue("other-1")}},
		{"aliases", true, []Value{}},
		{"homepage", false, []Value{URIValue("https://example.org/")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prop, ok := rec.Property(tt.name)
			require.True(t, ok)
			assert.Equal(t, tt.multiple, prop.Multiple)
			assert.Equal(t, tt.values, prop.Values)
		})
	}
}

func TestLoadYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed yaml", "nodes: [ {"},
		{"missing parent", "nodes:\n  - path: /a/b\n"},
		{"dangling reference", "nodes:\n  - path: /a\n    properties:\n      r: {type: reference, value: /nope}\n"},
		{"unknown type", "nodes:\n  - path: /a\n    properties:\n      r: {type: blob, value: x}\n"},
		{"bad date", "nodes:\n  - path: /a\n    properties:\n      d: {type: date, value: soon}\n"},
		{"value and values", "nodes:\n  - path: /a\n    properties:\n      p: {value: x, values: [y]}\n"},
		{"unknown key", "nodes:\n  - path: /a\n    properties:\n      p: {valu: x}\n"},
		{"values not a sequence", "nodes:\n  - path: /a\n    properties:\n      p: {values: x}\n"},
		{"nested value", "nodes:\n  - path: /a\n    properties:\n      p: {value: [x]}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadYAML([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadYAMLNumbersAreCanonical(t *testing.T) {
	doc := `
nodes:
  - path: /a
    properties:
      underscored: 1_000
      hex: 0x1F
      signed: +7
      big: .inf
      small: -.inf
      missing: .nan
      exp: 1e3
      whole: {type: double, value: 2}
      typed: {type: long, value: 0x10}
`
	store, err := LoadYAML([]byte(doc))
	require.NoError(t, err)

	rec, err := store.ReadRecord(context.Background(), "/a")
	require.NoError(t, err)

	tests := []struct {
		name string
		want Value
	}{
		{"underscored", LongValue(1000)},
		{"hex", LongValue(31)},
		{"signed", LongValue(7)},
		{"big", DoubleValue(math.Inf(1))},
		{"small", DoubleValue(math.Inf(-1))},
		{"exp", DoubleValue(1000)},
		{"whole", DoubleValue(2)},
		{"typed", LongValue(16)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prop, ok := rec.Property(tt.name)
			require.True(t, ok)
			require.Len(t, prop.Values, 1)
			assert.Equal(t, tt.want, prop.Values[0])
			_, err := prop.Values[0].Float64()
			assert.NoError(t, err)
		})
	}

	prop, ok := rec.Property("missing")
	require.True(t, ok)
	f, err := prop.Values[0].Float64()
	require.NoError(t, err)
	assert.True(t, math.IsNaN(f))
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0644))

	store, err := LoadYAMLFile(path)
	require.NoError(t, err)
	assert.Len(t, store.Records(), 4)

	_, err = LoadYAMLFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
