package repository

import (
	"fmt"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

// seedDocument is the YAML layout accepted by LoadYAML.
//
//	nodes:
//	  - path: /content/page
//	    type: page
//	    properties:
//	      title: Hello                 # single string
//	      tags: [a, b]                 # multi-valued
//	      count: 3                     # long
//	      label: {value: hallo, lang: de}
//	      related: {type: reference, value: /content/other}
//	      aliases: {multiple: true, values: []}
type seedDocument struct {
	Nodes []seedNode `yaml:"nodes"`
}

type seedNode struct {
	ID         string               `yaml:"id"`
	Path       string               `yaml:"path"`
	Type       string               `yaml:"type"`
	Properties map[string]yaml.Node `yaml:"properties"`
}

// seedProperty is the mapping form of a property.
type seedProperty struct {
	Type     string
	Lang     string
	Multiple bool
	Value    *yaml.Node
	Values   []*yaml.Node
	// hasValues distinguishes "values: []" from an absent key.
	hasValues bool
}

// LoadYAMLFile reads a seed document from disk into a new MemoryStore.
func LoadYAMLFile(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return LoadYAML(data)
}

// LoadYAML builds a MemoryStore from a seed document. Nodes are created in
// path order so parents may be listed after their children. Reference
// values name their target by path and are resolved once every node exists.
func LoadYAML(data []byte) (*MemoryStore, error) {
	var doc seedDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse seed document: %w", err)
	}

	sort.SliceStable(doc.Nodes, func(i, j int) bool { return doc.Nodes[i].Path < doc.Nodes[j].Path })

	store := NewMemoryStore()
	for _, n := range doc.Nodes {
		if n.Path == RootPath {
			continue
		}
		var err error
		if n.ID != "" {
			_, err = store.AddNodeWithID(n.Path, n.Type, NodeID(n.ID))
		} else {
			_, err = store.AddNode(n.Path, n.Type)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, n := range doc.Nodes {
		clean, err := CleanPath(n.Path)
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(n.Properties))
		for name := range n.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			node := n.Properties[name]
			prop, err := decodeSeedProperty(store, name, &node)
			if err != nil {
				return nil, fmt.Errorf("node %s property %s: %w", clean, name, err)
			}
			if err := store.setProperty(clean, prop); err != nil {
				return nil, err
			}
		}
	}
	return store, nil
}

func decodeSeedProperty(store *MemoryStore, name string, node *yaml.Node) (PropertyRecord, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		v, err := scalarValue(store, node, "", "")
		if err != nil {
			return PropertyRecord{}, err
		}
		return PropertyRecord{Name: name, Values: []Value{v}}, nil

	case yaml.SequenceNode:
		values, err := scalarValues(store, node.Content, "", "")
		if err != nil {
			return PropertyRecord{}, err
		}
		return PropertyRecord{Name: name, Multiple: true, Values: values}, nil

	case yaml.MappingNode:
		sp, err := decodeSeedMapping(node)
		if err != nil {
			return PropertyRecord{}, err
		}
		if sp.Value != nil && sp.hasValues {
			return PropertyRecord{}, fmt.Errorf("both value and values given")
		}
		if sp.Value != nil {
			v, err := scalarValue(store, sp.Value, sp.Type, sp.Lang)
			if err != nil {
				return PropertyRecord{}, err
			}
			return PropertyRecord{Name: name, Multiple: sp.Multiple, Values: []Value{v}}, nil
		}
		values, err := scalarValues(store, sp.Values, sp.Type, sp.Lang)
		if err != nil {
			return PropertyRecord{}, err
		}
		return PropertyRecord{Name: name, Multiple: true, Values: values}, nil

	default:
		return PropertyRecord{}, fmt.Errorf("unsupported yaml node kind %d", node.Kind)
	}
}

// decodeSeedMapping walks the key/value pairs of a mapping-form property.
func decodeSeedMapping(node *yaml.Node) (seedProperty, error) {
	var sp seedProperty
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "type", "lang":
			if val.Kind != yaml.ScalarNode {
				return sp, fmt.Errorf("%s must be a scalar at line %d", key.Value, val.Line)
			}
			if key.Value == "type" {
				sp.Type = val.Value
			} else {
				sp.Lang = val.Value
			}
		case "multiple":
			if err := val.Decode(&sp.Multiple); err != nil {
				return sp, fmt.Errorf("multiple: %w", err)
			}
		case "value":
			sp.Value = val
		case "values":
			if val.Kind != yaml.SequenceNode {
				return sp, fmt.Errorf("values must be a sequence at line %d", val.Line)
			}
			sp.Values = val.Content
			sp.hasValues = true
		default:
			return sp, fmt.Errorf("unknown key %q at line %d", key.Value, key.Line)
		}
	}
	return sp, nil
}

func scalarValues(store *MemoryStore, nodes []*yaml.Node, typ, lang string) ([]Value, error) {
	values := make([]Value, 0, len(nodes))
	for _, n := range nodes {
		v, err := scalarValue(store, n, typ, lang)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}

// scalarValue converts a YAML scalar. Without an explicit type the YAML tag
// decides: ints become long, floats double, bools boolean and timestamps date.
// Numbers tagged by YAML are stored in canonical form, so 1_000 and 0x1F
// load as 1000 and 31.
func scalarValue(store *MemoryStore, node *yaml.Node, typ, lang string) (Value, error) {
	if node.Kind != yaml.ScalarNode {
		return Value{}, fmt.Errorf("expected scalar at line %d", node.Line)
	}

	vt, err := ParseValueType(typ)
	if err != nil {
		return Value{}, err
	}
	tag := node.ShortTag()
	if typ == "" {
		switch tag {
		case "!!int":
			vt = TypeLong
		case "!!float":
			vt = TypeDouble
		case "!!bool":
			vt = TypeBoolean
		case "!!timestamp":
			vt = TypeDate
		}
	}

	switch vt {
	case TypeLong:
		if tag == "!!int" {
			var n int64
			if err := node.Decode(&n); err != nil {
				return Value{}, fmt.Errorf("%w: %q as long", ErrValueFormat, node.Value)
			}
			return LongValue(n), nil
		}
	case TypeDouble:
		if tag == "!!float" || tag == "!!int" {
			var f float64
			if err := node.Decode(&f); err != nil {
				return Value{}, fmt.Errorf("%w: %q as double", ErrValueFormat, node.Value)
			}
			return DoubleValue(f), nil
		}
	case TypeDate:
		t, err := parseSeedDate(node.Value)
		if err != nil {
			return Value{}, err
		}
		return DateValue(t), nil
	case TypeReference, TypeWeakReference:
		target, err := CleanPath(node.Value)
		if err != nil {
			return Value{}, err
		}
		store.mu.RLock()
		rec, ok := store.byPath[target]
		store.mu.RUnlock()
		if !ok {
			return Value{}, fmt.Errorf("reference target %s: %w", target, ErrNotFound)
		}
		return Value{Type: vt, Lexical: string(rec.ID)}, nil
	}

	v := Value{Type: vt, Lexical: node.Value}
	if vt == TypeString {
		v.Lang = lang
	}
	return v, nil
}

func parseSeedDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q as date", ErrValueFormat, s)
}
