package repository

import (
	"context"
	"fmt"
	"sort"
)

// Record is the stored form of a node and its properties. Backends persist
// records and hand out lazy Property handles over them.
type Record struct {
	Node       `yaml:",inline"`
	Properties []PropertyRecord `json:"properties,omitempty"`
}

// PropertyRecord is the stored form of one property.
type PropertyRecord struct {
	Name     string  `json:"name"`
	Multiple bool    `json:"multiple,omitempty"`
	Values   []Value `json:"values"`
}

// Property returns the named property record.
func (r *Record) Property(name string) (PropertyRecord, bool) {
	for _, p := range r.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return PropertyRecord{}, false
}

// SetProperty adds or replaces a property, keeping properties ordered by name.
func (r *Record) SetProperty(p PropertyRecord) {
	for i := range r.Properties {
		if r.Properties[i].Name == p.Name {
			r.Properties[i] = p
			return
		}
	}
	r.Properties = append(r.Properties, p)
	sort.Slice(r.Properties, func(i, j int) bool {
		return r.Properties[i].Name < r.Properties[j].Name
	})
}

// RemoveProperty deletes a property. It reports whether one was removed.
func (r *Record) RemoveProperty(name string) bool {
	for i := range r.Properties {
		if r.Properties[i].Name == name {
			r.Properties = append(r.Properties[:i], r.Properties[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := &Record{Node: r.Node, Properties: make([]PropertyRecord, len(r.Properties))}
	for i, p := range r.Properties {
		c.Properties[i] = PropertyRecord{
			Name:     p.Name,
			Multiple: p.Multiple,
			Values:   append([]Value(nil), p.Values...),
		}
	}
	return c
}

// RecordReader loads the current record stored at a path.
type RecordReader interface {
	ReadRecord(ctx context.Context, path string) (*Record, error)
}

// NewProperty returns a Property handle for the named property of the node
// at path. The handle re-reads the record on every call so that it always
// reflects the repository's current state.
func NewProperty(r RecordReader, path, name string) Property {
	return &recordProperty{reader: r, path: path, name: name}
}

// PropertyHandles returns handles for every property of the record.
func PropertyHandles(r RecordReader, rec *Record) []Property {
	props := make([]Property, len(rec.Properties))
	for i, p := range rec.Properties {
		props[i] = NewProperty(r, rec.Path, p.Name)
	}
	return props
}

type recordProperty struct {
	reader RecordReader
	path   string
	name   string
}

func (p *recordProperty) Name() string {
	return p.name
}

func (p *recordProperty) String() string {
	return p.path + "/" + p.name
}

func (p *recordProperty) Parent(ctx context.Context) (Node, error) {
	rec, err := p.reader.ReadRecord(ctx, p.path)
	if err != nil {
		return Node{}, err
	}
	return rec.Node, nil
}

func (p *recordProperty) load(ctx context.Context) (PropertyRecord, error) {
	rec, err := p.reader.ReadRecord(ctx, p.path)
	if err != nil {
		return PropertyRecord{}, err
	}
	prop, ok := rec.Property(p.name)
	if !ok {
		return PropertyRecord{}, fmt.Errorf("property %s: %w", p, ErrNotFound)
	}
	return prop, nil
}

func (p *recordProperty) IsMultiple(ctx context.Context) (bool, error) {
	prop, err := p.load(ctx)
	if err != nil {
		return false, err
	}
	return prop.Multiple, nil
}

func (p *recordProperty) Value(ctx context.Context) (Value, error) {
	prop, err := p.load(ctx)
	if err != nil {
		return Value{}, err
	}
	if prop.Multiple {
		return Value{}, fmt.Errorf("property %s: %w", p, ErrMultiValued)
	}
	if len(prop.Values) != 1 {
		return Value{}, fmt.Errorf("property %s: %w", p, ErrNotFound)
	}
	return prop.Values[0], nil
}

func (p *recordProperty) Values(ctx context.Context) ([]Value, error) {
	prop, err := p.load(ctx)
	if err != nil {
		return nil, err
	}
	if !prop.Multiple {
		return nil, fmt.Errorf("property %s: %w", p, ErrSingleValued)
	}
	return append([]Value(nil), prop.Values...), nil
}
