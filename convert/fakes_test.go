package convert

import (
	"context"

	"github.com/c360studio/semrepo/repository"
)

// stubProperty is a Property whose reads are scripted per test.
type stubProperty struct {
	name     string
	parent   repository.Node
	multiple bool
	values   []repository.Value

	parentErr   error
	multipleErr error
	valuesErr   error

	reads int
}

func (p *stubProperty) Name() string { return p.name }

func (p *stubProperty) Parent(context.Context) (repository.Node, error) {
	p.reads++
	return p.parent, p.parentErr
}

func (p *stubProperty) IsMultiple(context.Context) (bool, error) {
	p.reads++
	return p.multiple, p.multipleErr
}

func (p *stubProperty) Value(context.Context) (repository.Value, error) {
	p.reads++
	if p.valuesErr != nil {
		return repository.Value{}, p.valuesErr
	}
	return p.values[0], nil
}

func (p *stubProperty) Values(context.Context) ([]repository.Value, error) {
	p.reads++
	if p.valuesErr != nil {
		return nil, p.valuesErr
	}
	return append([]repository.Value(nil), p.values...), nil
}
