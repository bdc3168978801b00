package convert

import (
	"context"
	"iter"
	"log/slog"

	"github.com/c360studio/semrepo/identifier"
	"github.com/c360studio/semrepo/rdf"
	"github.com/c360studio/semrepo/repository"
)

// Conversion steps, used as AccessError ops and as the failure metric label.
const (
	StepCardinality = "read cardinality"
	StepValues      = "read values"
	StepParent      = "resolve parent"
	StepSubject     = "resolve subject"
	StepObject      = "convert value"
	StepProperties  = "list properties"
)

// PropertyToTriple converts repository properties into statements, one per
// stored value. It holds no state beyond its collaborators and is safe for
// concurrent use when the session is.
type PropertyToTriple struct {
	session    repository.Session
	subjects   identifier.SubjectResolver
	properties *PropertyConverter
	values     *ValueConverter
	logger     *slog.Logger
	metrics    *Metrics
}

// Option configures a PropertyToTriple.
type Option func(*PropertyToTriple)

// WithLogger sets the logger. A nil logger keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(t *PropertyToTriple) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithMetrics records produced statements and failures.
func WithMetrics(m *Metrics) Option {
	return func(t *PropertyToTriple) {
		t.metrics = m
	}
}

// WithPropertyConverter replaces the default property name mapping.
func WithPropertyConverter(c *PropertyConverter) Option {
	return func(t *PropertyToTriple) {
		if c != nil {
			t.properties = c
		}
	}
}

// NewPropertyToTriple creates a transform reading through session and naming
// nodes with subjects.
func NewPropertyToTriple(session repository.Session, subjects identifier.SubjectResolver, opts ...Option) *PropertyToTriple {
	t := &PropertyToTriple{
		session:    session,
		subjects:   subjects,
		properties: NewPropertyConverter(DefaultPropertyNamespace, rdf.DefaultPrefixes()),
		values:     NewValueConverter(session, subjects),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Convert returns the statements for prop, lazily. Nothing is read until
// the sequence is ranged over.
//
// The sequence is restartable: every range re-reads the property from the
// repository, so a second range reflects changes made in between. Callers
// that need one consistent snapshot should range once, or use Collect.
//
// A single-valued property yields one statement, a multi-valued property one
// per value in stored order. If any read or mapping fails the sequence yields
// a zero Triple with a *repository.AccessError as its last element.
func (t *PropertyToTriple) Convert(ctx context.Context, prop repository.Property) iter.Seq2[rdf.Triple, error] {
	return func(yield func(rdf.Triple, error) bool) {
		values, step, err := t.read(ctx, prop)
		if err != nil {
			yield(rdf.Triple{}, t.fail(prop, step, err))
			return
		}

		var head *rdf.Triple
		for _, v := range values {
			if head == nil {
				h, step, err := t.head(ctx, prop)
				if err != nil {
					yield(rdf.Triple{}, t.fail(prop, step, err))
					return
				}
				head = &h
			}
			st, err := t.statement(ctx, *head, v)
			if err != nil {
				yield(rdf.Triple{}, t.fail(prop, StepObject, err))
				return
			}
			t.metrics.statement()
			t.logger.Debug("Converted property value",
				"property", prop.Name(),
				"statement", st.String())
			if !yield(st, nil) {
				return
			}
		}
	}
}

// NodeTriples returns the statements for every property of node, property by
// property.
func (t *PropertyToTriple) NodeTriples(ctx context.Context, node repository.Node) iter.Seq2[rdf.Triple, error] {
	return func(yield func(rdf.Triple, error) bool) {
		props, err := t.session.Properties(ctx, node)
		if err != nil {
			t.metrics.failure(StepProperties)
			yield(rdf.Triple{}, repository.NewAccessError(StepProperties, err))
			return
		}
		for _, p := range props {
			for st, err := range t.Convert(ctx, p) {
				if !yield(st, err) || err != nil {
					return
				}
			}
		}
	}
}

// Collect drains seq, stopping at the first error. Statements gathered
// before the error are returned with it.
func Collect(seq iter.Seq2[rdf.Triple, error]) ([]rdf.Triple, error) {
	var out []rdf.Triple
	for st, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, st)
	}
	return out, nil
}

// read returns the property's values in order. Single-valued properties
// become a one-element slice.
func (t *PropertyToTriple) read(ctx context.Context, prop repository.Property) ([]repository.Value, string, error) {
	multiple, err := prop.IsMultiple(ctx)
	if err != nil {
		return nil, StepCardinality, err
	}
	t.logger.Debug("Reading property",
		"property", prop.Name(),
		"multiple", multiple)

	if !multiple {
		v, err := prop.Value(ctx)
		if err != nil {
			return nil, StepValues, err
		}
		return []repository.Value{v}, "", nil
	}
	values, err := prop.Values(ctx)
	if err != nil {
		return nil, StepValues, err
	}
	return values, "", nil
}

// head resolves the subject and predicate shared by all of a property's
// statements.
func (t *PropertyToTriple) head(ctx context.Context, prop repository.Property) (rdf.Triple, string, error) {
	parent, err := prop.Parent(ctx)
	if err != nil {
		return rdf.Triple{}, StepParent, err
	}
	subject, err := t.subjects.Reverse(ctx, parent)
	if err != nil {
		return rdf.Triple{}, StepSubject, err
	}
	return rdf.Triple{Subject: subject, Predicate: t.properties.Forward(prop.Name())}, "", nil
}

// statement completes head with the object for one value.
func (t *PropertyToTriple) statement(ctx context.Context, head rdf.Triple, v repository.Value) (rdf.Triple, error) {
	object, err := t.values.Forward(ctx, v)
	if err != nil {
		return rdf.Triple{}, err
	}
	return rdf.NewTriple(head.Subject, head.Predicate, object), nil
}

func (t *PropertyToTriple) fail(prop repository.Property, step string, err error) error {
	t.metrics.failure(step)
	t.logger.Debug("Property conversion failed",
		"property", prop.Name(),
		"step", step,
		"error", err)
	return repository.NewAccessError(step, err)
}
