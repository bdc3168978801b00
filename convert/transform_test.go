package convert

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semrepo/identifier"
	"github.com/c360studio/semrepo/rdf"
	"github.com/c360studio/semrepo/repository"
)

var nodeN = repository.Node{ID: "id-n", Path: "/N", PrimaryType: "page"}

func newTransform(t *testing.T, opts ...Option) *PropertyToTriple {
	t.Helper()
	store := repository.NewMemoryStore()
	return NewPropertyToTriple(store, identifier.NewPathConverter("urn:node:", store), opts...)
}

// countingResolver records how often Reverse is called.
type countingResolver struct {
	calls int
	err   error
}

func (r *countingResolver) Reverse(_ context.Context, node repository.Node) (rdf.Term, error) {
	r.calls++
	if r.err != nil {
		return rdf.Term{}, r.err
	}
	return rdf.NewIRI("urn:node:" + node.Path[1:]), nil
}

func TestConvertSingleValued(t *testing.T) {
	tr := newTransform(t)
	prop := &stubProperty{name: "title", parent: nodeN, values: []repository.Value{repository.StringValue("Hello")}}

	got, err := Collect(tr.Convert(context.Background(), prop))
	require.NoError(t, err)
	assert.Equal(t, []rdf.Triple{
		rdf.NewTriple(rdf.NewIRI("urn:node:N"), rdf.NewIRI("urn:prop:title"), rdf.NewLiteral("Hello")),
	}, got)
	assert.Equal(t, `<urn:node:N> <urn:prop:title> "Hello" .`, got[0].String())
}

func TestConvertMultiValued(t *testing.T) {
	tr := newTransform(t)
	prop := &stubProperty{
		name:     "tags",
		parent:   nodeN,
		multiple: true,
		values:   []repository.Value{repository.StringValue("a"), repository.StringValue("b")},
	}

	got, err := Collect(tr.Convert(context.Background(), prop))
	require.NoError(t, err)
	subject, predicate := rdf.NewIRI("urn:node:N"), rdf.NewIRI("urn:prop:tags")
	assert.Equal(t, []rdf.Triple{
		rdf.NewTriple(subject, predicate, rdf.NewLiteral("a")),
		rdf.NewTriple(subject, predicate, rdf.NewLiteral("b")),
	}, got)
}

func TestConvertPreservesValueOrder(t *testing.T) {
	tr := newTransform(t)
	values := []repository.Value{
		repository.LongValue(3), repository.LongValue(1), repository.LongValue(2), repository.LongValue(1),
	}
	prop := &stubProperty{name: "n", parent: nodeN, multiple: true, values: values}

	got, err := Collect(tr.Convert(context.Background(), prop))
	require.NoError(t, err)
	require.Len(t, got, len(values))
	for i, v := range values {
		assert.Equal(t, v.Lexical, got[i].Object.Value, "index %d", i)
	}
}

func TestConvertEmptyMultiValued(t *testing.T) {
	resolver := &countingResolver{}
	tr := NewPropertyToTriple(repository.NewMemoryStore(), resolver)
	prop := &stubProperty{name: "tags", parent: nodeN, multiple: true}

	got, err := Collect(tr.Convert(context.Background(), prop))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, resolver.calls)
}

func TestConvertIsLazy(t *testing.T) {
	tr := newTransform(t)
	prop := &stubProperty{name: "title", parent: nodeN, values: []repository.Value{repository.StringValue("x")}}

	seq := tr.Convert(context.Background(), prop)
	assert.Zero(t, prop.reads, "no reads before the sequence is ranged over")

	_, err := Collect(seq)
	require.NoError(t, err)
	assert.NotZero(t, prop.reads)
}

func TestConvertSubjectFailure(t *testing.T) {
	boom := errors.New("subject service down")
	tr := NewPropertyToTriple(repository.NewMemoryStore(), &countingResolver{err: boom})
	prop := &stubProperty{
		name:     "tags",
		parent:   nodeN,
		multiple: true,
		values:   []repository.Value{repository.StringValue("a"), repository.StringValue("b")},
	}

	var got []rdf.Triple
	var errs []error
	for st, err := range tr.Convert(context.Background(), prop) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		got = append(got, st)
	}

	assert.Empty(t, got)
	require.Len(t, errs, 1)
	assert.True(t, repository.IsAccessError(errs[0]))
	assert.ErrorIs(t, errs[0], boom)

	var ae *repository.AccessError
	require.ErrorAs(t, errs[0], &ae)
	assert.Equal(t, StepSubject, ae.Op)
}

func TestConvertValueFailureOnKthValue(t *testing.T) {
	tr := newTransform(t)
	prop := &stubProperty{
		name:     "counts",
		parent:   nodeN,
		multiple: true,
		values: []repository.Value{
			repository.LongValue(1),
			repository.LongValue(2),
			{Type: repository.TypeLong, Lexical: "three"},
			repository.LongValue(4),
		},
	}

	var got []rdf.Triple
	var lastErr error
	n := 0
	for st, err := range tr.Convert(context.Background(), prop) {
		n++
		if err != nil {
			lastErr = err
			continue
		}
		got = append(got, st)
	}

	assert.Equal(t, 3, n, "two statements then the failure, nothing after")
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Object.Value)
	assert.Equal(t, "2", got[1].Object.Value)

	require.Error(t, lastErr)
	assert.True(t, repository.IsAccessError(lastErr))
	assert.ErrorIs(t, lastErr, repository.ErrValueFormat)
}

func TestConvertReadFailures(t *testing.T) {
	boom := errors.New("io")

	tests := []struct {
		name string
		prop *stubProperty
		step string
	}{
		{"cardinality", &stubProperty{name: "p", parent: nodeN, multipleErr: boom}, StepCardinality},
		{"single value", &stubProperty{name: "p", parent: nodeN, valuesErr: boom}, StepValues},
		{"multi values", &stubProperty{name: "p", parent: nodeN, multiple: true, valuesErr: boom}, StepValues},
		{"parent", &stubProperty{name: "p", parentErr: boom, values: []repository.Value{repository.StringValue("x")}}, StepParent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Collect(newTransform(t).Convert(context.Background(), tt.prop))
			assert.Empty(t, got)
			require.Error(t, err)

			var ae *repository.AccessError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.step, ae.Op)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestConvertWrapsOnce(t *testing.T) {
	inner := repository.NewAccessError("lookup", errors.New("io"))
	tr := NewPropertyToTriple(repository.NewMemoryStore(), &countingResolver{err: inner})
	prop := &stubProperty{name: "p", parent: nodeN, values: []repository.Value{repository.StringValue("x")}}

	_, err := Collect(tr.Convert(context.Background(), prop))
	require.Error(t, err)
	assert.Same(t, inner, err)
}

func TestConvertIdempotent(t *testing.T) {
	tr := newTransform(t)
	prop := &stubProperty{
		name:     "tags",
		parent:   nodeN,
		multiple: true,
		values:   []repository.Value{repository.StringValue("a"), repository.LangStringValue("b", "en")},
	}

	first, err := Collect(tr.Convert(context.Background(), prop))
	require.NoError(t, err)
	second, err := Collect(tr.Convert(context.Background(), prop))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Ranging the same sequence again reproduces it too.
	seq := tr.Convert(context.Background(), prop)
	a, _ := Collect(seq)
	b, _ := Collect(seq)
	assert.Equal(t, a, b)
}

func TestConvertEarlyStop(t *testing.T) {
	resolver := &countingResolver{}
	tr := NewPropertyToTriple(repository.NewMemoryStore(), resolver)
	prop := &stubProperty{
		name:     "tags",
		parent:   nodeN,
		multiple: true,
		values:   []repository.Value{repository.StringValue("a"), repository.StringValue("b"), repository.StringValue("c")},
	}

	var got []rdf.Triple
	for st, err := range tr.Convert(context.Background(), prop) {
		assert.NoError(t, err)
		got = append(got, st)
		break
	}
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Object.Value)
	assert.Equal(t, 1, resolver.calls, "subject resolved once per run")
}

func TestConvertReflectsRepositoryChanges(t *testing.T) {
	store := repository.NewMemoryStore()
	_, err := store.AddNode("/N", "page")
	require.NoError(t, err)
	require.NoError(t, store.SetMultiProperty("/N", "tags", []repository.Value{repository.StringValue("a")}))

	tr := NewPropertyToTriple(store, identifier.NewPathConverter("urn:node:", store))
	prop := repository.NewProperty(store, "/N", "tags")
	seq := tr.Convert(context.Background(), prop)

	require.NoError(t, store.SetMultiProperty("/N", "tags", []repository.Value{
		repository.StringValue("a"), repository.StringValue("b"),
	}))

	got, err := Collect(seq)
	require.NoError(t, err)
	assert.Len(t, got, 2, "values are read when ranging starts")
}

func TestNodeTriples(t *testing.T) {
	store := repository.NewMemoryStore()
	node, err := store.AddNode("/N", "page")
	require.NoError(t, err)
	require.NoError(t, store.SetProperty("/N", "title", repository.StringValue("Hello")))
	require.NoError(t, store.SetMultiProperty("/N", "tags", []repository.Value{
		repository.StringValue("a"), repository.StringValue("b"),
	}))

	tr := NewPropertyToTriple(store, identifier.NewPathConverter("urn:node:", store))
	got, err := Collect(tr.NodeTriples(context.Background(), node))
	require.NoError(t, err)

	var lines []string
	for _, st := range got {
		lines = append(lines, st.String())
	}
	assert.Equal(t, []string{
		`<urn:node:N> <urn:prop:tags> "a" .`,
		`<urn:node:N> <urn:prop:tags> "b" .`,
		`<urn:node:N> <urn:prop:title> "Hello" .`,
	}, lines)
}

func TestNodeTriplesMissingNode(t *testing.T) {
	tr := newTransform(t)
	_, err := Collect(tr.NodeTriples(context.Background(), repository.Node{ID: "x", Path: "/gone"}))
	require.Error(t, err)
	assert.True(t, repository.IsAccessError(err))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestConvertMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	tr := newTransform(t, WithMetrics(m))
	ok := &stubProperty{name: "tags", parent: nodeN, multiple: true, values: []repository.Value{
		repository.StringValue("a"), repository.StringValue("b"),
	}}
	bad := &stubProperty{name: "n", parent: nodeN, values: []repository.Value{{Type: repository.TypeLong, Lexical: "x"}}}

	_, err = Collect(tr.Convert(context.Background(), ok))
	require.NoError(t, err)
	_, err = Collect(tr.Convert(context.Background(), bad))
	require.Error(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.statements))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues(StepObject)))

	again, err := NewMetrics(reg)
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(again.statements), "re-registration shares collectors")
}
