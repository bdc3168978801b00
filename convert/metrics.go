package convert

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts statements produced and conversion failures.
type Metrics struct {
	statements prometheus.Counter
	failures   *prometheus.CounterVec
}

// NewMetrics creates conversion metrics and registers them with reg.
// Collectors already registered under the same names are reused, so several
// transforms may share one registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	statements := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "semrepo",
		Subsystem: "convert",
		Name:      "statements_total",
		Help:      "Statements produced from repository properties.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "semrepo",
		Subsystem: "convert",
		Name:      "failures_total",
		Help:      "Property conversions that ended in a repository access failure.",
	}, []string{"step"})

	if reg == nil {
		return &Metrics{statements: statements, failures: failures}, nil
	}

	var err error
	if statements, err = register(reg, statements); err != nil {
		return nil, err
	}
	if failures, err = register(reg, failures); err != nil {
		return nil, err
	}
	return &Metrics{statements: statements, failures: failures}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) statement() {
	if m != nil {
		m.statements.Inc()
	}
}

func (m *Metrics) failure(step string) {
	if m != nil {
		m.failures.WithLabelValues(step).Inc()
	}
}
