// Package metrics holds the optional prometheus instrumentation shared by
// the decoder and the recurrence engine. A nil *Collector is valid and
// records nothing.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ical"

// Collector counts assembled components, errors and emitted occurrences.
type Collector struct {
	components  *prometheus.CounterVec
	errors      *prometheus.CounterVec
	occurrences prometheus.Counter
}

// New registers the collectors with reg. Registering twice against the same
// registry reuses the existing collectors. A nil reg yields a nil Collector.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		return nil, nil
	}
	components := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "components_total",
		Help:      "Components assembled by the decoder, by component name.",
	}, []string{"component"})
	errs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "errors_total",
		Help:      "Parse and validation errors, by kind.",
	}, []string{"kind"})
	occurrences := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recurrence_occurrences_total",
		Help:      "Occurrences emitted by recurrence expansion.",
	})

	var err error
	c := &Collector{}
	if c.components, err = register(reg, components); err != nil {
		return nil, err
	}
	if c.errors, err = register(reg, errs); err != nil {
		return nil, err
	}
	if c.occurrences, err = register(reg, occurrences); err != nil {
		return nil, err
	}
	return c, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return c, nil
}

// Component records one assembled component.
func (c *Collector) Component(name string) {
	if c == nil {
		return
	}
	c.components.WithLabelValues(name).Inc()
}

// Error records one error of the given kind.
func (c *Collector) Error(kind string) {
	if c == nil {
		return
	}
	c.errors.WithLabelValues(kind).Inc()
}

// Occurrence records one emitted occurrence.
func (c *Collector) Occurrence() {
	if c == nil {
		return
	}
	c.occurrences.Inc()
}
