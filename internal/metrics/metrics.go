package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/speedwagon-io/vitaldash/internal/feed"
	"github.com/speedwagon-io/vitaldash/internal/model"
)

const namespace = "vitaldash"

const (
	OutcomeOK      = "ok"
	OutcomeNetwork = "network_failure"
	OutcomeParse   = "parse_failure"
	OutcomeOther   = "error"
)

// Metrics holds the dashboard collectors on their own registry.
type Metrics struct {
	registry   *prometheus.Registry
	fetches    *prometheus.CounterVec
	readings   *prometheus.GaugeVec
	normalized *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fetches_total",
			Help:      "Sensor feed fetches by outcome.",
		}, []string{"outcome"}),
		readings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_readings",
			Help:      "Readings in the last rendered sensor table by tier.",
		}, []string{"tier"}),
		normalized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_rows_normalized_total",
			Help:      "Employee status rows processed by tier.",
		}, []string{"tier"}),
	}

	m.registry.MustRegister(
		m.fetches,
		m.readings,
		m.normalized,
		collectors.NewGoCollector(),
	)

	return m
}

func (m *Metrics) ObserveFetch(err error) {
	m.fetches.WithLabelValues(outcome(err)).Inc()
}

func (m *Metrics) ObserveTable(t feed.Table) {
	counts := t.Counts()
	for _, tier := range model.Tiers {
		m.readings.WithLabelValues(string(tier)).Set(float64(counts[tier]))
	}
}

func (m *Metrics) ObserveNormalized(tiers []model.Tier) {
	for _, tier := range tiers {
		m.normalized.WithLabelValues(string(tier)).Inc()
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, feed.ErrNetwork):
		return OutcomeNetwork
	case errors.Is(err, feed.ErrParse):
		return OutcomeParse
	default:
		return OutcomeOther
	}
}
