package otfmaturity

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// outcome labels for questionnaire loads
const (
	loadOK     = "ok"
	loadCached = "cached"
	loadSchema = "schema_error"
	loadFailed = "load_error"
)

type metrics struct {
	registry       *prometheus.Registry
	loads          *prometheus.CounterVec
	weightWarnings prometheus.Counter
	scorings       prometheus.Counter
	exports        prometheus.Counter
	globalLevel    prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "otf_maturity",
			Name:      "model_loads_total",
			Help:      "Questionnaire loads by source kind and outcome.",
		}, []string{"source", "outcome"}),
		weightWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "otf_maturity",
			Name:      "weight_warnings_total",
			Help:      "Requirement weights replaced by 0 while loading.",
		}),
		scorings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "otf_maturity",
			Name:      "scorings_total",
			Help:      "Completed scoring runs.",
		}),
		exports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "otf_maturity",
			Name:      "exports_total",
			Help:      "CSV exports served.",
		}),
		globalLevel: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "otf_maturity",
			Name:      "global_level",
			Help:      "Defined global weighted levels.",
			Buckets:   []float64{2, 3, 4, 4.5, 5},
		}),
	}
	m.registry.MustRegister(m.loads, m.weightWarnings, m.scorings, m.exports, m.globalLevel)
	return m
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
