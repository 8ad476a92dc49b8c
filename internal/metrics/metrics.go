package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK       = "ok"
	OutcomeEmpty    = "empty"
	OutcomeFailed   = "failed"
	StageFetch      = "fetch"
	StageParse      = "parse"
	StageTimeout    = "timeout"
	StagePanic      = "panic"
	metricNamespace = "bigfinish"
)

var (
	registerOnce sync.Once

	searches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricNamespace,
		Name:      "searches_total",
		Help:      "Total number of searches by outcome",
	}, []string{"outcome"})
	candidates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricNamespace,
		Name:      "candidates_total",
		Help:      "Total number of result tiles turned into candidates",
	})
	detailFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricNamespace,
		Name:      "detail_fallbacks_total",
		Help:      "Candidates returned unenriched, by failing stage",
	}, []string{"stage"})
	connectorUp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricNamespace,
		Name:      "connector_up",
		Help:      "1 when the connector's last health probe succeeded, 0 otherwise",
	}, []string{"connector"})
	searchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricNamespace,
		Name:      "search_duration_seconds",
		Help:      "Histogram of end-to-end search durations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.1, 1.8, 10),
	})
)

// Register adds the collectors to the default Prometheus registry (idempotent).
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(searches, candidates, detailFallbacks, connectorUp, searchDuration)
	})
}

func IncSearch(outcome string)       { searches.WithLabelValues(outcome).Inc() }
func AddCandidates(n int)            { candidates.Add(float64(n)) }
func IncDetailFallback(stage string) { detailFallbacks.WithLabelValues(stage).Inc() }
func ObserveSearch(d time.Duration)  { searchDuration.Observe(d.Seconds()) }

func SetConnectorUp(key string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1
	}
	connectorUp.WithLabelValues(key).Set(value)
}
