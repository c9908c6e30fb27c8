package promadapters

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/AntonStoeckl/typed-criteria-docstore-go/docstore"
)

const helpText = "document store metric "

// MetricsCollector implements docstore.MetricsCollector with Prometheus vectors:
//   - RecordDuration -> HistogramVec in seconds
//   - IncrementCounter -> CounterVec
//   - RecordValue -> GaugeVec
//
// Vectors are registered on first use of a metric name. Their label names are the label keys of
// that first call; later calls leave unknown labels out and fill missing ones with "".
type MetricsCollector struct {
	factory promauto.Factory

	mu         sync.Mutex
	histograms map[string]*labeledVec[*prometheus.HistogramVec]
	counters   map[string]*labeledVec[*prometheus.CounterVec]
	gauges     map[string]*labeledVec[*prometheus.GaugeVec]
}

type labeledVec[V any] struct {
	vec    V
	labels []string
}

func (v *labeledVec[V]) values(labels map[string]string) []string {
	values := make([]string, len(v.labels))
	for i, name := range v.labels {
		values[i] = labels[name]
	}

	return values
}

// NewMetricsCollector creates a collector registering its vectors with registerer.
func NewMetricsCollector(registerer prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		factory:    promauto.With(registerer),
		histograms: make(map[string]*labeledVec[*prometheus.HistogramVec]),
		counters:   make(map[string]*labeledVec[*prometheus.CounterVec]),
		gauges:     make(map[string]*labeledVec[*prometheus.GaugeVec]),
	}
}

// RecordDuration observes duration in seconds.
func (m *MetricsCollector) RecordDuration(metric string, duration time.Duration, labels map[string]string) {
	m.mu.Lock()
	histogram, ok := m.histograms[metric]
	if !ok {
		names := labelNames(labels)
		histogram = &labeledVec[*prometheus.HistogramVec]{
			vec: m.factory.NewHistogramVec(
				prometheus.HistogramOpts{Name: metric, Help: helpText + metric, Buckets: prometheus.DefBuckets},
				names,
			),
			labels: names,
		}
		m.histograms[metric] = histogram
	}
	m.mu.Unlock()

	histogram.vec.WithLabelValues(histogram.values(labels)...).Observe(duration.Seconds())
}

// IncrementCounter increments a counter by one.
func (m *MetricsCollector) IncrementCounter(metric string, labels map[string]string) {
	m.mu.Lock()
	counter, ok := m.counters[metric]
	if !ok {
		names := labelNames(labels)
		counter = &labeledVec[*prometheus.CounterVec]{
			vec:    m.factory.NewCounterVec(prometheus.CounterOpts{Name: metric, Help: helpText + metric}, names),
			labels: names,
		}
		m.counters[metric] = counter
	}
	m.mu.Unlock()

	counter.vec.WithLabelValues(counter.values(labels)...).Inc()
}

// RecordValue sets a gauge to value.
func (m *MetricsCollector) RecordValue(metric string, value float64, labels map[string]string) {
	m.mu.Lock()
	gauge, ok := m.gauges[metric]
	if !ok {
		names := labelNames(labels)
		gauge = &labeledVec[*prometheus.GaugeVec]{
			vec:    m.factory.NewGaugeVec(prometheus.GaugeOpts{Name: metric, Help: helpText + metric}, names),
			labels: names,
		}
		m.gauges[metric] = gauge
	}
	m.mu.Unlock()

	gauge.vec.WithLabelValues(gauge.values(labels)...).Set(value)
}

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

var _ docstore.MetricsCollector = (*MetricsCollector)(nil)
