// Package telemetry provides Prometheus metrics and OpenTelemetry tracing
// for the ingestion pipeline.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/jonesrussell/north-cloud/content-ingestor/internal/domain"
)

const serviceName = "content-ingestor"

// Metrics holds the ingestion Prometheus metrics.
type Metrics struct {
	RecordsProcessed  *prometheus.CounterVec
	MediaFailures     prometheus.Counter
	ScheduleDecisions *prometheus.CounterVec
	RecordDuration    prometheus.Histogram
	BatchSize         prometheus.Histogram
	BatchesEmpty      prometheus.Counter
}

// Provider wraps telemetry providers.
type Provider struct {
	Tracer   trace.Tracer
	Metrics  *Metrics
	registry *prometheus.Registry
}

// NewProvider registers metrics on a fresh registry so that several
// providers (one per test, say) can coexist in a process.
func NewProvider() *Provider {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Provider{
		Tracer:   otel.Tracer(serviceName),
		Metrics:  newMetrics(reg),
		registry: reg,
	}
}

// Handler returns the /metrics handler for this provider's registry.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}

// Registry exposes the underlying registry.
func (p *Provider) Registry() *prometheus.Registry {
	return p.registry
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RecordsProcessed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "content_ingestor_records_processed_total",
			Help: "Records processed, by outcome kind",
		}, []string{"kind"}),

		MediaFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "content_ingestor_media_failures_total",
			Help: "Media uploads that failed while the record continued",
		}),

		ScheduleDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "content_ingestor_schedule_decisions_total",
			Help: "Records classified as scheduled or draft",
		}, []string{"status"}),

		RecordDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "content_ingestor_record_duration_seconds",
			Help:    "Time to bind, resolve and submit one record",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),

		BatchSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "content_ingestor_batch_size",
			Help:    "Number of records per batch",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),

		BatchesEmpty: factory.NewCounter(prometheus.CounterOpts{
			Name: "content_ingestor_batches_empty_total",
			Help: "Batches rejected because no records were parsed",
		}),
	}
}

// ObserveRecord records one finished outcome. Safe on a nil receiver.
func (m *Metrics) ObserveRecord(outcome domain.BatchOutcome, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RecordsProcessed.WithLabelValues(string(outcome.Kind)).Inc()
	if outcome.MediaError != nil {
		m.MediaFailures.Inc()
	}
	if outcome.Kind != domain.OutcomeCancelled {
		m.ScheduleDecisions.WithLabelValues(string(outcome.Decision.Status())).Inc()
		m.RecordDuration.Observe(elapsed.Seconds())
	}
}

// ObserveBatch records the size of a batch about to run.
func (m *Metrics) ObserveBatch(size int) {
	if m == nil {
		return
	}
	if size == 0 {
		m.BatchesEmpty.Inc()
		return
	}
	m.BatchSize.Observe(float64(size))
}
