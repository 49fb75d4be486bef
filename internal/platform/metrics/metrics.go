package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ProgramsCreated    prometheus.Counter
	MembersAdded       prometheus.Counter
	MembersImported    prometheus.Counter
	MembersSkipped     prometheus.Counter
	ImportMalformed    prometheus.Counter
	ReceiptsGenerated  prometheus.Counter
	SignatureFallbacks prometheus.Counter
	ReceiptDuration    prometheus.Histogram
	RequestDuration    *prometheus.HistogramVec
}

// New creates and registers all metrics with reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ProgramsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "programtrack_programs_created_total",
			Help: "Total number of programs added to the registry",
		}),
		MembersAdded: f.NewCounter(prometheus.CounterOpts{
			Name: "programtrack_members_added_total",
			Help: "Total number of members added one at a time",
		}),
		MembersImported: f.NewCounter(prometheus.CounterOpts{
			Name: "programtrack_members_imported_total",
			Help: "Total number of members appended by bulk import",
		}),
		MembersSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "programtrack_members_import_skipped_total",
			Help: "Bulk import rows skipped because the national ID already existed",
		}),
		ImportMalformed: f.NewCounter(prometheus.CounterOpts{
			Name: "programtrack_members_import_malformed_total",
			Help: "Bulk import rows dropped for a missing national ID or name",
		}),
		ReceiptsGenerated: f.NewCounter(prometheus.CounterOpts{
			Name: "programtrack_receipts_generated_total",
			Help: "Total number of PDF receipts written",
		}),
		SignatureFallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "programtrack_receipt_signature_fallbacks_total",
			Help: "Receipts written with the signature placeholder instead of an image",
		}),
		ReceiptDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "programtrack_receipt_generation_duration_seconds",
			Help:    "Duration of receipt PDF generation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "programtrack_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, start time.Time) {
	m.RequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
}

// ObserveReceipt records the duration of one receipt generation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveReceipt(start time.Time) {
	m.ReceiptDuration.Observe(time.Since(start).Seconds())
}
