package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ledger"

// Recorder holds the ledger's Prometheus collectors. A nil Recorder records nothing.
type Recorder struct {
	postings        *prometheus.CounterVec
	postingDuration prometheus.Histogram
	ledgerEntries   prometheus.Counter
	generations     *prometheus.CounterVec
	outboxPublished prometheus.Counter
	outboxFailures  prometheus.Counter
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		postings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "postings_total",
			Help:      "Journal entry posting attempts by result.",
		}, []string{"result"}),
		postingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "posting_duration_seconds",
			Help:      "Time spent posting one journal entry.",
			Buckets:   prometheus.DefBuckets,
		}),
		ledgerEntries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ledger_entries_appended_total",
			Help:      "General ledger rows appended.",
		}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recurring_generations_total",
			Help:      "Recurring template generation attempts by result.",
		}, []string{"result"}),
		outboxPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_published_total",
			Help:      "Outbox events relayed to the broker.",
		}),
		outboxFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_relay_failures_total",
			Help:      "Relay batches that failed to publish.",
		}),
	}
	reg.MustRegister(r.postings, r.postingDuration, r.ledgerEntries, r.generations, r.outboxPublished, r.outboxFailures)
	return r
}

// PostingCompleted records one posting attempt. result is "success" or an error kind.
func (r *Recorder) PostingCompleted(result string, ledgerEntries int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.postings.WithLabelValues(result).Inc()
	r.postingDuration.Observe(elapsed.Seconds())
	if ledgerEntries > 0 {
		r.ledgerEntries.Add(float64(ledgerEntries))
	}
}

// GenerationCompleted records one generation attempt.
func (r *Recorder) GenerationCompleted(result string) {
	if r == nil {
		return
	}
	r.generations.WithLabelValues(result).Inc()
}

// OutboxRelayed records one relay batch.
func (r *Recorder) OutboxRelayed(published int, failed bool) {
	if r == nil {
		return
	}
	if published > 0 {
		r.outboxPublished.Add(float64(published))
	}
	if failed {
		r.outboxFailures.Inc()
	}
}

// Handler serves the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
