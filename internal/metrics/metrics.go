package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReportProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spimex_report_probes_total",
		Help: "Total number of report existence probes by outcome",
	}, []string{"status"})

	ReportFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spimex_report_fetches_total",
		Help: "Total number of report downloads by outcome",
	}, []string{"status"})

	ParseFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spimex_report_parse_failures_total",
		Help: "Total number of reports rejected by the parser",
	}, []string{"kind"})

	RecordsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spimex_records_processed_total",
		Help: "Total number of trading records by persistence outcome",
	}, []string{"status"})

	IngestionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "spimex_ingestion_duration_seconds",
		Help:    "Duration of a full ingestion run",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spimex_cache_hits_total",
		Help: "Total number of cache hits",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "spimex_cache_misses_total",
		Help: "Total number of cache misses",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spimex_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

func RecordProbe(status string) {
	ReportProbes.WithLabelValues(status).Inc()
}

func RecordFetch(status string) {
	ReportFetches.WithLabelValues(status).Inc()
}

func RecordParseFailure(kind string) {
	ParseFailures.WithLabelValues(kind).Inc()
}

// RecordRecords adds n to the counter for status; n <= 0 is ignored.
func RecordRecords(status string, n int) {
	if n <= 0 {
		return
	}
	RecordsProcessed.WithLabelValues(status).Add(float64(n))
}

func RecordCacheHit() {
	CacheHits.Inc()
}

func RecordCacheMiss() {
	CacheMisses.Inc()
}

type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{
		start: time.Now(),
	}
}

func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(time.Since(t.start).Seconds())
}

func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
