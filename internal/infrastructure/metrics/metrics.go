package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Tip metrics
	TipsCreated prometheus.Counter
	TipDuration prometheus.Histogram
	TipAmount   prometheus.Histogram
	TipErrors   *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits prometheus.Counter
}

// New creates all metrics and registers them with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		TipsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "tipledger_tips_created_total",
			Help: "Total number of committed tips",
		}),
		TipDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tipledger_tip_duration_seconds",
			Help:    "Duration of successful tip operations, retries included",
			Buckets: prometheus.DefBuckets,
		}),
		TipAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tipledger_tip_amount",
			Help:    "Tip amounts",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 50, 100, 500, 1000},
		}),
		TipErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tipledger_tip_errors_total",
				Help: "Total number of rejected or failed tips by reason",
			},
			[]string{"reason"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tipledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tipledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "route"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "tipledger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tipledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "tipledger_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),
	}
}

// TipCreated implements usecase.TipMetrics.
func (m *Metrics) TipCreated(amount decimal.Decimal, elapsed time.Duration) {
	m.TipsCreated.Inc()
	m.TipDuration.Observe(elapsed.Seconds())
	m.TipAmount.Observe(amount.InexactFloat64())
}

// TipFailed implements usecase.TipMetrics.
func (m *Metrics) TipFailed(reason string) {
	m.TipErrors.WithLabelValues(reason).Inc()
}
