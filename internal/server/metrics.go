package server

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "imgclass"

// Prediction outcomes, used as the "outcome" label.
const (
	outcomeSuccess        = "success"
	outcomeRejected       = "rejected"
	outcomeStorageError   = "storage_error"
	outcomeInferenceError = "inference_error"
	outcomeTimeout        = "timeout"
	outcomeInternalError  = "internal_error"
)

type Metrics struct {
	provider          string
	requestCounter    *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	predictions       *prometheus.CounterVec
	deduplicated      prometheus.Counter
	inferenceDuration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer, provider string) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		provider: provider,
		requestCounter: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of API requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "API request duration in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"method", "path"},
		),
		predictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "predictions_total",
				Help:      "Prediction requests by outcome",
			},
			[]string{"outcome"},
		),
		deduplicated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_deduplicated_total",
			Help:      "Uploads whose content was already stored",
		}),
		inferenceDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "inference_duration_seconds",
				Help:      "Time spent waiting on the inference backend",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
			[]string{"provider"},
		),
	}
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		// FullPath keeps label cardinality bounded for unknown routes.
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		m.requestCounter.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) observeSuccess(deduplicated bool, inference time.Duration) {
	m.predictions.WithLabelValues(outcomeSuccess).Inc()
	if deduplicated {
		m.deduplicated.Inc()
	}
	m.inferenceDuration.WithLabelValues(m.provider).Observe(inference.Seconds())
}

func (m *Metrics) observeFailure(outcome string) {
	m.predictions.WithLabelValues(outcome).Inc()
}
