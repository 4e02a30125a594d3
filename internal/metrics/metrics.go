package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// 1) Chat volume
	ChatRequestsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chat_requests_total",
		Help: "Total number of chat requests received.",
	})

	// 2) Concurrency (in flight)
	ActiveChatRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "active_chat_requests",
		Help: "Current number of in-flight chat requests.",
	})

	// 3) End-to-end chat latency
	ChatDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "chat_duration_seconds",
		Help:    "End-to-end handler duration for chat requests.",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 40, 60},
	})

	// 4) Model invocation latency
	ModelDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "model_duration_seconds",
		Help:    "Duration of generateContent calls.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
	})

	// 5) Model failures
	ModelErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "model_errors_total",
		Help: "Generation calls that failed or timed out.",
	})

	// 6) Rate limiting drops
	RateLimitDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_dropped_total",
		Help: "Chat requests rejected by the per-user rate limiter.",
	})
)

func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		ChatRequestsTotal,
		ActiveChatRequests,
		ChatDurationSeconds,
		ModelDurationSeconds,
		ModelErrorsTotal,
		RateLimitDroppedTotal,
	)
}
