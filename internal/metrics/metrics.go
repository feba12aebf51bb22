package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Outbound calls to the diabetes API
	APIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "diabetes_webapp_api_requests_total",
		Help: "Requests sent to the diabetes API.",
	}, []string{"method", "route", "status"})

	APIRequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "diabetes_webapp_api_request_duration_seconds",
		Help:    "Round-trip time of requests to the diabetes API.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
	}, []string{"method", "route", "status"})

	// Mini-app backend
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "diabetes_webapp_http_requests_total",
		Help: "Requests served to the mini-app.",
	}, []string{"method", "route", "status"})

	ActiveRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "diabetes_webapp_active_requests",
		Help: "Current number of in-flight mini-app requests.",
	})

	// Insight generation by provider and outcome
	InsightsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "diabetes_webapp_insights_total",
		Help: "Insight generations by provider and outcome.",
	}, []string{"provider", "outcome"})

	// Bot updates by kind
	BotUpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "diabetes_webapp_bot_updates_total",
		Help: "Telegram updates handled by the bot.",
	}, []string{"kind"})
)

func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(
		APIRequestsTotal,
		APIRequestDurationSeconds,
		HTTPRequestsTotal,
		ActiveRequests,
		InsightsTotal,
		BotUpdatesTotal,
	)
}
