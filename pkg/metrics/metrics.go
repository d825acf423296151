package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ScreeningsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "culturequest", Name: "moderation_screenings_total", Help: "Number of completed screenings by verdict."},
		[]string{"verdict"},
	)
	GatewayFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "culturequest", Name: "moderation_gateway_fallbacks_total", Help: "Number of screenings that fell back to NEEDS_REVIEW after a gateway failure or malformed response."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "culturequest", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "culturequest", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(ScreeningsTotal)
	reg.MustRegister(GatewayFallbacks)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
