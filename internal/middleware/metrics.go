package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Authentication metrics
	signInAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_sign_in_attempts_total",
			Help: "Total number of sign-in attempts",
		},
		[]string{"provider", "status"}, // provider: password/google/otp, status: success/failure/blocked
	)

	tokenVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_token_verifications_total",
			Help: "Total number of access token verifications",
		},
		[]string{"status"}, // status: success/failure
	)

	otpIssuedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_otp_issued_total",
			Help: "Total number of OTP challenges issued",
		},
	)

	otpVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_otp_verifications_total",
			Help: "Total number of OTP verification attempts",
		},
		[]string{"status"}, // status: success/mismatch/gone/blocked
	)

	rateLimitHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
	)
)

// Metrics creates a Prometheus metrics middleware
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}

// RecordSignInAttempt records a sign-in attempt metric
func RecordSignInAttempt(provider, status string) {
	signInAttemptsTotal.WithLabelValues(provider, status).Inc()
}

// RecordTokenVerification records an access token verification metric
func RecordTokenVerification(status string) {
	tokenVerificationsTotal.WithLabelValues(status).Inc()
}

// RecordOTPIssued records an issued OTP challenge
func RecordOTPIssued() {
	otpIssuedTotal.Inc()
}

// RecordOTPVerification records an OTP verification attempt
func RecordOTPVerification(status string) {
	otpVerificationsTotal.WithLabelValues(status).Inc()
}

// RecordRateLimitHit records a rate limit hit
func RecordRateLimitHit() {
	rateLimitHitsTotal.Inc()
}
