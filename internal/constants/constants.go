package constants

import "time"

// Abuse thresholds. These are fixed policy, not configuration.
const (
	MaxRequestsPerWindow = 5
	RequestWindow        = 60 * time.Second
	MaxInputLength       = 50
	InvalidLimit         = 3
)

const (
	RouteHome    = "/"
	RouteSubmit  = "/api/submit"
	RouteHealthz = "/healthz"
	RouteMetrics = "/metrics"
)

const (
	CommandFormField = "command"
)

type contextKey string

const (
	RequestIDKey contextKey = "request_id"
)
