package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// Data freshness
	MetricCalendarAge   = "calendar.cache_age_seconds"
	MetricFetchFailures = "calendar.provider_failures"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricComparisons = "business.pass_comparisons"
	MetricPassBuys    = "business.buy_pass_recommendations"
)
