package telemetry

// SLI metric names used for instrumentation.
const (
	// Latency
	MetricAPILatencyP50 = "api.latency.p50"
	MetricAPILatencyP95 = "api.latency.p95"
	MetricAPILatencyP99 = "api.latency.p99"

	// Throughput
	MetricRequestsPerSec = "api.requests_per_second"

	// External resolvers
	MetricGeocodeLatency = "geocode.request_latency"
	MetricRoutingLatency = "routing.request_latency"

	// Availability
	MetricUptime = "service.uptime_percentage"

	// Business
	MetricSearches     = "business.trip_searches"
	MetricRoutesServed = "business.routes_served"
)
