// Package health exposes circuit breaker state as health checks and HTTP
// probe endpoints.
//
// Each breaker maps to a check: a closed circuit is healthy, a half-open
// circuit is degraded, and an open circuit is unhealthy. An Aggregator
// combines breaker checks with any other registered checks and serves
// liveness, readiness, and detailed status endpoints:
//
//	agg := health.NewAggregator()
//	health.RegisterBreakers(agg, registry)
//	mux := http.NewServeMux()
//	health.RegisterHandlers(mux, agg, registry)
package health
