package health

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jonwraymond/breakwater/breaker"
)

// LivenessHandler returns an HTTP handler for liveness probes. It only
// confirms the process is serving requests.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler returns an HTTP handler for readiness probes. It runs
// every check in the aggregator and reduces them to one status line.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		results := agg.CheckAll(ctx)
		status := agg.OverallStatus(results)

		w.Header().Set("Content-Type", "text/plain")

		switch status {
		case StatusHealthy:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
		case StatusDegraded:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("DEGRADED"))
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("UNHEALTHY"))
		}
	}
}

// StatusResponse is the JSON body for the detailed status endpoint.
type StatusResponse struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Checks    map[string]CheckResponse `json:"checks,omitempty"`
}

// CheckResponse is the JSON body for a single health check.
type CheckResponse struct {
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// DetailedHandler returns an HTTP handler with per-check JSON results.
func DetailedHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		results := agg.CheckAll(ctx)
		status := agg.OverallStatus(results)

		response := StatusResponse{
			Status:    status.String(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    make(map[string]CheckResponse, len(results)),
		}
		for name, result := range results {
			check := CheckResponse{
				Status:   result.Status.String(),
				Message:  result.Message,
				Duration: result.Duration.String(),
				Details:  result.Details,
			}
			if result.Error != nil {
				check.Error = result.Error.Error()
			}
			response.Checks[name] = check
		}

		w.Header().Set("Content-Type", "application/json")
		if status == StatusUnhealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		} else {
			w.WriteHeader(http.StatusOK)
		}
		_ = json.NewEncoder(w).Encode(response)
	}
}

// BreakersHandler returns an HTTP handler that reports the stats of every
// breaker in the registry.
func BreakersHandler(reg *breaker.Registry) http.HandlerFunc {
	type breakerJSON struct {
		State             string  `json:"state"`
		Failures          int     `json:"failures"`
		WindowCalls       int     `json:"window_calls"`
		WindowFailureRate float64 `json:"window_failure_rate"`
		WindowAvgLatency  string  `json:"window_avg_latency"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		stats := reg.AllStats()

		body := make(map[string]breakerJSON, len(stats))
		for name, s := range stats {
			body[name] = breakerJSON{
				State:             s.State.String(),
				Failures:          s.Failures,
				WindowCalls:       s.WindowCalls,
				WindowFailureRate: s.WindowFailureRate,
				WindowAvgLatency:  s.WindowAvgLatency.String(),
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(body)
	}
}

// ResetHandler returns an HTTP handler that resets one breaker by name,
// taken from the path suffix. Only POST is accepted.
func ResetHandler(reg *breaker.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		name := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		b, ok := reg.Lookup(name)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "unknown breaker: " + name,
			})
			return
		}

		b.Reset()
		w.WriteHeader(http.StatusNoContent)
	}
}

// RegisterHandlers mounts the standard endpoints on the mux:
// /healthz (liveness), /readyz (readiness), /health (detailed),
// /breakers (registry stats), and /breakers/reset/{name}.
func RegisterHandlers(mux *http.ServeMux, agg *Aggregator, reg *breaker.Registry) {
	mux.HandleFunc("/healthz", LivenessHandler())
	mux.HandleFunc("/readyz", ReadinessHandler(agg))
	mux.HandleFunc("/health", DetailedHandler(agg))
	mux.HandleFunc("/breakers", BreakersHandler(reg))
	mux.HandleFunc("/breakers/reset/", ResetHandler(reg))
}
