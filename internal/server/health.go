package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Values reported by the health endpoints.
const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
	healthStatusConfigured   = "configured"
	healthStatusMissing      = "missing"
)

// Names of the readiness checks.
const (
	checkReady          = "ready"
	checkShutdown       = "shutdown"
	checkCalendarAPIKey = "calendar_api_key"
)

// HealthChecker serves the liveness and readiness probes of the HTTP
// transport.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time
}

// NewHealthChecker creates a HealthChecker that starts out ready. sc may be
// nil.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetReady sets the readiness state of the server.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// HealthResponse represents the JSON response for health endpoints.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse adds process and provider details to the readiness
// result.
type DetailedHealthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Provider string `json:"provider,omitempty"`
	// CalendarAPIKey is omitted for providers without a Calendar client.
	CalendarAPIKey string `json:"calendar_api_key,omitempty"`
}

// probe is one evaluation of the readiness checks.
type probe struct {
	status string
	checks map[string]string
}

func (p probe) ok() bool {
	return p.status == healthStatusOK
}

// evaluate runs the readiness checks. A missing API key is reported but does
// not fail readiness: create calls answer with a configuration error instead.
func (h *HealthChecker) evaluate() probe {
	p := probe{
		status: healthStatusOK,
		checks: map[string]string{
			checkReady:    healthStatusOK,
			checkShutdown: healthStatusOK,
		},
	}

	if h.serverContext != nil && h.serverContext.IsShutdown() {
		p.checks[checkShutdown] = healthStatusShuttingDown
		p.status = healthStatusShuttingDown
	}
	if !h.ready.Load() {
		p.checks[checkReady] = healthStatusNotReady
		p.status = healthStatusNotReady
	}

	if state := h.apiKeyState(); state != "" {
		p.checks[checkCalendarAPIKey] = state
	}
	return p
}

// apiKeyState returns "configured" or "missing" for the Calendar API key, or
// "" when no Calendar client is in use.
func (h *HealthChecker) apiKeyState() string {
	if h.serverContext == nil || h.serverContext.CalendarClient() == nil {
		return ""
	}
	if h.serverContext.CalendarClient().Config().APIKey == "" {
		return healthStatusMissing
	}
	return healthStatusConfigured
}

// LivenessHandler serves /healthz. It only reports that the process is up.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeHealth(w, http.StatusOK, HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler serves /readyz with the individual check results.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		p := h.evaluate()

		response := HealthResponse{Status: healthStatusOK, Checks: p.checks}
		if !p.ok() {
			response.Status = healthStatusNotReady
		}
		writeHealth(w, statusCode(p), response)
	})
}

// DetailedHealthHandler serves /healthz/detailed.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		p := h.evaluate()

		response := DetailedHealthResponse{
			Status:         p.status,
			Uptime:         time.Since(h.startTime).Truncate(time.Second).String(),
			CalendarAPIKey: p.checks[checkCalendarAPIKey],
		}
		if h.serverContext != nil {
			response.Provider = h.serverContext.Provider()
		}
		writeHealth(w, statusCode(p), response)
	})
}

// RegisterHealthEndpoints registers health check endpoints on the given mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

func statusCode(p probe) int {
	if p.ok() {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

func writeHealth(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
