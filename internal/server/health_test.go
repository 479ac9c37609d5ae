package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/teemow/calendar-mcp/internal/calendar"
)

func newCalendarContext(t *testing.T, apiKey string) *ServerContext {
	t.Helper()

	client, err := calendar.NewClient(context.Background(), calendar.Config{APIKey: apiKey})
	if err != nil {
		t.Fatalf("calendar.NewClient() error = %v", err)
	}
	return NewServerContext(context.Background(), "calendar", client)
}

func serve(t *testing.T, h http.Handler) (int, map[string]any) {
	t.Helper()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return rec.Code, body
}

func TestHealthChecker_Liveness(t *testing.T) {
	h := NewHealthChecker(nil)

	code, body := serve(t, h.LivenessHandler())
	if code != http.StatusOK {
		t.Errorf("status = %d, want %d", code, http.StatusOK)
	}
	if body["status"] != healthStatusOK {
		t.Errorf("status field = %v, want %q", body["status"], healthStatusOK)
	}
}

func TestHealthChecker_Readiness(t *testing.T) {
	tests := []struct {
		name       string
		sc         func(t *testing.T) *ServerContext
		ready      bool
		wantCode   int
		wantAPIKey any
	}{
		{
			name:     "ready without server context",
			sc:       func(*testing.T) *ServerContext { return nil },
			ready:    true,
			wantCode: http.StatusOK,
		},
		{
			name:     "not ready",
			sc:       func(*testing.T) *ServerContext { return nil },
			ready:    false,
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name: "shutting down",
			sc: func(*testing.T) *ServerContext {
				sc := NewServerContext(context.Background(), "ui", nil)
				_ = sc.Shutdown()
				return sc
			},
			ready:    true,
			wantCode: http.StatusServiceUnavailable,
		},
		{
			name:       "missing api key stays ready",
			sc:         func(t *testing.T) *ServerContext { return newCalendarContext(t, "") },
			ready:      true,
			wantCode:   http.StatusOK,
			wantAPIKey: healthStatusMissing,
		},
		{
			name:       "configured api key",
			sc:         func(t *testing.T) *ServerContext { return newCalendarContext(t, "key") },
			ready:      true,
			wantCode:   http.StatusOK,
			wantAPIKey: healthStatusConfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthChecker(tt.sc(t))
			h.SetReady(tt.ready)

			code, body := serve(t, h.ReadinessHandler())
			if code != tt.wantCode {
				t.Errorf("status = %d, want %d", code, tt.wantCode)
			}

			checks, _ := body["checks"].(map[string]any)
			if checks["calendar_api_key"] != tt.wantAPIKey {
				t.Errorf("calendar_api_key check = %v, want %v", checks["calendar_api_key"], tt.wantAPIKey)
			}
		})
	}
}

func TestHealthChecker_Detailed(t *testing.T) {
	h := NewHealthChecker(newCalendarContext(t, ""))

	code, body := serve(t, h.DetailedHealthHandler())
	if code != http.StatusOK {
		t.Errorf("status = %d, want %d", code, http.StatusOK)
	}
	if body["provider"] != "calendar" {
		t.Errorf("provider = %v, want calendar", body["provider"])
	}
	if body["calendar_api_key"] != healthStatusMissing {
		t.Errorf("calendar_api_key = %v, want %q", body["calendar_api_key"], healthStatusMissing)
	}
	if body["uptime"] == "" {
		t.Error("expected uptime")
	}
}
