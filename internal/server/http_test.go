package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/teemow/calendar-mcp/internal/instrumentation"
)

const initializeRequest = `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"1.0.0"}}}`

func newTestHTTPServer(t *testing.T) (*HTTPServer, *httptest.Server) {
	t.Helper()

	mcpSrv := mcpserver.NewMCPServer("calendar-mcp", "test",
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithInstructions("Google Calendar MCP"),
	)
	mcpSrv.AddTool(mcp.NewTool("ping", mcp.WithDescription("Ping")),
		func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcp.NewToolResultText("pong"), nil
		})

	sc := NewServerContext(context.Background(), "calendar", nil)
	srv := NewHTTPServer(mcpSrv, sc, "")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func TestHTTPServer_Initialize(t *testing.T) {
	_, ts := newTestHTTPServer(t)

	req, err := http.NewRequest(http.MethodPost, ts.URL+DefaultMCPEndpoint, strings.NewReader(initializeRequest))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", DefaultMCPEndpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var body struct {
		Result struct {
			Instructions string `json:"instructions"`
			ServerInfo   struct {
				Name string `json:"name"`
			} `json:"serverInfo"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Result.ServerInfo.Name != "calendar-mcp" {
		t.Errorf("serverInfo.name = %q, want calendar-mcp", body.Result.ServerInfo.Name)
	}
	if body.Result.Instructions != "Google Calendar MCP" {
		t.Errorf("instructions = %q, want %q", body.Result.Instructions, "Google Calendar MCP")
	}
}

func TestHTTPServer_HealthEndpoints(t *testing.T) {
	srv, ts := newTestHTTPServer(t)

	for _, path := range []string{"/healthz", "/readyz", "/healthz/detailed"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want %d", path, resp.StatusCode, http.StatusOK)
		}
	}

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	resp, err := http.Get(ts.URL + "/readyz")
	if err != nil {
		t.Fatalf("GET /readyz: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("GET /readyz after shutdown status = %d, want %d", resp.StatusCode, http.StatusServiceUnavailable)
	}
}

func TestHTTPServer_RequestMetricsBoundedPaths(t *testing.T) {
	srv, ts := newTestHTTPServer(t)

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	metrics, err := instrumentation.NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	srv.serverContext.SetMetrics(metrics)

	paths := []string{"/healthz", "/readyz"}
	for i := 0; i < 50; i++ {
		paths = append(paths, fmt.Sprintf("/scan/%d", i))
	}
	for _, path := range paths {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		_ = resp.Body.Close()
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	counts := map[string]int64{}
	series := 0
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "http_requests_total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("http_requests_total is %T, want Sum[int64]", m.Data)
			}
			for _, dp := range sum.DataPoints {
				series++
				path, _ := dp.Attributes.Value("path")
				counts[path.AsString()] += dp.Value
			}
		}
	}

	if series != 3 {
		t.Errorf("http_requests_total series = %d, want 3", series)
	}
	want := map[string]int64{"/healthz": 1, "/readyz": 1, routeOther: 50}
	for path, n := range want {
		if counts[path] != n {
			t.Errorf("requests labelled %q = %d, want %d", path, counts[path], n)
		}
	}
}

func TestHTTPServer_RouteLabel(t *testing.T) {
	srv := NewHTTPServer(mcpserver.NewMCPServer("calendar-mcp", "test"), nil, "/custom")

	tests := []struct {
		path string
		want string
	}{
		{"/custom", "/custom"},
		{"/healthz", "/healthz"},
		{"/readyz", "/readyz"},
		{"/healthz/detailed", "/healthz/detailed"},
		{"/mcp", routeOther},
		{"/custom/extra", routeOther},
		{"/", routeOther},
	}
	for _, tt := range tests {
		if got := srv.routeLabel(tt.path); got != tt.want {
			t.Errorf("routeLabel(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
