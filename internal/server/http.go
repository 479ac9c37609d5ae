package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/teemow/calendar-mcp/internal/logging"
)

const (
	// DefaultHTTPAddr is the default listen address of the streamable HTTP transport.
	DefaultHTTPAddr = ":8080"

	// DefaultMCPEndpoint is the path serving MCP requests.
	DefaultMCPEndpoint = "/mcp"

	// routeOther labels requests to paths the server does not serve.
	routeOther = "other"
)

// HTTPServer serves an MCP server over the streamable HTTP transport,
// together with health probes.
type HTTPServer struct {
	mcpServer     *mcpserver.MCPServer
	serverContext *ServerContext
	health        *HealthChecker
	endpoint      string
	httpServer    *http.Server
	logger        *slog.Logger
}

// NewHTTPServer wraps mcpServer. endpoint defaults to DefaultMCPEndpoint.
func NewHTTPServer(mcpServer *mcpserver.MCPServer, sc *ServerContext, endpoint string) *HTTPServer {
	if endpoint == "" {
		endpoint = DefaultMCPEndpoint
	}
	return &HTTPServer{
		mcpServer:     mcpServer,
		serverContext: sc,
		health:        NewHealthChecker(sc),
		endpoint:      endpoint,
		logger:        slog.Default().With(slog.String("component", "http")),
	}
}

// HealthChecker returns the checker backing /healthz and /readyz.
func (s *HTTPServer) HealthChecker() *HealthChecker {
	return s.health
}

// Handler returns the complete HTTP handler: MCP endpoint, health probes,
// request tracing and request metrics.
func (s *HTTPServer) Handler() http.Handler {
	streamable := mcpserver.NewStreamableHTTPServer(s.mcpServer,
		mcpserver.WithEndpointPath(s.endpoint),
		mcpserver.WithLogger(logging.NewSlogAdapter(s.logger)),
	)

	mux := http.NewServeMux()
	mux.Handle(s.endpoint, streamable)
	s.health.RegisterHealthEndpoints(mux)

	return otelhttp.NewHandler(s.withRequestMetrics(mux), "mcp.http")
}

// withRequestMetrics records every request in http_requests_total.
func (s *HTTPServer) withRequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)

		if metrics := s.serverContext.Metrics(); metrics != nil {
			metrics.RecordHTTPRequest(r.Context(), r.Method, s.routeLabel(r.URL.Path), m.Code, m.Duration)
		}
		s.logger.Debug("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", m.Code),
			slog.Duration(logging.KeyDuration, m.Duration))
	})
}

// routeLabel maps a request path to one of the served routes so callers
// cannot grow the path label without bound.
func (s *HTTPServer) routeLabel(path string) string {
	switch path {
	case s.endpoint, "/healthz", "/readyz", "/healthz/detailed":
		return path
	default:
		return routeOther
	}
}

// Start listens on addr and blocks until the server stops.
func (s *HTTPServer) Start(addr string) error {
	if addr == "" {
		addr = DefaultHTTPAddr
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("starting MCP server", slog.String("addr", addr), slog.String("endpoint", s.endpoint))
	return s.httpServer.ListenAndServe()
}

// Shutdown marks the server not ready and drains open requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
