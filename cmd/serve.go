package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calendar-mcp/internal/calendar"
	"github.com/teemow/calendar-mcp/internal/instrumentation"
	"github.com/teemow/calendar-mcp/internal/logging"
	"github.com/teemow/calendar-mcp/internal/provider"
	"github.com/teemow/calendar-mcp/internal/server"
)

// Supported transports.
const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// Viper keys for the serve command. Calendar keys live in internal/calendar.
const (
	keyTransport      = "transport"
	keyHTTPAddr       = "http_addr"
	keyEndpoint       = "mcp_endpoint"
	keyProvider       = "provider"
	keyArgumentStyle  = "argument_style"
	keyDebug          = "debug"
	keyLogFormat      = "log_format"
	keyMetricsEnabled = "metrics_enabled"
	keyMetricsAddr    = "metrics_addr"
)

// serveConfig is the resolved configuration of one serve invocation.
type serveConfig struct {
	Transport     string
	HTTPAddr      string
	Endpoint      string
	Provider      string
	ArgumentStyle server.ArgumentStyle
	Debug         bool
	LogFormat     string
	Metrics       MetricsConfig
	Calendar      calendar.Config
}

// MetricsConfig holds metrics server configuration
type MetricsConfig struct {
	Enabled bool
	Addr    string
}

func newServeCmd() *cobra.Command {
	v := calendar.NewViper()
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server for one tool provider.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP transport with health and metrics endpoints

The calendar provider reads its settings from flags, GOOGLE_CALENDAR_*
environment variables and an optional YAML config file:
  GOOGLE_CALENDAR_API_KEY    API key sent with every request (required for event creation)
  GOOGLE_CALENDAR_ID         Calendar to write to (default: primary)
  GOOGLE_CALENDAR_TIMEZONE   Default event time zone (default: Asia/Tokyo)
  GOOGLE_CALENDAR_ENDPOINT   Calendar API base URL

Instrumentation is configured through the OpenTelemetry environment
variables (INSTRUMENTATION_ENABLED, METRICS_EXPORTER, TRACING_EXPORTER,
OTEL_EXPORTER_OTLP_ENDPOINT, ...).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(v, configFile)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Path to a YAML config file")
	addServeFlags(cmd.Flags(), v)

	return cmd
}

// addServeFlags defines the serve flags on fs and binds them into v.
func addServeFlags(fs *pflag.FlagSet, v *viper.Viper) {
	fs.String("transport", transportStdio, "Transport type: stdio or streamable-http")
	fs.String("http-addr", server.DefaultHTTPAddr, "HTTP server address (for streamable-http transport)")
	fs.String("mcp-endpoint", server.DefaultMCPEndpoint, "MCP endpoint path (for streamable-http transport)")
	fs.String("provider", provider.Calendar, "Tool provider to serve: "+strings.Join(provider.Names(), " or "))
	fs.String("argument-style", string(server.ArgumentStyleStruct), "How tool arguments are read: struct or fields")
	fs.Bool("debug", false, "Enable debug logging")
	fs.String("log-format", logging.FormatText, "Log format: text or json")
	fs.Bool("metrics-enabled", false, "Serve Prometheus metrics on a dedicated port (streamable-http only). Can also use METRICS_ENABLED env var.")
	fs.String("metrics-addr", server.DefaultMetricsAddr, "Metrics server address. Can also use METRICS_ADDR env var.")

	fs.String("calendar-id", calendar.DefaultCalendarID, "Calendar events are written to")
	fs.String("timezone", calendar.DefaultTimeZone, "Default IANA time zone for new events")
	fs.Duration("request-timeout", 0, "Timeout for each Google Calendar API call (0 means none)")
	fs.Bool("validate-ordering", true, "Reject events whose end is not after their start")

	bindings := map[string]string{
		keyTransport:                 "transport",
		keyHTTPAddr:                  "http-addr",
		keyEndpoint:                  "mcp-endpoint",
		keyProvider:                  "provider",
		keyArgumentStyle:             "argument-style",
		keyDebug:                     "debug",
		keyLogFormat:                 "log-format",
		keyMetricsEnabled:            "metrics-enabled",
		keyMetricsAddr:               "metrics-addr",
		calendar.KeyCalendarID:       "calendar-id",
		calendar.KeyTimeZone:         "timezone",
		calendar.KeyRequestTimeout:   "request-timeout",
		calendar.KeyValidateOrdering: "validate-ordering",
	}
	for key, name := range bindings {
		_ = v.BindPFlag(key, fs.Lookup(name))
	}

	_ = v.BindEnv(keyMetricsEnabled, "METRICS_ENABLED")
	_ = v.BindEnv(keyMetricsAddr, "METRICS_ADDR")
}

// loadServeConfig resolves flags, environment and the optional config file.
func loadServeConfig(v *viper.Viper, configFile string) (serveConfig, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return serveConfig{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	transport := strings.ToLower(strings.TrimSpace(v.GetString(keyTransport)))
	switch transport {
	case transportStdio, transportStreamableHTTP:
	default:
		return serveConfig{}, fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", transport)
	}

	providerName := strings.ToLower(strings.TrimSpace(v.GetString(keyProvider)))
	if _, err := provider.Describe(providerName, version); err != nil {
		return serveConfig{}, err
	}

	style, err := server.ParseArgumentStyle(v.GetString(keyArgumentStyle))
	if err != nil {
		return serveConfig{}, err
	}

	logFormat, err := logging.ParseFormat(v.GetString(keyLogFormat))
	if err != nil {
		return serveConfig{}, err
	}

	calCfg, err := calendar.LoadConfig(v)
	if err != nil {
		return serveConfig{}, fmt.Errorf("invalid calendar configuration: %w", err)
	}

	return serveConfig{
		Transport:     transport,
		HTTPAddr:      v.GetString(keyHTTPAddr),
		Endpoint:      v.GetString(keyEndpoint),
		Provider:      providerName,
		ArgumentStyle: style,
		Debug:         v.GetBool(keyDebug),
		LogFormat:     logFormat,
		Metrics: MetricsConfig{
			Enabled: v.GetBool(keyMetricsEnabled),
			Addr:    v.GetString(keyMetricsAddr),
		},
		Calendar: calCfg,
	}, nil
}

func runServe(ctx context.Context, cfg serveConfig) error {
	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// stdout carries the MCP stream in stdio mode, so logs always go to stderr
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := logging.NewLogger(os.Stderr, level, cfg.LogFormat)
	slog.SetDefault(logger)

	descriptor, err := provider.Describe(cfg.Provider, version)
	if err != nil {
		return err
	}

	// Initialize instrumentation provider
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	instrProvider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := instrProvider.Shutdown(ctx); err != nil {
			logger.Warn("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	var client *calendar.Client
	if descriptor.Provider == provider.Calendar {
		client, err = calendar.NewClient(shutdownCtx, cfg.Calendar)
		if err != nil {
			return fmt.Errorf("failed to create calendar client: %w", err)
		}
		if cfg.Calendar.APIKey == "" {
			logger.Warn("calendar API key is not set, event creation will fail until it is configured",
				slog.String("env", calendar.EnvAPIKey))
		} else {
			logger.Debug("calendar client configured",
				slog.String("calendar_id", cfg.Calendar.CalendarID),
				slog.String("api_key", logging.SanitizeToken(cfg.Calendar.APIKey)))
		}
	}

	serverContext := server.NewServerContext(shutdownCtx, descriptor.Provider, client)
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("error during server context shutdown", logging.Err(err))
		}
	}()
	serverContext.SetArgumentStyle(cfg.ArgumentStyle)
	serverContext.SetMetrics(instrProvider.Metrics())
	serverContext.SetAuditLogger(instrumentation.NewAuditLoggerWithConfig(logger, instrConfig.AuditLogging))

	mcpSrv, err := provider.NewMCPServer(descriptor, serverContext)
	if err != nil {
		return err
	}

	logger.Info("starting calendar-mcp",
		logging.Provider(descriptor.Provider),
		slog.String("transport", cfg.Transport),
		slog.String("version", version),
		slog.String("argument_style", string(cfg.ArgumentStyle)),
		slog.Int("tools", len(descriptor.Tools)))

	switch cfg.Transport {
	case transportStdio:
		return runStdioServer(mcpSrv, logger)
	case transportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, cfg, instrProvider, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", cfg.Transport)
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer, logger *slog.Logger) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv,
			mcpserver.WithErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError)),
		); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, cfg serveConfig, instrProvider *instrumentation.Provider, logger *slog.Logger) error {
	httpServer := server.NewHTTPServer(mcpSrv, sc, cfg.Endpoint)

	metricsServer, metricsErr, err := startMetricsServer(cfg.Metrics, instrProvider, logger)
	if err != nil {
		return err
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
	case err := <-metricsErr:
		runErr = fmt.Errorf("metrics server stopped with error: %w", err)
	case err := <-serverDone:
		if err != nil {
			runErr = fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("error shutting down HTTP server: %w", err)
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("error shutting down metrics server", logging.Err(err))
		}
	}

	if runErr == nil {
		logger.Info("HTTP server gracefully stopped")
	}
	return runErr
}

// startMetricsServer starts the Prometheus metrics server when enabled. The
// returned channel receives the error if the server stops unexpectedly.
func startMetricsServer(cfg MetricsConfig, instrProvider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, <-chan error, error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}
	if !instrProvider.Enabled() || !instrProvider.PrometheusEnabled() {
		logger.Warn("metrics server requested but prometheus exporter is not active, skipping")
		return nil, nil, nil
	}

	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    cfg.Addr,
		InstrumentationProvider: instrProvider,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
	}()

	// Give the listener a moment so bind errors surface at startup
	select {
	case err := <-metricsErr:
		return nil, nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	logger.Info("metrics server started", slog.String("addr", metricsServer.Addr()))
	return metricsServer, metricsErr, nil
}
