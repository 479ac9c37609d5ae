// Package instrumentation provides OpenTelemetry metrics, tracing and audit
// logging for the calendar-mcp tool server.
//
// # Metrics
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of tool invocations by tool, status
//   - mcp_tool_duration_seconds: Histogram of tool execution durations
//   - mcp_tool_rejections_total: Counter of calls rejected by argument validation
//
// Google API Metrics:
//   - google_api_operations_total: Counter of Calendar API calls by service, operation, status
//   - google_api_operation_duration_seconds: Histogram of Calendar API call durations
//
// HTTP Metrics (streamable-http transport only):
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// # Tracing
//
// Spans are created for tool invocations (tool.<name>) and Calendar API calls
// (google.<service>.<operation>). Outbound HTTP requests are traced by otelhttp.
//
// # Configuration
//
// Instrumentation is configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: prometheus, otlp, stdout (default: prometheus)
//   - TRACING_EXPORTER: otlp, stdout, none (default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: calendar-mcp)
//   - AUDIT_LOGGING_ENABLED: Log one line per tool invocation (default: true)
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordToolInvocation(ctx, "create_event", instrumentation.StatusSuccess, time.Since(start))
package instrumentation
