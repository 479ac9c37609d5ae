// Package server provides the MCP server context and the HTTP surfaces of
// the calendar-mcp application.
//
// # Key Components
//
// ServerContext carries the state shared by every tool handler: the Calendar
// client, the provider being served, the argument extraction style, and the
// optional metrics recorder and audit logger. It is built once at startup and
// is read-only afterwards.
//
// HTTPServer exposes the MCP server over the streamable HTTP transport at
// /mcp, next to the /healthz and /readyz probes. Requests are traced with
// otelhttp and counted in http_requests_total.
//
// MetricsServer serves Prometheus metrics on a dedicated port.
package server
