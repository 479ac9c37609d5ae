// Package logging provides structured logging utilities for calendar-mcp.
//
// This package centralizes logging patterns to ensure consistent, structured logging
// throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Handler construction for text or JSON output on stderr
//   - Consistent attribute naming across the codebase
//   - Secret masking for API keys
//   - An adapter satisfying the printf-style logger used by the MCP transports
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithTool(slog.Default(), "create_event")
//	logger.Info("event created",
//	    logging.Status(logging.StatusSuccess))
//
// # Security Considerations
//
// API keys are never logged directly; use SanitizeToken when a key has to be
// referenced in a log line.
//
// The MCP stdio transport owns stdout, so loggers must write to stderr.
package logging
