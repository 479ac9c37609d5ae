// Package resources provides MCP resources for exposing server configuration.
// Resources are read-only data sources that MCP clients can fetch, such as
// the calendar an adapter writes to and the time zone it applies by default.
//
// Secrets never appear in resource contents; the API key is reported only as
// configured or missing.
package resources
