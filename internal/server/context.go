package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/teemow/calendar-mcp/internal/calendar"
	"github.com/teemow/calendar-mcp/internal/instrumentation"
)

// ArgumentStyle selects how tool handlers read their arguments.
type ArgumentStyle string

const (
	// ArgumentStyleStruct binds the whole argument object into a typed struct.
	ArgumentStyleStruct ArgumentStyle = "struct"

	// ArgumentStyleFields reads each named argument individually.
	ArgumentStyleFields ArgumentStyle = "fields"
)

// ParseArgumentStyle validates s. An empty string selects ArgumentStyleStruct.
func ParseArgumentStyle(s string) (ArgumentStyle, error) {
	switch ArgumentStyle(s) {
	case "", ArgumentStyleStruct:
		return ArgumentStyleStruct, nil
	case ArgumentStyleFields:
		return ArgumentStyleFields, nil
	}
	return "", fmt.Errorf("invalid argument style %q, must be one of: struct, fields", s)
}

// ServerContext holds the context for the MCP server
type ServerContext struct {
	ctx            context.Context
	cancel         context.CancelFunc
	calendarClient *calendar.Client
	provider       string
	argumentStyle  ArgumentStyle
	metrics        *instrumentation.Metrics
	auditLogger    *instrumentation.AuditLogger
	mu             sync.RWMutex
	shutdown       bool
}

// NewServerContext creates a new server context. client may be nil when the
// served provider does not talk to Google Calendar.
func NewServerContext(ctx context.Context, provider string, client *calendar.Client) *ServerContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:            shutdownCtx,
		cancel:         cancel,
		calendarClient: client,
		provider:       provider,
		argumentStyle:  ArgumentStyleStruct,
	}
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// CalendarClient returns the shared Calendar client, or nil.
func (sc *ServerContext) CalendarClient() *calendar.Client {
	return sc.calendarClient
}

// Provider returns the name of the tool provider being served.
func (sc *ServerContext) Provider() string {
	return sc.provider
}

// ArgumentStyle returns how tool handlers read their arguments.
func (sc *ServerContext) ArgumentStyle() ArgumentStyle {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.argumentStyle
}

// SetArgumentStyle sets how tool handlers read their arguments.
func (sc *ServerContext) SetArgumentStyle(style ArgumentStyle) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.argumentStyle = style
}

// Metrics returns the metrics recorder, or nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.metrics
}

// SetMetrics sets the metrics recorder used by tool handlers.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.metrics = m
}

// AuditLogger returns the audit logger, or nil when audit logging is off.
func (sc *ServerContext) AuditLogger() *instrumentation.AuditLogger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.auditLogger
}

// SetAuditLogger sets the audit logger used by tool handlers.
func (sc *ServerContext) SetAuditLogger(al *instrumentation.AuditLogger) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.auditLogger = al
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
