package calendar_tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calendar-mcp/internal/instrumentation"
	"github.com/teemow/calendar-mcp/internal/server"
	"github.com/teemow/calendar-mcp/internal/tools/common"
)

// Tool names advertised by the calendar provider.
const (
	ToolListEvents  = "list_events"
	ToolCreateEvent = "create_event"
	ToolAddEvent    = "add_event"
)

// Tools returns the static tool catalog of the calendar provider.
func Tools() []mcp.Tool {
	return []mcp.Tool{
		listEventsTool(),
		createEventTool(),
		addEventTool(),
	}
}

// RegisterCalendarTools registers all Calendar tools with the MCP server
func RegisterCalendarTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if sc.CalendarClient() == nil {
		return fmt.Errorf("calendar tools require a calendar client")
	}

	registrations := []struct {
		tool      mcp.Tool
		operation string
		handler   mcpserver.ToolHandlerFunc
	}{
		{listEventsTool(), instrumentation.OperationList, listEventsHandler(sc)},
		{createEventTool(), instrumentation.OperationCreate, createEventHandler(sc)},
		{addEventTool(), instrumentation.OperationCreate, addEventHandler(sc)},
	}

	for _, r := range registrations {
		if err := common.AddTool(s, sc, r.tool, instrumentation.ServiceCalendar, r.operation, r.handler); err != nil {
			return fmt.Errorf("failed to register %s: %w", r.tool.Name, err)
		}
	}

	return nil
}
