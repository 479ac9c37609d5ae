package calendar_tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calendar-mcp/internal/calendar"
	"github.com/teemow/calendar-mcp/internal/server"
	"github.com/teemow/calendar-mcp/internal/tools/common"
)

func listEventsTool() mcp.Tool {
	return mcp.NewTool(ToolListEvents,
		mcp.WithDescription("Retrieve the list of calendar events"),
		mcp.WithReadOnlyHintAnnotation(true),
	)
}

func createEventTool() mcp.Tool {
	return mcp.NewTool(ToolCreateEvent,
		mcp.WithDescription("Create a new event"),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString("description",
			mcp.Description("Event description"),
		),
		mcp.WithString("start_datetime",
			mcp.Required(),
			mcp.Description("Start time, sent as given (RFC3339, e.g. '2023-12-25T10:00:00+09:00')"),
		),
		mcp.WithString("end_datetime",
			mcp.Required(),
			mcp.Description("End time, sent as given (RFC3339, e.g. '2023-12-25T11:00:00+09:00')"),
		),
		mcp.WithString("timezone",
			mcp.Description("IANA time zone applied to start and end (default: Asia/Tokyo)"),
		),
	)
}

func addEventTool() mcp.Tool {
	return mcp.NewTool(ToolAddEvent,
		mcp.WithDescription("Add a new event (simplified)"),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Event title"),
		),
		mcp.WithString("start_time",
			mcp.Required(),
			mcp.Description("Start time (RFC3339, e.g. '2023-12-25T10:00:00+09:00'); the event lasts one hour"),
		),
	)
}

type createEventArgs struct {
	Summary       string `json:"summary"`
	Description   string `json:"description"`
	StartDateTime string `json:"start_datetime"`
	EndDateTime   string `json:"end_datetime"`
	TimeZone      string `json:"timezone"`
}

func (a *createEventArgs) ReadFields(request mcp.CallToolRequest) {
	a.Summary = request.GetString("summary", "")
	a.Description = request.GetString("description", "")
	a.StartDateTime = request.GetString("start_datetime", "")
	a.EndDateTime = request.GetString("end_datetime", "")
	a.TimeZone = request.GetString("timezone", "")
}

type addEventArgs struct {
	Title     string `json:"title"`
	StartTime string `json:"start_time"`
}

func (a *addEventArgs) ReadFields(request mcp.CallToolRequest) {
	a.Title = request.GetString("title", "")
	a.StartTime = request.GetString("start_time", "")
}

func listEventsHandler(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		events, err := sc.CalendarClient().ListEvents(ctx)
		switch {
		case errors.Is(err, calendar.ErrNotImplemented):
			return common.NotImplementedResult("Listing calendar events is not supported yet", nil), nil
		case err != nil:
			return mcp.NewToolResultError(fmt.Sprintf("Failed to list events: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Found %d events", len(events))), nil
	}
}

func createEventHandler(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args createEventArgs
		if err := common.ReadArguments(sc.ArgumentStyle(), request, &args); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := sc.CalendarClient().CreateEvent(ctx, calendar.EventRequest{
			Title:       args.Summary,
			Description: args.Description,
			Start:       args.StartDateTime,
			End:         args.EndDateTime,
			TimeZone:    args.TimeZone,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to create event: %v", err)), nil
		}

		return mcp.NewToolResultText(calendar.ConfirmationMessage(result)), nil
	}
}

func addEventHandler(sc *server.ServerContext) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args addEventArgs
		if err := common.ReadArguments(sc.ArgumentStyle(), request, &args); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := sc.CalendarClient().AddEvent(ctx, args.Title, args.StartTime)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to add event: %v", err)), nil
		}

		return mcp.NewToolResultText(calendar.ConfirmationMessage(result)), nil
	}
}
