package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calendar-mcp/internal/server"
)

// CalendarConfigURI is the URI of the calendar settings resource.
const CalendarConfigURI = "calendar://config"

// CalendarConfig is the content of the calendar settings resource.
type CalendarConfig struct {
	CalendarID       string `json:"calendarId"`
	DefaultTimeZone  string `json:"defaultTimeZone"`
	Endpoint         string `json:"endpoint"`
	APIKey           string `json:"apiKey"`
	RequestTimeout   string `json:"requestTimeout"`
	ValidateOrdering bool   `json:"validateOrdering"`
	ArgumentStyle    string `json:"argumentStyle"`
}

// RegisterCalendarResources registers the read-only calendar settings resource
func RegisterCalendarResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if sc.CalendarClient() == nil {
		return fmt.Errorf("calendar resources require a calendar client")
	}

	configResource := mcp.NewResource(
		CalendarConfigURI,
		"Calendar Settings",
		mcp.WithResourceDescription("Calendar events are written to, and the defaults applied to new events"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(configResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleCalendarConfig(ctx, request, sc)
	})

	return nil
}

func handleCalendarConfig(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	cfg := sc.CalendarClient().Config()

	apiKey := "missing"
	if cfg.APIKey != "" {
		apiKey = "configured"
	}

	timeout := "none"
	if cfg.RequestTimeout > 0 {
		timeout = cfg.RequestTimeout.String()
	}

	jsonData, err := json.MarshalIndent(CalendarConfig{
		CalendarID:       cfg.CalendarID,
		DefaultTimeZone:  cfg.DefaultTimeZone,
		Endpoint:         cfg.Endpoint,
		APIKey:           apiKey,
		RequestTimeout:   timeout,
		ValidateOrdering: cfg.ValidateOrdering,
		ArgumentStyle:    string(sc.ArgumentStyle()),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal calendar settings: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
