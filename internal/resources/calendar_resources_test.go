package resources

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calendar-mcp/internal/calendar"
	"github.com/teemow/calendar-mcp/internal/server"
	"github.com/teemow/calendar-mcp/internal/tools/toolstest"
)

type readResult struct {
	Contents []struct {
		URI      string `json:"uri"`
		MIMEType string `json:"mimeType"`
		Text     string `json:"text"`
	} `json:"contents"`
}

func newResourceServer(t *testing.T, cfg calendar.Config) *mcpserver.MCPServer {
	t.Helper()

	client, err := calendar.NewClient(context.Background(), cfg)
	require.NoError(t, err)

	sc := server.NewServerContext(context.Background(), "calendar", client)
	t.Cleanup(func() { _ = sc.Shutdown() })
	sc.SetArgumentStyle(server.ArgumentStyleFields)

	s := mcpserver.NewMCPServer("test", "1.0.0", mcpserver.WithResourceCapabilities(false, false))
	require.NoError(t, RegisterCalendarResources(s, sc))
	return s
}

func readConfig(t *testing.T, s *mcpserver.MCPServer) CalendarConfig {
	t.Helper()

	var result readResult
	rpcErr := toolstest.Send(t, s, "resources/read", map[string]any{"uri": CalendarConfigURI}, &result)
	require.Nil(t, rpcErr)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, CalendarConfigURI, result.Contents[0].URI)
	assert.Equal(t, "application/json", result.Contents[0].MIMEType)

	var got CalendarConfig
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &got))
	return got
}

func TestCalendarConfigResource(t *testing.T) {
	s := newResourceServer(t, calendar.Config{
		APIKey:           "secret-key",
		CalendarID:       "team@example.com",
		RequestTimeout:   5 * time.Second,
		ValidateOrdering: true,
	})

	got := readConfig(t, s)
	assert.Equal(t, "team@example.com", got.CalendarID)
	assert.Equal(t, calendar.DefaultTimeZone, got.DefaultTimeZone)
	assert.Equal(t, calendar.DefaultEndpoint, got.Endpoint)
	assert.Equal(t, "configured", got.APIKey)
	assert.Equal(t, "5s", got.RequestTimeout)
	assert.True(t, got.ValidateOrdering)
	assert.Equal(t, "fields", got.ArgumentStyle)
}

func TestCalendarConfigResource_NeverExposesKey(t *testing.T) {
	s := newResourceServer(t, calendar.Config{APIKey: "secret-key"})

	var result readResult
	require.Nil(t, toolstest.Send(t, s, "resources/read", map[string]any{"uri": CalendarConfigURI}, &result))
	require.Len(t, result.Contents, 1)
	assert.NotContains(t, result.Contents[0].Text, "secret-key")
}

func TestCalendarConfigResource_MissingKey(t *testing.T) {
	s := newResourceServer(t, calendar.Config{})

	got := readConfig(t, s)
	assert.Equal(t, "missing", got.APIKey)
	assert.Equal(t, "none", got.RequestTimeout)
}

func TestRegisterCalendarResources_NoClient(t *testing.T) {
	sc := server.NewServerContext(context.Background(), "calendar", nil)
	defer func() { _ = sc.Shutdown() }()

	s := mcpserver.NewMCPServer("test", "1.0.0")
	assert.Error(t, RegisterCalendarResources(s, sc))
}
