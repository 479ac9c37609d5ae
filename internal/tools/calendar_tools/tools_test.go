package calendar_tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calendar-mcp/internal/calendar"
	"github.com/teemow/calendar-mcp/internal/server"
	"github.com/teemow/calendar-mcp/internal/tools/common"
	"github.com/teemow/calendar-mcp/internal/tools/toolstest"
)

// calendarAPI is a stand-in for the Calendar REST API that records the
// events it receives.
type calendarAPI struct {
	*httptest.Server

	mu     sync.Mutex
	status int
	body   string
	events []map[string]any
	paths  []string
}

func newCalendarAPI(t *testing.T, status int, body string) *calendarAPI {
	t.Helper()

	api := &calendarAPI{status: status, body: body}
	api.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var event map[string]any
		_ = json.Unmarshal(raw, &event)

		api.mu.Lock()
		api.events = append(api.events, event)
		api.paths = append(api.paths, r.URL.Path)
		api.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(api.status)
		_, _ = io.WriteString(w, api.body)
	}))
	t.Cleanup(api.Close)
	return api
}

func (a *calendarAPI) calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.events)
}

func (a *calendarAPI) lastEvent() map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.events) == 0 {
		return nil
	}
	return a.events[len(a.events)-1]
}

func newTestServer(t *testing.T, api *calendarAPI, apiKey string, style server.ArgumentStyle) *mcpserver.MCPServer {
	t.Helper()

	client, err := calendar.NewClient(context.Background(), calendar.Config{
		APIKey:           apiKey,
		Endpoint:         api.URL + "/calendar/v3/",
		ValidateOrdering: true,
	})
	require.NoError(t, err)

	sc := server.NewServerContext(context.Background(), "calendar", client)
	sc.SetArgumentStyle(style)
	t.Cleanup(func() { _ = sc.Shutdown() })

	s := mcpserver.NewMCPServer("calendar-mcp", "test", mcpserver.WithToolCapabilities(true))
	require.NoError(t, RegisterCalendarTools(s, sc))
	return s
}

var argumentStyles = []server.ArgumentStyle{server.ArgumentStyleStruct, server.ArgumentStyleFields}

func dateTime(t *testing.T, event map[string]any, key string) map[string]any {
	t.Helper()
	v, ok := event[key].(map[string]any)
	require.True(t, ok, "event has no %q object: %v", key, event)
	return v
}

func TestTools_Catalog(t *testing.T) {
	api := newCalendarAPI(t, http.StatusOK, `{}`)
	s := newTestServer(t, api, "key", server.ArgumentStyleStruct)

	tools := toolstest.ListTools(t, s)
	byName := map[string]toolstest.Tool{}
	for _, tool := range tools {
		byName[tool.Name] = tool
	}
	require.Len(t, byName, 3)

	tests := []struct {
		name        string
		description string
		required    []any
	}{
		{ToolListEvents, "Retrieve the list of calendar events", nil},
		{ToolCreateEvent, "Create a new event", []any{"summary", "start_datetime", "end_datetime"}},
		{ToolAddEvent, "Add a new event (simplified)", []any{"title", "start_time"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool, ok := byName[tt.name]
			require.True(t, ok)
			assert.Equal(t, tt.description, tool.Description)
			if tt.required != nil {
				assert.ElementsMatch(t, tt.required, tool.InputSchema["required"])
			}
		})
	}

	assert.Len(t, Tools(), 3)
}

func TestCreateEvent(t *testing.T) {
	for _, style := range argumentStyles {
		t.Run(string(style), func(t *testing.T) {
			api := newCalendarAPI(t, http.StatusOK, `{"id":"abc123","summary":"Meeting","htmlLink":"https://calendar.google.com/event?eid=abc123"}`)
			s := newTestServer(t, api, "key", style)

			result := toolstest.Call(t, s, ToolCreateEvent, map[string]any{
				"summary":        "Meeting",
				"description":    "Weekly sync",
				"start_datetime": "2023-12-25T10:00:00+09:00",
				"end_datetime":   "2023-12-25T11:30:00+09:00",
				"timezone":       "Europe/Berlin",
			})

			require.False(t, result.IsError, result.Text())
			assert.Contains(t, result.Text(), "abc123")
			assert.Contains(t, result.Text(), "Meeting")
			assert.Contains(t, result.Text(), "https://calendar.google.com/event?eid=abc123")

			require.Equal(t, 1, api.calls())
			event := api.lastEvent()
			assert.Equal(t, "Meeting", event["summary"])
			assert.Equal(t, "Weekly sync", event["description"])
			assert.Equal(t, "2023-12-25T10:00:00+09:00", dateTime(t, event, "start")["dateTime"])
			assert.Equal(t, "2023-12-25T11:30:00+09:00", dateTime(t, event, "end")["dateTime"])
			assert.Equal(t, "Europe/Berlin", dateTime(t, event, "start")["timeZone"])
			assert.Equal(t, "Europe/Berlin", dateTime(t, event, "end")["timeZone"])
			assert.Equal(t, "/calendar/v3/calendars/primary/events", api.paths[0])
		})
	}
}

func TestCreateEvent_DefaultTimeZone(t *testing.T) {
	api := newCalendarAPI(t, http.StatusOK, `{"id":"1"}`)
	s := newTestServer(t, api, "key", server.ArgumentStyleStruct)

	result := toolstest.Call(t, s, ToolCreateEvent, map[string]any{
		"summary":        "Standup",
		"start_datetime": "next monday",
		"end_datetime":   "whenever",
	})

	require.False(t, result.IsError, result.Text())
	assert.Equal(t, "Event 'Unknown' created. ID: 1", result.Text())

	event := api.lastEvent()
	assert.Equal(t, calendar.DefaultTimeZone, dateTime(t, event, "start")["timeZone"])
	assert.Equal(t, calendar.DefaultTimeZone, dateTime(t, event, "end")["timeZone"])
	assert.Equal(t, "next monday", dateTime(t, event, "start")["dateTime"])
	assert.Equal(t, "whenever", dateTime(t, event, "end")["dateTime"])
}

func TestCreateEvent_Failures(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		apiKey    string
		args      map[string]any
		wantText  string
		wantCalls int
	}{
		{
			name:      "missing api key",
			status:    http.StatusOK,
			body:      `{}`,
			args:      map[string]any{"summary": "x", "start_datetime": "a", "end_datetime": "b"},
			wantText:  calendar.EnvAPIKey,
			wantCalls: 0,
		},
		{
			name:      "missing required argument",
			status:    http.StatusOK,
			body:      `{}`,
			apiKey:    "key",
			args:      map[string]any{"summary": "x", "start_datetime": "a"},
			wantText:  "invalid arguments for create_event",
			wantCalls: 0,
		},
		{
			name:      "wrong argument type",
			status:    http.StatusOK,
			body:      `{}`,
			apiKey:    "key",
			args:      map[string]any{"summary": 7, "start_datetime": "a", "end_datetime": "b"},
			wantText:  "invalid arguments for create_event",
			wantCalls: 0,
		},
		{
			name:      "end before start",
			status:    http.StatusOK,
			body:      `{}`,
			apiKey:    "key",
			args:      map[string]any{"summary": "x", "start_datetime": "2024-01-01T10:00:00Z", "end_datetime": "2024-01-01T09:00:00Z"},
			wantText:  "must be after start time",
			wantCalls: 0,
		},
		{
			name:      "upstream rejects",
			status:    http.StatusBadRequest,
			body:      `{"error":"invalid"}`,
			apiKey:    "key",
			args:      map[string]any{"summary": "x", "start_datetime": "a", "end_datetime": "b"},
			wantText:  `{"error":"invalid"}`,
			wantCalls: 1,
		},
		{
			name:      "malformed response",
			status:    http.StatusOK,
			body:      `not json`,
			apiKey:    "key",
			args:      map[string]any{"summary": "x", "start_datetime": "a", "end_datetime": "b"},
			wantText:  "Failed to create event",
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newCalendarAPI(t, tt.status, tt.body)
			s := newTestServer(t, api, tt.apiKey, server.ArgumentStyleStruct)

			result := toolstest.Call(t, s, ToolCreateEvent, tt.args)

			assert.True(t, result.IsError)
			assert.Contains(t, result.Text(), tt.wantText)
			assert.Equal(t, tt.wantCalls, api.calls())
		})
	}
}

func TestAddEvent(t *testing.T) {
	for _, style := range argumentStyles {
		t.Run(string(style), func(t *testing.T) {
			api := newCalendarAPI(t, http.StatusOK, `{"id":"evt1","summary":"Meeting"}`)
			s := newTestServer(t, api, "key", style)

			result := toolstest.Call(t, s, ToolAddEvent, map[string]any{
				"title":      "Meeting",
				"start_time": "2023-12-25T10:00:00+09:00",
			})

			require.False(t, result.IsError, result.Text())
			assert.Equal(t, "Event 'Meeting' created. ID: evt1", result.Text())

			event := api.lastEvent()
			assert.Equal(t, "2023-12-25T10:00:00+09:00", dateTime(t, event, "start")["dateTime"])
			assert.Equal(t, "2023-12-25T11:00:00+09:00", dateTime(t, event, "end")["dateTime"])
			assert.Equal(t, calendar.DefaultTimeZone, dateTime(t, event, "start")["timeZone"])
			_, hasDescription := event["description"]
			assert.False(t, hasDescription)
		})
	}
}

func TestAddEvent_InvalidStartTime(t *testing.T) {
	api := newCalendarAPI(t, http.StatusOK, `{}`)
	s := newTestServer(t, api, "key", server.ArgumentStyleFields)

	result := toolstest.Call(t, s, ToolAddEvent, map[string]any{
		"title":      "Meeting",
		"start_time": "tomorrow at 3pm",
	})

	assert.True(t, result.IsError)
	assert.Contains(t, result.Text(), "invalid start time format, expected RFC3339, e.g. 2023-12-25T10:00:00+09:00")
	assert.Zero(t, api.calls())
}

func TestListEvents_Stub(t *testing.T) {
	api := newCalendarAPI(t, http.StatusOK, `{}`)
	s := newTestServer(t, api, "", server.ArgumentStyleStruct)

	result := toolstest.Call(t, s, ToolListEvents, nil)

	assert.False(t, result.IsError)
	assert.True(t, strings.HasPrefix(result.Text(), common.NotImplementedPrefix), result.Text())
	assert.Equal(t, common.StatusNotImplemented, result.StructuredContent["status"])
	assert.Zero(t, api.calls())
}

func TestUnknownTool(t *testing.T) {
	api := newCalendarAPI(t, http.StatusOK, `{}`)
	s := newTestServer(t, api, "key", server.ArgumentStyleStruct)

	rpcErr := toolstest.Send(t, s, "tools/call", map[string]any{"name": "delete_event", "arguments": map[string]any{}}, nil)
	require.NotNil(t, rpcErr, "unknown tools must be rejected at the protocol level")
}

func TestRegisterCalendarTools_RequiresClient(t *testing.T) {
	sc := server.NewServerContext(context.Background(), "calendar", nil)
	defer func() { _ = sc.Shutdown() }()

	s := mcpserver.NewMCPServer("calendar-mcp", "test")
	assert.Error(t, RegisterCalendarTools(s, sc))
}
