// Package calendar_tools provides the MCP tools of the Google Calendar
// provider: create_event, the simplified add_event, and the list_events
// stub. Handlers translate tool arguments into calendar.Client calls and turn
// every failure into a tool error result, so a bad request never takes the
// server down.
package calendar_tools
