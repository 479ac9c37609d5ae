package calendar

import (
	"fmt"

	calendar "google.golang.org/api/calendar/v3"
)

// unknownValue stands in for fields the API response did not include.
const unknownValue = "Unknown"

// EventRequest represents the input for creating a calendar event.
// Start and End are sent to the API exactly as given.
type EventRequest struct {
	Title       string
	Description string
	Start       string
	End         string
	TimeZone    string // Defaults to Config.DefaultTimeZone when empty
}

// EventResult represents the fields of a created event that are reported back
// to the caller. Any of them may be empty.
type EventResult struct {
	ID    string
	Title string
	Link  string
}

// buildEvent converts a request into the API payload. Start and end carry the
// same time zone.
func buildEvent(req EventRequest, timeZone string) *calendar.Event {
	return &calendar.Event{
		Summary:     req.Title,
		Description: req.Description,
		Start: &calendar.EventDateTime{
			DateTime: req.Start,
			TimeZone: timeZone,
		},
		End: &calendar.EventDateTime{
			DateTime: req.End,
			TimeZone: timeZone,
		},
	}
}

// toEventResult converts a Google Calendar event to an EventResult
func toEventResult(event *calendar.Event) *EventResult {
	if event == nil {
		return &EventResult{}
	}
	return &EventResult{
		ID:    event.Id,
		Title: event.Summary,
		Link:  event.HtmlLink,
	}
}

// ConfirmationMessage renders the human-readable text returned to the host
// after an event was created.
func ConfirmationMessage(result *EventResult) string {
	if result == nil {
		result = &EventResult{}
	}

	title := orUnknown(result.Title)
	id := orUnknown(result.ID)

	msg := fmt.Sprintf("Event '%s' created. ID: %s", title, id)
	if result.Link != "" {
		msg += fmt.Sprintf("\nLink: %s", result.Link)
	}
	return msg
}

func orUnknown(s string) string {
	if s == "" {
		return unknownValue
	}
	return s
}
