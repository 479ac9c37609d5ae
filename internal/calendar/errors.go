package calendar

import (
	"errors"
	"fmt"
)

// ErrNotImplemented is returned by operations that exist in the tool catalog
// but have no backing implementation.
var ErrNotImplemented = errors.New("not implemented")

// ConfigurationError reports a required configuration value that is missing.
type ConfigurationError struct {
	// Variable is the environment variable that must be set.
	Variable string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s is not set", e.Variable)
}

// ValidationError reports caller input that cannot be turned into an event.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// TransportError reports a failure to reach the Calendar API.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("calendar API request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamError reports a non-success HTTP status from the Calendar API.
// Body holds the response body verbatim.
type UpstreamError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("calendar API returned status %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// DecodeError reports a success response whose body is not a valid event.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode calendar API response: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
