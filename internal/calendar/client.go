package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/teemow/calendar-mcp/internal/instrumentation"
	"github.com/teemow/calendar-mcp/internal/logging"
)

// Client wraps the Google Calendar service
type Client struct {
	svc    *calendar.Service
	config Config
	logger *slog.Logger
}

// NewClient creates a new Calendar client for the given configuration.
// Additional options are passed to the underlying Google API service and
// take precedence over the defaults.
func NewClient(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Force HTTP/1.1 by disabling HTTP/2
	baseTransport := http.DefaultTransport.(*http.Transport).Clone()
	baseTransport.ForceAttemptHTTP2 = false

	httpClient := &http.Client{
		Transport: otelhttp.NewTransport(baseTransport),
		Timeout:   cfg.RequestTimeout,
	}

	svcOpts := []option.ClientOption{
		option.WithHTTPClient(httpClient),
		option.WithEndpoint(cfg.Endpoint),
	}
	svcOpts = append(svcOpts, opts...)

	svc, err := calendar.NewService(ctx, svcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Calendar service: %w", err)
	}

	return &Client{
		svc:    svc,
		config: cfg,
		logger: logging.WithService(slog.Default(), instrumentation.ServiceCalendar),
	}, nil
}

// Config returns the configuration the client was built with.
func (c *Client) Config() Config {
	return c.config
}

// ListEvents is not backed by the API and always returns ErrNotImplemented.
func (c *Client) ListEvents(_ context.Context) ([]EventResult, error) {
	return nil, ErrNotImplemented
}

// CreateEvent creates a new calendar event with a single POST to the
// Calendar API. Nothing is sent when the API key is missing or the request is
// invalid.
func (c *Client) CreateEvent(ctx context.Context, req EventRequest) (*EventResult, error) {
	if c.config.APIKey == "" {
		return nil, &ConfigurationError{Variable: EnvAPIKey}
	}

	if strings.TrimSpace(req.Title) == "" {
		return nil, &ValidationError{Field: "summary", Message: "event title is required"}
	}

	if c.config.ValidateOrdering {
		if err := checkOrdering(req.Start, req.End); err != nil {
			return nil, err
		}
	}

	timeZone := req.TimeZone
	if timeZone == "" {
		timeZone = c.config.DefaultTimeZone
	}
	event := buildEvent(req, timeZone)

	ctx, span := instrumentation.StartGoogleAPISpan(ctx, instrumentation.ServiceCalendar, instrumentation.OperationCreate,
		attribute.String("calendar.id", c.config.CalendarID),
	)
	defer span.End()

	logger := logging.WithOperation(c.logger, instrumentation.OperationCreate)
	start := time.Now()
	created, err := c.svc.Events.Insert(c.config.CalendarID, event).
		Context(ctx).
		Do(googleapi.QueryParameter("key", c.config.APIKey))
	if err != nil {
		err = classifyError(err)
		instrumentation.SetSpanError(span, err)
		logger.Debug("calendar event creation failed",
			slog.Duration(logging.KeyDuration, time.Since(start)),
			logging.Err(err))
		return nil, err
	}

	result := toEventResult(created)
	instrumentation.SetSpanSuccess(span)
	logger.Debug("calendar event created",
		slog.String("event_id", result.ID),
		slog.Duration(logging.KeyDuration, time.Since(start)))

	return result, nil
}

// AddEvent creates an event lasting DefaultEventDuration from an RFC3339
// start time. Description and time zone are left to CreateEvent's defaults.
func (c *Client) AddEvent(ctx context.Context, title, startTime string) (*EventResult, error) {
	start, err := time.Parse(time.RFC3339, startTime)
	if err != nil {
		return nil, &ValidationError{
			Field:   "start_time",
			Message: "invalid start time format, expected RFC3339, e.g. 2023-12-25T10:00:00+09:00",
			Err:     err,
		}
	}

	end := start.Add(DefaultEventDuration)

	return c.CreateEvent(ctx, EventRequest{
		Title: title,
		Start: startTime,
		End:   end.Format(time.RFC3339Nano),
	})
}

// checkOrdering rejects an end time that is not after the start time. Values
// that are not RFC3339 are left for the API to judge.
func checkOrdering(startStr, endStr string) error {
	start, err := time.Parse(time.RFC3339, startStr)
	if err != nil {
		return nil
	}
	end, err := time.Parse(time.RFC3339, endStr)
	if err != nil {
		return nil
	}
	if !end.After(start) {
		return &ValidationError{
			Field:   "end_datetime",
			Message: fmt.Sprintf("end time %s must be after start time %s", endStr, startStr),
		}
	}
	return nil
}

// classifyError maps errors from the Google API client onto the package's
// error types.
func classifyError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return &UpstreamError{StatusCode: apiErr.Code, Body: apiErr.Body, Err: err}
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Err: err}
	}

	return &DecodeError{Err: err}
}
