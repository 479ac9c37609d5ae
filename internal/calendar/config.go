package calendar

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment variables read by the configuration loader.
const (
	EnvAPIKey     = "GOOGLE_CALENDAR_API_KEY"
	EnvCalendarID = "GOOGLE_CALENDAR_ID"
	EnvTimeZone   = "GOOGLE_CALENDAR_TIMEZONE"
	EnvEndpoint   = "GOOGLE_CALENDAR_ENDPOINT"
)

// Viper keys for the calendar configuration.
const (
	KeyAPIKey           = "api_key"
	KeyCalendarID       = "calendar_id"
	KeyTimeZone         = "timezone"
	KeyEndpoint         = "endpoint"
	KeyRequestTimeout   = "request_timeout"
	KeyValidateOrdering = "validate_ordering"
)

const (
	// DefaultCalendarID is used when GOOGLE_CALENDAR_ID is unset.
	DefaultCalendarID = "primary"

	// DefaultTimeZone is applied to events created without an explicit time zone.
	DefaultTimeZone = "Asia/Tokyo"

	// DefaultEndpoint is the base URL of the Google Calendar v3 REST API.
	DefaultEndpoint = "https://www.googleapis.com/calendar/v3/"

	// DefaultEventDuration is the length of events created by AddEvent.
	DefaultEventDuration = time.Hour
)

// Config holds the settings of the calendar client. It is built once at
// startup and shared read-only by all requests.
type Config struct {
	// APIKey authenticates requests. It may be empty at startup; operations
	// that need it fail with a ConfigurationError.
	APIKey string

	// CalendarID is the calendar events are written to (default: primary)
	CalendarID string

	// DefaultTimeZone is the IANA zone used when a request has none
	DefaultTimeZone string

	// Endpoint is the API base URL, ending in a slash
	Endpoint string

	// RequestTimeout bounds each outbound call. Zero means no timeout.
	RequestTimeout time.Duration

	// ValidateOrdering rejects events whose end is not after their start
	// when both timestamps parse as RFC3339.
	ValidateOrdering bool
}

// DefaultConfig returns a Config with defaults and no API key.
func DefaultConfig() Config {
	return Config{
		CalendarID:       DefaultCalendarID,
		DefaultTimeZone:  DefaultTimeZone,
		Endpoint:         DefaultEndpoint,
		ValidateOrdering: true,
	}
}

// NewViper returns a viper instance with the calendar defaults set and the
// GOOGLE_CALENDAR_* environment variables bound.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyCalendarID, DefaultCalendarID)
	v.SetDefault(KeyTimeZone, DefaultTimeZone)
	v.SetDefault(KeyEndpoint, DefaultEndpoint)
	v.SetDefault(KeyRequestTimeout, time.Duration(0))
	v.SetDefault(KeyValidateOrdering, true)

	_ = v.BindEnv(KeyAPIKey, EnvAPIKey)
	_ = v.BindEnv(KeyCalendarID, EnvCalendarID)
	_ = v.BindEnv(KeyTimeZone, EnvTimeZone)
	_ = v.BindEnv(KeyEndpoint, EnvEndpoint)

	return v
}

// LoadConfig reads the calendar configuration from v and validates it.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		APIKey:           strings.TrimSpace(v.GetString(KeyAPIKey)),
		CalendarID:       v.GetString(KeyCalendarID),
		DefaultTimeZone:  v.GetString(KeyTimeZone),
		Endpoint:         v.GetString(KeyEndpoint),
		RequestTimeout:   v.GetDuration(KeyRequestTimeout),
		ValidateOrdering: v.GetBool(KeyValidateOrdering),
	}
	cfg = cfg.withDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// withDefaults fills empty fields with their defaults.
func (c Config) withDefaults() Config {
	if c.CalendarID == "" {
		c.CalendarID = DefaultCalendarID
	}
	if c.DefaultTimeZone == "" {
		c.DefaultTimeZone = DefaultTimeZone
	}
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if !strings.HasSuffix(c.Endpoint, "/") {
		c.Endpoint += "/"
	}
	return c
}

// Validate checks if the configuration is valid. A missing API key is not an
// error here.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid calendar endpoint %q: %w", c.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid calendar endpoint %q: scheme must be http or https", c.Endpoint)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout)
	}
	return nil
}
