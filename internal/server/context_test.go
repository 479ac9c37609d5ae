package server

import (
	"context"
	"testing"

	"github.com/teemow/calendar-mcp/internal/instrumentation"
)

func TestParseArgumentStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    ArgumentStyle
		wantErr bool
	}{
		{in: "", want: ArgumentStyleStruct},
		{in: "struct", want: ArgumentStyleStruct},
		{in: "fields", want: ArgumentStyleFields},
		{in: "positional", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseArgumentStyle(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseArgumentStyle(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseArgumentStyle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestServerContext(t *testing.T) {
	sc := NewServerContext(context.Background(), "ui", nil)

	if sc.Provider() != "ui" {
		t.Errorf("Provider() = %q, want %q", sc.Provider(), "ui")
	}
	if sc.CalendarClient() != nil {
		t.Error("expected nil calendar client")
	}
	if sc.ArgumentStyle() != ArgumentStyleStruct {
		t.Errorf("default ArgumentStyle() = %q, want %q", sc.ArgumentStyle(), ArgumentStyleStruct)
	}
	if sc.Metrics() != nil || sc.AuditLogger() != nil {
		t.Error("expected no instrumentation by default")
	}

	sc.SetArgumentStyle(ArgumentStyleFields)
	sc.SetMetrics(&instrumentation.Metrics{})
	sc.SetAuditLogger(instrumentation.NewAuditLogger(nil))

	if sc.ArgumentStyle() != ArgumentStyleFields {
		t.Errorf("ArgumentStyle() = %q, want %q", sc.ArgumentStyle(), ArgumentStyleFields)
	}
	if sc.Metrics() == nil || sc.AuditLogger() == nil {
		t.Error("expected instrumentation to be set")
	}
}

func TestServerContext_Shutdown(t *testing.T) {
	sc := NewServerContext(context.Background(), "calendar", nil)

	if sc.IsShutdown() {
		t.Fatal("new context should not be shut down")
	}
	if err := sc.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !sc.IsShutdown() {
		t.Error("expected IsShutdown() after Shutdown()")
	}
	if sc.Context().Err() == nil {
		t.Error("expected context to be canceled")
	}
	if err := sc.Shutdown(); err != nil {
		t.Errorf("second Shutdown() error = %v", err)
	}
}
