package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerCarriesContextFields(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "settlement-test", Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-123")
	ctx = logg.WithVendorID(ctx, "vendor-abc")
	logg.Info(ctx, "sale recorded")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not json: %v", err)
	}
	if entry["service"] != "settlement-test" {
		t.Fatalf("missing service field: %v", entry)
	}
	if entry["request_id"] != "req-123" {
		t.Fatalf("missing request id: %v", entry)
	}
	if entry["vendor_id"] != "vendor-abc" {
		t.Fatalf("missing vendor id: %v", entry)
	}
	if entry["message"] != "sale recorded" {
		t.Fatalf("unexpected message: %v", entry)
	}
}

func TestErrorIncludesStack(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "settlement-test", Output: &buf})

	logg.Error(context.Background(), "transfer failed", nil)

	if !strings.Contains(buf.String(), "stack") {
		t.Fatalf("expected stack field in error output: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if got := ParseLevel("debug"); got != zerolog.DebugLevel {
		t.Fatalf("expected debug, got %v", got)
	}
	if got := ParseLevel(""); got != zerolog.InfoLevel {
		t.Fatalf("expected info for empty input, got %v", got)
	}
	if got := ParseLevel("bogus"); got != zerolog.InfoLevel {
		t.Fatalf("expected info for bogus input, got %v", got)
	}
}
