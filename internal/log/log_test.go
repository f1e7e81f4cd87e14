package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"ledger/internal/core"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{Level: slog.LevelDebug, Component: ComponentLedger, Format: "json", Output: buf})
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	newBufferLogger(&buf).Info("hello", "k", "v")
	out := buf.String()
	if !strings.Contains(out, `"component":"ledger"`) || !strings.Contains(out, `"k":"v"`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestWithComponentKeepsHandler(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf).WithComponent(ComponentBackend)
	l.WarnContext(context.Background(), "careful")
	l.ErrorContext(context.Background(), "broken")
	out := buf.String()
	if strings.Count(out, `"component":"backend"`) != 2 || !strings.Contains(out, `"level":"WARN"`) {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestFromContext(t *testing.T) {
	if l := FromContext(context.Background()); l.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got %q", l.Component())
	}
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), newBufferLogger(&buf))
	if l := FromContext(ctx); l.Component() != ComponentLedger {
		t.Fatalf("expected context logger, got %q", l.Component())
	}
}

func TestStructuredLoggerEvents(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf))
	ctx := context.Background()

	sl.LogTransactionCreated(ctx, core.Transaction{
		ID: "abc", Title: "Rent", Type: core.Outcome, Value: core.Money{Cents: 120000},
		Category: &core.Category{Title: "Housing"},
	})
	sl.LogImportCompleted(ctx, "in.csv", 3, 2, 1, 15*time.Millisecond)
	sl.LogError(ctx, "boom", errors.New("bad"), ComponentStorage, OpCreate, nil)

	out := buf.String()
	for _, want := range []string{
		`"value_cents":120000`, `"category":"Housing"`,
		`"imported":3`, `"new_categories":2`, `"duration_ms":15`,
		`"error":"bad"`, `"component":"storage"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}
