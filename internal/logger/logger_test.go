package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSetupFormats(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		want   string
	}{
		{"json", `"path":"out.mem"`},
		{"text", "path=out.mem"},
		{"pretty", "path=out.mem"},
		// a bytes.Buffer is never a terminal
		{"auto", "path=out.mem"},
		{"", "path=out.mem"},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		log, err := Setup(&buf, Options{Format: tc.format})
		if err != nil {
			t.Fatalf("Setup(%q): %v", tc.format, err)
		}
		log.Info("wrote artifact", "path", "out.mem")
		if !strings.Contains(buf.String(), tc.want) {
			t.Errorf("format %q: expected %q in %q", tc.format, tc.want, buf.String())
		}
	}
}

func TestSetupUnknownFormat(t *testing.T) {
	t.Parallel()
	if _, err := Setup(&bytes.Buffer{}, Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestSetupLevels(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log, err := Setup(&buf, Options{Level: "warn", Format: "text"})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	log.Info("hidden")
	log.Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}
	log.Warn("saturated")
	if !strings.Contains(buf.String(), "saturated") {
		t.Fatalf("expected warn output, got %q", buf.String())
	}

	buf.Reset()
	log, err = Setup(&buf, Options{Level: "error", Format: "text", Debug: true})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	log.Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("debug flag should override level, got %q", buf.String())
	}
}

func TestWith(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := New(slog.NewJSONHandler(&buf, nil)).With("layer", "hidden")
	log.Info("row written")
	if !strings.Contains(buf.String(), `"layer":"hidden"`) {
		t.Fatalf("expected layer attr, got %s", buf.String())
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), New(slog.NewTextHandler(&buf, nil)))
	FromContext(ctx).Info("from context")
	if !strings.Contains(buf.String(), "from context") {
		t.Fatalf("expected message via context logger, got %q", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext without logger returned nil")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tc := range tests {
		if got := ParseLevel(tc.in); got != tc.want {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tc.in, tc.want, got)
		}
	}
}

func TestPrettyGroupsAndQuoting(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil).WithAttrs([]slog.Attr{slog.String("run", "r1")}).WithGroup("stats")
	slog.New(h).Info("done", "saturated", 3, "note", "two words")

	out := buf.String()
	for _, want := range []string{"run=r1", "stats.saturated=3", `stats.note="two words"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
	if h2 := NewPrettyHandler(&buf, nil); h2.WithGroup("") != h2 {
		t.Error("empty group should return the same handler")
	}
}

func TestPrettyEnabled(t *testing.T) {
	t.Parallel()
	h := NewPrettyHandler(&bytes.Buffer{}, &slog.HandlerOptions{Level: slog.LevelWarn})
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn")
	}
}
