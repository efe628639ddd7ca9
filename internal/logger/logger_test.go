package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newConsole(buf *bytes.Buffer, level slog.Level) *consoleHandler {
	return &consoleHandler{out: &lockedWriter{w: buf}, level: level}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLevelTag(t *testing.T) {
	tests := []struct {
		level    slog.Level
		expected string
	}{
		{slog.LevelError, "ERROR"},
		{slog.LevelWarn, "WARN "},
		{slog.LevelInfo, "INFO "},
		{slog.LevelDebug, "DEBUG"},
	}

	for _, tt := range tests {
		if got := levelTag(tt.level); got != tt.expected {
			t.Errorf("levelTag(%v) = %q, want %q", tt.level, got, tt.expected)
		}
	}
}

func TestFormatAttr(t *testing.T) {
	tests := []struct {
		name     string
		group    string
		attr     slog.Attr
		expected string
	}{
		{"plain", "", slog.String("key", "value"), "  key=value"},
		{"grouped", "body", slog.String("key", "value"), "  body.key=value"},
		{"int", "", slog.Int("entity", 3), "  entity=3"},
		{"float", "", slog.Float64("vertical_velocity", -2.2500001), "  vertical_velocity=-2.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAttr(tt.group, tt.attr); got != tt.expected {
				t.Errorf("formatAttr(%q, %v) = %q, want %q", tt.group, tt.attr, got, tt.expected)
			}
		})
	}
}

func TestConsoleHandlerEnabled(t *testing.T) {
	h := &consoleHandler{level: slog.LevelInfo}

	if !h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be enabled")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled")
	}
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be filtered")
	}
}

func TestConsoleHandlerHandle(t *testing.T) {
	var buf bytes.Buffer
	h := newConsole(&buf, slog.LevelDebug)

	record := slog.NewRecord(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), slog.LevelInfo, "Landed", 0)
	record.AddAttrs(slog.Float64("air_time", 0.5))

	if err := h.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle() = %v", err)
	}

	want := "12:00:00 INFO  Landed  air_time=0.5\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestConsoleHandlerWithAttrsAndGroups(t *testing.T) {
	var buf bytes.Buffer
	h := newConsole(&buf, slog.LevelDebug)

	h2 := h.WithAttrs([]slog.Attr{slog.String("component", "scene")})
	if len(h.attrs) != 0 {
		t.Error("WithAttrs modified the original handler")
	}
	h3 := h2.WithGroup("body").WithGroup("shape")

	record := slog.NewRecord(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), slog.LevelInfo, "test", 0)
	record.AddAttrs(slog.Float64("radius", 0.5))
	if err := h3.Handle(context.Background(), record); err != nil {
		t.Fatalf("Handle() = %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "body.shape.component=scene") {
		t.Errorf("output missing preset attr: %q", output)
	}
	if !strings.Contains(output, "body.shape.radius=0.5") {
		t.Errorf("output missing grouped attr: %q", output)
	}
}

func TestNewFormats(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"json", `"msg":"hello"`},
		{"text", "msg=hello"},
		{"console", "INFO  hello"},
		{"", "INFO  hello"},
	}
	for _, tt := range tests {
		t.Run("format_"+tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(Config{Level: "debug", Format: tt.format, Output: &buf})
			l.Info("hello")
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output = %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestOpenWritesToFile(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	path := filepath.Join(t.TempDir(), "logs", "stride.log")
	closer, err := Open(path, Config{Level: "info"})
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	slog.Info("Controller attached", "entity", 1)
	slog.Debug("filtered")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "Controller attached  entity=1") {
		t.Errorf("log = %q", out)
	}
	if strings.Contains(out, "filtered") {
		t.Errorf("debug line written at info level: %q", out)
	}
}

func TestOpenWithoutPathDiscards(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	closer, err := Open("", Config{})
	if err != nil {
		t.Fatalf("Open() = %v", err)
	}
	defer closer.Close()
	if L() == nil {
		t.Fatal("L() = nil after Open")
	}
}
