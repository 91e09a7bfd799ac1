package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{"debug level", "debug"},
		{"info level", "info"},
		{"warn level", "warn"},
		{"error level", "error"},
		{"invalid level", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.level)
			if log == nil {
				t.Error("New() returned nil")
			}
		})
	}
}

func TestLoggerLevels(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	log := NewWithWriter("info", "json", &buf)

	log.Debug(ctx, "debug message")
	log.Info(ctx, "info message")
	log.Warn(ctx, "warn message")
	log.Error(ctx, "error message")
	log.Info(ctx, "formatted message: %s %d", "test", 123)

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Error("debug message should be filtered at info level")
	}
	for _, want := range []string{"info message", "warn message", "error message", "formatted message: test 123"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRequestIDField(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", "json", &buf)

	ctx := WithRequestID(context.Background(), "req-42")
	log.Info(ctx, "hello")

	if !strings.Contains(buf.String(), `"request_id":"req-42"`) {
		t.Errorf("output %q missing request_id", buf.String())
	}
	if RequestID(context.Background()) != "" {
		t.Error("RequestID() on empty context should be empty")
	}
}

func TestLevelGate(t *testing.T) {
	tests := []struct {
		name        string
		configLevel string
		logAt       func(Logger, context.Context)
		want        bool
	}{
		{"debug logs at debug level", "debug", func(l Logger, ctx context.Context) { l.Debug(ctx, "gate") }, true},
		{"info logs at debug level", "debug", func(l Logger, ctx context.Context) { l.Info(ctx, "gate") }, true},
		{"debug doesn't log at info level", "info", func(l Logger, ctx context.Context) { l.Debug(ctx, "gate") }, false},
		{"warn doesn't log at error level", "error", func(l Logger, ctx context.Context) { l.Warn(ctx, "gate") }, false},
		{"error always logs", "debug", func(l Logger, ctx context.Context) { l.Error(ctx, "gate") }, true},
		{"unknown level means info", "verbose", func(l Logger, ctx context.Context) { l.Info(ctx, "gate") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logAt(NewWithWriter(tt.configLevel, "json", &buf), context.Background())
			if got := strings.Contains(buf.String(), "gate"); got != tt.want {
				t.Errorf("logged = %v, want %v (output %q)", got, tt.want, buf.String())
			}
		})
	}
}
