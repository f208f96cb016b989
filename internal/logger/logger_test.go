package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.input), tt.input)
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Writer: &buf,
		Format: "json",
		Level:  slog.LevelInfo,
	})

	log.Info("pull complete", "group_id", "grp-1", "movies", 3)

	out := buf.String()
	assert.Contains(t, out, `"msg":"pull complete"`)
	assert.Contains(t, out, `"group_id":"grp-1"`)
}

func TestNew_ProductionDefaultsToJSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{
		Writer:      &buf,
		Environment: "production",
	})

	log.Info("hello")
	assert.True(t, strings.HasPrefix(buf.String(), "{"))
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})
	log := slog.New(h)

	log.Info("should be dropped")
	log.Warn("should appear")

	out := buf.String()
	assert.NotContains(t, out, "should be dropped")
	assert.Contains(t, out, "should appear")
}

func TestPrettyHandler_WithAttrs(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	log := slog.New(h).With("component", "sync")

	log.Info("reconciled", "uploads", 2)

	out := buf.String()
	assert.Contains(t, out, "component=sync")
	assert.Contains(t, out, "uploads=2")
}
