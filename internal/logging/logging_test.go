package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/cierres/internal/logging"
)

func TestParseLevel(t *testing.T) {
	type testCase struct {
		input string
		want  slog.Level
	}

	tests := []testCase{
		{input: "debug", want: slog.LevelDebug},
		{input: "WARN", want: slog.LevelWarn},
		{input: "warning", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "", want: slog.LevelInfo},
		{input: "verbose", want: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, logging.ParseLevel(tt.input))
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := logging.New(&buf, "warn", "json")
	logger.Info("hidden")
	logger.Warn("approximate column", "field", "Venta")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "approximate column", entry["msg"])
	assert.Equal(t, "Venta", entry["field"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer

	logging.New(&buf, "info", "text").Info("sheet processed", "accepted", 3)
	assert.Contains(t, buf.String(), "accepted=3")
}
