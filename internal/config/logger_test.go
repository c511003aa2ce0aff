package config

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		expectDebug bool
		expectInfo  bool
	}{
		{name: "debug", level: "debug", expectDebug: true, expectInfo: true},
		{name: "info", level: "info", expectInfo: true},
		{name: "error", level: "error"},
		{name: "unknown falls back to info", level: "verbose", expectInfo: true},
		{name: "empty falls back to info", level: "", expectInfo: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(LoggerConfig{Level: tt.level, Format: "json"}, &buf)

			logger.Debug().Msg("debug line")
			logger.Info().Msg("info line")

			assert.Equal(t, tt.expectDebug, strings.Contains(buf.String(), "debug line"))
			assert.Equal(t, tt.expectInfo, strings.Contains(buf.String(), "info line"))
		})
	}
}

func TestNewLogger_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(LoggerConfig{Level: "info", Format: "json", Service: "storefront-seed"}, &buf)

	logger.Info().Dur("latency", 1500*time.Millisecond).Msg("order finalized")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "storefront-seed", record["service"])
	assert.Equal(t, "info", record["level"])
	assert.Equal(t, "order finalized", record["message"])
	assert.Equal(t, float64(1500), record["latency"])
	assert.Contains(t, record, "time")
}

func TestNewLogger_DefaultServiceName(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(LoggerConfig{Level: "info", Format: "json"}, &buf)

	logger.Info().Msg("started")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "storefront", record["service"])
}

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(LoggerConfig{Level: "info", Format: "console"}, &buf)

	logger.Info().Int64("order_id", 42).Msg("order marked paid")

	out := buf.String()
	assert.Contains(t, out, "order marked paid")
	assert.Contains(t, out, "order_id")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}
