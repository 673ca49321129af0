package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	level, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)

	_, err = ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}

func TestNew_WritesJSONWhenNotTerminal(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := New("info", buf)
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.With("component", "test").Info("visible", "id", "42")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "visible", line["msg"])
	assert.Equal(t, "test", line["component"])
	assert.Equal(t, "42", line["id"])
}
