package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := NewDiscard()
	l.writer = buf
	l.Level = level
	l.NoColor = true
	l.TimeFormat = "15:04:05"
	return l, buf
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(Warn)

	l.Info("dropped")
	l.Warn("kept %d", 1)

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept 1")
}

func TestLogger_NamedAndFields(t *testing.T) {
	l, buf := newBufferLogger(Debug)

	l.Named("didmeta").Named("hardcoded").With("key", "bytes").Debug("propagating")

	line := buf.String()
	assert.Contains(t, line, "[didmeta/hardcoded]")
	assert.Contains(t, line, "propagating key=bytes")
}

func TestLogger_JSON(t *testing.T) {
	l, buf := newBufferLogger(Debug)
	l.JSON = true

	l.Named("generic").With("scope", "mock").Info("stored %s", "k1")

	var entry logEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry.Level)
	assert.Equal(t, "generic", entry.Component)
	assert.Equal(t, "stored k1", entry.Message)
	assert.Equal(t, "mock", entry.Fields["scope"])
}

func TestParse(t *testing.T) {
	level, err := Parse("warning")
	require.NoError(t, err)
	assert.Equal(t, Warn, level)

	_, err = Parse("verbose")
	assert.Error(t, err)
}
