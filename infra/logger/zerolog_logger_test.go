package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologLoggerMethods(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	l := NewZerologLogger("test")
	require.NotNil(t, l)
	l.Debugf("debug %d", 1)
	l.Debugw("debug", map[string]any{"k": 1})
	l.Infof("info %s", "test")
	l.Warnf("warn")
	l.Errorf("error")
}

func TestNewWithConfigFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithConfig("hub", Config{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	l.Infof("dropped")
	l.Debugw("dropped", map[string]any{"k": 1})
	l.Warnf("kept %d", 2)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "kept 2", rec["message"])
	assert.Equal(t, "hub", rec["component"])
	assert.Equal(t, "warn", rec["level"])
}

func TestNewWithConfigStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithConfig("dispatch", Config{Level: "debug"}, &buf)
	require.NoError(t, err)
	l.(*ZerologLogger).With("run", "r1").Debugw("cycle", map[string]any{"kw": 7.5})
	out := buf.String()
	assert.Contains(t, out, `"run":"r1"`)
	assert.Contains(t, out, `"kw":7.5`)
}

func TestNewWithConfigRejectsUnknown(t *testing.T) {
	_, err := NewWithConfig("x", Config{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)
	_, err = NewWithConfig("x", Config{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}
