package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(LoggerConfig{Level: WarnLevel, Output: &buf})

	l.Debug("hidden")
	l.Info("hidden too")
	l.Warn("skipping file", "path", "a.py")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "WARN: skipping file path=a.py")
}

func TestLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New(LoggerConfig{Level: DebugLevel, Output: &buf, JSONOutput: true})

	l.Error("parse failed", "path", "bad.py", "err", errors.New("syntax error"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "parse failed", entry["message"])
	assert.Equal(t, "bad.py", entry["path"])
	assert.Equal(t, "syntax error", entry["err"])
}

func TestFormatMessage(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		args []interface{}
		want string
	}{
		{"no args", "hello", nil, "hello"},
		{"pairs", "edge", []interface{}{"from", "a", "to", "b"}, "edge from=a to=b"},
		{"odd leading", "count", []interface{}{3, "files", 2}, "count 3 files=2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatMessage(tt.msg, tt.args...))
		})
	}
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Error("nothing happens")
	assert.Equal(t, "UNKNOWN", Level(42).String())
}
