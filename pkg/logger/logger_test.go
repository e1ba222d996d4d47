package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" WARNING "))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestLogger_WritesFieldsAndCaller(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	log := New(&buf).WithContext(map[string]interface{}{"request_id": "abc"})

	log.Error("save failed", errors.New("disk full"), map[string]interface{}{"cart_id": "c1"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "save failed", entry["message"])
	assert.Equal(t, "disk full", entry["error"])
	assert.Equal(t, "c1", entry["cart_id"])
	assert.Equal(t, "abc", entry["request_id"])
	assert.Contains(t, entry["caller"], "logger_test.go")
}

func TestLogger_RespectsLevel(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })

	var buf bytes.Buffer
	log := New(&buf)
	log.Info("hidden")
	log.Debug("hidden")
	assert.Zero(t, buf.Len())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}
