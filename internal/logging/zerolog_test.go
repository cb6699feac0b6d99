package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestZerologLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ZerologLevel("debug"))
	assert.Equal(t, zerolog.TraceLevel, ZerologLevel("TRACE"))
	assert.Equal(t, zerolog.WarnLevel, ZerologLevel("warn"))
	assert.Equal(t, zerolog.ErrorLevel, ZerologLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, ZerologLevel("bogus"))
}

func TestNewZerolog_WritesToAllWriters(t *testing.T) {
	var a, b bytes.Buffer
	logger := NewZerolog("info", &a, nil, &b)

	logger.Info().Str("table", "markers").Msg("migrated")
	logger.Debug().Msg("hidden")

	for _, out := range []string{a.String(), b.String()} {
		assert.Contains(t, out, "migrated")
		assert.Contains(t, out, "table=markers")
		assert.NotContains(t, out, "hidden")
	}
}

func TestEvent_KeyValues(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerolog("debug", &buf)

	Event(logger, zerolog.WarnLevel, "slow write", "ms", 1200, "dangling")

	assert.Contains(t, buf.String(), "slow write")
	assert.Contains(t, buf.String(), "ms=1200")
	assert.NotContains(t, buf.String(), "dangling")
}
