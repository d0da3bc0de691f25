package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"deliveryhub/internal/pkg/logger"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesServiceAndComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(logger.Options{ServiceName: "deliveryhub", Level: zerolog.DebugLevel, Output: buf})

	componentLog := logger.Component(log, "tracking-hub")
	componentLog.Warn().Str("deliveryId", "d-1").Msg("stale location dropped")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "deliveryhub", entry["service"])
	assert.Equal(t, "tracking-hub", entry["component"])
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "d-1", entry["deliveryId"])
	assert.Contains(t, entry, "time")
}

func TestNew_RespectsLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log := logger.New(logger.Options{ServiceName: "deliveryhub", Level: zerolog.WarnLevel, Output: buf})

	log.Info().Msg("hidden")

	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logger.ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.ErrorLevel, logger.ParseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, logger.ParseLevel("loud"))
}
