package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithWriterLevels(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, InitWithWriter(Config{Level: "warn"}, &buf))

	Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	Warn().Str("device", "gpu0").Msg("kept")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "gpu0", entry["device"])
	assert.Equal(t, "kept", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestInitDebugOverridesLevel(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, InitWithWriter(Config{Level: "error", Debug: true}, &buf))

	Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestInitRejectsUnknownLevel(t *testing.T) {
	var buf bytes.Buffer

	assert.Error(t, InitWithWriter(Config{Level: "loud"}, &buf))
}
