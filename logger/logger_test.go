package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLevelText(t *testing.T) {
	for _, lv := range []Level{LevelError, LevelWarn, LevelInfo, LevelDebug, LevelTrace} {
		text, err := lv.MarshalText()
		require.NoError(t, err)
		var out Level
		require.NoError(t, out.UnmarshalText(text))
		require.Equal(t, lv, out)
	}

	var l Level
	require.NoError(t, l.UnmarshalText([]byte("DEBUG")))
	require.Equal(t, LevelDebug, l)
	require.Error(t, l.UnmarshalText([]byte("verbose")))
	require.Equal(t, "42", Level(42).String())
}

func TestLogrusLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogrus(LevelWarn, &buf)
	log.Info("hidden")
	log.With("stream", "s1").Warn("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
	require.Contains(t, buf.String(), "stream=s1")
}
