package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestBuild(t *testing.T) {
	t.Run("Build_JSONRespectsLevel", func(t *testing.T) {
		var buf bytes.Buffer
		l, cleanup := Build(Options{Level: "warn", JSON: true, Out: zapcore.AddSync(&buf)})
		defer cleanup()

		l.Info("dropped")
		l.Warn("kept", zap.String("k", "v"))

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		require.Len(t, lines, 1)
		var entry map[string]any
		require.NoError(t, json.Unmarshal(lines[0], &entry))
		require.Equal(t, "kept", entry["msg"])
		require.Equal(t, "v", entry["k"])
		require.Contains(t, entry, "ts")
	})

	t.Run("Build_UnknownLevelFallsBackToInfo", func(t *testing.T) {
		var buf bytes.Buffer
		l, cleanup := Build(Options{Level: "loud", JSON: true, Out: zapcore.AddSync(&buf)})
		defer cleanup()

		l.Debug("no")
		l.Info("yes")
		require.NotContains(t, buf.String(), `"no"`)
		require.Contains(t, buf.String(), `"yes"`)
	})
}

func TestToWriter(t *testing.T) {
	var buf bytes.Buffer
	l, cleanup := Build(Options{Level: "debug", JSON: true, Out: zapcore.AddSync(&buf)})
	defer cleanup()

	w := ToWriter(l, zapcore.InfoLevel)
	n, err := w.Write([]byte("[GIN-debug] GET /health\n"))
	require.NoError(t, err)
	require.Equal(t, len("[GIN-debug] GET /health\n"), n)
	require.Contains(t, buf.String(), `"msg":"[GIN-debug] GET /health"`)
}
