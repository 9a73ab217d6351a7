package logging_test

import (
	"bytes"
	"log/slog"
	"testing"

	"promptmeta/internal/logging"

	"github.com/stretchr/testify/require"
)

func TestInitText(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(slog.LevelInfo, "text", &buf)

	logging.New("load").Info("hello", "files", 3)
	require.Contains(t, buf.String(), "level=INFO")
	require.Contains(t, buf.String(), "component=load")
	require.Contains(t, buf.String(), "files=3")

	logging.New("load").Debug("hidden")
	require.NotContains(t, buf.String(), "hidden")
}

func TestInitJSON(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(slog.LevelDebug, "json", &buf)

	logging.New("examine").Debug("visible")
	require.Contains(t, buf.String(), `"level":"DEBUG"`)
	require.Contains(t, buf.String(), `"component":"examine"`)
}
