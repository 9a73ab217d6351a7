package logging

import (
	"io"
	"log/slog"
	"os"
)

// Init sets the default slog logger. Format is "json" or anything else for
// text; w defaults to os.Stderr.
func Init(level slog.Level, format string, w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// New returns a logger tagged with the component name.
func New(component string) *slog.Logger {
	return slog.Default().With(slog.String("component", component))
}
