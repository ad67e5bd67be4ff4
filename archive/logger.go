package archive

import (
	"io"
	"log/slog"
)

// Logger is the structured logger used by stagers. It has the same method set
// as the projects Logger so either can be passed in.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Debug(msg string, args ...any)
}

func discardLogger() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
