package projects

import (
	"io"
	"log/slog"
)

// Logger is the structured logger used by documents. Arguments are key-value
// pairs:
//
//	logger.Info("Document saved", "path", path, "compression", "compressed")
//
// *slog.Logger satisfies it directly.
type Logger interface {
	// Info logs normal lifecycle events such as a document being opened or saved.
	Info(msg string, args ...any)

	// Error logs failures that are reported back to the caller or that an
	// observer returned.
	Error(msg string, args ...any)

	// Warn logs conditions that do not stop the operation, e.g. a staging file
	// that could not be removed.
	Warn(msg string, args ...any)

	// Debug logs detailed diagnostics such as member counts and codec choice.
	Debug(msg string, args ...any)
}

func discardLogger() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
