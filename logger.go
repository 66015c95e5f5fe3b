package g3d

import (
	"log/slog"

	"github.com/gogpu/g3d/internal/logging"
)

// SetLogger configures the logger for g3d and all its sub-packages.
// By default, g3d produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by g3d:
//   - [slog.LevelDebug]: cache builds, pipeline creation, culled draws
//   - [slog.LevelInfo]: context lifecycle (device acquired, context closed)
//   - [slog.LevelWarn]: invalid meshes, shader build failures, skipped
//     draws, abandoned frames
//
// Example:
//
//	g3d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.SetLogger(l)
}

// Logger returns the current logger used by g3d.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
