package rhi

import (
	"log/slog"

	"github.com/gogpu/g3d/internal/logging"
)

// slogger returns the current package logger.
func slogger() *slog.Logger { return logging.Logger() }
