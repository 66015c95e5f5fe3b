package shader

import (
	"log/slog"

	"github.com/gogpu/g3d/internal/logging"
)

func slogger() *slog.Logger { return logging.Logger() }
