// Package logging sets up file-based logging for canvascli. The TUI owns
// the terminal, so logs go to a file under the config directory; a nop
// logger is returned when the file cannot be opened so logging never
// breaks the session.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileName is the log file created under the config directory.
const FileName = "canvascli.log"

// New returns a logger appending to dir/canvascli.log. verbose lowers the
// level to debug.
func New(dir string, verbose bool) *zap.Logger {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zap.NewNop()
	}

	path := filepath.Join(dir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zap.NewNop()
	}

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(f),
		level,
	)
	return zap.New(core)
}
