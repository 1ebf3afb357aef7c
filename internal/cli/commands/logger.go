package commands

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Bizzy211/aes-bizzy/internal/core/logger"
)

// Global flags for logging configuration
var (
	flagLogLevel  string
	flagLogFormat string
)

// RegisterLoggerFlags registers global logging flags
func RegisterLoggerFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "Log format (text, json)")
}

// CreateLogger creates a logger based on CLI flags. Unknown values fall
// back to the defaults.
func CreateLogger(extra ...logger.Option) logger.Logger {
	level, _ := logger.ParseLevel(flagLogLevel)
	format, _ := logger.ParseFormat(flagLogFormat)

	opts := []logger.Option{
		logger.WithLevel(level),
		logger.WithFormat(format),
		logger.WithOutput(os.Stderr),
	}
	return logger.New(append(opts, extra...)...)
}

// CreateHookLogger creates the logger used by hook commands. Warnings and
// errors are also appended to the JSONL error log at path. When the file
// cannot be opened the logger writes to stderr only.
func CreateHookLogger(path string) (logger.Logger, func()) {
	f, err := openErrorLog(path)
	if err != nil {
		l := CreateLogger()
		l.Debug("error log unavailable", "path", path, "error", err)
		return l, func() {}
	}
	return CreateLogger(logger.WithErrorLog(f)), func() { _ = f.Close() }
}

func openErrorLog(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}
