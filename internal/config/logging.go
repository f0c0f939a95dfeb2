package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"

	"github.com/cryptd777/LinuxCloudSync/internal/utils"
)

const logFileName = "lcsync.log"

// SetupLogging installs the default slog logger: a tinted handler on stderr
// for the terminal plus a plain text handler appending to the log file.
// The returned file must be closed by the caller on shutdown.
func SetupLogging(level slog.Level) (*os.File, error) {
	logDir, err := LogDir()
	if err != nil {
		return nil, err
	}

	logFile := filepath.Join(logDir, logFileName)
	if err := utils.EnsureParent(logFile); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}

	stderrHandler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	fileHandler := slog.NewTextHandler(file, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	slog.SetDefault(slog.New(utils.NewFanoutHandler(stderrHandler, fileHandler)))
	return file, nil
}

// ParseLogLevel maps a config string to a slog level, defaulting to info.
func ParseLogLevel(s string) slog.Level {
	switch s {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "warning", "WARN", "WARNING":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
