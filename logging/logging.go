// Package logging настраивает структурированный логгер на базе zerolog.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger — глобальный логгер процесса.
var Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Config — параметры логгера.
type Config struct {
	Level  zerolog.Level
	Output io.Writer
	Pretty bool
}

// Init пересоздаёт глобальный логгер.
func Init(cfg Config) {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	zerolog.TimeFieldFormat = time.RFC3339

	output := cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: time.RFC3339}
	}

	Logger = zerolog.New(output).Level(cfg.Level).With().Timestamp().Logger()
}

// ParseLevel разбирает уровень без учёта регистра; неизвестное значение даёт info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Component возвращает дочерний логгер с полем component.
func Component(name string) zerolog.Logger {
	return Logger.With().Str("component", name).Logger()
}
