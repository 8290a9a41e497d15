// Package logging builds the process logger and adapts it to the loggers the
// worker pool and scheduler expect.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level string
	// Mode "development" (or "console") writes human-readable output,
	// anything else writes JSON.
	Mode string
	// File enables a rotated JSON log file next to the stdout output.
	File string
}

// New returns the root logger and a closer for the rotated file, if any.
func New(opts Options) (zerolog.Logger, io.Closer) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var out io.Writer = os.Stdout
	if mode := strings.ToLower(opts.Mode); mode == "development" || mode == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
		}
		out = zerolog.MultiLevelWriter(out, rotated)
		closer = rotated
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger, closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// CronLogger satisfies robfig/cron's Logger.
type CronLogger struct {
	Log zerolog.Logger
}

func (l CronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.Log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l CronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.Log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}

// PoolLogger satisfies ants' Logger.
type PoolLogger struct {
	Log zerolog.Logger
}

func (l PoolLogger) Printf(format string, args ...interface{}) {
	l.Log.Warn().Msg(fmt.Sprintf(format, args...))
}
