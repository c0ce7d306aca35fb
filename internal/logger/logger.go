package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color" // Colored console output
	"github.com/rs/zerolog"  // Append-only file sink
)

// Console printers for each level. The tag is part of the colored text so the
// level stays readable when colors are disabled (NO_COLOR, non-tty output).
var (
	infoColor  = color.New(color.FgGreen)
	warnColor  = color.New(color.FgHiMagenta)
	errorColor = color.New(color.FgRed)
	debugColor = color.New(color.FgCyan)
)

var (
	console      io.Writer = color.Output
	sink                   = zerolog.Nop()
	debugEnabled bool
)

// Options controls where log lines go.
//   - Debug enables DEBUG lines on both the console and the file.
//   - LogPath is the append-only log file; empty disables the file sink.
//   - Console overrides the console writer (defaults to color.Output).
type Options struct {
	Debug   bool
	LogPath string
	Console io.Writer
}

// Init configures the package-level logger and returns the open log file so
// the caller can close it on exit. The returned closer is never nil.
func Init(opts Options) (io.Closer, error) {
	debugEnabled = opts.Debug
	if opts.Console != nil {
		console = opts.Console
	} else {
		console = color.Output
	}
	sink = zerolog.Nop()

	if opts.LogPath == "" {
		return nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.LogPath), 0755); err != nil {
		return nopCloser{}, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(opts.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nopCloser{}, fmt.Errorf("failed to open log file %s: %w", opts.LogPath, err)
	}

	sink = newFileLogger(f, opts.Debug)
	return f, nil
}

// newFileLogger renders every event as "[<timestamp>] [<LEVEL>] <message>".
func newFileLogger(w io.Writer, debug bool) zerolog.Logger {
	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		PartsOrder: []string{zerolog.TimestampFieldName, zerolog.LevelFieldName, zerolog.MessageFieldName},
		FormatTimestamp: func(i interface{}) string {
			return fmt.Sprintf("[%v]", i)
		},
		FormatLevel: func(i interface{}) string {
			return "[" + strings.ToUpper(fmt.Sprint(i)) + "]"
		},
	}

	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// DebugEnabled reports whether DEBUG lines are emitted.
func DebugEnabled() bool {
	return debugEnabled
}

// Info logs informational progress.
func Info(format string, a ...any) {
	emit(zerolog.InfoLevel, infoColor, "INFO", format, a...)
}

// Warn logs a recoverable problem.
func Warn(format string, a ...any) {
	emit(zerolog.WarnLevel, warnColor, "WARN", format, a...)
}

// Error logs a failure.
func Error(format string, a ...any) {
	emit(zerolog.ErrorLevel, errorColor, "ERROR", format, a...)
}

// Debug logs verbose detail; it is a no-op unless debug output was enabled in Init.
func Debug(format string, a ...any) {
	if !debugEnabled {
		return
	}
	emit(zerolog.DebugLevel, debugColor, "DEBUG", format, a...)
}

// Plain writes text to the console without a level tag and without touching the
// log file. Used for rendered artifacts such as dry-run profile previews.
func Plain(format string, a ...any) {
	fmt.Fprintf(console, format, a...)
}

func emit(level zerolog.Level, c *color.Color, tag, format string, a ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, a...), "\n")
	c.Fprintf(console, "[%s] %s\n", tag, msg)
	sink.WithLevel(level).Msg(msg)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
