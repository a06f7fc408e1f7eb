// Package eventlog builds the run's leveled event logger: a rotating
// file for the full record, with warnings and errors mirrored to the
// operator's console.
package eventlog

import (
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation keeps roughly a month of history without letting a chatty
// tenant fill the disk.
const (
	maxSizeMB  = 10
	maxBackups = 5
	maxAgeDays = 30
)

// Options configure New. The zero value logs nothing to disk and
// mirrors warnings and errors to stderr.
type Options struct {
	// Path is the event log file. Empty disables file output.
	Path string
	// Verbose lowers the file log to debug level.
	Verbose bool
	// Quiet drops warnings from the console. Errors always surface.
	Quiet bool
	// Console overrides the mirror target. Nil means stderr.
	Console io.Writer
}

// New builds the logger. Info and below go to the rotating file only;
// Warn and above also reach the console so an unattended run's
// problems are visible without tailing the file.
func New(opts Options) *log.Logger {
	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	logger.SetLevel(log.InfoLevel)
	if opts.Verbose {
		logger.SetLevel(log.DebugLevel)
	}

	if opts.Path != "" {
		logger.SetOutput(&lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		})
	} else {
		logger.SetOutput(io.Discard)
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	levels := []log.Level{log.PanicLevel, log.FatalLevel, log.ErrorLevel}
	if !opts.Quiet {
		levels = append(levels, log.WarnLevel)
	}
	logger.AddHook(&consoleHook{w: console, levels: levels})

	return logger
}

// consoleHook mirrors selected levels to the console as single terse
// lines, leaving the structured fields to the file log.
type consoleHook struct {
	w      io.Writer
	levels []log.Level
}

func (h *consoleHook) Levels() []log.Level {
	return h.levels
}

func (h *consoleHook) Fire(e *log.Entry) error {
	_, err := fmt.Fprintf(h.w, "%s: %s\n", e.Level, e.Message)
	return err
}
