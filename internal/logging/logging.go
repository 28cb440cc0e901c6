// ABOUTME: Process-wide logger used by the daemon, client and CLI.
// ABOUTME: Printf-style helpers over logrus with a file sink and optional stderr mirror.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

// EnvLevel overrides the configured level when set (debug, info, warn, error).
const EnvLevel = "CLAUDE_NOTIFIER_LOG_LEVEL"

// Options configures Init.
type Options struct {
	Level     string // logrus level name; empty means info
	File      string // log file path; empty disables the file sink
	Component string // added as a "component" field to every entry
	Stderr    bool   // force mirroring to stderr even when it is not a terminal
}

var (
	mu      sync.Mutex
	logger  = newDefault()
	entry   = logrus.NewEntry(logger)
	logFile *os.File
)

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	return l
}

// Init (re)configures the global logger. Safe to call more than once; a previous
// log file is closed.
func Init(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	levelStr := opts.Level
	if env := os.Getenv(EnvLevel); env != "" {
		levelStr = env
	}
	if levelStr == "" {
		levelStr = "info"
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})

	var writers []io.Writer
	var file *os.File
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0700); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err = os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		writers = append(writers, file)
	}

	if opts.Stderr || isatty.IsTerminal(os.Stderr.Fd()) {
		writers = append(writers, os.Stderr)
	}

	switch len(writers) {
	case 0:
		l.SetOutput(io.Discard)
	case 1:
		l.SetOutput(writers[0])
	default:
		l.SetOutput(io.MultiWriter(writers...))
	}

	if logFile != nil {
		_ = logFile.Close()
	}
	logFile = file
	logger = l
	entry = logrus.NewEntry(l)
	if opts.Component != "" {
		entry = entry.WithField("component", opts.Component)
	}
	return nil
}

// SetOutput redirects the logger, mostly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger.SetOutput(w)
}

// SetLevel changes the level by name; unknown names are ignored.
func SetLevel(name string) {
	level, err := logrus.ParseLevel(strings.TrimSpace(name))
	if err != nil {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	logger.SetLevel(level)
}

// Close flushes and closes the log file, if any.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	logger.SetOutput(io.Discard)
	return err
}

// Entry returns the underlying logrus entry for structured fields.
func Entry() *logrus.Entry {
	mu.Lock()
	defer mu.Unlock()
	return entry
}

func Debug(format string, args ...interface{}) { Entry().Debugf(format, args...) }
func Info(format string, args ...interface{})  { Entry().Infof(format, args...) }
func Warn(format string, args ...interface{})  { Entry().Warnf(format, args...) }
func Error(format string, args ...interface{}) { Entry().Errorf(format, args...) }
