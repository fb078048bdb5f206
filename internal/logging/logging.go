// Package logging builds the logrus logger used as taskdesk's diagnostic channel.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

type Options struct {
	// Path is the log file. Empty means Fallback is used instead.
	Path string
	// Fallback receives logs when Path is empty (e.g. stderr for CLI commands).
	Fallback io.Writer
	Debug    bool
	// JSON selects the JSON formatter; otherwise logrus' text formatter is used.
	JSON bool
}

// Logger pairs a logrus logger with the file it writes to (if any).
type Logger struct {
	*log.Logger
	file *os.File
}

func New(opts Options) (*Logger, error) {
	l := log.New()
	l.SetLevel(log.InfoLevel)
	if opts.Debug {
		l.SetLevel(log.DebugLevel)
	}
	if opts.JSON {
		l.SetFormatter(&log.JSONFormatter{})
	} else {
		l.SetFormatter(&log.TextFormatter{DisableColors: true, FullTimestamp: true})
	}

	path := strings.TrimSpace(opts.Path)
	if path == "" {
		w := opts.Fallback
		if w == nil {
			w = io.Discard
		}
		l.SetOutput(w)
		return &Logger{Logger: l}, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.SetOutput(f)
	return &Logger{Logger: l, file: f}, nil
}

// Discard returns a logger that drops everything; handy for tests and scripts.
func Discard() *Logger {
	l := log.New()
	l.SetOutput(io.Discard)
	return &Logger{Logger: l}
}

func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
