package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

var (
	mu      sync.Mutex
	logger  = log.New(os.Stderr, "", log.LstdFlags)
	logFile *os.File
	debug   bool
)

// Setup mirrors log output into the file at path, in addition to stderr.
// An empty path keeps stderr only.
func Setup(path string, debugMode bool) error {
	mu.Lock()
	defer mu.Unlock()

	debug = debugMode
	if path == "" {
		return nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	if logFile != nil {
		logFile.Close()
	}
	logFile = f
	logger = log.New(io.MultiWriter(os.Stderr, f), "", log.LstdFlags)
	return nil
}

// SetOutput redirects all log output to w. Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, "", 0)
}

// Quiet stops mirroring to stderr, for when a TUI owns the terminal. Output
// still goes to the log file when one is open.
func Quiet() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logger = log.New(logFile, "", log.LstdFlags)
		return
	}
	logger = log.New(io.Discard, "", 0)
}

// Close closes the log file opened by Setup, if any, and logs to stderr again.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	logger = log.New(os.Stderr, "", log.LstdFlags)
}

// Logger returns the underlying logger, for http.Server.ErrorLog and the like.
func Logger() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

func Info(format string, args ...any) {
	output("INFO: "+format, args...)
}

func Warn(format string, args ...any) {
	output("WARNING: "+format, args...)
}

func Error(format string, args ...any) {
	output("ERROR: "+format, args...)
}

// Debug logs only when Setup was called with debugMode.
func Debug(format string, args ...any) {
	mu.Lock()
	enabled := debug
	mu.Unlock()
	if enabled {
		output("DEBUG: "+format, args...)
	}
}

func output(format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	logger.Printf(format, args...)
}
