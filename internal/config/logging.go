package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// NewLogger builds the process logger: JSON to stdout, plus a rotated log file when LogDir is set.
// The returned closer must be called on shutdown.
func NewLogger(cfg *Config, name string) (*slog.Logger, func() error, error) {
	level := slog.LevelInfo
	if cfg.Environment == "dev" {
		level = slog.LevelDebug
	}

	var out io.Writer = os.Stdout
	closer := func() error { return nil }

	if cfg.LogDir != "" {
		f, err := SetupLogFile(cfg.LogDir, name, cfg.LogMaxFiles)
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(os.Stdout, f)
		closer = f.Close
	}

	logger := slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: level,
	}))
	return logger, closer, nil
}

// SetupLogFile creates a new timestamped log file and cleans up old files.
// Returns the file handle (caller must close) or error.
func SetupLogFile(dir, name string, maxFiles int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.log",
		name, time.Now().Format("2006-01-02T15-04-05")))

	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	// Cleanup failure is not fatal - logging still works
	if err := cleanupOldLogs(dir, name, maxFiles); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to cleanup old logs: %v\n", err)
	}

	return f, nil
}

// cleanupOldLogs removes oldest log files when count exceeds maxFiles.
func cleanupOldLogs(dir, name string, maxFiles int) error {
	pattern := filepath.Join(dir, name+"-*.log")
	files, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	if len(files) <= maxFiles {
		return nil
	}

	// Timestamp format sorts chronologically
	sort.Strings(files)

	for i := 0; i < len(files)-maxFiles; i++ {
		if err := os.Remove(files[i]); err != nil {
			return fmt.Errorf("remove %s: %w", files[i], err)
		}
	}

	return nil
}
