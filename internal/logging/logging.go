package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// LogFilePath builds the session log file path under logsDir.
func LogFilePath(logsDir, extensionName string, sessionStart time.Time) string {
	return filepath.Join(
		logsDir,
		fmt.Sprintf("%s.%s.log", extensionName, sessionStart.Format("20060102_150405")),
	)
}

// OpenSessionLog creates logsDir if needed and opens the session log for
// appending. A file left over from a session started in the same second is
// moved aside to <path>.old first.
func OpenSessionLog(logsDir, extensionName string, sessionStart time.Time) (*os.File, string, error) {
	path := LogFilePath(logsDir, extensionName, sessionStart)
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return nil, path, fmt.Errorf("failed to create logs directory: %w", err)
	}
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".old"); err != nil {
			return nil, path, fmt.Errorf("failed to move previous log aside: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, path, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, path, nil
}

// Component tags every record of l with the subsystem that wrote it.
func Component(l *slog.Logger, name string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return l.With("component", name)
}
