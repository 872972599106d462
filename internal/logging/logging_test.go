package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogFilePath(t *testing.T) {
	sessionStart := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	tests := []struct {
		name          string
		logsDir       string
		extensionName string
		want          string
	}{
		{
			name:          "basic path",
			logsDir:       "objectiveslogs",
			extensionName: "objectives",
			want:          filepath.Join("objectiveslogs", "objectives.20260212_213836.log"),
		},
		{
			name:          "relative path with dot",
			logsDir:       "./objectiveslogs",
			extensionName: "objectives",
			want:          filepath.Join(".", "objectiveslogs", "objectives.20260212_213836.log"),
		},
		{
			name:          "absolute path",
			logsDir:       filepath.Join("/var", "log", "objectives"),
			extensionName: "objectives",
			want:          filepath.Join("/var", "log", "objectives", "objectives.20260212_213836.log"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LogFilePath(tt.logsDir, tt.extensionName, sessionStart)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenSessionLog(t *testing.T) {
	logsDir := filepath.Join(t.TempDir(), "nested", "logs")
	start := time.Date(2026, 2, 12, 21, 38, 36, 0, time.UTC)

	f, path, err := OpenSessionLog(logsDir, "objectives", start)
	require.NoError(t, err)
	assert.Equal(t, LogFilePath(logsDir, "objectives", start), path)
	_, err = f.WriteString("first session\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, _, err = OpenSessionLog(logsDir, "objectives", start)
	require.NoError(t, err)
	defer f.Close()

	old, err := os.ReadFile(path + ".old")
	require.NoError(t, err)
	assert.Equal(t, "first session\n", string(old))

	fresh, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, fresh)
}

func TestOpenSessionLog_BadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	_, _, err := OpenSessionLog(filepath.Join(file, "logs"), "objectives", time.Now())
	assert.Error(t, err)
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	l := Component(slog.New(slog.NewTextHandler(&buf, nil)), "markers")
	l.Info("synced")
	assert.Contains(t, buf.String(), "component=markers")

	assert.NotNil(t, Component(nil, "hooks"))
}
