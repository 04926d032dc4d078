package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNopBeforeInit(t *testing.T) {
	SetLogger(nil)
	assert.NotPanics(t, func() {
		Info("not initialized")
		Sugar.Warnf("still %s", "fine")
		Sync()
	})
}

func TestLogLevels(t *testing.T) {
	tempDir := t.TempDir()

	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{level: "error", expected: []string{"ERROR"}, excluded: []string{"WARN", "INFO", "DEBUG"}},
		{level: "warn", expected: []string{"ERROR", "WARN"}, excluded: []string{"INFO", "DEBUG"}},
		{level: "", expected: []string{"ERROR", "WARN", "INFO"}, excluded: []string{"DEBUG"}},
		{level: "debug", expected: []string{"ERROR", "WARN", "INFO", "DEBUG"}},
	}

	for _, tt := range tests {
		name := tt.level
		if name == "" {
			name = "default"
		}
		t.Run(name, func(t *testing.T) {
			logFile := filepath.Join(tempDir, name+".log")
			err := InitWithOptions(Options{
				Level: tt.level,
				File:  FileConfig{Path: logFile, MaxSizeMB: 10, MaxBackups: 1, MaxAgeDays: 1},
			})
			require.NoError(t, err)
			defer SetLogger(nil)

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			content, err := os.ReadFile(logFile)
			require.NoError(t, err)
			for _, exp := range tt.expected {
				assert.Contains(t, string(content), exp)
			}
			for _, exc := range tt.excluded {
				assert.NotContains(t, string(content), exc)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	_, err := ParseLevel("loud")
	assert.Error(t, err)
	assert.Error(t, Init("loud", ""))

	lvl, err := ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, zap.WarnLevel, lvl)
}

func TestJSONConsole(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(Options{Level: "info", JSON: true, Console: &buf})
	require.NoError(t, err)

	l.Named("loader").Info("loaded", zap.String("file", "bunny.ply"), zap.Int("tris", 12))
	require.NoError(t, l.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "loaded", entry["msg"])
	assert.Equal(t, "loader", entry["logger"])
	assert.Equal(t, "bunny.ply", entry["file"])
	assert.EqualValues(t, 12, entry["tris"])
}

func TestNoOutputsIsNop(t *testing.T) {
	l, err := New(Options{Level: "debug"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zap.ErrorLevel))
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/meshview.log")
	assert.Equal(t, FileConfig{
		Path:       "/tmp/meshview.log",
		MaxSizeMB:  20,
		MaxBackups: 3,
		MaxAgeDays: 14,
		Compress:   true,
	}, cfg)
}
