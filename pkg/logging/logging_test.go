package logging

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestGetLogFilePath(t *testing.T) {
	got := getLogFilePath()
	if got != "filesync.log" && !filepath.IsAbs(got) {
		t.Errorf("getLogFilePath() returned relative path: %s", got)
	}
	if !strings.Contains(filepath.ToSlash(got), "filesync") {
		t.Errorf("getLogFilePath() = %s, want path under a filesync directory", got)
	}
}

func TestGetLogger(t *testing.T) {
	logger := GetLogger("test-component")

	// Basic smoke test - the component field is attached via the
	// global logger context
	logger.Info().Msg("test message")
}
