package shared

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

func TestLogger(t *testing.T) {
	t.Run("NewLogger writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Info("hello", "key", "value")

		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
		if !strings.Contains(buf.String(), "key=value") {
			t.Errorf("expected log output to contain key/value pair, got %q", buf.String())
		}
	})

	t.Run("SetLogLevel filters lower levels", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.WarnLevel)
		logger.Info("quiet")

		if buf.Len() != 0 {
			t.Errorf("expected info to be filtered, got %q", buf.String())
		}
	})

	t.Run("WithLogger adds fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "proxy")
		logger.Info("started")

		if !strings.Contains(buf.String(), "component=proxy") {
			t.Errorf("expected child logger fields, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "streamlist.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger() error = %v", err)
		}
		logger.Info("to file")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if !strings.Contains(string(data), "to file") {
			t.Errorf("expected log file to contain message, got %q", string(data))
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected distinct IDs")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("expected a valid UUID, got %q: %v", a, err)
	}
}
