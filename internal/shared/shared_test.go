package shared

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateID(t *testing.T) {
	first := GenerateID()
	second := GenerateID()

	if first == second {
		t.Error("expected distinct IDs")
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Errorf("expected a valid uuid, got %q: %v", first, err)
	}
}

func TestNewFileLogger(t *testing.T) {
	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "app.log")

		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("expected logger, got %v", err)
		}

		logger.Info("probe")
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected log file at %s: %v", path, err)
		}
	})

	t.Run("appends to an existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		if err := os.WriteFile(path, []byte("existing\n"), 0644); err != nil {
			t.Fatalf("failed to seed log file: %v", err)
		}

		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("expected logger, got %v", err)
		}
		logger.Info("appended")

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log file: %v", err)
		}
		if len(data) <= len("existing\n") {
			t.Error("expected appended log output after existing content")
		}
	})
}
