package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/yto/internal/models"
	"github.com/desertthunder/yto/internal/services"
	"github.com/desertthunder/yto/internal/shared"
	tu "github.com/desertthunder/yto/internal/testing"
	"github.com/urfave/cli/v3"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			provider := &tu.MockProvider{}

			runner := NewRunner(RunnerOpts{
				Config:   config,
				Logger:   logger,
				Output:   output,
				Provider: provider,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.provider != provider {
				t.Error("expected provider to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})
}

// setupRunner builds a Runner over stores in a temp directory with a preset
// provider, plus the root command wired with every subcommand.
func setupRunner(t *testing.T, provider services.Provider) (*Runner, *cli.Command, *bytes.Buffer) {
	t.Helper()

	dir := t.TempDir()
	config := shared.DefaultConfig()
	config.Storage.StatePath = filepath.Join(dir, "state.db")
	config.Storage.DatabasePath = filepath.Join(dir, "library.db")
	config.Storage.ForceFallback = true

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:   config,
		Logger:   shared.NewLogger(nil),
		Output:   output,
		Provider: provider,
	})

	root := &cli.Command{Name: "yto", Commands: runner.register()}
	return runner, root, output
}

func TestCommands(t *testing.T) {
	ctx := context.Background()

	provider := func() *tu.MockProvider {
		return &tu.MockProvider{
			Pages: []*services.PlaylistPage{
				{Playlists: []models.Playlist{
					{ID: "p1", Title: "Synthwave Mix"},
					{ID: "p2", Title: "Cooking"},
				}},
			},
		}
	}

	t.Run("pull then list round-trips through storage", func(t *testing.T) {
		_, root, output := setupRunner(t, provider())

		if err := root.Run(ctx, []string{"yto", "pull"}); err != nil {
			t.Fatalf("pull failed: %v", err)
		}
		if !strings.Contains(output.String(), "2 playlists") {
			t.Errorf("expected sync summary, got %q", output.String())
		}

		output.Reset()
		if err := root.Run(ctx, []string{"yto", "list"}); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		listing := output.String()
		if !strings.Contains(listing, "Synthwave Mix") || !strings.Contains(listing, "Cooking") {
			t.Errorf("expected both playlists listed, got %q", listing)
		}
	})

	t.Run("list with empty storage suggests pull", func(t *testing.T) {
		_, root, output := setupRunner(t, provider())

		if err := root.Run(ctx, []string{"yto", "list"}); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(output.String(), "yto pull") {
			t.Errorf("expected pull hint, got %q", output.String())
		}
	})

	t.Run("list --json emits the library", func(t *testing.T) {
		_, root, output := setupRunner(t, provider())

		if err := root.Run(ctx, []string{"yto", "pull"}); err != nil {
			t.Fatalf("pull failed: %v", err)
		}

		output.Reset()
		if err := root.Run(ctx, []string{"yto", "list", "--json"}); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(output.String(), `"id":"p1"`) {
			t.Errorf("expected JSON playlists, got %q", output.String())
		}
	})

	t.Run("reorder rejects out-of-range positions", func(t *testing.T) {
		_, root, _ := setupRunner(t, provider())

		if err := root.Run(ctx, []string{"yto", "pull"}); err != nil {
			t.Fatalf("pull failed: %v", err)
		}

		err := root.Run(ctx, []string{"yto", "reorder", "--from", "0", "--to", "5"})
		if err == nil {
			t.Fatal("expected error for out-of-range position")
		}
	})

	t.Run("reorder switches the library to custom order", func(t *testing.T) {
		_, root, output := setupRunner(t, provider())

		if err := root.Run(ctx, []string{"yto", "pull"}); err != nil {
			t.Fatalf("pull failed: %v", err)
		}

		output.Reset()
		if err := root.Run(ctx, []string{"yto", "reorder", "--from", "0", "--to", "1"}); err != nil {
			t.Fatalf("reorder failed: %v", err)
		}
		if !strings.Contains(output.String(), "custom") {
			t.Errorf("expected custom mode in output, got %q", output.String())
		}
	})

	t.Run("search finds persisted playlists", func(t *testing.T) {
		_, root, output := setupRunner(t, provider())

		if err := root.Run(ctx, []string{"yto", "pull"}); err != nil {
			t.Fatalf("pull failed: %v", err)
		}

		output.Reset()
		if err := root.Run(ctx, []string{"yto", "search", "synthwave"}); err != nil {
			t.Fatalf("search failed: %v", err)
		}
		if !strings.Contains(output.String(), "Synthwave Mix") {
			t.Errorf("expected match in output, got %q", output.String())
		}
	})

	t.Run("storage stats then clear", func(t *testing.T) {
		_, root, output := setupRunner(t, provider())

		if err := root.Run(ctx, []string{"yto", "pull"}); err != nil {
			t.Fatalf("pull failed: %v", err)
		}

		output.Reset()
		if err := root.Run(ctx, []string{"yto", "storage", "stats"}); err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		if !strings.Contains(output.String(), "Playlists:      2") {
			t.Errorf("expected playlist count, got %q", output.String())
		}

		if err := root.Run(ctx, []string{"yto", "storage", "clear"}); err != nil {
			t.Fatalf("clear failed: %v", err)
		}

		output.Reset()
		if err := root.Run(ctx, []string{"yto", "list"}); err != nil {
			t.Fatalf("list failed: %v", err)
		}
		if !strings.Contains(output.String(), "No playlists") {
			t.Errorf("expected empty library after clear, got %q", output.String())
		}
	})

	t.Run("export writes csv files", func(t *testing.T) {
		withVideos := &tu.MockProvider{
			Pages: []*services.PlaylistPage{
				{Playlists: []models.Playlist{{
					ID:    "p1",
					Title: "Synthwave Mix",
					Videos: []models.Video{
						{ID: "v1", Title: "Nightcall", Channel: "Kavinsky", Duration: "4:18"},
					},
				}}},
			},
		}
		_, root, _ := setupRunner(t, withVideos)

		if err := root.Run(ctx, []string{"yto", "pull"}); err != nil {
			t.Fatalf("pull failed: %v", err)
		}

		base := filepath.Join(t.TempDir(), "export")
		if err := root.Run(ctx, []string{"yto", "export", "--format", "csv", "--output", base, "p1"}); err != nil {
			t.Fatalf("export failed: %v", err)
		}
		tu.AssertFileExists(t, base+"_videos.csv")
		tu.AssertFileExists(t, base+"_metadata.json")
	})

	t.Run("export unknown playlist fails", func(t *testing.T) {
		_, root, _ := setupRunner(t, provider())

		if err := root.Run(ctx, []string{"yto", "pull"}); err != nil {
			t.Fatalf("pull failed: %v", err)
		}

		err := root.Run(ctx, []string{"yto", "export", "missing"})
		if err == nil {
			t.Fatal("expected error for unknown playlist")
		}
	})
}
