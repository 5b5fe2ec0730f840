package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Storage.DatabasePath != "yto.db" {
			t.Errorf("expected database path yto.db, got %s", config.Storage.DatabasePath)
		}

		if config.Storage.StatePath != "yto-state.db" {
			t.Errorf("expected state path yto-state.db, got %s", config.Storage.StatePath)
		}

		if config.Storage.ForceFallback {
			t.Error("expected force_fallback to default to false")
		}

		if config.Player.MaxPlayers != 10 {
			t.Errorf("expected max_players 10, got %d", config.Player.MaxPlayers)
		}

		if config.Credentials.Spotify.RedirectURI != "http://localhost:8888/callback" {
			t.Errorf("expected default redirect URI, got %s", config.Credentials.Spotify.RedirectURI)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Storage.DatabasePath != defaultConfig.Storage.DatabasePath {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[credentials.youtube]
api_key = "test_api_key"

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:3000/callback"

[storage]
database_path = "/custom/library.db"
state_path = "/custom/state.db"
force_fallback = true

[player]
max_players = 4
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Storage.DatabasePath != "/custom/library.db" {
			t.Errorf("expected custom database path, got %s", config.Storage.DatabasePath)
		}
		if !config.Storage.ForceFallback {
			t.Error("expected force_fallback true")
		}
		if config.Player.MaxPlayers != 4 {
			t.Errorf("expected max_players 4, got %d", config.Player.MaxPlayers)
		}
		if config.Credentials.YouTube.APIKey != "test_api_key" {
			t.Errorf("expected youtube api key, got %s", config.Credentials.YouTube.APIKey)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}
