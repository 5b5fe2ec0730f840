package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/desertthunder/yto/internal/models"
	"github.com/desertthunder/yto/internal/shared"
)

// setupTestStructured creates an initialized StructuredStore over an in-memory
// SQLite database.
func setupTestStructured(t *testing.T) *StructuredStore {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := NewStructuredStore(db, shared.NewLogger(io.Discard))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to init structured store: %v", err)
	}

	return store
}

func TestStructuredStore(t *testing.T) {
	ctx := context.Background()

	t.Run("InitIsIdempotent", func(t *testing.T) {
		db, err := shared.NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create test database: %v", err)
		}
		defer db.Close()

		store := NewStructuredStore(db, shared.NewLogger(io.Discard))
		for i := 0; i < 3; i++ {
			if err := store.Init(ctx); err != nil {
				t.Fatalf("init %d failed: %v", i, err)
			}
		}

		// A second store over the same schema must also come up cleanly.
		again := NewStructuredStore(db, shared.NewLogger(io.Discard))
		if err := again.Init(ctx); err != nil {
			t.Fatalf("re-init over existing schema failed: %v", err)
		}
	})

	t.Run("NotInitialized", func(t *testing.T) {
		db, err := shared.NewDatabase(":memory:")
		if err != nil {
			t.Fatalf("failed to create test database: %v", err)
		}
		defer db.Close()

		store := NewStructuredStore(db, shared.NewLogger(io.Discard))
		if _, err := store.GetAllPlaylists(ctx, models.NamespaceGoogle); !errors.Is(err, shared.ErrNotInitialized) {
			t.Errorf("expected ErrNotInitialized, got %v", err)
		}
		if err := store.PutPlaylist(ctx, models.NamespaceGoogle, models.Playlist{ID: "p1"}); !errors.Is(err, shared.ErrNotInitialized) {
			t.Errorf("expected ErrNotInitialized, got %v", err)
		}
	})

	t.Run("PutAndGetPlaylist", func(t *testing.T) {
		store := setupTestStructured(t)

		sortID := 3
		p := models.Playlist{
			ID:          "p1",
			Title:       "Synthwave",
			Description: "retro",
			Color:       "#f0f",
			SortID:      &sortID,
			PublishedAt: 1700000000000,
		}
		if err := store.PutPlaylist(ctx, models.NamespaceGoogle, p); err != nil {
			t.Fatalf("failed to put playlist: %v", err)
		}

		playlists, err := store.GetAllPlaylists(ctx, models.NamespaceGoogle)
		if err != nil {
			t.Fatalf("failed to get playlists: %v", err)
		}
		if len(playlists) != 1 {
			t.Fatalf("expected 1 playlist, got %d", len(playlists))
		}

		got := playlists[0]
		if got.Title != "Synthwave" || got.Color != "#f0f" {
			t.Errorf("unexpected playlist row: %+v", got)
		}
		if got.SortID == nil || *got.SortID != 3 {
			t.Errorf("sort id not round-tripped: %+v", got.SortID)
		}
		if got.LastUpdated == 0 {
			t.Error("last updated should be stamped on write")
		}
	})

	t.Run("NamespaceSegmentation", func(t *testing.T) {
		store := setupTestStructured(t)

		store.PutPlaylist(ctx, models.NamespaceGoogle, models.Playlist{ID: "g1", Title: "google"})
		store.PutPlaylist(ctx, models.NamespaceSpotify, models.Playlist{ID: "s1", Title: "spotify"})

		google, err := store.GetAllPlaylists(ctx, models.NamespaceGoogle)
		if err != nil {
			t.Fatalf("failed to get google playlists: %v", err)
		}
		if len(google) != 1 || google[0].ID != "g1" {
			t.Errorf("google namespace leaked: %+v", google)
		}
	})

	t.Run("VideosByPlaylistIndex", func(t *testing.T) {
		store := setupTestStructured(t)

		store.PutPlaylist(ctx, models.NamespaceGoogle, models.Playlist{ID: "p1", Title: "mix"})
		videos := []models.Video{
			{ID: "v1", Title: "first", Tags: []string{"a", "b"}},
			{ID: "v2", Title: "second"},
			{ID: "v3", Title: "third"},
		}
		for i, v := range videos {
			if err := store.PutVideo(ctx, models.NamespaceGoogle, "p1", i, v); err != nil {
				t.Fatalf("failed to put video %s: %v", v.ID, err)
			}
		}
		store.PutVideo(ctx, models.NamespaceGoogle, "p2", 0, models.Video{ID: "x1", Title: "other"})

		got, err := store.GetVideosByPlaylist(ctx, models.NamespaceGoogle, "p1")
		if err != nil {
			t.Fatalf("failed to get videos: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 videos, got %d", len(got))
		}
		for i, want := range []string{"v1", "v2", "v3"} {
			if got[i].ID != want {
				t.Errorf("position %d: expected %s, got %s", i, want, got[i].ID)
			}
		}
		if len(got[0].Tags) != 2 {
			t.Errorf("tags not round-tripped: %+v", got[0].Tags)
		}
	})

	t.Run("PutVideoRequiresParent", func(t *testing.T) {
		store := setupTestStructured(t)

		err := store.PutVideo(ctx, models.NamespaceGoogle, "", 0, models.Video{ID: "v1"})
		if err == nil {
			t.Error("video without parent playlist id must be rejected")
		}
	})

	t.Run("ClearTables", func(t *testing.T) {
		store := setupTestStructured(t)

		store.PutPlaylist(ctx, models.NamespaceGoogle, models.Playlist{ID: "p1", Title: "mix"})
		store.PutVideo(ctx, models.NamespaceGoogle, "p1", 0, models.Video{ID: "v1", Title: "one"})

		if err := store.ClearVideos(ctx, models.NamespaceGoogle); err != nil {
			t.Fatalf("failed to clear videos: %v", err)
		}
		if err := store.ClearPlaylists(ctx, models.NamespaceGoogle); err != nil {
			t.Fatalf("failed to clear playlists: %v", err)
		}

		playlists, err := store.GetAllPlaylists(ctx, models.NamespaceGoogle)
		if err != nil {
			t.Fatalf("failed to get playlists: %v", err)
		}
		if len(playlists) != 0 {
			t.Errorf("expected empty table, got %d rows", len(playlists))
		}
	})

	t.Run("UnknownNamespaceRejected", func(t *testing.T) {
		store := setupTestStructured(t)

		if _, err := store.GetAllPlaylists(ctx, "yahoo"); err == nil {
			t.Error("unknown namespace must be rejected")
		}
	})
}
