package tasks

import (
	"context"
	"testing"

	"github.com/desertthunder/yto/internal/models"
	"github.com/desertthunder/yto/internal/services"
	tu "github.com/desertthunder/yto/internal/testing"
)

func setupSearchLibrary(t *testing.T) *Organizer {
	t.Helper()

	synthwave := models.NewPlaylist("p1", "Synthwave Mix")
	synthwave.Videos = []models.Video{
		{ID: "v1", Title: "Nightcall", Channel: "Kavinsky"},
	}
	electronic := models.NewPlaylist("p2", "Electronic")
	electronic.Videos = []models.Video{
		{ID: "v2", Title: "One More Time", Channel: "Daft Punk"},
		{ID: "v3", Title: "Unrelated", Channel: "Someone"},
	}
	cooking := models.NewPlaylist("p3", "Cooking Videos")

	store := &fakeStore{stored: []models.Playlist{synthwave, electronic, cooking}}
	organizer, _ := setupOrganizer(t, &tu.MockProvider{Pages: []*services.PlaylistPage{{}}}, store)
	if err := organizer.Preload(context.Background(), nil); err != nil {
		t.Fatalf("Preload failed: %v", err)
	}
	return organizer
}

func TestSearch(t *testing.T) {
	organizer := setupSearchLibrary(t)

	t.Run("MatchesPlaylistTitle", func(t *testing.T) {
		results := organizer.Search("synthwave")
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if results[0].Playlist.ID != "p1" {
			t.Errorf("expected p1, got %s", results[0].Playlist.ID)
		}
	})

	t.Run("MatchesVideoChannel", func(t *testing.T) {
		results := organizer.Search("daft punk")
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if results[0].Playlist.ID != "p2" {
			t.Errorf("expected p2, got %s", results[0].Playlist.ID)
		}
		if len(results[0].Videos) != 1 || results[0].Videos[0].ID != "v2" {
			t.Errorf("expected the matching video only, got %v", results[0].Videos)
		}
	})

	t.Run("CaseInsensitive", func(t *testing.T) {
		if len(organizer.Search("COOKING")) != 1 {
			t.Error("matching should fold case")
		}
	})

	t.Run("BlankQueryIsEmpty", func(t *testing.T) {
		if results := organizer.Search("   "); results != nil {
			t.Errorf("blank query should return nothing, got %v", results)
		}
	})

	t.Run("NoMatch", func(t *testing.T) {
		if results := organizer.Search("zzzzzz"); len(results) != 0 {
			t.Errorf("expected no results, got %v", results)
		}
	})
}
