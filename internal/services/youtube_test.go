package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/yto/internal/shared"
)

// newYouTubeTestServer serves canned Data API responses keyed by endpoint.
func newYouTubeTestServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := responses[r.URL.Path]
		if !ok {
			http.Error(w, `{"error":{"message":"not found"}}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
}

func TestYouTubeService(t *testing.T) {
	ctx := context.Background()

	t.Run("AuthenticateRequiresCredentials", func(t *testing.T) {
		svc := NewYouTubeService("")
		if err := svc.Authenticate(ctx, map[string]string{}); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
		if err := svc.Authenticate(ctx, map[string]string{"api_key": "k"}); err != nil {
			t.Errorf("api key should suffice: %v", err)
		}
	})

	t.Run("PlaylistsMapsAndPaginates", func(t *testing.T) {
		server := newYouTubeTestServer(t, map[string]string{
			"/playlists": `{
				"items": [
					{"id": "p1", "snippet": {"title": "Focus", "description": "deep work", "publishedAt": "2023-01-15T10:00:00Z"}, "contentDetails": {"itemCount": 3}},
					{"id": "p2", "snippet": {"title": "Party"}}
				],
				"nextPageToken": "CAUQAA"
			}`,
		})
		defer server.Close()

		svc := NewYouTubeService(server.URL)
		svc.Authenticate(ctx, map[string]string{"api_key": "k"})

		page, err := svc.Playlists(ctx, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if page.NextPageToken != "CAUQAA" {
			t.Errorf("continuation token lost: %q", page.NextPageToken)
		}
		if len(page.Playlists) != 2 {
			t.Fatalf("expected 2 playlists, got %d", len(page.Playlists))
		}
		if page.Playlists[0].Title != "Focus" {
			t.Errorf("title not mapped: %+v", page.Playlists[0])
		}
		if page.Playlists[0].PublishedAt == 0 {
			t.Error("publish time should map to epoch millis")
		}
	})

	t.Run("PlaylistItemsEnrichedWithDurations", func(t *testing.T) {
		server := newYouTubeTestServer(t, map[string]string{
			"/playlistItems": `{
				"items": [
					{"id": "item1", "snippet": {"title": "one", "videoOwnerChannelTitle": "Chan", "resourceId": {"videoId": "v1"}, "thumbnails": {"high": {"url": "http://img/hq.jpg"}}}}
				]
			}`,
			"/videos": `{
				"items": [
					{"id": "v1", "snippet": {"tags": ["music"]}, "contentDetails": {"duration": "PT4M13S"}}
				]
			}`,
		})
		defer server.Close()

		svc := NewYouTubeService(server.URL)
		svc.Authenticate(ctx, map[string]string{"api_key": "k"})

		page, err := svc.PlaylistItems(ctx, "p1", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(page.Videos) != 1 {
			t.Fatalf("expected 1 video, got %d", len(page.Videos))
		}

		v := page.Videos[0]
		if v.ID != "v1" || v.ItemID != "item1" {
			t.Errorf("ids not mapped: %+v", v)
		}
		if v.Duration != "4:13" {
			t.Errorf("duration not normalized, got %q", v.Duration)
		}
		if len(v.Tags) != 1 || v.Tags[0] != "music" {
			t.Errorf("tags not mapped: %+v", v.Tags)
		}
		if v.Thumbnail != "http://img/hq.jpg" {
			t.Errorf("thumbnail not mapped: %q", v.Thumbnail)
		}
		if v.URL != "https://www.youtube.com/watch?v=v1" {
			t.Errorf("canonical url not built: %q", v.URL)
		}
	})

	t.Run("EnrichmentFailureIsNotFatal", func(t *testing.T) {
		server := newYouTubeTestServer(t, map[string]string{
			"/playlistItems": `{
				"items": [{"id": "item1", "snippet": {"title": "one", "resourceId": {"videoId": "v1"}}}]
			}`,
		})
		defer server.Close()

		svc := NewYouTubeService(server.URL)
		svc.Authenticate(ctx, map[string]string{"api_key": "k"})

		page, err := svc.PlaylistItems(ctx, "p1", "")
		if err != nil {
			t.Fatalf("items fetch should survive a failed enrichment: %v", err)
		}
		if len(page.Videos) != 1 {
			t.Errorf("expected 1 video, got %d", len(page.Videos))
		}
	})

	t.Run("AuthErrorsSurface", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":{"message":"forbidden"}}`, http.StatusForbidden)
		}))
		defer server.Close()

		svc := NewYouTubeService(server.URL)
		svc.Authenticate(ctx, map[string]string{"api_key": "k"})

		if _, err := svc.Playlists(ctx, ""); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("MissingPlaylistIDRejected", func(t *testing.T) {
		svc := NewYouTubeService("")
		if _, err := svc.PlaylistItems(ctx, "", ""); err == nil {
			t.Error("expected error for missing playlist id")
		}
	})
}
