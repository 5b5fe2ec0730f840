package services

import (
	"context"

	"github.com/desertthunder/yto/internal/models"
)

// PlaylistPage is one page of a playlist listing. NextPageToken is the opaque
// continuation token for the following page, empty on the last page.
type PlaylistPage struct {
	Playlists     []models.Playlist
	NextPageToken string
}

// VideoPage is one page of a playlist's items.
type VideoPage struct {
	Videos        []models.Video
	NextPageToken string
}

// Provider defines the interface for playlist sources (YouTube, Spotify).
type Provider interface {
	// Authenticate prepares the provider with service-specific credentials.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// Playlists retrieves one page of the user's playlists. An empty
	// pageToken requests the first page.
	Playlists(ctx context.Context, pageToken string) (*PlaylistPage, error)

	// PlaylistItems retrieves one page of a playlist's videos.
	PlaylistItems(ctx context.Context, playlistID, pageToken string) (*VideoPage, error)

	// Name returns the provider name (e.g. "YouTube", "Spotify").
	Name() string

	// Namespace returns the storage namespace this provider persists under.
	Namespace() string
}
