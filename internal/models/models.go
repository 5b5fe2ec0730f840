package models

import (
	"time"
)

// Service namespaces for persisted records. Each namespace gets its own pair of
// playlist/video tables in the structured store.
const (
	NamespaceDefault = "default"
	NamespaceGoogle  = "google"
	NamespaceSpotify = "spotify"
)

// Playlist represents a playlist from any service together with its locally
// persisted state.
//
// The identifier is unique within its service namespace. Videos carry
// significant order that survives persistence round-trips unless the user
// reorders explicitly.
type Playlist struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Color       string  `json:"color,omitempty"`
	Videos      []Video `json:"videos"`
	// NextPageToken is the opaque continuation token for fetching the next
	// page of videos, when the service paginates.
	NextPageToken string `json:"nextPageToken,omitempty"`
	// SortID is a deprecated explicit sort index retained for migrating the
	// legacy custom-order shape.
	SortID *int `json:"sortId,omitempty"`
	// PublishedAt and LastUpdated are epoch milliseconds. LastUpdated is set
	// on every local mutation.
	PublishedAt int64 `json:"publishedAt,omitempty"`
	LastUpdated int64 `json:"lastUpdated,omitempty"`
}

// Touch sets LastUpdated to the current time.
func (p *Playlist) Touch() {
	p.LastUpdated = time.Now().UnixMilli()
}

// Video represents a single item inside a playlist.
//
// ItemID identifies the item's membership in a specific playlist position and
// is distinct from the video's own ID. The trailing fields are ephemeral UI
// state; they travel with the video in the key-value snapshot but are only
// meaningful at runtime.
type Video struct {
	ID          string   `json:"id"`
	ItemID      string   `json:"itemId,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	// Duration is the human-readable clock string derived from the service's
	// ISO-8601 period (e.g. "PT4M13S" -> "4:13").
	Duration  string   `json:"duration,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Channel   string   `json:"channel,omitempty"`
	// PublishedAt is epoch milliseconds.
	PublishedAt int64  `json:"publishedAt,omitempty"`
	URL         string `json:"url,omitempty"`

	// Ephemeral UI state.
	Visible     bool    `json:"visible,omitempty"`
	IsMinimized bool    `json:"isMinimized,omitempty"`
	ResumeTime  float64 `json:"resumeTime,omitempty"`
	Unsaved     bool    `json:"unsaved,omitempty"`
}

// TokenCache is the session-scoped access token shape persisted under the auth
// token key. Cleared on sign-out or expiry.
type TokenCache struct {
	AccessToken string `json:"accessToken"`
	// ExpiresAt is epoch milliseconds.
	ExpiresAt int64 `json:"expiresAt"`
}

// Expired reports whether the cached token is past its expiry.
func (t *TokenCache) Expired() bool {
	return t == nil || t.AccessToken == "" || time.Now().UnixMilli() >= t.ExpiresAt
}

// NewPlaylist creates a locally authored playlist with the given id and title,
// stamped with the current time.
func NewPlaylist(id, title string) Playlist {
	now := time.Now().UnixMilli()
	return Playlist{
		ID:          id,
		Title:       title,
		Videos:      []Video{},
		PublishedAt: now,
		LastUpdated: now,
	}
}

// ClonePlaylists returns a shallow copy of the slice with each playlist's video
// slice copied as well, so callers can hand out merged/sorted results without
// aliasing the originals.
func ClonePlaylists(playlists []Playlist) []Playlist {
	out := make([]Playlist, len(playlists))
	copy(out, playlists)
	for i := range out {
		if out[i].Videos != nil {
			videos := make([]Video, len(out[i].Videos))
			copy(videos, out[i].Videos)
			out[i].Videos = videos
		}
	}
	return out
}
