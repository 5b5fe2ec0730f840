// Package merge reconciles freshly fetched playlist collections against the
// previously persisted local state without discarding user edits.
//
// The rules are asymmetric on purpose: volatile remote metadata (title,
// description, publish time) always refreshes from the fetch, while
// user-shaped state (color, the loaded video sequence, the explicit sort
// index) always survives from storage. Playlists that vanished from a fetch
// are kept, treating the fetch as possibly partial or offline, and playlists
// the fetch discovered surface at the front of the collection.
//
// All functions are pure: inputs are never mutated and outputs are fresh
// slices, so the caller can replace its reactive collection wholesale.
package merge

import (
	"github.com/desertthunder/yto/internal/models"
)

// Merge reconciles a full fetch against the stored snapshot.
//
// Stored order is preserved. Records present in both refresh their
// fresh-preferred fields from the fetch; stored-only records are retained
// unchanged; fetched-only records are prepended. A nil stored snapshot yields
// the fetched collection as-is.
//
// Paged fetches (continuation token in hand) must not go through Merge: a
// partial page is not a source of truth for anything, least of all deletion.
func Merge(stored, fetched []models.Playlist) []models.Playlist {
	if stored == nil {
		return models.ClonePlaylists(fetched)
	}

	fetchedByID := make(map[string]models.Playlist, len(fetched))
	for _, p := range fetched {
		fetchedByID[p.ID] = p
	}

	merged := make([]models.Playlist, 0, len(stored)+len(fetched))
	storedIDs := make(map[string]bool, len(stored))

	for _, s := range stored {
		storedIDs[s.ID] = true
		f, ok := fetchedByID[s.ID]
		if !ok {
			merged = append(merged, s)
			continue
		}
		merged = append(merged, mergeOne(s, f))
	}

	// Newly discovered playlists go to the front, preserving their fetched
	// relative order.
	var discovered []models.Playlist
	for _, f := range fetched {
		if !storedIDs[f.ID] {
			discovered = append(discovered, f)
		}
	}
	if len(discovered) > 0 {
		merged = append(models.ClonePlaylists(discovered), merged...)
	}

	return merged
}

// mergeOne combines one stored record with its fetched counterpart.
// Fresh-preferred: title, description, publish time. User-preferred: color
// (stored wins when set), video sequence, sort index, continuation token.
func mergeOne(stored, fetched models.Playlist) models.Playlist {
	out := stored

	out.Title = fetched.Title
	out.Description = fetched.Description
	out.PublishedAt = fetched.PublishedAt

	if stored.Color == "" {
		out.Color = fetched.Color
	}

	if stored.Videos != nil {
		videos := make([]models.Video, len(stored.Videos))
		copy(videos, stored.Videos)
		out.Videos = videos
	}

	return out
}

// MergeVideos populates a playlist's video sequence from a fetch. A playlist
// that already holds videos keeps them untouched: existing videos are never
// overwritten by a re-fetch. This is a deliberate consistency rule, not an
// oversight.
func MergeVideos(p models.Playlist, fetched []models.Video) models.Playlist {
	if len(p.Videos) > 0 {
		out := p
		videos := make([]models.Video, len(p.Videos))
		copy(videos, p.Videos)
		out.Videos = videos
		return out
	}

	out := p
	out.Videos = make([]models.Video, len(fetched))
	copy(out.Videos, fetched)
	return out
}
