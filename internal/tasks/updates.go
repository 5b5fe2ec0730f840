package tasks

import (
	"fmt"

	"github.com/desertthunder/yto/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	Hydrate Phase = iota
	FetchPage
	MergeLibrary
	Persist
	FetchVideos
	ClearState
)

func (p Phase) String() string {
	switch p {
	case Hydrate:
		return "hydrate"
	case FetchPage:
		return "fetch_page"
	case MergeLibrary:
		return "merge"
	case Persist:
		return "persist"
	case FetchVideos:
		return "fetch_videos"
	case ClearState:
		return "clear"
	default:
		return ""
	}
}

func hydrateUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Hydrate,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Loaded %d playlists from storage", count),
	}
}

func fetchPageUpdate(provider string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPage,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlists from %s...", provider),
	}
}

func mergeUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MergeLibrary,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Merged library: %d playlists", count),
	}
}

func persistUpdate(saved, failed int) ProgressUpdate {
	msg := fmt.Sprintf("Saved %d playlists", saved)
	if failed > 0 {
		msg = fmt.Sprintf("Saved %d playlists (%d failed)", saved, failed)
	}
	return ProgressUpdate{
		Phase:   Persist,
		Step:    1,
		Total:   1,
		Message: msg,
	}
}

func fetchVideosUpdate(step, total int, p *models.Playlist) ProgressUpdate {
	if p == nil {
		return ProgressUpdate{
			Phase:   FetchVideos,
			Step:    step,
			Total:   total,
			Message: "Fetching videos...",
		}
	}
	return ProgressUpdate{
		Phase:   FetchVideos,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, p.Title),
		Data:    p,
	}
}

func clearUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   ClearState,
		Step:    1,
		Total:   1,
		Message: "Cleared persisted library state",
	}
}
