package ui

import (
	"github.com/desertthunder/yto/internal/models"
	"github.com/desertthunder/yto/internal/tasks"
)

// libraryLoadedMsg reports the outcome of the initial preload.
type libraryLoadedMsg struct {
	playlists []models.Playlist
	err       error
}

// pageLoadedMsg reports the outcome of a continuation fetch.
type pageLoadedMsg struct {
	playlists []models.Playlist
	err       error
}

// videosLoadedMsg reports the videos fetched for a playlist.
type videosLoadedMsg struct {
	playlist models.Playlist
	videos   []models.Video
	err      error
}

// progressUpdateMsg carries a [tasks.ProgressUpdate] into the Elm loop.
type progressUpdateMsg tasks.ProgressUpdate
