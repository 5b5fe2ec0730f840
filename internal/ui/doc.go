// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a two-view workflow for organizing a playlist library:
//  1. [PlaylistListView] : Browse, sort, and reorder playlists
//  2. [VideoListView] : Browse the videos inside a playlist
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// The library loads through [tasks.Organizer.Preload] on startup, with progress
// updates flowing through a channel for non-blocking status reporting.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) plus
// shift+j/shift+k to move the selected playlist, which switches the library to
// custom ordering and persists the result.
package ui
