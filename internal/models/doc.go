// Package models defines the domain entities shared by the organizer's storage,
// merge, sorting, and player layers.
//
//   - [Playlist] : a playlist and its ordered video sequence, as fetched from a
//     service and as persisted locally
//   - [Video] : a single playlist item with its ephemeral UI-only state
//   - [TokenCache] : the session-scoped access token shape cached by the auth layer
//
// Playlists and videos are value-oriented: the layers that transform them
// (merge, sorting) return fresh slices and never mutate their inputs, so the
// UI-facing collection can be replaced wholesale on every change.
package models
