package tasks

import (
	"sync"

	"github.com/desertthunder/yto/internal/models"
)

// Subscriber receives the full playlist slice after every replacement.
type Subscriber func(playlists []models.Playlist)

// Collection is the in-memory playlist library. Updates replace the whole
// slice rather than patching individual entries, so subscribers always see a
// consistent snapshot.
type Collection struct {
	mu        sync.RWMutex
	playlists []models.Playlist
	subs      []Subscriber
}

// NewCollection creates an empty Collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Replace swaps the library for the given slice and notifies subscribers.
// The input is copied; callers keep ownership of their slice.
func (c *Collection) Replace(playlists []models.Playlist) {
	c.mu.Lock()
	c.playlists = models.ClonePlaylists(playlists)
	subs := make([]Subscriber, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, sub := range subs {
		sub(models.ClonePlaylists(playlists))
	}
}

// Playlists returns a copy of the current library.
func (c *Collection) Playlists() []models.Playlist {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return models.ClonePlaylists(c.playlists)
}

// Find returns the playlist with the given ID, or false when absent.
func (c *Collection) Find(id string) (models.Playlist, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, p := range c.playlists {
		if p.ID == id {
			return models.ClonePlaylists([]models.Playlist{p})[0], true
		}
	}
	return models.Playlist{}, false
}

// Len reports the number of playlists held.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.playlists)
}

// Subscribe registers a callback invoked after every Replace.
func (c *Collection) Subscribe(sub Subscriber) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subs = append(c.subs, sub)
}
