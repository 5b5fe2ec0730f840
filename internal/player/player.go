// Package player bounds the number of simultaneously live playback handles and
// tracks the maximized/minimized selection state over them.
//
// Player handles are expensive external resources. The cache caps how many are
// registered at once, evicting the oldest-inserted (FIFO, not LRU) with a
// guaranteed teardown. Every call into a handle is best-effort: a handle that
// is not ready yet may reject play/pause/seek, and the cache swallows those
// failures so the selection state the UI observes is never left pending.
package player

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/yto/internal/models"
)

// DefaultMaxPlayers is the default registry cap.
const DefaultMaxPlayers = 10

// Handle is a live playback widget for one video.
type Handle interface {
	Play() error
	Pause() error
	SeekTo(seconds float64) error
	CurrentTime() (float64, error)
	Destroy() error
}

// Cache is the bounded registry of player handles plus the selection state
// machine: no selection, one maximized selection, zero or more minimized
// videos retained for quick restore.
//
// The registry is the one shared mutable resource reachable from several UI
// entry points, so the cache owns it exclusively behind a mutex. Callers must
// not hold a Handle across suspension points; re-fetch it, it may have been
// evicted meanwhile.
type Cache struct {
	mu     sync.Mutex
	logger *log.Logger

	cap       int
	order     []string
	handles   map[string]Handle
	selected  *models.Video
	minimized []models.Video
}

// NewCache creates a Cache with the given registry cap; zero or negative means
// DefaultMaxPlayers.
func NewCache(cap int, logger *log.Logger) *Cache {
	if cap <= 0 {
		cap = DefaultMaxPlayers
	}
	return &Cache{
		cap:     cap,
		logger:  logger,
		handles: make(map[string]Handle),
	}
}

// Register inserts a handle for the video, evicting the oldest-inserted handle
// first when the registry is at cap. A video with a positive resume offset is
// seeked there before playback starts.
func (c *Cache) Register(video models.Video, h Handle) {
	c.mu.Lock()

	if _, exists := c.handles[video.ID]; !exists && len(c.order) >= c.cap {
		oldest := c.order[0]
		c.order = c.order[1:]
		c.teardown(oldest)
	}

	if _, exists := c.handles[video.ID]; !exists {
		c.order = append(c.order, video.ID)
	}
	c.handles[video.ID] = h
	c.mu.Unlock()

	if video.ResumeTime > 0 {
		if err := h.SeekTo(video.ResumeTime); err != nil {
			c.logger.Debug("seek failed", "video", video.ID, "err", err)
		}
	}
	if err := h.Play(); err != nil {
		c.logger.Debug("play failed", "video", video.ID, "err", err)
	}
}

// Handle returns the registered handle for id, if any.
func (c *Cache) Handle(id string) (Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.handles[id]
	return h, ok
}

// Len reports the number of registered handles.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handles)
}

// Open makes video the maximized selection, closing any different currently
// maximized video first and removing video from the minimized set.
func (c *Cache) Open(video models.Video) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selected != nil && c.selected.ID != video.ID {
		c.teardown(c.selected.ID)
		c.removeFromOrder(c.selected.ID)
	}

	c.removeMinimized(video.ID)
	video.IsMinimized = false
	c.selected = &video
}

// Minimize captures the maximized selection's playback position as its resume
// offset, releases its handle, and moves it to the minimized set. Minimizing
// releases the expensive resource; only the lightweight record survives.
func (c *Cache) Minimize() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.selected == nil {
		return
	}

	video := *c.selected
	if h, ok := c.handles[video.ID]; ok {
		if pos, err := h.CurrentTime(); err == nil {
			video.ResumeTime = pos
		} else {
			c.logger.Debug("position capture failed", "video", video.ID, "err", err)
		}
	}

	c.teardown(video.ID)
	c.removeFromOrder(video.ID)

	video.IsMinimized = true
	if !c.isMinimized(video.ID) {
		c.minimized = append(c.minimized, video)
	}
	c.selected = nil
}

// Restore moves a minimized video back to the maximized selection, closing any
// different currently maximized video first.
func (c *Cache) Restore(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var video *models.Video
	for i := range c.minimized {
		if c.minimized[i].ID == id {
			v := c.minimized[i]
			video = &v
			break
		}
	}
	if video == nil {
		return
	}

	if c.selected != nil && c.selected.ID != id {
		c.teardown(c.selected.ID)
		c.removeFromOrder(c.selected.ID)
	}

	c.removeMinimized(id)
	video.IsMinimized = false
	c.selected = video
}

// Close tears down the video with the given id, defaulting to the maximized
// selection. A matching minimized entry is removed regardless of which branch
// fired.
func (c *Cache) Close(id ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := ""
	if len(id) > 0 {
		target = id[0]
	} else if c.selected != nil {
		target = c.selected.ID
	}
	if target == "" {
		return
	}

	if c.selected != nil && c.selected.ID == target {
		c.teardown(target)
		c.removeFromOrder(target)
		c.selected = nil
	}

	c.removeMinimized(target)
}

// DestroyAll tears down every registered handle and resets all state.
func (c *Cache) DestroyAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id := range c.handles {
		c.teardown(id)
	}
	c.order = nil
	c.selected = nil
	c.minimized = nil
}

// Selected returns a copy of the maximized selection, or nil.
func (c *Cache) Selected() *models.Video {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return nil
	}
	v := *c.selected
	return &v
}

// Minimized returns a copy of the minimized set in insertion order.
func (c *Cache) Minimized() []models.Video {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Video, len(c.minimized))
	copy(out, c.minimized)
	return out
}

// teardown destroys and deregisters the handle for id, swallowing teardown
// errors. Callers hold the mutex.
func (c *Cache) teardown(id string) {
	h, ok := c.handles[id]
	if !ok {
		return
	}
	if err := h.Destroy(); err != nil {
		c.logger.Debug("handle teardown failed", "video", id, "err", err)
	}
	delete(c.handles, id)
}

func (c *Cache) removeFromOrder(id string) {
	for i, existing := range c.order {
		if existing == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *Cache) removeMinimized(id string) {
	for i := range c.minimized {
		if c.minimized[i].ID == id {
			c.minimized = append(c.minimized[:i], c.minimized[i+1:]...)
			return
		}
	}
}

func (c *Cache) isMinimized(id string) bool {
	for i := range c.minimized {
		if c.minimized[i].ID == id {
			return true
		}
	}
	return false
}
