package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/yto/internal/merge"
	"github.com/desertthunder/yto/internal/models"
	"github.com/desertthunder/yto/internal/services"
	"github.com/desertthunder/yto/internal/shared"
	"github.com/desertthunder/yto/internal/sorting"
	"github.com/desertthunder/yto/internal/storage"
)

// KV is the key/value surface the organizer needs for continuation tokens.
type KV interface {
	Set(key string, value any) bool
	Get(key string, dest any) bool
	Remove(key string) bool
}

// Store is the persistence surface the organizer writes the library through.
// [storage.Gateway] satisfies it.
type Store interface {
	GetPlaylists(ctx context.Context) []models.Playlist
	SavePlaylists(ctx context.Context, playlists []models.Playlist) *storage.BatchResult
	Clear(ctx context.Context) bool
}

// OrganizerOpts carries the dependencies for NewOrganizer.
type OrganizerOpts struct {
	Provider services.Provider
	Store    Store
	KV       KV
	Sorter   *sorting.Layer
	Logger   *log.Logger
}

// Organizer coordinates the playlist library: hydrating from storage, fetching
// from the provider, merging, sorting, and writing back. Each long-running
// operation carries an in-flight guard so a second concurrent call no-ops
// instead of racing the first.
type Organizer struct {
	provider   services.Provider
	store      Store
	kv         KV
	sorter     *sorting.Layer
	collection *Collection
	logger     *log.Logger

	mu            sync.Mutex
	preloading    bool
	loadingMore   bool
	loadingVideos map[string]bool
	nextPageToken string
}

// NewOrganizer creates an Organizer and restores any persisted continuation
// token so LoadMore can resume a paged fetch across runs.
func NewOrganizer(opts OrganizerOpts) *Organizer {
	o := &Organizer{
		provider:      opts.Provider,
		store:         opts.Store,
		kv:            opts.KV,
		sorter:        opts.Sorter,
		collection:    NewCollection(),
		logger:        opts.Logger,
		loadingVideos: make(map[string]bool),
	}
	if o.kv != nil {
		var token string
		if o.kv.Get(storage.KeyPageToken, &token) {
			o.nextPageToken = token
		}
	}
	return o
}

// Collection returns the reactive library container.
func (o *Organizer) Collection() *Collection {
	return o.collection
}

// Playlists returns the current library snapshot.
func (o *Organizer) Playlists() []models.Playlist {
	return o.collection.Playlists()
}

// HasMore reports whether a continuation token from the last fetch remains.
func (o *Organizer) HasMore() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.nextPageToken != ""
}

// Hydrate loads the persisted library into the collection without touching
// the provider. Returns the number of playlists loaded.
func (o *Organizer) Hydrate(ctx context.Context) int {
	stored := o.store.GetPlaylists(ctx)
	if stored != nil {
		o.collection.Replace(o.arrange(stored))
	}
	return len(stored)
}

// Preload hydrates the library from storage, fetches the first provider page,
// merges the two, replaces the collection, and writes the merged result back.
// A call while another Preload is in flight returns immediately.
func (o *Organizer) Preload(ctx context.Context, progress chan<- ProgressUpdate) error {
	if !o.begin(&o.preloading) {
		return nil
	}
	defer o.end(&o.preloading)

	if o.provider == nil {
		return fmt.Errorf("%w: provider not configured", shared.ErrServiceUnavailable)
	}

	stored := o.store.GetPlaylists(ctx)
	if stored != nil {
		o.collection.Replace(o.arrange(stored))
	}
	sendProgress(progress, hydrateUpdate(len(stored)))

	sendProgress(progress, fetchPageUpdate(o.provider.Name()))
	page, err := o.provider.Playlists(ctx, "")
	if err != nil {
		return fmt.Errorf("%w: failed to fetch playlists: %v", shared.ErrAPIRequest, err)
	}

	merged := merge.Merge(stored, page.Playlists)
	o.setPageToken(page.NextPageToken)
	o.collection.Replace(o.arrange(merged))
	sendProgress(progress, mergeUpdate(len(merged)))

	o.persist(ctx, merged, progress)
	return nil
}

// LoadMore fetches the next page using the saved continuation token and
// appends it to the library as-is, without re-merging or re-sorting what the
// provider returned. No token or an in-flight LoadMore means no work.
func (o *Organizer) LoadMore(ctx context.Context, progress chan<- ProgressUpdate) error {
	token := o.pageToken()
	if token == "" {
		return nil
	}
	if !o.begin(&o.loadingMore) {
		return nil
	}
	defer o.end(&o.loadingMore)

	sendProgress(progress, fetchPageUpdate(o.provider.Name()))
	page, err := o.provider.Playlists(ctx, token)
	if err != nil {
		return fmt.Errorf("%w: failed to fetch page: %v", shared.ErrAPIRequest, err)
	}

	combined := append(o.collection.Playlists(), page.Playlists...)
	o.setPageToken(page.NextPageToken)
	o.collection.Replace(combined)

	o.persist(ctx, combined, progress)
	return nil
}

// LoadVideos fills in a playlist's videos, fetching every item page from the
// provider. Playlists that already carry videos are returned untouched.
func (o *Organizer) LoadVideos(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) ([]models.Video, error) {
	p, ok := o.collection.Find(playlistID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
	}
	if len(p.Videos) > 0 {
		return p.Videos, nil
	}
	if !o.beginVideos(playlistID) {
		return nil, nil
	}
	defer o.endVideos(playlistID)

	sendProgress(progress, fetchVideosUpdate(1, 1, &p))

	var videos []models.Video
	token := ""
	for {
		page, err := o.provider.PlaylistItems(ctx, playlistID, token)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to fetch videos: %v", shared.ErrAPIRequest, err)
		}
		videos = append(videos, page.Videos...)
		if page.NextPageToken == "" {
			break
		}
		token = page.NextPageToken
	}

	updated := merge.MergeVideos(p, videos)
	library := o.collection.Playlists()
	for i := range library {
		if library[i].ID == playlistID {
			library[i] = updated
			break
		}
	}
	o.collection.Replace(library)
	o.persist(ctx, library, progress)
	return updated.Videos, nil
}

// Reorder moves the playlist at from to position to, switches the library to
// custom ordering, and persists both the order and the collection.
func (o *Organizer) Reorder(ctx context.Context, from, to int) sorting.Mode {
	current := o.collection.Playlists()
	reordered, mode := o.sorter.ReorderAfterDrag(current, from, to, o.sorter.LoadMode())
	o.collection.Replace(reordered)
	o.persist(ctx, reordered, nil)
	return mode
}

// SortMode returns the persisted sort mode.
func (o *Organizer) SortMode() sorting.Mode {
	return o.sorter.LoadMode()
}

// SetSortMode persists the mode and re-sorts the collection under it.
func (o *Organizer) SetSortMode(mode sorting.Mode) {
	o.sorter.SaveMode(mode)
	o.collection.Replace(o.sorter.Sort(o.collection.Playlists(), mode))
}

// ClearStorage removes the persisted library and empties the collection.
// The continuation token goes with it.
func (o *Organizer) ClearStorage(ctx context.Context, progress chan<- ProgressUpdate) bool {
	ok := o.store.Clear(ctx)
	o.setPageToken("")
	o.collection.Replace(nil)
	sendProgress(progress, clearUpdate())
	return ok
}

// arrange applies the persisted custom order then the persisted sort mode.
func (o *Organizer) arrange(playlists []models.Playlist) []models.Playlist {
	if o.sorter == nil {
		return playlists
	}
	return o.sorter.Sort(o.sorter.ApplyCustomOrder(playlists), o.sorter.LoadMode())
}

// persist writes the library through the store, logging partial failures
// without interrupting the caller.
func (o *Organizer) persist(ctx context.Context, playlists []models.Playlist, progress chan<- ProgressUpdate) {
	result := o.store.SavePlaylists(ctx, playlists)
	if result == nil {
		return
	}
	failed := result.Failed()
	for _, item := range failed {
		o.logger.Warn("playlist not persisted", "id", item.ID, "error", item.Err)
	}
	sendProgress(progress, persistUpdate(len(playlists)-len(failed), len(failed)))
}

func (o *Organizer) begin(flag *bool) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if *flag {
		return false
	}
	*flag = true
	return true
}

func (o *Organizer) end(flag *bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	*flag = false
}

func (o *Organizer) beginVideos(id string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.loadingVideos[id] {
		return false
	}
	o.loadingVideos[id] = true
	return true
}

func (o *Organizer) endVideos(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.loadingVideos, id)
}

func (o *Organizer) pageToken() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.nextPageToken
}

// setPageToken records the continuation token in memory and in the KV store,
// clearing the persisted key when pagination is exhausted.
func (o *Organizer) setPageToken(token string) {
	o.mu.Lock()
	o.nextPageToken = token
	o.mu.Unlock()

	if o.kv == nil {
		return
	}
	if token == "" {
		o.kv.Remove(storage.KeyPageToken)
		return
	}
	o.kv.Set(storage.KeyPageToken, token)
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
