package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/yto/internal/models"
)

// ItemResult reports the outcome of persisting one playlist or video row.
type ItemResult struct {
	ID  string
	Err error
}

// BatchResult collects per-item outcomes of a best-effort save. A partial
// failure does not abort the batch; callers and tests can assert on the
// individual results instead of parsing logs.
type BatchResult struct {
	Items []ItemResult
}

// Ok reports whether every item persisted.
func (b *BatchResult) Ok() bool {
	for _, item := range b.Items {
		if item.Err != nil {
			return false
		}
	}
	return true
}

// Failed returns the items that did not persist.
func (b *BatchResult) Failed() []ItemResult {
	var failed []ItemResult
	for _, item := range b.Items {
		if item.Err != nil {
			failed = append(failed, item)
		}
	}
	return failed
}

func (b *BatchResult) add(id string, err error) {
	b.Items = append(b.Items, ItemResult{ID: id, Err: err})
}

// GatewayOpts configures a Gateway.
type GatewayOpts struct {
	KV         *KeyValueStore
	Structured *StructuredStore // nil disables the structured path entirely
	Namespace  string           // service namespace, defaults to models.NamespaceDefault
	// ForceFallback pins every call to the key-value store without probing.
	ForceFallback bool
	Logger        *log.Logger
}

// Gateway presents one playlist-persistence contract over the two backends.
//
// The structured store is preferred; its availability is probed once (feature
// detect plus trial read) and the result memoized for the process lifetime.
// Probe or read failures degrade silently to the key-value fallback. A Gateway
// built with neither backend short-circuits every call to a no-op, the
// headless-context analog of running outside a browser.
type Gateway struct {
	kv            *KeyValueStore
	structured    *StructuredStore
	namespace     string
	forceFallback bool
	logger        *log.Logger

	probeOnce    sync.Once
	structuredOK bool
}

// NewGateway creates a Gateway from opts.
func NewGateway(opts GatewayOpts) *Gateway {
	if opts.Namespace == "" {
		opts.Namespace = models.NamespaceDefault
	}
	return &Gateway{
		kv:            opts.KV,
		structured:    opts.Structured,
		namespace:     opts.Namespace,
		forceFallback: opts.ForceFallback,
		logger:        opts.Logger,
	}
}

// Namespace returns the service namespace this gateway persists under.
func (g *Gateway) Namespace() string { return g.namespace }

// useStructured resolves the backend for this call. The probe runs at most
// once; early concurrent callers may race into their own probe, which is
// idempotent and functionally harmless.
func (g *Gateway) useStructured(ctx context.Context) bool {
	if g.forceFallback {
		return false
	}
	g.probeOnce.Do(func() {
		if g.structured == nil {
			return
		}
		if err := g.structured.Init(ctx); err != nil {
			g.logger.Warn("structured store init failed, using fallback", "err", err)
			return
		}
		if _, err := g.structured.GetAllPlaylists(ctx, g.namespace); err != nil {
			g.logger.Warn("structured store probe read failed, using fallback", "err", err)
			return
		}
		g.structuredOK = true
	})
	return g.structuredOK
}

// GetPlaylists returns the last persisted playlist collection, or nil when
// nothing is persisted. Storage errors degrade to the fallback backend and
// finally to nil; they are never surfaced.
func (g *Gateway) GetPlaylists(ctx context.Context) []models.Playlist {
	if g.kv == nil && g.structured == nil {
		return nil
	}

	if g.useStructured(ctx) {
		playlists, err := g.getStructured(ctx)
		if err == nil {
			return playlists
		}
		g.logger.Warn("structured read failed, falling back", "err", err)
	}

	if g.kv == nil {
		return nil
	}
	var playlists []models.Playlist
	if !g.kv.Get(KeyPlaylists, &playlists) {
		return nil
	}
	return playlists
}

// getStructured assembles full playlists: one row read plus one indexed video
// lookup per playlist.
func (g *Gateway) getStructured(ctx context.Context) ([]models.Playlist, error) {
	playlists, err := g.structured.GetAllPlaylists(ctx, g.namespace)
	if err != nil {
		return nil, err
	}
	if playlists == nil {
		return nil, nil
	}

	for i := range playlists {
		videos, err := g.structured.GetVideosByPlaylist(ctx, g.namespace, playlists[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load videos for %s: %w", playlists[i].ID, err)
		}
		playlists[i].Videos = videos
	}
	return playlists, nil
}

// SavePlaylists persists the collection. On the structured path each playlist
// decomposes into one playlist row and N video rows, written independently and
// best-effort: a failed row is logged and recorded in the result without
// aborting the rest. On the fallback path the whole collection persists as one
// snapshot blob.
func (g *Gateway) SavePlaylists(ctx context.Context, playlists []models.Playlist) *BatchResult {
	result := &BatchResult{}
	if g.kv == nil && g.structured == nil {
		return result
	}

	if g.useStructured(ctx) {
		for _, p := range playlists {
			if err := g.structured.PutPlaylist(ctx, g.namespace, p); err != nil {
				g.logger.Warn("failed to persist playlist row", "id", p.ID, "err", err)
				result.add(p.ID, err)
				continue
			}
			result.add(p.ID, nil)

			for i, v := range p.Videos {
				if err := g.structured.PutVideo(ctx, g.namespace, p.ID, i, v); err != nil {
					g.logger.Warn("failed to persist video row", "playlist", p.ID, "video", v.ID, "err", err)
					result.add(v.ID, err)
					continue
				}
				result.add(v.ID, nil)
			}
		}
		return result
	}

	if g.kv == nil {
		return result
	}
	if !g.kv.Set(KeyPlaylists, playlists) {
		result.add(KeyPlaylists, fmt.Errorf("snapshot write rejected"))
	} else {
		result.add(KeyPlaylists, nil)
	}
	return result
}

// Clear removes all persisted playlist state. Key-value keys are always
// cleared; structured tables only when the backend was determined available.
// Returns true only if every step succeeded.
func (g *Gateway) Clear(ctx context.Context) bool {
	ok := true

	if g.kv != nil {
		for _, key := range []string{KeyPlaylists, KeyCustomOrder, KeySortMode, KeyPageToken} {
			if !g.kv.Remove(key) {
				ok = false
			}
		}
	}

	if g.structured != nil && g.useStructured(ctx) {
		if err := g.structured.ClearVideos(ctx, g.namespace); err != nil {
			g.logger.Warn("failed to clear videos", "err", err)
			ok = false
		}
		if err := g.structured.ClearPlaylists(ctx, g.namespace); err != nil {
			g.logger.Warn("failed to clear playlists", "err", err)
			ok = false
		}
	}

	return ok
}

// IsAvailable reports whether any backend can persist right now.
func (g *Gateway) IsAvailable() bool {
	if g.kv != nil && g.kv.IsAvailable() {
		return true
	}
	return g.useStructured(context.Background())
}
