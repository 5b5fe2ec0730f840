// Package sorting maintains the logical ordering of playlists independent of
// fetch or storage order: the persisted sort-mode preference, the
// drag-established custom order (including its legacy on-disk shape), and the
// computed alphabetical/recent sorts.
package sorting

import (
	"encoding/json"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/yto/internal/models"
	"github.com/desertthunder/yto/internal/storage"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Mode is the playlist sort mode.
type Mode string

const (
	ModeCustom       Mode = "custom"
	ModeAlphabetical Mode = "alphabetical"
	ModeRecent       Mode = "recent"
)

// ParseMode maps a persisted string to a Mode, defaulting to custom for
// absent or unrecognized values.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeAlphabetical:
		return ModeAlphabetical
	case ModeRecent:
		return ModeRecent
	default:
		return ModeCustom
	}
}

// placeholderIDs are synthetic list entries ("loading" rows, "load more"
// buttons) that must never leak into the persisted custom order.
var placeholderIDs = map[string]bool{
	"loading":   true,
	"load-more": true,
}

// KV is the slice of the key-value store the sort layer needs.
type KV interface {
	Set(key string, value any) bool
	Get(key string, dest any) bool
	Remove(key string) bool
}

// legacyOrderEntry is the deprecated custom-order shape: one object per
// playlist carrying an explicit sort index. Only the stored relative order is
// meaningful; the index is ignored on migration.
type legacyOrderEntry struct {
	ID     string `json:"id"`
	SortID int    `json:"sortId"`
}

// Layer reads and writes the persisted sort preferences and applies orderings.
// All slice-returning methods produce fresh slices; inputs are never mutated.
type Layer struct {
	kv       KV
	logger   *log.Logger
	collator *collate.Collator
}

// NewLayer creates a sort layer over the given key-value store.
func NewLayer(kv KV, logger *log.Logger) *Layer {
	return &Layer{
		kv:       kv,
		logger:   logger,
		collator: collate.New(language.Und, collate.IgnoreCase),
	}
}

// LoadMode reads the persisted sort mode, defaulting to custom.
func (l *Layer) LoadMode() Mode {
	var s string
	if !l.kv.Get(storage.KeySortMode, &s) {
		return ModeCustom
	}
	return ParseMode(s)
}

// SaveMode persists the sort mode.
func (l *Layer) SaveMode(m Mode) {
	l.kv.Set(storage.KeySortMode, string(m))
}

// LoadCustomOrder reads the persisted custom order. The legacy object shape is
// detected, rewritten to the plain id sequence, and returned migrated. Any
// parse failure yields an empty order.
func (l *Layer) LoadCustomOrder() []string {
	var raw json.RawMessage
	if !l.kv.Get(storage.KeyCustomOrder, &raw) {
		return []string{}
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err == nil {
		if ids == nil {
			return []string{}
		}
		return ids
	}

	var legacy []legacyOrderEntry
	if err := json.Unmarshal(raw, &legacy); err != nil {
		l.logger.Warn("unreadable custom order, resetting", "err", err)
		return []string{}
	}

	ids = make([]string, 0, len(legacy))
	for _, entry := range legacy {
		if entry.ID != "" {
			ids = append(ids, entry.ID)
		}
	}
	l.kv.Set(storage.KeyCustomOrder, ids)
	l.logger.Info("migrated legacy custom order", "count", len(ids))
	return ids
}

// SaveCustomOrder persists ids as the custom order, dropping placeholders.
func (l *Layer) SaveCustomOrder(ids []string) {
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if !placeholderIDs[id] {
			clean = append(clean, id)
		}
	}
	l.kv.Set(storage.KeyCustomOrder, clean)
}

// ApplyCustomOrder stable-partitions playlists by the persisted custom order:
// listed playlists first, in exactly that order; the rest follow in their
// original relative order. An empty order returns the input order unchanged.
func (l *Layer) ApplyCustomOrder(playlists []models.Playlist) []models.Playlist {
	return ApplyOrder(playlists, l.LoadCustomOrder())
}

// ApplyOrder is the pure core of ApplyCustomOrder.
func ApplyOrder(playlists []models.Playlist, order []string) []models.Playlist {
	if len(order) == 0 {
		out := make([]models.Playlist, len(playlists))
		copy(out, playlists)
		return out
	}

	byID := make(map[string]int, len(playlists))
	for i, p := range playlists {
		byID[p.ID] = i
	}

	out := make([]models.Playlist, 0, len(playlists))
	taken := make(map[string]bool, len(order))
	for _, id := range order {
		if taken[id] {
			continue
		}
		if i, ok := byID[id]; ok {
			out = append(out, playlists[i])
			taken[id] = true
		}
	}
	for _, p := range playlists {
		if !taken[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

// Sort orders playlists by mode. Alphabetical compares titles with a
// locale-aware collator ascending; recent orders by publish time descending
// with missing timestamps last. Custom is a no-op here: the custom order is
// assumed already applied via ApplyCustomOrder.
func (l *Layer) Sort(playlists []models.Playlist, mode Mode) []models.Playlist {
	out := make([]models.Playlist, len(playlists))
	copy(out, playlists)

	switch mode {
	case ModeAlphabetical:
		sort.SliceStable(out, func(i, j int) bool {
			return l.collator.CompareString(out[i].Title, out[j].Title) < 0
		})
	case ModeRecent:
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i].PublishedAt, out[j].PublishedAt
			if a == 0 {
				return false
			}
			if b == 0 {
				return true
			}
			return a > b
		})
	}
	return out
}

// ReorderAfterDrag moves the playlist at from to position to, persists the
// resulting id sequence as the new custom order, and commits the mode to
// custom regardless of the mode the drag started in. Out-of-range indices
// leave the order untouched.
func (l *Layer) ReorderAfterDrag(playlists []models.Playlist, from, to int, mode Mode) ([]models.Playlist, Mode) {
	if from < 0 || from >= len(playlists) || to < 0 || to >= len(playlists) {
		out := make([]models.Playlist, len(playlists))
		copy(out, playlists)
		return out, mode
	}

	out := make([]models.Playlist, 0, len(playlists))
	out = append(out, playlists[:from]...)
	out = append(out, playlists[from+1:]...)
	out = append(out[:to], append([]models.Playlist{playlists[from]}, out[to:]...)...)

	ids := make([]string, 0, len(out))
	for _, p := range out {
		ids = append(ids, p.ID)
	}
	l.SaveCustomOrder(ids)
	l.SaveMode(ModeCustom)

	return out, ModeCustom
}
