package sorting

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/desertthunder/yto/internal/models"
	"github.com/desertthunder/yto/internal/shared"
	"github.com/desertthunder/yto/internal/storage"
)

// setupTestLayer creates a Layer over a temp-file key-value store.
func setupTestLayer(t *testing.T) (*Layer, *storage.KeyValueStore) {
	t.Helper()

	logger := shared.NewLogger(io.Discard)
	kv, err := storage.NewKeyValueStore(filepath.Join(t.TempDir(), "state.db"), logger)
	if err != nil {
		t.Fatalf("failed to create key-value store: %v", err)
	}
	t.Cleanup(func() { kv.Close() })

	return NewLayer(kv, logger), kv
}

func playlistsNamed(ids ...string) []models.Playlist {
	out := make([]models.Playlist, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.Playlist{ID: id, Title: "Playlist " + id})
	}
	return out
}

func idsOf(playlists []models.Playlist) []string {
	ids := make([]string, 0, len(playlists))
	for _, p := range playlists {
		ids = append(ids, p.ID)
	}
	return ids
}

func assertOrder(t *testing.T, got []models.Playlist, want ...string) {
	t.Helper()
	gotIDs := idsOf(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("expected %v, got %v", want, gotIDs)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, gotIDs)
		}
	}
}

func TestParseMode(t *testing.T) {
	cases := map[string]Mode{
		"custom":       ModeCustom,
		"alphabetical": ModeAlphabetical,
		"recent":       ModeRecent,
		"":             ModeCustom,
		"garbage":      ModeCustom,
	}
	for input, want := range cases {
		if got := ParseMode(input); got != want {
			t.Errorf("ParseMode(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestLoadCustomOrder(t *testing.T) {
	t.Run("AbsentIsEmpty", func(t *testing.T) {
		layer, _ := setupTestLayer(t)
		if order := layer.LoadCustomOrder(); len(order) != 0 {
			t.Errorf("expected empty order, got %v", order)
		}
	})

	t.Run("PlainIDSequence", func(t *testing.T) {
		layer, kv := setupTestLayer(t)
		kv.Set(storage.KeyCustomOrder, []string{"b", "a"})

		order := layer.LoadCustomOrder()
		if len(order) != 2 || order[0] != "b" || order[1] != "a" {
			t.Errorf("expected [b a], got %v", order)
		}
	})

	t.Run("LegacyShapeMigrates", func(t *testing.T) {
		layer, kv := setupTestLayer(t)
		kv.Set(storage.KeyCustomOrder, []map[string]any{
			{"id": "a", "sortId": 1},
			{"id": "b", "sortId": 0},
		})

		// Stored relative order wins; the deprecated index is ignored.
		order := layer.LoadCustomOrder()
		if len(order) != 2 || order[0] != "a" || order[1] != "b" {
			t.Fatalf("expected [a b], got %v", order)
		}

		// The persisted blob must now be the simplified shape.
		var rewritten []string
		if !kv.Get(storage.KeyCustomOrder, &rewritten) {
			t.Fatal("rewritten order should be readable as a plain id list")
		}
		if len(rewritten) != 2 || rewritten[0] != "a" || rewritten[1] != "b" {
			t.Errorf("expected rewritten [a b], got %v", rewritten)
		}
	})

	t.Run("UnreadableShapeIsEmpty", func(t *testing.T) {
		layer, kv := setupTestLayer(t)
		kv.Set(storage.KeyCustomOrder, 42)

		if order := layer.LoadCustomOrder(); len(order) != 0 {
			t.Errorf("expected empty order, got %v", order)
		}
	})
}

func TestApplyCustomOrder(t *testing.T) {
	t.Run("StablePartition", func(t *testing.T) {
		layer, kv := setupTestLayer(t)
		kv.Set(storage.KeyCustomOrder, []string{"p3", "p1"})

		got := layer.ApplyCustomOrder(playlistsNamed("p1", "p2", "p3"))
		assertOrder(t, got, "p3", "p1", "p2")
	})

	t.Run("EmptyOrderKeepsInput", func(t *testing.T) {
		layer, _ := setupTestLayer(t)

		got := layer.ApplyCustomOrder(playlistsNamed("p2", "p1"))
		assertOrder(t, got, "p2", "p1")
	})

	t.Run("UnknownIDsSkipped", func(t *testing.T) {
		got := ApplyOrder(playlistsNamed("p1", "p2"), []string{"ghost", "p2"})
		assertOrder(t, got, "p2", "p1")
	})

	t.Run("Idempotent", func(t *testing.T) {
		order := []string{"p2", "p3"}
		once := ApplyOrder(playlistsNamed("p1", "p2", "p3", "p4"), order)
		twice := ApplyOrder(once, order)
		assertOrder(t, twice, idsOf(once)...)
	})

	t.Run("InputNotMutated", func(t *testing.T) {
		input := playlistsNamed("p1", "p2", "p3")
		ApplyOrder(input, []string{"p3"})
		assertOrder(t, input, "p1", "p2", "p3")
	})
}

func TestSort(t *testing.T) {
	t.Run("Alphabetical", func(t *testing.T) {
		layer, _ := setupTestLayer(t)

		got := layer.Sort([]models.Playlist{
			{ID: "1", Title: "zebra"},
			{ID: "2", Title: "Apple"},
			{ID: "3", Title: "mango"},
		}, ModeAlphabetical)
		assertOrder(t, got, "2", "3", "1")
	})

	t.Run("RecentMissingTimestampsLast", func(t *testing.T) {
		layer, _ := setupTestLayer(t)

		got := layer.Sort([]models.Playlist{
			{ID: "old", PublishedAt: 100},
			{ID: "unknown"},
			{ID: "new", PublishedAt: 900},
		}, ModeRecent)
		assertOrder(t, got, "new", "old", "unknown")
	})

	t.Run("CustomIsNoOp", func(t *testing.T) {
		layer, _ := setupTestLayer(t)

		got := layer.Sort(playlistsNamed("p2", "p1"), ModeCustom)
		assertOrder(t, got, "p2", "p1")
	})
}

func TestReorderAfterDrag(t *testing.T) {
	t.Run("MoveAndPersist", func(t *testing.T) {
		layer, kv := setupTestLayer(t)

		got, mode := layer.ReorderAfterDrag(playlistsNamed("p1", "p2", "p3"), 0, 2, ModeRecent)
		assertOrder(t, got, "p2", "p3", "p1")
		if mode != ModeCustom {
			t.Errorf("expected custom mode, got %v", mode)
		}

		var order []string
		if !kv.Get(storage.KeyCustomOrder, &order) {
			t.Fatal("custom order should be persisted")
		}
		if len(order) != 3 || order[0] != "p2" || order[1] != "p3" || order[2] != "p1" {
			t.Errorf("expected persisted [p2 p3 p1], got %v", order)
		}
	})

	t.Run("AnyStartingModeYieldsCustom", func(t *testing.T) {
		for _, start := range []Mode{ModeCustom, ModeAlphabetical, ModeRecent} {
			layer, _ := setupTestLayer(t)
			_, mode := layer.ReorderAfterDrag(playlistsNamed("p1", "p2"), 1, 0, start)
			if mode != ModeCustom {
				t.Errorf("starting from %v: expected custom, got %v", start, mode)
			}
			if layer.LoadMode() != ModeCustom {
				t.Errorf("starting from %v: persisted mode should be custom", start)
			}
		}
	})

	t.Run("PlaceholderIDsExcluded", func(t *testing.T) {
		layer, kv := setupTestLayer(t)

		playlists := append(playlistsNamed("p1", "p2"), models.Playlist{ID: "load-more"})
		layer.ReorderAfterDrag(playlists, 1, 0, ModeCustom)

		var order []string
		kv.Get(storage.KeyCustomOrder, &order)
		for _, id := range order {
			if id == "load-more" {
				t.Error("placeholder id must not be persisted")
			}
		}
	})

	t.Run("OutOfRangeIsNoOp", func(t *testing.T) {
		layer, _ := setupTestLayer(t)

		got, mode := layer.ReorderAfterDrag(playlistsNamed("p1", "p2"), 5, 0, ModeRecent)
		assertOrder(t, got, "p1", "p2")
		if mode != ModeRecent {
			t.Errorf("mode should be unchanged, got %v", mode)
		}
	})

	t.Run("InputNotMutated", func(t *testing.T) {
		layer, _ := setupTestLayer(t)

		input := playlistsNamed("p1", "p2", "p3")
		layer.ReorderAfterDrag(input, 2, 0, ModeCustom)
		assertOrder(t, input, "p1", "p2", "p3")
	})
}
