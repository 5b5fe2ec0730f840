// Package tasks orchestrates playlist loading, merging, and persistence with real-time progress reporting.
//
// # Core Operations
//
// The [Organizer] drives the library lifecycle:
//
//  1. [Organizer.Preload] : Hydrate from storage, fetch the first remote page,
//     merge fetched metadata into the stored library, and persist the result.
//  2. [Organizer.LoadMore] : Fetch a continuation page and append it as-is.
//  3. [Organizer.LoadVideos] : Fill in a playlist's videos on demand, skipping
//     playlists that already carry them.
//  4. [Organizer.Reorder] : Move a playlist and persist the resulting custom order.
//  5. [Organizer.Search] : Fuzzy-rank playlists and videos against a query.
//
// # Progress Reporting
//
// All long-running operations accept an optional progress channel.
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Collection
//
// The [Collection] holds the in-memory library. It is replaced wholesale on
// every change, never patched in place, and notifies subscribers with a fresh
// copy so callers can never observe a half-applied update.
package tasks
