// Package storage implements the organizer's local persistence layer.
//
// Two backends live behind one gateway:
//
//   - [KeyValueStore] : a size-limited, synchronous key-value store (bbolt)
//     holding small per-concern keys (snapshot, sort preferences, tokens) under
//     a strict byte budget with priority eviction
//   - [StructuredStore] : a versioned multi-table store (SQLite) with one
//     playlist table and one indexed video table per service namespace
//
// [Gateway] probes the structured store once per process, memoizes the result,
// and routes playlist reads/writes to whichever backend is serviceable.
// Storage-layer failures never escape this package as hard errors: callers see
// degraded-but-functional results (nil snapshot, partial batch) plus warnings
// on the package logger.
package storage
