package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/yto/internal/models"
	"github.com/desertthunder/yto/internal/shared"
)

// schemaVersion is recorded in the meta table. Because every DDL statement is
// idempotent (IF NOT EXISTS), re-running Init across version bumps is safe.
const schemaVersion = 2

// validNamespaces whitelists the service namespaces that get their own table
// pair. Table names are derived from these, never from caller input.
var validNamespaces = map[string]bool{
	models.NamespaceDefault: true,
	models.NamespaceGoogle:  true,
	models.NamespaceSpotify: true,
}

// StructuredStore is a versioned multi-table playlist/video store over SQLite.
//
// Each service namespace owns a `<ns>_playlists` table keyed by playlist id and
// a `<ns>_videos` table keyed by video id with a non-unique index on the parent
// playlist id. All operations require Init to have completed; premature access
// fails with [shared.ErrNotInitialized].
type StructuredStore struct {
	db     *sql.DB
	logger *log.Logger

	initOnce sync.Once
	ready    bool
	initErr  error
}

// NewStructuredStore wraps an open database connection. Call Init before use.
func NewStructuredStore(db *sql.DB, logger *log.Logger) *StructuredStore {
	return &StructuredStore{db: db, logger: logger}
}

// Init creates the schema exactly once per process lifetime. Creating a table
// or index that already exists is a no-op, so repeated opens across schema
// version bumps never error.
func (s *StructuredStore) Init(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.initErr = s.createSchema(ctx)
		s.ready = s.initErr == nil
	})
	return s.initErr
}

func (s *StructuredStore) createSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create meta table: %w", err)
	}

	for ns := range validNamespaces {
		stmts := []string{
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s_playlists (
					id TEXT PRIMARY KEY,
					title TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					color TEXT NOT NULL DEFAULT '',
					next_page_token TEXT NOT NULL DEFAULT '',
					sort_id INTEGER,
					published_at INTEGER NOT NULL DEFAULT 0,
					last_updated INTEGER NOT NULL DEFAULT 0
				)
			`, ns),
			fmt.Sprintf(`
				CREATE TABLE IF NOT EXISTS %s_videos (
					id TEXT PRIMARY KEY,
					playlist_id TEXT NOT NULL,
					item_id TEXT NOT NULL DEFAULT '',
					position INTEGER NOT NULL DEFAULT 0,
					title TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					duration TEXT NOT NULL DEFAULT '',
					thumbnail TEXT NOT NULL DEFAULT '',
					tags TEXT NOT NULL DEFAULT '[]',
					channel TEXT NOT NULL DEFAULT '',
					published_at INTEGER NOT NULL DEFAULT 0,
					url TEXT NOT NULL DEFAULT '',
					resume_time REAL NOT NULL DEFAULT 0
				)
			`, ns),
			fmt.Sprintf(`
				CREATE INDEX IF NOT EXISTS idx_%s_videos_playlist
				ON %s_videos (playlist_id)
			`, ns, ns),
		}
		for _, stmt := range stmts {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to create %s schema: %w", ns, err)
			}
		}
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`,
		fmt.Sprintf("%d", schemaVersion),
	); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return nil
}

func (s *StructuredStore) ensureReady(ns string) error {
	if s == nil || !s.ready {
		return shared.ErrNotInitialized
	}
	if !validNamespaces[ns] {
		return fmt.Errorf("%w: unknown namespace %q", shared.ErrInvalidArgument, ns)
	}
	return nil
}

// GetAllPlaylists returns every playlist row in the namespace, without videos,
// ordered by sort id then recency.
func (s *StructuredStore) GetAllPlaylists(ctx context.Context, ns string) ([]models.Playlist, error) {
	if err := s.ensureReady(ns); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, title, description, color, next_page_token, sort_id, published_at, last_updated
		FROM %s_playlists
		ORDER BY sort_id IS NULL, sort_id ASC, published_at DESC
	`, ns)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists: %w", err)
	}
	defer rows.Close()

	var playlists []models.Playlist
	for rows.Next() {
		var (
			p      models.Playlist
			sortID sql.NullInt64
		)
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Color, &p.NextPageToken, &sortID, &p.PublishedAt, &p.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		if sortID.Valid {
			v := int(sortID.Int64)
			p.SortID = &v
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return playlists, nil
}

// GetVideosByPlaylist returns the videos attached to playlistID via the
// playlist-id index, in their persisted position order.
func (s *StructuredStore) GetVideosByPlaylist(ctx context.Context, ns, playlistID string) ([]models.Video, error) {
	if err := s.ensureReady(ns); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, item_id, title, description, duration, thumbnail, tags, channel, published_at, url, resume_time
		FROM %s_videos
		WHERE playlist_id = ?
		ORDER BY position ASC
	`, ns)

	rows, err := s.db.QueryContext(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		var (
			v    models.Video
			tags string
		)
		if err := rows.Scan(&v.ID, &v.ItemID, &v.Title, &v.Description, &v.Duration, &v.Thumbnail, &tags, &v.Channel, &v.PublishedAt, &v.URL, &v.ResumeTime); err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &v.Tags); err != nil {
			v.Tags = nil
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return videos, nil
}

// PutPlaylist upserts a playlist row. The video sequence is not written here;
// videos persist individually via PutVideo, each attached to its parent id.
func (s *StructuredStore) PutPlaylist(ctx context.Context, ns string, p models.Playlist) error {
	if err := s.ensureReady(ns); err != nil {
		return err
	}

	var sortID any
	if p.SortID != nil {
		sortID = *p.SortID
	}
	lastUpdated := p.LastUpdated
	if lastUpdated == 0 {
		lastUpdated = time.Now().UnixMilli()
	}

	query := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s_playlists (id, title, description, color, next_page_token, sort_id, published_at, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, ns)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query,
			p.ID, p.Title, p.Description, p.Color, p.NextPageToken, sortID, p.PublishedAt, lastUpdated,
		); err != nil {
			return fmt.Errorf("failed to upsert playlist %s: %w", p.ID, err)
		}
		return nil
	})
}

// PutVideo upserts a video row tagged with its parent playlist id and position.
// Ephemeral UI flags are not persisted; the resume offset is.
func (s *StructuredStore) PutVideo(ctx context.Context, ns, playlistID string, position int, v models.Video) error {
	if err := s.ensureReady(ns); err != nil {
		return err
	}
	if playlistID == "" {
		return fmt.Errorf("%w: video %s has no parent playlist", shared.ErrInvalidArgument, v.ID)
	}

	tags, err := json.Marshal(v.Tags)
	if err != nil {
		tags = []byte("[]")
	}

	query := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s_videos (id, playlist_id, item_id, position, title, description, duration, thumbnail, tags, channel, published_at, url, resume_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ns)

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query,
			v.ID, playlistID, v.ItemID, position, v.Title, v.Description, v.Duration,
			v.Thumbnail, string(tags), v.Channel, v.PublishedAt, v.URL, v.ResumeTime,
		); err != nil {
			return fmt.Errorf("failed to upsert video %s: %w", v.ID, err)
		}
		return nil
	})
}

// ClearPlaylists deletes every playlist row in the namespace.
func (s *StructuredStore) ClearPlaylists(ctx context.Context, ns string) error {
	return s.clearTable(ctx, ns, "playlists")
}

// ClearVideos deletes every video row in the namespace.
func (s *StructuredStore) ClearVideos(ctx context.Context, ns string) error {
	return s.clearTable(ctx, ns, "videos")
}

func (s *StructuredStore) clearTable(ctx context.Context, ns, table string) error {
	if err := s.ensureReady(ns); err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM %s_%s", ns, table)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to clear %s_%s: %w", ns, table, err)
		}
		return nil
	})
}

// withTx runs fn inside a transaction, committing on success.
func (s *StructuredStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
