package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/yto/internal/models"
	"github.com/desertthunder/yto/internal/shared"
	"github.com/desertthunder/yto/internal/sorting"
	"github.com/desertthunder/yto/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Pull fetches the provider library, merges it with persisted state, and
// persists the result. With --all it follows pagination to the end.
func (r *Runner) Pull(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan error, 1)
	go func() {
		err := sess.organizer.Preload(ctx, progress)
		if err == nil && cmd.Bool("all") {
			for sess.organizer.HasMore() {
				if err = sess.organizer.LoadMore(ctx, progress); err != nil {
					break
				}
			}
		}
		done <- err
		close(progress)
	}()

	for update := range progress {
		r.logger.Info(update.Message, "phase", update.Phase.String())
	}
	if err := <-done; err != nil {
		return err
	}

	playlists := sess.organizer.Playlists()
	r.writePlainln("✓ Library synced: %d playlists", len(playlists))
	if sess.organizer.HasMore() {
		r.writePlainln("More pages remain; run 'yto pull --all' to fetch everything.")
	}
	return nil
}

// List prints the persisted library, optionally under a different sort mode.
func (r *Runner) List(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	count := sess.organizer.Hydrate(ctx)
	if count == 0 {
		r.writePlainln("No playlists persisted. Run 'yto pull' first.")
		return nil
	}

	playlists := sess.organizer.Playlists()
	if raw := cmd.String("sort"); raw != "" {
		mode := sorting.ParseMode(raw)
		playlists = sess.sorter.Sort(playlists, mode)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Playlists (%d)", len(playlists)))
	for i, p := range playlists {
		r.writePlain("%3d. %s (%d videos)\n", i+1, p.Title, len(p.Videos))
	}
	return nil
}

// Videos prints a playlist's videos, fetching them from the provider when the
// stored playlist does not carry any.
func (r *Runner) Videos(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.StringArg("playlist")
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}

	sess, err := r.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.organizer.Hydrate(ctx)
	videos, err := sess.organizer.LoadVideos(ctx, playlistID, nil)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(videos, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Videos (%d)", len(videos)))
	for i, v := range videos {
		if v.Duration != "" {
			r.writePlain("%3d. %s — %s [%s]\n", i+1, v.Channel, v.Title, v.Duration)
		} else {
			r.writePlain("%3d. %s — %s\n", i+1, v.Channel, v.Title)
		}
	}
	return nil
}

// Reorder moves a playlist to a new position and persists the custom order.
func (r *Runner) Reorder(ctx context.Context, cmd *cli.Command) error {
	from := int(cmd.Int("from"))
	to := int(cmd.Int("to"))

	sess, err := r.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	count := sess.organizer.Hydrate(ctx)
	if from < 0 || from >= count || to < 0 || to >= count {
		return fmt.Errorf("%w: positions must be within 0..%d", shared.ErrInvalidArgument, count-1)
	}

	mode := sess.organizer.Reorder(ctx, from, to)
	r.logger.Info("playlist moved", "from", from, "to", to, "mode", mode)

	r.writePlainln("✓ Moved playlist %d → %d (sort mode: %s)", from, to, mode)
	return nil
}

// Search fuzzy-matches the persisted library against the query.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	sess, err := r.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.organizer.Hydrate(ctx)
	results := sess.organizer.Search(query)

	if cmd.Bool("json") {
		return r.writeJSON(results, true)
	}

	if len(results) == 0 {
		r.writePlainln("No matches for %q", query)
		return nil
	}

	r.writePlainHeader(fmt.Sprintf("Matches for %q (%d)", query, len(results)))
	for _, result := range results {
		r.writePlain("• %s\n", result.Playlist.Title)
		for _, v := range result.Videos {
			r.writePlain("    %s — %s\n", v.Channel, v.Title)
		}
	}
	return nil
}

// playlistByID resolves a playlist from the organizer's hydrated collection.
func playlistByID(organizer *tasks.Organizer, id string) (models.Playlist, error) {
	p, ok := organizer.Collection().Find(id)
	if !ok {
		return models.Playlist{}, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}
	return p, nil
}
