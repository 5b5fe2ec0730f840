package main

import (
	"context"

	"github.com/desertthunder/yto/internal/shared"
	"github.com/urfave/cli/v3"
)

// StorageStats reports what the local stores currently hold.
func (r *Runner) StorageStats(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	count := sess.organizer.Hydrate(ctx)
	videos := 0
	for _, p := range sess.organizer.Playlists() {
		videos += len(p.Videos)
	}

	r.writePlainHeader("Storage")
	r.writePlain("Namespace:      %s\n", sess.gateway.Namespace())
	r.writePlain("Structured:     %s\n", availability(sess.gateway.IsAvailable()))
	r.writePlain("Key-value:      %s\n", availability(sess.kv.IsAvailable()))
	r.writePlain("Playlists:      %d\n", count)
	r.writePlain("Stored videos:  %d\n", videos)
	r.writePlain("Sort mode:      %s\n", sess.organizer.SortMode())
	r.writePlain("More pages:     %t\n", sess.organizer.HasMore())
	return nil
}

// StorageClear wipes the persisted library and pagination state.
func (r *Runner) StorageClear(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	if !sess.organizer.ClearStorage(ctx, nil) {
		return shared.ErrStorageUnavailable
	}
	r.writePlainln("✓ Local storage cleared")
	return nil
}

func availability(ok bool) string {
	if ok {
		return "available"
	}
	return "unavailable"
}
