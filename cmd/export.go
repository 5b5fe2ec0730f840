package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/yto/internal/formatter"
	"github.com/desertthunder/yto/internal/shared"
	"github.com/urfave/cli/v3"
)

// Export writes a persisted playlist to disk in the requested format.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.StringArg("playlist")
	if playlistID == "" {
		return fmt.Errorf("%w: playlist ID", shared.ErrMissingArgument)
	}

	sess, err := r.openSession(ctx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	sess.organizer.Hydrate(ctx)
	playlist, err := playlistByID(sess.organizer, playlistID)
	if err != nil {
		return err
	}
	if len(playlist.Videos) == 0 {
		r.logger.Warn("playlist has no stored videos; export will be metadata only", "playlist", playlistID)
	}

	format := cmd.String("format")
	output := cmd.String("output")

	switch format {
	case "csv":
		result, err := formatter.WriteCSVExport(playlist, output)
		if err != nil {
			return err
		}
		r.writePlainln("✓ Exported %s", result.VideosFile)
		r.writePlainln("✓ Exported %s", result.MetadataFile)
	case "markdown", "md":
		imageURL := ""
		if len(playlist.Videos) > 0 {
			imageURL = playlist.Videos[0].Thumbnail
		}
		result, err := formatter.WriteMarkdownExport(playlist, output, imageURL)
		if err != nil {
			return err
		}
		for _, f := range result.Files {
			r.writePlainln("✓ Exported %s", f)
		}
	case "json":
		written, err := formatter.WriteJSONExport(playlist, output)
		if err != nil {
			return err
		}
		r.writePlainln("✓ Exported %s", written)
	case "text", "txt":
		written, err := formatter.WriteTextExport(playlist, output)
		if err != nil {
			return err
		}
		r.writePlainln("✓ Exported %s", written)
	default:
		return fmt.Errorf("%w: unknown format %q (want csv, markdown, json, or text)", shared.ErrInvalidArgument, format)
	}
	return nil
}
