// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand initializes configuration and local storage.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and local storage",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles the cached access token.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the cached access token",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Check whether a valid access token is cached",
				Action: r.AuthStatus,
			},
			{
				Name:   "login",
				Usage:  "Sign in to Spotify via the browser OAuth flow",
				Action: r.AuthLogin,
			},
			{
				Name:  "token",
				Usage: "Install an access token obtained elsewhere",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "access-token",
						Usage:    "OAuth access token",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "expires-in",
						Usage: "Token lifetime in seconds",
						Value: 3600,
					},
				},
				Action: r.AuthToken,
			},
			{
				Name:    "signout",
				Aliases: []string{"logout"},
				Usage:   "Discard the cached access token",
				Action:  r.AuthSignOut,
			},
		},
	}
}

// pullCommand fetches the library from the configured provider.
func pullCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "pull",
		Usage: "Fetch playlists, merge with local state, and persist",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Follow pagination until the library is complete",
			},
		},
		Action: r.Pull,
	}
}

// listCommand prints the persisted library.
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List persisted playlists",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "sort",
				Usage: "Sort mode: custom, alphabetical, or recent",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.List,
	}
}

// videosCommand prints the videos inside a playlist.
func videosCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "videos",
		Usage: "List the videos in a playlist, fetching them if absent",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "playlist",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
			},
		},
		Action: r.Videos,
	}
}

// reorderCommand moves a playlist within the custom order.
func reorderCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "reorder",
		Usage: "Move a playlist to a new position (switches to custom order)",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:     "from",
				Usage:    "Current position (zero-based)",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "to",
				Usage:    "Target position (zero-based)",
				Required: true,
			},
		},
		Action: r.Reorder,
	}
}

// searchCommand fuzzy-searches the persisted library.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Fuzzy search playlists and videos",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Search,
	}
}

// exportCommand writes a playlist to disk in a chosen format.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export a playlist to CSV, Markdown, JSON, or plain text",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "playlist",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: csv, markdown, json, or text",
				Value:   "csv",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path (format-dependent default)",
			},
		},
		Action: r.Export,
	}
}

// storageCommand inspects and clears persisted state.
func storageCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "storage",
		Usage: "Inspect and manage persisted state",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show persisted library statistics",
				Action: r.StorageStats,
			},
			{
				Name:   "clear",
				Usage:  "Remove all persisted playlists and state",
				Action: r.StorageClear,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist management.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for playlist organization",
		Action:  r.TUI,
	}
}
