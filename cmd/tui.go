package main

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/yto/internal/shared"
	"github.com/desertthunder/yto/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive playlist browser. Logs are redirected to a
// file so they don't corrupt the terminal screen.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	logger, err := shared.NewFileLogger("./tmp/yto-tui.log")
	if err == nil {
		r.SetLogger(logger)
	} else {
		r.logger.Warn("file logger unavailable, keeping stderr", "error", err)
	}

	sess, err := r.openSession(ctx, true)
	if err != nil {
		return err
	}
	defer sess.Close()

	model := ui.NewModel(ctx, sess.organizer)
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
