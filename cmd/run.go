package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/studyhall/internal/app"
)

// runApp builds dependencies and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := newEnv(cmd, true)
	if err != nil {
		return err
	}
	defer e.close()

	skip, _ := cmd.Flags().GetBool("no-splash")
	e.log.Info(cmd.Context(), "starting tui", zap.String("api", e.cfg.API.BaseURL))
	return app.Run(cmd.Context(), app.Options{Deps: e.deps(), SkipSplash: skip})
}
