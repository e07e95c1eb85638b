package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "studyhall",
	Short: "Study from your notes in the terminal",
	Long: "studyhall is a terminal client for an AI study backend: review flashcards, " +
		"take quizzes and answer arena challenges generated from your own notes.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file (default $XDG_CONFIG_HOME/studyhall/config.yaml)")
	pf.String("api-url", "", "Study backend base URL (overrides api.base_url)")
	pf.Duration("timeout", 0, "Per-request timeout, 0 for none (overrides api.timeout)")
	pf.String("db", "", "Path to the local history database (overrides store.db)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-file", "", "Log file path")

	rootCmd.Flags().Bool("no-splash", false, "Skip the welcome animation")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(setsCmd)
	rootCmd.AddCommand(studyCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(arenaCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mockCmd)
	rootCmd.AddCommand(versionCmd)
}

// requestTimeout bounds one-shot CLI calls that have no timeout configured.
const requestTimeout = 2 * time.Minute
