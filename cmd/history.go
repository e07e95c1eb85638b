package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/screens/history"
	"github.com/abhisek/studyhall/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the local session journal",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, true)
		if err != nil {
			return err
		}
		defer e.close()

		limit, _ := cmd.Flags().GetInt("limit")
		kind, _ := cmd.Flags().GetString("kind")
		setID, _ := cmd.Flags().GetString("set")
		since, _ := cmd.Flags().GetDuration("since")

		opts := store.QueryOpts{Limit: limit, Kind: kind, SetID: setID}
		if since > 0 {
			opts.From = time.Now().Add(-since)
		}
		events, err := e.store.EventRepo().QueryEvents(cmd.Context(), opts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		sessions := history.GroupSessions(events)
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions recorded yet.")
			return nil
		}
		fmt.Fprintf(out, "%-16s  %-5s  %-8s  %6s  %6s  %5s\n", "Started", "Kind", "Set", "Time", "Events", "Score")
		fmt.Fprintln(out, strings.Repeat("─", 58))
		for _, s := range sessions {
			score := "-"
			if s.Score != nil {
				score = fmt.Sprintf("%d", *s.Score)
			}
			fmt.Fprintf(out, "%-16s  %-5s  %-8s  %6s  %6d  %5s\n",
				s.Started.Local().Format("2006-01-02 15:04"), s.Kind, s.SetID,
				formatDuration(s.Ended.Sub(s.Started)), len(s.Events), score)
		}
		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise the journal per session kind",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, true)
		if err != nil {
			return err
		}
		defer e.close()

		stats, err := e.store.EventRepo().Stats(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(stats) == 0 {
			fmt.Fprintln(out, "No sessions recorded yet.")
			return nil
		}
		fmt.Fprintf(out, "%-6s  %8s  %6s  %9s  %s\n", "Kind", "Sessions", "Events", "Avg score", "Last")
		for _, s := range stats {
			avg := "-"
			if s.AvgScore != nil {
				avg = fmt.Sprintf("%.1f", *s.AvgScore)
			}
			fmt.Fprintf(out, "%-6s  %8d  %6d  %9s  %s\n",
				s.Kind, s.Sessions, s.Events, avg, s.Last.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete journal entries older than a cutoff",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, true)
		if err != nil {
			return err
		}
		defer e.close()

		age, _ := cmd.Flags().GetDuration("older-than")
		if age <= 0 {
			return fmt.Errorf("--older-than must be positive")
		}
		n, err := e.store.EventRepo().Prune(cmd.Context(), time.Now().Add(-age))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d events.\n", n)
		return nil
	},
}

func init() {
	historyListCmd.Flags().Int("limit", 200, "Maximum number of events to read")
	historyListCmd.Flags().String("kind", "", "Only show study, quiz or arena sessions")
	historyListCmd.Flags().String("set", "", "Only show sessions for this set id")
	historyListCmd.Flags().Duration("since", 0, "Only show sessions newer than this, e.g. 168h")
	historyPruneCmd.Flags().Duration("older-than", 90*24*time.Hour, "Age cutoff")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyPruneCmd)
}
