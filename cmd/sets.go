package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/studyhall/internal/api"
)

var setsCmd = &cobra.Command{
	Use:   "sets",
	Short: "Manage study sets",
}

var setsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List study sets with mastery and due cards",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.close()
		if err := e.requireLogin(); err != nil {
			return err
		}

		ctx, cancel := e.callCtx(cmd.Context())
		defer cancel()

		var (
			sets []api.StudySet
			due  []api.DueReview
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			sets, err = e.client.StudySets(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			due, err = e.client.TodaysReview(gctx)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		dueBySet := make(map[api.ID]int, len(due))
		for _, d := range due {
			dueBySet[d.SetID] = d.DueCardCount
		}

		out := cmd.OutOrStdout()
		if len(sets) == 0 {
			fmt.Fprintln(out, "No study sets yet. Upload notes with `studyhall sets generate <file.pdf>`.")
			return nil
		}
		fmt.Fprintf(out, "%-8s  %-40s  %5s  %7s  %3s\n", "ID", "Title", "Cards", "Mastery", "Due")
		fmt.Fprintln(out, strings.Repeat("─", 71))
		for _, s := range sets {
			mastery := "-"
			if s.MasteryScore != nil {
				mastery = fmt.Sprintf("%.0f%%", *s.MasteryScore)
			}
			fmt.Fprintf(out, "%-8s  %-40s  %5d  %7s  %3d\n",
				s.ID, truncate(s.Title, 40), s.CardCount, mastery, dueBySet[s.ID])
		}
		fmt.Fprintf(out, "\n%d sets\n", len(sets))
		return nil
	},
}

var setsDueCmd = &cobra.Command{
	Use:   "due",
	Short: "Show today's review list",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.close()
		if err := e.requireLogin(); err != nil {
			return err
		}

		ctx, cancel := e.callCtx(cmd.Context())
		defer cancel()
		due, err := e.client.TodaysReview(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(due) == 0 {
			fmt.Fprintln(out, "Nothing is due today.")
			return nil
		}
		total := 0
		for _, d := range due {
			fmt.Fprintf(out, "%-8s  %-40s  %d due\n", d.SetID, truncate(d.Title, 40), d.DueCardCount)
			total += d.DueCardCount
		}
		fmt.Fprintf(out, "\n%d cards due across %d sets\n", total, len(due))
		return nil
	},
}

var setsDeleteCmd = &cobra.Command{
	Use:   "delete <set-id>",
	Short: "Delete a study set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.close()
		if err := e.requireLogin(); err != nil {
			return err
		}

		ctx, cancel := e.callCtx(cmd.Context())
		defer cancel()
		if err := e.client.DeleteStudySet(ctx, api.ID(args[0])); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted set %s.\n", args[0])
		return nil
	},
}

var setsGenerateCmd = &cobra.Command{
	Use:   "generate <file.pdf>",
	Short: "Upload notes and generate a new study set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.close()
		if err := e.requireLogin(); err != nil {
			return err
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		fmt.Fprintln(cmd.ErrOrStderr(), "Generating study material. This can take a minute...")
		ctx, cancel := e.callCtx(cmd.Context())
		defer cancel()
		set, err := e.client.Generate(ctx, filepath.Base(args[0]), f)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %q (id %s) with %d cards.\n", set.Title, set.ID, set.CardCount)
		return nil
	},
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func init() {
	setsCmd.AddCommand(setsListCmd)
	setsCmd.AddCommand(setsDueCmd)
	setsCmd.AddCommand(setsDeleteCmd)
	setsCmd.AddCommand(setsGenerateCmd)
}
