package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/api"
	"github.com/abhisek/studyhall/internal/session"
)

var arenaCmd = &cobra.Command{
	Use:   "arena <set-id>",
	Short: "Answer a set's scenario challenge and get it graded",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, true)
		if err != nil {
			return err
		}
		defer e.close()
		if err := e.requireLogin(); err != nil {
			return err
		}

		ctx := cmd.Context()
		deps := e.deps()
		machine := session.NewArena(e.client, api.ID(args[0]), deps.SessionOptions())
		defer machine.Close()

		if err := awaitOp(ctx, machine, machine.Load); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch machine.Phase() {
		case session.ArenaEmpty:
			fmt.Fprintln(out, "No challenge is available for this set.")
			return nil
		case session.ArenaLoading:
			return machine.Err()
		}

		ch, _ := machine.Challenge()
		fmt.Fprintf(out, "\nScenario:\n%s\n\n", ch.Scenario)
		p := newPrompter(cmd.InOrStdin(), out)
		draft := p.paragraph("Your response (finish with an empty line):")
		if draft == "" {
			fmt.Fprintln(out, "No response given; nothing was submitted.")
			return nil
		}
		if err := machine.SetDraft(draft); err != nil {
			return err
		}

		fmt.Fprintln(cmd.ErrOrStderr(), "Grading...")
		if err := awaitOp(ctx, machine, func() (session.Op, error) { return machine.Submit(ch.ID) }); err != nil {
			return err
		}
		g, ok := machine.Grade()
		if !ok {
			return fmt.Errorf("grade response: %w", machine.Err())
		}
		fmt.Fprintf(out, "\nScore: %d/100\n%s\n\nIdeal response:\n%s\n", g.AIScore, g.AIFeedback, ch.IdealResponse)
		return nil
	},
}
