package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/studyhall/internal/api"
	"github.com/abhisek/studyhall/internal/session"
)

var studyCmd = &cobra.Command{
	Use:   "study <set-id>",
	Short: "Review a set's flashcards in the terminal",
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

		mode := api.ReviewAll
		if due, _ := cmd.Flags().GetBool("due"); due {
			mode = api.ReviewDue
		}
		setID := api.ID(args[0])
		ctx := cmd.Context()
		deps := e.deps()
		machine := session.NewStudy(e.client, setID, mode, deps.SessionOptions())
		defer machine.Close()

		if err := awaitOp(ctx, machine, machine.Load); err != nil {
			return err
		}
		if err := machine.Err(); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if machine.Phase() == session.StudyEmpty {
			fmt.Fprintln(out, "Nothing is due in this set. Come back later!")
			return nil
		}

		p := newPrompter(cmd.InOrStdin(), out)
		for machine.Phase() == session.StudyReviewing {
			card, _ := machine.Card()
			fmt.Fprintf(out, "\n[%d/%d] %s\n", machine.Index()+1, machine.Total(), card.Question)

			reply, ok := p.ask("Enter to reveal, s to skip, q to quit: ")
			if !ok || reply == "q" {
				break
			}
			if reply == "s" {
				if err := machine.Skip(); err != nil {
					return err
				}
				continue
			}
			if err := machine.Reveal(); err != nil {
				return err
			}
			fmt.Fprintf(out, "  → %s\n", card.Answer)

			grade, ok := askGrade(p)
			if !ok {
				break
			}
			failed := machine.Stats().Failed
			op, err := machine.Grade(grade)
			if err != nil {
				return err
			}
			if err := session.Await(ctx, machine, op); err != nil {
				return err
			}
			if machine.Stats().Failed > failed {
				fmt.Fprintf(out, "  grade not saved: %s\n", api.Message(machine.Err()))
			}
		}

		stats := machine.Stats()
		fmt.Fprintf(out, "\nReviewed %d cards in %s: %d again, %d good, %d easy, %d skipped.\n",
			stats.Graded(), formatDuration(machine.Elapsed()), stats.Again, stats.Good, stats.Easy, stats.Skipped)
		if stats.Failed > 0 {
			fmt.Fprintf(out, "%d grades could not be saved.\n", stats.Failed)
		}

		if err := e.client.LogStudyTime(ctx, setID, machine.Elapsed()); err != nil {
			e.log.Warn(ctx, "log study time failed", zap.String("set.id", setID.String()), zap.Error(err))
		}
		return nil
	},
}

func askGrade(p *prompter) (api.Grade, bool) {
	for {
		reply, ok := p.ask("Grade: 1 again, 2 good, 3 easy: ")
		if !ok {
			return "", false
		}
		switch reply {
		case "1":
			return api.GradeAgain, true
		case "2":
			return api.GradeGood, true
		case "3":
			return api.GradeEasy, true
		}
	}
}

// awaitOp issues an action that may be refused and runs it to completion.
func awaitOp(ctx context.Context, m interface{ Apply(session.Result) error }, issue func() (session.Op, error)) error {
	op, err := issue()
	if err != nil {
		return err
	}
	return session.Await(ctx, m, op)
}

func init() {
	studyCmd.Flags().Bool("due", false, "Only review cards that are due")
}
