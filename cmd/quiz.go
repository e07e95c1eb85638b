package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/studyhall/internal/api"
	"github.com/abhisek/studyhall/internal/session"
)

var quizCmd = &cobra.Command{
	Use:   "quiz <set-id>",
	Short: "Take a set's multiple-choice quiz in the terminal",
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
		machine := session.NewQuiz(e.client, api.ID(args[0]), deps.SessionOptions())
		defer machine.Close()

		if err := awaitOp(ctx, machine, machine.Load); err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		switch machine.Phase() {
		case session.QuizEmpty:
			fmt.Fprintln(out, "No quiz is available for this set.")
			return nil
		case session.QuizLoading:
			return machine.Err()
		}

		p := newPrompter(cmd.InOrStdin(), out)
		for machine.Phase() == session.QuizAnswering {
			q, _ := machine.Question()
			fmt.Fprintf(out, "\n[%d/%d] %s\n", machine.Index()+1, machine.Total(), q.Question)
			for i, opt := range q.Options {
				fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
			}

			choice, ok := askChoice(p, len(q.Options))
			if !ok {
				fmt.Fprintln(out, "Quiz abandoned; nothing was submitted.")
				return nil
			}
			if err := machine.Select(q.Options[choice]); err != nil {
				return err
			}
			if fb, ok := machine.Feedback(); ok {
				if fb.Correct {
					fmt.Fprintln(out, "  Correct!")
				} else {
					fmt.Fprintf(out, "  Not quite. The answer is %s.\n", fb.CorrectAnswer)
				}
			}
			if err := awaitOp(ctx, machine, machine.Next); err != nil {
				return err
			}
		}

		if machine.Phase() == session.QuizSubmitting {
			// One retry before giving up; the answers are still held locally.
			if err := awaitOp(ctx, machine, machine.Submit); err != nil {
				return err
			}
		}
		res, ok := machine.Result()
		if !ok {
			return fmt.Errorf("submit quiz: %w", machine.Err())
		}
		fmt.Fprintf(out, "\nScore: %d%% (%d of %d correct)\n", machine.Percent(), res.Correct, res.Answered)
		return nil
	},
}

func askChoice(p *prompter, n int) (int, bool) {
	for {
		reply, ok := p.ask(fmt.Sprintf("Answer 1-%d: ", n))
		if !ok {
			return 0, false
		}
		if i, err := strconv.Atoi(reply); err == nil && i >= 1 && i <= n {
			return i - 1, true
		}
	}
}
