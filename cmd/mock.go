package cmd

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/studyhall/internal/mockbackend"
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Serve an in-memory study backend for local development",
	Long: "Serve an in-memory study backend seeded with demo study sets. Log in as " +
		mockbackend.DemoEmail + " / " + mockbackend.DemoPassword + ".",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEnv(cmd, false)
		if err != nil {
			return err
		}
		defer e.close()

		latency, _ := cmd.Flags().GetDuration("latency")
		empty, _ := cmd.Flags().GetBool("empty")
		srv := mockbackend.New(mockbackend.Options{
			Logger:  e.log.Named("mock"),
			Latency: latency,
			Empty:   empty,
		})

		addr := e.cfg.Mock.Addr
		fmt.Fprintf(cmd.ErrOrStderr(), "Mock backend listening on http://%s (Ctrl+C to stop)\n", addr)
		e.log.Info(cmd.Context(), "mock backend starting", zap.String("addr", addr))
		if err := srv.ListenAndServe(cmd.Context(), addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	mockCmd.Flags().String("addr", "", "Listen address (overrides mock.addr)")
	mockCmd.Flags().Duration("latency", 0, "Delay every response, e.g. 500ms")
	mockCmd.Flags().Bool("empty", false, "Start with no study sets")
}
