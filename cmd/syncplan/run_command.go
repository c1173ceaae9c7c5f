package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"syncplan/internal/queue"
	"syncplan/internal/services"
	"syncplan/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Process every pending job in the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.ensureLogger()

			return ctx.withStore(func(store *queue.Store) error {
				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				if reset, err := store.ResetStuckProcessing(runCtx); err != nil {
					return err
				} else if reset > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Reset %d interrupted job(s) to pending\n", reset)
				}

				runner := workflow.NewRunner(cfg, store, workflow.NewPipeline(cfg, logger), logger)
				summary, err := runner.Run(runCtx)

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Completed: %d  Failed: %d\n", summary.Completed, summary.Failed)
				if services.IsCancelled(err) {
					fmt.Fprintln(out, "Interrupted; remaining jobs stay pending")
					return nil
				}
				if err != nil {
					return err
				}
				if summary.Failed > 0 {
					return fmt.Errorf("%d job(s) failed; see queue list for details", summary.Failed)
				}
				return nil
			})
		},
	}
}
