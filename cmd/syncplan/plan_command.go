package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"syncplan/internal/queue"
	"syncplan/internal/workflow"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "plan <reference> <secondary> [tertiary]",
		Short: "Run the full pipeline for one source set and write the merge plan",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			job := jobFromArgs(args, mode)
			pipeline := workflow.NewPipeline(cfg, ctx.ensureLogger())
			result, err := pipeline.Execute(cmd.Context(), job, func(queue.Status) {})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rows := [][]string{
				{"Global shift", fmt.Sprintf("%d ms", result.GlobalShiftMs)},
				{"Options", result.OptionsPath},
			}
			if result.ChaptersPath != "" {
				rows = append(rows, []string{"Chapters", result.ChaptersPath})
			}
			fmt.Fprintln(out, renderTable([]string{"Output", "Value"}, rows))
			fmt.Fprintf(out, "Replay with: mkvmerge @%s\n", result.OptionsPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Analysis mode (audio or videodiff); defaults to the configured mode")
	return cmd
}
