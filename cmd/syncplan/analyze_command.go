package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"syncplan/internal/queue"
	"syncplan/internal/workflow"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var mode string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "analyze <reference> <secondary> [tertiary]",
		Short: "Measure inter-source delays without writing a plan",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			job := jobFromArgs(args, mode)
			pipeline := workflow.NewPipeline(cfg, ctx.ensureLogger())
			report, err := pipeline.Discover(cmd.Context(), job)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return writeDelayReportJSON(out, job, report)
			}

			rows := make([][]string, 0, len(report.Delays))
			for _, key := range job.SourceKeys() {
				rec := report.Delays[key]
				rows = append(rows, []string{
					key,
					strconv.Itoa(rec.OffsetMs),
					strconv.Itoa(report.ResidualMs[key]),
					fmt.Sprintf("%.2f", rec.Confidence),
					rec.Engine,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Source", "Offset (ms)", "Residual (ms)", "Confidence", "Engine"},
				rows, 2, 3, 4))
			fmt.Fprintf(out, "Global shift: %d ms (mode %s)\n", report.GlobalShiftMs, report.Mode)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "", "Analysis mode (audio or videodiff); defaults to the configured mode")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit the report as JSON")
	return cmd
}

func writeDelayReportJSON(out io.Writer, job *queue.Job, report *workflow.DelayReport) error {
	type sourceReport struct {
		Source     string  `json:"source"`
		Path       string  `json:"path"`
		OffsetMs   int     `json:"offset_ms"`
		ResidualMs int     `json:"residual_ms"`
		Confidence float64 `json:"confidence"`
		Engine     string  `json:"engine"`
	}
	payload := struct {
		Mode          string         `json:"mode"`
		GlobalShiftMs int            `json:"global_shift_ms"`
		Sources       []sourceReport `json:"sources"`
	}{Mode: report.Mode, GlobalShiftMs: report.GlobalShiftMs}

	for _, key := range job.SourceKeys() {
		rec := report.Delays[key]
		payload.Sources = append(payload.Sources, sourceReport{
			Source:     key,
			Path:       job.SourcePath(key),
			OffsetMs:   rec.OffsetMs,
			ResidualMs: report.ResidualMs[key],
			Confidence: rec.Confidence,
			Engine:     rec.Engine,
		})
	}

	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	encoded = append(encoded, '\n')
	_, err = out.Write(encoded)
	return err
}

func jobFromArgs(args []string, mode string) *queue.Job {
	job := &queue.Job{RefPath: args[0], SecPath: args[1], Mode: mode}
	if len(args) > 2 {
		job.TerPath = args[2]
	}
	return job
}
