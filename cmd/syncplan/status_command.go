package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"syncplan/internal/preflight"
	"syncplan/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show environment checks and queue summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			checks := preflight.RunAll(cmd.Context(), cfg)
			checkRows := make([][]string, 0, len(checks))
			for _, check := range checks {
				checkRows = append(checkRows, []string{check.Name, passFail(check.Passed), check.Detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, checkRows))

			tools := preflight.CheckSystemDeps(cmd.Context(), cfg)
			toolRows := make([][]string, 0, len(tools))
			for _, tool := range tools {
				toolRows = append(toolRows, []string{
					tool.Name, yesNo(tool.Available), yesNo(tool.Optional), tool.Detail,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Tool", "Available", "Optional", "Detail"}, toolRows))

			return ctx.withStore(func(store *queue.Store) error {
				jobs, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				counts := make(map[queue.Status]int)
				for _, job := range jobs {
					counts[job.Status]++
				}
				queueRows := make([][]string, 0, len(counts))
				for _, status := range queue.AllStatuses() {
					if counts[status] == 0 {
						continue
					}
					queueRows = append(queueRows, []string{string(status), fmt.Sprintf("%d", counts[status])})
				}
				if len(queueRows) == 0 {
					fmt.Fprintln(out, "Queue is empty")
					return nil
				}
				fmt.Fprintln(out, renderTable([]string{"Status", "Jobs"}, queueRows, 2))
				return nil
			})
		},
	}
}

func passFail(passed bool) string {
	if passed {
		return "ok"
	}
	return "FAIL"
}
