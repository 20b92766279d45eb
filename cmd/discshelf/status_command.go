package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"discshelf/internal/config"
	"discshelf/internal/pipeline"
	"discshelf/internal/services/vision"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and import pipeline status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			status, live, err := fetchStatus(cfg)
			if err != nil {
				return err
			}

			for _, line := range renderSectionHeader("Import Pipeline", colorize) {
				fmt.Fprintln(stdout, line)
			}
			if !live {
				fmt.Fprintln(stdout, renderDetailLine("Daemon", "not running (showing stored history)"))
			}
			fmt.Fprintln(stdout, renderDetailLine("Watcher", yesNo(status.Running)))
			fmt.Fprintln(stdout, renderDetailLine("Vision configured", yesNo(status.Configured)))
			fmt.Fprintln(stdout, renderDetailLine("Processing", yesNo(status.Processing)))
			fmt.Fprintln(stdout, renderDetailLine("Queue length", strconv.Itoa(status.QueueLength)))
			fmt.Fprintln(stdout)

			for _, line := range renderSectionHeader("Job History", colorize) {
				fmt.Fprintln(stdout, line)
			}
			counts := renderTable(
				[]string{"Total", "Succeeded", "No Movies", "Failed"},
				[][]string{{
					strconv.Itoa(status.Counts.Total),
					strconv.Itoa(status.Counts.Succeeded),
					strconv.Itoa(status.Counts.Empty),
					strconv.Itoa(status.Counts.Failed),
				}},
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight},
			)
			fmt.Fprintln(stdout, counts)

			if len(status.RecentJobs) == 0 {
				fmt.Fprintln(stdout, "No import jobs recorded")
				return nil
			}

			fmt.Fprintln(stdout)
			for _, line := range renderSectionHeader("Recent Jobs", colorize) {
				fmt.Fprintln(stdout, line)
			}
			rows := make([][]string, 0, len(status.RecentJobs))
			for _, job := range status.RecentJobs {
				detail := job.ErrorMessage
				if detail == "" {
					detail = fmt.Sprintf("%d detected / %d added / %d skipped",
						job.Detected, job.Added, job.Skipped)
				}
				rows = append(rows, []string{
					strconv.FormatInt(job.ID, 10),
					job.FileName,
					string(job.Status),
					string(job.TriggeredBy),
					detail,
					job.UpdatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			jobs := renderTable(
				[]string{"ID", "File", "Status", "Trigger", "Result", "Updated"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			)
			fmt.Fprintln(stdout, jobs)
			return nil
		},
	}
}

// fetchStatus asks the running daemon first and falls back to reading the
// job database directly when nothing is listening.
func fetchStatus(cfg *config.Config) (pipeline.Status, bool, error) {
	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get("http://" + cfg.Paths.APIBind + "/api/import/status")
	if err == nil {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			var status pipeline.Status
			if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
				return pipeline.Status{}, false, fmt.Errorf("decode status response: %w", err)
			}
			return status, true, nil
		}
	}

	return localStatus(cfg)
}

func localStatus(cfg *config.Config) (pipeline.Status, bool, error) {
	jobs, err := pipeline.OpenJobStore(cfg)
	if err != nil {
		return pipeline.Status{}, false, fmt.Errorf("open job history: %w", err)
	}
	defer jobs.Close()

	ctx := context.Background()
	counts, err := jobs.Counts(ctx)
	if err != nil {
		return pipeline.Status{}, false, err
	}
	recent, err := jobs.RecentJobs(ctx, 10)
	if err != nil {
		return pipeline.Status{}, false, err
	}

	return pipeline.Status{
		Configured: vision.NewClient(cfg).Configured(),
		Counts:     counts,
		RecentJobs: recent,
	}, false, nil
}
