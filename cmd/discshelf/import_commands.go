package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"discshelf/internal/config"
	"discshelf/internal/importer"
	"discshelf/internal/logging"
	"discshelf/internal/notifications"
	"discshelf/internal/pipeline"
	"discshelf/internal/services/barcode"
	"discshelf/internal/services/tmdb"
	"discshelf/internal/services/vision"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import movies from CSV files or shelf photos",
	}

	importCmd.AddCommand(newImportCSVCommand(ctx))
	importCmd.AddCommand(newImportPhotoCommand(ctx))

	return importCmd
}

func newImportCSVCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "csv <file>",
		Short: "Import movies from a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}

			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			im := importer.New(cfg, store, logging.NewNop())
			result, err := im.ImportCSV(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d movie(s) from %s\n", result.Imported, path)
			return nil
		},
	}
}

func newImportPhotoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "photo <file>",
		Short: "Identify and import movies from a shelf or barcode photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			jobs, err := pipeline.OpenJobStore(cfg)
			if err != nil {
				return err
			}
			defer jobs.Close()

			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			logger := logging.NewNop()
			visionClient := vision.NewClient(cfg)
			tmdbClient := tmdb.NewClient(cfg)
			barcodes := barcode.NewService(cfg, visionClient, tmdbClient, logger)
			im := importer.New(cfg, store, logger)
			notifier := notifications.NewService(cfg)
			pipe := pipeline.New(cfg, jobs, im, visionClient, barcodes, notifier, logger)

			outcome, err := pipe.Process(cmd.Context(), path, pipeline.TriggerManual)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			switch outcome.Job.Status {
			case pipeline.JobNoMoviesFound:
				fmt.Fprintln(stdout, "No movies found in photo")
			case pipeline.JobSuccess:
				fmt.Fprintf(stdout, "Detected %d movie(s), added %d, skipped %d\n",
					outcome.Job.Detected, outcome.Added, len(outcome.Skipped))
				for _, movie := range outcome.Detected {
					fmt.Fprintf(stdout, "  %s (%s)\n", movie.Title, movie.Format)
				}
				for _, skipped := range outcome.Skipped {
					fmt.Fprintf(stdout, "  skipped %s: %s\n", skipped.Title, skipped.Reason)
				}
			}
			return nil
		},
	}
}
