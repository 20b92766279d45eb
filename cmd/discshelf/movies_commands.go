package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"discshelf/internal/collection"
	"discshelf/internal/logging"
)

func newMoviesCommand(ctx *commandContext) *cobra.Command {
	moviesCmd := &cobra.Command{
		Use:   "movies",
		Short: "Inspect and export the collection",
	}

	moviesCmd.AddCommand(newMoviesListCommand(ctx))
	moviesCmd.AddCommand(newMoviesStatsCommand(ctx))
	moviesCmd.AddCommand(newMoviesExportCommand(ctx))

	return moviesCmd
}

func (c *commandContext) openStore() (*collection.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return collection.Open(cfg, logging.NewNop())
}

func newMoviesListCommand(ctx *commandContext) *cobra.Command {
	var search string
	var formats []string
	var upgrade bool
	var sortBy string
	var sortOrder string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List movies in the collection",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}

			filters := collection.Filters{
				Search:    search,
				Formats:   formats,
				SortBy:    sortBy,
				SortOrder: sortOrder,
			}
			if upgrade {
				want := true
				filters.WantToUpgrade = &want
			}

			movies, err := store.GetAll(filters)
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			if len(movies) == 0 {
				fmt.Fprintln(stdout, "No movies found")
				return nil
			}

			rows := make([][]string, 0, len(movies))
			for _, movie := range movies {
				rows = append(rows, []string{
					movie.Title,
					string(movie.Format),
					movie.ReleaseDate,
					movie.Genre,
					yesNo(movie.WantToUpgrade),
					string(movie.Source),
				})
			}
			table := renderTable(
				[]string{"Title", "Format", "Year", "Genre", "Upgrade", "Source"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
			)
			fmt.Fprintln(stdout, table)
			fmt.Fprintf(stdout, "%d movie(s)\n", len(movies))
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Case-insensitive substring match on title")
	cmd.Flags().StringSliceVar(&formats, "format", nil, "Filter by format (dvd, bluray, 4k, mixed, bluray_4k)")
	cmd.Flags().BoolVar(&upgrade, "upgrade", false, "Only movies flagged for upgrade")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort field (title, dateAdded, releaseDate, format)")
	cmd.Flags().StringVar(&sortOrder, "order", "", "Sort order (asc, desc)")
	return cmd
}

func newMoviesStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show collection statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}
			stats, err := store.Stats()
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)
			for _, line := range renderSectionHeader("Collection", colorize) {
				fmt.Fprintln(stdout, line)
			}
			fmt.Fprintln(stdout, renderDetailLine("Total", strconv.Itoa(stats.Total)))
			fmt.Fprintln(stdout, renderDetailLine("DVD", strconv.Itoa(stats.ByFormat.DVD)))
			fmt.Fprintln(stdout, renderDetailLine("Blu-ray", strconv.Itoa(stats.ByFormat.Bluray)))
			fmt.Fprintln(stdout, renderDetailLine("4K", strconv.Itoa(stats.ByFormat.FourK)))
			fmt.Fprintln(stdout, renderDetailLine("Mixed", strconv.Itoa(stats.ByFormat.Mixed)))
			fmt.Fprintln(stdout, renderDetailLine("Upgrade wanted", strconv.Itoa(stats.WantToUpgrade)))
			return nil
		},
	}
}

func newMoviesExportCommand(ctx *commandContext) *cobra.Command {
	var format string
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the collection as JSON or CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outPath != "" {
				file, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer file.Close()
				out = file
			}

			switch strings.ToLower(format) {
			case "json":
				return store.WriteJSON(out)
			case "csv":
				return store.WriteCSV(out)
			default:
				return fmt.Errorf("export format must be json or csv, got %q", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Export format (json or csv)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to a file instead of stdout")
	return cmd
}
