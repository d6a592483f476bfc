package main

import (
	"fmt"
	"io"
	"os"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xenking/studio-lights/internal/domain/generation"
	"github.com/xenking/studio-lights/internal/export"
	"github.com/xenking/studio-lights/internal/repository"
	"github.com/xenking/studio-lights/internal/seed"
)

func newMigrateCommand(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema, indexes and row-level security policies",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := flags.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := repository.RunMigrations(cmd.Context(), pool); err != nil {
				return err
			}
			color.Green("Schema is up to date")
			return nil
		},
	}
}

func newSeedCommand(flags *globalFlags) *cobra.Command {
	var (
		catalogFile string
		migrate     bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the default prompts, lighting schemes and backgrounds",
		Long: `Insert the catalog rows. Rows that already exist are reported as existing
and left untouched, so running seed twice is safe.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			lg, err := flags.logger()
			if err != nil {
				return err
			}
			defer func() { _ = lg.Sync() }()

			catalog, err := loadCatalog(catalogFile)
			if err != nil {
				return err
			}

			pool, err := flags.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			if migrate {
				if err := repository.RunMigrations(ctx, pool); err != nil {
					return err
				}
			}

			seeder := seed.NewSeeder(
				repository.NewPromptRepository(pool),
				repository.NewLightingRepository(pool),
				repository.NewBackgroundRepository(pool),
				lg.Named("seed"),
			)
			report, err := seeder.Seed(ctx, catalog)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printCounts(out, "prompts", report.Prompts)
			printCounts(out, "lighting schemes", report.LightingSchemes)
			printCounts(out, "backgrounds", report.Backgrounds)
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogFile, "catalog", "", "Catalog JSON file (defaults to the embedded catalog)")
	cmd.Flags().BoolVar(&migrate, "migrate", true, "Apply the schema before seeding")
	return cmd
}

func loadCatalog(path string) (*seed.Catalog, error) {
	if path == "" {
		return seed.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog")
	}
	return seed.Decode(data)
}

func printCounts(w io.Writer, table string, c seed.Counts) {
	fmt.Fprintf(w, "%-18s %s inserted, %s existing\n", table,
		color.GreenString("%d", c.Inserted),
		color.YellowString("%d", c.Existing),
	)
}

func newExportCommand(flags *globalFlags) *cobra.Command {
	var (
		since   string
		outFile string
		gzip    bool
	)

	cmd := &cobra.Command{
		Use:   "export-logs",
		Short: "Write generation logs as newline-delimited JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			lg, err := flags.logger()
			if err != nil {
				return err
			}
			defer func() { _ = lg.Sync() }()

			from, err := parseSince(since, time.Now())
			if err != nil {
				return err
			}

			pool, err := flags.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			var n int
			err = withOutput(cmd.OutOrStdout(), outFile, func(w io.Writer) error {
				var err error
				n, err = export.Logs(ctx, w, repository.NewGenerationRepository(pool), export.Options{
					Since: from,
					Gzip:  gzip,
				})
				return err
			})
			if err != nil {
				return err
			}
			lg.Info("Exported generation logs",
				zap.Int("count", n),
				zap.Time("since", from),
				zap.String("out", outFile),
				zap.Bool("gzip", gzip),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only logs created at or after this time (RFC 3339, date or duration such as 24h)")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Output file (default stdout)")
	cmd.Flags().BoolVar(&gzip, "gzip", false, "Compress the output with gzip")
	return cmd
}

// withOutput calls fn with stdout when path is empty or "-", otherwise with
// a newly created file whose close error is returned.
func withOutput(stdout io.Writer, path string, fn func(io.Writer) error) (err error) {
	if path == "" || path == "-" {
		return fn(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "close output")
		}
	}()
	return fn(f)
}

func newStatsCommand(flags *globalFlags) *cobra.Command {
	var since string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize generation logs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			from, err := parseSince(since, time.Now())
			if err != nil {
				return err
			}

			pool, err := flags.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			stats, err := repository.NewGenerationRepository(pool).Stats(ctx, from)
			if err != nil {
				return err
			}
			printStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "24h", "Window start (RFC 3339, date or duration)")
	return cmd
}

func printStats(out io.Writer, s *generation.Stats) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	fmt.Fprintf(w, "since\t%s\n", s.Since.Format(time.RFC3339))
	fmt.Fprintf(w, "generations\t%d\n", s.Total)
	fmt.Fprintf(w, "verified\t%d\n", s.Verified)
	if s.PassRate.Valid {
		fmt.Fprintf(w, "pass rate\t%s%%\n", s.PassRate.Decimal.Shift(2).StringFixed(1))
	} else {
		fmt.Fprintf(w, "pass rate\t%s\n", color.HiBlackString("n/a"))
	}
	if s.AvgGenerationMS.Valid {
		fmt.Fprintf(w, "avg generation\t%s ms\n", s.AvgGenerationMS.Decimal.StringFixed(0))
	} else {
		fmt.Fprintf(w, "avg generation\t%s\n", color.HiBlackString("n/a"))
	}

	schemes := make([]string, 0, len(s.ByLightingScheme))
	for id := range s.ByLightingScheme {
		schemes = append(schemes, id)
	}
	slices.Sort(schemes)
	for _, id := range schemes {
		fmt.Fprintf(w, "  %s\t%d\n", id, s.ByLightingScheme[id])
	}
}

func newRecentCommand(flags *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Print the most recent generation logs, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pool, err := flags.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			logs, err := repository.NewGenerationRepository(pool).ListRecent(ctx, limit)
			if err != nil {
				return err
			}
			printRecent(cmd.OutOrStdout(), logs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", repository.DefaultRecentLimit, "Maximum number of logs")
	return cmd
}

func printRecent(out io.Writer, logs []generation.Log) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	fmt.Fprintln(w, "CREATED\tORIENTATION\tLIGHTING\tBACKGROUND\tQUALITY\tVERIFIED")
	for _, l := range logs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			l.CreatedAt.UTC().Format(time.RFC3339),
			l.Orientation, l.LightingScheme, l.BackgroundType, l.Quality,
			verified(l.VerificationPassed),
		)
	}
}

func verified(v *bool) string {
	switch {
	case v == nil:
		return color.HiBlackString("-")
	case *v:
		return color.GreenString("yes")
	default:
		return color.RedString("no")
	}
}
