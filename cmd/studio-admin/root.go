package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xenking/studio-lights/internal/repository"
)

type globalFlags struct {
	databaseURL string
	verbose     bool
}

func newRootCommand() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "studio-admin",
		Short: "Administer the studio prompt and catalog store",
		Long: color.CyanString(`studio-admin - prompt and catalog store administration

Applies the schema, seeds prompts, lighting schemes and backgrounds, and
exports generation logs for analytics.`),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.databaseURL, "database-url", "",
		"PostgreSQL connection URL (or STUDIO_DATABASE_URL / DATABASE_URL)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(
		newMigrateCommand(&flags),
		newSeedCommand(&flags),
		newExportCommand(&flags),
		newStatsCommand(&flags),
		newRecentCommand(&flags),
	)
	return cmd
}

func (f *globalFlags) logger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if f.verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	lg, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return lg, nil
}

func (f *globalFlags) connect(ctx context.Context) (*pgxpool.Pool, error) {
	url := f.databaseURL
	for _, env := range []string{"STUDIO_DATABASE_URL", "DATABASE_URL"} {
		if url != "" {
			break
		}
		url = os.Getenv(env)
	}
	if url == "" {
		return nil, errors.New("database URL is required: set --database-url, STUDIO_DATABASE_URL or DATABASE_URL")
	}

	pool, err := repository.NewPool(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "connect")
	}
	return pool, nil
}

// parseSince accepts an RFC 3339 timestamp, a YYYY-MM-DD date or a duration
// counted back from now. An empty value means the beginning of time.
func parseSince(v string, now time.Time) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return time.Time{}, errors.Errorf("invalid --since %q: want RFC 3339 time, date or positive duration", v)
	}
	return now.Add(-d), nil
}
