package seed

import (
	"context"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/studio-lights/internal/domain/background"
	"github.com/xenking/studio-lights/internal/domain/lighting"
	"github.com/xenking/studio-lights/internal/domain/prompt"
	"github.com/xenking/studio-lights/internal/domain/store"
)

// Counts tallies the outcome for one table.
type Counts struct {
	Inserted int
	Existing int
}

// Report summarizes a seeding run.
type Report struct {
	Prompts         Counts
	LightingSchemes Counts
	Backgrounds     Counts
}

// Seeder inserts catalog rows with plain INSERTs. Rows that already exist
// fail with a constraint violation and are counted as existing, so running
// the seeder twice never duplicates a row and never overwrites one.
type Seeder struct {
	prompts     prompt.Repository
	schemes     lighting.Repository
	backgrounds background.Repository
	lg          *zap.Logger
}

// NewSeeder creates a Seeder over the given repositories.
func NewSeeder(
	prompts prompt.Repository,
	schemes lighting.Repository,
	backgrounds background.Repository,
	lg *zap.Logger,
) *Seeder {
	return &Seeder{
		prompts:     prompts,
		schemes:     schemes,
		backgrounds: backgrounds,
		lg:          lg,
	}
}

// Seed inserts every row of c. It stops at the first error that is not a
// constraint violation.
func (s *Seeder) Seed(ctx context.Context, c *Catalog) (*Report, error) {
	var r Report

	for i := range c.Prompts {
		p := c.Prompts[i]
		if err := tally(&r.Prompts, s.prompts.Create(ctx, &p)); err != nil {
			return &r, errors.Wrapf(err, "seed prompt %s", p.Name)
		}
		s.lg.Debug("Seeded prompt", zap.String("name", p.Name))
	}

	for i := range c.LightingSchemes {
		ls := c.LightingSchemes[i]
		if err := tally(&r.LightingSchemes, s.schemes.Create(ctx, &ls)); err != nil {
			return &r, errors.Wrapf(err, "seed lighting scheme %s", ls.ID)
		}
		s.lg.Debug("Seeded lighting scheme", zap.String("id", ls.ID))
	}

	for i := range c.Backgrounds {
		b := c.Backgrounds[i]
		if err := tally(&r.Backgrounds, s.backgrounds.Create(ctx, &b)); err != nil {
			return &r, errors.Wrapf(err, "seed background %s", b.ID)
		}
		s.lg.Debug("Seeded background", zap.String("id", b.ID))
	}

	s.lg.Info("Seed finished",
		zap.Int("prompts_inserted", r.Prompts.Inserted),
		zap.Int("prompts_existing", r.Prompts.Existing),
		zap.Int("lighting_inserted", r.LightingSchemes.Inserted),
		zap.Int("lighting_existing", r.LightingSchemes.Existing),
		zap.Int("backgrounds_inserted", r.Backgrounds.Inserted),
		zap.Int("backgrounds_existing", r.Backgrounds.Existing),
	)
	return &r, nil
}

func tally(c *Counts, err error) error {
	switch {
	case err == nil:
		c.Inserted++
		return nil
	case errors.Is(err, store.ErrConstraintViolation):
		c.Existing++
		return nil
	default:
		return err
	}
}
