package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/studio-lights/internal/domain/lighting"
	"github.com/xenking/studio-lights/internal/domain/store"
)

const (
	listActiveLightingSQL = `SELECT id, name, description, prompt_text, sort_order, is_active, created_at
		FROM lighting_schemes WHERE is_active = TRUE ORDER BY sort_order, id`

	getActiveLightingSQL = `SELECT id, name, description, prompt_text, sort_order, is_active, created_at
		FROM lighting_schemes WHERE id = $1 AND is_active = TRUE`

	createLightingSQL = `INSERT INTO lighting_schemes (id, name, description, prompt_text, sort_order, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`
)

var _ lighting.Repository = (*LightingRepository)(nil)

// LightingRepository implements lighting.Repository backed by PostgreSQL.
type LightingRepository struct {
	pool *pgxpool.Pool
}

// NewLightingRepository returns a LightingRepository that uses the given pool.
func NewLightingRepository(pool *pgxpool.Pool) *LightingRepository {
	return &LightingRepository{pool: pool}
}

// ListActive returns active lighting schemes ordered by sort order.
func (r *LightingRepository) ListActive(ctx context.Context) ([]lighting.Scheme, error) {
	rows, err := r.pool.Query(ctx, listActiveLightingSQL)
	if err != nil {
		return nil, classify("listing lighting schemes", err)
	}
	schemes, err := pgx.CollectRows(rows, scanScheme)
	if err != nil {
		return nil, classify("listing lighting schemes", err)
	}
	return schemes, nil
}

// GetActive returns the active lighting scheme with the given id.
func (r *LightingRepository) GetActive(ctx context.Context, id string) (*lighting.Scheme, error) {
	rows, err := r.pool.Query(ctx, getActiveLightingSQL, id)
	if err != nil {
		return nil, classify("getting lighting scheme "+id, err)
	}

	s, err := pgx.CollectExactlyOneRow(rows, scanScheme)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &store.NotFoundError{Kind: "lighting scheme", Key: id}
		}
		return nil, classify("getting lighting scheme "+id, err)
	}
	return &s, nil
}

// Create inserts a lighting scheme under its stable key.
func (r *LightingRepository) Create(ctx context.Context, s *lighting.Scheme) error {
	if s.ID == "" {
		return store.Required("id")
	}
	if s.PromptText == "" {
		return store.Required("prompt_text")
	}

	err := r.pool.QueryRow(ctx, createLightingSQL,
		s.ID, s.Name, s.Description, s.PromptText, s.SortOrder, s.IsActive,
	).Scan(&s.CreatedAt)
	if err != nil {
		return classify("creating lighting scheme "+s.ID, err)
	}
	return nil
}

func scanScheme(row pgx.CollectableRow) (lighting.Scheme, error) {
	var s lighting.Scheme
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.PromptText, &s.SortOrder, &s.IsActive, &s.CreatedAt)
	return s, err
}
