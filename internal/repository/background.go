package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/studio-lights/internal/domain/background"
	"github.com/xenking/studio-lights/internal/domain/store"
)

const (
	listActiveBackgroundsSQL = `SELECT id, name, description, prompt_text, sort_order, is_default, is_active, created_at
		FROM backgrounds WHERE is_active = TRUE ORDER BY sort_order, id`

	getActiveBackgroundSQL = `SELECT id, name, description, prompt_text, sort_order, is_default, is_active, created_at
		FROM backgrounds WHERE id = $1 AND is_active = TRUE`

	createBackgroundSQL = `INSERT INTO backgrounds (id, name, description, prompt_text, sort_order, is_default, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`
)

var _ background.Repository = (*BackgroundRepository)(nil)

// BackgroundRepository implements background.Repository backed by PostgreSQL.
type BackgroundRepository struct {
	pool *pgxpool.Pool
}

// NewBackgroundRepository returns a BackgroundRepository that uses the given pool.
func NewBackgroundRepository(pool *pgxpool.Pool) *BackgroundRepository {
	return &BackgroundRepository{pool: pool}
}

// ListActive returns active backgrounds ordered by sort order.
func (r *BackgroundRepository) ListActive(ctx context.Context) ([]background.Background, error) {
	rows, err := r.pool.Query(ctx, listActiveBackgroundsSQL)
	if err != nil {
		return nil, classify("listing backgrounds", err)
	}
	bgs, err := pgx.CollectRows(rows, scanBackground)
	if err != nil {
		return nil, classify("listing backgrounds", err)
	}
	return bgs, nil
}

// GetActive returns the active background with the given id.
func (r *BackgroundRepository) GetActive(ctx context.Context, id string) (*background.Background, error) {
	rows, err := r.pool.Query(ctx, getActiveBackgroundSQL, id)
	if err != nil {
		return nil, classify("getting background "+id, err)
	}

	b, err := pgx.CollectExactlyOneRow(rows, scanBackground)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &store.NotFoundError{Kind: "background", Key: id}
		}
		return nil, classify("getting background "+id, err)
	}
	return &b, nil
}

// Create inserts a background preset under its stable key.
func (r *BackgroundRepository) Create(ctx context.Context, b *background.Background) error {
	if b.ID == "" {
		return store.Required("id")
	}

	err := r.pool.QueryRow(ctx, createBackgroundSQL,
		b.ID, b.Name, b.Description, b.PromptText, b.SortOrder, b.IsDefault, b.IsActive,
	).Scan(&b.CreatedAt)
	if err != nil {
		return classify("creating background "+b.ID, err)
	}
	return nil
}

func scanBackground(row pgx.CollectableRow) (background.Background, error) {
	var b background.Background
	err := row.Scan(&b.ID, &b.Name, &b.Description, &b.PromptText, &b.SortOrder, &b.IsDefault, &b.IsActive, &b.CreatedAt)
	return b, err
}
