package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/studio-lights/internal/domain/prompt"
	"github.com/xenking/studio-lights/internal/domain/store"
)

const (
	getActivePromptSQL = `SELECT id, name, content, version, is_active, created_at, updated_at
		FROM prompts WHERE name = $1 AND is_active = TRUE`

	createPromptSQL = `INSERT INTO prompts (name, content, version, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
)

var _ prompt.Repository = (*PromptRepository)(nil)

// PromptRepository implements prompt.Repository backed by PostgreSQL.
type PromptRepository struct {
	pool *pgxpool.Pool
}

// NewPromptRepository returns a PromptRepository that uses the given pool.
func NewPromptRepository(pool *pgxpool.Pool) *PromptRepository {
	return &PromptRepository{pool: pool}
}

// GetActive returns the active prompt with the given name. The content is
// returned exactly as stored.
func (r *PromptRepository) GetActive(ctx context.Context, name string) (*prompt.Prompt, error) {
	rows, err := r.pool.Query(ctx, getActivePromptSQL, name)
	if err != nil {
		return nil, classify("getting prompt "+name, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPrompt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &store.NotFoundError{Kind: "prompt", Key: name}
		}
		return nil, classify("getting prompt "+name, err)
	}
	return &p, nil
}

// Create inserts p and fills in the server-generated id and timestamps.
func (r *PromptRepository) Create(ctx context.Context, p *prompt.Prompt) error {
	if p.Name == "" {
		return store.Required("name")
	}
	if p.Content == "" {
		return store.Required("content")
	}
	if p.Version == 0 {
		p.Version = 1
	}

	err := r.pool.QueryRow(ctx, createPromptSQL, p.Name, p.Content, p.Version, p.IsActive).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return classify("creating prompt "+p.Name, err)
	}
	return nil
}

func scanPrompt(row pgx.CollectableRow) (prompt.Prompt, error) {
	var p prompt.Prompt
	err := row.Scan(&p.ID, &p.Name, &p.Content, &p.Version, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
