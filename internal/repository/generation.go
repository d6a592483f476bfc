package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/studio-lights/internal/domain/generation"
)

const (
	generationLogColumns = `id, user_id, orientation, lighting_scheme, background_type, quality,
		has_master, has_cached_bg, verification_passed, verification_attempts, generation_time_ms, created_at`

	appendGenerationLogSQL = `INSERT INTO generation_logs (user_id, orientation, lighting_scheme, background_type, quality,
		has_master, has_cached_bg, verification_passed, verification_attempts, generation_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	listRecentGenerationLogsSQL = `SELECT ` + generationLogColumns + `
		FROM generation_logs ORDER BY created_at DESC, id DESC LIMIT $1`

	streamGenerationLogsSQL = `SELECT ` + generationLogColumns + `
		FROM generation_logs WHERE created_at >= $1 ORDER BY created_at, id`

	generationTotalsSQL = `SELECT COUNT(*),
		COUNT(verification_passed),
		AVG(CASE WHEN verification_passed THEN 1 ELSE 0 END) FILTER (WHERE verification_passed IS NOT NULL),
		AVG(generation_time_ms)
		FROM generation_logs WHERE created_at >= $1`

	generationBySchemeSQL = `SELECT lighting_scheme, COUNT(*)
		FROM generation_logs WHERE created_at >= $1 GROUP BY lighting_scheme`

	// DefaultRecentLimit bounds ListRecent when the caller passes a
	// non-positive limit.
	DefaultRecentLimit = 50
)

var _ generation.Repository = (*GenerationRepository)(nil)

// GenerationRepository implements generation.Repository backed by PostgreSQL.
type GenerationRepository struct {
	pool *pgxpool.Pool
}

// NewGenerationRepository returns a GenerationRepository that uses the given pool.
func NewGenerationRepository(pool *pgxpool.Pool) *GenerationRepository {
	return &GenerationRepository{pool: pool}
}

// Append inserts a generation log. The id and created_at are assigned by the
// database and written back into l.
func (r *GenerationRepository) Append(ctx context.Context, l *generation.Log) (uuid.UUID, error) {
	var userID *string
	if l.UserID != "" {
		userID = &l.UserID
	}

	err := r.pool.QueryRow(ctx, appendGenerationLogSQL,
		userID, string(l.Orientation), l.LightingScheme, string(l.BackgroundType), string(l.Quality),
		l.HasMaster, l.HasCachedBackground, l.VerificationPassed, l.VerificationAttempts, l.GenerationTimeMS,
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return uuid.Nil, classify("appending generation log", err)
	}
	return l.ID, nil
}

// ListRecent returns up to limit logs, newest first.
func (r *GenerationRepository) ListRecent(ctx context.Context, limit int) ([]generation.Log, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := r.pool.Query(ctx, listRecentGenerationLogsSQL, limit)
	if err != nil {
		return nil, classify("listing generation logs", err)
	}
	logs, err := pgx.CollectRows(rows, scanGenerationLog)
	if err != nil {
		return nil, classify("listing generation logs", err)
	}
	return logs, nil
}

// Stats aggregates logs created at or after since.
func (r *GenerationRepository) Stats(ctx context.Context, since time.Time) (*generation.Stats, error) {
	stats := &generation.Stats{
		Since:            since,
		ByLightingScheme: make(map[string]int64),
	}

	err := r.pool.QueryRow(ctx, generationTotalsSQL, since).
		Scan(&stats.Total, &stats.Verified, &stats.PassRate, &stats.AvgGenerationMS)
	if err != nil {
		return nil, classify("aggregating generation logs", err)
	}

	rows, err := r.pool.Query(ctx, generationBySchemeSQL, since)
	if err != nil {
		return nil, classify("counting generation logs by scheme", err)
	}
	var (
		scheme string
		count  int64
	)
	_, err = pgx.ForEachRow(rows, []any{&scheme, &count}, func() error {
		stats.ByLightingScheme[scheme] = count
		return nil
	})
	if err != nil {
		return nil, classify("counting generation logs by scheme", err)
	}

	return stats, nil
}

// Stream calls fn for each log created at or after since, oldest first.
func (r *GenerationRepository) Stream(ctx context.Context, since time.Time, fn func(generation.Log) error) error {
	rows, err := r.pool.Query(ctx, streamGenerationLogsSQL, since)
	if err != nil {
		return classify("streaming generation logs", err)
	}
	defer rows.Close()

	for rows.Next() {
		l, err := scanGenerationLog(rows)
		if err != nil {
			return classify("streaming generation logs", err)
		}
		if err := fn(l); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return classify("streaming generation logs", err)
	}
	return nil
}

func scanGenerationLog(row pgx.CollectableRow) (generation.Log, error) {
	var (
		l              generation.Log
		userID         *string
		orientation    string
		backgroundType string
		quality        string
	)
	err := row.Scan(
		&l.ID, &userID, &orientation, &l.LightingScheme, &backgroundType, &quality,
		&l.HasMaster, &l.HasCachedBackground, &l.VerificationPassed, &l.VerificationAttempts,
		&l.GenerationTimeMS, &l.CreatedAt,
	)
	if userID != nil {
		l.UserID = *userID
	}
	l.Orientation = generation.Orientation(orientation)
	l.BackgroundType = generation.BackgroundType(backgroundType)
	l.Quality = generation.Quality(quality)
	return l, err
}
