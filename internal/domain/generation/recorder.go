package generation

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/studio-lights/internal/domain/lighting"
	"github.com/xenking/studio-lights/internal/domain/store"
)

// RecorderConfig holds non-dependency configuration for the Recorder.
type RecorderConfig struct {
	// StrictReferences rejects records whose lighting scheme is not an
	// active catalog entry. The schema itself does not enforce this.
	StrictReferences bool
}

// Recorder validates and appends generation logs.
type Recorder struct {
	logs     Repository
	schemes  lighting.Repository
	strict   bool
	appended metric.Int64Counter
}

// NewRecorder creates a Recorder. schemes may be nil when StrictReferences
// is disabled.
func NewRecorder(cfg RecorderConfig, logs Repository, schemes lighting.Repository, meter metric.Meter) (*Recorder, error) {
	if cfg.StrictReferences && schemes == nil {
		return nil, errors.New("strict references require a lighting repository")
	}
	appended, err := meter.Int64Counter("studio.generation_logs.appended",
		metric.WithDescription("Generation logs appended"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create counter")
	}
	return &Recorder{
		logs:     logs,
		schemes:  schemes,
		strict:   cfg.StrictReferences,
		appended: appended,
	}, nil
}

// Append validates the record, optionally checks the lighting scheme
// reference, and persists it. Validation failures never reach the database.
func (r *Recorder) Append(ctx context.Context, l *Log) (uuid.UUID, error) {
	if err := l.Validate(); err != nil {
		return uuid.Nil, err
	}

	if r.strict {
		if _, err := r.schemes.GetActive(ctx, l.LightingScheme); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return uuid.Nil, &store.ValidationError{
					Field:  "lighting_scheme",
					Reason: fmt.Sprintf("unknown lighting scheme %q", l.LightingScheme),
				}
			}
			return uuid.Nil, fmt.Errorf("resolve lighting scheme: %w", err)
		}
	}

	id, err := r.logs.Append(ctx, l)
	if err != nil {
		return uuid.Nil, fmt.Errorf("append generation log: %w", err)
	}

	r.appended.Add(ctx, 1, metric.WithAttributes(
		attribute.String("lighting_scheme", l.LightingScheme),
		attribute.String("verification", verificationLabel(l.VerificationPassed)),
	))
	return id, nil
}

func verificationLabel(passed *bool) string {
	switch {
	case passed == nil:
		return "unknown"
	case *passed:
		return "passed"
	default:
		return "failed"
	}
}
