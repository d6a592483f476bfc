package generation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/studio-lights/internal/domain/store"
)

// Orientation of the product in the source photograph.
type Orientation string

const (
	OrientationFlatLay  Orientation = "flat_lay"
	OrientationStanding Orientation = "standing"
	OrientationAngled   Orientation = "angled"
)

// BackgroundType tells whether the background came from a text description
// or a reference image.
type BackgroundType string

const (
	BackgroundText  BackgroundType = "text"
	BackgroundImage BackgroundType = "image"
)

// Quality is the requested output resolution.
type Quality string

const (
	Quality1K Quality = "1K"
	Quality2K Quality = "2K"
)

// Log is a write-once record of one image generation attempt.
type Log struct {
	ID                   uuid.UUID
	UserID               string
	Orientation          Orientation
	LightingScheme       string
	BackgroundType       BackgroundType
	Quality              Quality
	HasMaster            bool
	HasCachedBackground  bool
	VerificationPassed   *bool
	VerificationAttempts int
	GenerationTimeMS     *int
	CreatedAt            time.Time
}

// Validate checks required fields and value domains. It returns a
// *store.ValidationError describing the first problem found.
func (l *Log) Validate() error {
	switch {
	case l.Orientation == "":
		return store.Required("orientation")
	case l.LightingScheme == "":
		return store.Required("lighting_scheme")
	case l.BackgroundType == "":
		return store.Required("background_type")
	case l.Quality == "":
		return store.Required("quality")
	}

	switch l.Orientation {
	case OrientationFlatLay, OrientationStanding, OrientationAngled:
	default:
		return &store.ValidationError{Field: "orientation", Reason: "must be one of flat_lay, standing, angled"}
	}
	switch l.BackgroundType {
	case BackgroundText, BackgroundImage:
	default:
		return &store.ValidationError{Field: "background_type", Reason: "must be one of text, image"}
	}
	switch l.Quality {
	case Quality1K, Quality2K:
	default:
		return &store.ValidationError{Field: "quality", Reason: "must be one of 1K, 2K"}
	}

	if err := checkInt4("verification_attempts", l.VerificationAttempts); err != nil {
		return err
	}
	if l.GenerationTimeMS != nil {
		if err := checkInt4("generation_time_ms", *l.GenerationTimeMS); err != nil {
			return err
		}
	}
	return nil
}

// checkInt4 enforces the range of a non-negative INTEGER column.
func checkInt4(field string, v int) error {
	switch {
	case v < 0:
		return &store.ValidationError{Field: field, Reason: "must not be negative"}
	case v > math.MaxInt32:
		return &store.ValidationError{Field: field, Reason: fmt.Sprintf("must not exceed %d", math.MaxInt32)}
	}
	return nil
}

// Stats aggregates generation logs for analytics.
type Stats struct {
	Since    time.Time
	Total    int64
	Verified int64
	// PassRate is the share of verified attempts that passed, in [0, 1].
	// It is invalid when no attempt carries a verification outcome.
	PassRate decimal.NullDecimal
	// AvgGenerationMS is invalid when no attempt recorded a duration.
	AvgGenerationMS decimal.NullDecimal
	ByLightingScheme map[string]int64
}

// Repository defines persistence for generation logs.
type Repository interface {
	// Append inserts the record and returns the server-generated id.
	Append(ctx context.Context, l *Log) (uuid.UUID, error)
	// ListRecent returns up to limit records, newest first.
	ListRecent(ctx context.Context, limit int) ([]Log, error)
	// Stats aggregates records created at or after since.
	Stats(ctx context.Context, since time.Time) (*Stats, error)
	// Stream calls fn for every record created at or after since, oldest
	// first. Iteration stops at the first error returned by fn.
	Stream(ctx context.Context, since time.Time, fn func(Log) error) error
}
