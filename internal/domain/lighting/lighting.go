package lighting

import (
	"context"
	"time"
)

// Scheme is a lighting setup offered to users. PromptText is the instruction
// fragment injected into generation prompts.
type Scheme struct {
	ID          string
	Name        string
	Description string
	PromptText  string
	SortOrder   int
	IsActive    bool
	CreatedAt   time.Time
}

// Repository defines access to the lighting scheme catalog.
type Repository interface {
	// ListActive returns active schemes ordered by SortOrder ascending.
	ListActive(ctx context.Context) ([]Scheme, error)
	// GetActive returns a single active scheme, or an error matching
	// store.ErrNotFound when the scheme is missing or retired.
	GetActive(ctx context.Context, id string) (*Scheme, error)
	Create(ctx context.Context, s *Scheme) error
}
