package background

import (
	"context"
	"time"
)

// Background is a studio surface preset. Built-in presets (white, gray,
// black) carry IsDefault.
type Background struct {
	ID          string
	Name        string
	Description string
	PromptText  string
	SortOrder   int
	IsDefault   bool
	IsActive    bool
	CreatedAt   time.Time
}

// Repository defines access to the background preset catalog.
type Repository interface {
	ListActive(ctx context.Context) ([]Background, error)
	GetActive(ctx context.Context, id string) (*Background, error)
	Create(ctx context.Context, b *Background) error
}
