package prompt

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prompt is a named template fed to the image and analysis models.
type Prompt struct {
	ID        uuid.UUID
	Name      string
	Content   string
	Version   int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Render substitutes every {key} token in the content with vars[key].
// Tokens without a matching key are left untouched, as are other braces, so
// JSON examples embedded in templates survive.
func (p *Prompt) Render(vars map[string]string) string {
	if len(vars) == 0 {
		return p.Content
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(p.Content)
}

// Repository provides access to prompt templates.
type Repository interface {
	// GetActive returns the active prompt with the given name, or an error
	// matching store.ErrNotFound.
	GetActive(ctx context.Context, name string) (*Prompt, error)
	// Create inserts a new prompt. A duplicate name fails with
	// store.ErrConstraintViolation.
	Create(ctx context.Context, p *Prompt) error
}
