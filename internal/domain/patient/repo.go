package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no record exists with the given id.
	ErrNotFound = errors.New("patient not found")
	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	// Search returns one page of records plus the total count of the filtered
	// (but not paginated) result set. An empty query matches everything.
	Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error)
	Update(ctx context.Context, p *Patient) error
	// UpdateOrchestration persists classification results. A nil actions
	// pointer keeps the previously stored text.
	UpdateOrchestration(ctx context.Context, id uuid.UUID, isOutlier *bool, actions *string) error
	Delete(ctx context.Context, id uuid.UUID) error
}
