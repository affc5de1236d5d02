package resumes

import (
	"context"
	"time"
)

// Repo defines persistence operations for resume records. It performs no
// access control.
type Repo interface {
	Create(ctx context.Context, rec Record) error
	Update(ctx context.Context, id string, patch Patch, now time.Time) (Record, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Record, error)
	// ListByOwner returns the owner's records, most recently updated first.
	ListByOwner(ctx context.Context, ownerID string) ([]Record, error)
}
