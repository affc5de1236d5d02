package users

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no profile exists for an id.
var ErrNotFound = errors.New("user not found")

// Repo persists user profiles.
type Repo interface {
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
}
