package session

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no session exists under the requested id.
var ErrNotFound = errors.New("session not found")

// ErrUnavailable is returned when the backing medium cannot be reached or
// written. Handlers surface it as a 5xx.
var ErrUnavailable = errors.New("session store unavailable")

// Store is the persistence contract for sessions. Saves are atomic per key
// with last-writer-wins semantics; there are no cross-key transactions.
// List order is unspecified, callers sort.
type Store interface {
	Save(ctx context.Context, id string, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	List(ctx context.Context) ([]Session, error)
	Delete(ctx context.Context, id string) error
}
