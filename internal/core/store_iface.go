package core

import (
	"context"
	"errors"

	"github.com/avelis/pulse/internal/domain"
)

// ErrNotFound distinguishes a missing document from other store failures.
var ErrNotFound = errors.New("not found")

// Query selects persisted messages. ULID ids sort by creation time, so
// ordering by id is ordering by time.
type Query struct {
	RoomID domain.RoomID
	Before string // exclusive upper bound on message id, empty for latest
	Limit  int
}

// Store is the persistence port the realtime core writes through.
// Implementations live in adapters; the core never sees the backing engine.
type Store interface {
	Create(ctx context.Context, msg *domain.Message) error
	Read(ctx context.Context, id string) (*domain.Message, error)
	Update(ctx context.Context, id string, patch domain.MessagePatch) (*domain.Message, error)
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, q Query) ([]*domain.Message, error)
}
