package repository

import (
	"context"
	"errors"

	"github.com/eventsphere/eventsphere-api/internal/domain/entity"
)

// Errors surfaced by the atomic registration path. The repository owns
// them because only the store can decide "full" and "duplicate" without
// racing concurrent registrations.
var (
	ErrNotFound          = errors.New("not found")
	ErrEventFull         = errors.New("event is full")
	ErrAlreadyRegistered = errors.New("already registered")
	ErrNotRegistered     = errors.New("not registered")
)

// EventRepository defines event persistence. Every read returns events with
// the embedded attendee list already populated.
type EventRepository interface {
	Create(ctx context.Context, e *entity.Event) error
	GetByID(ctx context.Context, id int64) (*entity.Event, error)
	FindAll(ctx context.Context) ([]*entity.Event, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*entity.Event, error)
	FindByAttendee(ctx context.Context, userID string) ([]*entity.Event, error)
	Update(ctx context.Context, id int64, patch *entity.EventPatch) (*entity.Event, error)
	Delete(ctx context.Context, id int64) error

	// RegisterAttendee inserts the attendee row only while the event still
	// has capacity, inside a single transaction that locks the event row.
	// Returns ErrEventFull or ErrAlreadyRegistered accordingly.
	RegisterAttendee(ctx context.Context, eventID int64, userID string) error
	// UnregisterAttendee removes the attendee row; ErrNotRegistered when
	// no such row exists.
	UnregisterAttendee(ctx context.Context, eventID int64, userID string) error
}
