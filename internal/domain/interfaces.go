package domain

import (
	"context"

	"deskbook/internal/models"
)

// DeskStore is the contract every storage backend implements. Exactly one
// implementation is active per process, chosen by configuration at startup.
//
// List returns up to pageSize records in a stable backend-defined order.
// pageToken is an opaque cursor from a previous List call ("" for the first
// page); the returned token is "" when no further pages exist. Cursors are
// only meaningful to the driver that issued them.
//
// Create persists the desk and assigns an identifier when desk.ID is empty;
// the stored identifier is written back into desk. Update replaces the named
// fields of an existing record wholesale, never merging, regardless of what
// the backend natively does. Delete of an absent record reports ErrNotFound;
// callers treating delete as idempotent read that as already satisfied.
//
// Every call may block on storage I/O; cancellation comes from the caller's
// context. Implementations share one client across in-flight requests and
// must be safe for concurrent use.
type DeskStore interface {
	List(ctx context.Context, pageSize int, pageToken string) ([]models.Desk, string, error)
	Create(ctx context.Context, desk *models.Desk) error
	Read(ctx context.Context, id string) (*models.Desk, error)
	Update(ctx context.Context, id string, desk models.Desk) (*models.Desk, error)
	Delete(ctx context.Context, id string) error
}

// DeskPredicate selects records for a bulk mutation.
type DeskPredicate func(models.Desk) bool

// DeskTransform mutates a matched record in place.
type DeskTransform func(*models.Desk)

// DeskModel is the storage-agnostic facade used by all higher-level logic.
//
// BulkUpdate pages through the full listing, applies transform to every
// record matching the predicate and persists each mutated record in listing
// order. It is NOT atomic: a failure midway leaves earlier records already
// persisted, reported via PartialBulkError together with the records that
// did go through.
type DeskModel interface {
	DeskStore
	BulkUpdate(ctx context.Context, match DeskPredicate, transform DeskTransform) ([]models.Desk, error)
}

// Notifier delivers a booking notification to the outbound mail
// collaborator. Failures are logged by the caller and never roll back the
// booking that triggered them.
type Notifier interface {
	NotifyBooked(ctx context.Context, notice models.BookingNotice) error
}

// EventPublisher publishes serialized domain events to in-process
// subscribers.
type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}
