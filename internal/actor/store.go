package actor

import (
	"context"
	"encoding/json"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StateEnvelope is the persisted shape of an actor's state: the opaque
// payload, the optimistic version and the last event applied through an
// event-sourced command (for idempotent re-application).
type StateEnvelope struct {
	Payload            json.RawMessage
	Version            int
	LastAppliedEventID uuid.UUID
}

// StateStore is the durable key -> state persistence the runtime writes
// through. Save must be conditional on expectedVersion (compare-and-set) and
// must write the envelope and the outbox rows for events in one transaction.
type StateStore interface {
	// Load returns the envelope for the key, or shared.ErrNotFound
	Load(ctx context.Context, key Key) (StateEnvelope, error)
	// Save persists the envelope when the stored version still equals
	// expectedVersion (0 means the key must not exist yet) and returns the
	// new version. Returns shared.ErrVersionConflict on a lost race.
	Save(ctx context.Context, key Key, env StateEnvelope, expectedVersion int, events []shared.DomainEvent) (int, error)
}
