package actor

import (
	"context"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Command is a request that may mutate an actor's state and emit events
type Command interface {
	CommandType() string
}

// EventSourced is implemented by commands that were derived from a fabric
// event. The runtime skips a command whose source event ID matches the last
// event already applied to the target actor, making event re-delivery
// idempotent at the state envelope level.
type EventSourced interface {
	SourceEventID() uuid.UUID
}

// Outcome is what a behavior returns for a successfully handled command
type Outcome struct {
	// Response is returned to the dispatcher
	Response any
	// State is the full new state to persist. nil means the command was
	// read-only and nothing is written.
	State any
	// Events are published (via the transactional outbox) after the state
	// write commits. Ignored when State is nil.
	Events []shared.DomainEvent
}

// Behavior defines the command logic for one actor type. Implementations must
// be pure with respect to the passed state: compute the full new state and
// return it, never persist anything themselves. A returned error leaves the
// committed state untouched (all-or-nothing per command).
type Behavior interface {
	// ActorType returns the actor type this behavior serves
	ActorType() string
	// NewState returns a pointer to a zero state, used to decode the
	// persisted payload and to activate entities that do not exist yet
	NewState() any
	// Handle applies one command to the given state
	Handle(ctx context.Context, state any, cmd Command) (*Outcome, error)
}
