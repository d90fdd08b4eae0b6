package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/gateway"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Command types accepted by the terminal actor
const (
	CmdRegisterTerminal  = "gateway.register_terminal"
	CmdTerminalHeartbeat = "gateway.terminal_heartbeat"
	CmdGetTerminalStatus = "gateway.get_terminal_status"
)

// RegisterTerminalCommand registers the terminal addressed by the actor key
type RegisterTerminalCommand struct {
	TenantID     uuid.UUID `json:"tenant_id"`
	TerminalID   uuid.UUID `json:"terminal_id"`
	MerchantID   uuid.UUID `json:"merchant_id" binding:"required"`
	Label        string    `json:"label" binding:"required"`
	SerialNumber string    `json:"serial_number" binding:"required"`
}

func (c RegisterTerminalCommand) CommandType() string { return CmdRegisterTerminal }

// TerminalHeartbeatCommand records a liveness ping from the device
type TerminalHeartbeatCommand struct {
	At time.Time `json:"at"`
}

func (c TerminalHeartbeatCommand) CommandType() string { return CmdTerminalHeartbeat }

// GetTerminalStatusCommand returns the terminal with its derived online flag
type GetTerminalStatusCommand struct {
	Staleness time.Duration `json:"staleness"`
}

func (c GetTerminalStatusCommand) CommandType() string { return CmdGetTerminalStatus }

// TerminalStatus is the response to GetTerminalStatusCommand. Online is
// derived from the last heartbeat at read time, never stored.
type TerminalStatus struct {
	TerminalID   uuid.UUID  `json:"terminal_id"`
	MerchantID   uuid.UUID  `json:"merchant_id"`
	Label        string     `json:"label"`
	SerialNumber string     `json:"serial_number"`
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
	Online       bool       `json:"online"`
}

// TerminalBehavior is the actor behavior for the Terminal aggregate
type TerminalBehavior struct {
	// DefaultStaleness bounds how old a heartbeat may be for the terminal to
	// count as online when the caller does not say
	DefaultStaleness time.Duration
}

// NewTerminalBehavior creates a new terminal behavior
func NewTerminalBehavior(defaultStaleness time.Duration) *TerminalBehavior {
	if defaultStaleness <= 0 {
		defaultStaleness = 90 * time.Second
	}
	return &TerminalBehavior{DefaultStaleness: defaultStaleness}
}

// ActorType returns the actor type this behavior serves
func (b *TerminalBehavior) ActorType() string { return gateway.AggregateTypeTerminal }

// NewState returns an empty terminal state
func (b *TerminalBehavior) NewState() any { return &gateway.Terminal{} }

// Handle applies one command to the terminal
func (b *TerminalBehavior) Handle(ctx context.Context, state any, cmd actor.Command) (*actor.Outcome, error) {
	terminal, ok := state.(*gateway.Terminal)
	if !ok {
		return nil, fmt.Errorf("terminal behavior: unexpected state type %T", state)
	}

	if c, ok := cmd.(RegisterTerminalCommand); ok {
		if terminal.ID != uuid.Nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Terminal already registered")
		}
		created, err := gateway.NewTerminal(c.TenantID, c.TerminalID, c.MerchantID, c.Label, c.SerialNumber)
		if err != nil {
			return nil, err
		}
		return &actor.Outcome{Response: b.status(created), State: created, Events: created.GetDomainEvents()}, nil
	}

	if terminal.ID == uuid.Nil {
		return nil, shared.ErrNotFound
	}

	switch c := cmd.(type) {
	case TerminalHeartbeatCommand:
		at := c.At
		if at.IsZero() {
			at = time.Now()
		}
		terminal.Heartbeat(at)
		return &actor.Outcome{Response: b.status(terminal), State: terminal, Events: terminal.GetDomainEvents()}, nil
	case GetTerminalStatusCommand:
		status := b.status(terminal)
		if c.Staleness > 0 {
			status.Online = terminal.IsOnline(time.Now(), c.Staleness)
		}
		return &actor.Outcome{Response: status}, nil
	default:
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("terminal actor does not accept command %q", cmd.CommandType()))
	}
}

func (b *TerminalBehavior) status(t *gateway.Terminal) *TerminalStatus {
	return &TerminalStatus{
		TerminalID:   t.ID,
		MerchantID:   t.MerchantID,
		Label:        t.Label,
		SerialNumber: t.SerialNumber,
		LastSeenAt:   t.LastSeenAt,
		Online:       t.IsOnline(time.Now(), b.DefaultStaleness),
	}
}
