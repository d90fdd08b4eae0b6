package accounting

import (
	"context"
	"fmt"
	"time"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/accounting"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Command types accepted by the journal actor
const (
	CmdAppendJournalEntry = "accounting.append_entry"
	CmdGetJournal         = "accounting.get_journal"
	CmdGetTrialBalance    = "accounting.get_trial_balance"
)

// JournalKeyFor derives the deterministic actor entity ID for a tenant's
// journal on one business day.
func JournalKeyFor(tenantID uuid.UUID, day time.Time) (uuid.UUID, string) {
	dayKey := day.UTC().Format("2006-01-02")
	entityID := uuid.NewSHA1(tenantID, []byte("journal-day:"+dayKey))
	return entityID, dayKey
}

// AppendJournalEntryCommand posts one balanced entry to the day's journal.
// Dispatched by the journal projection, so it carries the source event ID.
type AppendJournalEntryCommand struct {
	EventID  uuid.UUID                `json:"event_id"`
	TenantID uuid.UUID                `json:"tenant_id"`
	Day      string                   `json:"day"`
	Memo     string                   `json:"memo"`
	Lines    []accounting.JournalLine `json:"lines" binding:"required"`
}

func (c AppendJournalEntryCommand) CommandType() string { return CmdAppendJournalEntry }

// SourceEventID implements actor.EventSourced
func (c AppendJournalEntryCommand) SourceEventID() uuid.UUID { return c.EventID }

// GetJournalCommand returns the day's full journal
type GetJournalCommand struct{}

func (c GetJournalCommand) CommandType() string { return CmdGetJournal }

// GetTrialBalanceCommand returns the day's per-account balance
type GetTrialBalanceCommand struct{}

func (c GetTrialBalanceCommand) CommandType() string { return CmdGetTrialBalance }

// JournalBehavior is the actor behavior for the JournalDay aggregate. The
// journal opens implicitly on the first posting of the day.
type JournalBehavior struct{}

// NewJournalBehavior creates a new journal behavior
func NewJournalBehavior() *JournalBehavior { return &JournalBehavior{} }

// ActorType returns the actor type this behavior serves
func (b *JournalBehavior) ActorType() string { return accounting.AggregateTypeJournalDay }

// NewState returns an empty journal state
func (b *JournalBehavior) NewState() any { return &accounting.JournalDay{} }

// Handle applies one command to the journal
func (b *JournalBehavior) Handle(ctx context.Context, state any, cmd actor.Command) (*actor.Outcome, error) {
	journal, ok := state.(*accounting.JournalDay)
	if !ok {
		return nil, fmt.Errorf("journal behavior: unexpected state type %T", state)
	}

	switch c := cmd.(type) {
	case AppendJournalEntryCommand:
		var err error
		if journal, err = b.materialize(journal, c.TenantID, c.Day); err != nil {
			return nil, err
		}
		if err := journal.AppendEntry(c.EventID, c.Memo, c.Lines); err != nil {
			return nil, err
		}
	case GetJournalCommand:
		if journal.ID == uuid.Nil {
			return nil, shared.ErrNotFound
		}
		return &actor.Outcome{Response: journal}, nil
	case GetTrialBalanceCommand:
		if journal.ID == uuid.Nil {
			return nil, shared.ErrNotFound
		}
		return &actor.Outcome{Response: journal.TrialBalance()}, nil
	default:
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("journal actor does not accept command %q", cmd.CommandType()))
	}

	return &actor.Outcome{Response: journal, State: journal, Events: journal.GetDomainEvents()}, nil
}

// materialize opens the journal on first use
func (b *JournalBehavior) materialize(journal *accounting.JournalDay, tenantID uuid.UUID, dayKey string) (*accounting.JournalDay, error) {
	if journal.ID != uuid.Nil {
		return journal, nil
	}
	entityID := uuid.NewSHA1(tenantID, []byte("journal-day:"+dayKey))
	return accounting.NewJournalDay(tenantID, entityID, dayKey)
}
