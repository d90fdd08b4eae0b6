package accounting

import (
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeJournalDay = "JournalDay"

// Event type constant
const EventTypeJournalEntryPosted = "JournalEntryPosted"

// JournalEntryPostedEvent is raised for every entry appended to a day's
// journal. The journal projection never subscribes to it, so postings do not
// feed back into the journal.
type JournalEntryPostedEvent struct {
	shared.BaseDomainEvent
	JournalID     uuid.UUID     `json:"journal_id"`
	Day           string        `json:"day"`
	EntryID       uuid.UUID     `json:"entry_id"`
	SourceEventID uuid.UUID     `json:"source_event_id"`
	Memo          string        `json:"memo"`
	Lines         []JournalLine `json:"lines"`
}

// NewJournalEntryPostedEvent creates a new JournalEntryPostedEvent
func NewJournalEntryPostedEvent(j *JournalDay, entry JournalEntry) *JournalEntryPostedEvent {
	return &JournalEntryPostedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJournalEntryPosted, shared.NamespaceAccounting, AggregateTypeJournalDay, j.ID, j.TenantID),
		JournalID:       j.ID,
		Day:             j.Day,
		EntryID:         entry.EntryID,
		SourceEventID:   entry.SourceEventID,
		Memo:            entry.Memo,
		Lines:           entry.Lines,
	}
}
