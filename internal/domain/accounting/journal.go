package accounting

import (
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is a ledger account in the chart of accounts
type Account string

// Chart of accounts used by the journal projection
const (
	AccountCash             Account = "CASH"
	AccountSalesRevenue     Account = "SALES_REVENUE"
	AccountSalesReturns     Account = "SALES_RETURNS"
	AccountCustomerDeposits Account = "CUSTOMER_DEPOSITS"
	AccountBreakageIncome   Account = "BREAKAGE_INCOME"
)

// JournalLine is one leg of a double-entry posting. Exactly one of Debit or
// Credit carries a positive amount; the other is zero.
type JournalLine struct {
	Account Account         `json:"account"`
	Debit   decimal.Decimal `json:"debit"`
	Credit  decimal.Decimal `json:"credit"`
}

// DebitLine builds a debit leg
func DebitLine(account Account, amount decimal.Decimal) JournalLine {
	return JournalLine{Account: account, Debit: amount, Credit: decimal.Zero}
}

// CreditLine builds a credit leg
func CreditLine(account Account, amount decimal.Decimal) JournalLine {
	return JournalLine{Account: account, Debit: decimal.Zero, Credit: amount}
}

// JournalEntry is one balanced posting. SourceEventID ties the entry back to
// the domain event it journals and keys the idempotency check.
type JournalEntry struct {
	EntryID       uuid.UUID     `json:"entry_id"`
	SourceEventID uuid.UUID     `json:"source_event_id"`
	Memo          string        `json:"memo"`
	Lines         []JournalLine `json:"lines"`
	PostedAt      time.Time     `json:"posted_at"`
}

// JournalDay holds one tenant's journal for a single business day. Entries
// are append-only; posting the same source event twice is a no-op, which
// makes the projection safe under at-least-once delivery.
type JournalDay struct {
	shared.TenantAggregateRoot
	Day           string             `json:"day"`
	Entries       []JournalEntry     `json:"entries"`
	PostedSources map[uuid.UUID]bool `json:"posted_sources"`
}

// NewJournalDay opens the journal for one business day
func NewJournalDay(tenantID, journalID uuid.UUID, day string) (*JournalDay, error) {
	if _, err := time.Parse("2006-01-02", day); err != nil {
		return nil, shared.NewDomainError("INVALID_DAY", "Day must be formatted YYYY-MM-DD")
	}

	j := &JournalDay{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithID(tenantID, journalID),
		Day:                 day,
		Entries:             []JournalEntry{},
		PostedSources:       make(map[uuid.UUID]bool),
	}
	return j, nil
}

// AppendEntry posts one balanced entry. Entries for an already-posted source
// event are silently dropped.
func (j *JournalDay) AppendEntry(sourceEventID uuid.UUID, memo string, lines []JournalLine) error {
	if sourceEventID == uuid.Nil {
		return shared.NewDomainError("INVALID_SOURCE", "Journal entries require a source event")
	}
	if len(lines) < 2 {
		return shared.NewDomainError("UNBALANCED_ENTRY", "Journal entries need at least two lines")
	}

	debits, credits := decimal.Zero, decimal.Zero
	for _, line := range lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return shared.NewDomainError("INVALID_AMOUNT", "Journal amounts cannot be negative")
		}
		if line.Debit.IsPositive() == line.Credit.IsPositive() {
			return shared.NewDomainError("INVALID_LINE", "Each line must be either a debit or a credit")
		}
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}
	if !debits.Equal(credits) {
		return shared.NewDomainError("UNBALANCED_ENTRY", "Debits must equal credits")
	}
	if j.PostedSources[sourceEventID] {
		return nil
	}

	entry := JournalEntry{
		EntryID:       uuid.New(),
		SourceEventID: sourceEventID,
		Memo:          memo,
		Lines:         lines,
		PostedAt:      time.Now(),
	}
	j.Entries = append(j.Entries, entry)
	j.PostedSources[sourceEventID] = true
	j.UpdatedAt = time.Now()

	j.AddDomainEvent(NewJournalEntryPostedEvent(j, entry))
	return nil
}

// TrialBalance sums the day's postings per account, debit-positive
func (j *JournalDay) TrialBalance() map[Account]decimal.Decimal {
	balance := make(map[Account]decimal.Decimal)
	for _, entry := range j.Entries {
		for _, line := range entry.Lines {
			balance[line.Account] = balance[line.Account].Add(line.Debit).Sub(line.Credit)
		}
	}
	return balance
}
