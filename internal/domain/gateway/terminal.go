package gateway

import (
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Terminal is a physical payment terminal registered to a merchant. Online
// state is never stored: it is derived from the last heartbeat against a
// staleness threshold, so it self-corrects without an explicit offline event.
type Terminal struct {
	shared.TenantAggregateRoot
	MerchantID   uuid.UUID  `json:"merchant_id"`
	Label        string     `json:"label"`
	SerialNumber string     `json:"serial_number"`
	RegisteredAt time.Time  `json:"registered_at"`
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
}

// NewTerminal registers a terminal for a merchant
func NewTerminal(tenantID, terminalID, merchantID uuid.UUID, label, serialNumber string) (*Terminal, error) {
	if merchantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MERCHANT", "Merchant ID cannot be empty")
	}
	if label == "" {
		return nil, shared.NewDomainError("INVALID_LABEL", "Terminal label cannot be empty")
	}

	t := &Terminal{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithID(tenantID, terminalID),
		MerchantID:          merchantID,
		Label:               label,
		SerialNumber:        serialNumber,
		RegisteredAt:        time.Now(),
	}
	t.AddDomainEvent(NewTerminalRegisteredEvent(t))
	return t, nil
}

// Heartbeat records that the terminal was seen. Out-of-order heartbeats never
// move LastSeenAt backwards.
func (t *Terminal) Heartbeat(at time.Time) {
	if t.LastSeenAt != nil && at.Before(*t.LastSeenAt) {
		return
	}
	t.LastSeenAt = &at
	t.UpdatedAt = time.Now()
}

// IsOnline reports whether the terminal was seen within the staleness
// threshold
func (t *Terminal) IsOnline(now time.Time, staleness time.Duration) bool {
	if t.LastSeenAt == nil {
		return false
	}
	return now.Sub(*t.LastSeenAt) <= staleness
}
