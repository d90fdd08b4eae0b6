package loyalty

import (
	"github.com/dinehub/backend/internal/domain/loyalty"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SnapshotResponse is the customer spend projection in API responses
type SnapshotResponse struct {
	CustomerID      uuid.UUID       `json:"customer_id"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	LifetimeSpend   decimal.Decimal `json:"lifetime_spend"`
	YearToDateSpend decimal.Decimal `json:"year_to_date_spend"`
	AvailablePoints int64           `json:"available_points"`
	CurrentTier     string          `json:"current_tier"`
	TransactionLog  int             `json:"transaction_count"`
}

// ToSnapshotResponse converts a projection to its response shape
func ToSnapshotResponse(p *loyalty.CustomerSpendProjection) *SnapshotResponse {
	return &SnapshotResponse{
		CustomerID:      p.CustomerID,
		TenantID:        p.TenantID,
		LifetimeSpend:   p.LifetimeSpend,
		YearToDateSpend: p.YearToDateSpend,
		AvailablePoints: p.AvailablePoints,
		CurrentTier:     p.CurrentTier,
		TransactionLog:  len(p.Transactions),
	}
}
