package sales

import (
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeSalesDay = "SalesDay"

// Event type constants
const (
	EventTypeDailySalesUpdated  = "DailySalesUpdated"
	EventTypeDailySalesRefunded = "DailySalesRefunded"
)

// DailySalesUpdatedEvent is raised when an order is folded into a day's
// totals. It carries the per-order delta alongside the running totals so
// downstream projections can post incrementally.
type DailySalesUpdatedEvent struct {
	shared.BaseDomainEvent
	Day          string          `json:"day"`
	OrderID      uuid.UUID       `json:"order_id"`
	OrderNet     decimal.Decimal `json:"order_net"`
	OrderCount   int             `json:"order_count"`
	NetRevenue   decimal.Decimal `json:"net_revenue"`
	GrossRevenue decimal.Decimal `json:"gross_revenue"`
}

// NewDailySalesUpdatedEvent creates a new DailySalesUpdatedEvent
func NewDailySalesUpdatedEvent(s *SalesDay, orderID uuid.UUID, orderNet decimal.Decimal) *DailySalesUpdatedEvent {
	return &DailySalesUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDailySalesUpdated, shared.NamespaceSales, AggregateTypeSalesDay, s.ID, s.TenantID),
		Day:             s.Day,
		OrderID:         orderID,
		OrderNet:        orderNet,
		OrderCount:      s.OrderCount,
		NetRevenue:      s.NetRevenue,
		GrossRevenue:    s.GrossRevenue,
	}
}

// DailySalesRefundedEvent is raised when a refund is booked against a day
type DailySalesRefundedEvent struct {
	shared.BaseDomainEvent
	Day         string          `json:"day"`
	OrderID     uuid.UUID       `json:"order_id"`
	Amount      decimal.Decimal `json:"amount"`
	RefundTotal decimal.Decimal `json:"refund_total"`
}

// NewDailySalesRefundedEvent creates a new DailySalesRefundedEvent
func NewDailySalesRefundedEvent(s *SalesDay, orderID uuid.UUID, amount decimal.Decimal) *DailySalesRefundedEvent {
	return &DailySalesRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDailySalesRefunded, shared.NamespaceSales, AggregateTypeSalesDay, s.ID, s.TenantID),
		Day:             s.Day,
		OrderID:         orderID,
		Amount:          amount,
		RefundTotal:     s.RefundTotal,
	}
}
