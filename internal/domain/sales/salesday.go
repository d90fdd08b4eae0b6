package sales

import (
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DayFormat is the canonical business-day key
const DayFormat = "2006-01-02"

// SalesDay accumulates one tenant's sales figures for a single business day.
// Orders are folded in exactly once; at-least-once event delivery is absorbed
// by the recorded-order set.
type SalesDay struct {
	shared.TenantAggregateRoot
	Day            string             `json:"day"`
	OrderCount     int                `json:"order_count"`
	ItemCount      int                `json:"item_count"`
	NetRevenue     decimal.Decimal    `json:"net_revenue"`
	GrossRevenue   decimal.Decimal    `json:"gross_revenue"`
	DiscountTotal  decimal.Decimal    `json:"discount_total"`
	RefundTotal    decimal.Decimal    `json:"refund_total"`
	RecordedOrders map[uuid.UUID]bool `json:"recorded_orders"`
	RefundedOrders map[uuid.UUID]bool `json:"refunded_orders"`
}

// NewSalesDay creates the accumulator for one business day
func NewSalesDay(tenantID, dayID uuid.UUID, day string) (*SalesDay, error) {
	if _, err := time.Parse(DayFormat, day); err != nil {
		return nil, shared.NewDomainError("INVALID_DAY", "Day must be formatted YYYY-MM-DD")
	}

	s := &SalesDay{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithID(tenantID, dayID),
		Day:                 day,
		NetRevenue:          decimal.Zero,
		GrossRevenue:        decimal.Zero,
		DiscountTotal:       decimal.Zero,
		RefundTotal:         decimal.Zero,
		RecordedOrders:      make(map[uuid.UUID]bool),
		RefundedOrders:      make(map[uuid.UUID]bool),
	}
	return s, nil
}

// RecordOrder folds one settled order into the day's totals. Recording the
// same order twice is a no-op.
func (s *SalesDay) RecordOrder(orderID uuid.UUID, net, gross, discount decimal.Decimal, itemCount int) error {
	if orderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if net.IsNegative() || gross.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Order amounts cannot be negative")
	}
	if s.RecordedOrders[orderID] {
		return nil
	}

	s.OrderCount++
	s.ItemCount += itemCount
	s.NetRevenue = s.NetRevenue.Add(net)
	s.GrossRevenue = s.GrossRevenue.Add(gross)
	s.DiscountTotal = s.DiscountTotal.Add(discount)
	s.RecordedOrders[orderID] = true
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(NewDailySalesUpdatedEvent(s, orderID, net))
	return nil
}

// RecordRefund books a refunded order against the day's totals. The order
// count is untouched; only revenue moves. Repeats are no-ops.
func (s *SalesDay) RecordRefund(orderID uuid.UUID, amount decimal.Decimal) error {
	if orderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Refund amount cannot be negative")
	}
	if s.RefundedOrders[orderID] {
		return nil
	}

	s.RefundTotal = s.RefundTotal.Add(amount)
	s.RefundedOrders[orderID] = true
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(NewDailySalesRefundedEvent(s, orderID, amount))
	return nil
}

// NetAfterRefunds returns the day's net revenue less refunds
func (s *SalesDay) NetAfterRefunds() decimal.Decimal {
	return s.NetRevenue.Sub(s.RefundTotal)
}
