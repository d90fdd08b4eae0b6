package ordering

import (
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeOrder = "Order"

// Event type constants
const (
	EventTypeOrderCompleted = "OrderCompleted"
	EventTypeOrderRefunded  = "OrderRefunded"
)

// OrderLine is one completed order line as published on the order namespace
type OrderLine struct {
	MenuItemID uuid.UUID       `json:"menu_item_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// OrderCompletedEvent is published when an order settles. The order service
// itself lives outside this module; the event shape is the contract the
// loyalty, inventory and sales reactors consume.
type OrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID       `json:"order_id"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	GrossAmount    decimal.Decimal `json:"gross_amount"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	ItemCount      int             `json:"item_count"`
	Lines          []OrderLine     `json:"lines"`
	CompletedAt    time.Time       `json:"completed_at"`
}

// NewOrderCompletedEvent creates a new OrderCompletedEvent
func NewOrderCompletedEvent(tenantID, orderID, customerID uuid.UUID, net, gross, discount decimal.Decimal, lines []OrderLine, completedAt time.Time) *OrderCompletedEvent {
	itemCount := 0
	for _, l := range lines {
		itemCount += l.Quantity
	}
	return &OrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCompleted, shared.NamespaceOrder, AggregateTypeOrder, orderID, tenantID),
		OrderID:         orderID,
		CustomerID:      customerID,
		NetAmount:       net,
		GrossAmount:     gross,
		DiscountAmount:  discount,
		ItemCount:       itemCount,
		Lines:           lines,
		CompletedAt:     completedAt,
	}
}

// OrderRefundedEvent is published when a settled order is refunded in part or
// in full
type OrderRefundedEvent struct {
	shared.BaseDomainEvent
	OrderID    uuid.UUID       `json:"order_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
}

// NewOrderRefundedEvent creates a new OrderRefundedEvent
func NewOrderRefundedEvent(tenantID, orderID, customerID uuid.UUID, amount decimal.Decimal, reason string) *OrderRefundedEvent {
	return &OrderRefundedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderRefunded, shared.NamespaceOrder, AggregateTypeOrder, orderID, tenantID),
		OrderID:         orderID,
		CustomerID:      customerID,
		Amount:          amount,
		Reason:          reason,
	}
}
