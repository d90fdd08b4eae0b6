package inventory

import (
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeIngredientStock = "IngredientStock"

// Event type constants
const (
	EventTypeIngredientReceived    = "IngredientReceived"
	EventTypeStockConsumed         = "StockConsumed"
	EventTypeStockAdjusted         = "StockAdjusted"
	EventTypeIngredientCostChanged = "IngredientCostChanged"
	EventTypeStockBelowThreshold   = "StockBelowThreshold"
)

// IngredientReceivedEvent is raised when a delivery is booked in
type IngredientReceivedEvent struct {
	shared.BaseDomainEvent
	IngredientID   uuid.UUID       `json:"ingredient_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
}

// NewIngredientReceivedEvent creates a new IngredientReceivedEvent
func NewIngredientReceivedEvent(s *IngredientStock, quantity, unitCost decimal.Decimal) *IngredientReceivedEvent {
	return &IngredientReceivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIngredientReceived, shared.NamespaceInventory, AggregateTypeIngredientStock, s.ID, s.TenantID),
		IngredientID:    s.ID,
		Quantity:        quantity,
		UnitCost:        unitCost,
		QuantityOnHand:  s.QuantityOnHand,
	}
}

// StockConsumedEvent is raised when an order consumes stock
type StockConsumedEvent struct {
	shared.BaseDomainEvent
	IngredientID   uuid.UUID       `json:"ingredient_id"`
	OrderID        uuid.UUID       `json:"order_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
}

// NewStockConsumedEvent creates a new StockConsumedEvent
func NewStockConsumedEvent(s *IngredientStock, orderID uuid.UUID, quantity decimal.Decimal) *StockConsumedEvent {
	return &StockConsumedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockConsumed, shared.NamespaceInventory, AggregateTypeIngredientStock, s.ID, s.TenantID),
		IngredientID:    s.ID,
		OrderID:         orderID,
		Quantity:        quantity,
		QuantityOnHand:  s.QuantityOnHand,
	}
}

// StockAdjustedEvent is raised after a physical-count correction
type StockAdjustedEvent struct {
	shared.BaseDomainEvent
	IngredientID uuid.UUID       `json:"ingredient_id"`
	OldQuantity  decimal.Decimal `json:"old_quantity"`
	NewQuantity  decimal.Decimal `json:"new_quantity"`
	Reason       string          `json:"reason,omitempty"`
}

// NewStockAdjustedEvent creates a new StockAdjustedEvent
func NewStockAdjustedEvent(s *IngredientStock, oldQuantity decimal.Decimal, reason string) *StockAdjustedEvent {
	return &StockAdjustedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockAdjusted, shared.NamespaceInventory, AggregateTypeIngredientStock, s.ID, s.TenantID),
		IngredientID:    s.ID,
		OldQuantity:     oldQuantity,
		NewQuantity:     s.QuantityOnHand,
		Reason:          reason,
	}
}

// IngredientCostChangedEvent is raised whenever the weighted-average unit cost
// moves. The costing engine recalculates affected recipes from it.
type IngredientCostChangedEvent struct {
	shared.BaseDomainEvent
	IngredientID uuid.UUID       `json:"ingredient_id"`
	OldUnitCost  decimal.Decimal `json:"old_unit_cost"`
	NewUnitCost  decimal.Decimal `json:"new_unit_cost"`
}

// NewIngredientCostChangedEvent creates a new IngredientCostChangedEvent
func NewIngredientCostChangedEvent(s *IngredientStock, oldCost decimal.Decimal) *IngredientCostChangedEvent {
	return &IngredientCostChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIngredientCostChanged, shared.NamespaceInventory, AggregateTypeIngredientStock, s.ID, s.TenantID),
		IngredientID:    s.ID,
		OldUnitCost:     oldCost,
		NewUnitCost:     s.UnitCost,
	}
}

// StockBelowThresholdEvent is raised when on-hand stock drops under the
// configured minimum
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	IngredientID   uuid.UUID       `json:"ingredient_id"`
	Name           string          `json:"name"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	MinQuantity    decimal.Decimal `json:"min_quantity"`
}

// NewStockBelowThresholdEvent creates a new StockBelowThresholdEvent
func NewStockBelowThresholdEvent(s *IngredientStock) *StockBelowThresholdEvent {
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, shared.NamespaceInventory, AggregateTypeIngredientStock, s.ID, s.TenantID),
		IngredientID:    s.ID,
		Name:            s.Name,
		QuantityOnHand:  s.QuantityOnHand,
		MinQuantity:     s.MinQuantity,
	}
}
