package inventory

import (
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IngredientStock tracks on-hand quantity and cost for one ingredient at a
// tenant. Unit cost is a moving weighted average recomputed on every receipt.
// Consumption is allowed to drive the quantity negative: the event chain from
// order completion must never wedge on imprecise kitchen counts, and the
// below-threshold alert surfaces the discrepancy instead.
type IngredientStock struct {
	shared.TenantAggregateRoot
	Name           string             `json:"name"`
	UnitOfMeasure  string             `json:"unit_of_measure"`
	QuantityOnHand decimal.Decimal    `json:"quantity_on_hand"`
	UnitCost       decimal.Decimal    `json:"unit_cost"`
	MinQuantity    decimal.Decimal    `json:"min_quantity"`
	ConsumedOrders map[uuid.UUID]bool `json:"consumed_orders"`
}

// NewIngredientStock creates stock tracking for an ingredient. The ingredient
// ID doubles as the aggregate identity.
func NewIngredientStock(tenantID, ingredientID uuid.UUID, name, unitOfMeasure string) (*IngredientStock, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Ingredient name cannot be empty")
	}
	if unitOfMeasure == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit of measure cannot be empty")
	}

	return &IngredientStock{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithID(tenantID, ingredientID),
		Name:                name,
		UnitOfMeasure:       unitOfMeasure,
		QuantityOnHand:      decimal.Zero,
		UnitCost:            decimal.Zero,
		MinQuantity:         decimal.Zero,
		ConsumedOrders:      make(map[uuid.UUID]bool),
	}, nil
}

// Receive books in a delivery and recalculates the unit cost as a moving
// weighted average:
// newCost = (oldQty*oldCost + qty*cost) / (oldQty + qty), rounded to 4 decimals
func (s *IngredientStock) Receive(quantity, unitCost decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Receive quantity must be positive")
	}
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}

	oldCost := s.UnitCost
	oldQuantity := s.QuantityOnHand

	if oldQuantity.LessThanOrEqual(decimal.Zero) {
		s.UnitCost = unitCost.Round(4)
	} else {
		totalValue := oldQuantity.Mul(oldCost).Add(quantity.Mul(unitCost))
		s.UnitCost = totalValue.Div(oldQuantity.Add(quantity)).Round(4)
	}
	s.QuantityOnHand = s.QuantityOnHand.Add(quantity)
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(NewIngredientReceivedEvent(s, quantity, unitCost))
	if !oldCost.Equal(s.UnitCost) {
		s.AddDomainEvent(NewIngredientCostChangedEvent(s, oldCost))
	}
	return nil
}

// Consume books out the quantity an order used. Repeated consumption for the
// same order is a no-op, which keeps at-least-once event delivery safe.
func (s *IngredientStock) Consume(orderID uuid.UUID, quantity decimal.Decimal) error {
	if orderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Consume quantity must be positive")
	}
	if s.ConsumedOrders[orderID] {
		return nil
	}

	s.QuantityOnHand = s.QuantityOnHand.Sub(quantity)
	s.ConsumedOrders[orderID] = true
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(NewStockConsumedEvent(s, orderID, quantity))
	s.checkThreshold()
	return nil
}

// SetPrice overrides the unit cost directly (supplier price change without a
// delivery)
func (s *IngredientStock) SetPrice(unitCost decimal.Decimal) error {
	if unitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	rounded := unitCost.Round(4)
	if s.UnitCost.Equal(rounded) {
		return nil
	}

	oldCost := s.UnitCost
	s.UnitCost = rounded
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(NewIngredientCostChangedEvent(s, oldCost))
	return nil
}

// SetThreshold sets the minimum quantity that triggers a low-stock alert
func (s *IngredientStock) SetThreshold(minQuantity decimal.Decimal) error {
	if minQuantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Minimum quantity cannot be negative")
	}
	s.MinQuantity = minQuantity
	s.UpdatedAt = time.Now()
	s.checkThreshold()
	return nil
}

// Adjust corrects the on-hand quantity after a physical count
func (s *IngredientStock) Adjust(newQuantity decimal.Decimal, reason string) error {
	if newQuantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Adjusted quantity cannot be negative")
	}

	old := s.QuantityOnHand
	if old.Equal(newQuantity) {
		return nil
	}
	s.QuantityOnHand = newQuantity
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(NewStockAdjustedEvent(s, old, reason))
	s.checkThreshold()
	return nil
}

// IsBelowThreshold reports whether on-hand stock is under the alert minimum
func (s *IngredientStock) IsBelowThreshold() bool {
	return s.MinQuantity.IsPositive() && s.QuantityOnHand.LessThan(s.MinQuantity)
}

func (s *IngredientStock) checkThreshold() {
	if s.IsBelowThreshold() {
		s.AddDomainEvent(NewStockBelowThresholdEvent(s))
	}
}
