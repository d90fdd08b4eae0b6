package loyalty

import (
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeCustomerSpendProjection = "CustomerSpendProjection"

// Event type constants
const (
	EventTypeLoyaltyInitialized = "LoyaltyAccountInitialized"
	EventTypeSpendRecorded      = "SpendRecorded"
	EventTypePointsEarned       = "PointsEarned"
	EventTypePointsRedeemed     = "PointsRedeemed"
	EventTypeSpendReversed      = "SpendReversed"
	EventTypeTierChanged        = "TierChanged"
	EventTypeTiersConfigured    = "TiersConfigured"
	EventTypeYearToDateReset    = "YearToDateReset"
)

// LoyaltyInitializedEvent is raised when a customer's projection is created
type LoyaltyInitializedEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Tier       string    `json:"tier"`
}

// NewLoyaltyInitializedEvent creates a new LoyaltyInitializedEvent
func NewLoyaltyInitializedEvent(p *CustomerSpendProjection) *LoyaltyInitializedEvent {
	return &LoyaltyInitializedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLoyaltyInitialized, shared.NamespaceCustomerSpend, AggregateTypeCustomerSpendProjection, p.ID, p.TenantID),
		CustomerID:      p.CustomerID,
		Tier:            p.CurrentTier,
	}
}

// SpendRecordedEvent is raised when an order's spend is applied to the
// projection. PointsEarned for the same order is emitted in the same outcome,
// atomically with the state write.
type SpendRecordedEvent struct {
	shared.BaseDomainEvent
	CustomerID      uuid.UUID       `json:"customer_id"`
	OrderID         uuid.UUID       `json:"order_id"`
	NetSpend        decimal.Decimal `json:"net_spend"`
	GrossSpend      decimal.Decimal `json:"gross_spend"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	ItemCount       int             `json:"item_count"`
	SpendDate       time.Time       `json:"spend_date"`
	LifetimeSpend   decimal.Decimal `json:"lifetime_spend"`
	YearToDateSpend decimal.Decimal `json:"year_to_date_spend"`
}

// NewSpendRecordedEvent creates a new SpendRecordedEvent
func NewSpendRecordedEvent(p *CustomerSpendProjection, orderID uuid.UUID, net, gross, discount decimal.Decimal, itemCount int, date time.Time) *SpendRecordedEvent {
	return &SpendRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSpendRecorded, shared.NamespaceCustomerSpend, AggregateTypeCustomerSpendProjection, p.ID, p.TenantID),
		CustomerID:      p.CustomerID,
		OrderID:         orderID,
		NetSpend:        net,
		GrossSpend:      gross,
		DiscountAmount:  discount,
		ItemCount:       itemCount,
		SpendDate:       date,
		LifetimeSpend:   p.LifetimeSpend,
		YearToDateSpend: p.YearToDateSpend,
	}
}

// PointsEarnedEvent is raised when points are awarded for an order
type PointsEarnedEvent struct {
	shared.BaseDomainEvent
	CustomerID      uuid.UUID `json:"customer_id"`
	OrderID         uuid.UUID `json:"order_id"`
	Points          int64     `json:"points"`
	EarnedAtTier    string    `json:"earned_at_tier"`
	AvailablePoints int64     `json:"available_points"`
}

// NewPointsEarnedEvent creates a new PointsEarnedEvent
func NewPointsEarnedEvent(p *CustomerSpendProjection, orderID uuid.UUID, points int64, tier string) *PointsEarnedEvent {
	return &PointsEarnedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePointsEarned, shared.NamespaceCustomerSpend, AggregateTypeCustomerSpendProjection, p.ID, p.TenantID),
		CustomerID:      p.CustomerID,
		OrderID:         orderID,
		Points:          points,
		EarnedAtTier:    tier,
		AvailablePoints: p.AvailablePoints,
	}
}

// PointsRedeemedEvent is raised when points are exchanged for a reward
type PointsRedeemedEvent struct {
	shared.BaseDomainEvent
	CustomerID      uuid.UUID       `json:"customer_id"`
	OrderID         uuid.UUID       `json:"order_id"`
	Points          int64           `json:"points"`
	RewardType      string          `json:"reward_type"`
	RedemptionValue decimal.Decimal `json:"redemption_value"`
	AvailablePoints int64           `json:"available_points"`
}

// NewPointsRedeemedEvent creates a new PointsRedeemedEvent
func NewPointsRedeemedEvent(p *CustomerSpendProjection, orderID uuid.UUID, points int64, rewardType string, value decimal.Decimal) *PointsRedeemedEvent {
	return &PointsRedeemedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePointsRedeemed, shared.NamespaceCustomerSpend, AggregateTypeCustomerSpendProjection, p.ID, p.TenantID),
		CustomerID:      p.CustomerID,
		OrderID:         orderID,
		Points:          points,
		RewardType:      rewardType,
		RedemptionValue: value,
		AvailablePoints: p.AvailablePoints,
	}
}

// SpendReversedEvent is raised when an order's spend is backed out
type SpendReversedEvent struct {
	shared.BaseDomainEvent
	CustomerID      uuid.UUID       `json:"customer_id"`
	OrderID         uuid.UUID       `json:"order_id"`
	Amount          decimal.Decimal `json:"amount"`
	Reason          string          `json:"reason,omitempty"`
	LifetimeSpend   decimal.Decimal `json:"lifetime_spend"`
	YearToDateSpend decimal.Decimal `json:"year_to_date_spend"`
}

// NewSpendReversedEvent creates a new SpendReversedEvent
func NewSpendReversedEvent(p *CustomerSpendProjection, orderID uuid.UUID, amount decimal.Decimal, reason string) *SpendReversedEvent {
	return &SpendReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSpendReversed, shared.NamespaceCustomerSpend, AggregateTypeCustomerSpendProjection, p.ID, p.TenantID),
		CustomerID:      p.CustomerID,
		OrderID:         orderID,
		Amount:          amount,
		Reason:          reason,
		LifetimeSpend:   p.LifetimeSpend,
		YearToDateSpend: p.YearToDateSpend,
	}
}

// TierChangedEvent is raised whenever the computed tier moves in either
// direction
type TierChangedEvent struct {
	shared.BaseDomainEvent
	CustomerID      uuid.UUID       `json:"customer_id"`
	PreviousTier    string          `json:"previous_tier"`
	NewTier         string          `json:"new_tier"`
	YearToDateSpend decimal.Decimal `json:"year_to_date_spend"`
}

// NewTierChangedEvent creates a new TierChangedEvent
func NewTierChangedEvent(p *CustomerSpendProjection, previous, next string) *TierChangedEvent {
	return &TierChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTierChanged, shared.NamespaceCustomerSpend, AggregateTypeCustomerSpendProjection, p.ID, p.TenantID),
		CustomerID:      p.CustomerID,
		PreviousTier:    previous,
		NewTier:         next,
		YearToDateSpend: p.YearToDateSpend,
	}
}

// TiersConfiguredEvent is raised when the tier ladder is replaced
type TiersConfiguredEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Tiers      []Tier    `json:"tiers"`
}

// NewTiersConfiguredEvent creates a new TiersConfiguredEvent
func NewTiersConfiguredEvent(p *CustomerSpendProjection) *TiersConfiguredEvent {
	tiers := make([]Tier, len(p.TierConfig))
	copy(tiers, p.TierConfig)
	return &TiersConfiguredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTiersConfigured, shared.NamespaceCustomerSpend, AggregateTypeCustomerSpendProjection, p.ID, p.TenantID),
		CustomerID:      p.CustomerID,
		Tiers:           tiers,
	}
}

// YearToDateResetEvent is raised at the start of a new loyalty year
type YearToDateResetEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
}

// NewYearToDateResetEvent creates a new YearToDateResetEvent
func NewYearToDateResetEvent(p *CustomerSpendProjection) *YearToDateResetEvent {
	return &YearToDateResetEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeYearToDateReset, shared.NamespaceCustomerSpend, AggregateTypeCustomerSpendProjection, p.ID, p.TenantID),
		CustomerID:      p.CustomerID,
	}
}
