package loyalty

import (
	"sort"
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PointsTransactionType classifies a points ledger row
type PointsTransactionType string

const (
	PointsTransactionEarned   PointsTransactionType = "EARNED"
	PointsTransactionRedeemed PointsTransactionType = "REDEEMED"
)

// PointsTransaction is an immutable ledger row. Points are signed: earns are
// positive, redemptions negative. The running balance fields must reconcile
// with the signed sum of all rows.
type PointsTransaction struct {
	ID            uuid.UUID             `json:"id"`
	Type          PointsTransactionType `json:"type"`
	Points        int64                 `json:"points"`
	BalanceBefore int64                 `json:"balance_before"`
	BalanceAfter  int64                 `json:"balance_after"`
	OrderID       *uuid.UUID            `json:"order_id,omitempty"`
	RewardType    string                `json:"reward_type,omitempty"`
	ProcessedAt   time.Time             `json:"processed_at"`
}

// Tier is one rung of the loyalty ladder
type Tier struct {
	Name         string          `json:"name"`
	MinimumSpend decimal.Decimal `json:"minimum_spend"`
	Multiplier   decimal.Decimal `json:"multiplier"`
}

// CustomerSpendProjection is the aggregate root for customer loyalty. The
// summary fields (spend totals, available points, tier) are a materialized
// cache over the append-only points log plus the recorded order sets; the log
// is the source of truth and the cache must stay recomputable from it.
type CustomerSpendProjection struct {
	shared.TenantAggregateRoot
	CustomerID            uuid.UUID           `json:"customer_id"`
	LifetimeSpend         decimal.Decimal     `json:"lifetime_spend"`
	YearToDateSpend       decimal.Decimal     `json:"year_to_date_spend"`
	AvailablePoints       int64               `json:"available_points"`
	CurrentTier           string              `json:"current_tier"`
	TierConfig            []Tier              `json:"tier_config"`
	PointsPerCurrencyUnit decimal.Decimal     `json:"points_per_currency_unit"`
	PointsValueInCurrency decimal.Decimal     `json:"points_value_in_currency"`
	RecordedOrders        map[uuid.UUID]bool  `json:"recorded_orders"`
	ReversedOrders        map[uuid.UUID]bool  `json:"reversed_orders"`
	Transactions          []PointsTransaction `json:"transactions"`
}

// DefaultTierConfig is the ladder used until a tenant configures its own
func DefaultTierConfig() []Tier {
	return []Tier{
		{Name: "Bronze", MinimumSpend: decimal.Zero, Multiplier: decimal.NewFromInt(1)},
	}
}

// NewCustomerSpendProjection creates a loyalty projection for a customer.
// The customer ID doubles as the aggregate identity.
func NewCustomerSpendProjection(tenantID, customerID uuid.UUID) (*CustomerSpendProjection, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}

	p := &CustomerSpendProjection{
		TenantAggregateRoot:   shared.NewTenantAggregateRootWithID(tenantID, customerID),
		CustomerID:            customerID,
		LifetimeSpend:         decimal.Zero,
		YearToDateSpend:       decimal.Zero,
		TierConfig:            DefaultTierConfig(),
		PointsPerCurrencyUnit: decimal.NewFromInt(1),
		PointsValueInCurrency: decimal.RequireFromString("0.01"),
		RecordedOrders:        make(map[uuid.UUID]bool),
		ReversedOrders:        make(map[uuid.UUID]bool),
		Transactions:          make([]PointsTransaction, 0),
	}
	p.CurrentTier = p.tierFor(decimal.Zero).Name

	p.AddDomainEvent(NewLoyaltyInitializedEvent(p))
	return p, nil
}

// RecordSpend applies an order's net spend and awards points. The points for
// the order use the tier multiplier in force before the spend is applied; the
// tier is then recomputed, so one order can cross a boundary without
// retroactive re-rating. Repeated calls with the same order ID are no-ops.
func (p *CustomerSpendProjection) RecordSpend(orderID uuid.UUID, netSpend, grossSpend, discountAmount decimal.Decimal, itemCount int, date time.Time) error {
	if orderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if netSpend.IsNegative() {
		return shared.NewDomainError("INVALID_SPEND", "Net spend cannot be negative")
	}
	if p.RecordedOrders[orderID] {
		return nil
	}

	preTier := p.tierFor(p.YearToDateSpend)

	p.LifetimeSpend = p.LifetimeSpend.Add(netSpend)
	p.YearToDateSpend = p.YearToDateSpend.Add(netSpend)
	p.RecordedOrders[orderID] = true

	pointsEarned := netSpend.Mul(p.PointsPerCurrencyUnit).Mul(preTier.Multiplier).Floor().IntPart()
	if pointsEarned > 0 {
		p.appendTransaction(PointsTransactionEarned, pointsEarned, &orderID, "")
	}

	p.UpdatedAt = time.Now()

	p.AddDomainEvent(NewSpendRecordedEvent(p, orderID, netSpend, grossSpend, discountAmount, itemCount, date))
	if pointsEarned > 0 {
		p.AddDomainEvent(NewPointsEarnedEvent(p, orderID, pointsEarned, preTier.Name))
	}
	p.refreshTier()
	return nil
}

// ReverseSpend subtracts a reversed order's amount from the spend totals.
// Already-earned points stay earned (the ledger is immutable); the reversal
// only prevents double counting. The second reversal of an order is a no-op.
func (p *CustomerSpendProjection) ReverseSpend(orderID uuid.UUID, amount decimal.Decimal, reason string) error {
	if orderID == uuid.Nil {
		return shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_SPEND", "Reversal amount cannot be negative")
	}
	if !p.RecordedOrders[orderID] {
		return shared.NewDomainError("ORDER_NOT_RECORDED", "Cannot reverse an order that was never recorded")
	}
	if p.ReversedOrders[orderID] {
		return nil
	}

	p.LifetimeSpend = decimal.Max(decimal.Zero, p.LifetimeSpend.Sub(amount))
	p.YearToDateSpend = decimal.Max(decimal.Zero, p.YearToDateSpend.Sub(amount))
	p.ReversedOrders[orderID] = true
	p.UpdatedAt = time.Now()

	p.AddDomainEvent(NewSpendReversedEvent(p, orderID, amount, reason))
	p.refreshTier()
	return nil
}

// RedeemPoints deducts points in exchange for a reward. The redemption value
// is priced at the current PointsValueInCurrency, not the value at earn time.
func (p *CustomerSpendProjection) RedeemPoints(orderID uuid.UUID, points int64, rewardType string) (decimal.Decimal, error) {
	if points <= 0 {
		return decimal.Zero, shared.NewDomainError("INVALID_POINTS", "Points to redeem must be positive")
	}
	if points > p.AvailablePoints {
		return decimal.Zero, shared.ErrInsufficientPoints
	}

	value := decimal.NewFromInt(points).Mul(p.PointsValueInCurrency)

	var orderRef *uuid.UUID
	if orderID != uuid.Nil {
		orderRef = &orderID
	}
	p.appendTransaction(PointsTransactionRedeemed, -points, orderRef, rewardType)
	p.UpdatedAt = time.Now()

	p.AddDomainEvent(NewPointsRedeemedEvent(p, orderID, points, rewardType, value))
	return value, nil
}

// ConfigureTiers replaces the tier ladder. Tiers are kept sorted ascending by
// minimum spend; the current tier is recomputed against the new ladder.
func (p *CustomerSpendProjection) ConfigureTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return shared.NewDomainError("INVALID_TIERS", "Tier configuration cannot be empty")
	}
	seen := make(map[string]bool, len(tiers))
	for _, t := range tiers {
		if t.Name == "" {
			return shared.NewDomainError("INVALID_TIERS", "Tier name cannot be empty")
		}
		if seen[t.Name] {
			return shared.NewDomainError("INVALID_TIERS", "Duplicate tier name: "+t.Name)
		}
		seen[t.Name] = true
		if t.MinimumSpend.IsNegative() {
			return shared.NewDomainError("INVALID_TIERS", "Tier minimum spend cannot be negative")
		}
		if t.Multiplier.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVALID_TIERS", "Tier multiplier must be positive")
		}
	}

	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MinimumSpend.LessThan(sorted[j].MinimumSpend)
	})
	if !sorted[0].MinimumSpend.IsZero() {
		return shared.NewDomainError("INVALID_TIERS", "Lowest tier must start at zero spend")
	}

	p.TierConfig = sorted
	p.UpdatedAt = time.Now()

	p.AddDomainEvent(NewTiersConfiguredEvent(p))
	p.refreshTier()
	return nil
}

// ResetYearToDate zeroes the YTD spend at the start of a loyalty year and
// recomputes the tier. Lifetime spend and points are untouched.
func (p *CustomerSpendProjection) ResetYearToDate() {
	if p.YearToDateSpend.IsZero() {
		return
	}
	p.YearToDateSpend = decimal.Zero
	p.UpdatedAt = time.Now()

	p.AddDomainEvent(NewYearToDateResetEvent(p))
	p.refreshTier()
}

// RecomputePointsFromLog returns the signed sum of the points ledger. It must
// always equal AvailablePoints.
func (p *CustomerSpendProjection) RecomputePointsFromLog() int64 {
	var sum int64
	for _, tx := range p.Transactions {
		sum += tx.Points
	}
	return sum
}

func (p *CustomerSpendProjection) appendTransaction(txType PointsTransactionType, points int64, orderID *uuid.UUID, rewardType string) {
	before := p.AvailablePoints
	p.AvailablePoints += points
	p.Transactions = append(p.Transactions, PointsTransaction{
		ID:            uuid.New(),
		Type:          txType,
		Points:        points,
		BalanceBefore: before,
		BalanceAfter:  p.AvailablePoints,
		OrderID:       orderID,
		RewardType:    rewardType,
		ProcessedAt:   time.Now(),
	})
}

// tierFor returns the highest tier whose minimum spend is within the given
// YTD spend; ties break toward the highest threshold.
func (p *CustomerSpendProjection) tierFor(ytdSpend decimal.Decimal) Tier {
	best := p.TierConfig[0]
	for _, t := range p.TierConfig {
		if t.MinimumSpend.LessThanOrEqual(ytdSpend) && t.MinimumSpend.GreaterThanOrEqual(best.MinimumSpend) {
			best = t
		}
	}
	return best
}

func (p *CustomerSpendProjection) refreshTier() {
	next := p.tierFor(p.YearToDateSpend).Name
	if next == p.CurrentTier {
		return
	}
	previous := p.CurrentTier
	p.CurrentTier = next
	p.AddDomainEvent(NewTierChangedEvent(p, previous, next))
}
