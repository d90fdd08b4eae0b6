package loyalty

import (
	"testing"
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bronzeSilverConfig() []Tier {
	return []Tier{
		{Name: "Bronze", MinimumSpend: decimal.Zero, Multiplier: decimal.NewFromInt(1)},
		{Name: "Silver", MinimumSpend: decimal.NewFromInt(500), Multiplier: decimal.RequireFromString("1.25")},
	}
}

func newTestProjection(t *testing.T) *CustomerSpendProjection {
	t.Helper()
	p, err := NewCustomerSpendProjection(uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, p.ConfigureTiers(bronzeSilverConfig()))
	p.ClearDomainEvents()
	return p
}

func recordSpend(t *testing.T, p *CustomerSpendProjection, orderID uuid.UUID, net string) {
	t.Helper()
	amount := decimal.RequireFromString(net)
	require.NoError(t, p.RecordSpend(orderID, amount, amount, decimal.Zero, 1, time.Now()))
}

func TestRecordSpend_PointsUsePreSpendTier(t *testing.T) {
	p := newTestProjection(t)

	// Spending 600 from Bronze earns at the Bronze multiplier even though the
	// order pushes YTD past the Silver threshold.
	recordSpend(t, p, uuid.New(), "600")

	assert.Equal(t, int64(600), p.AvailablePoints)
	assert.Equal(t, "Silver", p.CurrentTier)
	assert.Equal(t, "600", p.YearToDateSpend.String())

	types := make([]string, 0)
	for _, evt := range p.GetDomainEvents() {
		types = append(types, evt.EventType())
	}
	assert.Equal(t, []string{EventTypeSpendRecorded, EventTypePointsEarned, EventTypeTierChanged}, types)
}

func TestRecordSpend_SilverMultiplierAppliesToNextOrder(t *testing.T) {
	p := newTestProjection(t)
	recordSpend(t, p, uuid.New(), "600")

	recordSpend(t, p, uuid.New(), "100")

	// 100 * 1 * 1.25 = 125
	assert.Equal(t, int64(725), p.AvailablePoints)
}

func TestRecordSpend_FloorsFractionalPoints(t *testing.T) {
	p := newTestProjection(t)
	recordSpend(t, p, uuid.New(), "600")

	recordSpend(t, p, uuid.New(), "10.50")

	// 10.50 * 1.25 = 13.125 -> 13
	assert.Equal(t, int64(613), p.AvailablePoints)
}

func TestRecordSpend_IdempotentPerOrder(t *testing.T) {
	p := newTestProjection(t)
	orderID := uuid.New()
	recordSpend(t, p, orderID, "100")
	p.ClearDomainEvents()

	recordSpend(t, p, orderID, "100")

	assert.Equal(t, int64(100), p.AvailablePoints)
	assert.Equal(t, "100", p.LifetimeSpend.String())
	assert.Empty(t, p.GetDomainEvents())
}

func TestRedeemPoints_InsufficientLeavesBalanceUnchanged(t *testing.T) {
	p := newTestProjection(t)
	recordSpend(t, p, uuid.New(), "600")

	_, err := p.RedeemPoints(uuid.New(), 700, "free-dessert")

	require.ErrorIs(t, err, shared.ErrInsufficientPoints)
	assert.Equal(t, int64(600), p.AvailablePoints)
	assert.Len(t, p.Transactions, 1)
}

func TestRedeemPoints_ValuedAtRedemptionTime(t *testing.T) {
	p := newTestProjection(t)
	recordSpend(t, p, uuid.New(), "600")

	// Point value changes after the points were earned.
	p.PointsValueInCurrency = decimal.RequireFromString("0.02")
	value, err := p.RedeemPoints(uuid.New(), 100, "discount")
	require.NoError(t, err)

	assert.Equal(t, "2.00", value.StringFixed(2))
	assert.Equal(t, int64(500), p.AvailablePoints)
}

func TestReverseSpend_SecondCallIsNoop(t *testing.T) {
	p := newTestProjection(t)
	orderID := uuid.New()
	recordSpend(t, p, orderID, "600")
	p.ClearDomainEvents()

	amount := decimal.RequireFromString("600")
	require.NoError(t, p.ReverseSpend(orderID, amount, "chargeback"))
	assert.Equal(t, "0", p.YearToDateSpend.String())
	assert.Equal(t, "Bronze", p.CurrentTier)
	firstEvents := len(p.GetDomainEvents())

	require.NoError(t, p.ReverseSpend(orderID, amount, "chargeback"))
	assert.Equal(t, "0", p.YearToDateSpend.String())
	assert.Len(t, p.GetDomainEvents(), firstEvents)
}

func TestReverseSpend_DoesNotRevokeEarnedPoints(t *testing.T) {
	p := newTestProjection(t)
	orderID := uuid.New()
	recordSpend(t, p, orderID, "200")

	require.NoError(t, p.ReverseSpend(orderID, decimal.RequireFromString("200"), "refund"))

	assert.Equal(t, int64(200), p.AvailablePoints)
	assert.Len(t, p.Transactions, 1)
}

func TestReverseSpend_UnknownOrderRejected(t *testing.T) {
	p := newTestProjection(t)

	err := p.ReverseSpend(uuid.New(), decimal.NewFromInt(10), "oops")
	assert.Error(t, err)
}

func TestPointsConservation(t *testing.T) {
	p := newTestProjection(t)
	recordSpend(t, p, uuid.New(), "600")
	recordSpend(t, p, uuid.New(), "123.45")
	_, err := p.RedeemPoints(uuid.New(), 250, "free-meal")
	require.NoError(t, err)
	recordSpend(t, p, uuid.New(), "42")

	assert.Equal(t, p.AvailablePoints, p.RecomputePointsFromLog(),
		"available points must equal the signed sum of the ledger")

	// Balance fields of each row chain correctly.
	var running int64
	for _, tx := range p.Transactions {
		assert.Equal(t, running, tx.BalanceBefore)
		running += tx.Points
		assert.Equal(t, running, tx.BalanceAfter)
	}
}

func TestConfigureTiers_Validation(t *testing.T) {
	p := newTestProjection(t)

	tests := []struct {
		name  string
		tiers []Tier
	}{
		{"empty", nil},
		{"no zero base", []Tier{{Name: "Gold", MinimumSpend: decimal.NewFromInt(100), Multiplier: decimal.NewFromInt(2)}}},
		{"duplicate name", []Tier{
			{Name: "Bronze", MinimumSpend: decimal.Zero, Multiplier: decimal.NewFromInt(1)},
			{Name: "Bronze", MinimumSpend: decimal.NewFromInt(100), Multiplier: decimal.NewFromInt(2)},
		}},
		{"zero multiplier", []Tier{{Name: "Bronze", MinimumSpend: decimal.Zero, Multiplier: decimal.Zero}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, p.ConfigureTiers(tt.tiers))
		})
	}
}

func TestConfigureTiers_RecomputesCurrentTier(t *testing.T) {
	p := newTestProjection(t)
	recordSpend(t, p, uuid.New(), "300")
	require.Equal(t, "Bronze", p.CurrentTier)

	require.NoError(t, p.ConfigureTiers([]Tier{
		{Name: "Member", MinimumSpend: decimal.Zero, Multiplier: decimal.NewFromInt(1)},
		{Name: "Regular", MinimumSpend: decimal.NewFromInt(250), Multiplier: decimal.RequireFromString("1.1")},
	}))

	assert.Equal(t, "Regular", p.CurrentTier)
}

func TestTierSelection_HighestQualifyingThresholdWins(t *testing.T) {
	p := newTestProjection(t)
	require.NoError(t, p.ConfigureTiers([]Tier{
		{Name: "Bronze", MinimumSpend: decimal.Zero, Multiplier: decimal.NewFromInt(1)},
		{Name: "Silver", MinimumSpend: decimal.NewFromInt(500), Multiplier: decimal.RequireFromString("1.25")},
		{Name: "Gold", MinimumSpend: decimal.NewFromInt(2000), Multiplier: decimal.RequireFromString("1.5")},
	}))

	recordSpend(t, p, uuid.New(), "2500")

	assert.Equal(t, "Gold", p.CurrentTier)
}

func TestResetYearToDate_DemotesTierKeepsLifetime(t *testing.T) {
	p := newTestProjection(t)
	recordSpend(t, p, uuid.New(), "600")
	require.Equal(t, "Silver", p.CurrentTier)
	p.ClearDomainEvents()

	p.ResetYearToDate()

	assert.Equal(t, "0", p.YearToDateSpend.String())
	assert.Equal(t, "600", p.LifetimeSpend.String())
	assert.Equal(t, "Bronze", p.CurrentTier)
	assert.Equal(t, int64(600), p.AvailablePoints)

	// Second reset is a no-op.
	p.ClearDomainEvents()
	p.ResetYearToDate()
	assert.Empty(t, p.GetDomainEvents())
}
