package sales

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDay(t *testing.T) *SalesDay {
	t.Helper()
	day, err := NewSalesDay(uuid.New(), uuid.New(), "2026-09-01")
	require.NoError(t, err)
	return day
}

func TestNewSalesDay_RejectsBadDayKey(t *testing.T) {
	_, err := NewSalesDay(uuid.New(), uuid.New(), "September 1st")
	assert.Error(t, err)
}

func TestSalesDay_AccumulatesOrders(t *testing.T) {
	day := newDay(t)

	require.NoError(t, day.RecordOrder(uuid.New(), decimal.NewFromInt(40), decimal.NewFromInt(44), decimal.NewFromInt(4), 3))
	require.NoError(t, day.RecordOrder(uuid.New(), decimal.NewFromInt(60), decimal.NewFromInt(60), decimal.Zero, 2))

	assert.Equal(t, 2, day.OrderCount)
	assert.Equal(t, 5, day.ItemCount)
	assert.Equal(t, "100", day.NetRevenue.String())
	assert.Equal(t, "104", day.GrossRevenue.String())
	assert.Equal(t, "4", day.DiscountTotal.String())
}

func TestSalesDay_RecordOrderIsIdempotent(t *testing.T) {
	day := newDay(t)
	orderID := uuid.New()

	require.NoError(t, day.RecordOrder(orderID, decimal.NewFromInt(25), decimal.NewFromInt(25), decimal.Zero, 1))
	require.NoError(t, day.RecordOrder(orderID, decimal.NewFromInt(25), decimal.NewFromInt(25), decimal.Zero, 1))

	assert.Equal(t, 1, day.OrderCount)
	assert.Equal(t, "25", day.NetRevenue.String())
}

func TestSalesDay_RefundsReduceNet(t *testing.T) {
	day := newDay(t)
	orderID := uuid.New()
	require.NoError(t, day.RecordOrder(orderID, decimal.NewFromInt(50), decimal.NewFromInt(50), decimal.Zero, 2))

	require.NoError(t, day.RecordRefund(orderID, decimal.NewFromInt(20)))
	require.NoError(t, day.RecordRefund(orderID, decimal.NewFromInt(20)))

	assert.Equal(t, "20", day.RefundTotal.String())
	assert.Equal(t, "30", day.NetAfterRefunds().String())
	assert.Equal(t, 1, day.OrderCount)
}

func TestSalesDay_EventCarriesPerOrderDelta(t *testing.T) {
	day := newDay(t)
	orderID := uuid.New()
	require.NoError(t, day.RecordOrder(orderID, decimal.NewFromInt(42), decimal.NewFromInt(42), decimal.Zero, 1))

	events := day.GetDomainEvents()
	require.Len(t, events, 1)
	evt, ok := events[0].(*DailySalesUpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, orderID, evt.OrderID)
	assert.Equal(t, "42", evt.OrderNet.String())
	assert.Equal(t, "2026-09-01", evt.Day)
}
