package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/ordering"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturingDispatcher struct {
	keys     []actor.Key
	commands []actor.Command
	err      error
}

func (d *capturingDispatcher) Dispatch(_ context.Context, key actor.Key, cmd actor.Command) (any, int, error) {
	d.keys = append(d.keys, key)
	d.commands = append(d.commands, cmd)
	return nil, 1, d.err
}

type staticUsage struct {
	usages map[uuid.UUID][]IngredientUsage
}

func (s *staticUsage) IngredientsForMenuItem(_ context.Context, _ uuid.UUID, menuItemID uuid.UUID) ([]IngredientUsage, error) {
	return s.usages[menuItemID], nil
}

func TestStockConsumptionHandler_SumsUsageAcrossLines(t *testing.T) {
	flour, tomato := uuid.New(), uuid.New()
	pizza, pasta := uuid.New(), uuid.New()
	usage := &staticUsage{usages: map[uuid.UUID][]IngredientUsage{
		pizza: {
			{IngredientID: flour, QuantityPerPortion: decimal.RequireFromString("0.3")},
			{IngredientID: tomato, QuantityPerPortion: decimal.RequireFromString("0.1")},
		},
		pasta: {
			{IngredientID: flour, QuantityPerPortion: decimal.RequireFromString("0.2")},
		},
	}}

	dispatcher := &capturingDispatcher{}
	handler := NewStockConsumptionHandler(dispatcher, usage, zap.NewNop())

	tenantID := uuid.New()
	evt := ordering.NewOrderCompletedEvent(tenantID, uuid.New(), uuid.New(),
		decimal.NewFromInt(40), decimal.NewFromInt(40), decimal.Zero,
		[]ordering.OrderLine{
			{MenuItemID: pizza, Quantity: 2, UnitPrice: decimal.NewFromInt(12)},
			{MenuItemID: pasta, Quantity: 1, UnitPrice: decimal.NewFromInt(16)},
		}, time.Now())

	require.NoError(t, handler.Handle(context.Background(), evt))
	require.Len(t, dispatcher.commands, 2)

	byIngredient := make(map[uuid.UUID]decimal.Decimal)
	for i, cmd := range dispatcher.commands {
		consume := cmd.(ConsumeStockCommand)
		assert.Equal(t, evt.OrderID, consume.OrderID)
		assert.Equal(t, evt.EventID(), consume.SourceEventID())
		byIngredient[dispatcher.keys[i].EntityID] = consume.Quantity
	}
	// 2 pizzas * 0.3 + 1 pasta * 0.2 flour, 2 pizzas * 0.1 tomato.
	assert.Equal(t, "0.8", byIngredient[flour].String())
	assert.Equal(t, "0.2", byIngredient[tomato].String())
}

func TestStockConsumptionHandler_NoRecipeIsNoop(t *testing.T) {
	dispatcher := &capturingDispatcher{}
	handler := NewStockConsumptionHandler(dispatcher, &staticUsage{}, zap.NewNop())

	evt := ordering.NewOrderCompletedEvent(uuid.New(), uuid.New(), uuid.New(),
		decimal.NewFromInt(10), decimal.NewFromInt(10), decimal.Zero,
		[]ordering.OrderLine{{MenuItemID: uuid.New(), Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
		time.Now())

	require.NoError(t, handler.Handle(context.Background(), evt))
	assert.Empty(t, dispatcher.commands)
}

func TestStockConsumptionHandler_MissingStockRecordAbsorbed(t *testing.T) {
	menuItem := uuid.New()
	usage := &staticUsage{usages: map[uuid.UUID][]IngredientUsage{
		menuItem: {{IngredientID: uuid.New(), QuantityPerPortion: decimal.NewFromInt(1)}},
	}}
	dispatcher := &capturingDispatcher{err: shared.ErrNotFound}
	handler := NewStockConsumptionHandler(dispatcher, usage, zap.NewNop())

	evt := ordering.NewOrderCompletedEvent(uuid.New(), uuid.New(), uuid.New(),
		decimal.NewFromInt(10), decimal.NewFromInt(10), decimal.Zero,
		[]ordering.OrderLine{{MenuItemID: menuItem, Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
		time.Now())

	assert.NoError(t, handler.Handle(context.Background(), evt))
}

func TestStockConsumptionHandler_InfrastructureErrorRedelivers(t *testing.T) {
	menuItem := uuid.New()
	usage := &staticUsage{usages: map[uuid.UUID][]IngredientUsage{
		menuItem: {{IngredientID: uuid.New(), QuantityPerPortion: decimal.NewFromInt(1)}},
	}}
	dispatcher := &capturingDispatcher{err: shared.ErrBusy}
	handler := NewStockConsumptionHandler(dispatcher, usage, zap.NewNop())

	evt := ordering.NewOrderCompletedEvent(uuid.New(), uuid.New(), uuid.New(),
		decimal.NewFromInt(10), decimal.NewFromInt(10), decimal.Zero,
		[]ordering.OrderLine{{MenuItemID: menuItem, Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
		time.Now())

	assert.ErrorIs(t, handler.Handle(context.Background(), evt), shared.ErrBusy)
}
