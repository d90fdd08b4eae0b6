package costing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecipe(t *testing.T) *Recipe {
	t.Helper()
	recipe, err := NewRecipe(uuid.New(), uuid.New(), uuid.New(), "Margherita Pizza", 1)
	require.NoError(t, err)
	recipe.ClearDomainEvents()
	return recipe
}

func ingredient(name string, qty, waste, unitCost string) RecipeIngredient {
	return RecipeIngredient{
		IngredientID:    uuid.New(),
		Name:            name,
		Quantity:        decimal.RequireFromString(qty),
		UnitOfMeasure:   "kg",
		WastePercentage: decimal.RequireFromString(waste),
		UnitCost:        decimal.RequireFromString(unitCost),
	}
}

func TestNewRecipe_Validation(t *testing.T) {
	tests := []struct {
		name         string
		menuItemID   uuid.UUID
		recipeName   string
		portionYield int
		wantErr      bool
	}{
		{"valid", uuid.New(), "Pizza", 1, false},
		{"empty menu item", uuid.Nil, "Pizza", 1, true},
		{"empty name", uuid.New(), "", 1, true},
		{"zero yield", uuid.New(), "Pizza", 0, true},
		{"negative yield", uuid.New(), "Pizza", -2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecipe(uuid.New(), uuid.New(), tt.menuItemID, tt.recipeName, tt.portionYield)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRecipe_CostPerPortion_WasteAdjusted(t *testing.T) {
	recipe := newTestRecipe(t)

	// flour: 0.2kg at 10% waste and 1.00/kg -> 0.2/0.9*1.00 = 0.2222
	// cheese: 0.05kg at 0% waste and 8.00/kg -> 0.4000
	require.NoError(t, recipe.AddIngredient(ingredient("flour", "0.2", "10", "1.00")))
	require.NoError(t, recipe.AddIngredient(ingredient("cheese", "0.05", "0", "8.00")))

	assert.Equal(t, "0.62", recipe.CurrentCostPerPortion.StringFixed(2))
	assert.False(t, recipe.IsCostStale())

	require.Len(t, recipe.Ingredients, 2)
	assert.Equal(t, "0.2222", recipe.Ingredients[0].LineCost.StringFixed(4))
	assert.Equal(t, "0.4000", recipe.Ingredients[1].LineCost.StringFixed(4))
}

func TestRecipe_PortionYieldDividesTotal(t *testing.T) {
	recipe, err := NewRecipe(uuid.New(), uuid.New(), uuid.New(), "Lasagna Tray", 8)
	require.NoError(t, err)

	require.NoError(t, recipe.AddIngredient(ingredient("beef", "2", "0", "12.00")))

	// 24.00 total across 8 portions
	assert.Equal(t, "3.00", recipe.CurrentCostPerPortion.StringFixed(2))
}

func TestRecipe_ZeroIngredientsIsStaleNotError(t *testing.T) {
	recipe := newTestRecipe(t)

	breakdown, err := recipe.CalculateCost(nil)
	require.NoError(t, err)
	assert.True(t, breakdown.CostPerPortion.IsZero())
	assert.True(t, recipe.IsCostStale())
}

func TestRecipe_RemovingLastIngredientGoesStale(t *testing.T) {
	recipe := newTestRecipe(t)
	ing := ingredient("flour", "1", "0", "2.00")
	require.NoError(t, recipe.AddIngredient(ing))
	require.False(t, recipe.IsCostStale())

	require.NoError(t, recipe.RemoveIngredient(ing.IngredientID))

	assert.True(t, recipe.CurrentCostPerPortion.IsZero())
	assert.True(t, recipe.IsCostStale())
}

func TestRecipe_AddIngredient_Validation(t *testing.T) {
	recipe := newTestRecipe(t)

	tests := []struct {
		name string
		ing  RecipeIngredient
	}{
		{"zero quantity", ingredient("flour", "0", "0", "1.00")},
		{"negative quantity", ingredient("flour", "-1", "0", "1.00")},
		{"waste of 100", ingredient("flour", "1", "100", "1.00")},
		{"negative waste", ingredient("flour", "1", "-5", "1.00")},
		{"negative cost", ingredient("flour", "1", "0", "-1.00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, recipe.AddIngredient(tt.ing))
		})
	}
}

func TestRecipe_AddIngredient_RejectsDuplicate(t *testing.T) {
	recipe := newTestRecipe(t)
	ing := ingredient("flour", "1", "0", "1.00")
	require.NoError(t, recipe.AddIngredient(ing))

	err := recipe.AddIngredient(ing)
	require.Error(t, err)
	assert.Equal(t, "1.00", recipe.CurrentCostPerPortion.StringFixed(2))
	assert.Len(t, recipe.Ingredients, 1)
}

func TestRecipe_UpdateIngredient_Recalculates(t *testing.T) {
	recipe := newTestRecipe(t)
	ing := ingredient("flour", "1", "0", "1.00")
	require.NoError(t, recipe.AddIngredient(ing))
	require.Equal(t, "1.00", recipe.CurrentCostPerPortion.StringFixed(2))

	require.NoError(t, recipe.UpdateIngredient(ing.IngredientID,
		decimal.RequireFromString("2"), decimal.Zero, decimal.RequireFromString("1.50")))

	assert.Equal(t, "3.00", recipe.CurrentCostPerPortion.StringFixed(2))
}

func TestRecipe_UpdateIngredient_FailedValidationLeavesLineUnchanged(t *testing.T) {
	recipe := newTestRecipe(t)
	ing := ingredient("flour", "1", "0", "1.00")
	require.NoError(t, recipe.AddIngredient(ing))

	err := recipe.UpdateIngredient(ing.IngredientID,
		decimal.RequireFromString("-5"), decimal.Zero, decimal.RequireFromString("1.50"))
	require.Error(t, err)

	assert.Equal(t, "1", recipe.Ingredients[0].Quantity.String())
	assert.Equal(t, "1.00", recipe.CurrentCostPerPortion.StringFixed(2))
}

func TestRecipe_RecalculateFromPrices_PartialMap(t *testing.T) {
	recipe := newTestRecipe(t)
	flour := ingredient("flour", "1", "0", "1.00")
	cheese := ingredient("cheese", "1", "0", "8.00")
	require.NoError(t, recipe.AddIngredient(flour))
	require.NoError(t, recipe.AddIngredient(cheese))
	require.Equal(t, "9.00", recipe.CurrentCostPerPortion.StringFixed(2))

	require.NoError(t, recipe.RecalculateFromPrices(map[uuid.UUID]decimal.Decimal{
		flour.IngredientID: decimal.RequireFromString("2.00"),
		uuid.New():         decimal.RequireFromString("99.00"), // not in recipe, ignored
	}))

	// cheese keeps its last known price
	assert.Equal(t, "10.00", recipe.CurrentCostPerPortion.StringFixed(2))
	assert.Equal(t, "8", recipe.Ingredients[1].UnitCost.String())
}

func TestRecipe_RecalculateFromPrices_NoMatchIsNoop(t *testing.T) {
	recipe := newTestRecipe(t)
	require.NoError(t, recipe.AddIngredient(ingredient("flour", "1", "0", "1.00")))
	before := recipe.CostCalculatedAt
	recipe.ClearDomainEvents()

	require.NoError(t, recipe.RecalculateFromPrices(map[uuid.UUID]decimal.Decimal{
		uuid.New(): decimal.RequireFromString("5.00"),
	}))

	assert.Equal(t, before, recipe.CostCalculatedAt)
	assert.Empty(t, recipe.GetDomainEvents())
}

func TestRecipe_CostInvariantHoldsAfterEveryMutation(t *testing.T) {
	recipe := newTestRecipe(t)
	flour := ingredient("flour", "0.2", "10", "1.00")
	cheese := ingredient("cheese", "0.05", "0", "8.00")
	require.NoError(t, recipe.AddIngredient(flour))
	require.NoError(t, recipe.AddIngredient(cheese))
	require.NoError(t, recipe.UpdateIngredient(cheese.IngredientID,
		decimal.RequireFromString("0.1"), decimal.Zero, decimal.RequireFromString("8.00")))
	require.NoError(t, recipe.RemoveIngredient(flour.IngredientID))

	// Recompute from the current lines via the documented formula and compare.
	total := decimal.Zero
	for _, ing := range recipe.Ingredients {
		total = total.Add(ing.CalculateLineCost())
	}
	want := total.Div(decimal.NewFromInt(int64(recipe.PortionYield))).Round(2)
	assert.True(t, recipe.CurrentCostPerPortion.Equal(want))
}

func TestRecipe_CalculateCost_WithMenuPrice(t *testing.T) {
	recipe := newTestRecipe(t)
	require.NoError(t, recipe.AddIngredient(ingredient("beef", "1", "0", "3.00")))

	price := decimal.RequireFromString("10.00")
	breakdown, err := recipe.CalculateCost(&price)
	require.NoError(t, err)

	require.NotNil(t, breakdown.CostPercentage)
	require.NotNil(t, breakdown.GrossMarginPercent)
	assert.Equal(t, "0.3000", breakdown.CostPercentage.StringFixed(4))
	assert.Equal(t, "0.7000", breakdown.GrossMarginPercent.StringFixed(4))
}

func TestRecipe_CostSnapshot_ImmutableHistory(t *testing.T) {
	recipe := newTestRecipe(t)
	require.NoError(t, recipe.AddIngredient(ingredient("beef", "1", "0", "3.00")))
	costBefore := recipe.CurrentCostPerPortion

	price := decimal.RequireFromString("12.00")
	first, err := recipe.CreateCostSnapshot(&price, "menu launch")
	require.NoError(t, err)
	assert.True(t, recipe.CurrentCostPerPortion.Equal(costBefore), "snapshot must not mutate live cost")

	// Cost moves, but the recorded snapshot keeps the old value.
	require.NoError(t, recipe.RecalculateFromPrices(map[uuid.UUID]decimal.Decimal{
		recipe.Ingredients[0].IngredientID: decimal.RequireFromString("5.00"),
	}))
	_, err = recipe.CreateCostSnapshot(nil, "")
	require.NoError(t, err)

	history := recipe.CostHistoryEntries(10)
	require.Len(t, history, 2)
	assert.Equal(t, "5.00", history[0].CostPerPortion.StringFixed(2), "most recent first")
	assert.Equal(t, "3.00", history[1].CostPerPortion.StringFixed(2))
	assert.Equal(t, first.ID, history[1].ID)

	limited := recipe.CostHistoryEntries(1)
	require.Len(t, limited, 1)
	assert.Equal(t, "5.00", limited[0].CostPerPortion.StringFixed(2))
}

func TestRecipe_EmitsCostCalculatedEvent(t *testing.T) {
	recipe := newTestRecipe(t)
	require.NoError(t, recipe.AddIngredient(ingredient("beef", "1", "0", "3.00")))

	events := recipe.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypeIngredientAdded, events[0].EventType())
	assert.Equal(t, EventTypeRecipeCostCalculated, events[1].EventType())

	costEvt := events[1].(*RecipeCostCalculatedEvent)
	assert.True(t, costEvt.CostPerPortion.Equal(recipe.CurrentCostPerPortion))
	assert.Equal(t, recipe.TenantID, costEvt.TenantID())
}
