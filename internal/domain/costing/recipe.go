package costing

import (
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	oneHundred = decimal.NewFromInt(100)
	one        = decimal.NewFromInt(1)
)

// RecipeIngredient is one costed line of a recipe. The line cost is derived:
// spoilage and trim waste inflate the quantity that must be purchased to put
// the nominal quantity on the plate.
type RecipeIngredient struct {
	IngredientID    uuid.UUID       `json:"ingredient_id"`
	Name            string          `json:"name"`
	Quantity        decimal.Decimal `json:"quantity"`
	UnitOfMeasure   string          `json:"unit_of_measure"`
	WastePercentage decimal.Decimal `json:"waste_percentage"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	LineCost        decimal.Decimal `json:"line_cost"`
}

// EffectiveQuantity returns the quantity adjusted upward for expected waste:
// quantity / (1 - waste/100)
func (ri *RecipeIngredient) EffectiveQuantity() decimal.Decimal {
	return ri.Quantity.Div(one.Sub(ri.WastePercentage.Div(oneHundred)))
}

// CalculateLineCost returns effectiveQuantity * unitCost rounded to 4 decimals
func (ri *RecipeIngredient) CalculateLineCost() decimal.Decimal {
	return ri.EffectiveQuantity().Mul(ri.UnitCost).Round(4)
}

func (ri *RecipeIngredient) validate() error {
	if ri.IngredientID == uuid.Nil {
		return shared.NewDomainError("INVALID_INGREDIENT", "Ingredient ID cannot be empty")
	}
	if ri.Quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Ingredient quantity must be positive")
	}
	if ri.WastePercentage.IsNegative() || ri.WastePercentage.GreaterThanOrEqual(oneHundred) {
		return shared.NewDomainError("INVALID_WASTE", "Waste percentage must be in [0, 100)")
	}
	if ri.UnitCost.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
	}
	return nil
}

// CostSnapshot is an immutable point-in-time record of a recipe's cost.
// Creating one never mutates the live recipe cost.
type CostSnapshot struct {
	ID                 uuid.UUID        `json:"id"`
	CostPerPortion     decimal.Decimal  `json:"cost_per_portion"`
	MenuPrice          *decimal.Decimal `json:"menu_price,omitempty"`
	CostPercentage     *decimal.Decimal `json:"cost_percentage,omitempty"`
	GrossMarginPercent *decimal.Decimal `json:"gross_margin_percent,omitempty"`
	Notes              string           `json:"notes,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
}

// CostBreakdown is the result of a cost calculation
type CostBreakdown struct {
	CostPerPortion     decimal.Decimal    `json:"cost_per_portion"`
	TotalCost          decimal.Decimal    `json:"total_cost"`
	CostPercentage     *decimal.Decimal   `json:"cost_percentage,omitempty"`
	GrossMarginPercent *decimal.Decimal   `json:"gross_margin_percent,omitempty"`
	Lines              []RecipeIngredient `json:"lines"`
}

// Recipe is the aggregate root for menu-item costing. CurrentCostPerPortion
// always reflects the documented formula over the current ingredient lines:
// every mutating command recalculates before it returns.
type Recipe struct {
	shared.TenantAggregateRoot
	MenuItemID            uuid.UUID          `json:"menu_item_id"`
	Name                  string             `json:"name"`
	PortionYield          int                `json:"portion_yield"`
	Ingredients           []RecipeIngredient `json:"ingredients"`
	CurrentCostPerPortion decimal.Decimal    `json:"current_cost_per_portion"`
	CostCalculatedAt      *time.Time         `json:"cost_calculated_at,omitempty"`
	CostHistory           []CostSnapshot     `json:"cost_history"`
}

// NewRecipe creates a new recipe for a menu item
func NewRecipe(tenantID, recipeID, menuItemID uuid.UUID, name string, portionYield int) (*Recipe, error) {
	if menuItemID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MENU_ITEM", "Menu item ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Recipe name cannot be empty")
	}
	if portionYield <= 0 {
		return nil, shared.NewDomainError("INVALID_YIELD", "Portion yield must be positive")
	}

	recipe := &Recipe{
		TenantAggregateRoot:   shared.NewTenantAggregateRootWithID(tenantID, recipeID),
		MenuItemID:            menuItemID,
		Name:                  name,
		PortionYield:          portionYield,
		Ingredients:           make([]RecipeIngredient, 0),
		CurrentCostPerPortion: decimal.Zero,
		CostHistory:           make([]CostSnapshot, 0),
	}
	recipe.AddDomainEvent(NewRecipeCreatedEvent(recipe))
	return recipe, nil
}

// IsCostStale reports whether the stored cost has never been computed from a
// non-empty ingredient list
func (r *Recipe) IsCostStale() bool {
	return r.CostCalculatedAt == nil
}

// Update changes the recipe name and portion yield
func (r *Recipe) Update(name string, portionYield int) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Recipe name cannot be empty")
	}
	if portionYield <= 0 {
		return shared.NewDomainError("INVALID_YIELD", "Portion yield must be positive")
	}

	r.Name = name
	r.PortionYield = portionYield
	r.recalculate()
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(NewRecipeUpdatedEvent(r))
	return nil
}

// AddIngredient adds a costed line to the recipe
func (r *Recipe) AddIngredient(ing RecipeIngredient) error {
	if err := ing.validate(); err != nil {
		return err
	}
	if r.findIngredient(ing.IngredientID) != nil {
		return shared.NewDomainError("DUPLICATE_INGREDIENT", "Ingredient already present in recipe")
	}

	ing.LineCost = ing.CalculateLineCost()
	r.Ingredients = append(r.Ingredients, ing)
	r.recalculate()
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(NewIngredientAddedEvent(r, &ing))
	r.AddDomainEvent(NewRecipeCostCalculatedEvent(r))
	return nil
}

// UpdateIngredient replaces the quantity, waste, and unit cost of a line
func (r *Recipe) UpdateIngredient(ingredientID uuid.UUID, quantity, wastePercentage, unitCost decimal.Decimal) error {
	ing := r.findIngredient(ingredientID)
	if ing == nil {
		return shared.NewDomainError("INGREDIENT_NOT_FOUND", "Ingredient not found in recipe")
	}

	updated := *ing
	updated.Quantity = quantity
	updated.WastePercentage = wastePercentage
	updated.UnitCost = unitCost
	if err := updated.validate(); err != nil {
		return err
	}

	*ing = updated
	r.recalculate()
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(NewIngredientUpdatedEvent(r, ing))
	r.AddDomainEvent(NewRecipeCostCalculatedEvent(r))
	return nil
}

// RemoveIngredient deletes a line from the recipe
func (r *Recipe) RemoveIngredient(ingredientID uuid.UUID) error {
	idx := -1
	for i := range r.Ingredients {
		if r.Ingredients[i].IngredientID == ingredientID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return shared.NewDomainError("INGREDIENT_NOT_FOUND", "Ingredient not found in recipe")
	}

	r.Ingredients = append(r.Ingredients[:idx], r.Ingredients[idx+1:]...)
	r.recalculate()
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(NewIngredientRemovedEvent(r, ingredientID))
	r.AddDomainEvent(NewRecipeCostCalculatedEvent(r))
	return nil
}

// CalculateCost recomputes the cost from the current lines and returns the
// breakdown. When a menu price is supplied, cost percentage and gross margin
// are included.
func (r *Recipe) CalculateCost(menuPrice *decimal.Decimal) (*CostBreakdown, error) {
	if menuPrice != nil && menuPrice.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PRICE", "Menu price must be positive")
	}

	r.recalculate()
	r.UpdatedAt = time.Now()
	r.AddDomainEvent(NewRecipeCostCalculatedEvent(r))

	return r.breakdown(menuPrice), nil
}

// RecalculateFromPrices applies new unit costs for the ingredients present in
// the supplied map and recomputes the cost. Ingredients absent from the map
// keep their last known unit cost.
func (r *Recipe) RecalculateFromPrices(priceMap map[uuid.UUID]decimal.Decimal) error {
	for _, cost := range priceMap {
		if cost.IsNegative() {
			return shared.NewDomainError("INVALID_COST", "Unit cost cannot be negative")
		}
	}

	touched := false
	for i := range r.Ingredients {
		if cost, ok := priceMap[r.Ingredients[i].IngredientID]; ok {
			r.Ingredients[i].UnitCost = cost
			touched = true
		}
	}
	if !touched {
		return nil
	}

	r.recalculate()
	r.UpdatedAt = time.Now()
	r.AddDomainEvent(NewRecipeCostCalculatedEvent(r))
	return nil
}

// CreateCostSnapshot appends an immutable snapshot of the current stored cost
// to the history. It never recalculates or mutates the live cost.
func (r *Recipe) CreateCostSnapshot(menuPrice *decimal.Decimal, notes string) (*CostSnapshot, error) {
	if menuPrice != nil && menuPrice.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_PRICE", "Menu price must be positive")
	}

	snapshot := CostSnapshot{
		ID:             uuid.New(),
		CostPerPortion: r.CurrentCostPerPortion,
		Notes:          notes,
		CreatedAt:      time.Now(),
	}
	if menuPrice != nil {
		snapshot.MenuPrice = menuPrice
		costPct := r.CurrentCostPerPortion.Div(*menuPrice).Round(4)
		margin := one.Sub(costPct)
		snapshot.CostPercentage = &costPct
		snapshot.GrossMarginPercent = &margin
	}

	r.CostHistory = append(r.CostHistory, snapshot)
	r.UpdatedAt = time.Now()

	r.AddDomainEvent(NewCostSnapshotCreatedEvent(r, &snapshot))
	return &snapshot, nil
}

// CostHistoryEntries returns up to count snapshots, most recent first
func (r *Recipe) CostHistoryEntries(count int) []CostSnapshot {
	if count <= 0 || count > len(r.CostHistory) {
		count = len(r.CostHistory)
	}
	out := make([]CostSnapshot, 0, count)
	for i := len(r.CostHistory) - 1; i >= len(r.CostHistory)-count; i-- {
		out = append(out, r.CostHistory[i])
	}
	return out
}

// UsesIngredient reports whether the recipe has a line for the ingredient
func (r *Recipe) UsesIngredient(ingredientID uuid.UUID) bool {
	return r.findIngredient(ingredientID) != nil
}

func (r *Recipe) findIngredient(id uuid.UUID) *RecipeIngredient {
	for i := range r.Ingredients {
		if r.Ingredients[i].IngredientID == id {
			return &r.Ingredients[i]
		}
	}
	return nil
}

// recalculate refreshes every line cost and the stored cost per portion.
// Line costs round to 4 decimals, the portion total to 2. A recipe with no
// ingredients has cost zero and is left stale.
func (r *Recipe) recalculate() {
	total := decimal.Zero
	for i := range r.Ingredients {
		r.Ingredients[i].LineCost = r.Ingredients[i].CalculateLineCost()
		total = total.Add(r.Ingredients[i].LineCost)
	}

	if len(r.Ingredients) == 0 {
		r.CurrentCostPerPortion = decimal.Zero
		r.CostCalculatedAt = nil
		return
	}

	r.CurrentCostPerPortion = total.Div(decimal.NewFromInt(int64(r.PortionYield))).Round(2)
	now := time.Now()
	r.CostCalculatedAt = &now
}

func (r *Recipe) breakdown(menuPrice *decimal.Decimal) *CostBreakdown {
	total := decimal.Zero
	for i := range r.Ingredients {
		total = total.Add(r.Ingredients[i].LineCost)
	}

	lines := make([]RecipeIngredient, len(r.Ingredients))
	copy(lines, r.Ingredients)

	bd := &CostBreakdown{
		CostPerPortion: r.CurrentCostPerPortion,
		TotalCost:      total,
		Lines:          lines,
	}
	if menuPrice != nil && r.CurrentCostPerPortion.IsPositive() {
		costPct := r.CurrentCostPerPortion.Div(*menuPrice).Round(4)
		margin := one.Sub(costPct)
		bd.CostPercentage = &costPct
		bd.GrossMarginPercent = &margin
	}
	return bd
}
