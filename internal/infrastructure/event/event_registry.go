package event

import (
	"github.com/dinehub/backend/internal/domain/accounting"
	"github.com/dinehub/backend/internal/domain/alerting"
	"github.com/dinehub/backend/internal/domain/booking"
	"github.com/dinehub/backend/internal/domain/costing"
	"github.com/dinehub/backend/internal/domain/gateway"
	"github.com/dinehub/backend/internal/domain/giftcard"
	"github.com/dinehub/backend/internal/domain/inventory"
	"github.com/dinehub/backend/internal/domain/loyalty"
	"github.com/dinehub/backend/internal/domain/ordering"
	"github.com/dinehub/backend/internal/domain/sales"
	"github.com/dinehub/backend/internal/domain/workforce"
)

// RegisterAllEvents registers every domain event shape with the serializer.
// Outbox rows store events by type name; an unregistered type fails
// deserialization at delivery time, so every new event lands here.
func RegisterAllEvents(serializer *EventSerializer) {
	// ordering
	serializer.Register(ordering.EventTypeOrderCompleted, &ordering.OrderCompletedEvent{})
	serializer.Register(ordering.EventTypeOrderRefunded, &ordering.OrderRefundedEvent{})

	// costing
	serializer.Register(costing.EventTypeRecipeCreated, &costing.RecipeCreatedEvent{})
	serializer.Register(costing.EventTypeRecipeUpdated, &costing.RecipeUpdatedEvent{})
	serializer.Register(costing.EventTypeIngredientAdded, &costing.IngredientAddedEvent{})
	serializer.Register(costing.EventTypeIngredientUpdated, &costing.IngredientUpdatedEvent{})
	serializer.Register(costing.EventTypeIngredientRemoved, &costing.IngredientRemovedEvent{})
	serializer.Register(costing.EventTypeRecipeCostCalculated, &costing.RecipeCostCalculatedEvent{})
	serializer.Register(costing.EventTypeCostSnapshotCreated, &costing.CostSnapshotCreatedEvent{})

	// loyalty
	serializer.Register(loyalty.EventTypeLoyaltyInitialized, &loyalty.LoyaltyInitializedEvent{})
	serializer.Register(loyalty.EventTypeSpendRecorded, &loyalty.SpendRecordedEvent{})
	serializer.Register(loyalty.EventTypeSpendReversed, &loyalty.SpendReversedEvent{})
	serializer.Register(loyalty.EventTypePointsEarned, &loyalty.PointsEarnedEvent{})
	serializer.Register(loyalty.EventTypePointsRedeemed, &loyalty.PointsRedeemedEvent{})
	serializer.Register(loyalty.EventTypeTierChanged, &loyalty.TierChangedEvent{})
	serializer.Register(loyalty.EventTypeTiersConfigured, &loyalty.TiersConfiguredEvent{})
	serializer.Register(loyalty.EventTypeYearToDateReset, &loyalty.YearToDateResetEvent{})

	// inventory
	serializer.Register(inventory.EventTypeIngredientReceived, &inventory.IngredientReceivedEvent{})
	serializer.Register(inventory.EventTypeStockConsumed, &inventory.StockConsumedEvent{})
	serializer.Register(inventory.EventTypeStockAdjusted, &inventory.StockAdjustedEvent{})
	serializer.Register(inventory.EventTypeIngredientCostChanged, &inventory.IngredientCostChangedEvent{})
	serializer.Register(inventory.EventTypeStockBelowThreshold, &inventory.StockBelowThresholdEvent{})

	// gateway
	serializer.Register(gateway.EventTypeMerchantCreated, &gateway.MerchantCreatedEvent{})
	serializer.Register(gateway.EventTypeAPIKeyCreated, &gateway.APIKeyCreatedEvent{})
	serializer.Register(gateway.EventTypeAPIKeyRevoked, &gateway.APIKeyRevokedEvent{})
	serializer.Register(gateway.EventTypeAPIKeyRolled, &gateway.APIKeyRolledEvent{})
	serializer.Register(gateway.EventTypeTerminalRegistered, &gateway.TerminalRegisteredEvent{})
	serializer.Register(gateway.EventTypeRefundRequested, &gateway.RefundRequestedEvent{})
	serializer.Register(gateway.EventTypeRefundResolved, &gateway.RefundResolvedEvent{})

	// workforce
	serializer.Register(workforce.EventTypeEmployeeClockedIn, &workforce.EmployeeClockedInEvent{})
	serializer.Register(workforce.EventTypeEmployeeClockedOut, &workforce.EmployeeClockedOutEvent{})
	serializer.Register(workforce.EventTypeShiftApproved, &workforce.ShiftApprovedEvent{})

	// booking
	serializer.Register(booking.EventTypeDepositHeld, &booking.DepositHeldEvent{})
	serializer.Register(booking.EventTypeDepositResolved, &booking.DepositResolvedEvent{})

	// gift cards
	serializer.Register(giftcard.EventTypeGiftCardIssued, &giftcard.GiftCardIssuedEvent{})
	serializer.Register(giftcard.EventTypeGiftCardReloaded, &giftcard.GiftCardReloadedEvent{})
	serializer.Register(giftcard.EventTypeGiftCardRedeemed, &giftcard.GiftCardRedeemedEvent{})

	// sales
	serializer.Register(sales.EventTypeDailySalesUpdated, &sales.DailySalesUpdatedEvent{})
	serializer.Register(sales.EventTypeDailySalesRefunded, &sales.DailySalesRefundedEvent{})

	// accounting
	serializer.Register(accounting.EventTypeJournalEntryPosted, &accounting.JournalEntryPostedEvent{})

	// alerting
	serializer.Register(alerting.EventTypeAlertRaised, &alerting.AlertRaisedEvent{})
}
