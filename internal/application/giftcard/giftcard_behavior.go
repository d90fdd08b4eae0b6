package giftcard

import (
	"context"
	"fmt"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/giftcard"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Command types accepted by the gift card actor
const (
	CmdIssueCard      = "giftcard.issue_card"
	CmdReloadCard     = "giftcard.reload_card"
	CmdRedeemCard     = "giftcard.redeem_card"
	CmdDeactivateCard = "giftcard.deactivate_card"
	CmdGetCard        = "giftcard.get_card"
)

// IssueCardCommand issues the card addressed by the actor key
type IssueCardCommand struct {
	TenantID       uuid.UUID       `json:"tenant_id"`
	CardID         uuid.UUID       `json:"card_id"`
	Code           string          `json:"code" binding:"required"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	Currency       string          `json:"currency"`
}

func (c IssueCardCommand) CommandType() string { return CmdIssueCard }

// ReloadCardCommand adds funds to an active card
type ReloadCardCommand struct {
	Amount decimal.Decimal `json:"amount"`
}

func (c ReloadCardCommand) CommandType() string { return CmdReloadCard }

// RedeemCardCommand spends card balance against an order
type RedeemCardCommand struct {
	OrderID uuid.UUID       `json:"order_id" binding:"required"`
	Amount  decimal.Decimal `json:"amount"`
}

func (c RedeemCardCommand) CommandType() string { return CmdRedeemCard }

// DeactivateCardCommand blocks further movements on the card
type DeactivateCardCommand struct{}

func (c DeactivateCardCommand) CommandType() string { return CmdDeactivateCard }

// GetCardCommand returns the card state
type GetCardCommand struct{}

func (c GetCardCommand) CommandType() string { return CmdGetCard }

// GiftCardBehavior is the actor behavior for the GiftCard aggregate
type GiftCardBehavior struct{}

// NewGiftCardBehavior creates a new gift card behavior
func NewGiftCardBehavior() *GiftCardBehavior { return &GiftCardBehavior{} }

// ActorType returns the actor type this behavior serves
func (b *GiftCardBehavior) ActorType() string { return giftcard.AggregateTypeGiftCard }

// NewState returns an empty card state
func (b *GiftCardBehavior) NewState() any { return &giftcard.GiftCard{} }

// Handle applies one command to the card
func (b *GiftCardBehavior) Handle(ctx context.Context, state any, cmd actor.Command) (*actor.Outcome, error) {
	card, ok := state.(*giftcard.GiftCard)
	if !ok {
		return nil, fmt.Errorf("gift card behavior: unexpected state type %T", state)
	}

	if c, ok := cmd.(IssueCardCommand); ok {
		if card.ID != uuid.Nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Gift card already issued")
		}
		created, err := giftcard.NewGiftCard(c.TenantID, c.CardID, c.Code, c.InitialBalance, c.Currency)
		if err != nil {
			return nil, err
		}
		return &actor.Outcome{Response: created, State: created, Events: created.GetDomainEvents()}, nil
	}

	if card.ID == uuid.Nil {
		return nil, shared.ErrNotFound
	}

	switch c := cmd.(type) {
	case ReloadCardCommand:
		if err := card.Reload(c.Amount); err != nil {
			return nil, err
		}
	case RedeemCardCommand:
		if err := card.Redeem(c.OrderID, c.Amount); err != nil {
			return nil, err
		}
	case DeactivateCardCommand:
		card.Deactivate()
	case GetCardCommand:
		return &actor.Outcome{Response: card}, nil
	default:
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("gift card actor does not accept command %q", cmd.CommandType()))
	}

	return &actor.Outcome{Response: card, State: card, Events: card.GetDomainEvents()}, nil
}
