package gateway

import (
	"context"
	"fmt"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/gateway"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Command types accepted by the merchant actor
const (
	CmdCreateMerchant     = "gateway.create_merchant"
	CmdSuspendMerchant    = "gateway.suspend_merchant"
	CmdReactivateMerchant = "gateway.reactivate_merchant"
	CmdCreateAPIKey       = "gateway.create_api_key"
	CmdRevokeAPIKey       = "gateway.revoke_api_key"
	CmdRollAPIKey         = "gateway.roll_api_key"
	CmdValidateAPIKey     = "gateway.validate_api_key"
	CmdGetMerchant        = "gateway.get_merchant"
)

// CreateMerchantCommand creates the merchant addressed by the actor key
type CreateMerchantCommand struct {
	TenantID   uuid.UUID `json:"tenant_id"`
	MerchantID uuid.UUID `json:"merchant_id"`
	Name       string    `json:"name" binding:"required"`
}

func (c CreateMerchantCommand) CommandType() string { return CmdCreateMerchant }

// SuspendMerchantCommand blocks all API key validation for the merchant
type SuspendMerchantCommand struct {
	Reason string `json:"reason"`
}

func (c SuspendMerchantCommand) CommandType() string { return CmdSuspendMerchant }

// ReactivateMerchantCommand lifts a suspension
type ReactivateMerchantCommand struct{}

func (c ReactivateMerchantCommand) CommandType() string { return CmdReactivateMerchant }

// CreateAPIKeyCommand mints a new API key. The raw secret is hashed inside
// the aggregate and never persisted or published.
type CreateAPIKeyCommand struct {
	Label     string `json:"label" binding:"required"`
	RawSecret string `json:"raw_secret" binding:"required,min=16"`
}

func (c CreateAPIKeyCommand) CommandType() string { return CmdCreateAPIKey }

// RevokeAPIKeyCommand revokes a key, clearing its secret hash but keeping the
// audit record
type RevokeAPIKeyCommand struct {
	KeyID uuid.UUID `json:"key_id" binding:"required"`
}

func (c RevokeAPIKeyCommand) CommandType() string { return CmdRevokeAPIKey }

// RollAPIKeyCommand revokes a key and mints its replacement in one step
type RollAPIKeyCommand struct {
	KeyID        uuid.UUID `json:"key_id" binding:"required"`
	NewRawSecret string    `json:"new_raw_secret" binding:"required,min=16"`
}

func (c RollAPIKeyCommand) CommandType() string { return CmdRollAPIKey }

// ValidateAPIKeyCommand checks a presented secret against the stored hash.
// Read-only: validation never mutates the merchant.
type ValidateAPIKeyCommand struct {
	KeyID     uuid.UUID `json:"key_id" binding:"required"`
	RawSecret string    `json:"raw_secret" binding:"required"`
}

func (c ValidateAPIKeyCommand) CommandType() string { return CmdValidateAPIKey }

// GetMerchantCommand returns the merchant state
type GetMerchantCommand struct{}

func (c GetMerchantCommand) CommandType() string { return CmdGetMerchant }

// APIKeyResult is the response to a successful key creation or roll. The raw
// secret is echoed back exactly once; only its hash survives.
type APIKeyResult struct {
	KeyID     uuid.UUID `json:"key_id"`
	Label     string    `json:"label"`
	Prefix    string    `json:"prefix"`
	RawSecret string    `json:"raw_secret"`
}

// ValidationResult is the response to ValidateAPIKeyCommand
type ValidationResult struct {
	Valid bool `json:"valid"`
}

// MerchantBehavior is the actor behavior for the Merchant aggregate
type MerchantBehavior struct{}

// NewMerchantBehavior creates a new merchant behavior
func NewMerchantBehavior() *MerchantBehavior { return &MerchantBehavior{} }

// ActorType returns the actor type this behavior serves
func (b *MerchantBehavior) ActorType() string { return gateway.AggregateTypeMerchant }

// NewState returns an empty merchant state
func (b *MerchantBehavior) NewState() any { return &gateway.Merchant{} }

// Handle applies one command to the merchant
func (b *MerchantBehavior) Handle(ctx context.Context, state any, cmd actor.Command) (*actor.Outcome, error) {
	merchant, ok := state.(*gateway.Merchant)
	if !ok {
		return nil, fmt.Errorf("merchant behavior: unexpected state type %T", state)
	}

	if c, ok := cmd.(CreateMerchantCommand); ok {
		if merchant.ID != uuid.Nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Merchant already exists")
		}
		created, err := gateway.NewMerchant(c.TenantID, c.MerchantID, c.Name)
		if err != nil {
			return nil, err
		}
		return &actor.Outcome{Response: created, State: created, Events: created.GetDomainEvents()}, nil
	}

	if merchant.ID == uuid.Nil {
		return nil, shared.ErrNotFound
	}

	switch c := cmd.(type) {
	case SuspendMerchantCommand:
		merchant.Suspend()
	case ReactivateMerchantCommand:
		merchant.Reactivate()
	case CreateAPIKeyCommand:
		key, err := merchant.CreateAPIKey(c.Label, c.RawSecret)
		if err != nil {
			return nil, err
		}
		result := &APIKeyResult{KeyID: key.ID, Label: key.Label, Prefix: key.Prefix, RawSecret: c.RawSecret}
		return &actor.Outcome{Response: result, State: merchant, Events: merchant.GetDomainEvents()}, nil
	case RevokeAPIKeyCommand:
		if err := merchant.RevokeAPIKey(c.KeyID); err != nil {
			return nil, err
		}
	case RollAPIKeyCommand:
		replacement, err := merchant.RollAPIKey(c.KeyID, c.NewRawSecret)
		if err != nil {
			return nil, err
		}
		result := &APIKeyResult{KeyID: replacement.ID, Label: replacement.Label, Prefix: replacement.Prefix, RawSecret: c.NewRawSecret}
		return &actor.Outcome{Response: result, State: merchant, Events: merchant.GetDomainEvents()}, nil
	case ValidateAPIKeyCommand:
		return &actor.Outcome{Response: &ValidationResult{Valid: merchant.ValidateAPIKey(c.KeyID, c.RawSecret)}}, nil
	case GetMerchantCommand:
		return &actor.Outcome{Response: merchant}, nil
	default:
		return nil, shared.NewDomainError("VALIDATION_ERROR",
			fmt.Sprintf("merchant actor does not accept command %q", cmd.CommandType()))
	}

	return &actor.Outcome{Response: merchant, State: merchant, Events: merchant.GetDomainEvents()}, nil
}
