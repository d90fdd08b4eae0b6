package gateway

import (
	"time"

	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// MerchantStatus represents the lifecycle state of a merchant account
type MerchantStatus string

const (
	MerchantStatusActive    MerchantStatus = "ACTIVE"
	MerchantStatusSuspended MerchantStatus = "SUSPENDED"
)

// APIKey is a credential issued to a merchant. Only a bcrypt hash of the
// secret is stored; the raw secret is shown once at issue time. Revoked and
// rolled keys keep their row as an audit record with the hash cleared.
type APIKey struct {
	ID         uuid.UUID  `json:"id"`
	Label      string     `json:"label"`
	Prefix     string     `json:"prefix"`
	SecretHash string     `json:"secret_hash,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	RolledTo   *uuid.UUID `json:"rolled_to,omitempty"`
}

// IsActive reports whether the key can still authenticate
func (k *APIKey) IsActive() bool {
	return k.RevokedAt == nil && k.SecretHash != ""
}

// Merchant is the aggregate root for a payment-gateway merchant account and
// its API-key lifecycle.
type Merchant struct {
	shared.TenantAggregateRoot
	Name    string         `json:"name"`
	Status  MerchantStatus `json:"status"`
	APIKeys []APIKey       `json:"api_keys"`
}

// NewMerchant creates a new merchant account
func NewMerchant(tenantID, merchantID uuid.UUID, name string) (*Merchant, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Merchant name cannot be empty")
	}

	m := &Merchant{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithID(tenantID, merchantID),
		Name:                name,
		Status:              MerchantStatusActive,
		APIKeys:             make([]APIKey, 0),
	}
	m.AddDomainEvent(NewMerchantCreatedEvent(m))
	return m, nil
}

// Suspend blocks all key validation for the merchant
func (m *Merchant) Suspend() {
	if m.Status == MerchantStatusSuspended {
		return
	}
	m.Status = MerchantStatusSuspended
	m.UpdatedAt = time.Now()
}

// Reactivate restores a suspended merchant
func (m *Merchant) Reactivate() {
	if m.Status == MerchantStatusActive {
		return
	}
	m.Status = MerchantStatusActive
	m.UpdatedAt = time.Now()
}

// CreateAPIKey issues a new key. The raw secret is hashed immediately and
// never stored.
func (m *Merchant) CreateAPIKey(label, rawSecret string) (*APIKey, error) {
	if label == "" {
		return nil, shared.NewDomainError("INVALID_LABEL", "API key label cannot be empty")
	}
	if len(rawSecret) < 16 {
		return nil, shared.NewDomainError("INVALID_SECRET", "API key secret must be at least 16 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(rawSecret), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	key := APIKey{
		ID:         uuid.New(),
		Label:      label,
		Prefix:     rawSecret[:8],
		SecretHash: string(hash),
		CreatedAt:  time.Now(),
	}
	m.APIKeys = append(m.APIKeys, key)
	m.UpdatedAt = time.Now()

	m.AddDomainEvent(NewAPIKeyCreatedEvent(m, &key))
	return &key, nil
}

// RevokeAPIKey invalidates a key's secret material while keeping its audit
// record
func (m *Merchant) RevokeAPIKey(keyID uuid.UUID) error {
	key := m.findKey(keyID)
	if key == nil {
		return shared.NewDomainError("KEY_NOT_FOUND", "API key not found")
	}
	if !key.IsActive() {
		return shared.NewDomainError("KEY_REVOKED", "API key is already revoked")
	}

	now := time.Now()
	key.RevokedAt = &now
	key.SecretHash = ""
	m.UpdatedAt = now

	m.AddDomainEvent(NewAPIKeyRevokedEvent(m, key))
	return nil
}

// RollAPIKey creates a replacement key and immediately invalidates the old
// key's secret, linking the audit record to its successor.
func (m *Merchant) RollAPIKey(keyID uuid.UUID, newRawSecret string) (*APIKey, error) {
	old := m.findKey(keyID)
	if old == nil {
		return nil, shared.NewDomainError("KEY_NOT_FOUND", "API key not found")
	}
	if !old.IsActive() {
		return nil, shared.NewDomainError("KEY_REVOKED", "Cannot roll a revoked API key")
	}

	replacement, err := m.CreateAPIKey(old.Label, newRawSecret)
	if err != nil {
		return nil, err
	}

	// CreateAPIKey may have grown the slice; re-resolve the old entry.
	old = m.findKey(keyID)
	now := time.Now()
	old.RevokedAt = &now
	old.SecretHash = ""
	old.RolledTo = &replacement.ID
	m.UpdatedAt = now

	m.AddDomainEvent(NewAPIKeyRolledEvent(m, old, replacement))
	return replacement, nil
}

// ValidateAPIKey checks a raw secret against the stored hash of an active
// key. It never compares raw secrets.
func (m *Merchant) ValidateAPIKey(keyID uuid.UUID, rawSecret string) bool {
	if m.Status != MerchantStatusActive {
		return false
	}
	key := m.findKey(keyID)
	if key == nil || !key.IsActive() {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(key.SecretHash), []byte(rawSecret)) == nil
}

// ActiveKeys returns the keys that can still authenticate
func (m *Merchant) ActiveKeys() []APIKey {
	out := make([]APIKey, 0)
	for _, k := range m.APIKeys {
		if k.IsActive() {
			out = append(out, k)
		}
	}
	return out
}

func (m *Merchant) findKey(id uuid.UUID) *APIKey {
	for i := range m.APIKeys {
		if m.APIKeys[i].ID == id {
			return &m.APIKeys[i]
		}
	}
	return nil
}
