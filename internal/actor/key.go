package actor

import (
	"fmt"

	"github.com/google/uuid"
)

// Key is the global identity of a virtual actor: (tenant, actorType, entityId).
// It is immutable once assigned and addresses exactly one single-writer entity.
type Key struct {
	TenantID uuid.UUID
	Type     string
	EntityID uuid.UUID
}

// NewKey creates an actor key
func NewKey(tenantID uuid.UUID, actorType string, entityID uuid.UUID) Key {
	return Key{TenantID: tenantID, Type: actorType, EntityID: entityID}
}

// Validate checks that all key components are present
func (k Key) Validate() error {
	if k.TenantID == uuid.Nil {
		return fmt.Errorf("actor key: tenant id is required")
	}
	if k.Type == "" {
		return fmt.Errorf("actor key: actor type is required")
	}
	if k.EntityID == uuid.Nil {
		return fmt.Errorf("actor key: entity id is required")
	}
	return nil
}

// String returns the canonical string form of the key
func (k Key) String() string {
	return k.TenantID.String() + "/" + k.Type + "/" + k.EntityID.String()
}
