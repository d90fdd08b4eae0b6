package persistence

import (
	"context"
	"fmt"

	"github.com/dinehub/backend/internal/domain/gateway"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntityRef identifies one actor instance
type EntityRef struct {
	TenantID uuid.UUID
	EntityID uuid.UUID
}

// EntityDirectory answers "which actors of this type exist" questions off the
// entity_states table. Reads go straight to the database, never through the
// actors, so a full directory scan cannot block any mailbox.
type EntityDirectory struct {
	db *gorm.DB
}

// NewEntityDirectory creates a directory over the entity state table
func NewEntityDirectory(db *gorm.DB) *EntityDirectory {
	return &EntityDirectory{db: db}
}

// EntitiesForTenant returns the entity IDs of one actor type within a tenant
func (d *EntityDirectory) EntitiesForTenant(ctx context.Context, tenantID uuid.UUID, actorType string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := d.db.WithContext(ctx).
		Model(&EntityStateRecord{}).
		Where("tenant_id = ? AND actor_type = ?", tenantID, actorType).
		Pluck("entity_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list %s entities for tenant %s: %w", actorType, tenantID, err)
	}
	return ids, nil
}

// AllEntities returns every actor instance of one type across all tenants.
// Used by maintenance jobs (year-to-date rollover, cost snapshots).
func (d *EntityDirectory) AllEntities(ctx context.Context, actorType string) ([]EntityRef, error) {
	var records []EntityStateRecord
	err := d.db.WithContext(ctx).
		Select("tenant_id", "entity_id").
		Where("actor_type = ?", actorType).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list %s entities: %w", actorType, err)
	}

	refs := make([]EntityRef, 0, len(records))
	for _, r := range records {
		refs = append(refs, EntityRef{TenantID: r.TenantID, EntityID: r.EntityID})
	}
	return refs, nil
}

// EndpointsForTenant implements the webhook EndpointDirectory interface
func (d *EntityDirectory) EndpointsForTenant(ctx context.Context, tenantID uuid.UUID) ([]uuid.UUID, error) {
	return d.EntitiesForTenant(ctx, tenantID, gateway.AggregateTypeWebhookEndpoint)
}
