package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntityStateRecord is the durable row backing one actor's state envelope
type EntityStateRecord struct {
	TenantID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ActorType          string          `gorm:"size:64;primaryKey"`
	EntityID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Payload            json.RawMessage `gorm:"type:jsonb;not null"`
	Version            int             `gorm:"not null"`
	LastAppliedEventID *uuid.UUID      `gorm:"type:uuid"`
	UpdatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (EntityStateRecord) TableName() string {
	return "entity_states"
}

// GormEntityStore is the gorm-backed actor.StateStore. Writes are
// compare-and-set on the version column; the outbox rows for emitted events
// go into the same transaction as the state row.
type GormEntityStore struct {
	db         *gorm.DB
	eventSaver shared.OutboxEventSaver
}

// NewGormEntityStore creates an entity store over db. eventSaver may be nil
// when the caller publishes events through another channel (tests).
func NewGormEntityStore(db *gorm.DB, eventSaver shared.OutboxEventSaver) *GormEntityStore {
	return &GormEntityStore{db: db, eventSaver: eventSaver}
}

// Load returns the state envelope for the key, or shared.ErrNotFound
func (s *GormEntityStore) Load(ctx context.Context, key actor.Key) (actor.StateEnvelope, error) {
	var record EntityStateRecord
	err := s.db.WithContext(ctx).
		Where("tenant_id = ? AND actor_type = ? AND entity_id = ?", key.TenantID, key.Type, key.EntityID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return actor.StateEnvelope{}, shared.ErrNotFound
		}
		return actor.StateEnvelope{}, fmt.Errorf("load entity state %s: %w", key, err)
	}

	env := actor.StateEnvelope{
		Payload: record.Payload,
		Version: record.Version,
	}
	if record.LastAppliedEventID != nil {
		env.LastAppliedEventID = *record.LastAppliedEventID
	}
	return env, nil
}

// Save persists the envelope conditioned on expectedVersion and saves the
// events to the outbox in the same transaction. expectedVersion 0 means the
// row must not exist yet.
func (s *GormEntityStore) Save(ctx context.Context, key actor.Key, env actor.StateEnvelope, expectedVersion int, events []shared.DomainEvent) (int, error) {
	newVersion := expectedVersion + 1
	var lastApplied *uuid.UUID
	if env.LastAppliedEventID != uuid.Nil {
		id := env.LastAppliedEventID
		lastApplied = &id
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if expectedVersion == 0 {
			record := EntityStateRecord{
				TenantID:           key.TenantID,
				ActorType:          key.Type,
				EntityID:           key.EntityID,
				Payload:            env.Payload,
				Version:            newVersion,
				LastAppliedEventID: lastApplied,
				UpdatedAt:          time.Now(),
			}
			if err := tx.Create(&record).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return shared.ErrVersionConflict
				}
				return fmt.Errorf("insert entity state %s: %w", key, err)
			}
		} else {
			result := tx.Model(&EntityStateRecord{}).
				Where("tenant_id = ? AND actor_type = ? AND entity_id = ? AND version = ?",
					key.TenantID, key.Type, key.EntityID, expectedVersion).
				Updates(map[string]interface{}{
					"payload":               env.Payload,
					"version":               newVersion,
					"last_applied_event_id": lastApplied,
					"updated_at":            time.Now(),
				})
			if result.Error != nil {
				return fmt.Errorf("update entity state %s: %w", key, result.Error)
			}
			if result.RowsAffected == 0 {
				return shared.ErrVersionConflict
			}
		}

		if s.eventSaver != nil && len(events) > 0 {
			if err := s.eventSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("save outbox events for %s: %w", key, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newVersion, nil
}

var _ actor.StateStore = (*GormEntityStore)(nil)
