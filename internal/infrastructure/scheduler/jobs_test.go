package scheduler

import (
	"context"
	"testing"

	"github.com/dinehub/backend/internal/actor"
	"github.com/dinehub/backend/internal/domain/costing"
	"github.com/dinehub/backend/internal/domain/loyalty"
	"github.com/dinehub/backend/internal/domain/shared"
	"github.com/dinehub/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticLister struct {
	refs map[string][]persistence.EntityRef
	err  error
}

func (l *staticLister) AllEntities(_ context.Context, actorType string) ([]persistence.EntityRef, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.refs[actorType], nil
}

type recordingDispatcher struct {
	dispatched []actor.Key
	errFor     map[uuid.UUID]error
}

func (d *recordingDispatcher) Dispatch(_ context.Context, key actor.Key, _ actor.Command) (any, int, error) {
	d.dispatched = append(d.dispatched, key)
	if err, ok := d.errFor[key.EntityID]; ok {
		return nil, 0, err
	}
	return nil, 1, nil
}

func ref(tenantID uuid.UUID) persistence.EntityRef {
	return persistence.EntityRef{TenantID: tenantID, EntityID: uuid.New()}
}

func TestLoyaltyYTDResetJob_ResetsEveryProjection(t *testing.T) {
	tenantA, tenantB := uuid.New(), uuid.New()
	lister := &staticLister{refs: map[string][]persistence.EntityRef{
		loyalty.AggregateTypeCustomerSpendProjection: {ref(tenantA), ref(tenantA), ref(tenantB)},
	}}
	dispatcher := &recordingDispatcher{}
	job := NewLoyaltyYTDResetJob(lister, dispatcher, zap.NewNop())

	require.NoError(t, job.Run(context.Background()))
	require.Len(t, dispatcher.dispatched, 3)
	for _, key := range dispatcher.dispatched {
		assert.Equal(t, loyalty.AggregateTypeCustomerSpendProjection, key.Type)
	}
}

func TestLoyaltyYTDResetJob_ReportsPartialFailure(t *testing.T) {
	tenantID := uuid.New()
	healthy, stuck := ref(tenantID), ref(tenantID)
	lister := &staticLister{refs: map[string][]persistence.EntityRef{
		loyalty.AggregateTypeCustomerSpendProjection: {healthy, stuck},
	}}
	dispatcher := &recordingDispatcher{errFor: map[uuid.UUID]error{
		stuck.EntityID: shared.ErrBusy,
	}}
	job := NewLoyaltyYTDResetJob(lister, dispatcher, zap.NewNop())

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2")
	// the healthy projection was still reset
	assert.Len(t, dispatcher.dispatched, 2)
}

func TestLoyaltyYTDResetJob_PropagatesListerFailure(t *testing.T) {
	lister := &staticLister{err: shared.ErrUnavailable}
	job := NewLoyaltyYTDResetJob(lister, &recordingDispatcher{}, zap.NewNop())

	err := job.Run(context.Background())
	assert.ErrorIs(t, err, shared.ErrUnavailable)
}

func TestCostSnapshotJob_SnapshotsEveryRecipe(t *testing.T) {
	tenantID := uuid.New()
	lister := &staticLister{refs: map[string][]persistence.EntityRef{
		costing.AggregateTypeRecipe: {ref(tenantID), ref(tenantID)},
	}}
	dispatcher := &recordingDispatcher{}
	job := NewCostSnapshotJob(lister, dispatcher, zap.NewNop())

	require.NoError(t, job.Run(context.Background()))
	require.Len(t, dispatcher.dispatched, 2)
	assert.Equal(t, costing.AggregateTypeRecipe, dispatcher.dispatched[0].Type)
}

func TestCostSnapshotJob_SkipsBusinessRejections(t *testing.T) {
	tenantID := uuid.New()
	costed, uncosted := ref(tenantID), ref(tenantID)
	lister := &staticLister{refs: map[string][]persistence.EntityRef{
		costing.AggregateTypeRecipe: {costed, uncosted},
	}}
	dispatcher := &recordingDispatcher{errFor: map[uuid.UUID]error{
		uncosted.EntityID: shared.NewDomainError("NO_COST", "recipe has no computed cost"),
	}}
	job := NewCostSnapshotJob(lister, dispatcher, zap.NewNop())

	// a recipe that cannot be snapshotted yet is not a job failure
	require.NoError(t, job.Run(context.Background()))
	assert.Len(t, dispatcher.dispatched, 2)
}

func TestCostSnapshotJob_ReportsInfrastructureFailure(t *testing.T) {
	tenantID := uuid.New()
	stuck := ref(tenantID)
	lister := &staticLister{refs: map[string][]persistence.EntityRef{
		costing.AggregateTypeRecipe: {stuck},
	}}
	dispatcher := &recordingDispatcher{errFor: map[uuid.UUID]error{
		stuck.EntityID: shared.ErrBusy,
	}}
	job := NewCostSnapshotJob(lister, dispatcher, zap.NewNop())

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1")
}
