package scheduler

import (
	"context"
	"fmt"

	"github.com/dinehub/backend/internal/actor"
	apployalty "github.com/dinehub/backend/internal/application/loyalty"
	"github.com/dinehub/backend/internal/domain/loyalty"
	"github.com/dinehub/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

// EntityLister enumerates persisted entities of one actor type
type EntityLister interface {
	AllEntities(ctx context.Context, actorType string) ([]persistence.EntityRef, error)
}

// LoyaltyYTDResetJob zeroes the year-to-date spend accumulator of every
// customer spend projection. Scheduled for the fiscal rollover; a failed
// projection does not stop the sweep, the next run retries it.
type LoyaltyYTDResetJob struct {
	directory  EntityLister
	dispatcher actor.Dispatcher
	logger     *zap.Logger
}

// NewLoyaltyYTDResetJob creates the year-to-date reset job
func NewLoyaltyYTDResetJob(directory EntityLister, dispatcher actor.Dispatcher, logger *zap.Logger) *LoyaltyYTDResetJob {
	return &LoyaltyYTDResetJob{
		directory:  directory,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Name implements Job
func (j *LoyaltyYTDResetJob) Name() string { return "loyalty-ytd-reset" }

// Run implements Job
func (j *LoyaltyYTDResetJob) Run(ctx context.Context) error {
	refs, err := j.directory.AllEntities(ctx, loyalty.AggregateTypeCustomerSpendProjection)
	if err != nil {
		return fmt.Errorf("list spend projections: %w", err)
	}

	var failed int
	for _, ref := range refs {
		key := actor.NewKey(ref.TenantID, loyalty.AggregateTypeCustomerSpendProjection, ref.EntityID)
		if _, _, err := j.dispatcher.Dispatch(ctx, key, apployalty.ResetYearToDateCommand{}); err != nil {
			failed++
			j.logger.Warn("Year-to-date reset failed for projection",
				zap.String("tenant_id", ref.TenantID.String()),
				zap.String("customer_id", ref.EntityID.String()),
				zap.Error(err))
		}
	}

	if failed > 0 {
		return fmt.Errorf("year-to-date reset: %d of %d projections failed", failed, len(refs))
	}
	j.logger.Info("Year-to-date reset complete", zap.Int("projections", len(refs)))
	return nil
}
