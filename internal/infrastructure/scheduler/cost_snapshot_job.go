package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/dinehub/backend/internal/actor"
	appcosting "github.com/dinehub/backend/internal/application/costing"
	"github.com/dinehub/backend/internal/domain/costing"
	"github.com/dinehub/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CostSnapshotJob freezes the current cost of every recipe into its cost
// history once a day, giving each tenant a daily food-cost trail even when
// nobody touched the recipe.
type CostSnapshotJob struct {
	directory  EntityLister
	dispatcher actor.Dispatcher
	logger     *zap.Logger
}

// NewCostSnapshotJob creates the daily cost snapshot job
func NewCostSnapshotJob(directory EntityLister, dispatcher actor.Dispatcher, logger *zap.Logger) *CostSnapshotJob {
	return &CostSnapshotJob{
		directory:  directory,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Name implements Job
func (j *CostSnapshotJob) Name() string { return "recipe-cost-snapshot" }

// Run implements Job
func (j *CostSnapshotJob) Run(ctx context.Context) error {
	refs, err := j.directory.AllEntities(ctx, costing.AggregateTypeRecipe)
	if err != nil {
		return fmt.Errorf("list recipes: %w", err)
	}

	var failed int
	for _, ref := range refs {
		key := actor.NewKey(ref.TenantID, costing.AggregateTypeRecipe, ref.EntityID)
		cmd := appcosting.CreateCostSnapshotCommand{Notes: "daily snapshot"}
		if _, _, err := j.dispatcher.Dispatch(ctx, key, cmd); err != nil {
			// business rejections (e.g. a recipe with no priced cost yet)
			// are expected and not worth a retry
			if shared.IsBusinessError(err) || errors.Is(err, shared.ErrNotFound) {
				j.logger.Debug("Recipe skipped for daily snapshot",
					zap.String("tenant_id", ref.TenantID.String()),
					zap.String("recipe_id", ref.EntityID.String()),
					zap.Error(err))
				continue
			}
			failed++
			j.logger.Warn("Cost snapshot failed for recipe",
				zap.String("tenant_id", ref.TenantID.String()),
				zap.String("recipe_id", ref.EntityID.String()),
				zap.Error(err))
		}
	}

	if failed > 0 {
		return fmt.Errorf("cost snapshots: %d of %d recipes failed", failed, len(refs))
	}
	j.logger.Info("Daily cost snapshots complete", zap.Int("recipes", len(refs)))
	return nil
}
