package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/parkpulse/web/internal/core/domain"
)

// FavoritesSyncInput is the input for the favorites sync workflow.
type FavoritesSyncInput struct {
	VisitorID string
	Favorites domain.Favorites
	UpdatedAt time.Time
}

// FavoritesSyncWorkflow persists a visitor's favorites with retries and then
// announces the change. A write superseded by a newer one is not announced.
// Announcing is best-effort: a failure is logged and the workflow still succeeds.
func FavoritesSyncWorkflow(ctx workflow.Context, input FavoritesSyncInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting favorites sync", "visitorID", input.VisitorID)

	persistCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    10,
		},
	})

	var written bool
	if err := workflow.ExecuteActivity(persistCtx, "PersistFavorites", input).Get(ctx, &written); err != nil {
		return err
	}
	if !written {
		logger.Info("favorites write superseded by a newer one", "visitorID", input.VisitorID)
		return nil
	}

	publishCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	})
	if err := workflow.ExecuteActivity(publishCtx, "PublishFavoritesChanged", input).Get(ctx, nil); err != nil {
		logger.Warn("favorites change not announced", "visitorID", input.VisitorID, "error", err)
	}

	logger.Info("Favorites synced", "visitorID", input.VisitorID)
	return nil
}
