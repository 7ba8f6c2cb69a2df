package workflows

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/client"

	"github.com/parkpulse/web/internal/core/domain"
)

// Dispatcher implements ports.SyncDispatcher by starting a FavoritesSyncWorkflow.
type Dispatcher struct {
	client    client.Client
	taskQueue string
}

// NewDispatcher creates a dispatcher submitting to taskQueue.
func NewDispatcher(c client.Client, taskQueue string) *Dispatcher {
	return &Dispatcher{client: c, taskQueue: taskQueue}
}

// DispatchFavoritesSync starts the workflow and returns once it is accepted.
func (d *Dispatcher) DispatchFavoritesSync(ctx context.Context, visitorID string, favs domain.Favorites, at time.Time) error {
	opts := client.StartWorkflowOptions{
		ID:                       fmt.Sprintf("favorites-sync-%s-%d", visitorID, at.UnixNano()),
		TaskQueue:                d.taskQueue,
		WorkflowExecutionTimeout: 10 * time.Minute,
	}
	_, err := d.client.ExecuteWorkflow(ctx, opts, FavoritesSyncWorkflow, FavoritesSyncInput{
		VisitorID: visitorID,
		Favorites: favs,
		UpdatedAt: at,
	})
	if err != nil {
		return fmt.Errorf("start favorites sync: %w", err)
	}
	return nil
}
