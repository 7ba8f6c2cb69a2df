package workflows

import (
	"context"
	"fmt"

	"github.com/parkpulse/web/internal/core/usecases"
)

// FavoritesActivities holds the activity implementations for the favorites sync workflow.
type FavoritesActivities struct {
	Favorites *usecases.FavoritesService
}

// PersistFavorites stores the favorites and reports whether the write applied.
func (a *FavoritesActivities) PersistFavorites(ctx context.Context, input FavoritesSyncInput) (bool, error) {
	written, err := a.Favorites.Persist(ctx, input.VisitorID, input.Favorites, input.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("persist favorites %s: %w", input.VisitorID, err)
	}
	return written, nil
}

// PublishFavoritesChanged announces the new favorites to the visitor's other sessions.
func (a *FavoritesActivities) PublishFavoritesChanged(ctx context.Context, input FavoritesSyncInput) error {
	if err := a.Favorites.Publish(ctx, input.VisitorID, input.Favorites, input.UpdatedAt); err != nil {
		return fmt.Errorf("publish favorites %s: %w", input.VisitorID, err)
	}
	return nil
}
