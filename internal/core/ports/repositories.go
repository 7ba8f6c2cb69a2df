package ports

import (
	"context"
	"time"

	"github.com/parkpulse/web/internal/core/domain"
)

// FavoritesRepository persists visitor favorites.
type FavoritesRepository interface {
	// Save stores favs unless a newer write for the visitor already exists.
	// It reports whether the row was written.
	Save(ctx context.Context, visitorID string, favs domain.Favorites, updatedAt time.Time) (bool, error)
	Get(ctx context.Context, visitorID string) (*domain.StoredFavorites, error)
}
