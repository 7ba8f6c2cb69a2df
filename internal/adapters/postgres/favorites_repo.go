package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/parkpulse/web/internal/core/domain"
)

// FavoritesRepo implements ports.FavoritesRepository.
type FavoritesRepo struct {
	db *DB
}

// NewFavoritesRepo creates a new FavoritesRepo.
func NewFavoritesRepo(db *DB) *FavoritesRepo {
	return &FavoritesRepo{db: db}
}

// Save upserts the visitor's favorites. Writes older than the stored row are
// dropped so retried or reordered syncs cannot roll state back.
func (r *FavoritesRepo) Save(ctx context.Context, visitorID string, favs domain.Favorites, updatedAt time.Time) (bool, error) {
	favs.Normalize()
	tag, err := r.db.Pool.Exec(ctx, `
		INSERT INTO visitor_favorites (visitor_id, parks, attractions, shows, restaurants, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (visitor_id) DO UPDATE SET
			parks       = EXCLUDED.parks,
			attractions = EXCLUDED.attractions,
			shows       = EXCLUDED.shows,
			restaurants = EXCLUDED.restaurants,
			updated_at  = EXCLUDED.updated_at
		WHERE visitor_favorites.updated_at <= EXCLUDED.updated_at`,
		visitorID, favs.Parks, favs.Attractions, favs.Shows, favs.Restaurants, updatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("upsert favorites %s: %w", visitorID, err)
	}
	return tag.RowsAffected() > 0, nil
}

// Get returns the stored favorites of a visitor, or domain.ErrNotFound.
func (r *FavoritesRepo) Get(ctx context.Context, visitorID string) (*domain.StoredFavorites, error) {
	s := &domain.StoredFavorites{VisitorID: visitorID}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT parks, attractions, shows, restaurants, updated_at
		FROM visitor_favorites WHERE visitor_id = $1`, visitorID,
	).Scan(&s.Favorites.Parks, &s.Favorites.Attractions, &s.Favorites.Shows, &s.Favorites.Restaurants, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get favorites %s: %w", visitorID, err)
	}
	s.Favorites.Normalize()
	return s, nil
}
