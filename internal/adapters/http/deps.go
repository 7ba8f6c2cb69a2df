package http

import (
	"github.com/parkpulse/web/internal/adapters/postgres"
	"github.com/parkpulse/web/internal/adapters/valkey"
	"github.com/parkpulse/web/internal/core/usecases"
	"github.com/parkpulse/web/internal/render"
)

// VisitorFeed streams favorites change events for one visitor.
type VisitorFeed interface {
	SubscribeVisitor(visitorID string, fn func(data []byte)) (func(), error)
	Connected() bool
}

// Dependencies holds all services needed by HTTP handlers. DB, Cache and Feed
// are optional.
type Dependencies struct {
	Nearby    *usecases.NearbyService
	Favorites *usecases.FavoritesService
	Search    *usecases.SearchService
	Parks     *usecases.ParkService
	DebugMode *usecases.DebugModeService
	Pages     *render.Renderer
	Feed      VisitorFeed
	DB        *postgres.DB
	Cache     *valkey.Cache

	// SecureCookie marks cookies set by the server as Secure.
	SecureCookie bool
}
