package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/parkpulse/web/internal/core/domain"
	"github.com/parkpulse/web/internal/render"
)

func renderPage(c *fiber.Ctx, deps *Dependencies, status int, p render.Page) error {
	c.Type("html", "utf-8")
	c.Status(status)
	if err := deps.Pages.Render(c, c.Params("locale"), p); err != nil {
		LoggerFromCtx(c.UserContext()).Error("render page", "component", "pages", "template", p.Template, "error", err)
		c.Type("txt", "utf-8")
		return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
	}
	return nil
}

// pageError renders the error page. Unknown and malformed paths are 404s;
// everything else is logged and reported generically.
func pageError(c *fiber.Ctx, deps *Dependencies, component string, err error) error {
	status, key := fiber.StatusInternalServerError, "error.generic"
	if errors.Is(err, domain.ErrNotFound) || domain.IsValidation(err) {
		status, key = fiber.StatusNotFound, "error.notFound"
	} else {
		LoggerFromCtx(c.UserContext()).Error("page failed", "component", component, "error", err)
	}
	return renderPage(c, deps, status, render.Page{
		Template: "error",
		TitleKey: key,
		Data:     render.ErrorData{Status: status, MessageKey: key},
	})
}

// withLocale rejects unsupported locale prefixes before h runs.
func withLocale(deps *Dependencies, h fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := render.ParseLocale(c.Params("locale")); !ok {
			return pageError(c, deps, "pages", domain.ErrNotFound)
		}
		return h(c)
	}
}

// RootRedirectHandler sends visitors to the best locale for their browser.
func RootRedirectHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Vary(fiber.HeaderAcceptLanguage)
		return c.Redirect("/"+render.Negotiate(c.Get(fiber.HeaderAcceptLanguage)), fiber.StatusFound)
	}
}

// HomePageHandler lists destinations by continent.
func HomePageHandler(deps *Dependencies) fiber.Handler {
	return withLocale(deps, func(c *fiber.Ctx) error {
		tree, stale, err := deps.Parks.Destinations(c.UserContext())
		if err != nil {
			return pageError(c, deps, "home-page", err)
		}
		return renderPage(c, deps, fiber.StatusOK, render.Page{
			Template: "home",
			TitleKey: "home.title",
			Stale:    stale,
			Data:     render.HomeData{Continents: tree},
		})
	})
}

// PlacePageHandler renders continent, country and city listings depending
// on how many path segments are present.
func PlacePageHandler(deps *Dependencies) fiber.Handler {
	return withLocale(deps, func(c *fiber.Ctx) error {
		tree, stale, err := deps.Parks.Destinations(c.UserContext())
		if err != nil {
			return pageError(c, deps, "place-page", err)
		}

		continent, ok := domain.FindContinent(tree, c.Params("continent"))
		if !ok {
			return pageError(c, deps, "place-page", domain.ErrNotFound)
		}
		if c.Params("country") == "" {
			return renderPage(c, deps, fiber.StatusOK, render.Page{
				Template: "continent",
				Title:    continent.Name,
				Stale:    stale,
				Data:     render.ContinentData{Continent: continent},
			})
		}

		country, ok := continent.Country(c.Params("country"))
		if !ok {
			return pageError(c, deps, "place-page", domain.ErrNotFound)
		}
		if c.Params("city") == "" {
			return renderPage(c, deps, fiber.StatusOK, render.Page{
				Template: "country",
				Title:    country.Name,
				Stale:    stale,
				Data:     render.CountryData{Continent: continent, Country: country},
			})
		}

		city, ok := country.City(c.Params("city"))
		if !ok {
			return pageError(c, deps, "place-page", domain.ErrNotFound)
		}
		return renderPage(c, deps, fiber.StatusOK, render.Page{
			Template: "city",
			Title:    city.Name,
			Stale:    stale,
			Data:     render.CityData{Continent: continent, Country: country, City: city},
		})
	})
}

// ParkPageHandler renders a park with live wait times, falling back to the
// last known data when the upstream API fails.
func ParkPageHandler(deps *Dependencies) fiber.Handler {
	return withLocale(deps, func(c *fiber.Ctx) error {
		park, stale, err := deps.Parks.GetWithFallback(c.UserContext(), parkPathParams(c))
		if err != nil {
			return pageError(c, deps, "park-page", err)
		}
		return renderPage(c, deps, fiber.StatusOK, render.Page{
			Template: "park",
			Title:    park.Name,
			Stale:    stale,
			Data:     render.ParkData{Park: park},
		})
	})
}

// AttractionPageHandler renders a single attraction of a park.
func AttractionPageHandler(deps *Dependencies) fiber.Handler {
	return withLocale(deps, func(c *fiber.Ctx) error {
		park, attraction, stale, err := deps.Parks.Attraction(c.UserContext(), parkPathParams(c), c.Params("attraction"))
		if err != nil {
			return pageError(c, deps, "attraction-page", err)
		}
		return renderPage(c, deps, fiber.StatusOK, render.Page{
			Template: "attraction",
			Title:    attraction.Name,
			Stale:    stale,
			Data:     render.AttractionData{Park: park, Attraction: attraction},
		})
	})
}

// NearbyPageHandler renders the parks around lat/lng, or around the caller's
// IP when no coordinates are given.
func NearbyPageHandler(deps *Dependencies) fiber.Handler {
	return withLocale(deps, func(c *fiber.Ctx) error {
		page := render.Page{Template: "nearby", TitleKey: "nearby.title"}

		req, err := parseNearbyRequest(c)
		if err == nil {
			var res *domain.NearbyResult
			res, err = deps.Nearby.Resolve(c.UserContext(), req)
			if err == nil {
				page.Data = render.NearbyData{Result: res}
				return renderPage(c, deps, fiber.StatusOK, page)
			}
		}

		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			return pageError(c, deps, "nearby-page", err)
		}
		data := render.NearbyData{Message: verr.Message}
		if errors.Is(err, domain.ErrLocationRequired) {
			data = render.NearbyData{MessageKey: "nearby.locationRequired"}
		}
		page.Data = data
		return renderPage(c, deps, fiber.StatusBadRequest, page)
	})
}

// FavoritesPageHandler renders the visitor's favorites from the cookie.
func FavoritesPageHandler(deps *Dependencies) fiber.Handler {
	return withLocale(deps, func(c *fiber.Ctx) error {
		res, err := deps.Favorites.Lookup(c.UserContext(), domain.FavoritesQuery{
			Favorites: requestFavorites(c),
			ClientIP:  clientIP(c),
			Cookie:    c.Get(fiber.HeaderCookie),
		})
		if err != nil {
			return pageError(c, deps, "favorites-page", err)
		}
		return renderPage(c, deps, fiber.StatusOK, render.Page{
			Template: "favorites",
			TitleKey: "favorites.title",
			Data:     render.FavoritesData{Favorites: res},
		})
	})
}
