package domain

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	FavoritesCookieName   = "favorites"
	FavoritesCookieMaxAge = 365 * 24 * time.Hour

	maxFavoriteIDLength = 128
	maxFavoritesPerType = 500
)

// FavoriteType is one of the favorite categories.
type FavoriteType string

const (
	FavoritePark       FavoriteType = "park"
	FavoriteAttraction FavoriteType = "attraction"
	FavoriteShow       FavoriteType = "show"
	FavoriteRestaurant FavoriteType = "restaurant"
)

// FavoriteTypes lists every category in display order.
var FavoriteTypes = []FavoriteType{FavoritePark, FavoriteAttraction, FavoriteShow, FavoriteRestaurant}

// ParseFavoriteType accepts singular or plural names ("park", "parks").
func ParseFavoriteType(s string) (FavoriteType, error) {
	s = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s")
	for _, t := range FavoriteTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown favorite type %q", s)
}

// Favorites holds favorited entity ids per category. Ids are unique per category.
type Favorites struct {
	Parks       []string `json:"parks"`
	Attractions []string `json:"attractions"`
	Shows       []string `json:"shows"`
	Restaurants []string `json:"restaurants"`
}

func (f *Favorites) list(t FavoriteType) *[]string {
	switch t {
	case FavoritePark:
		return &f.Parks
	case FavoriteAttraction:
		return &f.Attractions
	case FavoriteShow:
		return &f.Shows
	case FavoriteRestaurant:
		return &f.Restaurants
	}
	return nil
}

// IDs returns a copy of the ids stored for t.
func (f Favorites) IDs(t FavoriteType) []string {
	l := f.list(t)
	if l == nil {
		return nil
	}
	return append([]string{}, (*l)...)
}

// Contains reports whether id is favorited under t.
func (f Favorites) Contains(t FavoriteType, id string) bool {
	l := f.list(t)
	if l == nil {
		return false
	}
	for _, v := range *l {
		if v == id {
			return true
		}
	}
	return false
}

// Add appends id under t. It returns false if the id was already present.
func (f *Favorites) Add(t FavoriteType, id string) bool {
	l := f.list(t)
	if l == nil || f.Contains(t, id) {
		return false
	}
	*l = append(*l, id)
	return true
}

// Remove drops id from t. It returns false if the id was not present.
func (f *Favorites) Remove(t FavoriteType, id string) bool {
	l := f.list(t)
	if l == nil {
		return false
	}
	out := (*l)[:0:0]
	removed := false
	for _, v := range *l {
		if v == id {
			removed = true
			continue
		}
		out = append(out, v)
	}
	*l = out
	return removed
}

// Normalize removes duplicates and blank ids, keeping first occurrences, and
// replaces nil lists with empty ones so they encode as [].
func (f *Favorites) Normalize() {
	for _, t := range FavoriteTypes {
		l := f.list(t)
		seen := make(map[string]struct{}, len(*l))
		out := make([]string, 0, len(*l))
		for _, id := range *l {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
		*l = out
	}
}

// Validate bounds id length and list sizes.
func (f Favorites) Validate() error {
	for _, t := range FavoriteTypes {
		l := f.list(t)
		if len(*l) > maxFavoritesPerType {
			return &ValidationError{Message: fmt.Sprintf("Too many %s favorites (max %d)", t, maxFavoritesPerType)}
		}
		for _, id := range *l {
			if len(id) > maxFavoriteIDLength {
				return &ValidationError{Message: fmt.Sprintf("Invalid %s id", t)}
			}
		}
	}
	return nil
}

// Empty reports whether no ids are stored.
func (f Favorites) Empty() bool {
	return len(f.Parks)+len(f.Attractions)+len(f.Shows)+len(f.Restaurants) == 0
}

// Clone returns a deep copy.
func (f Favorites) Clone() Favorites {
	return Favorites{
		Parks:       append([]string{}, f.Parks...),
		Attractions: append([]string{}, f.Attractions...),
		Shows:       append([]string{}, f.Shows...),
		Restaurants: append([]string{}, f.Restaurants...),
	}
}

// EncodeFavoritesCookie renders the favorites as a cookie-safe value
// (URL-escaped JSON).
func EncodeFavoritesCookie(f Favorites) (string, error) {
	f = f.Clone()
	f.Normalize()
	b, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encode favorites: %w", err)
	}
	return url.QueryEscape(string(b)), nil
}

// DecodeFavoritesCookie parses a cookie value. Duplicates already present in
// storage are removed on read. An empty value decodes to an empty set.
func DecodeFavoritesCookie(value string) (Favorites, error) {
	var f Favorites
	if strings.TrimSpace(value) == "" {
		f.Normalize()
		return f, nil
	}
	raw, err := url.QueryUnescape(value)
	if err != nil {
		raw = value
	}
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return Favorites{}, fmt.Errorf("decode favorites: %w", err)
	}
	f.Normalize()
	return f, nil
}

// FavoriteItem is an attraction, show or restaurant in the favorites payload.
type FavoriteItem struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Slug            string   `json:"slug,omitempty"`
	Status          string   `json:"status,omitempty"`
	WaitTime        *int     `json:"waitTime,omitempty"`
	ParkID          string   `json:"parkId,omitempty"`
	ParkName        string   `json:"parkName,omitempty"`
	ParkSlug        string   `json:"parkSlug,omitempty"`
	Distance        *float64 `json:"distance,omitempty"`
	BackgroundImage *string  `json:"backgroundImage"`
}

// FavoritesResponse is the favorites route payload.
type FavoritesResponse struct {
	Parks       []ParkWithDistance `json:"parks"`
	Attractions []FavoriteItem     `json:"attractions"`
	Shows       []FavoriteItem     `json:"shows"`
	Restaurants []FavoriteItem     `json:"restaurants"`
}

// FavoritesQuery is a favorites lookup forwarded upstream.
type FavoritesQuery struct {
	Favorites  Favorites
	Coordinate *Coordinate
	ClientIP   string
	Cookie     string
}

// StoredFavorites is the server-side copy of a visitor's favorites.
type StoredFavorites struct {
	VisitorID string    `json:"visitorId"`
	Favorites Favorites `json:"favorites"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FavoritesChanged is broadcast after a visitor's favorites are persisted so
// other open tabs can reload.
type FavoritesChanged struct {
	VisitorID string    `json:"visitorId"`
	Favorites Favorites `json:"favorites"`
	UpdatedAt time.Time `json:"updatedAt"`
}
