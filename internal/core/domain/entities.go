package domain

import (
	"fmt"
	"regexp"
)

// Park is a theme park as returned by the upstream API.
type Park struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Slug        string       `json:"slug"`
	Continent   string       `json:"continent,omitempty"`
	Country     string       `json:"country,omitempty"`
	City        string       `json:"city,omitempty"`
	Latitude    float64      `json:"latitude"`
	Longitude   float64      `json:"longitude"`
	Timezone    string       `json:"timezone,omitempty"`
	Status      string       `json:"status,omitempty"` // OPERATING, CLOSED, ...
	CrowdLevel  string       `json:"crowdLevel,omitempty"`
	Attractions []Attraction `json:"attractions,omitempty"`
}

// Path returns the geographic path segments of the park.
func (p Park) Path() ParkPath {
	return ParkPath{Continent: p.Continent, Country: p.Country, City: p.City, Park: p.Slug}
}

// Attraction is a ride or experience inside a park.
type Attraction struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Status      string   `json:"status,omitempty"`
	WaitTime    *int     `json:"waitTime"` // minutes, nil when not reported
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	LastUpdated string   `json:"lastUpdated,omitempty"`
}

// ParkWithDistance is an upstream park annotated with derived fields.
type ParkWithDistance struct {
	Park
	Distance        float64 `json:"distance"` // meters
	BackgroundImage *string `json:"backgroundImage"`
}

// AttractionWithDistance is an upstream attraction annotated with its distance
// from the user, when both positions are known.
type AttractionWithDistance struct {
	Attraction
	Distance *float64 `json:"distance,omitempty"`
}

// ParkDetail is the park page payload.
type ParkDetail struct {
	Park
	BackgroundImage *string `json:"backgroundImage"`
}

// CalendarDay is one day of a park's operating calendar.
type CalendarDay struct {
	Date        string `json:"date"` // YYYY-MM-DD
	Status      string `json:"status"`
	OpeningTime string `json:"openingTime,omitempty"`
	ClosingTime string `json:"closingTime,omitempty"`
	CrowdLevel  string `json:"crowdLevel,omitempty"`
}

// ParkCalendar is the calendar route payload.
type ParkCalendar struct {
	Park string        `json:"park"`
	From string        `json:"from"`
	To   string        `json:"to"`
	Days []CalendarDay `json:"days"`
}

// SearchResult is a single search hit.
type SearchResult struct {
	Type     string `json:"type"` // park, attraction, city, ...
	ID       string `json:"id"`
	Name     string `json:"name"`
	URL      string `json:"url"`
	ParkName string `json:"parkName,omitempty"`
	Country  string `json:"country,omitempty"`
}

// SearchResponse wraps search hits.
type SearchResponse struct {
	Query   string         `json:"query,omitempty"`
	Results []SearchResult `json:"results"`
	Count   int            `json:"count"`
}

// EmptySearch is returned for queries below the minimum length.
func EmptySearch() *SearchResponse {
	return &SearchResponse{Results: []SearchResult{}, Count: 0}
}

// Continent is the root of the destination tree used by listing pages.
type Continent struct {
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Countries []Country `json:"countries"`
}

type Country struct {
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Cities []City `json:"cities"`
}

type City struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Parks []Park `json:"parks"`
}

// ParkPath addresses a park by its geographic slugs.
type ParkPath struct {
	Continent string
	Country   string
	City      string
	Park      string
}

var slugRe = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidSlug reports whether s is a lowercase dash-separated slug.
func ValidSlug(s string) bool {
	return len(s) <= 128 && slugRe.MatchString(s)
}

// Validate rejects missing or malformed segments before they reach an upstream URL.
func (p ParkPath) Validate() error {
	segments := []struct{ name, value string }{
		{"continent", p.Continent},
		{"country", p.Country},
		{"city", p.City},
		{"park", p.Park},
	}
	for _, s := range segments {
		if s.value == "" {
			return &ValidationError{Message: fmt.Sprintf("Missing %s parameter", s.name)}
		}
		if !ValidSlug(s.value) {
			return &ValidationError{Message: fmt.Sprintf("Invalid %s parameter", s.name)}
		}
	}
	return nil
}

func (p ParkPath) String() string {
	return p.Continent + "/" + p.Country + "/" + p.City + "/" + p.Park
}

// FindContinent looks up a continent of the destination tree by slug.
func FindContinent(tree []Continent, slug string) (*Continent, bool) {
	for i := range tree {
		if tree[i].Slug == slug {
			return &tree[i], true
		}
	}
	return nil, false
}

// Country looks up a country of the continent by slug.
func (c *Continent) Country(slug string) (*Country, bool) {
	for i := range c.Countries {
		if c.Countries[i].Slug == slug {
			return &c.Countries[i], true
		}
	}
	return nil, false
}

// City looks up a city of the country by slug.
func (c *Country) City(slug string) (*City, bool) {
	for i := range c.Cities {
		if c.Cities[i].Slug == slug {
			return &c.Cities[i], true
		}
	}
	return nil, false
}
