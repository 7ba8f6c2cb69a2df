// Package render produces the server-rendered HTML pages.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/parkpulse/web/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer executes the embedded page templates with localized labels.
type Renderer struct {
	tmpl *template.Template
	cat  catalog.Catalog
}

// New parses the embedded templates and builds the label catalog.
func New() (*Renderer, error) {
	cat, err := newCatalog()
	if err != nil {
		return nil, err
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl, cat: cat}, nil
}

// Page describes one rendered page.
type Page struct {
	Template string // named template, e.g. "park"
	TitleKey string // catalog key of the document title
	Title    string // literal title, wins over TitleKey
	Stale    bool   // shows the stale-data banner
	Data     any
}

type (
	HomeData struct {
		Continents []domain.Continent
	}
	ContinentData struct {
		Continent *domain.Continent
	}
	CountryData struct {
		Continent *domain.Continent
		Country   *domain.Country
	}
	CityData struct {
		Continent *domain.Continent
		Country   *domain.Country
		City      *domain.City
	}
	ParkData struct {
		Park *domain.ParkDetail
	}
	AttractionData struct {
		Park       *domain.ParkDetail
		Attraction *domain.Attraction
	}
	NearbyData struct {
		Result     *domain.NearbyResult
		MessageKey string
		Message    string
	}
	FavoritesData struct {
		Favorites *domain.FavoritesResponse
	}
	ErrorData struct {
		Status     int
		MessageKey string
	}
)

// view is the template root.
type view struct {
	Page
	Locale  string
	Locales []string
	printer *message.Printer
}

// T returns the localized label for key.
func (v view) T(key string, args ...any) string {
	return v.printer.Sprintf(key, args...)
}

// HeadTitle is the document title.
func (v view) HeadTitle() string {
	site := v.T("site.title")
	switch {
	case v.Title != "":
		return v.Title + " | " + site
	case v.TitleKey != "":
		return v.T(v.TitleKey) + " | " + site
	default:
		return site
	}
}

// Distance formats meters for display.
func (v view) Distance(meters float64) string {
	if meters < 1000 {
		return v.T("distance.m", int(math.Round(meters)))
	}
	return v.T("distance.km", meters/1000)
}

// Wait formats a wait time in minutes.
func (v view) Wait(minutes *int) string {
	if minutes == nil {
		return v.T("park.noWait")
	}
	return v.T("park.waitTime", *minutes)
}

// Render writes p in locale to w. Unsupported locales render in English.
// Output is buffered so a template failure never leaves a partial page.
func (r *Renderer) Render(w io.Writer, locale string, p Page) error {
	tag, ok := ParseLocale(locale)
	if !ok {
		tag, locale = language.English, DefaultLocale
	}
	v := view{
		Page:    p,
		Locale:  locale,
		Locales: LocaleCodes(),
		printer: message.NewPrinter(tag, message.Catalog(r.cat)),
	}

	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, p.Template, v); err != nil {
		return fmt.Errorf("render %s: %w", p.Template, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
