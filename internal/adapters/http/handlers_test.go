package http_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/parkpulse/web/internal/adapters/http"
	"github.com/parkpulse/web/internal/adapters/flags"
	"github.com/parkpulse/web/internal/adapters/upstream"
	"github.com/parkpulse/web/internal/core/domain"
	"github.com/parkpulse/web/internal/core/usecases"
	"github.com/parkpulse/web/internal/render"
)

const testVisitor = "0b9d6f2e-3c1a-4f7e-9a55-2f1e8c4d7b10"

type testEnv struct {
	api    *mockParkAPI
	images mockImages
	cache  *memCache
	repo   *mockFavoritesRepo
	flags  *flags.Decrypter
}

func newTestEnv() *testEnv {
	return &testEnv{
		api:    &mockParkAPI{},
		images: mockImages{"europa-park": "/images/europa-park.jpg"},
		cache:  newMemCache(),
		repo:   newMockFavoritesRepo(),
	}
}

func (e *testEnv) deps(t *testing.T) *handler.Dependencies {
	t.Helper()
	pages, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	var debug *usecases.DebugModeService
	if e.flags != nil {
		debug = usecases.NewDebugModeService(e.flags)
	} else {
		debug = usecases.NewDebugModeService(nil)
	}
	return &handler.Dependencies{
		Nearby:    usecases.NewNearbyService(e.api, e.images, true),
		Favorites: usecases.NewFavoritesService(e.api, e.images, e.repo, nil, nil),
		Search:    usecases.NewSearchService(e.api, e.cache, 300),
		Parks:     usecases.NewParkService(e.api, e.images, e.cache, 300),
		DebugMode: debug,
		Pages:     pages,
	}
}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps, handler.RouterOptions{Version: "test"})
	return app
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp, string(readBody(t, resp.Body))
}

func europaPark() domain.Park {
	wait := 25
	return domain.Park{
		ID: "p1", Name: "Europa-Park", Slug: "europa-park",
		Continent: "europe", Country: "germany", City: "rust",
		Latitude: domain.DebugInParkCoordinate.Latitude, Longitude: domain.DebugInParkCoordinate.Longitude,
		Attractions: []domain.Attraction{{ID: "a1", Name: "Blue Fire", Slug: "blue-fire", WaitTime: &wait}},
	}
}

// ---- Nearby ----

func TestNearby_InvalidLatitude(t *testing.T) {
	app := setupApp(newTestEnv().deps(t))

	resp, body := do(t, app, httptest.NewRequest("GET", "/api/nearby?lat=200&lng=10", nil))

	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Invalid latitude or longitude") {
		t.Errorf("unexpected body: %s", body)
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Errorf("expected no-store, got %q", cc)
	}
}

func TestNearby_LocationRequiredForLoopbackIP(t *testing.T) {
	env := newTestEnv()
	called := false
	env.api.nearbyFn = func(ctx context.Context, q domain.NearbyQuery) (*domain.NearbyResult, error) {
		called = true
		return nil, errors.New("unexpected call")
	}
	app := setupApp(env.deps(t))

	req := httptest.NewRequest("GET", "/api/nearby", nil)
	req.Header.Set("X-Forwarded-For", "127.0.0.1")
	resp, body := do(t, app, req)

	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Location required") {
		t.Errorf("unexpected body: %s", body)
	}
	if called {
		t.Error("upstream must not be called without a usable location")
	}
}

func TestNearby_RadiusBounds(t *testing.T) {
	app := setupApp(newTestEnv().deps(t))

	tests := []struct {
		radius string
		want   int
	}{
		{"0", 200},
		{"50000", 200},
		{"-1", 400},
		{"50000.5", 400},
		{"wide", 400},
	}
	for _, tt := range tests {
		resp, body := do(t, app, httptest.NewRequest("GET", "/api/nearby?lat=48.26&lng=7.72&radius="+tt.radius, nil))
		if resp.StatusCode != tt.want {
			t.Errorf("radius=%s: expected %d, got %d (%s)", tt.radius, tt.want, resp.StatusCode, body)
		}
	}
}

func TestNearby_LimitBounds(t *testing.T) {
	env := newTestEnv()
	var gotLimit int
	env.api.nearbyFn = func(ctx context.Context, q domain.NearbyQuery) (*domain.NearbyResult, error) {
		gotLimit = q.Limit
		return &domain.NearbyResult{Type: domain.NearbyTypeNearbyParks, NearbyParks: &domain.NearbyParksData{}}, nil
	}
	app := setupApp(env.deps(t))

	for _, limit := range []string{"0", "51", "-3", "six"} {
		resp, _ := do(t, app, httptest.NewRequest("GET", "/api/nearby?lat=48.26&lng=7.72&limit="+limit, nil))
		if resp.StatusCode != 400 {
			t.Errorf("limit=%s: expected 400, got %d", limit, resp.StatusCode)
		}
	}

	resp, _ := do(t, app, httptest.NewRequest("GET", "/api/nearby?lat=48.26&lng=7.72", nil))
	if resp.StatusCode != 200 {
		t.Fatalf("omitted limit: expected 200, got %d", resp.StatusCode)
	}
	if gotLimit != 0 {
		t.Errorf("omitted limit must be left to upstream, got %d", gotLimit)
	}

	resp, _ = do(t, app, httptest.NewRequest("GET", "/api/nearby?lat=48.26&lng=7.72&limit=50", nil))
	if resp.StatusCode != 200 || gotLimit != 50 {
		t.Errorf("limit=50: expected 200 with limit 50, got %d / %d", resp.StatusCode, gotLimit)
	}
}

func TestNearby_IPFallbackPrefersIPv4(t *testing.T) {
	env := newTestEnv()
	var got domain.NearbyQuery
	env.api.nearbyFn = func(ctx context.Context, q domain.NearbyQuery) (*domain.NearbyResult, error) {
		got = q
		return &domain.NearbyResult{Type: domain.NearbyTypeNearbyParks, NearbyParks: &domain.NearbyParksData{}}, nil
	}
	app := setupApp(env.deps(t))

	req := httptest.NewRequest("GET", "/api/nearby", nil)
	req.Header.Set("X-Forwarded-For", "2001:db8::1, 203.0.113.7, 198.51.100.2")
	resp, _ := do(t, app, req)

	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got.ClientIP != "203.0.113.7" {
		t.Errorf("expected first IPv4, got %q", got.ClientIP)
	}
	if got.Coordinate != nil {
		t.Errorf("expected no coordinate, got %+v", got.Coordinate)
	}
}

func TestNearby_IPOverride(t *testing.T) {
	env := newTestEnv()
	var got domain.NearbyQuery
	env.api.nearbyFn = func(ctx context.Context, q domain.NearbyQuery) (*domain.NearbyResult, error) {
		got = q
		return &domain.NearbyResult{Type: domain.NearbyTypeNearbyParks, NearbyParks: &domain.NearbyParksData{}}, nil
	}
	app := setupApp(env.deps(t))

	req := httptest.NewRequest("GET", "/api/nearby?ip=81.2.69.142", nil)
	req.Header.Set("X-Forwarded-For", "127.0.0.1")
	resp, _ := do(t, app, req)

	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got.ClientIP != "81.2.69.142" {
		t.Errorf("expected override IP, got %q", got.ClientIP)
	}
}

func TestNearby_ClassifiesInParkAndAttachesImage(t *testing.T) {
	env := newTestEnv()
	env.api.nearbyFn = func(ctx context.Context, q domain.NearbyQuery) (*domain.NearbyResult, error) {
		return &domain.NearbyResult{
			Type:        domain.NearbyTypeNearbyParks,
			NearbyParks: &domain.NearbyParksData{Parks: []domain.ParkWithDistance{{Park: europaPark()}}},
		}, nil
	}
	app := setupApp(env.deps(t))

	in := domain.DebugInParkCoordinate
	url := "/api/nearby?lat=" + ftoa(in.Latitude) + "&lng=" + ftoa(in.Longitude)
	resp, body := do(t, app, httptest.NewRequest("GET", url, nil))

	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var res domain.NearbyResult
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Type != domain.NearbyTypeInPark {
		t.Fatalf("expected in_park, got %s", res.Type)
	}
	if img := res.InPark.Park.BackgroundImage; img == nil || *img != "/images/europa-park.jpg" {
		t.Errorf("expected background image, got %v", img)
	}
	if len(res.InPark.Attractions) != 1 {
		t.Errorf("expected 1 attraction, got %d", len(res.InPark.Attractions))
	}
}

func TestNearby_UpstreamFailureIsGeneric(t *testing.T) {
	env := newTestEnv()
	env.api.nearbyFn = func(ctx context.Context, q domain.NearbyQuery) (*domain.NearbyResult, error) {
		return nil, errors.New("dial tcp 10.0.0.5:443: connection refused")
	}
	app := setupApp(env.deps(t))

	resp, body := do(t, app, httptest.NewRequest("GET", "/api/nearby?lat=48.26&lng=7.72", nil))

	if resp.StatusCode != 500 {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	if strings.Contains(body, "10.0.0.5") {
		t.Errorf("raw error leaked: %s", body)
	}
	var apiErr handler.APIError
	if err := json.Unmarshal([]byte(body), &apiErr); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if apiErr.Message != "Failed to fetch nearby parks" || apiErr.Code != "internal_error" {
		t.Errorf("unexpected error body: %+v", apiErr)
	}
}

func TestNearby_Upstream4xxPassthrough(t *testing.T) {
	env := newTestEnv()
	env.api.nearbyFn = func(ctx context.Context, q domain.NearbyQuery) (*domain.NearbyResult, error) {
		return nil, &upstream.StatusError{Status: 422, Message: "Unknown region"}
	}
	app := setupApp(env.deps(t))

	resp, body := do(t, app, httptest.NewRequest("GET", "/api/nearby?lat=48.26&lng=7.72", nil))

	if resp.StatusCode != 422 {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Unknown region") {
		t.Errorf("unexpected body: %s", body)
	}
}

// ---- Debug geo mode ----

func TestDebugGeoMode_NoSecretAlwaysReal(t *testing.T) {
	app := setupApp(newTestEnv().deps(t))

	for _, cookie := range []string{"", "garbage", "eyJhbGciOiJkaXIifQ.."} {
		req := httptest.NewRequest("GET", "/api/debug-geo-mode", nil)
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: flags.CookieName, Value: cookie})
		}
		resp, body := do(t, app, req)
		if resp.StatusCode != 200 {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if strings.TrimSpace(body) != `{"mode":"real"}` {
			t.Errorf("cookie %q: unexpected body %s", cookie, body)
		}
	}
}

func TestDebugGeoMode_DecryptsOverride(t *testing.T) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatal(err)
	}
	dec, err := flags.NewDecrypter(base64.RawURLEncoding.EncodeToString(key))
	if err != nil {
		t.Fatalf("decrypter: %v", err)
	}
	token, err := dec.EncryptOverrides(map[string]any{usecases.DebugGeoModeFlag: "in"}, time.Hour)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	env := newTestEnv()
	env.flags = dec
	app := setupApp(env.deps(t))

	req := httptest.NewRequest("GET", "/api/debug-geo-mode", nil)
	req.AddCookie(&http.Cookie{Name: flags.CookieName, Value: token})
	_, body := do(t, app, req)

	if strings.TrimSpace(body) != `{"mode":"in"}` {
		t.Errorf("unexpected body %s", body)
	}
}

// ---- Favorites ----

func favoritesCookie(raw string) *http.Cookie {
	return &http.Cookie{Name: domain.FavoritesCookieName, Value: urlEscape(raw)}
}

func TestFavorites_CookieFallbackDedupes(t *testing.T) {
	env := newTestEnv()
	var got domain.FavoritesQuery
	env.api.favoritesFn = func(ctx context.Context, q domain.FavoritesQuery) (*domain.FavoritesResponse, error) {
		got = q
		return &domain.FavoritesResponse{Parks: []domain.ParkWithDistance{{Park: europaPark()}}}, nil
	}
	app := setupApp(env.deps(t))

	req := httptest.NewRequest("GET", "/api/favorites?attractionIds=x1,x2", nil)
	req.AddCookie(favoritesCookie(`{"parks":["a","a","b"]}`))
	req.Header.Set("X-Forwarded-For", "203.0.113.7")
	resp, body := do(t, app, req)

	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if strings.Join(got.Favorites.Parks, ",") != "a,b" {
		t.Errorf("expected deduped cookie parks, got %v", got.Favorites.Parks)
	}
	if strings.Join(got.Favorites.Attractions, ",") != "x1,x2" {
		t.Errorf("expected query attractions, got %v", got.Favorites.Attractions)
	}
	if !strings.Contains(got.Cookie, domain.FavoritesCookieName+"=") {
		t.Errorf("expected cookies forwarded, got %q", got.Cookie)
	}
	if got.ClientIP != "203.0.113.7" {
		t.Errorf("expected client IP forwarded, got %q", got.ClientIP)
	}
	if !strings.Contains(body, `"backgroundImage":"/images/europa-park.jpg"`) {
		t.Errorf("expected enriched park, got %s", body)
	}
}

func TestFavorites_EmptySkipsUpstream(t *testing.T) {
	env := newTestEnv()
	env.api.favoritesFn = func(ctx context.Context, q domain.FavoritesQuery) (*domain.FavoritesResponse, error) {
		t.Error("upstream must not be called for an empty set")
		return nil, nil
	}
	app := setupApp(env.deps(t))

	resp, body := do(t, app, httptest.NewRequest("GET", "/api/favorites", nil))

	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	want := `{"parks":[],"attractions":[],"shows":[],"restaurants":[]}`
	if strings.TrimSpace(body) != want {
		t.Errorf("expected %s, got %s", want, body)
	}
}

func TestSyncFavorites_SetsCookiesAndPersists(t *testing.T) {
	env := newTestEnv()
	app := setupApp(env.deps(t))

	req := httptest.NewRequest("PUT", "/api/favorites", strings.NewReader(`{"parks":["europa-park","europa-park"],"attractions":["blue-fire"]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, body := do(t, app, req)

	if resp.StatusCode != 202 {
		t.Fatalf("expected 202, got %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, `"synced":true`) {
		t.Errorf("unexpected body: %s", body)
	}

	var visitor, favorites string
	for _, c := range resp.Cookies() {
		switch c.Name {
		case "visitor_id":
			visitor = c.Value
		case domain.FavoritesCookieName:
			favorites = c.Value
		}
	}
	if visitor == "" || favorites == "" {
		t.Fatalf("expected visitor and favorites cookies, got %v", resp.Cookies())
	}

	stored, err := env.repo.Get(context.Background(), visitor)
	if err != nil {
		t.Fatalf("expected stored favorites: %v", err)
	}
	if strings.Join(stored.Favorites.Parks, ",") != "europa-park" {
		t.Errorf("expected deduped parks, got %v", stored.Favorites.Parks)
	}

	decoded, err := domain.DecodeFavoritesCookie(favorites)
	if err != nil || !decoded.Contains(domain.FavoriteAttraction, "blue-fire") {
		t.Errorf("favorites cookie does not round-trip: %v %+v", err, decoded)
	}
}

func TestSyncFavorites_KeepsExistingVisitor(t *testing.T) {
	env := newTestEnv()
	app := setupApp(env.deps(t))

	req := httptest.NewRequest("PUT", "/api/favorites", strings.NewReader(`{"shows":["parade"]}`))
	req.AddCookie(&http.Cookie{Name: "visitor_id", Value: testVisitor})
	resp, _ := do(t, app, req)

	if resp.StatusCode != 202 {
		t.Fatalf("expected 202, got %d", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "visitor_id" {
			t.Errorf("visitor cookie must not be reissued, got %q", c.Value)
		}
	}
	if _, err := env.repo.Get(context.Background(), testVisitor); err != nil {
		t.Errorf("expected favorites stored for existing visitor: %v", err)
	}
}

func TestSyncFavorites_InvalidBody(t *testing.T) {
	app := setupApp(newTestEnv().deps(t))

	resp, body := do(t, app, httptest.NewRequest("PUT", "/api/favorites", strings.NewReader(`{"parks":`)))

	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Invalid favorites payload") {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestFavorites_StoredFallbackForKnownVisitor(t *testing.T) {
	env := newTestEnv()
	_, _ = env.repo.Save(context.Background(), testVisitor, domain.Favorites{Parks: []string{"europa-park"}}, time.Now())
	var got domain.FavoritesQuery
	env.api.favoritesFn = func(ctx context.Context, q domain.FavoritesQuery) (*domain.FavoritesResponse, error) {
		got = q
		return &domain.FavoritesResponse{}, nil
	}
	app := setupApp(env.deps(t))

	req := httptest.NewRequest("GET", "/api/favorites", nil)
	req.AddCookie(&http.Cookie{Name: "visitor_id", Value: testVisitor})
	resp, _ := do(t, app, req)

	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if strings.Join(got.Favorites.Parks, ",") != "europa-park" {
		t.Errorf("expected stored favorites, got %v", got.Favorites.Parks)
	}
}

// ---- Search & parks ----

func TestSearch_ShortQueryIsEmpty(t *testing.T) {
	env := newTestEnv()
	env.api.searchFn = func(ctx context.Context, query string) (*domain.SearchResponse, error) {
		t.Error("upstream must not be called for short queries")
		return nil, nil
	}
	app := setupApp(env.deps(t))

	resp, body := do(t, app, httptest.NewRequest("GET", "/api/search?q=ab", nil))

	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if strings.TrimSpace(body) != `{"results":[],"count":0}` {
		t.Errorf("unexpected body: %s", body)
	}
	if cc := resp.Header.Get("Cache-Control"); !strings.Contains(cc, "s-maxage=300") {
		t.Errorf("expected revalidating cache header, got %q", cc)
	}
}

func TestPark_NotFound(t *testing.T) {
	app := setupApp(newTestEnv().deps(t))

	resp, _ := do(t, app, httptest.NewRequest("GET", "/api/parks/europe/germany/rust/nowhere", nil))

	if resp.StatusCode != 404 {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPark_UpstreamRemovalAfterGoodFetch(t *testing.T) {
	env := newTestEnv()
	var failWith error
	env.api.parkFn = func(ctx context.Context, path domain.ParkPath) (*domain.Park, error) {
		if failWith != nil {
			return nil, failWith
		}
		p := europaPark()
		return &p, nil
	}
	app := setupApp(env.deps(t))
	url := "/api/parks/europe/germany/rust/europa-park"

	if resp, _ := do(t, app, httptest.NewRequest("GET", url, nil)); resp.StatusCode != 200 {
		t.Fatalf("first fetch: expected 200, got %d", resp.StatusCode)
	}

	_ = env.cache.Delete(context.Background(), "park:europe/germany/rust/europa-park")
	failWith = &upstream.StatusError{Status: 404, Message: "park not found"}

	resp, body := do(t, app, httptest.NewRequest("GET", url, nil))
	if resp.StatusCode != 404 || !strings.Contains(body, "park not found") {
		t.Errorf("expected upstream 404 to pass through, got %d %s", resp.StatusCode, body)
	}

	resp, _ = do(t, app, httptest.NewRequest("GET", "/en/parks/europe/germany/rust/europa-park", nil))
	if resp.StatusCode != 404 {
		t.Errorf("park page: expected 404 for a removed park, got %d", resp.StatusCode)
	}
}

func TestPark_UpstreamOutageIsGenericOnJSON(t *testing.T) {
	env := newTestEnv()
	fail := false
	env.api.parkFn = func(ctx context.Context, path domain.ParkPath) (*domain.Park, error) {
		if fail {
			return nil, &upstream.StatusError{Status: 503}
		}
		p := europaPark()
		return &p, nil
	}
	app := setupApp(env.deps(t))
	url := "/api/parks/europe/germany/rust/europa-park"

	do(t, app, httptest.NewRequest("GET", url, nil))
	_ = env.cache.Delete(context.Background(), "park:europe/germany/rust/europa-park")
	fail = true

	resp, body := do(t, app, httptest.NewRequest("GET", url, nil))
	if resp.StatusCode != 500 || !strings.Contains(body, "Failed to fetch park") {
		t.Errorf("expected generic 500, got %d %s", resp.StatusCode, body)
	}
}

func TestPark_InvalidSlug(t *testing.T) {
	app := setupApp(newTestEnv().deps(t))

	resp, body := do(t, app, httptest.NewRequest("GET", "/api/parks/europe/Germany/rust/europa-park", nil))

	if resp.StatusCode != 400 || !strings.Contains(body, "Invalid country parameter") {
		t.Errorf("expected 400 invalid country, got %d %s", resp.StatusCode, body)
	}
}

func TestParkCalendar_RequiresDates(t *testing.T) {
	app := setupApp(newTestEnv().deps(t))

	resp, body := do(t, app, httptest.NewRequest("GET", "/api/parks/europe/germany/rust/europa-park/calendar?from=2026-07-01", nil))
	if resp.StatusCode != 400 || !strings.Contains(body, "Missing required parameters") {
		t.Errorf("expected 400 missing dates, got %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, app, httptest.NewRequest("GET", "/api/parks/europe/germany/rust/europa-park/calendar?from=2026-07-01&to=01.08.2026", nil))
	if resp.StatusCode != 400 || !strings.Contains(body, "Invalid date format") {
		t.Errorf("expected 400 invalid date, got %d %s", resp.StatusCode, body)
	}

	resp, _ = do(t, app, httptest.NewRequest("GET", "/api/parks/europe/germany/rust/europa-park/calendar?from=2026-07-01&to=2026-07-31", nil))
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestAPI_UnknownRouteIsJSON404(t *testing.T) {
	app := setupApp(newTestEnv().deps(t))

	resp, body := do(t, app, httptest.NewRequest("GET", "/api/unknown", nil))

	if resp.StatusCode != 404 || !strings.Contains(body, `"code":"not_found"`) {
		t.Errorf("expected JSON 404, got %d %s", resp.StatusCode, body)
	}
}

// ---- Pages ----

func TestRootRedirectsToNegotiatedLocale(t *testing.T) {
	app := setupApp(newTestEnv().deps(t))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept-Language", "de-CH,de;q=0.9,en;q=0.5")
	resp, _ := do(t, app, req)

	if resp.StatusCode != 302 {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/de" {
		t.Errorf("expected /de, got %q", loc)
	}
}

func TestParkPage_RendersAndFallsBackToLastKnownData(t *testing.T) {
	env := newTestEnv()
	fail := false
	env.api.parkFn = func(ctx context.Context, path domain.ParkPath) (*domain.Park, error) {
		if fail {
			return nil, errors.New("upstream down")
		}
		p := europaPark()
		return &p, nil
	}
	app := setupApp(env.deps(t))
	url := "/en/parks/europe/germany/rust/europa-park"

	resp, body := do(t, app, httptest.NewRequest("GET", url, nil))
	if resp.StatusCode != 200 || !strings.Contains(body, "Blue Fire") {
		t.Fatalf("expected park page, got %d", resp.StatusCode)
	}
	if strings.Contains(body, "banner-stale") {
		t.Error("fresh page must not carry the stale banner")
	}

	// Expire the fresh entry so the next request goes upstream.
	_ = env.cache.Delete(context.Background(), "park:europe/germany/rust/europa-park")
	fail = true

	resp, body = do(t, app, httptest.NewRequest("GET", url, nil))
	if resp.StatusCode != 200 {
		t.Fatalf("expected fallback page, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "banner-stale") || !strings.Contains(body, "Blue Fire") {
		t.Error("expected last known data with the stale banner")
	}
}

func TestPages_UnknownLocaleIs404(t *testing.T) {
	app := setupApp(newTestEnv().deps(t))

	resp, body := do(t, app, httptest.NewRequest("GET", "/pt/nearby", nil))

	if resp.StatusCode != 404 || !strings.Contains(body, "Page not found") {
		t.Errorf("expected 404 page, got %d", resp.StatusCode)
	}
}

func TestNearbyPage_LocationRequiredMessage(t *testing.T) {
	app := setupApp(newTestEnv().deps(t))

	req := httptest.NewRequest("GET", "/fr/nearby", nil)
	req.Header.Set("X-Forwarded-For", "192.168.1.20")
	resp, body := do(t, app, req)

	if resp.StatusCode != 400 {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "Autorisez la localisation") {
		t.Errorf("expected localized location message, got %s", body)
	}
}

// ---- Health ----

func TestHealthAndReady(t *testing.T) {
	app := setupApp(newTestEnv().deps(t))

	resp, body := do(t, app, httptest.NewRequest("GET", "/healthz", nil))
	if resp.StatusCode != 200 || !strings.Contains(body, `"status":"healthy"`) {
		t.Errorf("unexpected health response: %d %s", resp.StatusCode, body)
	}

	resp, body = do(t, app, httptest.NewRequest("GET", "/readyz", nil))
	if resp.StatusCode != 200 || !strings.Contains(body, `"database":"not configured"`) {
		t.Errorf("unexpected ready response: %d %s", resp.StatusCode, body)
	}
}

func TestFavoritesFeed_RequiresUpgrade(t *testing.T) {
	app := setupApp(newTestEnv().deps(t))

	resp, _ := do(t, app, httptest.NewRequest("GET", "/ws/favorites", nil))

	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Errorf("expected 426, got %d", resp.StatusCode)
	}
}

func TestGraphQL_Search(t *testing.T) {
	env := newTestEnv()
	env.api.searchFn = func(ctx context.Context, query string) (*domain.SearchResponse, error) {
		return &domain.SearchResponse{
			Query:   query,
			Results: []domain.SearchResult{{Type: "attraction", ID: "a1", Name: "Silver Star", ParkName: "Europa-Park"}},
			Count:   1,
		}, nil
	}
	app := setupApp(env.deps(t))

	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(`{"query":"{ search(query: \"silver\") { name parkName } }"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, body := do(t, app, req)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var out struct {
		Data struct {
			Search []struct {
				Name     string `json:"name"`
				ParkName string `json:"parkName"`
			} `json:"search"`
		} `json:"data"`
		Errors []any `json:"errors"`
	}
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Errors) != 0 || len(out.Data.Search) != 1 || out.Data.Search[0].ParkName != "Europa-Park" {
		t.Errorf("unexpected result: %s", body)
	}
}

func TestGraphQL_NearbyValidation(t *testing.T) {
	app := setupApp(newTestEnv().deps(t))

	req := httptest.NewRequest("POST", "/graphql", strings.NewReader(`{"query":"{ nearby(lat: 200, lng: 7.7) { type } }"}`))
	req.Header.Set("Content-Type", "application/json")
	_, body := do(t, app, req)
	if !strings.Contains(body, "Invalid latitude or longitude") {
		t.Errorf("expected validation error in errors, got %s", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := setupApp(newTestEnv().deps(t))
	do(t, app, httptest.NewRequest("GET", "/healthz", nil))

	resp, body := do(t, app, httptest.NewRequest("GET", "/metrics", nil))
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "parkpulse_http_requests_total") {
		t.Errorf("expected http request counter in metrics output")
	}
}
