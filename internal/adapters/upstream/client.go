package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/parkpulse/web/internal/core/domain"
	"github.com/parkpulse/web/internal/pkg/metrics"
	"github.com/parkpulse/web/internal/pkg/telemetry"
)

// Config describes how to reach the wait-time API.
type Config struct {
	BaseURL   string
	APIKey    string
	UserAgent string
	Timeout   time.Duration
	Headers   map[string]string
}

// Client implements ports.ParkAPI over fasthttp.
type Client struct {
	cfg  Config
	base string
	hc   *fasthttp.Client
}

// New creates a new upstream client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		base: strings.TrimRight(cfg.BaseURL, "/"),
		hc: &fasthttp.Client{
			Name:                cfg.UserAgent,
			ReadTimeout:         cfg.Timeout,
			WriteTimeout:        cfg.Timeout,
			MaxIdleConnDuration: 30 * time.Second,
			MaxConnsPerHost:     256,
		},
	}
}

// StatusError is a non-2xx response from the upstream API.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("upstream returned %d", e.Status)
	}
	return fmt.Sprintf("upstream returned %d: %s", e.Status, e.Message)
}

// Unwrap maps 404 to domain.ErrNotFound and other 4xx to domain.ErrRejected.
func (e *StatusError) Unwrap() error {
	switch {
	case e.Status == fasthttp.StatusNotFound:
		return domain.ErrNotFound
	case e.Status >= 400 && e.Status < 500:
		return domain.ErrRejected
	}
	return nil
}

// forward carries visitor context passed through to upstream.
type forward struct {
	ClientIP string
	Cookie   string
}

// headerCarrier adapts fasthttp request headers for trace propagation.
type headerCarrier struct{ h *fasthttp.RequestHeader }

func (c headerCarrier) Get(key string) string { return string(c.h.Peek(key)) }
func (c headerCarrier) Set(key, value string) { c.h.Set(key, value) }
func (c headerCarrier) Keys() []string {
	var keys []string
	c.h.VisitAll(func(k, _ []byte) { keys = append(keys, string(k)) })
	return keys
}

func (c *Client) get(ctx context.Context, endpoint, path string, query url.Values, fwd forward, out any) error {
	ctx, span := telemetry.Tracer("upstream").Start(ctx, "upstream."+endpoint)
	defer span.End()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := c.base + path
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}
	req.SetRequestURI(uri)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("X-API-Key", c.cfg.APIKey)
	}
	if c.cfg.UserAgent != "" {
		req.Header.SetUserAgent(c.cfg.UserAgent)
	}
	if fwd.ClientIP != "" {
		req.Header.Set(fasthttp.HeaderXForwardedFor, fwd.ClientIP)
		req.Header.Set("X-Real-IP", fwd.ClientIP)
	}
	if fwd.Cookie != "" {
		req.Header.Set(fasthttp.HeaderCookie, fwd.Cookie)
	}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{&req.Header})

	timeout := c.cfg.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return fmt.Errorf("%s: %w", endpoint, context.DeadlineExceeded)
	}

	span.SetAttributes(attribute.String("http.url", c.base+path))
	start := time.Now()
	err := c.hc.DoTimeout(req, resp, timeout)
	metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(endpoint, "error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if errors.Is(err, fasthttp.ErrTimeout) {
			return fmt.Errorf("%s: %w", endpoint, context.DeadlineExceeded)
		}
		return fmt.Errorf("%s: %w", endpoint, err)
	}

	status := resp.StatusCode()
	metrics.UpstreamRequests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	span.SetAttributes(attribute.Int("http.status_code", status))

	if status < 200 || status >= 300 {
		serr := &StatusError{Status: status, Message: errorMessage(resp.Body())}
		span.SetStatus(codes.Error, serr.Error())
		return serr
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// errorMessage extracts {"error": ...} or {"message": ...} from an error body.
func errorMessage(body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	if e.Error != "" {
		return e.Error
	}
	return e.Message
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func parkPath(p domain.ParkPath) string {
	return "/v1/parks/" + url.PathEscape(p.Continent) + "/" + url.PathEscape(p.Country) +
		"/" + url.PathEscape(p.City) + "/" + url.PathEscape(p.Park)
}

// Nearby asks upstream for parks around q's coordinate, or around the
// forwarded client IP when no coordinate is set.
func (c *Client) Nearby(ctx context.Context, q domain.NearbyQuery) (*domain.NearbyResult, error) {
	v := url.Values{}
	if q.Coordinate != nil {
		v.Set("lat", formatFloat(q.Coordinate.Latitude))
		v.Set("lng", formatFloat(q.Coordinate.Longitude))
	}
	v.Set("radius", formatFloat(q.Radius))
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}

	var res domain.NearbyResult
	if err := c.get(ctx, "nearby", "/v1/discovery/nearby", v, forward{ClientIP: q.ClientIP}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Favorites resolves favorited ids into entities.
func (c *Client) Favorites(ctx context.Context, q domain.FavoritesQuery) (*domain.FavoritesResponse, error) {
	v := url.Values{}
	for _, p := range []struct {
		param string
		t     domain.FavoriteType
	}{
		{"parkIds", domain.FavoritePark},
		{"attractionIds", domain.FavoriteAttraction},
		{"showIds", domain.FavoriteShow},
		{"restaurantIds", domain.FavoriteRestaurant},
	} {
		if ids := q.Favorites.IDs(p.t); len(ids) > 0 {
			v.Set(p.param, strings.Join(ids, ","))
		}
	}
	if q.Coordinate != nil {
		v.Set("lat", formatFloat(q.Coordinate.Latitude))
		v.Set("lng", formatFloat(q.Coordinate.Longitude))
	}

	var res domain.FavoritesResponse
	if err := c.get(ctx, "favorites", "/v1/favorites", v, forward{ClientIP: q.ClientIP, Cookie: q.Cookie}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Search queries the upstream search index.
func (c *Client) Search(ctx context.Context, query string) (*domain.SearchResponse, error) {
	var res domain.SearchResponse
	if err := c.get(ctx, "search", "/v1/search", url.Values{"q": {query}}, forward{}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Park fetches a park with its live attraction data.
func (c *Client) Park(ctx context.Context, path domain.ParkPath) (*domain.Park, error) {
	var res domain.Park
	if err := c.get(ctx, "park", parkPath(path), nil, forward{}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Calendar fetches the operating calendar between from and to inclusive.
func (c *Client) Calendar(ctx context.Context, path domain.ParkPath, from, to string) (*domain.ParkCalendar, error) {
	var res domain.ParkCalendar
	v := url.Values{"from": {from}, "to": {to}}
	if err := c.get(ctx, "calendar", parkPath(path)+"/calendar", v, forward{}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Destinations fetches the continent/country/city/park tree.
func (c *Client) Destinations(ctx context.Context) ([]domain.Continent, error) {
	var res []domain.Continent
	if err := c.get(ctx, "destinations", "/v1/destinations", nil, forward{}, &res); err != nil {
		return nil, err
	}
	return res, nil
}
