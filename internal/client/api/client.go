// Package api is the HTTP client the SDK packages use to reach the web
// server. It keeps a small cookie jar so the visitor id and the debug flag
// cookie survive across calls, the way a browser tab would.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/parkpulse/web/internal/core/domain"
)

const defaultTimeout = 15 * time.Second

// ResponseError is a non-2xx answer from the server.
type ResponseError struct {
	Status     int
	StatusText string
	Message    string // server-provided {"error": ...}, may be empty
}

func (e *ResponseError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d %s", e.Status, e.StatusText)
}

type Client struct {
	base    string
	hc      *fasthttp.Client
	timeout time.Duration

	mu      sync.Mutex
	cookies map[string]string
}

// New builds a client for the server at baseURL, e.g. "http://localhost:3000".
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		base:    strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		hc: &fasthttp.Client{
			Name:                "parkpulse-sdk",
			MaxConnsPerHost:     16,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: 30 * time.Second,
		},
		cookies: make(map[string]string),
	}
}

// SetCookie stores a cookie sent with every later request. An empty value
// removes it.
func (c *Client) SetCookie(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if value == "" {
		delete(c.cookies, name)
		return
	}
	c.cookies[name] = value
}

// Cookie returns the stored value of name.
func (c *Client) Cookie(name string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cookies[name]
}

// Cookies returns a copy of the jar.
func (c *Client) Cookies() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.cookies))
	for k, v := range c.cookies {
		out[k] = v
	}
	return out
}

// Do sends a request and decodes a JSON answer into out when out is non-nil.
// A non-nil body is sent as JSON. Set-Cookie headers update the jar.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := c.base + path
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}
	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	c.mu.Lock()
	for k, v := range c.cookies {
		req.Header.SetCookie(k, v)
	}
	c.mu.Unlock()

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(b)
	}

	timeout := c.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if timeout <= 0 {
		return fmt.Errorf("%s %s: %w", method, path, context.DeadlineExceeded)
	}

	if err := c.hc.DoTimeout(req, resp, timeout); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			return fmt.Errorf("%s %s: %w", method, path, context.DeadlineExceeded)
		}
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	c.storeCookies(&resp.Header)

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return &ResponseError{
			Status:     status,
			StatusText: fasthttp.StatusMessage(status),
			Message:    errorMessage(resp.Body()),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) storeCookies(h *fasthttp.ResponseHeader) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h.VisitAllCookie(func(key, value []byte) {
		ck := fasthttp.AcquireCookie()
		defer fasthttp.ReleaseCookie(ck)
		if err := ck.ParseBytes(value); err != nil {
			return
		}
		name := string(key)
		if ck.MaxAge() < 0 || len(ck.Value()) == 0 {
			delete(c.cookies, name)
			return
		}
		c.cookies[name] = string(ck.Value())
	})
}

func errorMessage(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return e.Error
}

// Nearby calls GET /api/nearby. A nil coord leaves location to the server's
// IP fallback. A zero limit lets the server decide.
func (c *Client) Nearby(ctx context.Context, coord *domain.Coordinate, radius float64, limit int) (*domain.NearbyResult, error) {
	v := url.Values{}
	if coord != nil {
		v.Set("lat", strconv.FormatFloat(coord.Latitude, 'f', -1, 64))
		v.Set("lng", strconv.FormatFloat(coord.Longitude, 'f', -1, 64))
	}
	v.Set("radius", strconv.FormatFloat(radius, 'f', -1, 64))
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var out domain.NearbyResult
	if err := c.Do(ctx, fasthttp.MethodGet, "/api/nearby", v, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DebugMode calls GET /api/debug-geo-mode. Unknown modes read as real.
func (c *Client) DebugMode(ctx context.Context) (domain.GeoMode, error) {
	var out struct {
		Mode string `json:"mode"`
	}
	if err := c.Do(ctx, fasthttp.MethodGet, "/api/debug-geo-mode", nil, nil, &out); err != nil {
		return domain.GeoModeReal, err
	}
	mode, _ := domain.ParseGeoMode(out.Mode)
	return mode, nil
}

// SyncFavorites sends the full favorites set with PUT /api/favorites.
func (c *Client) SyncFavorites(ctx context.Context, favs domain.Favorites) error {
	var out struct {
		Synced bool `json:"synced"`
	}
	if err := c.Do(ctx, fasthttp.MethodPut, "/api/favorites", nil, favs, &out); err != nil {
		return err
	}
	if !out.Synced {
		return errors.New("favorites sync not acknowledged")
	}
	return nil
}

// Favorites calls GET /api/favorites. The server falls back to the cookie
// and then to the stored copy when favs is empty.
func (c *Client) Favorites(ctx context.Context, favs domain.Favorites, coord *domain.Coordinate) (*domain.FavoritesResponse, error) {
	v := url.Values{}
	set := func(key string, ids []string) {
		if len(ids) > 0 {
			v.Set(key, strings.Join(ids, ","))
		}
	}
	set("parkIds", favs.Parks)
	set("attractionIds", favs.Attractions)
	set("showIds", favs.Shows)
	set("restaurantIds", favs.Restaurants)
	if coord != nil {
		v.Set("lat", strconv.FormatFloat(coord.Latitude, 'f', -1, 64))
		v.Set("lng", strconv.FormatFloat(coord.Longitude, 'f', -1, 64))
	}
	var out domain.FavoritesResponse
	if err := c.Do(ctx, fasthttp.MethodGet, "/api/favorites", v, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
