package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parkpulse/web/internal/client/api"
	"github.com/parkpulse/web/internal/core/domain"
)

func newClient(t *testing.T, h http.HandlerFunc) *api.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return api.New(srv.URL, 2*time.Second)
}

func TestClient_Nearby_SendsCoordinates(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/nearby", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "48.266", q.Get("lat"))
		assert.Equal(t, "7.722", q.Get("lng"))
		assert.Equal(t, "1000", q.Get("radius"))
		assert.Equal(t, "6", q.Get("limit"))
		_, _ = w.Write([]byte(`{"type":"nearby_parks","userLocation":null,"data":{"parks":[],"count":0}}`))
	})

	res, err := c.Nearby(context.Background(), &domain.Coordinate{Latitude: 48.266, Longitude: 7.722}, 1000, 6)
	require.NoError(t, err)
	assert.Equal(t, domain.NearbyTypeNearbyParks, res.Type)
}

func TestClient_Nearby_OmitsCoordinatesForIPFallback(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("lat"))
		assert.Empty(t, r.URL.Query().Get("lng"))
		_, _ = w.Write([]byte(`{"type":"nearby_parks","userLocation":null,"data":{"parks":[],"count":0}}`))
	})

	_, err := c.Nearby(context.Background(), nil, 1000, 6)
	require.NoError(t, err)
}

func TestClient_ResponseError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Invalid limit. Must be between 1 and 50"}`))
	})

	_, err := c.Nearby(context.Background(), nil, 1000, 99)
	var rerr *api.ResponseError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, http.StatusBadRequest, rerr.Status)
	assert.Equal(t, "Invalid limit. Must be between 1 and 50", rerr.Message)
}

func TestClient_CookieJar(t *testing.T) {
	var calls int
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			body, _ := io.ReadAll(r.Body)
			var favs domain.Favorites
			assert.NoError(t, json.Unmarshal(body, &favs))
			assert.Equal(t, []string{"p1"}, favs.Parks)
			http.SetCookie(w, &http.Cookie{Name: "visitor_id", Value: "0b5e6a32-6d4f-4f0e-9a57-4c1c5b3b1f0e", Path: "/"})
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"synced":true}`))
			return
		}
		if ck, err := r.Cookie("visitor_id"); assert.NoError(t, err) {
			assert.Equal(t, "0b5e6a32-6d4f-4f0e-9a57-4c1c5b3b1f0e", ck.Value)
		}
		_, _ = w.Write([]byte(`{"mode":"IN"}`))
	})

	require.NoError(t, c.SyncFavorites(context.Background(), domain.Favorites{Parks: []string{"p1"}}))
	assert.Equal(t, "0b5e6a32-6d4f-4f0e-9a57-4c1c5b3b1f0e", c.Cookie("visitor_id"))

	mode, err := c.DebugMode(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.GeoModeIn, mode)
}

func TestClient_ContextCanceled(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.DebugMode(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
