package http

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/parkpulse/web/internal/pkg/logging"
	"github.com/parkpulse/web/internal/pkg/metrics"
)

const wsPingInterval = 30 * time.Second

// FavoritesFeedUpgrade admits WebSocket upgrades from visitors that carry a
// visitor cookie and stores the visitor id for the handler.
func FavoritesFeedUpgrade(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if deps.Feed == nil {
			return newError(c, fiber.StatusServiceUnavailable, "unavailable", "Live favorites updates are not available")
		}
		id, ok := visitorID(c)
		if !ok {
			return errBadRequest(c, "Missing visitor id")
		}
		c.Locals("visitor_id", id)
		return c.Next()
	}
}

// FavoritesFeedHandler relays favorites change events of the connected
// visitor, so other open tabs can reload their favorites. Clients only
// listen; anything they send is ignored.
func FavoritesFeedHandler(feed VisitorFeed) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		visitor, _ := c.Locals("visitor_id").(string)
		logger := logging.Component(nil, "favorites-feed").With("visitor_id", visitor)

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		write := func(messageType int, data []byte) error {
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(messageType, data)
		}

		unsubscribe, err := feed.SubscribeVisitor(visitor, func(data []byte) {
			if err := write(websocket.TextMessage, data); err != nil {
				logger.Debug("ws write failed", "error", err)
			}
		})
		if err != nil {
			logger.Warn("ws subscribe failed", "error", err)
			msg, _ := json.Marshal(map[string]string{"error": "subscribe failed"})
			_ = write(websocket.TextMessage, msg)
			return
		}
		defer unsubscribe()
		logger.Debug("ws client connected")

		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := write(websocket.PingMessage, nil); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		close(done)
		logger.Debug("ws client disconnected")
	}
}
