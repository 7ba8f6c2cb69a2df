package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

const readyTimeout = 3 * time.Second

// HealthHandler is the liveness probe. It never touches a backend.
func HealthHandler(version string) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Round(time.Second).String(),
			"version": version,
		})
	}
}

// readinessCheck probes one optional backend. A nil check means the backend
// is not configured.
type readinessCheck struct {
	name  string
	check func(ctx context.Context) error
}

func readinessChecks(deps *Dependencies) []readinessCheck {
	checks := []readinessCheck{{name: "database"}, {name: "cache"}, {name: "nats"}}
	if deps.DB != nil {
		checks[0].check = deps.DB.Ping
	}
	if deps.Cache != nil {
		checks[1].check = deps.Cache.Ping
	}
	if deps.Feed != nil {
		checks[2].check = func(context.Context) error {
			if !deps.Feed.Connected() {
				return errDisconnected
			}
			return nil
		}
	}
	return checks
}

var errDisconnected = errors.New("disconnected")

// ReadyHandler reports the optional backing services. The upstream API is not
// probed: a failing upstream degrades pages instead of removing the instance.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	checks := readinessChecks(deps)

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
		defer cancel()

		results := make(map[string]string, len(checks))
		ready := true
		for _, rc := range checks {
			switch err := runCheck(ctx, rc); {
			case rc.check == nil:
				results[rc.name] = "not configured"
			case errors.Is(err, errDisconnected):
				results[rc.name] = err.Error()
				ready = false
			case err != nil:
				results[rc.name] = "error: " + err.Error()
				ready = false
			default:
				results[rc.name] = "ok"
			}
		}

		if !ready {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "checks": results})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": results})
	}
}

func runCheck(ctx context.Context, rc readinessCheck) error {
	if rc.check == nil {
		return nil
	}
	return rc.check(ctx)
}
