package http

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/parkpulse/web/internal/adapters/upstream"
	"github.com/parkpulse/web/internal/core/domain"
	"github.com/parkpulse/web/internal/pkg/logging"
)

// APIError is a structured error response. Clients read the error field.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"` // bad_request, not_found, internal_error, ...
	Message   string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusNotFound, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "bad_request"
	case fiber.StatusUnauthorized:
		return "unauthorized"
	case fiber.StatusForbidden:
		return "forbidden"
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusConflict:
		return "conflict"
	case fiber.StatusTooManyRequests:
		return "rate_limited"
	default:
		return "upstream_error"
	}
}

// respondError maps a usecase error to a response. Validation errors and
// upstream 4xx responses reach the client; everything else is logged under
// component and answered with the generic message.
func respondError(c *fiber.Ctx, component, generic string, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return errBadRequest(c, verr.Message)
	}

	logger := logging.Component(LoggerFromCtx(c.UserContext()), component)

	var serr *upstream.StatusError
	if errors.As(err, &serr) && serr.Status >= 400 && serr.Status < 500 {
		logger.Warn("upstream rejected request", "status", serr.Status, "error", err)
		msg := serr.Message
		if msg == "" {
			msg = http.StatusText(serr.Status)
		}
		return newError(c, serr.Status, codeForStatus(serr.Status), msg)
	}
	if errors.Is(err, domain.ErrNotFound) {
		return errNotFound(c, "Not found")
	}

	logger.Error("request failed", "error", err)
	return errInternal(c, generic)
}
