package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/yichenzhou/farepass/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errUnavailable returns a 503 error for data-availability failures.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, 503, "calendar_unavailable", msg)
}

// errFromDomain maps core errors onto API error responses. Validation errors
// are client faults; missing calendar years are a retryable 503; anything
// else is internal.
func errFromDomain(c *fiber.Ctx, err error) error {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return errBadRequest(c, verr.Error())
	}
	if errors.Is(err, domain.ErrCalendarUnavailable) || errors.Is(err, domain.ErrDataSourceUnavailable) {
		return errUnavailable(c, err.Error())
	}
	return errInternal(c, err.Error())
}
