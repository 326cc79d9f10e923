package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"docspace/internal/http/middleware"
)

// errorPayload is the body of every error response.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusErrors maps the statuses fiber itself raises to their public code and message.
var statusErrors = map[int]errorEnvelope{
	fiber.StatusBadRequest:            {"BAD_REQUEST", "bad request"},
	fiber.StatusNotFound:              {"NOT_FOUND", "resource not found"},
	fiber.StatusMethodNotAllowed:      {"METHOD_NOT_ALLOWED", "method not allowed"},
	fiber.StatusRequestEntityTooLarge: {"PAYLOAD_TOO_LARGE", "request body too large"},
	fiber.StatusUpgradeRequired:       {"UPGRADE_REQUIRED", "websocket upgrade required"},
}

var internalError = errorEnvelope{"INTERNAL_ERROR", "internal server error"}

func requestIDFromCtx(c *fiber.Ctx) string {
	id, _ := c.Locals(middleware.RequestIDLocalKey).(string)
	return id
}

// writeError writes the error envelope. code is machine-readable ("INVALID_ID",
// "NOT_FOUND"); message must be safe to show and never carries internal details.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

// ErrorHandler renders errors that escape handlers. Anything that is not a *fiber.Error
// with a known status becomes a 500 without detail.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		env, ok := statusErrors[status]
		if !ok {
			env = internalError
		}
		return writeError(c, status, env.Code, env.Message)
	}
}
