package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// ApiError carries an HTTP status chosen by the service layer.
type ApiError struct {
	StatusCode int
	Message    string
}

func (e *ApiError) Error() string {
	return e.Message
}

func NewApiError(statusCode int, message string) *ApiError {
	return &ApiError{StatusCode: statusCode, Message: message}
}

// ErrorHandlerMiddleware converts errors escaping the handlers into JSON
// envelopes. Unknown errors become a plain 500 without leaking internals.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var apiErr *ApiError
		if errors.As(err, &apiErr) {
			return ctx.Status(apiErr.StatusCode).JSON(ErrorResponse(apiErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}

		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("Internal server error"))
	}
}
