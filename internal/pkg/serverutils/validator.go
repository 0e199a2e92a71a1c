package serverutils

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest checks the struct's validate tags and maps a violation to a
// 400 ApiError.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		return NewApiError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}
