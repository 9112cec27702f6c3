package http

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

var errInvalidBody = errors.New("invalid request body")

// bindJSON parses the request body into dst and checks its validate tags.
// An empty body leaves dst untouched so that all-optional payloads can be omitted.
func bindJSON(c *fiber.Ctx, dst interface{}) error {
	if len(c.Body()) > 0 {
		if err := c.BodyParser(dst); err != nil {
			return errInvalidBody
		}
	}
	if err := validate.Struct(dst); err != nil {
		return errors.New("validation failed: " + err.Error())
	}
	return nil
}
