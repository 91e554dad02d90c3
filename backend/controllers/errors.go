package controllers

import (
	"errors"
	"strings"

	"learnhub/backend/services"
	"learnhub/backend/upload"
	"learnhub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// respondError maps service errors to HTTP responses. Anything unknown is
// logged and reported as a generic 500.
func respondError(c *fiber.Ctx, log *utils.Logger, err error) error {
	switch {
	case errors.Is(err, services.ErrValidation), errors.Is(err, upload.ErrInvalidImage):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		return utils.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return utils.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		return utils.Conflict(c, err.Error())
	case errors.Is(err, services.ErrUnavailable):
		return utils.Error(c, fiber.StatusServiceUnavailable, err.Error())
	}
	log.Error("request failed",
		"method", c.Method(),
		"path", c.Path(),
		"request_id", c.Locals("request_id"),
		"error", err,
	)
	return utils.InternalServerError(c, "Internal server error")
}

// parseBody decodes the JSON body into dst and runs struct validation.
// It writes the 400 response itself and reports whether to continue.
func parseBody(c *fiber.Ctx, dst interface{}) (bool, error) {
	if err := c.BodyParser(dst); err != nil {
		return false, utils.BadRequest(c, "Cannot parse JSON")
	}
	if errs := utils.ValidateStruct(dst); errs != nil {
		return false, utils.ValidationError(c, errs)
	}
	return true, nil
}

// paramID reads a positive numeric route parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + strings.ReplaceAll(name, "_", " "))
	}
	return uint(id), nil
}
