package controllers

import (
	"errors"
	"quitcoach/backend/services"
	"quitcoach/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// serviceError maps core errors onto HTTP responses: validation 400,
// not-found 404, conflict 409, forbidden 403, everything else 500.
func serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		return utils.Conflict(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return utils.Forbidden(c, err.Error())
	}
	return utils.InternalServerError(c, "Could not query database")
}
