package server

import (
	"writescape/internal/models"

	"github.com/gofiber/fiber/v2"
)

const msgNoPermission = "You do not have permission to perform that action."

// currentUserID returns the authenticated user, or 0 for anonymous requests.
func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("userID").(uint)
	return id
}

// respondMutationError hides whether a post exists from callers who may
// not change it: missing and foreign posts both answer 403.
func respondMutationError(c *fiber.Ctx, err error) error {
	if models.HasCode(err, models.CodeNotFound) || models.HasCode(err, models.CodeForbidden) {
		return models.RespondWithError(c, fiber.StatusForbidden, models.NewForbiddenError(msgNoPermission))
	}
	return models.RespondWithAppError(c, err)
}

func invalidBody(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError("Invalid request body"))
}

// nonNil keeps empty listings encoded as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
