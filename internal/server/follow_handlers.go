package server

import (
	"fmt"

	"writescape/internal/models"

	"github.com/gofiber/fiber/v2"
)

// FollowUser handles POST /api/follow/:username
// @Summary Follow a user
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username to follow"
// @Success 201 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /follow/{username} [post]
func (s *Server) FollowUser(c *fiber.Ctx) error {
	followerID := currentUserID(c)
	target, err := s.followService.Follow(c.UserContext(), c.Params("username"), followerID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	s.announceFollow(c.UserContext(), followerID, target)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": fmt.Sprintf("Successfully followed %s.", target.Username),
	})
}

// UnfollowUser handles DELETE /api/follow/:username
// @Summary Stop following a user
// @Tags follows
// @Produce json
// @Security BearerAuth
// @Param username path string true "Username to unfollow"
// @Success 200 {object} object{message=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /follow/{username} [delete]
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	username := c.Params("username")
	if err := s.followService.Unfollow(c.UserContext(), username, currentUserID(c)); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Successfully stopped following %s.", username),
	})
}
