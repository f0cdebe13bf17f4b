package server

import (
	"context"

	"writescape/internal/models"
	"writescape/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// UsernameExists handles POST /api/users/exists/username
// @Summary Check username availability
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{username=string} true "Username"
// @Success 200 {object} object{exists=bool}
// @Router /users/exists/username [post]
func (s *Server) UsernameExists(c *fiber.Ctx) error {
	var req struct {
		Username any `json:"username"`
	}
	return s.respondExists(c, &req, func(ctx context.Context) (bool, error) {
		return s.userService.UsernameExists(ctx, validation.String(req.Username))
	})
}

// EmailExists handles POST /api/users/exists/email
// @Summary Check email availability
// @Tags users
// @Accept json
// @Produce json
// @Param request body object{email=string} true "Email"
// @Success 200 {object} object{exists=bool}
// @Router /users/exists/email [post]
func (s *Server) EmailExists(c *fiber.Ctx) error {
	var req struct {
		Email any `json:"email"`
	}
	return s.respondExists(c, &req, func(ctx context.Context) (bool, error) {
		return s.userService.EmailExists(ctx, validation.String(req.Email))
	})
}

func (s *Server) respondExists(c *fiber.Ctx, req any, lookup func(context.Context) (bool, error)) error {
	if err := c.BodyParser(req); err != nil {
		return invalidBody(c)
	}
	exists, err := lookup(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"exists": exists})
}

// GetProfile handles GET /api/profiles/:username
// @Summary Profile summary
// @Description Counts plus the viewer's relationship to the profile
// @Tags profiles
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} models.ProfileSummary
// @Failure 404 {object} models.ErrorResponse
// @Router /profiles/{username} [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	summary, err := s.profileService.Summary(c.UserContext(), c.Params("username"), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(summary)
}

// GetProfilePosts handles GET /api/profiles/:username/posts
// @Summary Posts by a user
// @Tags profiles
// @Produce json
// @Param username path string true "Username"
// @Success 200 {array} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /profiles/{username}/posts [get]
func (s *Server) GetProfilePosts(c *fiber.Ctx) error {
	posts, err := s.postService.FindByUsername(c.UserContext(), c.Params("username"), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(nonNil(posts))
}

// GetProfileFollowers handles GET /api/profiles/:username/followers
// @Summary Followers of a user
// @Tags profiles
// @Produce json
// @Param username path string true "Username"
// @Success 200 {array} models.FollowUser
// @Failure 404 {object} models.ErrorResponse
// @Router /profiles/{username}/followers [get]
func (s *Server) GetProfileFollowers(c *fiber.Ctx) error {
	return s.respondFollowList(c, s.followService.Followers)
}

// GetProfileFollowing handles GET /api/profiles/:username/following
// @Summary Users a user follows
// @Tags profiles
// @Produce json
// @Param username path string true "Username"
// @Success 200 {array} models.FollowUser
// @Failure 404 {object} models.ErrorResponse
// @Router /profiles/{username}/following [get]
func (s *Server) GetProfileFollowing(c *fiber.Ctx) error {
	return s.respondFollowList(c, s.followService.Following)
}

func (s *Server) respondFollowList(c *fiber.Ctx, list func(context.Context, uint) ([]models.FollowUser, error)) error {
	user, err := s.userService.GetByUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	users, err := list(c.UserContext(), user.ID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(nonNil(users))
}
