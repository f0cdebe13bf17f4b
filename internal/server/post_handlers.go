package server

import (
	"log/slog"

	"writescape/internal/middleware"
	"writescape/internal/models"
	"writescape/internal/service"
	"writescape/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type updatePostResponse struct {
	Status string       `json:"status"`
	Post   *models.Post `json:"post,omitempty"`
	Errors []string     `json:"errors,omitempty"`
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body validation.RawPost true "Post"
// @Success 201 {object} object{id=int}
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req validation.RawPost
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	authorID := currentUserID(c)
	id, err := s.postService.Create(c.UserContext(), service.CreatePostInput{AuthorID: authorID, Post: req})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	s.announcePost(c.UserContext(), authorID, id)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id})
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := models.ParseID("Post", c.Params("id"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	post, err := s.postService.FindByID(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(post)
}

// UpdatePost handles PUT /api/posts/:id. Validation failures are reported
// in the body with status "failure" rather than as an error response.
// @Summary Update a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body validation.RawPost true "Post"
// @Success 200 {object} updatePostResponse
// @Failure 400 {object} updatePostResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := models.ParseID("Post", c.Params("id"))
	if err != nil {
		return respondMutationError(c, err)
	}

	var req validation.RawPost
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	result, err := s.postService.Update(c.UserContext(), service.UpdatePostInput{
		UserID: currentUserID(c),
		PostID: id,
		Post:   req,
	})
	if err != nil {
		return respondMutationError(c, err)
	}

	if result.Status == service.UpdateRejected {
		return c.Status(fiber.StatusBadRequest).JSON(updatePostResponse{
			Status: string(result.Status),
			Errors: result.Errors.Messages(),
		})
	}
	return c.JSON(updatePostResponse{Status: string(result.Status), Post: result.Post})
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{status=string}
// @Failure 403 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := models.ParseID("Post", c.Params("id"))
	if err != nil {
		return respondMutationError(c, err)
	}

	if err := s.postService.Delete(c.UserContext(), service.DeletePostInput{UserID: currentUserID(c), PostID: id}); err != nil {
		return respondMutationError(c, err)
	}
	return c.JSON(fiber.Map{"status": string(service.UpdateApplied)})
}

// SearchPosts handles POST /api/posts/search. Anything other than a bad
// search term answers with an empty list.
// @Summary Search posts
// @Tags posts
// @Accept json
// @Produce json
// @Param request body object{searchTerm=string} true "Search term"
// @Success 200 {array} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts/search [post]
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	var req struct {
		SearchTerm any `json:"searchTerm"`
	}
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	posts, err := s.postService.Search(c.UserContext(), req.SearchTerm)
	if err != nil {
		if models.HasCode(err, models.CodeValidation) {
			return models.RespondWithAppError(c, err)
		}
		middleware.Logger.WarnContext(c.UserContext(), "search failed", slog.String("error", err.Error()))
		return c.JSON([]*models.Post{})
	}
	return c.JSON(nonNil(posts))
}

// GetFeed handles GET /api/feed
// @Summary Home feed
// @Description Posts by followed users, newest first
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Post
// @Failure 401 {object} models.ErrorResponse
// @Router /feed [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	posts, err := s.postService.Feed(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(nonNil(posts))
}
