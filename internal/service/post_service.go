// Package service holds business rules on top of the repositories.
package service

import (
	"context"
	"log/slog"

	"writescape/internal/middleware"
	"writescape/internal/models"
	"writescape/internal/observability"
	"writescape/internal/repository"
	"writescape/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// PostService owns post creation, ownership checks, search and the feed.
type PostService struct {
	postRepo   repository.PostRepository
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

type CreatePostInput struct {
	AuthorID uint
	Post     validation.RawPost
}

type UpdatePostInput struct {
	UserID uint
	PostID uint
	Post   validation.RawPost
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

// UpdateStatus distinguishes an applied edit from one rejected by validation.
type UpdateStatus string

const (
	UpdateApplied  UpdateStatus = "success"
	UpdateRejected UpdateStatus = "failure"
)

// UpdateResult is the normal outcome of Update. A rejected edit carries
// the violations and leaves the stored post untouched.
type UpdateResult struct {
	Status UpdateStatus
	Post   *models.Post
	Errors models.Errors
}

func NewPostService(
	postRepo repository.PostRepository,
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
) *PostService {
	return &PostService{
		postRepo:   postRepo,
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Create validates and stores a post, returning its id.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (uint, error) {
	parsed, errs := validation.ParsePost(in.Post)
	if err := errs.Err(); err != nil {
		return 0, err
	}

	post := &models.Post{
		Title:    parsed.Title,
		Body:     parsed.Body,
		AuthorID: in.AuthorID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return 0, err
	}
	return post.ID, nil
}

// Update applies a new title and body when the requester owns the post.
func (s *PostService) Update(ctx context.Context, in UpdatePostInput) (*UpdateResult, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	parsed, errs := validation.ParsePost(in.Post)
	if len(errs) > 0 {
		return &UpdateResult{Status: UpdateRejected, Errors: errs}, nil
	}

	post.Title = parsed.Title
	post.Body = parsed.Body
	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	post.MarkOwner(in.UserID)
	return &UpdateResult{Status: UpdateApplied, Post: post}, nil
}

// Delete hard-deletes a post owned by the requester.
func (s *PostService) Delete(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if post.AuthorID != in.UserID {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	return s.postRepo.Delete(ctx, in.PostID)
}

// FindByID loads a post with its author and marks whether viewerID owns it.
func (s *PostService) FindByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	post.MarkOwner(viewerID)
	return post, nil
}

func (s *PostService) FindByAuthor(ctx context.Context, authorID, viewerID uint) ([]*models.Post, error) {
	posts, err := s.postRepo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	markOwner(posts, viewerID)
	return posts, nil
}

// FindByUsername lists an author's posts by username.
func (s *PostService) FindByUsername(ctx context.Context, username string, viewerID uint) ([]*models.Post, error) {
	author, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, models.NewNotFoundMessage("Invalid user requested.")
	}
	return s.FindByAuthor(ctx, author.ID, viewerID)
}

// Search returns posts ranked by relevance; no match is an empty slice.
func (s *PostService) Search(ctx context.Context, term any) ([]*models.Post, error) {
	q, verr := validation.ParseSearchTerm(term)
	if verr != nil {
		return nil, verr
	}
	return s.postRepo.Search(ctx, q)
}

// Feed returns posts by everyone userID follows, newest first. The set of
// followed authors is resolved first, then posts are filtered by it.
func (s *PostService) Feed(ctx context.Context, userID uint) (posts []*models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "service", "PostService.Feed", attribute.Int64("user.id", int64(userID)))
	defer func() { observability.EndSpan(span, err) }()

	followed, err := s.followRepo.FollowedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("feed.followed", len(followed)))
	if len(followed) == 0 {
		return []*models.Post{}, nil
	}

	posts, err = s.postRepo.ListByAuthors(ctx, followed)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "feed query failed", slog.String("error", err.Error()))
		return nil, err
	}
	markOwner(posts, userID)
	return posts, nil
}

func (s *PostService) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.postRepo.CountByAuthor(ctx, authorID)
}

func markOwner(posts []*models.Post, viewerID uint) {
	for _, p := range posts {
		p.MarkOwner(viewerID)
	}
}
