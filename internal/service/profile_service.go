package service

import (
	"context"

	"writescape/internal/models"
	"writescape/internal/repository"

	"golang.org/x/sync/errgroup"
)

// ProfileService builds the header shared by every profile screen.
type ProfileService struct {
	users   *UserService
	posts   repository.PostRepository
	follows *FollowService
}

func NewProfileService(users *UserService, posts repository.PostRepository, follows *FollowService) *ProfileService {
	return &ProfileService{users: users, posts: posts, follows: follows}
}

// Summary loads the profile owner and the three counts concurrently.
func (s *ProfileService) Summary(ctx context.Context, username string, viewerID uint) (*models.ProfileSummary, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	summary := &models.ProfileSummary{
		Username:         user.Username,
		Avatar:           user.Avatar,
		IsVisitorProfile: viewerID != 0 && viewerID == user.ID,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.posts.CountByAuthor(gctx, user.ID)
		summary.PostCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.follows.CountFollowers(gctx, user.ID)
		summary.FollowerCount = n
		return err
	})
	g.Go(func() error {
		n, err := s.follows.CountFollowing(gctx, user.ID)
		summary.FollowingCount = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !summary.IsVisitorProfile {
		summary.IsFollowing = s.follows.IsFollowing(ctx, user.ID, viewerID)
	}
	return summary, nil
}
