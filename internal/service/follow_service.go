package service

import (
	"context"
	"log/slog"

	"writescape/internal/middleware"
	"writescape/internal/models"
	"writescape/internal/observability"
	"writescape/internal/repository"
)

const (
	msgFollowMissingUser   = "You cannot follow a user that does not exist."
	msgUnfollowMissingUser = "You cannot unfollow a user that does not exist."
	msgFollowSelf          = "You cannot follow yourself!"
	msgUnfollowSelf        = "You cannot unfollow yourself!"
	msgAlreadyFollowing    = "You are already following this user!"
	msgNotFollowing        = "You cannot stop following someone you do not already follow!"
)

// FollowService manages the directed follow graph.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
	}
}

// Follow makes authorID follow followedUsername and returns the followed user.
// Self-follow and duplicate edges are reported together. The unique index
// on the edge is authoritative when two requests race past the pre-check.
func (s *FollowService) Follow(ctx context.Context, followedUsername string, authorID uint) (*models.User, error) {
	target, err := s.userRepo.GetByUsername(ctx, followedUsername)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, models.NewNotFoundMessage(msgFollowMissingUser)
	}

	var errs models.Errors
	if target.ID == authorID {
		errs.Add(models.NewSelfFollowError(msgFollowSelf))
	}
	exists, err := s.followRepo.Exists(ctx, authorID, target.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		errs.Add(models.NewDuplicateError(msgAlreadyFollowing))
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	if err := s.followRepo.Create(ctx, &models.Follow{FollowerID: authorID, FollowedID: target.ID}); err != nil {
		return nil, err
	}
	observability.FollowEdgeChanges.WithLabelValues("follow").Inc()
	return target, nil
}

// Unfollow removes the edge authorID -> followedUsername.
func (s *FollowService) Unfollow(ctx context.Context, followedUsername string, authorID uint) error {
	target, err := s.userRepo.GetByUsername(ctx, followedUsername)
	if err != nil {
		return err
	}
	if target == nil {
		return models.NewNotFoundMessage(msgUnfollowMissingUser)
	}

	var errs models.Errors
	if target.ID == authorID {
		errs.Add(models.NewSelfFollowError(msgUnfollowSelf))
	}
	exists, err := s.followRepo.Exists(ctx, authorID, target.ID)
	if err != nil {
		return err
	}
	if !exists {
		errs.Add(models.NewNotFoundMessage(msgNotFollowing))
	}
	if err := errs.Err(); err != nil {
		return err
	}

	removed, err := s.followRepo.Delete(ctx, authorID, target.ID)
	if err != nil {
		return err
	}
	if !removed {
		// another request removed it first
		return models.NewNotFoundMessage(msgNotFollowing)
	}
	observability.FollowEdgeChanges.WithLabelValues("unfollow").Inc()
	return nil
}

// IsFollowing never fails: a missing row, an anonymous viewer or a storage
// error all read as false.
func (s *FollowService) IsFollowing(ctx context.Context, followedID, viewerID uint) bool {
	if viewerID == 0 {
		return false
	}
	ok, err := s.followRepo.Exists(ctx, viewerID, followedID)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "follow lookup failed",
			slog.Uint64("followed_id", uint64(followedID)),
			slog.String("error", err.Error()),
		)
		return false
	}
	return ok
}

func (s *FollowService) Followers(ctx context.Context, userID uint) ([]models.FollowUser, error) {
	return s.followRepo.Followers(ctx, userID)
}

func (s *FollowService) Following(ctx context.Context, userID uint) ([]models.FollowUser, error) {
	return s.followRepo.Following(ctx, userID)
}

func (s *FollowService) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.followRepo.CountFollowers(ctx, userID)
}

func (s *FollowService) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.followRepo.CountFollowing(ctx, userID)
}

// FollowerIDs lists who should hear about userID's new posts.
func (s *FollowService) FollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.followRepo.FollowerIDs(ctx, userID)
}
