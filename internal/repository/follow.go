package repository

import (
	"context"

	"writescape/internal/models"

	"gorm.io/gorm"
)

// FollowRepository persists directed follow edges.
type FollowRepository interface {
	Create(ctx context.Context, follow *models.Follow) error
	Delete(ctx context.Context, followerID, followedID uint) (bool, error)
	Exists(ctx context.Context, followerID, followedID uint) (bool, error)
	FollowedIDs(ctx context.Context, followerID uint) ([]uint, error)
	FollowerIDs(ctx context.Context, followedID uint) ([]uint, error)
	Followers(ctx context.Context, userID uint) ([]models.FollowUser, error)
	Following(ctx context.Context, userID uint) ([]models.FollowUser, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Create inserts the edge. idx_follow_pair makes a concurrent duplicate
// fail here, and that failure is reported as DUPLICATE.
func (r *followRepository) Create(ctx context.Context, follow *models.Follow) error {
	if err := r.db.WithContext(ctx).Create(follow).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateError("You are already following this user!")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Delete removes the edge and reports whether one existed.
func (r *followRepository) Delete(ctx context.Context, followerID, followedID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// FollowedIDs returns the ids followerID follows.
func (r *followRepository) FollowedIDs(ctx context.Context, followerID uint) ([]uint, error) {
	ids := make([]uint, 0)
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("followed_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// FollowerIDs returns the ids following followedID.
func (r *followRepository) FollowerIDs(ctx context.Context, followedID uint) ([]uint, error) {
	ids := make([]uint, 0)
	if err := r.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("followed_id = ?", followedID).
		Pluck("follower_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *followRepository) Followers(ctx context.Context, userID uint) ([]models.FollowUser, error) {
	return r.listUsers(ctx, "follows.follower_id", "follows.followed_id", userID)
}

func (r *followRepository) Following(ctx context.Context, userID uint) ([]models.FollowUser, error) {
	return r.listUsers(ctx, "follows.followed_id", "follows.follower_id", userID)
}

// listUsers joins the edge's joinCol against users, filtering on filterCol.
func (r *followRepository) listUsers(ctx context.Context, joinCol, filterCol string, userID uint) ([]models.FollowUser, error) {
	var rows []struct {
		Username string
		Email    string
	}
	if err := r.db.WithContext(ctx).
		Table("follows").
		Select("users.username, users.email").
		Joins("JOIN users ON users.id = "+joinCol).
		Where(filterCol+" = ?", userID).
		Order("follows.created_at DESC, follows.id DESC").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	out := make([]models.FollowUser, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.FollowUser{Username: row.Username, Avatar: models.AvatarURL(row.Email)})
	}
	return out, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return r.count(ctx, "followed_id", userID)
}

func (r *followRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return r.count(ctx, "follower_id", userID)
}

func (r *followRepository) count(ctx context.Context, col string, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where(col+" = ?", userID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
