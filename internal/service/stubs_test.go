package service

import (
	"context"

	"writescape/internal/models"
)

type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}

type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint) (*models.Post, error)
	listByAuthorFn  func(context.Context, uint) ([]*models.Post, error)
	listByAuthorsFn func(context.Context, []uint) ([]*models.Post, error)
	searchFn        func(context.Context, string) ([]*models.Post, error)
	updateFn        func(context.Context, *models.Post) error
	deleteFn        func(context.Context, uint) error
	countByAuthorFn func(context.Context, uint) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, authorID uint) ([]*models.Post, error) {
	return s.listByAuthorFn(ctx, authorID)
}
func (s *postRepoStub) ListByAuthors(ctx context.Context, authorIDs []uint) ([]*models.Post, error) {
	return s.listByAuthorsFn(ctx, authorIDs)
}
func (s *postRepoStub) Search(ctx context.Context, term string) ([]*models.Post, error) {
	return s.searchFn(ctx, term)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	return s.countByAuthorFn(ctx, authorID)
}

type followRepoStub struct {
	createFn         func(context.Context, *models.Follow) error
	deleteFn         func(context.Context, uint, uint) (bool, error)
	existsFn         func(context.Context, uint, uint) (bool, error)
	followedIDsFn    func(context.Context, uint) ([]uint, error)
	followerIDsFn    func(context.Context, uint) ([]uint, error)
	followersFn      func(context.Context, uint) ([]models.FollowUser, error)
	followingFn      func(context.Context, uint) ([]models.FollowUser, error)
	countFollowersFn func(context.Context, uint) (int64, error)
	countFollowingFn func(context.Context, uint) (int64, error)
}

func (s *followRepoStub) Create(ctx context.Context, follow *models.Follow) error {
	return s.createFn(ctx, follow)
}
func (s *followRepoStub) Delete(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.deleteFn(ctx, followerID, followedID)
}
func (s *followRepoStub) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	return s.existsFn(ctx, followerID, followedID)
}
func (s *followRepoStub) FollowedIDs(ctx context.Context, followerID uint) ([]uint, error) {
	return s.followedIDsFn(ctx, followerID)
}
func (s *followRepoStub) FollowerIDs(ctx context.Context, followedID uint) ([]uint, error) {
	return s.followerIDsFn(ctx, followedID)
}
func (s *followRepoStub) Followers(ctx context.Context, userID uint) ([]models.FollowUser, error) {
	return s.followersFn(ctx, userID)
}
func (s *followRepoStub) Following(ctx context.Context, userID uint) ([]models.FollowUser, error) {
	return s.followingFn(ctx, userID)
}
func (s *followRepoStub) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowersFn(ctx, userID)
}
func (s *followRepoStub) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.countFollowingFn(ctx, userID)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:       func(context.Context, uint) (*models.User, error) { return nil, nil },
		getByEmailFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:        func(context.Context, *models.User) error { return nil },
	}
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:        func(context.Context, *models.Post) error { return nil },
		getByIDFn:       func(_ context.Context, id uint) (*models.Post, error) { return nil, models.NewNotFoundError("Post", id) },
		listByAuthorFn:  func(context.Context, uint) ([]*models.Post, error) { return []*models.Post{}, nil },
		listByAuthorsFn: func(context.Context, []uint) ([]*models.Post, error) { return []*models.Post{}, nil },
		searchFn:        func(context.Context, string) ([]*models.Post, error) { return []*models.Post{}, nil },
		updateFn:        func(context.Context, *models.Post) error { return nil },
		deleteFn:        func(context.Context, uint) error { return nil },
		countByAuthorFn: func(context.Context, uint) (int64, error) { return 0, nil },
	}
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		createFn:         func(context.Context, *models.Follow) error { return nil },
		deleteFn:         func(context.Context, uint, uint) (bool, error) { return true, nil },
		existsFn:         func(context.Context, uint, uint) (bool, error) { return false, nil },
		followedIDsFn:    func(context.Context, uint) ([]uint, error) { return nil, nil },
		followerIDsFn:    func(context.Context, uint) ([]uint, error) { return nil, nil },
		followersFn:      func(context.Context, uint) ([]models.FollowUser, error) { return nil, nil },
		followingFn:      func(context.Context, uint) ([]models.FollowUser, error) { return nil, nil },
		countFollowersFn: func(context.Context, uint) (int64, error) { return 0, nil },
		countFollowingFn: func(context.Context, uint) (int64, error) { return 0, nil },
	}
}

func usersByName(users ...*models.User) func(context.Context, string) (*models.User, error) {
	return func(_ context.Context, name string) (*models.User, error) {
		for _, u := range users {
			if u.Username == name {
				return u, nil
			}
		}
		return nil, nil
	}
}
