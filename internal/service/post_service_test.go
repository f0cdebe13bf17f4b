package service

import (
	"context"
	"errors"
	"testing"

	"writescape/internal/models"
	"writescape/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("collects both missing fields", func(t *testing.T) {
		posts := noopPostRepo()
		posts.createFn = func(context.Context, *models.Post) error {
			t.Fatal("create must not run on invalid input")
			return nil
		}
		svc := NewPostService(posts, noopFollowRepo(), noopUserRepo())

		_, err := svc.Create(ctx, CreatePostInput{AuthorID: 1, Post: validation.RawPost{Title: "  ", Body: 7}})
		require.Error(t, err)

		var errs models.Errors
		require.True(t, errors.As(err, &errs))
		assert.Equal(t, []string{"You must provide a title.", "You must provide post content."}, errs.Messages())
		assert.Equal(t, 400, models.StatusFor(err))
	})

	t.Run("stores stripped text and returns the id", func(t *testing.T) {
		var stored *models.Post
		posts := noopPostRepo()
		posts.createFn = func(_ context.Context, p *models.Post) error {
			p.ID = 42
			stored = p
			return nil
		}
		svc := NewPostService(posts, noopFollowRepo(), noopUserRepo())

		id, err := svc.Create(ctx, CreatePostInput{
			AuthorID: 3,
			Post:     validation.RawPost{Title: " <b>Hello</b> ", Body: "<script>x()</script>world"},
		})
		require.NoError(t, err)
		assert.Equal(t, uint(42), id)
		assert.Equal(t, "Hello", stored.Title)
		assert.Equal(t, "world", stored.Body)
		assert.Equal(t, uint(3), stored.AuthorID)
	})

	t.Run("storage failure is passed through", func(t *testing.T) {
		posts := noopPostRepo()
		posts.createFn = func(context.Context, *models.Post) error {
			return models.NewInternalError(errors.New("disk full"))
		}
		svc := NewPostService(posts, noopFollowRepo(), noopUserRepo())

		_, err := svc.Create(ctx, CreatePostInput{AuthorID: 1, Post: validation.RawPost{Title: "t", Body: "b"}})
		assert.True(t, models.HasCode(err, models.CodeInternal))
	})
}

func TestPostServiceUpdate(t *testing.T) {
	ctx := context.Background()
	existing := func() *models.Post {
		return &models.Post{ID: 9, Title: "old", Body: "old body", AuthorID: 5}
	}

	t.Run("owner edit applies", func(t *testing.T) {
		var saved *models.Post
		posts := noopPostRepo()
		posts.getByIDFn = func(context.Context, uint) (*models.Post, error) { return existing(), nil }
		posts.updateFn = func(_ context.Context, p *models.Post) error {
			saved = p
			return nil
		}
		svc := NewPostService(posts, noopFollowRepo(), noopUserRepo())

		res, err := svc.Update(ctx, UpdatePostInput{UserID: 5, PostID: 9, Post: validation.RawPost{Title: "new", Body: "new body"}})
		require.NoError(t, err)
		assert.Equal(t, UpdateApplied, res.Status)
		assert.Equal(t, "new", saved.Title)
		assert.True(t, res.Post.IsOwner)
	})

	t.Run("validation failure is an outcome, not an error", func(t *testing.T) {
		posts := noopPostRepo()
		posts.getByIDFn = func(context.Context, uint) (*models.Post, error) { return existing(), nil }
		posts.updateFn = func(context.Context, *models.Post) error {
			t.Fatal("update must not run")
			return nil
		}
		svc := NewPostService(posts, noopFollowRepo(), noopUserRepo())

		res, err := svc.Update(ctx, UpdatePostInput{UserID: 5, PostID: 9, Post: validation.RawPost{Title: "", Body: "ok"}})
		require.NoError(t, err)
		assert.Equal(t, UpdateRejected, res.Status)
		assert.Nil(t, res.Post)
		assert.Equal(t, []string{"You must provide a title."}, res.Errors.Messages())
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		posts := noopPostRepo()
		posts.getByIDFn = func(context.Context, uint) (*models.Post, error) { return existing(), nil }
		svc := NewPostService(posts, noopFollowRepo(), noopUserRepo())

		_, err := svc.Update(ctx, UpdatePostInput{UserID: 6, PostID: 9, Post: validation.RawPost{Title: "x", Body: "y"}})
		assert.True(t, models.HasCode(err, models.CodeForbidden))
	})

	t.Run("missing post is not found", func(t *testing.T) {
		svc := NewPostService(noopPostRepo(), noopFollowRepo(), noopUserRepo())
		_, err := svc.Update(ctx, UpdatePostInput{UserID: 5, PostID: 404})
		assert.True(t, models.HasCode(err, models.CodeNotFound))
	})
}

func TestPostServiceDelete(t *testing.T) {
	ctx := context.Background()
	deleted := uint(0)
	posts := noopPostRepo()
	posts.getByIDFn = func(context.Context, uint) (*models.Post, error) {
		return &models.Post{ID: 2, AuthorID: 1}, nil
	}
	posts.deleteFn = func(_ context.Context, id uint) error {
		deleted = id
		return nil
	}
	svc := NewPostService(posts, noopFollowRepo(), noopUserRepo())

	err := svc.Delete(ctx, DeletePostInput{UserID: 2, PostID: 2})
	assert.True(t, models.HasCode(err, models.CodeForbidden))
	assert.Zero(t, deleted)

	require.NoError(t, svc.Delete(ctx, DeletePostInput{UserID: 1, PostID: 2}))
	assert.Equal(t, uint(2), deleted)
}

func TestPostServiceFindByID(t *testing.T) {
	posts := noopPostRepo()
	posts.getByIDFn = func(context.Context, uint) (*models.Post, error) {
		return &models.Post{ID: 1, AuthorID: 7}, nil
	}
	svc := NewPostService(posts, noopFollowRepo(), noopUserRepo())

	p, err := svc.FindByID(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.True(t, p.IsOwner)

	p, err = svc.FindByID(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.False(t, p.IsOwner)
}

func TestPostServiceFindByUsername(t *testing.T) {
	ctx := context.Background()
	users := noopUserRepo()
	users.getByUsernameFn = usersByName(&models.User{ID: 4, Username: "writer"})
	posts := noopPostRepo()
	posts.listByAuthorFn = func(_ context.Context, authorID uint) ([]*models.Post, error) {
		return []*models.Post{{ID: 1, AuthorID: authorID}}, nil
	}
	svc := NewPostService(posts, noopFollowRepo(), users)

	list, err := svc.FindByUsername(ctx, "writer", 4)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsOwner)

	_, err = svc.FindByUsername(ctx, "ghost", 0)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestPostServiceSearch(t *testing.T) {
	ctx := context.Background()
	var got string
	posts := noopPostRepo()
	posts.searchFn = func(_ context.Context, term string) ([]*models.Post, error) {
		got = term
		return []*models.Post{}, nil
	}
	svc := NewPostService(posts, noopFollowRepo(), noopUserRepo())

	res, err := svc.Search(ctx, "  golang  ")
	require.NoError(t, err)
	assert.Empty(t, res)
	assert.Equal(t, "golang", got)

	for _, bad := range []any{nil, 12, map[string]any{"$ne": ""}, "   "} {
		_, err := svc.Search(ctx, bad)
		assert.True(t, models.HasCode(err, models.CodeValidation), "term %v", bad)
	}
}

func TestPostServiceFeed(t *testing.T) {
	ctx := context.Background()

	t.Run("following nobody yields an empty feed", func(t *testing.T) {
		posts := noopPostRepo()
		posts.listByAuthorsFn = func(context.Context, []uint) ([]*models.Post, error) {
			t.Fatal("posts must not be queried")
			return nil, nil
		}
		svc := NewPostService(posts, noopFollowRepo(), noopUserRepo())

		feed, err := svc.Feed(ctx, 1)
		require.NoError(t, err)
		assert.NotNil(t, feed)
		assert.Empty(t, feed)
	})

	t.Run("filters by followed authors", func(t *testing.T) {
		var asked []uint
		follows := noopFollowRepo()
		follows.followedIDsFn = func(context.Context, uint) ([]uint, error) { return []uint{2, 3}, nil }
		posts := noopPostRepo()
		posts.listByAuthorsFn = func(_ context.Context, ids []uint) ([]*models.Post, error) {
			asked = ids
			return []*models.Post{{ID: 10, AuthorID: 3}, {ID: 9, AuthorID: 2}}, nil
		}
		svc := NewPostService(posts, follows, noopUserRepo())

		feed, err := svc.Feed(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, []uint{2, 3}, asked)
		require.Len(t, feed, 2)
		assert.False(t, feed[0].IsOwner)
	})

	t.Run("lookup failure propagates", func(t *testing.T) {
		follows := noopFollowRepo()
		follows.followedIDsFn = func(context.Context, uint) ([]uint, error) {
			return nil, models.NewInternalError(errors.New("down"))
		}
		svc := NewPostService(noopPostRepo(), follows, noopUserRepo())

		_, err := svc.Feed(ctx, 1)
		assert.True(t, models.HasCode(err, models.CodeInternal))
	})
}
