package repository

import (
	"context"
	"strings"

	"writescape/internal/cache"
	"writescape/internal/models"
	"writescape/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]*models.Post, error)
	ListByAuthors(ctx context.Context, authorIDs []uint) ([]*models.Post, error)
	Search(ctx context.Context, term string) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
}

type postRepository struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB, c *cache.Cache) PostRepository {
	return &postRepository{db: db, cache: c}
}

// newestFirst is the ordering used by every listing.
const newestFirst = "posts.created_at DESC, posts.id DESC"

// likeEscaper makes LIKE wildcards in a search term match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// searchDocument is the expression indexed by idx_posts_search.
const searchDocument = "to_tsvector('english', coalesce(posts.title, '') || ' ' || coalesce(posts.body, ''))"

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post

	err := r.cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		if err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
			if isRecordNotFound(err) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint) ([]*models.Post, error) {
	return r.ListByAuthors(ctx, []uint{authorID})
}

// ListByAuthors returns every post whose author is in authorIDs, newest first.
func (r *postRepository) ListByAuthors(ctx context.Context, authorIDs []uint) ([]*models.Post, error) {
	posts := make([]*models.Post, 0)
	if len(authorIDs) == 0 {
		return posts, nil
	}
	defer observability.TrackQuery("list_by_authors", "posts")()

	if err := r.db.WithContext(ctx).
		Preload("Author").
		Where("posts.author_id IN ?", authorIDs).
		Order(newestFirst).
		Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Search ranks matches by full-text relevance on Postgres. Other dialects
// (sqlite in tests and the local seeder) fall back to substring matching.
func (r *postRepository) Search(ctx context.Context, term string) ([]*models.Post, error) {
	defer observability.TrackQuery("search", "posts")()

	posts := make([]*models.Post, 0)
	q := r.db.WithContext(ctx).Preload("Author")

	if r.db.Dialector.Name() == "postgres" {
		q = q.Where(searchDocument+" @@ plainto_tsquery('english', ?)", term).
			Clauses(clause.OrderBy{Expression: clause.Expr{
				SQL:                "ts_rank(" + searchDocument + ", plainto_tsquery('english', ?)) DESC, " + newestFirst,
				Vars:               []interface{}{term},
				WithoutParentheses: true,
			}})
	} else {
		like := "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
		q = q.Where(`LOWER(posts.title) LIKE ? ESCAPE '\' OR LOWER(posts.body) LIKE ? ESCAPE '\'`, like, like).
			Order(newestFirst)
	}

	if err := q.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Update writes title and body only; author and creation time are immutable.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]interface{}{"title": post.Title, "body": post.Body}).Error
	if err != nil {
		return models.NewInternalError(err)
	}
	r.cache.Invalidate(ctx, cache.PostKey(post.ID))
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	r.cache.Invalidate(ctx, cache.PostKey(id))
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
