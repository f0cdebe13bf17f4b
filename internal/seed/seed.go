// Package seed provides helpers to create demo data for development and
// testing. It is never used by the server.
package seed

import (
	"fmt"
	"log/slog"

	"writescape/internal/middleware"
	"writescape/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers    int
	NumPosts    int
	NumFollows  int
	ShouldClean bool
	// SkipBcrypt hashes the demo password at bcrypt.MinCost.
	SkipBcrypt bool
	DryRun     bool
	MaxDays    int
}

// Result counts what a run created.
type Result struct {
	Users   int
	Posts   int
	Follows int
}

// Seeder populates users, posts and follow edges.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder returns a Seeder writing to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// ClearAll deletes every follow, post and user.
func (s *Seeder) ClearAll() error {
	if s.opts.DryRun {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		for _, model := range []any{&models.Follow{}, &models.Post{}, &models.User{}} {
			if err := all.Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Run seeds according to the options.
func (s *Seeder) Run() (Result, error) {
	var res Result
	if s.opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return res, err
		}
	}

	users, err := s.SeedUsers(s.opts.NumUsers)
	if err != nil {
		return res, err
	}
	res.Users = len(users)

	if res.Posts, err = s.SeedPosts(users, s.opts.NumPosts); err != nil {
		return res, err
	}
	if res.Follows, err = s.SeedFollows(users, s.opts.NumFollows); err != nil {
		return res, err
	}

	middleware.Logger.Info("seeding complete",
		slog.Int("users", res.Users),
		slog.Int("posts", res.Posts),
		slog.Int("follows", res.Follows),
	)
	return res, nil
}

// SeedUsers creates count users with fake names.
func (s *Seeder) SeedUsers(count int) ([]*models.User, error) {
	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		u, err := s.factory.CreateUser(i)
		if err != nil {
			middleware.Logger.Warn("skipping seed user", slog.String("error", err.Error()))
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

// SeedPosts spreads count posts randomly over users.
func (s *Seeder) SeedPosts(users []*models.User, count int) (int, error) {
	if len(users) == 0 || count <= 0 {
		return 0, nil
	}
	posts := make([]*models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[gofakeit.Number(0, len(users)-1)]
		posts = append(posts, s.factory.BuildPost(author))
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return 0, fmt.Errorf("create posts: %w", err)
	}
	return len(posts), nil
}

// SeedFollows creates up to count distinct, non-self edges.
func (s *Seeder) SeedFollows(users []*models.User, count int) (int, error) {
	n := len(users)
	if n < 2 || count <= 0 {
		return 0, nil
	}
	maxEdges := n * (n - 1)
	if count > maxEdges {
		count = maxEdges
	}

	var pairs [][2]*models.User
	if count*2 > maxEdges {
		// dense: enumerate every edge and take a shuffled prefix
		pairs = make([][2]*models.User, 0, maxEdges)
		for _, a := range users {
			for _, b := range users {
				if a != b {
					pairs = append(pairs, [2]*models.User{a, b})
				}
			}
		}
		gofakeit.ShuffleAnySlice(pairs)
		pairs = pairs[:count]
	} else {
		seen := make(map[[2]uint]struct{}, count)
		for attempts := 0; len(pairs) < count && attempts < count*20; attempts++ {
			a := users[gofakeit.Number(0, n-1)]
			b := users[gofakeit.Number(0, n-1)]
			key := [2]uint{a.ID, b.ID}
			if a.ID == b.ID {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			pairs = append(pairs, [2]*models.User{a, b})
		}
	}

	for i, p := range pairs {
		if err := s.factory.CreateFollow(p[0], p[1]); err != nil {
			return i, fmt.Errorf("create follow: %w", err)
		}
	}
	return len(pairs), nil
}
