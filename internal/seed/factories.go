package seed

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"writescape/internal/models"
	"writescape/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "writescape-demo"

// Factory builds domain entities and persists them through the repositories.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db      *gorm.DB
	users   repository.UserRepository
	follows repository.FollowRepository
	opts    Options
	hash    string
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:      db,
		users:   repository.NewUserRepository(db, nil),
		follows: repository.NewFollowRepository(db),
		opts:    opts,
		nextID:  1000,
	}
}

func (f *Factory) passwordHash() (string, error) {
	if f.hash != "" {
		return f.hash, nil
	}
	cost := bcrypt.DefaultCost
	if f.opts.SkipBcrypt {
		cost = bcrypt.MinCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), cost)
	if err != nil {
		return "", fmt.Errorf("hash demo password: %w", err)
	}
	f.hash = string(hashed)
	return f.hash, nil
}

// Username returns a random letters-and-digits name that passes registration rules.
func Username(suffix int) string {
	base := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToLower(r)
		}
		return -1
	}, gofakeit.Username())
	if len(base) < 3 {
		base = "writer" + base
	}
	name := fmt.Sprintf("%s%d", base, suffix)
	if len(name) > 30 {
		name = name[len(name)-30:]
	}
	return name
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(suffix int, overrides ...func(*models.User)) (*models.User, error) {
	hash, err := f.passwordHash()
	if err != nil {
		return nil, err
	}
	username := Username(suffix)
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hash,
	}
	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		user.Avatar = models.AvatarURL(user.Email)
		return user, nil
	}
	if err := f.users.Create(context.Background(), user); err != nil {
		return nil, fmt.Errorf("create user %s: %w", username, err)
	}
	return user, nil
}

// BuildPost constructs a post by author with a created_at spread over the
// last MaxDays days. It does not persist it.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(gofakeit.Number(0, maxDays*24*60)) * time.Minute

	post := &models.Post{
		Title:     strings.TrimSuffix(gofakeit.Sentence(gofakeit.Number(3, 8)), "."),
		Body:      gofakeit.Paragraph(gofakeit.Number(1, 3), gofakeit.Number(2, 5), gofakeit.Number(6, 14), "\n\n"),
		AuthorID:  author.ID,
		CreatedAt: time.Now().Add(-back),
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists posts in one transaction.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		return nil
	}
	return f.db.Transaction(func(tx *gorm.DB) error {
		repo := repository.NewPostRepository(tx, nil)
		for _, p := range posts {
			if err := repo.Create(context.Background(), p); err != nil {
				return err
			}
		}
		return nil
	})
}

// CreateFollow stores the edge follower -> followed.
func (f *Factory) CreateFollow(follower, followed *models.User) error {
	if f.opts.DryRun {
		return nil
	}
	return f.follows.Create(context.Background(), &models.Follow{FollowerID: follower.ID, FollowedID: followed.ID})
}
