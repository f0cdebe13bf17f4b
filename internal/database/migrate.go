package database

import (
	"fmt"
	"log/slog"

	"writescape/internal/middleware"
	"writescape/internal/models"

	"gorm.io/gorm"
)

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Follow{},
	}
}

// postgresStatements are applied after AutoMigrate on Postgres only.
var postgresStatements = []struct {
	name string
	sql  string
}{
	{
		name: "posts full text index",
		sql: `CREATE INDEX IF NOT EXISTS idx_posts_search ON posts
			USING GIN (to_tsvector('english', coalesce(title, '') || ' ' || coalesce(body, '')))`,
	},
	{
		name: "users lower(username) unique",
		sql:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_lower ON users (lower(username))`,
	},
	{
		name: "follows no self edge",
		sql: `DO $$ BEGIN
			ALTER TABLE follows ADD CONSTRAINT chk_follows_not_self CHECK (follower_id <> followed_id);
		EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	},
}

// Migrate creates tables and the indexes GORM tags cannot express.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	for _, stmt := range postgresStatements {
		if err := db.Exec(stmt.sql).Error; err != nil {
			middleware.Logger.Warn("Post-migration statement failed",
				slog.String("statement", stmt.name),
				slog.String("error", err.Error()),
			)
		}
	}
	return nil
}
