// Command main fills a development database with demo users, posts and follows.
package main

import (
	"flag"
	"log/slog"
	"os"

	"writescape/internal/config"
	"writescape/internal/database"
	"writescape/internal/middleware"
	"writescape/internal/seed"
)

func main() {
	opts := seed.Options{}
	flag.IntVar(&opts.NumUsers, "users", 50, "Number of users to create")
	flag.IntVar(&opts.NumPosts, "posts", 200, "Number of posts to create")
	flag.IntVar(&opts.NumFollows, "follows", 300, "Number of follow edges to create")
	flag.IntVar(&opts.MaxDays, "days", 90, "Spread post dates over this many past days")
	flag.BoolVar(&opts.ShouldClean, "clean", true, "Clean database before seeding")
	flag.BoolVar(&opts.SkipBcrypt, "fast", false, "Hash passwords at minimum bcrypt cost")
	flag.BoolVar(&opts.DryRun, "dry-run", false, "Build data without writing it")
	flag.Parse()

	middleware.Logger.Info("seeding database",
		slog.Int("users", opts.NumUsers),
		slog.Int("posts", opts.NumPosts),
		slog.Int("follows", opts.NumFollows),
		slog.Bool("clean", opts.ShouldClean),
	)

	cfg, err := config.LoadConfig()
	if err != nil {
		middleware.Logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if cfg.IsProduction() {
		middleware.Logger.Error("refusing to seed a production database")
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		middleware.Logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if _, err := seed.NewSeeder(db, opts).Run(); err != nil {
		middleware.Logger.Error("seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	middleware.Logger.Info("all demo users share one password", slog.String("password", seed.DemoPassword))
}
