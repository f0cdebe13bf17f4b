// Command main applies the Writescape schema. The server only migrates on
// its own outside production; deploys run this instead.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"writescape/internal/config"
	"writescape/internal/database"
	"writescape/internal/middleware"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Print the models that would be migrated and exit")
	flag.Parse()

	if *dryRun {
		for _, m := range database.PersistentModels() {
			middleware.Logger.Info("would migrate", slog.String("model", typeName(m)))
		}
		return
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		middleware.Logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, err := gorm.Open(postgres.Open(database.DSN(cfg)), &gorm.Config{
		Logger: database.NewGormLogger(middleware.Logger),
	})
	if err != nil {
		middleware.Logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := database.Migrate(db); err != nil {
		middleware.Logger.Error("migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	middleware.Logger.Info("migration completed")
}

func typeName(m any) string {
	return fmt.Sprintf("%T", m)
}
