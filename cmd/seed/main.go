// Command seed initializes roles, creates the admin account and
// optionally generates fake development content.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"
)

func main() {
	adminUser := flag.String("admin-user", "admin", "admin account username")
	adminPass := flag.String("admin-pass", "", "admin account password (required when creating)")
	testData := flag.Bool("test-data", false, "generate fake users, posts, comments and follows")
	users := flag.Int("users", 10, "number of fake users when -test-data is set")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	cache.InitRedis(cfg.RedisURL)

	ctx := context.Background()
	if err := seed.Roles(ctx, db); err != nil {
		slog.Error("failed to seed roles", "error", err)
		os.Exit(1)
	}

	if *adminPass != "" {
		if _, err := seed.Admin(ctx, db, *adminUser, *adminPass); err != nil {
			slog.Error("failed to create admin account", "error", err)
			os.Exit(1)
		}
	}

	if *testData {
		opts := seed.DefaultOptions()
		opts.Users = *users
		if err := seed.TestData(ctx, db, opts); err != nil {
			slog.Error("failed to generate test data", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("seeding complete")
}
