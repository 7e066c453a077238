package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vonm84/qah-app/common/database"
	logpkg "github.com/vonm84/qah-app/common/logger"
	"github.com/vonm84/qah-app/internal/config"
	"github.com/vonm84/qah-app/internal/repository"
)

// Usage: apply-migration [migrations_dir]
// Without an argument the migrations embedded in the binary are applied.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := logpkg.NewLogger(cfg.Log.Level, "console", "apply-migration")
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	var migrations fs.FS = repository.Migrations()
	if len(os.Args) > 1 {
		migrations = os.DirFS(os.Args[1])
	}

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Cannot connect to database", zap.Error(err))
	}
	defer database.Close(db)

	fmt.Printf("Connected to database: %s\n\n", cfg.Database.Database)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	applied, err := repository.ApplyMigrations(ctx, db, migrations, logger)
	if err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}
	if len(applied) == 0 {
		fmt.Println("Nothing to apply, schema is up to date.")
		return
	}
	for _, name := range applied {
		fmt.Printf("✅ %s\n", name)
	}
	fmt.Println("✅ Migration completed successfully!")
}
