package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"fastfisher/adapters/postgres"
	"fastfisher/domain/core"
	"fastfisher/internal"
	"fastfisher/internal/config"
	"fastfisher/internal/errors"
	"fastfisher/internal/referee"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if len(os.Args) > 1 {
		cfg.Database.URL = os.Args[1]
	}
	if cfg.Database.URL == "" {
		log.Fatal("Usage: migrate <database_url> [summary_dir]  (or set DATABASE_URL)")
	}

	logger := internal.NewLogger(internal.ParseLogLevel(cfg.Log.Level))
	ctx := context.Background()

	db, err := postgres.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	logger.Info("schema up to date", "driver", cfg.Database.Driver)

	if len(os.Args) < 3 {
		return
	}

	migrated, skipped, err := importSummaries(ctx, postgres.NewComparisonRunRepository(db), os.Args[2], logger)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	logger.Info("import complete", "migrated", migrated, "skipped", skipped)
}

// importSummaries stores every comparison summary written by
// 'fastfisher compare --json' under dir. Runs already stored are skipped, so
// the import can be repeated.
func importSummaries(ctx context.Context, repo *postgres.ComparisonRunRepository, dir string, logger *internal.Logger) (migrated, skipped int, err error) {
	files, err := findSummaryFiles(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to find summary files: %w", err)
	}
	logger.Info("found summary files", "count", len(files), "dir", dir)

	for _, file := range files {
		summary, err := loadSummaryFromFile(file)
		if err != nil {
			logger.Warn("skipping unreadable summary", "file", file, "error", err)
			skipped++
			continue
		}

		if _, err := repo.GetByID(ctx, summary.RunID); err == nil {
			logger.Debug("run already stored", "run", summary.RunID)
			skipped++
			continue
		} else if errors.GetCode(err) != errors.CodeNotFound {
			return migrated, skipped, err
		}

		if err := repo.Save(ctx, summary); err != nil {
			logger.Warn("failed to save run", "run", summary.RunID, "error", err)
			skipped++
			continue
		}
		migrated++
		logger.Debug("migrated run", "run", summary.RunID, "file", filepath.Base(file))
	}
	return migrated, skipped, nil
}

func findSummaryFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(path, ".json") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func loadSummaryFromFile(path string) (*referee.Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var summary referee.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, err
	}
	if summary.Oracle == "" {
		return nil, fmt.Errorf("not a comparison summary")
	}

	// files without a run ID get a stable one, so re-imports stay idempotent
	if summary.RunID.String() == "" {
		summary.RunID = core.RunID(uuid.NewSHA1(uuid.NameSpaceURL, []byte(path)).String())
	}
	if summary.StartedAt.IsZero() {
		if info, err := os.Stat(path); err == nil {
			summary.StartedAt = core.NewTimestamp(info.ModTime())
		}
	}
	return &summary, nil
}
