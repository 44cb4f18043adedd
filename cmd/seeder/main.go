// cmd/seeder/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/tealeg/xlsx/v3"

	"github.com/ammerola/logistics-be/internal/adapters/db"
	"github.com/ammerola/logistics-be/internal/core/domain"
	"github.com/ammerola/logistics-be/internal/core/ports"
	"github.com/ammerola/logistics-be/internal/core/services"
	"github.com/ammerola/logistics-be/internal/pkg/config"
	"github.com/ammerola/logistics-be/internal/pkg/logger"
)

// seederActor is the handler identity recorded on seeded items.
var seederActor = domain.Actor{ID: "seeder", Role: domain.RoleHandler}

func main() {
	var (
		catalogueFile = flag.String("catalogue", "./catalogue.xlsx", "Excel catalogue: name, total_quantity, category, description")
		logLevel      = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
		dryRun        = flag.Bool("dry-run", false, "Parse and validate without writing to the database")
		migrate       = flag.Bool("migrate", true, "Apply database migrations before seeding")
		rollback      = flag.Bool("rollback", false, "Roll back the last applied migration and exit")
	)
	flag.Parse()

	slogger := logger.SetupLogger(*logLevel, "json")
	slog.SetDefault(slogger)

	if *rollback {
		if err := rollbackLast(context.Background(), slogger); err != nil {
			slogger.Error("rollback failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	file, err := xlsx.OpenFile(*catalogueFile)
	if err != nil {
		slogger.Error("failed to open catalogue",
			slog.String("file", *catalogueFile),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	rows, issues, err := parseCatalogue(file)
	if err != nil {
		slogger.Error("failed to parse catalogue", slog.String("error", err.Error()))
		os.Exit(1)
	}
	for _, issue := range issues {
		slogger.Warn("skipping catalogue row",
			slog.Int("row", issue.Row),
			slog.String("error", issue.Err.Error()))
	}

	if *dryRun {
		for _, row := range rows {
			fmt.Printf("ROW %d: %s x%d (%s)\n", row.Row, row.Item.Name, row.Item.TotalQuantity, row.Item.Category)
		}
		fmt.Printf("\n[DRY RUN] %d valid rows, %d skipped; no changes were made\n", len(rows), len(issues))
		return
	}

	cfg, err := config.Load(slogger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if !cfg.UsesPostgres() {
		slogger.Error("seeding requires the postgres storage driver",
			slog.String("storage", cfg.Storage.Driver))
		os.Exit(1)
	}

	ctx := context.Background()

	database, err := db.NewDatabase(ctx, &db.Config{
		Host:               cfg.Database.Host,
		Port:               cfg.Database.Port,
		User:               cfg.Database.User,
		Password:           cfg.Database.Password,
		Database:           cfg.Database.Name,
		SSLMode:            cfg.Database.SSLMode,
		MaxConnections:     2,
		MinConnections:     1,
		MaxConnLifetime:    cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:    cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod:  cfg.Database.HealthCheckPeriod,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		StatementCacheMode: cfg.Database.StatementCacheMode,
		EnableQueryLogging: cfg.Database.EnableQueryLogging,
	}, slogger)
	if err != nil {
		slogger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.Close()

	if *migrate {
		err := db.RunMigrationsWithRetry(ctx, &db.MigrationConfig{
			DatabaseURL: cfg.GetDatabaseURL(),
			SourcePath:  cfg.Database.MigrationPath,
		}, slogger, 3)
		if err != nil {
			slogger.Error("failed to run migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	items := db.NewInventoryRepository(database, slogger)
	inventory := services.NewInventoryService(items, db.NewRequestRepository(database, slogger), nil, 0, slogger)

	result, err := seed(ctx, inventory, items, rows, slogger)
	if err != nil {
		slogger.Error("failed to count catalogue", slog.String("error", err.Error()))
		os.Exit(1)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("CATALOGUE SEED SUMMARY")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Created: %d\n", result.Created)
	fmt.Printf("Updated: %d\n", result.Updated)
	fmt.Printf("Skipped: %d\n", len(issues))
	fmt.Printf("Failed:  %d\n", result.Failed)
	fmt.Printf("Catalogue now holds %d items\n", result.CatalogueSize)

	slogger.Info("seed operation completed",
		slog.Int("created", result.Created),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", len(issues)),
		slog.Int("failed", result.Failed),
		slog.Int64("catalogue_size", result.CatalogueSize))

	if result.Failed > 0 {
		os.Exit(1)
	}
}

// seedResult tallies one seeding run.
type seedResult struct {
	Created       int
	Updated       int
	Failed        int
	CatalogueSize int64
}

// seed upserts every row. Totals are procurement data, so re-running the
// seeder with a corrected sheet replaces them.
func seed(ctx context.Context, inventory ports.InventoryService, items ports.InventoryRepository, rows []catalogueRow, logger *slog.Logger) (seedResult, error) {
	var result seedResult
	for _, row := range rows {
		_, isNew, err := inventory.UpsertItem(ctx, seederActor, row.Item)
		if err != nil {
			logger.Error("failed to upsert item",
				slog.Int("row", row.Row),
				slog.String("item", row.Item.Name),
				slog.String("error", err.Error()))
			result.Failed++
			continue
		}
		if isNew {
			result.Created++
		} else {
			result.Updated++
		}
	}

	size, err := items.Count(ctx)
	if err != nil {
		return result, err
	}
	result.CatalogueSize = size
	return result, nil
}

// rollbackLast reverts the most recent schema migration.
func rollbackLast(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Load(logger)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	migrator, err := db.NewMigrator(&db.MigrationConfig{
		DatabaseURL: cfg.GetDatabaseURL(),
		SourcePath:  cfg.Database.MigrationPath,
	}, logger)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if err := migrator.Down(ctx); err != nil {
		return err
	}

	version, dirty, err := migrator.Version(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Schema now at version %d (dirty=%t)\n", version, dirty)
	return nil
}
