package infra

import (
	"context"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsDir = "migrations"

// RunMigrations executes a goose command ("up", "down", "status", "version",
// "redo", "reset") against the embedded SQL migrations. After a successful
// "up" the idempotent schema patches are applied too.
func RunMigrations(ctx context.Context, db *gorm.DB, command string, args ...string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	log.Info().Str("command", command).Msg("migrations: running goose")
	if err := goose.RunContext(ctx, command, sqlDB, migrationsDir, args...); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}

	if command == "up" {
		if err := applySchemaPatches(ctx, db); err != nil {
			return fmt.Errorf("schema patches: %w", err)
		}
	}
	return nil
}
