package infra

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the GORM connection backed by pgx and sizes the pool.
// The schema is owned by the goose migrations in migrations/; GORM never
// runs AutoMigrate against PostgreSQL.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// applySchemaPatches runs idempotent statements that keep derived schema
// state consistent after bulk imports or manual fixes. Safe to run on every boot.
func applySchemaPatches(ctx context.Context, db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// Rows inserted with an explicit numero (imports) leave the sequence behind.
		// Only ever moves the sequence forward.
		{"sync ventas_numero_seq", `
SELECT setval('ventas_numero_seq', s.m)
FROM (SELECT MAX(numero) AS m FROM ventas) s
WHERE s.m IS NOT NULL
  AND s.m > (SELECT CASE WHEN is_called THEN last_value ELSE last_value - 1 END FROM ventas_numero_seq)`},
		// Payments whose credit sale vanished keep their customer for the audit trail.
		{"backfill pagos_fiado.cliente_id", `
UPDATE pagos_fiado p SET cliente_id = vf.cliente_id
FROM ventas_fiadas vf
WHERE p.venta_fiada_id = vf.id AND p.cliente_id IS NULL`},
	}

	for _, p := range patches {
		if err := db.WithContext(ctx).Exec(p.sql).Error; err != nil {
			return fmt.Errorf("%s: %w", p.descr, err)
		}
	}
	return nil
}
