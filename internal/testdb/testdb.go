// Package testdb opens throwaway SQLite databases for package tests. The
// schema comes from the gorm models; production schema lives in the goose
// migrations under internal/infra.
package testdb

import (
	"fmt"
	"testing"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns an isolated in-memory database with every table migrated and
// foreign keys enforced. A single connection keeps the memory DB alive and
// serializes transactions, so code under test must not read through the
// base handle while it holds a transaction.
func New(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&model.Usuario{},
		&model.Producto{},
		&model.Promocion{},
		&model.PromocionProducto{},
		&model.Venta{},
		&model.VentaDetalle{},
		&model.Cliente{},
		&model.VentaFiada{},
		&model.PagoFiado{},
		&model.MovimientoCaja{},
	))
	return db
}
