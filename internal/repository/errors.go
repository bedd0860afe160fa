package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/apierror"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// PostgreSQL SQLSTATE codes surfaced as constraint errors.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

var (
	// ErrStockInsuficiente is returned when a conditional stock decrement matched no row.
	ErrStockInsuficiente = apierror.Conflict("Stock insuficiente")
	// ErrLimiteUsos is returned when a promotion usage increment would exceed its limit.
	ErrLimiteUsos = apierror.Conflict("La promoción alcanzó su límite de usos")
	// ErrPromocionNoVigente is returned when a promotion was deactivated or
	// fell outside its validity window after it was added to a cart.
	ErrPromocionNoVigente = apierror.Conflict("La promoción ya no está vigente")
	// ErrPromocionInexistente is returned when a promotion in a cart was deleted.
	ErrPromocionInexistente = apierror.Conflict("La promoción ya no existe")
)

// IsForeignKeyViolation reports whether err is a referential-integrity failure,
// whichever driver produced it.
func IsForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgForeignKeyViolation
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// IsUniqueViolation reports whether err is a duplicate-key failure.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// classify turns driver errors into typed errors. notFound is the public
// message used when the record does not exist.
func classify(err error, notFound string) error {
	switch {
	case err == nil:
		return nil
	case apierror.As(err) != nil:
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apierror.NotFound(notFound)
	case IsForeignKeyViolation(err):
		return apierror.Constraint("El registro está referenciado por otros datos", err)
	case IsUniqueViolation(err):
		return apierror.Constraint("Ya existe un registro con esos datos", err)
	default:
		return err
	}
}

// conn returns tx when the caller is inside a transaction, else the base handle.
func conn(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
