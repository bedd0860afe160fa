package repository

import (
	"context"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MovimientoListFilter bounds a ledger query. Zero times are open bounds.
type MovimientoListFilter struct {
	Desde time.Time
	Hasta time.Time
	Tipo  string
}

// TotalTipo is the aggregate of one movement kind.
type TotalTipo struct {
	Tipo     string
	Total    decimal.Decimal
	Cantidad int
}

type CajaRepository interface {
	CreateMovimientoTx(ctx context.Context, tx *gorm.DB, m *model.MovimientoCaja) error
	FindMovimientoByID(ctx context.Context, id uuid.UUID) (*model.MovimientoCaja, error)
	ListMovimientos(ctx context.Context, filter MovimientoListFilter) ([]model.MovimientoCaja, error)
	// SumPorTipo groups amounts by tipo inside the filter window.
	SumPorTipo(ctx context.Context, filter MovimientoListFilter) ([]TotalTipo, error)
	DeleteMovimientoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	// PrimerosPagosFiado maps each sale to its earliest pago_fiado movement.
	PrimerosPagosFiado(ctx context.Context, ventaIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)

	DB() *gorm.DB
}

type cajaRepo struct{ db *gorm.DB }

func NewCajaRepository(db *gorm.DB) CajaRepository { return &cajaRepo{db: db} }

func (r *cajaRepo) DB() *gorm.DB { return r.db }

func (r *cajaRepo) CreateMovimientoTx(ctx context.Context, tx *gorm.DB, m *model.MovimientoCaja) error {
	return classify(conn(ctx, r.db, tx).Create(m).Error, "Movimiento no encontrado")
}

func (r *cajaRepo) FindMovimientoByID(ctx context.Context, id uuid.UUID) (*model.MovimientoCaja, error) {
	var m model.MovimientoCaja
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, classify(err, "Movimiento no encontrado")
	}
	return &m, nil
}

func (r *cajaRepo) window(ctx context.Context, filter MovimientoListFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&model.MovimientoCaja{})
	if !filter.Desde.IsZero() {
		q = q.Where("created_at >= ?", filter.Desde)
	}
	if !filter.Hasta.IsZero() {
		q = q.Where("created_at < ?", filter.Hasta)
	}
	if filter.Tipo != "" {
		q = q.Where("tipo = ?", filter.Tipo)
	}
	return q
}

func (r *cajaRepo) ListMovimientos(ctx context.Context, filter MovimientoListFilter) ([]model.MovimientoCaja, error) {
	var movs []model.MovimientoCaja
	err := r.window(ctx, filter).Order("created_at DESC").Find(&movs).Error
	return movs, err
}

func (r *cajaRepo) SumPorTipo(ctx context.Context, filter MovimientoListFilter) ([]TotalTipo, error) {
	var rows []TotalTipo
	err := r.window(ctx, filter).
		Select("tipo, COALESCE(SUM(monto), 0) AS total, COUNT(*) AS cantidad").
		Group("tipo").
		Scan(&rows).Error
	return rows, err
}

func (r *cajaRepo) PrimerosPagosFiado(ctx context.Context, ventaIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	primeros := make(map[uuid.UUID]uuid.UUID, len(ventaIDs))
	if len(ventaIDs) == 0 {
		return primeros, nil
	}
	var movs []model.MovimientoCaja
	err := r.db.WithContext(ctx).
		Select("id", "venta_id", "created_at").
		Where("tipo = ? AND venta_id IN ?", model.MovPagoFiado, ventaIDs).
		Order("created_at ASC, id ASC").
		Find(&movs).Error
	if err != nil {
		return nil, err
	}
	for _, m := range movs {
		if _, ok := primeros[*m.VentaID]; !ok {
			primeros[*m.VentaID] = m.ID
		}
	}
	return primeros, nil
}

func (r *cajaRepo) DeleteMovimientoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	res := conn(ctx, r.db, tx).Delete(&model.MovimientoCaja{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return classify(gorm.ErrRecordNotFound, "Movimiento no encontrado")
	}
	return nil
}
