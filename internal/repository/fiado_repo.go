package repository

import (
	"context"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FiadoFilter narrows credit sale listings; nil/empty fields match everything.
type FiadoFilter struct {
	ClienteID *uuid.UUID
	Estado    string
}

// FiadoRepository covers credit sales and the payments made against them.
type FiadoRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, f *model.VentaFiada) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.VentaFiada, error)
	FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.VentaFiada, error)
	List(ctx context.Context, filter FiadoFilter) ([]model.VentaFiada, error)
	// IDsPorVenta maps each given sale id that was sold on credit to its credit sale id.
	IDsPorVenta(ctx context.Context, ventaIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)

	CreatePagoTx(ctx context.Context, tx *gorm.DB, p *model.PagoFiado) error
	ListPagos(ctx context.Context, fiadoID uuid.UUID) ([]model.PagoFiado, error)
	// SumaPagos returns Σ monto per credit sale for the given ids.
	SumaPagos(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)

	// MarcarPagadaSiSaldadaTx sets estado = pagada in a single conditional
	// UPDATE when the payments reach the linked sale total. Reports whether
	// this call performed the transition.
	MarcarPagadaSiSaldadaTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error)
	// MarcarVencidos moves pendiente rows due strictly before limite to vencida.
	MarcarVencidos(ctx context.Context, limite time.Time) ([]model.VentaFiada, error)
	// DeudaPendienteTotal sums the sale totals of credit sales not yet pagada.
	DeudaPendienteTotal(ctx context.Context) (decimal.Decimal, error)

	DB() *gorm.DB
}

type fiadoRepo struct{ db *gorm.DB }

func NewFiadoRepository(db *gorm.DB) FiadoRepository { return &fiadoRepo{db: db} }

func (r *fiadoRepo) DB() *gorm.DB { return r.db }

func (r *fiadoRepo) CreateTx(ctx context.Context, tx *gorm.DB, f *model.VentaFiada) error {
	err := conn(ctx, r.db, tx).Omit("Venta", "Cliente").Create(f).Error
	return classify(err, "Cliente no encontrado")
}

func (r *fiadoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.VentaFiada, error) {
	return r.FindByIDTx(ctx, nil, id)
}

func (r *fiadoRepo) FindByIDTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.VentaFiada, error) {
	var f model.VentaFiada
	err := conn(ctx, r.db, tx).Preload("Venta").Preload("Cliente").First(&f, "id = ?", id).Error
	if err != nil {
		return nil, classify(err, "Venta fiada no encontrada")
	}
	return &f, nil
}

func (r *fiadoRepo) List(ctx context.Context, filter FiadoFilter) ([]model.VentaFiada, error) {
	var fiados []model.VentaFiada
	q := r.db.WithContext(ctx).Preload("Venta").Preload("Cliente")
	if filter.ClienteID != nil {
		q = q.Where("cliente_id = ?", *filter.ClienteID)
	}
	if filter.Estado != "" {
		q = q.Where("estado = ?", filter.Estado)
	}
	err := q.Order("created_at DESC").Find(&fiados).Error
	return fiados, err
}

func (r *fiadoRepo) IDsPorVenta(ctx context.Context, ventaIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	out := make(map[uuid.UUID]uuid.UUID, len(ventaIDs))
	if len(ventaIDs) == 0 {
		return out, nil
	}
	var rows []model.VentaFiada
	err := r.db.WithContext(ctx).Select("id", "venta_id").Where("venta_id IN ?", ventaIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.VentaID] = row.ID
	}
	return out, nil
}

func (r *fiadoRepo) CreatePagoTx(ctx context.Context, tx *gorm.DB, p *model.PagoFiado) error {
	return classify(conn(ctx, r.db, tx).Create(p).Error, "Venta fiada no encontrada")
}

func (r *fiadoRepo) ListPagos(ctx context.Context, fiadoID uuid.UUID) ([]model.PagoFiado, error) {
	var pagos []model.PagoFiado
	err := r.db.WithContext(ctx).Where("venta_fiada_id = ?", fiadoID).Order("created_at ASC").Find(&pagos).Error
	return pagos, err
}

type sumaPagosRow struct {
	VentaFiadaID uuid.UUID
	Total        decimal.Decimal
}

func (r *fiadoRepo) SumaPagos(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	out := make(map[uuid.UUID]decimal.Decimal, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []sumaPagosRow
	err := r.db.WithContext(ctx).Model(&model.PagoFiado{}).
		Select("venta_fiada_id, COALESCE(SUM(monto), 0) AS total").
		Where("venta_fiada_id IN ?", ids).
		Group("venta_fiada_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.VentaFiadaID] = row.Total
	}
	return out, nil
}

func (r *fiadoRepo) MarcarPagadaSiSaldadaTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (bool, error) {
	res := conn(ctx, r.db, tx).Model(&model.VentaFiada{}).
		Where("id = ? AND estado <> ?", id, model.FiadoPagada).
		Where(`(SELECT COALESCE(SUM(p.monto), 0) FROM pagos_fiado p WHERE p.venta_fiada_id = ventas_fiadas.id)
			>= (SELECT v.total FROM ventas v WHERE v.id = ventas_fiadas.venta_id)`).
		Update("estado", model.FiadoPagada)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *fiadoRepo) MarcarVencidos(ctx context.Context, limite time.Time) ([]model.VentaFiada, error) {
	var vencidos []model.VentaFiada
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Where("estado = ? AND fecha_vencimiento IS NOT NULL AND fecha_vencimiento < ?",
			model.FiadoPendiente, limite)
		if err := q.Find(&vencidos).Error; err != nil {
			return err
		}
		if len(vencidos) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, len(vencidos))
		for i := range vencidos {
			ids[i] = vencidos[i].ID
			vencidos[i].Estado = model.FiadoVencida
		}
		// estado is re-checked so a payment settling a row in between wins.
		return tx.Model(&model.VentaFiada{}).
			Where("id IN ? AND estado = ?", ids, model.FiadoPendiente).
			Update("estado", model.FiadoVencida).Error
	})
	return vencidos, err
}

func (r *fiadoRepo) DeudaPendienteTotal(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	row := r.db.WithContext(ctx).
		Table("ventas_fiadas AS vf").
		Select("SUM(v.total)").
		Joins("JOIN ventas v ON v.id = vf.venta_id").
		Where("vf.estado IN ?", []string{model.FiadoPendiente, model.FiadoVencida}).
		Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
