package repository

import (
	"context"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VentaListFilter bounds a sale listing by creation time. Zero bounds are open.
type VentaListFilter struct {
	Desde  time.Time
	Hasta  time.Time
	Offset int
	Limit  int
}

type VentaRepository interface {
	NextNumeroTx(ctx context.Context, tx *gorm.DB) (int64, error)
	CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	CreateDetallesTx(ctx context.Context, tx *gorm.DB, detalles []model.VentaDetalle) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Venta, error)
	List(ctx context.Context, filter VentaListFilter) ([]model.Venta, int64, error)

	// DeleteCascadeTx removes a sale, its lines and its credit sale. Payments
	// and other ledger rows that pointed at them are detached, not deleted.
	DeleteCascadeTx(ctx context.Context, tx *gorm.DB, ventaID uuid.UUID) error

	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) NextNumeroTx(ctx context.Context, tx *gorm.DB) (int64, error) {
	db := conn(ctx, r.db, tx)
	var num int64
	if db.Dialector.Name() == "postgres" {
		// Sequence keeps ticket numbers unique under concurrent confirmations.
		err := db.Raw("SELECT nextval('ventas_numero_seq')").Scan(&num).Error
		return num, err
	}
	err := db.Raw("SELECT COALESCE(MAX(numero), 0) + 1 FROM ventas").Scan(&num).Error
	return num, err
}

func (r *ventaRepo) CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return classify(conn(ctx, r.db, tx).Omit("Detalles").Create(v).Error, "Venta no encontrada")
}

func (r *ventaRepo) CreateDetallesTx(ctx context.Context, tx *gorm.DB, detalles []model.VentaDetalle) error {
	if len(detalles) == 0 {
		return nil
	}
	err := conn(ctx, r.db, tx).Omit("Producto").CreateInBatches(&detalles, 100).Error
	return classify(err, "Producto no encontrado")
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Detalles.Producto").First(&v, "id = ?", id).Error
	if err != nil {
		return nil, classify(err, "Venta no encontrada")
	}
	return &v, nil
}

func (r *ventaRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Venta, error) {
	var ventas []model.Venta
	if len(ids) == 0 {
		return ventas, nil
	}
	err := r.db.WithContext(ctx).Preload("Detalles.Producto").Where("id IN ?", ids).Find(&ventas).Error
	return ventas, err
}

func (r *ventaRepo) List(ctx context.Context, filter VentaListFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Venta{})
	if !filter.Desde.IsZero() {
		q = q.Where("created_at >= ?", filter.Desde)
	}
	if !filter.Hasta.IsZero() {
		q = q.Where("created_at < ?", filter.Hasta)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Detalles.Producto").
		Order("numero DESC").
		Offset(filter.Offset).Limit(filter.Limit).
		Find(&ventas).Error
	return ventas, total, err
}

func (r *ventaRepo) DeleteCascadeTx(ctx context.Context, tx *gorm.DB, ventaID uuid.UUID) error {
	db := conn(ctx, r.db, tx)

	var fiadoIDs []uuid.UUID
	if err := db.Model(&model.VentaFiada{}).Where("venta_id = ?", ventaID).Pluck("id", &fiadoIDs).Error; err != nil {
		return err
	}
	if len(fiadoIDs) > 0 {
		if err := db.Model(&model.PagoFiado{}).Where("venta_fiada_id IN ?", fiadoIDs).
			Update("venta_fiada_id", nil).Error; err != nil {
			return err
		}
		if err := db.Model(&model.MovimientoCaja{}).Where("venta_fiada_id IN ?", fiadoIDs).
			Update("venta_fiada_id", nil).Error; err != nil {
			return err
		}
		if err := db.Where("id IN ?", fiadoIDs).Delete(&model.VentaFiada{}).Error; err != nil {
			return err
		}
	}
	if err := db.Model(&model.MovimientoCaja{}).Where("venta_id = ?", ventaID).
		Update("venta_id", nil).Error; err != nil {
		return err
	}
	if err := db.Where("venta_id = ?", ventaID).Delete(&model.VentaDetalle{}).Error; err != nil {
		return err
	}
	return db.Delete(&model.Venta{}, "id = ?", ventaID).Error
}
