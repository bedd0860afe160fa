package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PromocionRepository interface {
	// CreateTx inserts the header and then its components. Callers run it
	// inside a transaction so a failed component insert leaves no orphan header.
	CreateTx(ctx context.Context, tx *gorm.DB, p *model.Promocion) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Promocion, error)
	List(ctx context.Context) ([]model.Promocion, error)
	SetActivo(ctx context.Context, id uuid.UUID, activo bool) error
	Delete(ctx context.Context, id uuid.UUID) error

	// IncrementarUsosTx adds n usages to a promotion that still exists, is
	// vigente at now and has room under limite_usos.
	IncrementarUsosTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, n int, now time.Time) error

	DB() *gorm.DB
}

type promocionRepo struct{ db *gorm.DB }

func NewPromocionRepository(db *gorm.DB) PromocionRepository { return &promocionRepo{db: db} }

func (r *promocionRepo) DB() *gorm.DB { return r.db }

func (r *promocionRepo) CreateTx(ctx context.Context, tx *gorm.DB, p *model.Promocion) error {
	db := conn(ctx, r.db, tx)
	componentes := p.Productos
	if err := db.Omit("Productos").Create(p).Error; err != nil {
		return classify(err, "Promoción no encontrada")
	}
	for i := range componentes {
		componentes[i].PromocionID = p.ID
	}
	if err := db.Omit("Producto").Create(&componentes).Error; err != nil {
		return classify(err, "Producto de la promoción no encontrado")
	}
	p.Productos = componentes
	return nil
}

func (r *promocionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Promocion, error) {
	var p model.Promocion
	err := r.db.WithContext(ctx).Preload("Productos.Producto").First(&p, "id = ?", id).Error
	if err != nil {
		return nil, classify(err, "Promoción no encontrada")
	}
	return &p, nil
}

func (r *promocionRepo) List(ctx context.Context) ([]model.Promocion, error) {
	var promos []model.Promocion
	err := r.db.WithContext(ctx).Preload("Productos.Producto").Order("created_at DESC").Find(&promos).Error
	return promos, err
}

func (r *promocionRepo) SetActivo(ctx context.Context, id uuid.UUID, activo bool) error {
	res := r.db.WithContext(ctx).Model(&model.Promocion{}).Where("id = ?", id).Update("activo", activo)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return classify(gorm.ErrRecordNotFound, "Promoción no encontrada")
	}
	return nil
}

func (r *promocionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("promocion_id = ?", id).Delete(&model.PromocionProducto{}).Error; err != nil {
			return err
		}
		// Past sale lines keep their rows; only the promotion link goes away.
		if err := tx.Model(&model.VentaDetalle{}).Where("promocion_id = ?", id).
			Update("promocion_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Promocion{}, "id = ?", id)
		if res.Error != nil {
			return classify(res.Error, "Promoción no encontrada")
		}
		if res.RowsAffected == 0 {
			return classify(gorm.ErrRecordNotFound, "Promoción no encontrada")
		}
		return nil
	})
}

func (r *promocionRepo) IncrementarUsosTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, n int, now time.Time) error {
	db := conn(ctx, r.db, tx)
	var p model.Promocion
	if err := db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPromocionInexistente
		}
		return err
	}
	if !p.Vigente(now) {
		return ErrPromocionNoVigente
	}
	res := db.Model(&model.Promocion{}).
		Where("id = ? AND activo = ? AND (limite_usos IS NULL OR usos + ? <= limite_usos)", id, true, n).
		Update("usos", gorm.Expr("usos + ?", n))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	// Lost a race: tell a toggle-off or delete apart from an exhausted limit.
	var actual model.Promocion
	if err := db.Select("id", "activo").First(&actual, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPromocionInexistente
		}
		return err
	}
	if !actual.Activo {
		return ErrPromocionNoVigente
	}
	return ErrLimiteUsos
}
