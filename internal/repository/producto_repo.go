package repository

import (
	"context"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductoRepository defines the data access contract for products.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type ProductoRepository interface {
	Create(ctx context.Context, p *model.Producto) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Producto, error)
	List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error)
	Update(ctx context.Context, p *model.Producto) error
	Delete(ctx context.Context, id uuid.UUID) error
	SetStock(ctx context.Context, id uuid.UUID, stock int) error

	// DescontarStockTx decrements stock only when enough units remain.
	// Returns ErrStockInsuficiente when no row matched.
	DescontarStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, n int) error
}

type productoRepo struct{ db *gorm.DB }

func NewProductoRepository(db *gorm.DB) ProductoRepository { return &productoRepo{db: db} }

func (r *productoRepo) Create(ctx context.Context, p *model.Producto) error {
	return classify(r.db.WithContext(ctx).Create(p).Error, "Producto no encontrado")
}

func (r *productoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Producto, error) {
	var p model.Producto
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, classify(err, "Producto no encontrado")
	}
	return &p, nil
}

func (r *productoRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Producto, error) {
	var productos []model.Producto
	if len(ids) == 0 {
		return productos, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&productos).Error
	return productos, err
}

func (r *productoRepo) List(ctx context.Context, filter dto.ProductoFilter) ([]model.Producto, int64, error) {
	var productos []model.Producto
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Producto{})
	if filter.Nombre != "" {
		q = q.Where("LOWER(nombre) LIKE LOWER(?)", "%"+filter.Nombre+"%")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("nombre ASC").Limit(filter.Limit).Offset(offset).Find(&productos).Error
	return productos, total, err
}

// Update writes the editable columns only. Stock is owned by SetStock and
// DescontarStockTx, so a sale committed while p was loaded keeps its decrement.
func (r *productoRepo) Update(ctx context.Context, p *model.Producto) error {
	res := r.db.WithContext(ctx).Model(p).
		Select("nombre", "precio_venta", "precio_costo", "descripcion", "updated_at").
		Updates(p)
	if res.Error != nil {
		return classify(res.Error, "Producto no encontrado")
	}
	if res.RowsAffected == 0 {
		return classify(gorm.ErrRecordNotFound, "Producto no encontrado")
	}
	return nil
}

func (r *productoRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Producto{}, "id = ?", id)
	if res.Error != nil {
		return classify(res.Error, "Producto no encontrado")
	}
	if res.RowsAffected == 0 {
		return classify(gorm.ErrRecordNotFound, "Producto no encontrado")
	}
	return nil
}

func (r *productoRepo) SetStock(ctx context.Context, id uuid.UUID, stock int) error {
	res := r.db.WithContext(ctx).Model(&model.Producto{}).Where("id = ?", id).Update("stock", stock)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return classify(gorm.ErrRecordNotFound, "Producto no encontrado")
	}
	return nil
}

func (r *productoRepo) DescontarStockTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, n int) error {
	res := conn(ctx, r.db, tx).Model(&model.Producto{}).
		Where("id = ? AND stock >= ?", id, n).
		Update("stock", gorm.Expr("stock - ?", n))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStockInsuficiente
	}
	return nil
}
