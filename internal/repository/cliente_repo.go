package repository

import (
	"context"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ClienteRepository interface {
	Create(ctx context.Context, c *model.Cliente) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error)
	List(ctx context.Context, nombre string) ([]model.Cliente, error)
	Update(ctx context.Context, c *model.Cliente) error
	Delete(ctx context.Context, id uuid.UUID) error

	// DeudaPorCliente sums the sale totals of outstanding credit sales per customer.
	DeudaPorCliente(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error)
}

type clienteRepo struct{ db *gorm.DB }

func NewClienteRepository(db *gorm.DB) ClienteRepository { return &clienteRepo{db: db} }

func (r *clienteRepo) Create(ctx context.Context, c *model.Cliente) error {
	return classify(r.db.WithContext(ctx).Create(c).Error, "Cliente no encontrado")
}

func (r *clienteRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cliente, error) {
	var c model.Cliente
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, classify(err, "Cliente no encontrado")
	}
	return &c, nil
}

func (r *clienteRepo) List(ctx context.Context, nombre string) ([]model.Cliente, error) {
	var clientes []model.Cliente
	q := r.db.WithContext(ctx)
	if nombre != "" {
		q = q.Where("LOWER(nombre) LIKE LOWER(?)", "%"+nombre+"%")
	}
	err := q.Order("nombre ASC").Find(&clientes).Error
	return clientes, err
}

func (r *clienteRepo) Update(ctx context.Context, c *model.Cliente) error {
	return classify(r.db.WithContext(ctx).Save(c).Error, "Cliente no encontrado")
}

func (r *clienteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Cliente{}, "id = ?", id)
	if res.Error != nil {
		return classify(res.Error, "Cliente no encontrado")
	}
	if res.RowsAffected == 0 {
		return classify(gorm.ErrRecordNotFound, "Cliente no encontrado")
	}
	return nil
}

type deudaRow struct {
	ClienteID uuid.UUID
	Total     decimal.Decimal
}

func (r *clienteRepo) DeudaPorCliente(ctx context.Context) (map[uuid.UUID]decimal.Decimal, error) {
	var rows []deudaRow
	err := r.db.WithContext(ctx).
		Table("ventas_fiadas AS vf").
		Select("vf.cliente_id AS cliente_id, COALESCE(SUM(v.total), 0) AS total").
		Joins("JOIN ventas v ON v.id = vf.venta_id").
		Where("vf.estado IN ?", []string{model.FiadoPendiente, model.FiadoVencida}).
		Group("vf.cliente_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.ClienteID] = row.Total
	}
	return out, nil
}
