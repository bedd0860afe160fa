package service

import (
	"context"
	"strings"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/apierror"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/realtime"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ErrProductoConVentas is returned when deleting a product that past sales reference.
var ErrProductoConVentas = apierror.Constraint("No se puede eliminar: el producto tiene ventas registradas", nil)

// ProductoService defines the business logic contract for the catalog.
type ProductoService interface {
	Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error)
	Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	// ActualizarStock sets the counter to an absolute value. No locking: the
	// last writer wins, as with any direct edit.
	ActualizarStock(ctx context.Context, id uuid.UUID, stock int) (*dto.ProductoResponse, error)
}

type productoService struct {
	repo repository.ProductoRepository
	pub  realtime.Publisher
}

func NewProductoService(repo repository.ProductoRepository, pub realtime.Publisher) ProductoService {
	if pub == nil {
		pub = realtime.Nop{}
	}
	return &productoService{repo: repo, pub: pub}
}

func validarPrecios(venta *decimal.Decimal, costo *decimal.Decimal) error {
	if venta != nil && venta.IsNegative() {
		return apierror.Validation("El precio de venta no puede ser negativo")
	}
	if costo != nil && costo.IsNegative() {
		return apierror.Validation("El precio de costo no puede ser negativo")
	}
	return nil
}

func (s *productoService) Crear(ctx context.Context, req dto.CrearProductoRequest) (*dto.ProductoResponse, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		return nil, apierror.Validation("El nombre es obligatorio")
	}
	if err := validarPrecios(&req.PrecioVenta, req.PrecioCosto); err != nil {
		return nil, err
	}
	if req.Stock < 0 {
		return nil, apierror.Validation("El stock no puede ser negativo")
	}

	p := &model.Producto{
		Nombre:      nombre,
		PrecioVenta: req.PrecioVenta.Round(2),
		PrecioCosto: redondear(req.PrecioCosto),
		Stock:       req.Stock,
		Descripcion: limpiar(req.Descripcion),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	s.pub.Publish(ctx, realtime.NewEvent(realtime.TablaProductos, realtime.Insert, p.ID.String()))
	return productoToResponse(p), nil
}

func (s *productoService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ProductoResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return productoToResponse(p), nil
}

func (s *productoService) Listar(ctx context.Context, filter dto.ProductoFilter) (*dto.ProductoListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	productos, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	data := make([]dto.ProductoResponse, 0, len(productos))
	for i := range productos {
		data = append(data, *productoToResponse(&productos[i]))
	}
	return &dto.ProductoListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *productoService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarProductoRequest) (*dto.ProductoResponse, error) {
	if err := validarPrecios(req.PrecioVenta, req.PrecioCosto); err != nil {
		return nil, err
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Nombre != nil {
		nombre := strings.TrimSpace(*req.Nombre)
		if nombre == "" {
			return nil, apierror.Validation("El nombre es obligatorio")
		}
		p.Nombre = nombre
	}
	if req.PrecioVenta != nil {
		p.PrecioVenta = req.PrecioVenta.Round(2)
	}
	// Past sale lines keep their own snapshot, so price edits never rewrite history.
	if req.PrecioCosto != nil {
		p.PrecioCosto = redondear(req.PrecioCosto)
	}
	if req.Descripcion != nil {
		p.Descripcion = limpiar(req.Descripcion)
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	s.pub.Publish(ctx, realtime.NewEvent(realtime.TablaProductos, realtime.Update, p.ID.String()))
	return s.ObtenerPorID(ctx, id)
}

func (s *productoService) Eliminar(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if apierror.KindOf(err) == apierror.KindConstraint {
		log.Info().Str("producto_id", id.String()).Msg("producto con ventas: no se elimina")
		return ErrProductoConVentas
	}
	if err != nil {
		return err
	}
	s.pub.Publish(ctx, realtime.NewEvent(realtime.TablaProductos, realtime.Delete, id.String()))
	return nil
}

func (s *productoService) ActualizarStock(ctx context.Context, id uuid.UUID, stock int) (*dto.ProductoResponse, error) {
	if stock < 0 {
		return nil, apierror.Validation("El stock no puede ser negativo")
	}
	if err := s.repo.SetStock(ctx, id, stock); err != nil {
		return nil, err
	}
	s.pub.Publish(ctx, realtime.NewEvent(realtime.TablaProductos, realtime.Update, id.String()))
	return s.ObtenerPorID(ctx, id)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func redondear(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := d.Round(2)
	return &v
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

func productoToResponse(p *model.Producto) *dto.ProductoResponse {
	return &dto.ProductoResponse{
		ID:          p.ID.String(),
		Nombre:      p.Nombre,
		PrecioVenta: p.PrecioVenta,
		PrecioCosto: p.PrecioCosto,
		Stock:       p.Stock,
		Descripcion: p.Descripcion,
	}
}
