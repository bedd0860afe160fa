package service

import (
	"context"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/apierror"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/carrito"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/repository"

	"github.com/google/uuid"
)

// CarritoService keeps the per-user cart between requests. Catalog data is
// read fresh on every add; nothing is written to the database here.
type CarritoService interface {
	Obtener(ctx context.Context, usuarioID uuid.UUID) (*dto.CarritoResponse, error)
	AgregarProducto(ctx context.Context, usuarioID uuid.UUID, req dto.AgregarProductoCarritoRequest) (*dto.CarritoResponse, error)
	AgregarPromocion(ctx context.Context, usuarioID uuid.UUID, req dto.AgregarPromocionCarritoRequest) (*dto.CarritoResponse, error)
	Quitar(ctx context.Context, usuarioID uuid.UUID, clave string) (*dto.CarritoResponse, error)
	Vaciar(ctx context.Context, usuarioID uuid.UUID) error
}

type carritoService struct {
	store         carrito.Store
	productoRepo  repository.ProductoRepository
	promocionRepo repository.PromocionRepository
	now           func() time.Time
}

func NewCarritoService(
	store carrito.Store,
	productoRepo repository.ProductoRepository,
	promocionRepo repository.PromocionRepository,
) CarritoService {
	return &carritoService{
		store:         store,
		productoRepo:  productoRepo,
		promocionRepo: promocionRepo,
		now:           time.Now,
	}
}

func (s *carritoService) Obtener(ctx context.Context, usuarioID uuid.UUID) (*dto.CarritoResponse, error) {
	c, err := s.store.Get(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	return carritoToResponse(c), nil
}

func (s *carritoService) AgregarProducto(ctx context.Context, usuarioID uuid.UUID, req dto.AgregarProductoCarritoRequest) (*dto.CarritoResponse, error) {
	pid, err := uuid.Parse(req.ProductoID)
	if err != nil {
		return nil, apierror.Validation("producto_id inválido")
	}
	p, err := s.productoRepo.FindByID(ctx, pid)
	if err != nil {
		return nil, err
	}
	return s.mutar(ctx, usuarioID, func(c *carrito.Carrito) error {
		return c.AgregarProducto(p, req.Cantidad)
	})
}

func (s *carritoService) AgregarPromocion(ctx context.Context, usuarioID uuid.UUID, req dto.AgregarPromocionCarritoRequest) (*dto.CarritoResponse, error) {
	id, err := uuid.Parse(req.PromocionID)
	if err != nil {
		return nil, apierror.Validation("promocion_id inválido")
	}
	promo, err := s.promocionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.mutar(ctx, usuarioID, func(c *carrito.Carrito) error {
		return c.AgregarPromocion(promo, req.Cantidad, s.now())
	})
}

func (s *carritoService) Quitar(ctx context.Context, usuarioID uuid.UUID, clave string) (*dto.CarritoResponse, error) {
	return s.mutar(ctx, usuarioID, func(c *carrito.Carrito) error {
		return c.Quitar(clave)
	})
}

func (s *carritoService) Vaciar(ctx context.Context, usuarioID uuid.UUID) error {
	return s.store.Delete(ctx, usuarioID)
}

// mutar loads the cart, applies fn and saves it only when fn succeeds.
func (s *carritoService) mutar(ctx context.Context, usuarioID uuid.UUID, fn func(*carrito.Carrito) error) (*dto.CarritoResponse, error) {
	c, err := s.store.Get(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, usuarioID, c); err != nil {
		return nil, err
	}
	return carritoToResponse(c), nil
}

func carritoToResponse(c *carrito.Carrito) *dto.CarritoResponse {
	items := make([]dto.CarritoItemResponse, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, dto.CarritoItemResponse{
			Clave:          it.Clave,
			Tipo:           string(it.Tipo),
			ReferenciaID:   it.ReferenciaID.String(),
			Nombre:         it.Nombre,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Subtotal:       it.Subtotal,
		})
	}
	return &dto.CarritoResponse{Items: items, Total: c.Total()}
}
