package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/apierror"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/carrito"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/realtime"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type PromocionService interface {
	Listar(ctx context.Context) ([]dto.PromocionResponse, error)
	Crear(ctx context.Context, req dto.CrearPromocionRequest) (*dto.PromocionResponse, error)
	// Alternar flips the activo flag.
	Alternar(ctx context.Context, id uuid.UUID) (*dto.PromocionResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
	// Disponibilidad counts the bundles still sellable, net of what the
	// user's cart already holds.
	Disponibilidad(ctx context.Context, id, usuarioID uuid.UUID) (*dto.DisponibilidadResponse, error)
}

type promocionService struct {
	repo         repository.PromocionRepository
	productoRepo repository.ProductoRepository
	carritos     carrito.Store
	pub          realtime.Publisher
	now          func() time.Time
}

func NewPromocionService(
	repo repository.PromocionRepository,
	productoRepo repository.ProductoRepository,
	carritos carrito.Store,
	pub realtime.Publisher,
) PromocionService {
	if pub == nil {
		pub = realtime.Nop{}
	}
	return &promocionService{
		repo:         repo,
		productoRepo: productoRepo,
		carritos:     carritos,
		pub:          pub,
		now:          time.Now,
	}
}

func (s *promocionService) Listar(ctx context.Context) ([]dto.PromocionResponse, error) {
	promos, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	resp := make([]dto.PromocionResponse, 0, len(promos))
	for i := range promos {
		resp = append(resp, *promocionToResponse(&promos[i], now))
	}
	return resp, nil
}

// ── Crear ─────────────────────────────────────────────────────────────────────
// Header and components are written in one transaction: a failed component
// insert rolls the header back, so no promotion is ever left without products.

func (s *promocionService) Crear(ctx context.Context, req dto.CrearPromocionRequest) (*dto.PromocionResponse, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		return nil, apierror.Validation("El nombre es obligatorio")
	}
	if req.PrecioPromocional.IsNegative() {
		return nil, apierror.Validation("El precio promocional no puede ser negativo")
	}
	if req.FechaInicio != nil && req.FechaFin != nil && req.FechaFin.Before(*req.FechaInicio) {
		return nil, apierror.Validation("La fecha de fin es anterior a la de inicio")
	}
	if len(req.Productos) == 0 {
		return nil, apierror.Validation("La promoción necesita al menos un producto")
	}

	ids := make([]uuid.UUID, 0, len(req.Productos))
	vistos := make(map[uuid.UUID]bool, len(req.Productos))
	componentes := make([]model.PromocionProducto, 0, len(req.Productos))
	for _, comp := range req.Productos {
		pid, err := uuid.Parse(comp.ProductoID)
		if err != nil {
			return nil, apierror.Validation("producto_id inválido: " + comp.ProductoID)
		}
		if comp.Cantidad <= 0 {
			return nil, apierror.Validation("La cantidad de cada producto debe ser mayor a cero")
		}
		if vistos[pid] {
			return nil, apierror.Validation("Producto repetido en la promoción: " + comp.ProductoID)
		}
		vistos[pid] = true
		ids = append(ids, pid)
		componentes = append(componentes, model.PromocionProducto{ProductoID: pid, Cantidad: comp.Cantidad})
	}

	productos, err := s.productoRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	porID := make(map[uuid.UUID]*model.Producto, len(productos))
	for i := range productos {
		porID[productos[i].ID] = &productos[i]
	}
	for _, id := range ids {
		if porID[id] == nil {
			return nil, apierror.NotFound(fmt.Sprintf("Producto %s no encontrado", id))
		}
	}

	promo := &model.Promocion{
		Nombre:            nombre,
		PrecioPromocional: req.PrecioPromocional.Round(2),
		Activo:            true,
		FechaInicio:       req.FechaInicio,
		FechaFin:          req.FechaFin,
		LimiteUsos:        req.LimiteUsos,
		Productos:         componentes,
	}
	if err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.CreateTx(ctx, tx, promo)
	}); err != nil {
		return nil, err
	}
	for i := range promo.Productos {
		promo.Productos[i].Producto = porID[promo.Productos[i].ProductoID]
	}

	log.Info().Str("promocion_id", promo.ID.String()).Str("nombre", promo.Nombre).Msg("promoción creada")
	s.pub.Publish(ctx, realtime.NewEvent(realtime.TablaPromociones, realtime.Insert, promo.ID.String()))
	return promocionToResponse(promo, s.now()), nil
}

func (s *promocionService) Alternar(ctx context.Context, id uuid.UUID) (*dto.PromocionResponse, error) {
	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetActivo(ctx, id, !promo.Activo); err != nil {
		return nil, err
	}
	promo.Activo = !promo.Activo
	s.pub.Publish(ctx, realtime.NewEvent(realtime.TablaPromociones, realtime.Update, id.String()))
	return promocionToResponse(promo, s.now()), nil
}

func (s *promocionService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.pub.Publish(ctx, realtime.NewEvent(realtime.TablaPromociones, realtime.Delete, id.String()))
	return nil
}

func (s *promocionService) Disponibilidad(ctx context.Context, id, usuarioID uuid.UUID) (*dto.DisponibilidadResponse, error) {
	promo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	reservado := map[uuid.UUID]int{}
	if s.carritos != nil {
		c, err := s.carritos.Get(ctx, usuarioID)
		if err != nil {
			return nil, err
		}
		reservado = c.Unidades()
	}
	return &dto.DisponibilidadResponse{
		PromocionID:    promo.ID.String(),
		Disponibilidad: carrito.Disponibilidad(promo, stockDeComponentes(promo), reservado),
	}, nil
}

// stockDeComponentes reads the catalog stock of each loaded component.
func stockDeComponentes(promo *model.Promocion) map[uuid.UUID]int {
	stock := make(map[uuid.UUID]int, len(promo.Productos))
	for _, comp := range promo.Productos {
		if comp.Producto != nil {
			stock[comp.ProductoID] = comp.Producto.Stock
		}
	}
	return stock
}

func promocionToResponse(p *model.Promocion, now time.Time) *dto.PromocionResponse {
	comps := make([]dto.PromocionComponenteResponse, 0, len(p.Productos))
	for _, pp := range p.Productos {
		c := dto.PromocionComponenteResponse{ProductoID: pp.ProductoID.String(), Cantidad: pp.Cantidad}
		if pp.Producto != nil {
			c.Nombre = pp.Producto.Nombre
			c.PrecioVenta = pp.Producto.PrecioVenta
		}
		comps = append(comps, c)
	}
	return &dto.PromocionResponse{
		ID:                p.ID.String(),
		Nombre:            p.Nombre,
		PrecioPromocional: p.PrecioPromocional,
		Activo:            p.Activo,
		Vigente:           p.Vigente(now),
		FechaInicio:       p.FechaInicio,
		FechaFin:          p.FechaFin,
		LimiteUsos:        p.LimiteUsos,
		Usos:              p.Usos,
		Productos:         comps,
	}
}
