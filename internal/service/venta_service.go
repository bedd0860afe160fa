package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/apierror"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/carrito"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/infra"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/realtime"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const metodoPagoDefault = "efectivo"

// ErrCarritoVacio is returned when confirming a cart with no lines.
var ErrCarritoVacio = apierror.Validation("El carrito está vacío")

type VentaService interface {
	// ConfirmarVenta turns the user's cart into a sale. A ClienteID makes it
	// a credit sale. Everything is written in one transaction; on failure
	// the cart is left untouched.
	ConfirmarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.ConfirmarVentaRequest) (*dto.VentaResponse, error)
	ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
	// TicketPDF renders the sale receipt and returns the file path.
	TicketPDF(ctx context.Context, id uuid.UUID) (string, error)
}

// VentaRepos groups the stores a sale confirmation writes to.
type VentaRepos struct {
	Ventas     repository.VentaRepository
	Productos  repository.ProductoRepository
	Promos     repository.PromocionRepository
	Fiados     repository.FiadoRepository
	Caja       repository.CajaRepository
	Clientes   repository.ClienteRepository
	Carritos   carrito.Store
	Publisher  realtime.Publisher
	Metrics    *infra.Metrics
	Location   *time.Location
	Negocio    string
	PDFStorage string
}

type ventaService struct {
	VentaRepos
	now func() time.Time
}

func NewVentaService(r VentaRepos) VentaService {
	if r.Publisher == nil {
		r.Publisher = realtime.Nop{}
	}
	r.Location = ubicacion(r.Location)
	return &ventaService{VentaRepos: r, now: time.Now}
}

// errorPromocion names the promotion in the conflict returned to the cashier.
func errorPromocion(err error, nombre string) error {
	switch {
	case errors.Is(err, repository.ErrLimiteUsos):
		return apierror.Conflict(fmt.Sprintf("La promoción %s alcanzó su límite de usos", nombre))
	case errors.Is(err, repository.ErrPromocionNoVigente):
		return apierror.Conflict(fmt.Sprintf("La promoción %s ya no está vigente", nombre))
	case errors.Is(err, repository.ErrPromocionInexistente):
		return apierror.Conflict(fmt.Sprintf("La promoción %s ya no existe", nombre))
	}
	return err
}

// ── ConfirmarVenta ────────────────────────────────────────────────────────────
// 1. Load the cart; empty → validation error
// 2. Pre-flight outside the TX: resolve customer, due date and current costs
// 3. BEGIN TX: numero, venta, detalles, stock decrements, fiado or ingreso,
//    promo usage counters
// 4. COMMIT, then clear the cart and publish

func (s *ventaService) ConfirmarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.ConfirmarVentaRequest) (*dto.VentaResponse, error) {
	c, err := s.Carritos.Get(ctx, usuarioID)
	if err != nil {
		return nil, err
	}
	if c.Vacio() {
		return nil, ErrCarritoVacio
	}

	var cliente *model.Cliente
	if req.ClienteID != nil && *req.ClienteID != "" {
		cid, err := uuid.Parse(*req.ClienteID)
		if err != nil {
			return nil, apierror.Validation("cliente_id inválido")
		}
		if cliente, err = s.Clientes.FindByID(ctx, cid); err != nil {
			return nil, err
		}
	}
	var vencimiento *time.Time
	if req.FechaVencimiento != nil && *req.FechaVencimiento != "" {
		if cliente == nil {
			return nil, apierror.Validation("La fecha de vencimiento solo aplica a ventas al fiado")
		}
		t, err := parseDia(*req.FechaVencimiento, s.Location)
		if err != nil {
			return nil, err
		}
		t = t.UTC()
		vencimiento = &t
	}

	unidades := c.Unidades()
	ids := make([]uuid.UUID, 0, len(unidades))
	for id := range unidades {
		ids = append(ids, id)
	}
	// Fixed lock order across concurrent confirmations.
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	productos, err := s.Productos.FindByIDs(ctx, ids)
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

	detalles, err := materializarDetalles(c, porID)
	if err != nil {
		return nil, err
	}
	total := c.Total()
	lineas := len(c.Items)

	venta := &model.Venta{Total: total, Nota: limpiar(req.Nota)}
	if usuarioID != uuid.Nil {
		uid := usuarioID
		venta.UsuarioID = &uid
	}
	var fiado *model.VentaFiada
	var movID uuid.UUID

	ahora := s.now()
	err = runTx(ctx, s.Ventas.DB(), func(tx *gorm.DB) error {
		// Promotions are re-checked against the database, not the cart snapshot.
		for _, it := range c.Items {
			if it.Tipo != carrito.ItemPromocion {
				continue
			}
			if err := s.Promos.IncrementarUsosTx(ctx, tx, it.ReferenciaID, it.Cantidad, ahora); err != nil {
				return errorPromocion(err, it.Nombre)
			}
		}

		numero, err := s.Ventas.NextNumeroTx(ctx, tx)
		if err != nil {
			return err
		}
		venta.Numero = numero
		if err := s.Ventas.CreateTx(ctx, tx, venta); err != nil {
			return err
		}
		for i := range detalles {
			detalles[i].VentaID = venta.ID
		}
		if err := s.Ventas.CreateDetallesTx(ctx, tx, detalles); err != nil {
			return err
		}

		for _, id := range ids {
			if err := s.Productos.DescontarStockTx(ctx, tx, id, unidades[id]); err != nil {
				if errors.Is(err, repository.ErrStockInsuficiente) {
					return apierror.Conflict(fmt.Sprintf("Stock insuficiente para %s", porID[id].Nombre))
				}
				return err
			}
		}

		mov := &model.MovimientoCaja{
			Monto:     total,
			UsuarioID: venta.UsuarioID,
			VentaID:   &venta.ID,
		}
		if cliente != nil {
			fiado = &model.VentaFiada{
				VentaID:          venta.ID,
				ClienteID:        cliente.ID,
				FechaVencimiento: vencimiento,
				Estado:           model.FiadoPendiente,
				Nota:             limpiar(req.NotaFiado),
			}
			if err := s.Fiados.CreateTx(ctx, tx, fiado); err != nil {
				return err
			}
			mov.Tipo = model.MovVentaFiada
			mov.Descripcion = fmt.Sprintf("Venta al fiado #%d - %d producto(s)", numero, lineas)
			mov.ClienteID = &cliente.ID
			mov.VentaFiadaID = &fiado.ID
		} else {
			metodo := metodoPagoDefault
			if m := limpiar(req.MetodoPago); m != nil {
				metodo = *m
			}
			mov.Tipo = model.MovIngreso
			mov.Descripcion = fmt.Sprintf("Venta #%d - %d producto(s)", numero, lineas)
			mov.MetodoPago = &metodo
		}
		if err := s.Caja.CreateMovimientoTx(ctx, tx, mov); err != nil {
			return err
		}
		movID = mov.ID

		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.Carritos.Delete(ctx, usuarioID); err != nil {
		log.Warn().Err(err).Str("usuario_id", usuarioID.String()).Msg("no se pudo vaciar el carrito tras la venta")
	}

	s.publicarVenta(ctx, venta, fiado, movID, ids, c)
	s.Metrics.VentaConfirmada(fiado != nil)
	log.Info().
		Int64("numero", venta.Numero).
		Str("total", total.StringFixed(2)).
		Bool("fiada", fiado != nil).
		Msg("venta confirmada")

	for i := range detalles {
		detalles[i].Producto = porID[detalles[i].ProductoID]
	}
	venta.Detalles = detalles
	var fiadoID *uuid.UUID
	if fiado != nil {
		fiadoID = &fiado.ID
	}
	return ventaToResponse(venta, fiadoID), nil
}

// materializarDetalles converts cart lines into sale lines. Plain lines keep
// the cart price and snapshot the current cost. Promo lines are split across
// their components pro rata; component cost falls back to zero when unknown.
func materializarDetalles(c *carrito.Carrito, productos map[uuid.UUID]*model.Producto) ([]model.VentaDetalle, error) {
	var detalles []model.VentaDetalle
	for _, it := range c.Items {
		switch it.Tipo {
		case carrito.ItemProducto:
			p := productos[it.ReferenciaID]
			unit := it.PrecioUnitario
			detalles = append(detalles, model.VentaDetalle{
				ProductoID:     it.ReferenciaID,
				Cantidad:       it.Cantidad,
				Subtotal:       it.Subtotal,
				PrecioUnitario: &unit,
				PrecioCosto:    redondear(p.PrecioCosto),
			})
		case carrito.ItemPromocion:
			asignaciones, err := carrito.AsignarPrecios(it.PrecioUnitario, it.Componentes, it.Cantidad)
			if err != nil {
				return nil, err
			}
			promoID := it.ReferenciaID
			for _, a := range asignaciones {
				unit := a.PrecioUnitario
				costo := productos[a.ProductoID].CostoOCero()
				detalles = append(detalles, model.VentaDetalle{
					ProductoID:     a.ProductoID,
					PromocionID:    &promoID,
					Cantidad:       a.Unidades,
					Subtotal:       a.Subtotal,
					PrecioUnitario: &unit,
					PrecioCosto:    &costo,
				})
			}
		}
	}
	return detalles, nil
}

func (s *ventaService) publicarVenta(ctx context.Context, v *model.Venta, f *model.VentaFiada, movID uuid.UUID, productos []uuid.UUID, c *carrito.Carrito) {
	eventos := []realtime.Event{
		realtime.NewEvent(realtime.TablaVentas, realtime.Insert, v.ID.String()),
		realtime.NewEvent(realtime.TablaMovimientos, realtime.Insert, movID.String()),
	}
	if f != nil {
		eventos = append(eventos, realtime.NewEvent(realtime.TablaVentasFiadas, realtime.Insert, f.ID.String()))
	}
	for _, id := range productos {
		eventos = append(eventos, realtime.NewEvent(realtime.TablaProductos, realtime.Update, id.String()))
	}
	for _, it := range c.Items {
		if it.Tipo == carrito.ItemPromocion {
			eventos = append(eventos, realtime.NewEvent(realtime.TablaPromociones, realtime.Update, it.ReferenciaID.String()))
		}
	}
	s.Publisher.Publish(ctx, eventos...)
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *ventaService) ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	v, err := s.Ventas.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	fiados, err := s.Fiados.IDsPorVenta(ctx, []uuid.UUID{v.ID})
	if err != nil {
		return nil, err
	}
	return ventaToResponse(v, idPtr(fiados, v.ID)), nil
}

func (s *ventaService) ListarVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	lf := repository.VentaListFilter{
		Offset: (filter.Page - 1) * filter.Limit,
		Limit:  filter.Limit,
	}
	if filter.Desde != "" {
		t, err := parseDia(filter.Desde, s.Location)
		if err != nil {
			return nil, err
		}
		lf.Desde = t
	}
	if filter.Hasta != "" {
		t, err := parseDia(filter.Hasta, s.Location)
		if err != nil {
			return nil, err
		}
		lf.Hasta = t.AddDate(0, 0, 1)
	}

	ventas, total, err := s.Ventas.List(ctx, lf)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(ventas))
	for i := range ventas {
		ids[i] = ventas[i].ID
	}
	fiados, err := s.Fiados.IDsPorVenta(ctx, ids)
	if err != nil {
		return nil, err
	}

	data := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		data = append(data, *ventaToResponse(&ventas[i], idPtr(fiados, ventas[i].ID)))
	}
	return &dto.VentaListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *ventaService) TicketPDF(ctx context.Context, id uuid.UUID) (string, error) {
	v, err := s.Ventas.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	path, err := infra.GenerateTicketPDF(v, s.Negocio, s.PDFStorage)
	if err != nil {
		return "", apierror.Wrap(apierror.KindInternal, err, "No se pudo generar el ticket")
	}
	return path, nil
}

func idPtr(m map[uuid.UUID]uuid.UUID, key uuid.UUID) *uuid.UUID {
	if v, ok := m[key]; ok {
		return &v
	}
	return nil
}

func ventaToResponse(v *model.Venta, fiadoID *uuid.UUID) *dto.VentaResponse {
	detalles := make([]dto.VentaDetalleResponse, 0, len(v.Detalles))
	for _, d := range v.Detalles {
		item := dto.VentaDetalleResponse{
			ProductoID:     d.ProductoID.String(),
			Cantidad:       d.Cantidad,
			Subtotal:       d.Subtotal,
			PrecioUnitario: d.PrecioUnitario,
			PrecioCosto:    d.PrecioCosto,
		}
		if d.Producto != nil {
			item.Producto = d.Producto.Nombre
		}
		if d.PromocionID != nil {
			pid := d.PromocionID.String()
			item.PromocionID = &pid
		}
		detalles = append(detalles, item)
	}
	resp := &dto.VentaResponse{
		ID:        v.ID.String(),
		Numero:    v.Numero,
		Total:     v.Total,
		Nota:      v.Nota,
		Fiada:     fiadoID != nil,
		Detalles:  detalles,
		CreatedAt: v.CreatedAt,
	}
	if fiadoID != nil {
		id := fiadoID.String()
		resp.VentaFiadaID = &id
	}
	return resp
}
