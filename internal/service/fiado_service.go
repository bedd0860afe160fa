package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/apierror"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/infra"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/realtime"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/repository"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrFiadoPagado is returned when paying a credit sale that is already settled.
var ErrFiadoPagado = apierror.Conflict("La venta fiada ya está pagada")

// ReciboEncolador queues payment-receipt emails.
type ReciboEncolador interface {
	EnqueueReciboPago(ctx context.Context, job worker.ReciboPagoJob) error
}

type FiadoService interface {
	ListarFiados(ctx context.Context, filter dto.FiadoFilter) ([]dto.FiadoResponse, error)
	ListarPagos(ctx context.Context, fiadoID uuid.UUID) ([]dto.PagoResponse, error)
	// RegistrarPago records a payment and its ledger entry, settling the
	// credit sale once payments reach its total.
	RegistrarPago(ctx context.Context, usuarioID, fiadoID uuid.UUID, req dto.RegistrarPagoRequest) (*dto.RegistrarPagoResponse, error)
	// VerificarSaldo re-runs the settlement check. Idempotent.
	VerificarSaldo(ctx context.Context, fiadoID uuid.UUID) (*dto.FiadoResponse, error)
	// MarcarVencidos moves pendiente credit sales due before today to vencida.
	MarcarVencidos(ctx context.Context, now time.Time) (int, error)
	DeudaPendienteTotal(ctx context.Context) (decimal.Decimal, error)
}

type fiadoService struct {
	repo     repository.FiadoRepository
	cajaRepo repository.CajaRepository
	recibos  ReciboEncolador
	pub      realtime.Publisher
	metrics  *infra.Metrics
	loc      *time.Location
}

func NewFiadoService(
	repo repository.FiadoRepository,
	cajaRepo repository.CajaRepository,
	recibos ReciboEncolador,
	pub realtime.Publisher,
	metrics *infra.Metrics,
	loc *time.Location,
) FiadoService {
	if pub == nil {
		pub = realtime.Nop{}
	}
	return &fiadoService{
		repo:     repo,
		cajaRepo: cajaRepo,
		recibos:  recibos,
		pub:      pub,
		metrics:  metrics,
		loc:      ubicacion(loc),
	}
}

func (s *fiadoService) ListarFiados(ctx context.Context, filter dto.FiadoFilter) ([]dto.FiadoResponse, error) {
	rf := repository.FiadoFilter{Estado: filter.Estado}
	if filter.Estado != "" && filter.Estado != model.FiadoPendiente &&
		filter.Estado != model.FiadoPagada && filter.Estado != model.FiadoVencida {
		return nil, apierror.Validation("Estado inválido: " + filter.Estado)
	}
	if filter.ClienteID != "" {
		id, err := uuid.Parse(filter.ClienteID)
		if err != nil {
			return nil, apierror.Validation("cliente_id inválido")
		}
		rf.ClienteID = &id
	}

	fiados, err := s.repo.List(ctx, rf)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(fiados))
	for i := range fiados {
		ids[i] = fiados[i].ID
	}
	pagado, err := s.repo.SumaPagos(ctx, ids)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.FiadoResponse, 0, len(fiados))
	for i := range fiados {
		resp = append(resp, *fiadoToResponse(&fiados[i], pagado[fiados[i].ID]))
	}
	return resp, nil
}

func (s *fiadoService) ListarPagos(ctx context.Context, fiadoID uuid.UUID) ([]dto.PagoResponse, error) {
	if _, err := s.repo.FindByID(ctx, fiadoID); err != nil {
		return nil, err
	}
	pagos, err := s.repo.ListPagos(ctx, fiadoID)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.PagoResponse, 0, len(pagos))
	for i := range pagos {
		resp = append(resp, pagoToResponse(&pagos[i]))
	}
	return resp, nil
}

// ── RegistrarPago ─────────────────────────────────────────────────────────────
// BEGIN TX: re-check estado, insert pago, insert pago_fiado movement,
// conditional settle UPDATE. COMMIT, then publish and queue the receipt.

func (s *fiadoService) RegistrarPago(ctx context.Context, usuarioID, fiadoID uuid.UUID, req dto.RegistrarPagoRequest) (*dto.RegistrarPagoResponse, error) {
	if !req.Monto.IsPositive() {
		return nil, apierror.Validation("El monto del pago debe ser mayor a cero")
	}
	monto := req.Monto.Round(2)

	var (
		fiado   *model.VentaFiada
		pago    *model.PagoFiado
		saldado bool
		movID   uuid.UUID
	)
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		f, err := s.repo.FindByIDTx(ctx, tx, fiadoID)
		if err != nil {
			return err
		}
		if f.Estado == model.FiadoPagada {
			return ErrFiadoPagado
		}
		if f.Venta == nil {
			return apierror.Wrap(apierror.KindInternal, fmt.Errorf("venta %s sin cargar", f.VentaID), "Venta fiada sin venta asociada")
		}
		fiado = f

		clienteID := f.ClienteID
		pago = &model.PagoFiado{
			VentaFiadaID: &f.ID,
			ClienteID:    &clienteID,
			Monto:        monto,
			MetodoPago:   limpiar(req.MetodoPago),
			Nota:         limpiar(req.Nota),
		}
		if err := s.repo.CreatePagoTx(ctx, tx, pago); err != nil {
			return err
		}

		ventaID := f.VentaID
		mov := &model.MovimientoCaja{
			Tipo:         model.MovPagoFiado,
			Descripcion:  fmt.Sprintf("Pago de deuda venta #%d", f.Venta.Numero),
			Monto:        monto,
			MetodoPago:   pago.MetodoPago,
			Nota:         pago.Nota,
			ClienteID:    &clienteID,
			VentaID:      &ventaID,
			VentaFiadaID: &f.ID,
		}
		if usuarioID != uuid.Nil {
			uid := usuarioID
			mov.UsuarioID = &uid
		}
		if err := s.cajaRepo.CreateMovimientoTx(ctx, tx, mov); err != nil {
			return err
		}
		movID = mov.ID

		saldado, err = s.repo.MarcarPagadaSiSaldadaTx(ctx, tx, f.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if saldado {
		fiado.Estado = model.FiadoPagada
	}

	eventos := []realtime.Event{
		realtime.NewEvent(realtime.TablaPagosFiado, realtime.Insert, pago.ID.String()),
		realtime.NewEvent(realtime.TablaMovimientos, realtime.Insert, movID.String()),
		realtime.NewEvent(realtime.TablaClientes, realtime.Update, fiado.ClienteID.String()),
	}
	if saldado {
		eventos = append(eventos, realtime.NewEvent(realtime.TablaVentasFiadas, realtime.Update, fiado.ID.String()))
	}
	s.pub.Publish(ctx, eventos...)
	s.metrics.PagoRegistrado(saldado)

	sumas, err := s.repo.SumaPagos(ctx, []uuid.UUID{fiado.ID})
	if err != nil {
		return nil, err
	}
	fr := fiadoToResponse(fiado, sumas[fiado.ID])
	log.Info().
		Str("venta_fiada_id", fiado.ID.String()).
		Str("monto", monto.StringFixed(2)).
		Str("saldo", fr.Saldo.StringFixed(2)).
		Bool("saldada", saldado).
		Msg("pago de fiado registrado")

	s.encolarRecibo(ctx, fiado, pago, fr.Saldo)
	return &dto.RegistrarPagoResponse{Pago: pagoToResponse(pago), Fiado: *fr}, nil
}

// encolarRecibo is best-effort: a missing queue or email never fails the payment.
func (s *fiadoService) encolarRecibo(ctx context.Context, f *model.VentaFiada, p *model.PagoFiado, saldo decimal.Decimal) {
	if s.recibos == nil || f.Cliente == nil || f.Cliente.Email == nil || *f.Cliente.Email == "" {
		return
	}
	job := worker.ReciboPagoJob{
		PagoID:      p.ID.String(),
		ToEmail:     *f.Cliente.Email,
		Cliente:     f.Cliente.Nombre,
		NumeroVenta: f.Venta.Numero,
		Monto:       p.Monto,
		Saldo:       saldo,
		Fecha:       p.CreatedAt.In(s.loc),
	}
	if p.MetodoPago != nil {
		job.MetodoPago = *p.MetodoPago
	}
	if err := s.recibos.EnqueueReciboPago(ctx, job); err != nil {
		ev := log.Warn()
		if errors.Is(err, worker.ErrSinCola) {
			ev = log.Debug()
		}
		ev.Err(err).Str("pago_id", job.PagoID).Msg("recibo de pago no encolado")
	}
}

func (s *fiadoService) VerificarSaldo(ctx context.Context, fiadoID uuid.UUID) (*dto.FiadoResponse, error) {
	var f *model.VentaFiada
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		saldado, err := s.repo.MarcarPagadaSiSaldadaTx(ctx, tx, fiadoID)
		if err != nil {
			return err
		}
		if saldado {
			log.Info().Str("venta_fiada_id", fiadoID.String()).Msg("venta fiada saldada al verificar")
		}
		f, err = s.repo.FindByIDTx(ctx, tx, fiadoID)
		return err
	})
	if err != nil {
		return nil, err
	}
	sumas, err := s.repo.SumaPagos(ctx, []uuid.UUID{f.ID})
	if err != nil {
		return nil, err
	}
	return fiadoToResponse(f, sumas[f.ID]), nil
}

// MarcarVencidos uses the start of the local calendar day as the cut, so a
// sale due today is not overdue until tomorrow.
func (s *fiadoService) MarcarVencidos(ctx context.Context, now time.Time) (int, error) {
	y, m, d := now.In(s.loc).Date()
	limite := time.Date(y, m, d, 0, 0, 0, 0, s.loc).UTC()

	vencidos, err := s.repo.MarcarVencidos(ctx, limite)
	if err != nil {
		return 0, err
	}
	if len(vencidos) == 0 {
		return 0, nil
	}
	eventos := make([]realtime.Event, 0, len(vencidos))
	for _, f := range vencidos {
		eventos = append(eventos, realtime.NewEvent(realtime.TablaVentasFiadas, realtime.Update, f.ID.String()))
	}
	s.pub.Publish(ctx, eventos...)
	return len(vencidos), nil
}

func (s *fiadoService) DeudaPendienteTotal(ctx context.Context) (decimal.Decimal, error) {
	return s.repo.DeudaPendienteTotal(ctx)
}

func fiadoToResponse(f *model.VentaFiada, pagado decimal.Decimal) *dto.FiadoResponse {
	resp := &dto.FiadoResponse{
		ID:               f.ID.String(),
		VentaID:          f.VentaID.String(),
		ClienteID:        f.ClienteID.String(),
		Estado:           f.Estado,
		Total:            decimal.Zero,
		Pagado:           pagado,
		FechaVencimiento: f.FechaVencimiento,
		Nota:             f.Nota,
		CreatedAt:        f.CreatedAt,
	}
	if f.Venta != nil {
		resp.NumeroVenta = f.Venta.Numero
		resp.Total = f.Venta.Total
	}
	if f.Cliente != nil {
		resp.Cliente = f.Cliente.Nombre
	}
	resp.Saldo = resp.Total.Sub(pagado)
	if resp.Saldo.IsNegative() {
		resp.Saldo = decimal.Zero
	}
	return resp
}

func pagoToResponse(p *model.PagoFiado) dto.PagoResponse {
	return dto.PagoResponse{
		ID:           p.ID.String(),
		VentaFiadaID: uuidString(p.VentaFiadaID),
		Monto:        p.Monto,
		MetodoPago:   p.MetodoPago,
		Nota:         p.Nota,
		CreatedAt:    p.CreatedAt,
	}
}
