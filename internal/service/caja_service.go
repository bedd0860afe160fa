package service

import (
	"context"
	"strings"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/apierror"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/infra"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/realtime"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type CajaService interface {
	// RegistrarMovimiento records a manual ingreso or egreso.
	RegistrarMovimiento(ctx context.Context, usuarioID uuid.UUID, req dto.MovimientoManualRequest) (*dto.MovimientoResponse, error)
	ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) ([]dto.MovimientoResponse, error)
	Resumen(ctx context.Context, mes string) (*dto.ResumenCajaResponse, error)
	// EliminarMovimiento deletes a movement. When it stands for a sale, the
	// sale, its lines and its credit sale go with it; payments stay.
	EliminarMovimiento(ctx context.Context, id uuid.UUID) error
}

type cajaService struct {
	repo      repository.CajaRepository
	ventaRepo repository.VentaRepository
	fiadoRepo repository.FiadoRepository
	pub       realtime.Publisher
	metrics   *infra.Metrics
	loc       *time.Location
	now       func() time.Time
}

func NewCajaService(
	repo repository.CajaRepository,
	ventaRepo repository.VentaRepository,
	fiadoRepo repository.FiadoRepository,
	pub realtime.Publisher,
	metrics *infra.Metrics,
	loc *time.Location,
) CajaService {
	if pub == nil {
		pub = realtime.Nop{}
	}
	return &cajaService{
		repo:      repo,
		ventaRepo: ventaRepo,
		fiadoRepo: fiadoRepo,
		pub:       pub,
		metrics:   metrics,
		loc:       ubicacion(loc),
		now:       time.Now,
	}
}

// ── RegistrarMovimiento ───────────────────────────────────────────────────────

func (s *cajaService) RegistrarMovimiento(ctx context.Context, usuarioID uuid.UUID, req dto.MovimientoManualRequest) (*dto.MovimientoResponse, error) {
	if req.Tipo != model.MovIngreso && req.Tipo != model.MovEgreso {
		return nil, apierror.Validation("Solo se registran a mano ingresos y egresos")
	}
	if !req.Monto.IsPositive() {
		return nil, apierror.Validation("El monto debe ser mayor a cero")
	}
	desc := strings.TrimSpace(req.Descripcion)
	if desc == "" {
		return nil, apierror.Validation("La descripción es obligatoria")
	}

	m := &model.MovimientoCaja{
		Tipo:        req.Tipo,
		Descripcion: desc,
		Monto:       req.Monto.Round(2),
		Categoria:   limpiar(req.Categoria),
		Nota:        limpiar(req.Nota),
		MetodoPago:  limpiar(req.MetodoPago),
	}
	if usuarioID != uuid.Nil {
		uid := usuarioID
		m.UsuarioID = &uid
	}
	if err := s.repo.CreateMovimientoTx(ctx, nil, m); err != nil {
		return nil, err
	}
	s.pub.Publish(ctx, realtime.NewEvent(realtime.TablaMovimientos, realtime.Insert, m.ID.String()))
	return movimientoToResponse(m, s.loc), nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *cajaService) movimientosDelMes(ctx context.Context, mes, tipo string) (string, []model.MovimientoCaja, error) {
	mes, desde, hasta, err := rangoMes(mes, s.now(), s.loc)
	if err != nil {
		return "", nil, err
	}
	movs, err := s.repo.ListMovimientos(ctx, repository.MovimientoListFilter{
		Desde: desde.Add(-margenVentana),
		Hasta: hasta.Add(margenVentana),
		Tipo:  tipo,
	})
	if err != nil {
		return "", nil, err
	}
	return mes, filtrarPorPeriodo(movs, mes, s.loc), nil
}

func (s *cajaService) ListarMovimientos(ctx context.Context, filter dto.MovimientoFilter) ([]dto.MovimientoResponse, error) {
	if filter.Tipo != "" && !model.TipoValido(filter.Tipo) {
		return nil, apierror.Validation("Tipo de movimiento inválido: " + filter.Tipo)
	}
	_, movs, err := s.movimientosDelMes(ctx, filter.Mes, filter.Tipo)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.MovimientoResponse, 0, len(movs))
	for i := range movs {
		resp = append(resp, *movimientoToResponse(&movs[i], s.loc))
	}
	return resp, nil
}

// Resumen mixes the month's per-kind sums with all-time cash on hand.
func (s *cajaService) Resumen(ctx context.Context, mes string) (*dto.ResumenCajaResponse, error) {
	mes, movs, err := s.movimientosDelMes(ctx, mes, "")
	if err != nil {
		return nil, err
	}
	historico, err := s.repo.SumPorTipo(ctx, repository.MovimientoListFilter{})
	if err != nil {
		return nil, err
	}
	pendiente, err := s.fiadoRepo.DeudaPendienteTotal(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ResumenCajaResponse{
		Mes:                 mes,
		Mensual:             SumarMovimientos(movs),
		CajaDisponible:      CajaDisponible(totalesDesdeAgregado(historico)),
		FiadoPendienteTotal: pendiente,
	}, nil
}

// ── EliminarMovimiento ────────────────────────────────────────────────────────
// Cascade follows the typed links only:
//   ingreso with venta_id           → the sale goes too
//   venta_fiada (venta_fiada_id)    → resolved to its sale, which goes too
//   anything else                   → only the movement

func (s *cajaService) EliminarMovimiento(ctx context.Context, id uuid.UUID) error {
	m, err := s.repo.FindMovimientoByID(ctx, id)
	if err != nil {
		return err
	}

	var ventaID *uuid.UUID
	err = runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		v, err := s.ventaVinculada(ctx, tx, m)
		if err != nil {
			return err
		}
		ventaID = v
		if err := s.repo.DeleteMovimientoTx(ctx, tx, m.ID); err != nil {
			return err
		}
		if ventaID != nil {
			return s.ventaRepo.DeleteCascadeTx(ctx, tx, *ventaID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	eventos := []realtime.Event{realtime.NewEvent(realtime.TablaMovimientos, realtime.Delete, m.ID.String())}
	if ventaID != nil {
		eventos = append(eventos,
			realtime.NewEvent(realtime.TablaVentas, realtime.Delete, ventaID.String()),
			realtime.NewEvent(realtime.TablaVentasFiadas, realtime.Delete, ""),
			realtime.NewEvent(realtime.TablaPagosFiado, realtime.Update, ""),
		)
	}
	s.pub.Publish(ctx, eventos...)
	s.metrics.MovimientoEliminado(m.Tipo)

	ev := log.Info().Str("movimiento_id", m.ID.String()).Str("tipo", m.Tipo)
	if ventaID != nil {
		ev = ev.Str("venta_id", ventaID.String())
	}
	ev.Msg("movimiento de caja eliminado")
	return nil
}

func (s *cajaService) ventaVinculada(ctx context.Context, tx *gorm.DB, m *model.MovimientoCaja) (*uuid.UUID, error) {
	switch m.Tipo {
	case model.MovIngreso:
		return m.VentaID, nil
	case model.MovVentaFiada:
		if m.VentaFiadaID != nil {
			f, err := s.fiadoRepo.FindByIDTx(ctx, tx, *m.VentaFiadaID)
			if err == nil {
				return &f.VentaID, nil
			}
			if apierror.KindOf(err) != apierror.KindNotFound {
				return nil, err
			}
		}
		return m.VentaID, nil
	}
	return nil, nil
}

func movimientoToResponse(m *model.MovimientoCaja, loc *time.Location) *dto.MovimientoResponse {
	return &dto.MovimientoResponse{
		ID:           m.ID.String(),
		Tipo:         m.Tipo,
		Descripcion:  m.Descripcion,
		Monto:        m.Monto,
		Categoria:    m.Categoria,
		Nota:         m.Nota,
		MetodoPago:   m.MetodoPago,
		UsuarioID:    uuidString(m.UsuarioID),
		ClienteID:    uuidString(m.ClienteID),
		VentaID:      uuidString(m.VentaID),
		VentaFiadaID: uuidString(m.VentaFiadaID),
		Fecha:        diaLocal(m.CreatedAt, loc),
		CreatedAt:    m.CreatedAt,
	}
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
