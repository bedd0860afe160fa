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
	"github.com/shopspring/decimal"
)

// ErrClienteConFiados is returned when deleting a customer that has credit sales.
var ErrClienteConFiados = apierror.Constraint("No se puede eliminar: el cliente tiene ventas fiadas registradas", nil)

type ClienteService interface {
	Listar(ctx context.Context, nombre string) ([]dto.ClienteResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error)
	Eliminar(ctx context.Context, id uuid.UUID) error
}

type clienteService struct {
	repo repository.ClienteRepository
	pub  realtime.Publisher
}

func NewClienteService(repo repository.ClienteRepository, pub realtime.Publisher) ClienteService {
	if pub == nil {
		pub = realtime.Nop{}
	}
	return &clienteService{repo: repo, pub: pub}
}

// Deuda is derived on every read from the customer's unpaid credit sales.
func (s *clienteService) Listar(ctx context.Context, nombre string) ([]dto.ClienteResponse, error) {
	clientes, err := s.repo.List(ctx, strings.TrimSpace(nombre))
	if err != nil {
		return nil, err
	}
	deudas, err := s.repo.DeudaPorCliente(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		resp = append(resp, *clienteToResponse(&clientes[i], deudas[clientes[i].ID]))
	}
	return resp, nil
}

func (s *clienteService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	deudas, err := s.repo.DeudaPorCliente(ctx)
	if err != nil {
		return nil, err
	}
	return clienteToResponse(c, deudas[c.ID]), nil
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		return nil, apierror.Validation("El nombre es obligatorio")
	}
	c := &model.Cliente{
		Nombre:    nombre,
		Telefono:  limpiar(req.Telefono),
		Email:     limpiar(req.Email),
		Direccion: limpiar(req.Direccion),
		Notas:     limpiar(req.Notas),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	s.pub.Publish(ctx, realtime.NewEvent(realtime.TablaClientes, realtime.Insert, c.ID.String()))
	return clienteToResponse(c, decimal.Zero), nil
}

// Actualizar applies only the fields present; a blank string clears an
// optional field.
func (s *clienteService) Actualizar(ctx context.Context, id uuid.UUID, req dto.ActualizarClienteRequest) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Nombre != nil {
		nombre := strings.TrimSpace(*req.Nombre)
		if nombre == "" {
			return nil, apierror.Validation("El nombre es obligatorio")
		}
		c.Nombre = nombre
	}
	if req.Telefono != nil {
		c.Telefono = limpiar(req.Telefono)
	}
	if req.Email != nil {
		c.Email = limpiar(req.Email)
	}
	if req.Direccion != nil {
		c.Direccion = limpiar(req.Direccion)
	}
	if req.Notas != nil {
		c.Notas = limpiar(req.Notas)
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	s.pub.Publish(ctx, realtime.NewEvent(realtime.TablaClientes, realtime.Update, c.ID.String()))
	return s.ObtenerPorID(ctx, id)
}

func (s *clienteService) Eliminar(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if apierror.KindOf(err) == apierror.KindConstraint {
			return ErrClienteConFiados
		}
		return err
	}
	s.pub.Publish(ctx, realtime.NewEvent(realtime.TablaClientes, realtime.Delete, id.String()))
	return nil
}

func clienteToResponse(c *model.Cliente, deuda decimal.Decimal) *dto.ClienteResponse {
	return &dto.ClienteResponse{
		ID:            c.ID.String(),
		Nombre:        c.Nombre,
		Telefono:      c.Telefono,
		Email:         c.Email,
		Direccion:     c.Direccion,
		Notas:         c.Notas,
		FechaRegistro: c.FechaRegistro,
		Deuda:         deuda,
	}
}
