package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/carrito"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/realtime"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/repository"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/testdb"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

// ── Recording publisher ──────────────────────────────────────────────────────

type eventRecorder struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (r *eventRecorder) Publish(_ context.Context, events ...realtime.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *eventRecorder) has(tabla string, tipo realtime.Tipo) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e.Tabla == tabla && e.Tipo == tipo {
			return true
		}
	}
	return false
}

func (r *eventRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// ── Receipt queue stub ───────────────────────────────────────────────────────

type reciboStub struct {
	jobs []worker.ReciboPagoJob
	err  error
}

func (s *reciboStub) EnqueueReciboPago(_ context.Context, job worker.ReciboPagoJob) error {
	s.jobs = append(s.jobs, job)
	return s.err
}

// ── Environment ──────────────────────────────────────────────────────────────

// testEnv wires every service over one SQLite database, the way the router
// does over PostgreSQL.
type testEnv struct {
	db      *gorm.DB
	pub     *eventRecorder
	recibos *reciboStub
	store   *carrito.MemoryStore
	usuario uuid.UUID

	productos repository.ProductoRepository
	promos    repository.PromocionRepository
	ventaRepo repository.VentaRepository
	fiadoRepo repository.FiadoRepository
	cajaRepo  repository.CajaRepository

	catalogo  ProductoService
	promocion PromocionService
	carrito   CarritoService
	ventas    VentaService
	caja      CajaService
	clientes  ClienteService
	fiados    FiadoService
	dashboard DashboardService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testdb.New(t)
	e := &testEnv{
		db:        db,
		pub:       &eventRecorder{},
		recibos:   &reciboStub{},
		store:     carrito.NewMemoryStore(),
		usuario:   uuid.New(),
		productos: repository.NewProductoRepository(db),
		promos:    repository.NewPromocionRepository(db),
		ventaRepo: repository.NewVentaRepository(db),
		fiadoRepo: repository.NewFiadoRepository(db),
		cajaRepo:  repository.NewCajaRepository(db),
	}
	clienteRepo := repository.NewClienteRepository(db)

	e.catalogo = NewProductoService(e.productos, e.pub)
	e.promocion = NewPromocionService(e.promos, e.productos, e.store, e.pub)
	e.carrito = NewCarritoService(e.store, e.productos, e.promos)
	e.ventas = NewVentaService(VentaRepos{
		Ventas:     e.ventaRepo,
		Productos:  e.productos,
		Promos:     e.promos,
		Fiados:     e.fiadoRepo,
		Caja:       e.cajaRepo,
		Clientes:   clienteRepo,
		Carritos:   e.store,
		Publisher:  e.pub,
		Location:   time.UTC,
		Negocio:    "Almacén de prueba",
		PDFStorage: t.TempDir(),
	})
	e.caja = NewCajaService(e.cajaRepo, e.ventaRepo, e.fiadoRepo, e.pub, nil, time.UTC)
	e.clientes = NewClienteService(clienteRepo, e.pub)
	e.fiados = NewFiadoService(e.fiadoRepo, e.cajaRepo, e.recibos, e.pub, nil, time.UTC)
	e.dashboard = NewDashboardService(e.cajaRepo, e.ventaRepo, time.UTC)
	return e
}

func (e *testEnv) producto(t *testing.T, nombre, precio string, costo *string, stock int) *model.Producto {
	t.Helper()
	p := &model.Producto{Nombre: nombre, PrecioVenta: dec(precio), Stock: stock}
	if costo != nil {
		c := dec(*costo)
		p.PrecioCosto = &c
	}
	require.NoError(t, e.productos.Create(context.Background(), p))
	return p
}

func (e *testEnv) cliente(t *testing.T, nombre string, email *string) *dto.ClienteResponse {
	t.Helper()
	c, err := e.clientes.Crear(context.Background(), dto.CrearClienteRequest{Nombre: nombre, Email: email})
	require.NoError(t, err)
	return c
}

func (e *testEnv) agregar(t *testing.T, p *model.Producto, n int) {
	t.Helper()
	_, err := e.carrito.AgregarProducto(context.Background(), e.usuario, dto.AgregarProductoCarritoRequest{
		ProductoID: p.ID.String(),
		Cantidad:   n,
	})
	require.NoError(t, err)
}

// ventaFiada sells p × n on credit to cliente and returns the credit sale id.
func (e *testEnv) ventaFiada(t *testing.T, p *model.Producto, n int, clienteID string) (*dto.VentaResponse, uuid.UUID) {
	t.Helper()
	e.agregar(t, p, n)
	v, err := e.ventas.ConfirmarVenta(context.Background(), e.usuario, dto.ConfirmarVentaRequest{ClienteID: &clienteID})
	require.NoError(t, err)
	require.NotNil(t, v.VentaFiadaID)
	return v, uuid.MustParse(*v.VentaFiadaID)
}

func (e *testEnv) stock(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := e.productos.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (e *testEnv) movimientos(t *testing.T) []model.MovimientoCaja {
	t.Helper()
	movs, err := e.cajaRepo.ListMovimientos(context.Background(), repository.MovimientoListFilter{})
	require.NoError(t, err)
	return movs
}

func count(t *testing.T, db *gorm.DB, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}
