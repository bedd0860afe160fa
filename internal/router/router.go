package router

import (
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/carrito"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/config"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/handler"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/infra"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/middleware"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/realtime"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/repository"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps is the infrastructure built by the composition root. Redis, Mailer,
// Gatherer and the limiters are optional.
type Deps struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Hub       *realtime.Hub
	Publisher realtime.Publisher
	Carritos  carrito.Store
	Recibos   service.ReciboEncolador
	Mailer    *infra.Mailer
	Metrics   *infra.Metrics
	Gatherer  prometheus.Gatherer
	Location  *time.Location

	RateLimit  *middleware.RateLimiter
	LoginLimit *middleware.RateLimiter
}

// Services is the business layer shared by the HTTP routes and the
// background jobs started in main.
type Services struct {
	Auth      service.AuthService
	Productos service.ProductoService
	Promos    service.PromocionService
	Carrito   service.CarritoService
	Ventas    service.VentaService
	Caja      service.CajaService
	Clientes  service.ClienteService
	Fiados    service.FiadoService
	Dashboard service.DashboardService
}

// NewServices wires repositories into services.
// Dependency graph: Service ← Repository ← DB/Redis
func NewServices(cfg *config.Config, d Deps) *Services {
	if d.Carritos == nil {
		d.Carritos = carrito.NewMemoryStore()
	}
	if d.Publisher == nil && d.Hub != nil {
		d.Publisher = d.Hub
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(d.DB)
	productoRepo := repository.NewProductoRepository(d.DB)
	promocionRepo := repository.NewPromocionRepository(d.DB)
	ventaRepo := repository.NewVentaRepository(d.DB)
	cajaRepo := repository.NewCajaRepository(d.DB)
	clienteRepo := repository.NewClienteRepository(d.DB)
	fiadoRepo := repository.NewFiadoRepository(d.DB)

	// ── Services ─────────────────────────────────────────────────────────────
	return &Services{
		Auth:      service.NewAuthService(usuarioRepo, cfg),
		Productos: service.NewProductoService(productoRepo, d.Publisher),
		Promos:    service.NewPromocionService(promocionRepo, productoRepo, d.Carritos, d.Publisher),
		Carrito:   service.NewCarritoService(d.Carritos, productoRepo, promocionRepo),
		Ventas: service.NewVentaService(service.VentaRepos{
			Ventas:     ventaRepo,
			Productos:  productoRepo,
			Promos:     promocionRepo,
			Fiados:     fiadoRepo,
			Caja:       cajaRepo,
			Clientes:   clienteRepo,
			Carritos:   d.Carritos,
			Publisher:  d.Publisher,
			Metrics:    d.Metrics,
			Location:   d.Location,
			Negocio:    cfg.NombreNegocio,
			PDFStorage: cfg.PDFStoragePath,
		}),
		Caja:      service.NewCajaService(cajaRepo, ventaRepo, fiadoRepo, d.Publisher, d.Metrics, d.Location),
		Clientes:  service.NewClienteService(clienteRepo, d.Publisher),
		Fiados:    service.NewFiadoService(fiadoRepo, cajaRepo, d.Recibos, d.Publisher, d.Metrics, d.Location),
		Dashboard: service.NewDashboardService(cajaRepo, ventaRepo, d.Location),
	}
}

// New returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, d Deps, svcs *Services) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Hub == nil {
		d.Hub = realtime.NewHub()
	}
	if d.RateLimit == nil {
		d.RateLimit = middleware.NewRateLimiter(1000, time.Minute, "Demasiadas solicitudes. Intente más tarde.")
	}
	if d.LoginLimit == nil {
		d.LoginLimit = middleware.NewLoginRateLimiter()
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(d.RateLimit.Middleware())

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(svcs.Auth)
	usuariosH := handler.NewUsuariosHandler(svcs.Auth)
	productosH := handler.NewProductosHandler(svcs.Productos)
	promosH := handler.NewPromocionesHandler(svcs.Promos)
	carritoH := handler.NewCarritoHandler(svcs.Carrito, svcs.Ventas)
	ventasH := handler.NewVentasHandler(svcs.Ventas)
	cajaH := handler.NewCajaHandler(svcs.Caja)
	clientesH := handler.NewClientesHandler(svcs.Clientes)
	fiadosH := handler.NewFiadosHandler(svcs.Fiados)
	dashboardH := handler.NewDashboardHandler(svcs.Dashboard)
	cambiosH := realtime.NewWSHandler(d.Hub, cfg.RealtimeDebounce())

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	var smtpCB *infra.CircuitBreaker
	if d.Mailer != nil {
		smtpCB = d.Mailer.Breaker()
	}
	r.GET("/health", handler.Health(d.DB, d.Redis, smtpCB))
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", d.LoginLimit.Middleware(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes. Every authenticated role may read and sell; catalog
	// writes, ledger deletions and user management are administrador only.
	todos := middleware.RequireRole(model.RolVendedor, model.RolAdministrador)
	admin := middleware.RequireRole(model.RolAdministrador)

	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		v1.GET("/cambios", todos, cambiosH.Stream)

		v1.GET("/productos", todos, productosH.Listar)
		v1.GET("/productos/:id", todos, productosH.ObtenerPorID)
		prods := v1.Group("/productos", admin)
		{
			prods.POST("", productosH.Crear)
			prods.PUT("/:id", productosH.Actualizar)
			prods.DELETE("/:id", productosH.Eliminar)
			prods.PATCH("/:id/stock", productosH.ActualizarStock)
		}

		v1.GET("/promociones", todos, promosH.Listar)
		v1.GET("/promociones/:id/disponibilidad", todos, promosH.Disponibilidad)
		promos := v1.Group("/promociones", admin)
		{
			promos.POST("", promosH.Crear)
			promos.PATCH("/:id/activo", promosH.Alternar)
			promos.DELETE("/:id", promosH.Eliminar)
		}

		cart := v1.Group("/carrito", todos)
		{
			cart.GET("", carritoH.Obtener)
			cart.DELETE("", carritoH.Vaciar)
			cart.POST("/productos", carritoH.AgregarProducto)
			cart.POST("/promociones", carritoH.AgregarPromocion)
			cart.DELETE("/items/:key", carritoH.Quitar)
			cart.POST("/confirmar", carritoH.Confirmar)
		}

		ventas := v1.Group("/ventas", todos)
		{
			ventas.GET("", ventasH.ListarVentas)
			ventas.GET("/:id", ventasH.ObtenerVenta)
			ventas.GET("/:id/ticket", ventasH.Ticket)
		}

		caja := v1.Group("/caja")
		{
			caja.GET("/movimientos", todos, cajaH.ListarMovimientos)
			caja.POST("/movimientos", todos, cajaH.RegistrarMovimiento)
			caja.DELETE("/movimientos/:id", admin, cajaH.EliminarMovimiento)
			caja.GET("/resumen", todos, cajaH.Resumen)
		}

		clientes := v1.Group("/clientes", todos)
		{
			clientes.GET("", clientesH.Listar)
			clientes.POST("", clientesH.Crear)
			clientes.GET("/:id", clientesH.ObtenerPorID)
			clientes.PUT("/:id", clientesH.Actualizar)
			clientes.DELETE("/:id", clientesH.Eliminar)
		}

		fiados := v1.Group("/fiados", todos)
		{
			fiados.GET("", fiadosH.Listar)
			fiados.GET("/:id/pagos", fiadosH.ListarPagos)
			fiados.POST("/:id/pagos", fiadosH.RegistrarPago)
			fiados.POST("/:id/verificar", fiadosH.VerificarSaldo)
		}

		v1.GET("/dashboard", todos, dashboardH.Resumen)

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
		}
	}

	// Swagger UI: only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
