//go:build integration

package router_test

// End-to-end tests against real Postgres and Redis via testcontainers.
// Run with: go test -tags integration ./internal/router/... -v
//
// Two instances share one database and one Redis, the way a multi-till
// deployment does: carts and change events must cross between them.

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/carrito"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/config"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/infra"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/realtime"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/repository"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/router"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/service"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// enviadorCanal records every receipt the email worker would send.
type enviadorCanal chan string

func (c enviadorCanal) Enviar(to, _, _, _ string) error {
	c <- to
	return nil
}

type instancia struct {
	srv *httptest.Server
	hub *realtime.Hub
}

type e2eEnv struct {
	a, b   instancia
	rdb    *redis.Client
	db     *gorm.DB
	token  string
	emails enviadorCanal
}

func setupE2E(t *testing.T) *e2eEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	pgC, err := tcPostgres.Run(ctx, "postgres:16-alpine",
		tcPostgres.WithDatabase("ventas_test"),
		tcPostgres.WithUsername("ventas"),
		tcPostgres.WithPassword("ventas"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })
	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(context.Background()) })
	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:                "test",
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		JWTSecret:          "e2e-secret",
		JWTExpirationHours: 1,
		JWTRefreshHours:    2,
		PDFStoragePath:     t.TempDir(),
		NombreNegocio:      "Almacén E2E",
		CarritoTTLMinutes:  30,
		WorkerPoolSize:     1,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(ctx, db, "up"))
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	prev := service.BcryptCost
	service.BcryptCost = bcrypt.MinCost
	t.Cleanup(func() { service.BcryptCost = prev })
	hash, err := bcrypt.GenerateFromPassword([]byte("admin1234"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repository.NewUsuarioRepository(db).Create(ctx, &model.Usuario{
		Username:     "admin",
		Nombre:       "Administrador",
		PasswordHash: string(hash),
		Rol:          model.RolAdministrador,
		Activo:       true,
	}))

	emails := make(enviadorCanal, 4)
	pool := worker.NewPool(rdb)
	pool.Handle(worker.JobReciboPago, worker.NewEmailWorker(emails, cfg.NombreNegocio, cfg.PDFStoragePath).Process)
	pool.Start(ctx, cfg.WorkerPoolSize)
	t.Cleanup(pool.Wait)

	nueva := func() instancia {
		hub := realtime.NewHub()
		bridge := realtime.NewRedisBridge(rdb, hub)
		go func() { _ = bridge.Run(ctx) }()
		deps := router.Deps{
			DB:        db,
			Redis:     rdb,
			Hub:       hub,
			Publisher: bridge,
			Carritos:  carrito.NewRedisStore(rdb, cfg.CarritoTTL()),
			Recibos:   worker.NewDispatcher(rdb),
			Location:  time.UTC,
		}
		srv := httptest.NewServer(router.New(cfg, deps, router.NewServices(cfg, deps)))
		t.Cleanup(srv.Close)
		return instancia{srv: srv, hub: hub}
	}
	env := &e2eEnv{a: nueva(), b: nueva(), rdb: rdb, db: db, emails: emails}

	require.Eventually(t, func() bool {
		subs, err := rdb.PubSubNumSub(ctx, realtime.CanalCambios).Result()
		return err == nil && subs[realtime.CanalCambios] == 2
	}, 10*time.Second, 50*time.Millisecond, "both bridges subscribed")

	resp := do(t, env.a.srv, http.MethodPost, "/v1/auth/login",
		jsonBody(t, dto.LoginRequest{Username: "admin", Password: "admin1234"}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login dto.LoginResponse
	decodeJSON(t, resp, &login)
	env.token = login.AccessToken
	return env
}

func TestE2E_HealthReportsRedis(t *testing.T) {
	env := setupE2E(t)
	resp := do(t, env.a.srv, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	decodeJSON(t, resp, &body)
	assert.Equal(t, "connected", body["redis"])
	assert.EqualValues(t, 0, body["dlq_email"])
}

func TestE2E_CartSharedAcrossInstancesAndCreditCycle(t *testing.T) {
	env := setupE2E(t)

	var mu sync.Mutex
	var remotos []realtime.Event
	env.b.hub.Subscribe("e2e", []realtime.Filtro{{Tabla: realtime.TablaVentas}}, func(e realtime.Event) {
		mu.Lock()
		defer mu.Unlock()
		remotos = append(remotos, e)
	})

	var prod dto.ProductoResponse
	resp := do(t, env.a.srv, http.MethodPost, "/v1/productos",
		jsonBody(t, map[string]any{"nombre": "Fideos", "precio_venta": "12.50", "precio_costo": "7", "stock": 10}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &prod)

	var cli dto.ClienteResponse
	resp = do(t, env.a.srv, http.MethodPost, "/v1/clientes",
		jsonBody(t, map[string]any{"nombre": "Ana", "email": "ana@example.com"}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &cli)

	// Cart filled on A, confirmed on B.
	require.Equal(t, http.StatusOK, cerrar(do(t, env.a.srv, http.MethodPost, "/v1/carrito/productos",
		jsonBody(t, dto.AgregarProductoCarritoRequest{ProductoID: prod.ID, Cantidad: 4}), env.token)))
	var cart dto.CarritoResponse
	resp = do(t, env.b.srv, http.MethodGet, "/v1/carrito", nil, env.token)
	decodeJSON(t, resp, &cart)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "50.00", cart.Total.StringFixed(2))

	var venta dto.VentaResponse
	resp = do(t, env.b.srv, http.MethodPost, "/v1/carrito/confirmar",
		jsonBody(t, map[string]any{"cliente_id": cli.ID, "fecha_vencimiento": "2030-01-31"}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &venta)
	require.NotNil(t, venta.VentaFiadaID)

	resp = do(t, env.a.srv, http.MethodGet, "/v1/carrito", nil, env.token)
	decodeJSON(t, resp, &cart)
	assert.Empty(t, cart.Items, "confirmed cart is cleared for every instance")

	// A sale made on A reaches B's subscribers through Redis; B's own
	// confirmation was delivered locally.
	resp = do(t, env.a.srv, http.MethodPost, "/v1/carrito/productos",
		jsonBody(t, dto.AgregarProductoCarritoRequest{ProductoID: prod.ID, Cantidad: 1}), env.token)
	require.Equal(t, http.StatusOK, cerrar(resp))
	require.Equal(t, http.StatusCreated, cerrar(do(t, env.a.srv, http.MethodPost, "/v1/carrito/confirmar",
		jsonBody(t, map[string]any{}), env.token)))
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(remotos) >= 2
	}, 5*time.Second, 20*time.Millisecond)

	var pago dto.RegistrarPagoResponse
	resp = do(t, env.a.srv, http.MethodPost, "/v1/fiados/"+*venta.VentaFiadaID+"/pagos",
		jsonBody(t, map[string]any{"monto": "20", "metodo_pago": "efectivo"}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &pago)
	assert.Equal(t, model.FiadoPendiente, pago.Fiado.Estado)
	assert.Equal(t, "30.00", pago.Fiado.Saldo.StringFixed(2))

	select {
	case to := <-env.emails:
		assert.Equal(t, "ana@example.com", to)
	case <-time.After(10 * time.Second):
		t.Fatal("receipt email was not processed")
	}

	var resumen dto.ResumenCajaResponse
	resp = do(t, env.b.srv, http.MethodGet, "/v1/caja/resumen", nil, env.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &resumen)
	// 12.50 cash sale + 20 debt payment.
	assert.Equal(t, "32.50", resumen.CajaDisponible.StringFixed(2))
	assert.Equal(t, "50.00", resumen.FiadoPendienteTotal.StringFixed(2), "open credit sales count at full total")

	resp = do(t, env.a.srv, http.MethodGet, "/v1/productos/"+prod.ID, nil, env.token)
	decodeJSON(t, resp, &prod)
	assert.Equal(t, 5, prod.Stock)
}

func TestE2E_ConcurrentCheckoutNeverOversells(t *testing.T) {
	env := setupE2E(t)

	var prod dto.ProductoResponse
	resp := do(t, env.a.srv, http.MethodPost, "/v1/productos",
		jsonBody(t, map[string]any{"nombre": "Última unidad", "precio_venta": "5", "stock": 1}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &prod)

	// Two cashiers, two carts, one unit.
	tokens := []string{env.token}
	require.Equal(t, http.StatusCreated, cerrar(do(t, env.a.srv, http.MethodPost, "/v1/usuarios", jsonBody(t, dto.CrearUsuarioRequest{
		Username: "caja2", Nombre: "Caja dos", Password: "caja2pass", Rol: model.RolVendedor,
	}), env.token)))
	resp = do(t, env.b.srv, http.MethodPost, "/v1/auth/login",
		jsonBody(t, dto.LoginRequest{Username: "caja2", Password: "caja2pass"}), "")
	var login dto.LoginResponse
	decodeJSON(t, resp, &login)
	tokens = append(tokens, login.AccessToken)

	for _, tok := range tokens {
		require.Equal(t, http.StatusOK, cerrar(do(t, env.a.srv, http.MethodPost, "/v1/carrito/productos",
			jsonBody(t, dto.AgregarProductoCarritoRequest{ProductoID: prod.ID, Cantidad: 1}), tok)))
	}

	codes := make(chan int, 2)
	var wg sync.WaitGroup
	for i, tok := range tokens {
		srv := env.a.srv
		if i == 1 {
			srv = env.b.srv
		}
		wg.Add(1)
		go func(srv *httptest.Server, tok string) {
			defer wg.Done()
			codes <- cerrar(do(t, srv, http.MethodPost, "/v1/carrito/confirmar", jsonBody(t, map[string]any{}), tok))
		}(srv, tok)
	}
	wg.Wait()
	close(codes)

	var creadas, conflictos int
	for c := range codes {
		switch c {
		case http.StatusCreated:
			creadas++
		case http.StatusConflict:
			conflictos++
		}
	}
	assert.Equal(t, 1, creadas)
	assert.Equal(t, 1, conflictos)

	var n int64
	require.NoError(t, env.db.Model(&model.Venta{}).Count(&n).Error)
	assert.EqualValues(t, 1, n, "the losing checkout leaves no sale behind")
}
