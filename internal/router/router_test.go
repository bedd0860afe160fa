package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/config"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/dto"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/infra"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/model"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/repository"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/router"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/service"
	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/testdb"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() { gin.SetMode(gin.TestMode) }

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var rd io.Reader
	if body != nil {
		rd = body
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func cerrar(resp *http.Response) int {
	_ = resp.Body.Close()
	return resp.StatusCode
}

type entorno struct {
	srv   *httptest.Server
	admin string
}

func nuevoEntorno(t *testing.T) *entorno {
	t.Helper()
	prev := service.BcryptCost
	service.BcryptCost = bcrypt.MinCost
	t.Cleanup(func() { service.BcryptCost = prev })

	cfg := &config.Config{
		Env:                "test",
		JWTSecret:          "router-secret",
		JWTExpirationHours: 1,
		JWTRefreshHours:    2,
		PDFStoragePath:     t.TempDir(),
		NombreNegocio:      "Almacén de prueba",
	}
	db := testdb.New(t)
	hash, err := bcrypt.GenerateFromPassword([]byte("admin1234"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, repository.NewUsuarioRepository(db).Create(context.Background(), &model.Usuario{
		Username:     "admin",
		Nombre:       "Administrador",
		PasswordHash: string(hash),
		Rol:          model.RolAdministrador,
		Activo:       true,
	}))

	reg := prometheus.NewRegistry()
	deps := router.Deps{DB: db, Location: time.UTC, Metrics: infra.NewMetrics(reg), Gatherer: reg}
	engine := router.New(cfg, deps, router.NewServices(cfg, deps))
	srv := httptest.NewServer(engine)
	t.Cleanup(srv.Close)

	e := &entorno{srv: srv}
	e.admin = e.login(t, "admin", "admin1234")
	return e
}

func (e *entorno) login(t *testing.T, user, pass string) string {
	t.Helper()
	resp := do(t, e.srv, http.MethodPost, "/v1/auth/login",
		jsonBody(t, dto.LoginRequest{Username: user, Password: pass}), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.LoginResponse
	decodeJSON(t, resp, &out)
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestHealth_WithoutRedis(t *testing.T) {
	e := nuevoEntorno(t)
	resp := do(t, e.srv, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	decodeJSON(t, resp, &body)
	assert.Equal(t, "connected", body["db"])
	assert.Equal(t, "disabled", body["redis"])
	assert.Equal(t, true, body["ok"])
	assert.NotContains(t, body, "smtp")
}

func TestAuthAndRoles(t *testing.T) {
	e := nuevoEntorno(t)

	assert.Equal(t, http.StatusUnauthorized, cerrar(do(t, e.srv, http.MethodGet, "/v1/productos", nil, "")))
	assert.Equal(t, http.StatusUnauthorized, cerrar(do(t, e.srv, http.MethodPost, "/v1/auth/login",
		jsonBody(t, dto.LoginRequest{Username: "admin", Password: "incorrecta"}), "")))

	resp := do(t, e.srv, http.MethodPost, "/v1/usuarios", jsonBody(t, dto.CrearUsuarioRequest{
		Username: "vende",
		Nombre:   "Vendedora",
		Password: "vende1234",
		Rol:      model.RolVendedor,
	}), e.admin)
	require.Equal(t, http.StatusCreated, cerrar(resp))

	vendedor := e.login(t, "vende", "vende1234")
	assert.Equal(t, http.StatusOK, cerrar(do(t, e.srv, http.MethodGet, "/v1/productos", nil, vendedor)))
	assert.Equal(t, http.StatusForbidden, cerrar(do(t, e.srv, http.MethodPost, "/v1/productos",
		jsonBody(t, map[string]any{"nombre": "X", "precio_venta": "1"}), vendedor)))
	assert.Equal(t, http.StatusForbidden, cerrar(do(t, e.srv, http.MethodGet, "/v1/usuarios", nil, vendedor)))
}

func TestRequestErrors(t *testing.T) {
	e := nuevoEntorno(t)

	assert.Equal(t, http.StatusBadRequest, cerrar(do(t, e.srv, http.MethodGet, "/v1/productos/no-es-uuid", nil, e.admin)))
	assert.Equal(t, http.StatusBadRequest, cerrar(do(t, e.srv, http.MethodPost, "/v1/clientes",
		bytes.NewBufferString("{"), e.admin)))

	resp := do(t, e.srv, http.MethodPost, "/v1/clientes", jsonBody(t, map[string]any{"nombre": ""}), e.admin)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var apiErr map[string]any
	decodeJSON(t, resp, &apiErr)
	assert.NotEmpty(t, apiErr["detail"])

	assert.Equal(t, http.StatusNotFound, cerrar(do(t, e.srv, http.MethodGet,
		"/v1/productos/00000000-0000-0000-0000-000000000001", nil, e.admin)))
	assert.Equal(t, http.StatusUnprocessableEntity, cerrar(do(t, e.srv, http.MethodGet,
		"/v1/caja/resumen?mes=2024-13", nil, e.admin)))
}

func TestCreditSaleFlow(t *testing.T) {
	e := nuevoEntorno(t)

	var prod dto.ProductoResponse
	resp := do(t, e.srv, http.MethodPost, "/v1/productos",
		jsonBody(t, map[string]any{"nombre": "Yerba 1kg", "precio_venta": "10", "precio_costo": "6", "stock": 5}), e.admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &prod)

	var cli dto.ClienteResponse
	resp = do(t, e.srv, http.MethodPost, "/v1/clientes", jsonBody(t, map[string]any{"nombre": "Ana"}), e.admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &cli)

	resp = do(t, e.srv, http.MethodPost, "/v1/carrito/productos",
		jsonBody(t, map[string]any{"producto_id": prod.ID}), e.admin)
	assert.Equal(t, http.StatusUnprocessableEntity, cerrar(resp), "cantidad is required")

	resp = do(t, e.srv, http.MethodPost, "/v1/carrito/productos",
		jsonBody(t, dto.AgregarProductoCarritoRequest{ProductoID: prod.ID, Cantidad: 3}), e.admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cart dto.CarritoResponse
	decodeJSON(t, resp, &cart)
	assert.Equal(t, "30.00", cart.Total.StringFixed(2))

	var venta dto.VentaResponse
	resp = do(t, e.srv, http.MethodPost, "/v1/carrito/confirmar",
		jsonBody(t, map[string]any{"cliente_id": cli.ID}), e.admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &venta)
	assert.True(t, venta.Fiada)
	require.NotNil(t, venta.VentaFiadaID)
	assert.Equal(t, "30.00", venta.Total.StringFixed(2))

	resp = do(t, e.srv, http.MethodGet, "/v1/productos/"+prod.ID, nil, e.admin)
	decodeJSON(t, resp, &prod)
	assert.Equal(t, 2, prod.Stock)

	resp = do(t, e.srv, http.MethodGet, "/v1/ventas/"+venta.ID+"/ticket", nil, e.admin)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "ticket_")
	cerrar(resp)

	var pago dto.RegistrarPagoResponse
	resp = do(t, e.srv, http.MethodPost, "/v1/fiados/"+*venta.VentaFiadaID+"/pagos",
		jsonBody(t, map[string]any{"monto": "30"}), e.admin)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	decodeJSON(t, resp, &pago)
	assert.Equal(t, model.FiadoPagada, pago.Fiado.Estado)

	assert.Equal(t, http.StatusConflict, cerrar(do(t, e.srv, http.MethodPost, "/v1/fiados/"+*venta.VentaFiadaID+"/pagos",
		jsonBody(t, map[string]any{"monto": "1"}), e.admin)))

	var resumen dto.ResumenCajaResponse
	resp = do(t, e.srv, http.MethodGet, "/v1/caja/resumen", nil, e.admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeJSON(t, resp, &resumen)
	assert.Equal(t, "30.00", resumen.CajaDisponible.StringFixed(2))
	assert.True(t, resumen.FiadoPendienteTotal.IsZero())

	resp = do(t, e.srv, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	metrics, err := io.ReadAll(resp.Body)
	cerrar(resp)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "ventas_confirmadas_total")
	assert.Contains(t, string(metrics), "pagos_fiado_registrados_total")
}

func TestMetricsRouteRequiresGatherer(t *testing.T) {
	cfg := &config.Config{Env: "test", JWTSecret: "x", PDFStoragePath: t.TempDir()}
	deps := router.Deps{DB: testdb.New(t), Location: time.UTC}
	engine := router.New(cfg, deps, router.NewServices(cfg, deps))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
