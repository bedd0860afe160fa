package realtime

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jjsecurevpn-vpn/SistemaVentasReact-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// Mensaje is one frame sent to the browser: the tables that changed since the last frame.
type Mensaje struct {
	Eventos []Event `json:"eventos"`
}

// WSHandler streams debounced change events over a WebSocket.
type WSHandler struct {
	hub      *Hub
	window   time.Duration
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *Hub, window time.Duration) *WSHandler {
	return &WSHandler{
		hub:    hub,
		window: window,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ParseFiltros turns "ventas,productos" into filters. Empty means every table.
func ParseFiltros(raw string) ([]Filtro, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	validas := make(map[string]bool, len(Tablas))
	for _, t := range Tablas {
		validas[t] = true
	}
	var filtros []Filtro
	for _, t := range strings.Split(raw, ",") {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !validas[t] {
			return nil, apierror.Validation("Tabla desconocida: " + t)
		}
		filtros = append(filtros, Filtro{Tabla: t})
	}
	return filtros, nil
}

// Stream godoc
// @Summary      Stream de cambios
// @Description  WebSocket que envía señales de invalidación por tabla
// @Tags         cambios
// @Param        tablas  query  string  false  "Tablas separadas por coma"
// @Router       /v1/cambios [get]
func (h *WSHandler) Stream(c *gin.Context) {
	filtros, err := ParseFiltros(c.Query("tablas"))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierror.FromError(err))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("realtime: upgrade websocket falló")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	salida := make(chan []Event, 8)
	deb := NewDebouncer(h.window, func(batch []Event) {
		select {
		case salida <- batch:
		case <-ctx.Done():
		}
	})
	defer deb.Stop()

	sub := h.hub.Subscribe("ws:"+c.GetString("request_id"), filtros, deb.Add)
	defer h.hub.Unsubscribe(sub)

	// Reader: only control frames are expected; any error closes the stream.
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case batch := <-salida:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(Mensaje{Eventos: batch}); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}
