package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type colector struct {
	mu     sync.Mutex
	events []Event
}

func (c *colector) add(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *colector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestFiltro_Match(t *testing.T) {
	e := NewEvent(TablaVentas, Insert, "1")
	assert.True(t, Filtro{Tabla: TablaVentas}.Match(e))
	assert.True(t, Filtro{Tabla: TablaVentas, Tipos: []Tipo{Update, Insert}}.Match(e))
	assert.False(t, Filtro{Tabla: TablaVentas, Tipos: []Tipo{Delete}}.Match(e))
	assert.False(t, Filtro{Tabla: TablaProductos}.Match(e))
}

func TestHub_DeliversToMatchingSubscribers(t *testing.T) {
	h := NewHub()
	var todos, ventas colector
	h.Subscribe("todos", nil, todos.add)
	sub := h.Subscribe("ventas", []Filtro{{Tabla: TablaVentas}}, ventas.add)
	assert.Equal(t, 2, h.Len())

	h.Publish(context.Background(),
		NewEvent(TablaVentas, Insert, "v1"),
		NewEvent(TablaProductos, Update, "p1"),
	)
	assert.Equal(t, 2, todos.len())
	assert.Equal(t, 1, ventas.len())

	h.Unsubscribe(sub)
	h.Unsubscribe(sub)
	h.Unsubscribe(nil)
	h.Publish(context.Background(), NewEvent(TablaVentas, Delete, "v1"))
	assert.Equal(t, 1, ventas.len(), "no delivery after unsubscribe")
	assert.Equal(t, 1, h.Len())
}

func TestDebouncer_CoalescesPerTable(t *testing.T) {
	flushed := make(chan []Event, 4)
	d := NewDebouncer(30*time.Millisecond, func(b []Event) { flushed <- b })
	defer d.Stop()

	d.Add(NewEvent(TablaVentas, Insert, "1"))
	d.Add(NewEvent(TablaProductos, Update, "p"))
	d.Add(NewEvent(TablaVentas, Insert, "2"))

	select {
	case batch := <-flushed:
		require.Len(t, batch, 2)
		assert.Equal(t, TablaVentas, batch[0].Tabla)
		assert.Equal(t, "2", batch[0].ID, "latest event per table wins")
		assert.Equal(t, TablaProductos, batch[1].Tabla)
	case <-time.After(time.Second):
		t.Fatal("no flush within window")
	}

	d.Add(NewEvent(TablaClientes, Insert, "c"))
	select {
	case batch := <-flushed:
		require.Len(t, batch, 1)
	case <-time.After(time.Second):
		t.Fatal("second burst not flushed")
	}
}

func TestDebouncer_StopDiscardsPending(t *testing.T) {
	var c colector
	d := NewDebouncer(20*time.Millisecond, func(b []Event) {
		for _, e := range b {
			c.add(e)
		}
	})
	d.Add(NewEvent(TablaVentas, Insert, "1"))
	d.Stop()
	d.Add(NewEvent(TablaVentas, Insert, "2"))
	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, c.len())
}

func TestDebouncer_ZeroWindowIsImmediate(t *testing.T) {
	var c colector
	d := NewDebouncer(0, func(b []Event) {
		for _, e := range b {
			c.add(e)
		}
	})
	d.Add(NewEvent(TablaVentas, Insert, "1"))
	assert.Equal(t, 1, c.len())
}

func TestParseFiltros(t *testing.T) {
	f, err := ParseFiltros("")
	require.NoError(t, err)
	assert.Nil(t, f)

	f, err = ParseFiltros(" ventas , productos ,")
	require.NoError(t, err)
	require.Len(t, f, 2)
	assert.Equal(t, TablaProductos, f[1].Tabla)

	_, err = ParseFiltros("ventas,usuarios")
	assert.Error(t, err)
}

func TestWSHandler_StreamsFilteredBatches(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := NewHub()
	r := gin.New()
	r.GET("/cambios", NewWSHandler(hub, 10*time.Millisecond).Stream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/cambios?tablas=ventas"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Len() == 1 }, time.Second, 5*time.Millisecond)
	hub.Publish(context.Background(),
		NewEvent(TablaProductos, Update, "p"),
		NewEvent(TablaVentas, Insert, "v"),
	)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Mensaje
	require.NoError(t, conn.ReadJSON(&msg))
	require.Len(t, msg.Eventos, 1)
	assert.Equal(t, TablaVentas, msg.Eventos[0].Tabla)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestWSHandler_RejectsUnknownTable(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/cambios", NewWSHandler(NewHub(), 0).Stream)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cambios?tablas=nada", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRedisBridge_WithoutRedisDeliversLocally(t *testing.T) {
	hub := NewHub()
	var c colector
	hub.Subscribe("x", nil, c.add)
	b := NewRedisBridge(nil, hub)
	b.Publish(context.Background(), NewEvent(TablaVentas, Insert, "1"))
	assert.Equal(t, 1, c.len())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, b.Run(ctx))
}
