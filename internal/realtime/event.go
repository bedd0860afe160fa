// Package realtime fans out "something changed" notifications. Events carry
// no row data; subscribers treat them as invalidation signals and refetch.
package realtime

import (
	"context"
	"time"
)

// Tipo is the kind of row change.
type Tipo string

const (
	Insert Tipo = "INSERT"
	Update Tipo = "UPDATE"
	Delete Tipo = "DELETE"
)

// Tables that produce change events.
const (
	TablaProductos    = "productos"
	TablaPromociones  = "promociones"
	TablaVentas       = "ventas"
	TablaClientes     = "clientes"
	TablaVentasFiadas = "ventas_fiadas"
	TablaPagosFiado   = "pagos_fiado"
	TablaMovimientos  = "movimientos_caja"
)

// Tablas lists every table a client may subscribe to.
var Tablas = []string{
	TablaProductos, TablaPromociones, TablaVentas, TablaClientes,
	TablaVentasFiadas, TablaPagosFiado, TablaMovimientos,
}

// Event announces a committed change to one row (ID) or a table (empty ID).
type Event struct {
	Tabla  string    `json:"tabla"`
	Tipo   Tipo      `json:"tipo"`
	ID     string    `json:"id,omitempty"`
	At     time.Time `json:"at"`
	Origen string    `json:"origen,omitempty"`
}

// NewEvent stamps an event with the current time.
func NewEvent(tabla string, tipo Tipo, id string) Event {
	return Event{Tabla: tabla, Tipo: tipo, ID: id, At: time.Now()}
}

// Filtro selects events of one table, optionally restricted to some kinds.
type Filtro struct {
	Tabla string
	Tipos []Tipo
}

// Match reports whether e passes the filter. An empty Tipos matches all kinds.
func (f Filtro) Match(e Event) bool {
	if f.Tabla != e.Tabla {
		return false
	}
	if len(f.Tipos) == 0 {
		return true
	}
	for _, t := range f.Tipos {
		if t == e.Tipo {
			return true
		}
	}
	return false
}

// Publisher is what services depend on to announce committed changes.
type Publisher interface {
	Publish(ctx context.Context, events ...Event)
}

// Nop discards events. Used when no change feed is wired.
type Nop struct{}

func (Nop) Publish(context.Context, ...Event) {}
