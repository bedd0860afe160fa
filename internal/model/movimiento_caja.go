package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tipos de movimiento de caja.
const (
	MovIngreso    = "ingreso"
	MovEgreso     = "egreso"
	MovVentaFiada = "venta_fiada"
	MovPagoFiado  = "pago_fiado"
)

// MovimientoCaja is an entry in the append-only cash ledger. Monto is always
// positive; Tipo decides its sign in the available-cash formula.
// VentaID and VentaFiadaID are typed links used by the cascading delete;
// Descripcion is informational only.
type MovimientoCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Tipo         string          `gorm:"type:varchar(20);not null;index"`
	Descripcion  string          `gorm:"not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Categoria    *string
	Nota         *string
	MetodoPago   *string    `gorm:"type:varchar(20)"`
	UsuarioID    *uuid.UUID `gorm:"type:uuid"`
	ClienteID    *uuid.UUID `gorm:"type:uuid;index"`
	VentaID      *uuid.UUID `gorm:"type:uuid;index"`
	VentaFiadaID *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt    time.Time  `gorm:"index"`
}

func (MovimientoCaja) TableName() string { return "movimientos_caja" }

func (m *MovimientoCaja) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// TipoValido reports whether t is one of the four ledger kinds.
func TipoValido(t string) bool {
	switch t {
	case MovIngreso, MovEgreso, MovVentaFiada, MovPagoFiado:
		return true
	}
	return false
}
