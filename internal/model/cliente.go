package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Estados de una venta fiada.
const (
	FiadoPendiente = "pendiente"
	FiadoPagada    = "pagada"
	FiadoVencida   = "vencida"
)

// Cliente is a customer that may buy on credit. Outstanding debt is derived
// from its credit sales on every read, never stored.
type Cliente struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre        string    `gorm:"not null"`
	Telefono      *string
	Email         *string
	Direccion     *string
	Notas         *string
	FechaRegistro time.Time `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Cliente) TableName() string { return "clientes" }

func (c *Cliente) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	if c.FechaRegistro.IsZero() {
		c.FechaRegistro = time.Now()
	}
	return nil
}

// VentaFiada links a sale to the customer who owes it.
// Estado: "pendiente" | "pagada" | "vencida". Never transitions back to pendiente.
type VentaFiada struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	VentaID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	ClienteID        uuid.UUID `gorm:"type:uuid;index;not null"`
	FechaVencimiento *time.Time
	Estado           string `gorm:"type:varchar(20);not null;default:'pendiente'"`
	Nota             *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Venta   *Venta   `gorm:"foreignKey:VentaID"`
	Cliente *Cliente `gorm:"foreignKey:ClienteID"`
}

func (VentaFiada) TableName() string { return "ventas_fiadas" }

func (f *VentaFiada) BeforeCreate(*gorm.DB) error {
	ensureID(&f.ID)
	return nil
}

// Adeudada reports whether the credit sale still counts as outstanding debt.
func (f *VentaFiada) Adeudada() bool {
	return f.Estado == FiadoPendiente || f.Estado == FiadoVencida
}

// PagoFiado is an append-only payment against a credit sale. VentaFiadaID is
// cleared (not deleted) when its credit sale disappears, keeping the audit trail.
type PagoFiado struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	VentaFiadaID *uuid.UUID      `gorm:"type:uuid;index"`
	ClienteID    *uuid.UUID      `gorm:"type:uuid;index"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago   *string         `gorm:"type:varchar(20)"`
	Nota         *string
	CreatedAt    time.Time
}

func (PagoFiado) TableName() string { return "pagos_fiado" }

func (p *PagoFiado) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
