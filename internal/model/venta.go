package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Venta is a confirmed sale. Numero is the human-readable ticket number
// embedded in ledger descriptions. Immutable except through cascading delete.
type Venta struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Numero    int64           `gorm:"uniqueIndex;not null"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Nota      *string
	UsuarioID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time

	Detalles []VentaDetalle `gorm:"foreignKey:VentaID;constraint:OnDelete:CASCADE"`
}

func (Venta) TableName() string { return "ventas" }

func (v *Venta) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}

// VentaDetalle is one sale line with the unit price and cost captured at
// confirmation time. Later catalog price changes never touch these columns.
// Both are nullable only for legacy rows written before snapshots existed.
type VentaDetalle struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey"`
	VentaID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	PromocionID    *uuid.UUID       `gorm:"type:uuid"`
	Cantidad       int              `gorm:"not null"`
	Subtotal       decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	PrecioUnitario *decimal.Decimal `gorm:"type:decimal(12,2)"`
	PrecioCosto    *decimal.Decimal `gorm:"type:decimal(12,2)"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (VentaDetalle) TableName() string { return "venta_detalles" }

func (d *VentaDetalle) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}
