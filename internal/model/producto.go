package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Producto is a catalog item. Stock is a plain counter decremented on sale
// confirmation and never replenished automatically.
type Producto struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Nombre      string          `gorm:"index;not null"`
	PrecioVenta decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// PrecioCosto is nil when the cost is unknown; profit is not computable then.
	PrecioCosto *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Stock       int              `gorm:"not null;default:0"`
	Descripcion *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Producto) TableName() string { return "productos" }

func (p *Producto) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// CostoOCero returns the unit cost, or zero when it is unknown.
func (p *Producto) CostoOCero() decimal.Decimal {
	if p.PrecioCosto == nil {
		return decimal.Zero
	}
	return *p.PrecioCosto
}
