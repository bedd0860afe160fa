package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Promocion is a bundle of products sold as a single priced unit.
type Promocion struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Nombre            string          `gorm:"not null"`
	PrecioPromocional decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Activo            bool            `gorm:"not null;default:true"`
	FechaInicio       *time.Time
	FechaFin          *time.Time
	// LimiteUsos caps how many bundles may ever be sold; nil = unlimited.
	LimiteUsos *int
	Usos       int `gorm:"not null;default:0"`
	CreatedAt  time.Time

	Productos []PromocionProducto `gorm:"foreignKey:PromocionID;constraint:OnDelete:CASCADE"`
}

func (Promocion) TableName() string { return "promociones" }

func (p *Promocion) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// Vigente reports whether the promotion is active and inside its validity window at now.
func (p *Promocion) Vigente(now time.Time) bool {
	if !p.Activo {
		return false
	}
	if p.FechaInicio != nil && now.Before(*p.FechaInicio) {
		return false
	}
	if p.FechaFin != nil && now.After(*p.FechaFin) {
		return false
	}
	return true
}

// UsosRestantes returns the remaining usage allowance and whether a limit applies.
func (p *Promocion) UsosRestantes() (int, bool) {
	if p.LimiteUsos == nil {
		return 0, false
	}
	restantes := *p.LimiteUsos - p.Usos
	if restantes < 0 {
		restantes = 0
	}
	return restantes, true
}

// PromocionProducto is one component of a bundle: Cantidad units of a product per bundle.
type PromocionProducto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	PromocionID uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductoID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Cantidad    int       `gorm:"not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

func (PromocionProducto) TableName() string { return "promocion_productos" }

func (pp *PromocionProducto) BeforeCreate(*gorm.DB) error {
	ensureID(&pp.ID)
	return nil
}
