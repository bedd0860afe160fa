package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles de usuario.
const (
	RolAdministrador = "administrador"
	RolVendedor      = "vendedor"
)

// Usuario stores system users with role-based access.
// Rol: "vendedor" | "administrador"
type Usuario struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Nombre       string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Rol          string `gorm:"type:varchar(20);not null"`
	Activo       bool   `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Usuario) TableName() string { return "usuarios" }

func (u *Usuario) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
