package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin       = "admin"
	RoleDespachante = "despachante" // despachante de aduana; firma dictámenes
	RoleAnalista    = "analista"
)

// Roles lista los roles asignables.
var Roles = []string{RoleAdmin, RoleDespachante, RoleAnalista}

// Estados de cuenta.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User representa un profesional que usa el sistema.
type User struct {
	ID            string
	Email         string
	PasswordHash  string // bcrypt hash, nunca plano en dominio después de persistir
	Name          string
	Role          string // admin, despachante, analista
	LicenseNumber string // matrícula profesional; se imprime en el dictamen
	Status        string // active, inactive
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsActive indica si la cuenta puede iniciar sesión.
func (u *User) IsActive() bool { return u.Status == UserStatusActive }
