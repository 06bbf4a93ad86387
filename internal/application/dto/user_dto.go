package dto

import "time"

// RegisterRequest entrada para registro público. El rol no se elige: toda
// cuenta nueva es analista hasta que un admin la promueva.
type RegisterRequest struct {
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	Name          string `json:"name" validate:"required,min=1,max=200"`
	LicenseNumber string `json:"license_number" validate:"omitempty,max=50"`
}

// AssignRoleRequest entrada del cambio de rol (sólo admin).
type AssignRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin despachante analista"`
}

// UserResponse salida de un usuario (sin password).
type UserResponse struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	Role          string    `json:"role"`
	LicenseNumber string    `json:"license_number,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// LoginRequest entrada para login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse salida con token JWT.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
