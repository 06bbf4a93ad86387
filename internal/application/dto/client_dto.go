package dto

import "time"

// ClientRequest alta o modificación de un cliente. CUIT acepta guiones.
type ClientRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	CUIT        string `json:"cuit" validate:"omitempty,cuit"`
	ContactName string `json:"contact_name" validate:"omitempty,max=200"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"omitempty,max=50"`
	Address     string `json:"address" validate:"omitempty,max=300"`
	Country     string `json:"country" validate:"omitempty,max=100"`
	Notes       string `json:"notes" validate:"omitempty,max=2000"`
}

// ClientResponse salida de un cliente.
type ClientResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CUIT          string    `json:"cuit,omitempty"`
	CUITFormatted string    `json:"cuit_formatted,omitempty"` // XX-XXXXXXXX-X
	ContactName   string    `json:"contact_name,omitempty"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Address       string    `json:"address,omitempty"`
	Country       string    `json:"country,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ClientImportResult resumen de una importación masiva.
type ClientImportResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"` // CUIT ya existente
	Errors  []string `json:"errors,omitempty"`
}
