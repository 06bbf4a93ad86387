package entity

import "time"

// Client es un cliente o contacto del profesional (importador, exportador).
type Client struct {
	ID          string
	OwnerID     string
	Name        string
	CUIT        string // 11 dígitos sin guiones
	ContactName string
	Email       string
	Phone       string
	Address     string
	Country     string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
