package entity

import (
	"time"

	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
)

// Estilos de reporte PDF.
const (
	ReportTecnico   = "tecnico"
	ReportComercial = "comercial"
	ReportDictamen  = "dictamen"
)

// ReportStyles lista los estilos válidos.
var ReportStyles = []string{ReportTecnico, ReportComercial, ReportDictamen}

// Valuation es una valoración persistida: datos de la operación más el
// registro de respuestas que consume el calculador.
type Valuation struct {
	ID          string
	OwnerID     string
	Details     valuation.Details
	Record      valuation.Record
	ReportStyle string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOwnedBy indica si la valoración pertenece al usuario.
func (v *Valuation) IsOwnedBy(userID string) bool { return v.OwnerID == userID }

// Tipos de evento del historial.
const (
	EventCreated   = "created"
	EventUpdated   = "updated"
	EventFinalized = "finalized"
	EventReopened  = "reopened"
)

// ValuationEvent es una entrada del historial de una valoración.
// Result sólo se informa en eventos de finalización.
type ValuationEvent struct {
	ID          string
	ValuationID string
	UserID      string
	Type        string
	Result      *valuation.Result
	Note        string
	CreatedAt   time.Time
}
