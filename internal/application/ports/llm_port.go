package ports

import (
	"context"

	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
)

// ChatTurn es un turno previo de la conversación con el asistente.
type ChatTurn struct {
	Role string // user | model
	Text string
}

// LLMService define el puerto de salida hacia el modelo de lenguaje.
// Cualquier adaptador (Gemini, mock) debe implementar esta interfaz; la
// aplicación sólo conoce este contrato.
type LLMService interface {
	// ExtractValuation lee un documento comercial (factura, packing list) y
	// devuelve los datos de la operación y las respuestas que pudo inferir.
	// El contexto debe llevar un timeout.
	ExtractValuation(ctx context.Context, document []byte, mimeType, hint string) (*valuation.Extraction, error)

	// Chat responde una consulta libre sobre valoración aduanera.
	Chat(ctx context.Context, history []ChatTurn, question string) (string, error)
}
