package dto

// ExtractRequest parámetros de la extracción (el documento llega como multipart).
type ExtractRequest struct {
	Hint      string `form:"hint" validate:"omitempty,max=2000"` // indicaciones adicionales para el modelo
	SaveDraft bool   `form:"save_draft"`
}

// ExtractResponse datos leídos del documento, ya normalizados, con su cálculo.
type ExtractResponse struct {
	Details    DetailsDTO        `json:"details"`
	Preview    CalculateResponse `json:"preview"`
	Confidence float64           `json:"confidence"`
	Notes      string            `json:"notes,omitempty"`
	DraftSaved bool              `json:"draft_saved"`
}

// ChatMessage turno de la conversación.
type ChatMessage struct {
	Role string `json:"role" validate:"required,oneof=user model"`
	Text string `json:"text" validate:"required,max=8000"`
}

// ChatRequest pregunta al asistente con el historial previo.
type ChatRequest struct {
	History  []ChatMessage `json:"history" validate:"max=40,dive"`
	Question string        `json:"question" validate:"required,max=4000"`
}

// ChatResponse respuesta del asistente.
type ChatResponse struct {
	Answer string `json:"answer"`
}
