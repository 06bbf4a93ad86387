package dto

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
	"github.com/jhoicas/valoracion-api/pkg/money"
)

// DetailsDTO datos descriptivos de la operación.
type DetailsDTO struct {
	OperationType   string `json:"operation_type" validate:"omitempty,oneof=exportacion importacion"`
	ClientID        string `json:"client_id" validate:"omitempty,uuid"`
	Exporter        string `json:"exporter" validate:"omitempty,max=200"`
	Importer        string `json:"importer" validate:"omitempty,max=200"`
	ItemDescription string `json:"item_description" validate:"omitempty,max=1000"`
	NCMCode         string `json:"ncm_code" validate:"omitempty,max=20"`
	Incoterm        string `json:"incoterm" validate:"omitempty,incoterm"`
	Currency        string `json:"currency" validate:"omitempty,len=3"`
	InvoiceNumber   string `json:"invoice_number" validate:"omitempty,max=50"`
	InvoiceDate     string `json:"invoice_date" validate:"omitempty,datetime=2006-01-02"`
}

// ToDomain convierte y normaliza.
func (d DetailsDTO) ToDomain() valuation.Details {
	return valuation.Details(d).Normalized()
}

// DetailsFromDomain convierte los datos de dominio a DTO.
func DetailsFromDomain(d valuation.Details) DetailsDTO {
	return DetailsDTO(d)
}

// AnswerInput respuesta enviada por el cliente. Amount admite número o texto es-AR ("1.234,56").
type AnswerInput struct {
	Status string        `json:"status" validate:"required"`
	Amount *money.Amount `json:"amount"`
}

// CreateValuationRequest alta de una valoración. Con FromDraft=true se parte del
// borrador en curso del usuario en lugar de un formulario vacío.
type CreateValuationRequest struct {
	Details     DetailsDTO `json:"details"`
	ReportStyle string     `json:"report_style" validate:"omitempty,oneof=tecnico comercial dictamen"`
	FromDraft   bool       `json:"from_draft"`
}

// UpdateDetailsRequest modificación de los datos descriptivos.
type UpdateDetailsRequest struct {
	Details     DetailsDTO `json:"details"`
	ReportStyle string     `json:"report_style" validate:"omitempty,oneof=tecnico comercial dictamen"`
}

// SetAnswerRequest respuesta a una pregunta regulatoria.
type SetAnswerRequest = AnswerInput

// SetBaseValueRequest valor declarado de la mercadería.
type SetBaseValueRequest struct {
	BaseItemValue money.Amount `json:"base_item_value"`
}

// SetOriginCertificateRequest presentación del certificado de origen (yes|no|unanswered).
type SetOriginCertificateRequest struct {
	Status string `json:"status" validate:"required"`
}

// CalculateRequest cálculo sin estado (el formulario recalcula en cada tecla).
type CalculateRequest struct {
	BaseItemValue     money.Amount           `json:"base_item_value"`
	Answers           map[string]AnswerInput `json:"answers"`
	OriginCertificate string                 `json:"origin_certificate"`
}

// FormattedResultDTO montos en formato es-AR para mostrar.
type FormattedResultDTO struct {
	BaseItemValue     string `json:"base_item_value"`
	TotalAdditions    string `json:"total_additions"`
	TotalDeductions   string `json:"total_deductions"`
	Preliminary       string `json:"preliminary"`
	CompliancePenalty string `json:"compliance_penalty"`
	FinalValue        string `json:"final_value"`
}

// ResultDTO desglose del cálculo.
type ResultDTO struct {
	BaseItemValue     decimal.Decimal    `json:"base_item_value"`
	TotalAdditions    decimal.Decimal    `json:"total_additions"`
	TotalDeductions   decimal.Decimal    `json:"total_deductions"`
	Preliminary       decimal.Decimal    `json:"preliminary"`
	CompliancePenalty decimal.Decimal    `json:"compliance_penalty"`
	FinalValue        decimal.Decimal    `json:"final_value"`
	Formatted         FormattedResultDTO `json:"formatted"`
}

// NewResultDTO arma el DTO con los montos exactos y su versión formateada.
func NewResultDTO(r valuation.Result) ResultDTO {
	return ResultDTO{
		BaseItemValue:     r.BaseItemValue,
		TotalAdditions:    r.TotalAdditions,
		TotalDeductions:   r.TotalDeductions,
		Preliminary:       r.Preliminary,
		CompliancePenalty: r.CompliancePenalty,
		FinalValue:        r.FinalValue,
		Formatted: FormattedResultDTO{
			BaseItemValue:     money.Format(r.BaseItemValue),
			TotalAdditions:    money.Format(r.TotalAdditions),
			TotalDeductions:   money.Format(r.TotalDeductions),
			Preliminary:       money.Format(r.Preliminary),
			CompliancePenalty: money.Format(r.CompliancePenalty),
			FinalValue:        money.Format(r.FinalValue),
		},
	}
}

// QuestionDTO pregunta regulatoria.
type QuestionDTO struct {
	ID             string `json:"id"`
	Ordinal        int    `json:"ordinal"`
	Category       string `json:"category"`
	RequiresAmount bool   `json:"requires_amount"`
	Title          string `json:"title"`
	Legal          string `json:"legal"`
}

// QuestionTableResponse tabla completa con su versión.
type QuestionTableResponse struct {
	Version   string        `json:"version"`
	Questions []QuestionDTO `json:"questions"`
}

// NewQuestionDTO convierte una pregunta de dominio.
func NewQuestionDTO(q valuation.RegulatoryQuestion) QuestionDTO {
	return QuestionDTO{
		ID:             q.ID,
		Ordinal:        q.Ordinal,
		Category:       string(q.Category),
		RequiresAmount: q.RequiresAmount,
		Title:          q.Title,
		Legal:          q.Legal,
	}
}

// AnswerLineDTO renglón del desglose por pregunta, en orden oficial.
type AnswerLineDTO struct {
	QuestionDTO
	Status      string           `json:"status"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Contributes decimal.Decimal  `json:"contributes"`
}

// NewAnswerLines arma el desglose de las 17 preguntas.
func NewAnswerLines(answers valuation.Answers) []AnswerLineDTO {
	lines := valuation.Breakdown(answers)
	out := make([]AnswerLineDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, AnswerLineDTO{
			QuestionDTO: NewQuestionDTO(l.Question),
			Status:      string(l.Answer.Status),
			Amount:      l.Answer.Amount,
			Contributes: l.Contributes,
		})
	}
	return out
}

// CalculateResponse resultado de un cálculo (sin estado o vista previa).
type CalculateResponse struct {
	Result  ResultDTO       `json:"result"`
	Lines   []AnswerLineDTO `json:"lines"`
	Missing []string        `json:"missing"`
}

// ValuationResponse valoración completa.
type ValuationResponse struct {
	ID                string          `json:"id"`
	OwnerID           string          `json:"owner_id"`
	Details           DetailsDTO      `json:"details"`
	ReportStyle       string          `json:"report_style"`
	Status            string          `json:"status"`
	BaseItemValue     decimal.Decimal `json:"base_item_value"`
	OriginCertificate string          `json:"origin_certificate"`
	Lines             []AnswerLineDTO `json:"lines"`
	Result            ResultDTO       `json:"result"`
	Missing           []string        `json:"missing"`
	FinalizedAt       *time.Time      `json:"finalized_at,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ValuationSummaryDTO fila del listado.
type ValuationSummaryDTO struct {
	ID             string          `json:"id"`
	Status         string          `json:"status"`
	OperationType  string          `json:"operation_type"`
	Exporter       string          `json:"exporter"`
	Importer       string          `json:"importer"`
	Incoterm       string          `json:"incoterm"`
	Currency       string          `json:"currency"`
	FinalValue     decimal.Decimal `json:"final_value"`
	FinalValueText string          `json:"final_value_text"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ValuationListRequest filtros del listado.
type ValuationListRequest struct {
	PageRequest
	Status string `query:"status" validate:"omitempty,oneof=draft finalized"`
}

// ValuationListResponse listado paginado.
type ValuationListResponse struct {
	Items []ValuationSummaryDTO `json:"items"`
	Page  PageResponse          `json:"page"`
}

// EventDTO entrada del historial.
type EventDTO struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	UserID    string     `json:"user_id"`
	Result    *ResultDTO `json:"result,omitempty"`
	Note      string     `json:"note,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ReopenRequest motivo opcional de la reapertura.
type ReopenRequest struct {
	Note string `json:"note" validate:"omitempty,max=500"`
}

// DraftRequest guarda el formulario en curso.
type DraftRequest struct {
	ValuationID       string                 `json:"valuation_id" validate:"omitempty,uuid"`
	Details           DetailsDTO             `json:"details"`
	BaseItemValue     money.Amount           `json:"base_item_value"`
	Answers           map[string]AnswerInput `json:"answers"`
	OriginCertificate string                 `json:"origin_certificate"`
}

// DraftResponse borrador en curso con su cálculo.
type DraftResponse struct {
	ValuationID string            `json:"valuation_id,omitempty"`
	Details     DetailsDTO        `json:"details"`
	Preview     CalculateResponse `json:"preview"`
	SavedAt     time.Time         `json:"saved_at"`
}

// RecordFromInputs arma un registro borrador a partir de la entrada del cliente.
// Ids desconocidos y estados inválidos se ignoran, como en cualquier otro origen.
func RecordFromInputs(base money.Amount, answers map[string]AnswerInput, certificate string) valuation.Record {
	rec := valuation.NewDraft()
	rec.BaseItemValue = base.Decimal
	if st, err := valuation.ParseAnswerStatus(certificate); err == nil {
		rec.OriginCertificate = st
	}
	for id, a := range answers {
		st, err := valuation.ParseAnswerStatus(a.Status)
		if err != nil {
			continue
		}
		_ = rec.SetAnswer(strings.TrimSpace(id), st, a.Amount.Ptr())
	}
	return rec
}
