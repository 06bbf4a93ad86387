package dto

import "github.com/shopspring/decimal"

// DashboardSummaryDTO respuesta de GET /api/dashboard/summary.
// Contadores globales del usuario más los totales del mes en curso.
type DashboardSummaryDTO struct {
	DraftCount     int `json:"draft_count"`
	FinalizedCount int `json:"finalized_count"`

	// Totales de las valoraciones finalizadas en el mes en curso
	Month MonthTotalsDTO `json:"month"`

	// Top 5 clientes por valor final del mes
	TopClients []TopClientDTO `json:"top_clients"`

	Incoterms []IncotermDTO `json:"incoterms"`

	DateLabel string `json:"date_label"` // ej: "Marzo 2026"
}

// MonthTotalsDTO sumas de los resultados congelados.
type MonthTotalsDTO struct {
	Count                   int             `json:"count"`
	BaseItemValue           decimal.Decimal `json:"base_item_value"`
	TotalAdditions          decimal.Decimal `json:"total_additions"`
	TotalDeductions         decimal.Decimal `json:"total_deductions"`
	CompliancePenalty       decimal.Decimal `json:"compliance_penalty"`
	FinalValue              decimal.Decimal `json:"final_value"`
	WithoutCertificateCount int             `json:"without_certificate_count"`
}

// TopClientDTO cliente del ranking.
type TopClientDTO struct {
	ClientID   string          `json:"client_id"`
	ClientName string          `json:"client_name"`
	Count      int             `json:"count"`
	FinalValue decimal.Decimal `json:"final_value"`
}

// IncotermDTO cantidad por Incoterm.
type IncotermDTO struct {
	Incoterm   string          `json:"incoterm"`
	Count      int             `json:"count"`
	FinalValue decimal.Decimal `json:"final_value"`
}
