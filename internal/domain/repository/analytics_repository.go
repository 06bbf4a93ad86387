package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StatusCounts cantidad de valoraciones por estado.
type StatusCounts struct {
	Drafts    int
	Finalized int
}

// PeriodTotals sumas de los resultados congelados de valoraciones finalizadas
// en un período.
type PeriodTotals struct {
	Count                 int
	BaseItemValue         decimal.Decimal
	TotalAdditions        decimal.Decimal
	TotalDeductions       decimal.Decimal
	CompliancePenalty     decimal.Decimal
	FinalValue            decimal.Decimal
	WithoutCertificateCnt int // valoraciones con certificado de origen "no"
}

// ClientTotal ranking de clientes por valor final.
type ClientTotal struct {
	ClientID   string
	ClientName string
	Count      int
	FinalValue decimal.Decimal
}

// IncotermCount cantidad de valoraciones finalizadas por Incoterm.
type IncotermCount struct {
	Incoterm   string
	Count      int
	FinalValue decimal.Decimal
}

// AnalyticsRepository define las consultas de lectura del dashboard.
// Las implementaciones son read-only (no modifican datos).
type AnalyticsRepository interface {
	CountByStatus(ctx context.Context, ownerID string) (StatusCounts, error)

	// PeriodTotals suma los totales congelados de las valoraciones finalizadas
	// entre start y end. COALESCE a cero si no hay filas.
	PeriodTotals(ctx context.Context, ownerID string, start, end time.Time) (PeriodTotals, error)

	// TopClients devuelve los `limit` clientes con mayor valor final acumulado.
	TopClients(ctx context.Context, ownerID string, start, end time.Time, limit int) ([]ClientTotal, error)

	IncotermBreakdown(ctx context.Context, ownerID string, start, end time.Time) ([]IncotermCount, error)
}
