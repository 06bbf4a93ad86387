package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/valoracion-api/internal/domain/repository"
)

var _ repository.AnalyticsRepository = (*AnalyticsRepo)(nil)

// AnalyticsRepo consultas de sólo lectura para el dashboard. Trabaja sobre las
// columnas NUMERIC que replican el total congelado de cada valoración finalizada.
type AnalyticsRepo struct {
	db Querier
}

// NewAnalyticsRepository construye el adaptador de analítica.
func NewAnalyticsRepository(db Querier) *AnalyticsRepo {
	return &AnalyticsRepo{db: db}
}

// CountByStatus cuenta borradores y finalizadas del usuario.
func (r *AnalyticsRepo) CountByStatus(ctx context.Context, ownerID string) (repository.StatusCounts, error) {
	const query = `
	SELECT
	    COUNT(*) FILTER (WHERE status = 'draft')     AS drafts,
	    COUNT(*) FILTER (WHERE status = 'finalized') AS finalized
	FROM valuations
	WHERE owner_id = $1`

	var out repository.StatusCounts
	if err := r.db.QueryRow(ctx, query, ownerID).Scan(&out.Drafts, &out.Finalized); err != nil {
		return out, fmt.Errorf("analytics.CountByStatus: %w", err)
	}
	return out, nil
}

// PeriodTotals suma los totales congelados de las finalizadas en [start, end].
func (r *AnalyticsRepo) PeriodTotals(ctx context.Context, ownerID string, start, end time.Time) (repository.PeriodTotals, error) {
	const query = `
	SELECT
	    COUNT(*)                                                AS cnt,
	    COALESCE(SUM(base_item_value),    0)                    AS base_item_value,
	    COALESCE(SUM(total_additions),    0)                    AS total_additions,
	    COALESCE(SUM(total_deductions),   0)                    AS total_deductions,
	    COALESCE(SUM(compliance_penalty), 0)                    AS compliance_penalty,
	    COALESCE(SUM(final_value),        0)                    AS final_value,
	    COUNT(*) FILTER (WHERE origin_certificate = 'no')       AS without_certificate
	FROM valuations
	WHERE owner_id = $1
	  AND status = 'finalized'
	  AND finalized_at BETWEEN $2 AND $3`

	var t repository.PeriodTotals
	err := r.db.QueryRow(ctx, query, ownerID, start, end).Scan(
		&t.Count,
		&t.BaseItemValue,
		&t.TotalAdditions,
		&t.TotalDeductions,
		&t.CompliancePenalty,
		&t.FinalValue,
		&t.WithoutCertificateCnt,
	)
	if err != nil {
		return t, fmt.Errorf("analytics.PeriodTotals: %w", err)
	}
	return t, nil
}

// TopClients ranking de clientes por valor final acumulado en el período.
// Las valoraciones sin cliente no participan.
func (r *AnalyticsRepo) TopClients(ctx context.Context, ownerID string, start, end time.Time, limit int) ([]repository.ClientTotal, error) {
	const query = `
	SELECT
	    c.id::TEXT          AS client_id,
	    c.name              AS client_name,
	    COUNT(v.id)         AS cnt,
	    SUM(v.final_value)  AS final_value
	FROM valuations v
	JOIN clients    c ON c.id = v.client_id
	WHERE v.owner_id = $1
	  AND v.status = 'finalized'
	  AND v.finalized_at BETWEEN $2 AND $3
	GROUP BY c.id, c.name
	ORDER BY final_value DESC, c.name
	LIMIT $4`

	rows, err := r.db.Query(ctx, query, ownerID, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("analytics.TopClients: %w", err)
	}
	defer rows.Close()

	var out []repository.ClientTotal
	for rows.Next() {
		var row repository.ClientTotal
		if err := rows.Scan(&row.ClientID, &row.ClientName, &row.Count, &row.FinalValue); err != nil {
			return nil, fmt.Errorf("analytics.TopClients scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// IncotermBreakdown cantidad y valor por Incoterm en el período.
func (r *AnalyticsRepo) IncotermBreakdown(ctx context.Context, ownerID string, start, end time.Time) ([]repository.IncotermCount, error) {
	const query = `
	SELECT
	    COALESCE(NULLIF(incoterm, ''), 'N/D')  AS incoterm,
	    COUNT(*)                               AS cnt,
	    COALESCE(SUM(final_value), 0)          AS final_value
	FROM valuations
	WHERE owner_id = $1
	  AND status = 'finalized'
	  AND finalized_at BETWEEN $2 AND $3
	GROUP BY 1
	ORDER BY cnt DESC, 1`

	rows, err := r.db.Query(ctx, query, ownerID, start, end)
	if err != nil {
		return nil, fmt.Errorf("analytics.IncotermBreakdown: %w", err)
	}
	defer rows.Close()

	var out []repository.IncotermCount
	for rows.Next() {
		var row repository.IncotermCount
		if err := rows.Scan(&row.Incoterm, &row.Count, &row.FinalValue); err != nil {
			return nil, fmt.Errorf("analytics.IncotermBreakdown scan: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
