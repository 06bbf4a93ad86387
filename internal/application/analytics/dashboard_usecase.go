// Package analytics contiene el caso de uso del dashboard de valoraciones.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/valoracion-api/internal/application/dto"
	"github.com/jhoicas/valoracion-api/internal/domain/repository"
)

const dashboardTopClients = 5 // clientes en el widget del dashboard

// DashboardUseCase genera el resumen de valoraciones del usuario y del mes en curso.
//
// Fuente de datos: AnalyticsRepository (consultas read-only sobre los totales
// congelados). Los borradores no suman montos; sólo cuentan.
type DashboardUseCase struct {
	analyticsRepo repository.AnalyticsRepository
	now           func() time.Time
}

// NewDashboardUseCase construye el caso de uso.
func NewDashboardUseCase(analyticsRepo repository.AnalyticsRepository) *DashboardUseCase {
	return &DashboardUseCase{analyticsRepo: analyticsRepo, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *DashboardUseCase) WithClock(now func() time.Time) *DashboardUseCase {
	uc.now = now
	return uc
}

// GetSummary construye el DashboardSummaryDTO del usuario.
//
// Cuatro llamadas en paralelo:
//  1. CountByStatus            → DraftCount + FinalizedCount
//  2. PeriodTotals(mes)        → Month
//  3. TopClients(mes, top 5)   → TopClients
//  4. IncotermBreakdown(mes)   → Incoterms
func (uc *DashboardUseCase) GetSummary(ctx context.Context, ownerID string) (*dto.DashboardSummaryDTO, error) {
	now := uc.now()

	// Mes en curso: día 1 a las 00:00 – hoy a las 23:59:59.999
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthEnd := todayStart.Add(24*time.Hour - time.Nanosecond)

	// ── Goroutines para paralelizar las 4 consultas DB ────────────────────────
	type countsResult struct {
		counts repository.StatusCounts
		err    error
	}
	type totalsResult struct {
		totals repository.PeriodTotals
		err    error
	}
	type clientsResult struct {
		clients []repository.ClientTotal
		err     error
	}
	type incotermsResult struct {
		incoterms []repository.IncotermCount
		err       error
	}

	countsCh := make(chan countsResult, 1)
	totalsCh := make(chan totalsResult, 1)
	clientsCh := make(chan clientsResult, 1)
	incotermsCh := make(chan incotermsResult, 1)

	go func() {
		c, err := uc.analyticsRepo.CountByStatus(ctx, ownerID)
		countsCh <- countsResult{c, err}
	}()
	go func() {
		t, err := uc.analyticsRepo.PeriodTotals(ctx, ownerID, monthStart, monthEnd)
		totalsCh <- totalsResult{t, err}
	}()
	go func() {
		c, err := uc.analyticsRepo.TopClients(ctx, ownerID, monthStart, monthEnd, dashboardTopClients)
		clientsCh <- clientsResult{c, err}
	}()
	go func() {
		i, err := uc.analyticsRepo.IncotermBreakdown(ctx, ownerID, monthStart, monthEnd)
		incotermsCh <- incotermsResult{i, err}
	}()

	counts := <-countsCh
	totals := <-totalsCh
	clients := <-clientsCh
	incoterms := <-incotermsCh

	if counts.err != nil {
		return nil, fmt.Errorf("dashboard: conteo por estado: %w", counts.err)
	}
	if totals.err != nil {
		return nil, fmt.Errorf("dashboard: totales del mes: %w", totals.err)
	}
	if clients.err != nil {
		return nil, fmt.Errorf("dashboard: top clientes: %w", clients.err)
	}
	if incoterms.err != nil {
		return nil, fmt.Errorf("dashboard: incoterms: %w", incoterms.err)
	}

	// ── Construir DTO ──────────────────────────────────────────────────────────
	t := totals.totals
	out := &dto.DashboardSummaryDTO{
		DraftCount:     counts.counts.Drafts,
		FinalizedCount: counts.counts.Finalized,
		Month: dto.MonthTotalsDTO{
			Count:                   t.Count,
			BaseItemValue:           t.BaseItemValue.Round(2),
			TotalAdditions:          t.TotalAdditions.Round(2),
			TotalDeductions:         t.TotalDeductions.Round(2),
			CompliancePenalty:       t.CompliancePenalty.Round(2),
			FinalValue:              t.FinalValue.Round(2),
			WithoutCertificateCount: t.WithoutCertificateCnt,
		},
		TopClients: make([]dto.TopClientDTO, 0, len(clients.clients)),
		Incoterms:  make([]dto.IncotermDTO, 0, len(incoterms.incoterms)),
		DateLabel:  monthLabel(now),
	}
	for _, c := range clients.clients {
		out.TopClients = append(out.TopClients, dto.TopClientDTO{
			ClientID:   c.ClientID,
			ClientName: c.ClientName,
			Count:      c.Count,
			FinalValue: c.FinalValue.Round(2),
		})
	}
	for _, i := range incoterms.incoterms {
		out.Incoterms = append(out.Incoterms, dto.IncotermDTO{
			Incoterm:   i.Incoterm,
			Count:      i.Count,
			FinalValue: i.FinalValue.Round(2),
		})
	}
	return out, nil
}

// monthLabel devuelve una etiqueta legible del mes, ej: "Marzo 2026".
func monthLabel(t time.Time) string {
	months := [...]string{
		"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
		"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
	}
	return fmt.Sprintf("%s %d", months[t.Month()-1], t.Year())
}
