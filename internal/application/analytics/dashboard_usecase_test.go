package analytics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/valoracion-api/internal/domain/repository"
)

type fakeAnalytics struct {
	start, end time.Time
	limit      int
	topErr     error
}

func (f *fakeAnalytics) CountByStatus(_ context.Context, _ string) (repository.StatusCounts, error) {
	return repository.StatusCounts{Drafts: 3, Finalized: 7}, nil
}

func (f *fakeAnalytics) PeriodTotals(_ context.Context, _ string, start, end time.Time) (repository.PeriodTotals, error) {
	f.start, f.end = start, end
	return repository.PeriodTotals{
		Count:                 2,
		BaseItemValue:         decimal.RequireFromString("11200"),
		TotalAdditions:        decimal.RequireFromString("300"),
		TotalDeductions:       decimal.RequireFromString("150"),
		CompliancePenalty:     decimal.RequireFromString("10.005"),
		FinalValue:            decimal.RequireFromString("11360.005"),
		WithoutCertificateCnt: 1,
	}, nil
}

func (f *fakeAnalytics) TopClients(_ context.Context, _ string, _, _ time.Time, limit int) ([]repository.ClientTotal, error) {
	f.limit = limit
	if f.topErr != nil {
		return nil, f.topErr
	}
	return []repository.ClientTotal{
		{ClientID: "c1", ClientName: "Acme SA", Count: 2, FinalValue: decimal.RequireFromString("11360.005")},
	}, nil
}

func (f *fakeAnalytics) IncotermBreakdown(_ context.Context, _ string, _, _ time.Time) ([]repository.IncotermCount, error) {
	return []repository.IncotermCount{
		{Incoterm: "FOB", Count: 1, FinalValue: decimal.RequireFromString("10350")},
		{Incoterm: "CIF", Count: 1, FinalValue: decimal.RequireFromString("1010.005")},
	}, nil
}

func TestGetSummary(t *testing.T) {
	repo := &fakeAnalytics{}
	now := time.Date(2026, 3, 18, 14, 30, 0, 0, time.UTC)
	uc := NewDashboardUseCase(repo).WithClock(func() time.Time { return now })

	out, err := uc.GetSummary(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, 3, out.DraftCount)
	assert.Equal(t, 7, out.FinalizedCount)
	assert.Equal(t, "Marzo 2026", out.DateLabel)
	assert.Equal(t, 1, out.Month.WithoutCertificateCount)
	assert.Equal(t, "11360.01", out.Month.FinalValue.StringFixed(2))
	require.Len(t, out.TopClients, 1)
	assert.Equal(t, "Acme SA", out.TopClients[0].ClientName)
	assert.Len(t, out.Incoterms, 2)

	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), repo.start)
	assert.Equal(t, 18, repo.end.Day())
	assert.Equal(t, 23, repo.end.Hour())
	assert.Equal(t, dashboardTopClients, repo.limit)
}

func TestGetSummary_PropagaErrores(t *testing.T) {
	repo := &fakeAnalytics{topErr: errors.New("timeout")}
	_, err := NewDashboardUseCase(repo).GetSummary(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "top clientes")
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "Enero 2026", monthLabel(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Diciembre 2025", monthLabel(time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)))
}
