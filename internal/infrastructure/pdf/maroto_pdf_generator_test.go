package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/valoracion-api/internal/application/report"
	"github.com/jhoicas/valoracion-api/internal/domain/entity"
	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
	"github.com/jhoicas/valoracion-api/pkg/money"
)

func sampleData(t *testing.T, certificate valuation.AnswerStatus) *report.Data {
	t.Helper()
	rec := valuation.NewDraft()
	for _, q := range valuation.Questions() {
		require.NoError(t, rec.SetAnswer(q.ID, valuation.StatusNo, nil))
	}
	require.NoError(t, rec.SetBaseValue(money.Parse("10.200,00")))
	add := money.Parse("300,00")
	ded := money.Parse("150,00")
	require.NoError(t, rec.SetAnswer("q12", valuation.StatusYes, &add))
	require.NoError(t, rec.SetAnswer("q17", valuation.StatusYes, &ded))
	require.NoError(t, rec.SetOriginCertificate(certificate))
	res, err := rec.Finalize(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	return &report.Data{
		Valuation: &entity.Valuation{
			ID:      "6f1c2a4e-9b7d-4c3a-8e21-0d5f6a7b8c9d",
			OwnerID: "u1",
			Details: valuation.Details{
				OperationType:   "importacion",
				Exporter:        "Shenzhen Tools Co.",
				Importer:        "Ferretería del Sur SA",
				ItemDescription: "Taladros percutores 750 W",
				NCMCode:         "8467.21.00",
				Incoterm:        "FOB",
				Currency:        "USD",
				InvoiceNumber:   "INV-2026-118",
				InvoiceDate:     "2026-02-20",
			},
			Record:      rec,
			ReportStyle: entity.ReportTecnico,
		},
		Professional: &entity.User{ID: "u1", Name: "Ana Gómez", LicenseNumber: "DA-1234"},
		Client:       &entity.Client{ID: "c1", Name: "Ferretería del Sur SA", CUIT: "30712345671"},
		Result:       res,
		Lines:        valuation.Breakdown(rec.Answers),
		Digest:       "9f2b5c0e7a1d4b8c3e6f9a2d5c8b1e4f7a0d3c6b9e2f5a8d1c4b7e0a3d6c9f2b",
		GeneratedAt:  time.Date(2026, 3, 11, 9, 30, 0, 0, time.UTC),
	}
}

func TestGenerate_TodosLosEstilos(t *testing.T) {
	g := NewMarotoPDFGenerator()
	for _, style := range entity.ReportStyles {
		t.Run(style, func(t *testing.T) {
			out, err := g.Generate(context.Background(), style, sampleData(t, valuation.StatusYes))
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(out, []byte("%PDF")), "no es un PDF")
		})
	}
}

func TestGenerate_DictamenSinCertificado(t *testing.T) {
	out, err := NewMarotoPDFGenerator().Generate(context.Background(), entity.ReportDictamen, sampleData(t, valuation.StatusNo))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerate_EstiloDesconocido(t *testing.T) {
	_, err := NewMarotoPDFGenerator().Generate(context.Background(), "borrador", sampleData(t, valuation.StatusYes))
	assert.Error(t, err)
}

func TestGenerate_SinProfesional(t *testing.T) {
	data := sampleData(t, valuation.StatusYes)
	data.Professional = nil
	_, err := NewMarotoPDFGenerator().Generate(context.Background(), entity.ReportTecnico, data)
	assert.Error(t, err)
}

func TestAmountText(t *testing.T) {
	assert.Equal(t, "USD 10.350,00", amountText("USD", money.Parse("10350")))
	assert.Equal(t, "1,50", amountText("", money.Parse("1,5")))
}
