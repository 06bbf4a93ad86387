package xmldoc_test

import (
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/valoracion-api/internal/application/report"
	"github.com/jhoicas/valoracion-api/internal/domain/entity"
	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
	"github.com/jhoicas/valoracion-api/internal/infrastructure/xmldoc"
	"github.com/jhoicas/valoracion-api/pkg/money"
)

func sampleData(t *testing.T, base string) *report.Data {
	t.Helper()
	rec := valuation.NewDraft()
	for _, q := range valuation.Questions() {
		require.NoError(t, rec.SetAnswer(q.ID, valuation.StatusNo, nil))
	}
	require.NoError(t, rec.SetBaseValue(money.Parse(base)))
	add := money.Parse("300,00")
	require.NoError(t, rec.SetAnswer("q12", valuation.StatusYes, &add))
	ded := money.Parse("150,00")
	require.NoError(t, rec.SetAnswer("q17", valuation.StatusYes, &ded))
	require.NoError(t, rec.SetOriginCertificate(valuation.StatusYes))
	res, err := rec.Finalize(time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	v := &entity.Valuation{
		ID:      "7b0c5d8e-2f1a-4c3b-9e6d-0a1b2c3d4e5f",
		OwnerID: "u1",
		Details: valuation.Details{
			OperationType: "importacion", Exporter: "Shenzhen Tools Co.", Importer: "Ferretería del Sur SA",
			ItemDescription: "Taladros percutores", NCMCode: "8467.21.00", Incoterm: "FOB", Currency: "USD",
			InvoiceNumber: "INV-889", InvoiceDate: "2026-02-20",
		},
		Record: rec,
	}
	return &report.Data{
		Valuation:    v,
		Professional: &entity.User{Name: "Ana Gómez", LicenseNumber: "DA-1234"},
		Client:       &entity.Client{Name: "Ferretería del Sur SA", CUIT: "30712345671"},
		Result:       res,
		Lines:        valuation.Breakdown(rec.Answers),
		GeneratedAt:  time.Now(),
	}
}

func TestBuild_DigestDeterminista(t *testing.T) {
	b := xmldoc.NewBuilder()

	first, err := b.Build(sampleData(t, "10200,00"))
	require.NoError(t, err)
	second, err := b.Build(sampleData(t, "10200,00"))
	require.NoError(t, err)

	assert.Len(t, first.Digest, 64)
	assert.Equal(t, first.Digest, second.Digest, "GeneratedAt no debe influir en el digest")

	other, err := b.Build(sampleData(t, "10200,01"))
	require.NoError(t, err)
	assert.NotEqual(t, first.Digest, other.Digest)
}

func TestBuild_DigestCoincideConCanonico(t *testing.T) {
	decl, err := xmldoc.NewBuilder().Build(sampleData(t, "10200,00"))
	require.NoError(t, err)

	d, err := xmldoc.Digest(decl.Canonical)
	require.NoError(t, err)
	assert.Equal(t, decl.Digest, d, "la forma canónica es un punto fijo de C14N")
}

func TestBuild_Contenido(t *testing.T) {
	decl, err := xmldoc.NewBuilder().Build(sampleData(t, "10200,00"))
	require.NoError(t, err)

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(decl.XML))
	root := doc.SelectElement("DeclaracionValor")
	require.NotNil(t, root)

	assert.Equal(t, "10350.00", root.FindElement("Totales/ValorFinal").Text())
	assert.Equal(t, "0.00", root.FindElement("Totales/PenalidadCertificado").Text())
	assert.Equal(t, "30-71234567-1", root.FindElement("Partes/Cliente").SelectAttrValue("cuit", ""))
	assert.Equal(t, "DA-1234", root.FindElement("Profesional/Matricula").Text())

	preguntas := root.FindElements("Ajustes/Pregunta")
	require.Len(t, preguntas, 17)
	assert.Equal(t, "q14", preguntas[12].SelectAttrValue("id", ""))
	assert.Equal(t, "q13", preguntas[13].SelectAttrValue("id", ""))
}

func TestBuild_SinProfesionalFalla(t *testing.T) {
	data := sampleData(t, "1")
	data.Professional = nil
	_, err := xmldoc.NewBuilder().Build(data)
	assert.Error(t, err)
}
