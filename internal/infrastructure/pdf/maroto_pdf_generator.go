// Package pdf implementa los reportes PDF de una valoración finalizada con Maroto v2.
//
// Estilos:
//
//	tecnico    uso interno: las 17 preguntas con respuesta, monto y base legal
//	comercial  para el cliente: partes, mercadería y resumen del valor
//	dictamen   dictamen profesional: texto, firma y QR con el digest de la declaración
//
// Layout común de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título del estilo       │  N° Valoración + Fecha    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  OPERACIÓN: Tipo / Incoterm / Moneda / Factura               │
//	│  PARTES: Exportador / Importador / Cliente                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CUERPO según estilo                                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Base / Adiciones / Deducciones / Penalidad / FINAL │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/valoracion-api/internal/application/report"
	"github.com/jhoicas/valoracion-api/internal/domain/entity"
	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
	"github.com/jhoicas/valoracion-api/pkg/afip"
	"github.com/jhoicas/valoracion-api/pkg/money"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 56, Blue: 101}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
		colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var titles = map[string]string{
	entity.ReportTecnico:   "INFORME TÉCNICO DE VALORACIÓN",
	entity.ReportComercial: "RESUMEN DE VALOR EN ADUANA",
	entity.ReportDictamen:  "DICTAMEN DE VALORACIÓN ADUANERA",
}

// ── Generator ─────────────────────────────────────────────────────────────────

var _ report.PDFGenerator = (*MarotoPDFGenerator)(nil)

// MarotoPDFGenerator implementa report.PDFGenerator usando Maroto v2.
type MarotoPDFGenerator struct{}

// NewMarotoPDFGenerator construye el generador.
func NewMarotoPDFGenerator() *MarotoPDFGenerator { return &MarotoPDFGenerator{} }

// Generate genera el PDF del estilo pedido y devuelve sus bytes.
func (g *MarotoPDFGenerator) Generate(_ context.Context, style string, data *report.Data) ([]byte, error) {
	title, ok := titles[style]
	if !ok {
		return nil, fmt.Errorf("pdf: estilo desconocido %q", style)
	}
	if data == nil || data.Valuation == nil || data.Professional == nil {
		return nil, fmt.Errorf("pdf: datos incompletos")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		WithAuthor(data.Professional.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(title, data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(operationRow(data.Valuation.Details))
	m.AddRows(partiesRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	switch style {
	case entity.ReportTecnico:
		m.AddRows(tableHeaderRow())
		m.AddRows(questionRows(data.Lines)...)
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
		m.AddRows(certificateRow(data.Valuation.Record.OriginCertificate))
		m.AddRows(totalsRow(data))
	case entity.ReportComercial:
		m.AddRows(merchandiseRow(data.Valuation.Details))
		m.AddRows(adjustmentRows(data.Lines)...)
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
		m.AddRows(totalsRow(data))
	case entity.ReportDictamen:
		m.AddRows(narrativeRows(data)...)
		m.AddRows(totalsRow(data))
		m.AddRows(line.NewRow(3))
		m.AddRows(signatureRows(data)...)
	}

	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(data))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones comunes ─────────────────────────────────────────────────────────

// headerRow: título del estilo (izq) y N° de valoración + fecha (der).
func headerRow(title string, data *report.Data) core.Row {
	fecha := "—"
	if fa := data.Valuation.Record.FinalizedAt; fa != nil {
		fecha = fa.Format("02/01/2006")
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Art. 1 y 8 del Acuerdo de Valoración (GATT) · RG AFIP 2010/2006", props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("VALORACIÓN N°", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(shortID(data.Valuation.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 6,
			}),
			text.New("Finalizada: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 13, Color: colorGray,
			}),
		),
	)
}

func operationRow(d valuation.Details) core.Row {
	factura := nonEmpty(d.InvoiceNumber, "—")
	if d.InvoiceDate != "" {
		factura += " del " + d.InvoiceDate
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("OPERACIÓN", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Tipo: %s   |   Incoterm 2020: %s   |   Moneda: %s   |   Factura: %s",
				nonEmpty(d.OperationType, "—"),
				nonEmpty(d.Incoterm, "—"),
				currencyLabel(d.Currency),
				factura,
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

func partiesRow(data *report.Data) core.Row {
	d := data.Valuation.Details
	cliente := "—"
	if c := data.Client; c != nil {
		cliente = c.Name
		if c.CUIT != "" {
			cliente += " (CUIT " + afip.FormatCUIT(c.CUIT) + ")"
		}
	}
	return row.New(20).Add(
		col.New(12).Add(
			text.New("PARTES", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New("Exportador: "+nonEmpty(d.Exporter, "—"), props.Text{Size: 9, Top: 6}),
			text.New("Importador: "+nonEmpty(d.Importer, "—"), props.Text{Size: 9, Top: 11}),
			text.New("Cliente: "+cliente, props.Text{Size: 8, Top: 16, Color: colorGray}),
		),
	)
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(data *report.Data) core.Row {
	r := data.Result
	cur := data.Valuation.Details.Currency
	lines := []struct{ l, v string }{
		{"Valor base:", amountText(cur, r.BaseItemValue)},
		{"(+) Adiciones:", amountText(cur, r.TotalAdditions)},
		{"(−) Deducciones:", amountText(cur, r.TotalDeductions)},
		{"Valor preliminar:", amountText(cur, r.Preliminary)},
		{"Penalidad sin certificado (1 %):", amountText(cur, r.CompliancePenalty)},
	}
	labels := make([]core.Component, 0, len(lines)+1)
	values := make([]core.Component, 0, len(lines)+1)
	for i, ln := range lines {
		top := float64(i) * 5
		labels = append(labels, text.New(ln.l, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top}))
		values = append(values, text.New(ln.v, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top}))
	}
	top := float64(len(lines))*5 + 2
	labels = append(labels, text.New("VALOR EN ADUANA:", props.Text{
		Style: fontstyle.Bold, Size: 10, Align: align.Right, Right: 2, Top: top, Color: colorPrimary,
	}))
	values = append(values, text.New(amountText(cur, r.FinalValue), props.Text{
		Style: fontstyle.Bold, Size: 11, Align: align.Right, Right: 1, Top: top, Color: colorPrimary,
	}))

	return row.New(36).Add(col.New(4), col.New(5).Add(labels...), col.New(3).Add(values...))
}

func footerRow(data *report.Data) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New(fmt.Sprintf("Tabla de preguntas %s · Generado el %s · Los montos se expresan en la moneda de la factura, sin conversión.",
			valuation.TableVersion, data.GeneratedAt.Format("02/01/2006 15:04")),
			props.Text{Size: 6.5, Color: colorGray, Top: 2}),
	))
}

// ── Estilo técnico ────────────────────────────────────────────────────────────

// tableHeaderRow: cabecera de la tabla de preguntas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("N°", 1, align.Center),
		h("Pregunta / base legal", 6, align.Left),
		h("Tipo", 1, align.Center),
		h("Resp.", 1, align.Center),
		h("Monto", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// questionRows: una fila por pregunta, en orden oficial.
func questionRows(lines []valuation.Line) []core.Row {
	out := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		monto := "—"
		if l.Answer.Amount != nil {
			monto = money.Format(*l.Answer.Amount)
		}
		out = append(out, row.New(11).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", l.Question.Ordinal),
				props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(
				text.New(l.Question.Title, props.Text{Size: 7.5, Top: 1, Left: 1}),
				text.New(l.Question.Legal, props.Text{Size: 6.5, Top: 7, Left: 1, Color: colorGray}),
			),
			col.New(1).Add(text.New(categoryLabel(l.Question.Category),
				props.Text{Size: 7, Align: align.Center, Top: 1})),
			col.New(1).Add(text.New(answerLabel(l.Answer.Status),
				props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New(monto,
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return out
}

func certificateRow(st valuation.AnswerStatus) core.Row {
	return row.New(8).Add(col.New(12).Add(
		text.New("Certificado de origen presentado: "+answerLabel(st), props.Text{
			Style: fontstyle.Bold, Size: 9, Top: 2,
		}),
	))
}

// ── Estilo comercial ──────────────────────────────────────────────────────────

func merchandiseRow(d valuation.Details) core.Row {
	ncm := ""
	if d.NCMCode != "" {
		ncm = "Posición NCM: " + d.NCMCode
	}
	return row.New(16).Add(col.New(12).Add(
		text.New("MERCADERÍA", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		text.New(nonEmpty(d.ItemDescription, "—"), props.Text{Size: 9, Top: 6}),
		text.New(ncm, props.Text{Size: 8, Top: 11, Color: colorGray}),
	))
}

// adjustmentRows: sólo los ajustes que aportan al valor.
func adjustmentRows(lines []valuation.Line) []core.Row {
	rows := []core.Row{
		row.New(7).Add(col.New(12).Add(
			text.New("AJUSTES AL PRECIO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
		)),
	}
	contributes := false
	for _, l := range lines {
		if l.Contributes.IsZero() {
			continue
		}
		contributes = true
		sign := "+"
		if l.Question.Category == valuation.CategoryDeduction {
			sign = "−"
		}
		rows = append(rows, row.New(6).Add(
			col.New(9).Add(text.New(l.Question.Title, props.Text{Size: 8, Left: 2, Top: 1})),
			col.New(3).Add(text.New(sign+" "+money.Format(l.Contributes), props.Text{Size: 8, Align: align.Right, Right: 1, Top: 1})),
		))
	}
	if !contributes {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New("Sin adiciones ni deducciones: el valor en aduana es el precio declarado.", props.Text{Size: 8, Left: 2, Top: 1, Color: colorGray}),
		)))
	}
	return rows
}

// ── Estilo dictamen ───────────────────────────────────────────────────────────

func narrativeRows(data *report.Data) []core.Row {
	v := data.Valuation
	r := data.Result
	cur := v.Details.Currency

	adds, deds := 0, 0
	for _, l := range data.Lines {
		if l.Contributes.IsZero() {
			continue
		}
		if l.Question.Category == valuation.CategoryAddition {
			adds++
		} else if l.Question.Category == valuation.CategoryDeduction {
			deds++
		}
	}

	p1 := fmt.Sprintf(
		"El/la profesional que suscribe, habiendo analizado la documentación comercial de la operación de %s "+
			"de \"%s\" bajo condición %s, dictamina que el valor en aduana de la mercadería se determina por el "+
			"método del valor de transacción (Art. 1 del Acuerdo), con los ajustes del Art. 8.",
		nonEmpty(v.Details.OperationType, "comercio exterior"),
		nonEmpty(v.Details.ItemDescription, "la mercadería"),
		nonEmpty(v.Details.Incoterm, "—"),
	)
	p2 := fmt.Sprintf(
		"Sobre un precio declarado de %s se computaron %d adición(es) por %s y %d deducción(es) por %s.",
		amountText(cur, r.BaseItemValue), adds, amountText(cur, r.TotalAdditions), deds, amountText(cur, r.TotalDeductions),
	)
	p3 := "Se presentó certificado de origen; no corresponde ajuste presunto."
	if v.Record.OriginCertificate == valuation.StatusNo {
		p3 = fmt.Sprintf("No se presentó certificado de origen; se aplica un ajuste presunto del 1 %% por %s.",
			amountText(cur, r.CompliancePenalty))
	}

	para := func(s string, h float64) core.Row {
		return row.New(h).Add(col.New(12).Add(text.New(s, props.Text{Size: 9, Top: 2, Align: align.Left})))
	}
	return []core.Row{para(p1, 20), para(p2, 12), para(p3, 10)}
}

func signatureRows(data *report.Data) []core.Row {
	p := data.Professional
	qr := fmt.Sprintf("valoracion:%s;sha256:%s", data.Valuation.ID, data.Digest)

	return []core.Row{
		row.New(44).Add(
			col.New(4).Add(code.NewQr(qr, props.Rect{Percent: 95, Center: true})),
			col.New(8).Add(
				text.New("Digest SHA-256 de la declaración de valor (XML canónico):", props.Text{
					Style: fontstyle.Bold, Size: 7, Top: 2, Left: 3,
				}),
				text.New(data.Digest, props.Text{Size: 6.5, Top: 7, Left: 3, Color: colorGray}),
				text.New("_______________________________", props.Text{Size: 9, Top: 26, Left: 3, Align: align.Center}),
				text.New(p.Name, props.Text{Style: fontstyle.Bold, Size: 9, Top: 31, Align: align.Center}),
				text.New("Matrícula: "+nonEmpty(p.LicenseNumber, "—"), props.Text{Size: 8, Top: 36, Align: align.Center, Color: colorGray}),
			),
		),
		row.New(10).Add(col.New(12).Add(
			text.New(
				"Este dictamen se emite sobre la base de la información suministrada por el comitente y no "+
					"reemplaza la determinación que pueda practicar el servicio aduanero. Verifique el digest "+
					"contra el XML de la declaración para confirmar la integridad del documento.",
				props.Text{Size: 6.5, Color: colorGray, Top: 2},
			),
		)),
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func amountText(currency string, d decimal.Decimal) string {
	return strings.TrimSpace(currency + " " + money.Format(d))
}

func currencyLabel(code string) string {
	if name, ok := afip.Currencies[code]; ok {
		return code + " (" + name + ")"
	}
	return nonEmpty(code, "—")
}

func categoryLabel(c valuation.Category) string {
	switch c {
	case valuation.CategoryAddition:
		return "Adición"
	case valuation.CategoryDeduction:
		return "Deducción"
	default:
		return "General"
	}
}

func answerLabel(s valuation.AnswerStatus) string {
	switch s {
	case valuation.StatusYes:
		return "SÍ"
	case valuation.StatusNo:
		return "NO"
	default:
		return "—"
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
