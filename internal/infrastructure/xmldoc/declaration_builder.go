// Package xmldoc construye el XML de la declaración de valor de una valoración
// finalizada y calcula su digest sobre la forma canónica (C14N).
package xmldoc

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/valoracion-api/internal/application/report"
	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
	"github.com/jhoicas/valoracion-api/pkg/afip"
)

// Namespace del documento.
const (
	NsDeclaracion = "urn:valoracion-aduanera:declaracion-valor:1"
	docVersion    = "1.0"
)

var _ report.DeclarationBuilder = (*Builder)(nil)

// Builder implementa report.DeclarationBuilder con etree.
type Builder struct{}

// NewBuilder crea el servicio.
func NewBuilder() *Builder { return &Builder{} }

// Build arma el documento, lo canoniza y calcula SHA-256 en hex.
func (b *Builder) Build(data *report.Data) (*report.Declaration, error) {
	if data == nil || data.Valuation == nil || data.Professional == nil {
		return nil, fmt.Errorf("xmldoc: faltan valoración o profesional")
	}
	doc := etree.NewDocument()
	root := doc.CreateElement("DeclaracionValor")
	root.CreateAttr("xmlns", NsDeclaracion)
	root.CreateAttr("version", docVersion)

	v := data.Valuation
	d := v.Details

	// ---- Identificación
	id := root.CreateElement("Identificacion")
	id.CreateElement("ValoracionID").SetText(v.ID)
	if v.Record.FinalizedAt != nil {
		id.CreateElement("FechaFinalizacion").SetText(v.Record.FinalizedAt.UTC().Format(time.RFC3339))
	}
	id.CreateElement("TablaPreguntas").SetText(valuation.TableVersion)

	// ---- Operación
	op := root.CreateElement("Operacion")
	op.CreateElement("Tipo").SetText(d.OperationType)
	op.CreateElement("Incoterm").SetText(d.Incoterm)
	op.CreateElement("Moneda").SetText(d.Currency)
	if d.NCMCode != "" {
		op.CreateElement("PosicionNCM").SetText(d.NCMCode)
	}
	if d.InvoiceNumber != "" || d.InvoiceDate != "" {
		f := op.CreateElement("Factura")
		f.CreateAttr("numero", d.InvoiceNumber)
		f.CreateAttr("fecha", d.InvoiceDate)
	}

	// ---- Partes
	partes := root.CreateElement("Partes")
	partes.CreateElement("Exportador").SetText(d.Exporter)
	partes.CreateElement("Importador").SetText(d.Importer)
	if data.Client != nil {
		c := partes.CreateElement("Cliente")
		if data.Client.CUIT != "" {
			c.CreateAttr("cuit", afip.FormatCUIT(data.Client.CUIT))
		}
		c.SetText(data.Client.Name)
	}

	prof := root.CreateElement("Profesional")
	prof.CreateElement("Nombre").SetText(data.Professional.Name)
	if data.Professional.LicenseNumber != "" {
		prof.CreateElement("Matricula").SetText(data.Professional.LicenseNumber)
	}

	root.CreateElement("Mercaderia").CreateElement("Descripcion").SetText(d.ItemDescription)

	// ---- Ajustes: las 17 preguntas en orden oficial
	aj := root.CreateElement("Ajustes")
	for _, l := range data.Lines {
		p := aj.CreateElement("Pregunta")
		p.CreateAttr("id", l.Question.ID)
		p.CreateAttr("ordinal", strconv.Itoa(l.Question.Ordinal))
		p.CreateAttr("categoria", string(l.Question.Category))
		p.CreateAttr("respuesta", string(l.Answer.Status))
		if l.Answer.Amount != nil {
			p.CreateAttr("monto", amount(*l.Answer.Amount))
		}
	}
	root.CreateElement("CertificadoOrigen").SetText(string(v.Record.OriginCertificate))

	// ---- Totales congelados
	r := data.Result
	tot := root.CreateElement("Totales")
	tot.CreateAttr("moneda", d.Currency)
	tot.CreateElement("ValorBase").SetText(amount(r.BaseItemValue))
	tot.CreateElement("Adiciones").SetText(amount(r.TotalAdditions))
	tot.CreateElement("Deducciones").SetText(amount(r.TotalDeductions))
	tot.CreateElement("ValorPreliminar").SetText(amount(r.Preliminary))
	tot.CreateElement("PenalidadCertificado").SetText(amount(r.CompliancePenalty))
	tot.CreateElement("ValorFinal").SetText(amount(r.FinalValue))

	// ---- Forma canónica + digest (antes de indentar)
	raw, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("xmldoc: serializar: %w", err)
	}
	canonical, err := Canonicalize(raw)
	if err != nil {
		return nil, fmt.Errorf("xmldoc: canonizar: %w", err)
	}
	sum := sha256.Sum256(canonical)

	// ---- Versión legible para descarga
	doc.Indent(2)
	var out bytes.Buffer
	out.WriteString(xml.Header)
	if _, err := doc.WriteTo(&out); err != nil {
		return nil, fmt.Errorf("xmldoc: serializar: %w", err)
	}

	return &report.Declaration{
		XML:       out.Bytes(),
		Canonical: canonical,
		Digest:    hex.EncodeToString(sum[:]),
	}, nil
}

// Canonicalize aplica Canonical XML 1.0 (sin comentarios).
func Canonicalize(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

// Digest devuelve SHA-256 en hex de la forma canónica de data.
func Digest(data []byte) (string, error) {
	canonical, err := Canonicalize(data)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func amount(d decimal.Decimal) string { return d.StringFixed(2) }
