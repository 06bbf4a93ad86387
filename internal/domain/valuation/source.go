package valuation

import (
	"strings"
	"time"

	"github.com/jhoicas/valoracion-api/pkg/money"
)

// Details son los datos descriptivos de la operación. No intervienen en el
// cálculo; los usan los reportes, el dashboard y la búsqueda.
type Details struct {
	OperationType   string `json:"operation_type"` // exportacion | importacion
	ClientID        string `json:"client_id,omitempty"`
	Exporter        string `json:"exporter"`
	Importer        string `json:"importer"`
	ItemDescription string `json:"item_description"`
	NCMCode         string `json:"ncm_code,omitempty"` // posición arancelaria NCM
	Incoterm        string `json:"incoterm"`
	Currency        string `json:"currency"` // etiqueta de todo el registro
	InvoiceNumber   string `json:"invoice_number,omitempty"`
	InvoiceDate     string `json:"invoice_date,omitempty"` // YYYY-MM-DD
}

// Normalized recorta espacios y pasa a mayúsculas Incoterm y moneda.
func (d Details) Normalized() Details {
	d.OperationType = strings.ToLower(strings.TrimSpace(d.OperationType))
	d.ClientID = strings.TrimSpace(d.ClientID)
	d.Exporter = strings.TrimSpace(d.Exporter)
	d.Importer = strings.TrimSpace(d.Importer)
	d.ItemDescription = strings.TrimSpace(d.ItemDescription)
	d.NCMCode = strings.TrimSpace(d.NCMCode)
	d.Incoterm = strings.ToUpper(strings.TrimSpace(d.Incoterm))
	d.Currency = strings.ToUpper(strings.TrimSpace(d.Currency))
	d.InvoiceNumber = strings.TrimSpace(d.InvoiceNumber)
	d.InvoiceDate = strings.TrimSpace(d.InvoiceDate)
	return d
}

// Draft es la foto del formulario en curso que guarda el repositorio de borradores.
type Draft struct {
	ValuationID string    `json:"valuation_id,omitempty"` // vacío si aún no se persistió
	Details     Details   `json:"details"`
	Record      Record    `json:"record"`
	SavedAt     time.Time `json:"saved_at"`
}

// ExtractedAnswer es una respuesta tal como la devuelve la extracción externa.
type ExtractedAnswer struct {
	Status string        `json:"status"`
	Amount *money.Amount `json:"amount,omitempty"`
}

// Extraction son los datos leídos de un documento comercial por un servicio externo.
// Los montos admiten número JSON o texto es-AR.
type Extraction struct {
	OperationType     string                     `json:"operation_type"`
	Exporter          string                     `json:"exporter"`
	Importer          string                     `json:"importer"`
	ItemDescription   string                     `json:"item_description"`
	NCMCode           string                     `json:"ncm_code"`
	Incoterm          string                     `json:"incoterm"`
	Currency          string                     `json:"currency"`
	InvoiceNumber     string                     `json:"invoice_number"`
	InvoiceDate       string                     `json:"invoice_date"`
	BaseItemValue     money.Amount               `json:"base_item_value"`
	Answers           map[string]ExtractedAnswer `json:"answers"`
	OriginCertificate string                     `json:"origin_certificate"`
	Confidence        float64                    `json:"confidence"`
	Notes             string                     `json:"notes"`
}

// RecordSource es el origen de un registro: formulario nuevo, borrador
// cargado o extracción externa. Todas las variantes pasan por Normalize.
type RecordSource interface {
	isRecordSource()
}

// FreshSource es un formulario vacío con datos descriptivos iniciales.
type FreshSource struct {
	Details Details
}

// LoadedDraftSource es un borrador recuperado del repositorio.
type LoadedDraftSource struct {
	Draft Draft
}

// ExtractedSource es el resultado de leer un documento con IA.
type ExtractedSource struct {
	Extraction Extraction
}

func (FreshSource) isRecordSource()       {}
func (LoadedDraftSource) isRecordSource() {}
func (ExtractedSource) isRecordSource()   {}

// Normalize lleva cualquier origen a la forma canónica (Details, Record) que
// consume el calculador. El registro resultante siempre es un borrador con
// las 17 preguntas presentes.
func Normalize(src RecordSource) (Details, Record) {
	switch s := src.(type) {
	case FreshSource:
		return s.Details.Normalized(), NewDraft()

	case LoadedDraftSource:
		rec := NewDraft()
		loaded := s.Draft.Record
		rec.BaseItemValue = loaded.BaseItemValue
		if st, err := ParseAnswerStatus(string(loaded.OriginCertificate)); err == nil {
			rec.OriginCertificate = st
		}
		for id, a := range loaded.Answers {
			// SetAnswer descarta ids desconocidos y montos que no corresponden.
			_ = rec.SetAnswer(id, a.Status, a.Amount)
		}
		return s.Draft.Details.Normalized(), rec

	case ExtractedSource:
		e := s.Extraction
		details := Details{
			OperationType:   e.OperationType,
			Exporter:        e.Exporter,
			Importer:        e.Importer,
			ItemDescription: e.ItemDescription,
			NCMCode:         e.NCMCode,
			Incoterm:        e.Incoterm,
			Currency:        e.Currency,
			InvoiceNumber:   e.InvoiceNumber,
			InvoiceDate:     e.InvoiceDate,
		}.Normalized()
		rec := NewDraft()
		rec.BaseItemValue = e.BaseItemValue.Decimal
		if st, err := ParseAnswerStatus(e.OriginCertificate); err == nil {
			rec.OriginCertificate = st
		}
		for id, a := range e.Answers {
			st, err := ParseAnswerStatus(a.Status)
			if err != nil {
				continue
			}
			_ = rec.SetAnswer(id, st, a.Amount.Ptr())
		}
		return details, rec
	}
	return Details{}, NewDraft()
}
