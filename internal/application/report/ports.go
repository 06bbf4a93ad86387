package report

import (
	"context"
	"time"

	"github.com/jhoicas/valoracion-api/internal/domain/entity"
	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
)

// Data reúne todo lo que necesita un documento de una valoración finalizada.
type Data struct {
	Valuation    *entity.Valuation
	Professional *entity.User   // quien firma
	Client       *entity.Client // nil si la valoración no tiene cliente asociado
	Result       valuation.Result
	Lines        []valuation.Line
	Digest       string // SHA-256 hex del XML canónico de la declaración
	GeneratedAt  time.Time
}

// PDFGenerator genera el PDF de una valoración en el estilo pedido.
type PDFGenerator interface {
	Generate(ctx context.Context, style string, data *Data) ([]byte, error)
}

// Declaration documento XML de la declaración de valor.
type Declaration struct {
	XML       []byte // indentado, para descargar
	Canonical []byte // C14N, sobre el que se calcula el digest
	Digest    string
	Signed    bool // XML con firma XMLDSig del profesional
}

// DeclarationBuilder construye el XML de la declaración de valor.
// El resultado depende sólo de datos congelados: misma valoración, mismo digest.
type DeclarationBuilder interface {
	Build(data *Data) (*Declaration, error)
}

// DeclarationSigner firma el XML de la declaración. El digest publicado sigue
// siendo el del documento sin firma.
type DeclarationSigner interface {
	Sign(xml []byte) ([]byte, error)
}
