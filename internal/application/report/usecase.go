// Package report genera los documentos de una valoración finalizada: PDF en
// tres estilos y el XML de la declaración de valor.
package report

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jhoicas/valoracion-api/internal/domain"
	"github.com/jhoicas/valoracion-api/internal/domain/entity"
	"github.com/jhoicas/valoracion-api/internal/domain/repository"
	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
)

// ReportUseCase arma los datos del documento y delega la representación.
type ReportUseCase struct {
	valRepo    repository.ValuationRepository
	userRepo   repository.UserRepository
	clientRepo repository.ClientRepository
	pdf        PDFGenerator
	xml        DeclarationBuilder
	signer     DeclarationSigner // opcional
	now        func() time.Time
}

// NewReportUseCase construye el caso de uso inyectando sus dependencias.
func NewReportUseCase(
	valRepo repository.ValuationRepository,
	userRepo repository.UserRepository,
	clientRepo repository.ClientRepository,
	pdf PDFGenerator,
	xml DeclarationBuilder,
) *ReportUseCase {
	return &ReportUseCase{
		valRepo:    valRepo,
		userRepo:   userRepo,
		clientRepo: clientRepo,
		pdf:        pdf,
		xml:        xml,
		now:        time.Now,
	}
}

// WithSigner activa la firma digital del XML de la declaración.
func (uc *ReportUseCase) WithSigner(s DeclarationSigner) *ReportUseCase {
	uc.signer = s
	return uc
}

// RenderPDF genera el PDF. style vacío usa el estilo guardado en la valoración.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la valoración no existe.
//   - domain.ErrForbidden        si pertenece a otro usuario.
//   - domain.ErrInvalidInput     si está en borrador o el estilo no existe.
//   - domain.ErrForbidden        si se pide un dictamen y el titular es analista (no firma).
func (uc *ReportUseCase) RenderPDF(ctx context.Context, userID, valuationID, style string) ([]byte, string, error) {
	data, err := uc.collect(ctx, userID, valuationID)
	if err != nil {
		return nil, "", err
	}
	if style == "" {
		style = data.Valuation.ReportStyle
	}
	if !slices.Contains(entity.ReportStyles, style) {
		return nil, "", fmt.Errorf("%w: estilo de reporte %q", domain.ErrInvalidInput, style)
	}
	if style == entity.ReportDictamen && data.Professional.Role == entity.RoleAnalista {
		return nil, "", fmt.Errorf("%w: el dictamen lo firma un despachante", domain.ErrForbidden)
	}

	decl, err := uc.xml.Build(data)
	if err != nil {
		return nil, "", fmt.Errorf("report: construir declaración: %w", err)
	}
	data.Digest = decl.Digest

	pdfBytes, err := uc.pdf.Generate(ctx, style, data)
	if err != nil {
		return nil, "", fmt.Errorf("report: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("valoracion_%s_%s.pdf", shortID(valuationID), style), nil
}

// DeclarationXML devuelve el XML de la declaración de valor y su digest.
func (uc *ReportUseCase) DeclarationXML(ctx context.Context, userID, valuationID string) (*Declaration, string, error) {
	data, err := uc.collect(ctx, userID, valuationID)
	if err != nil {
		return nil, "", err
	}
	decl, err := uc.xml.Build(data)
	if err != nil {
		return nil, "", fmt.Errorf("report: construir declaración: %w", err)
	}
	if uc.signer != nil {
		signed, err := uc.signer.Sign(decl.XML)
		if err != nil {
			return nil, "", fmt.Errorf("report: firmar declaración: %w", err)
		}
		decl.XML = signed
		decl.Signed = true
	}
	return decl, fmt.Sprintf("declaracion_%s.xml", shortID(valuationID)), nil
}

func (uc *ReportUseCase) collect(ctx context.Context, userID, valuationID string) (*Data, error) {
	// ── 1. Cargar valoración ──────────────────────────────────────────────────
	v, err := uc.valRepo.GetByID(ctx, valuationID)
	if err != nil {
		return nil, fmt.Errorf("report: obtener valoración: %w", err)
	}
	if v == nil {
		return nil, domain.ErrNotFound
	}
	if !v.IsOwnedBy(userID) {
		return nil, domain.ErrForbidden
	}

	// ── 2. Sólo finalizadas: el documento refleja el total congelado ──────────
	if !v.Record.IsFinalized() || v.Record.Frozen == nil {
		return nil, fmt.Errorf("%w: la valoración está en borrador; finalícela antes de emitir documentos",
			domain.ErrInvalidInput)
	}

	// ── 3. Profesional y cliente ──────────────────────────────────────────────
	user, err := uc.userRepo.GetByID(ctx, v.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("report: obtener profesional: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}
	var client *entity.Client
	if v.Details.ClientID != "" {
		client, err = uc.clientRepo.GetByID(ctx, v.Details.ClientID)
		if err != nil {
			return nil, fmt.Errorf("report: obtener cliente: %w", err)
		}
	}

	return &Data{
		Valuation:    v,
		Professional: user,
		Client:       client,
		Result:       *v.Record.Frozen,
		Lines:        valuation.Breakdown(v.Record.Answers),
		GeneratedAt:  uc.now(),
	}, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
