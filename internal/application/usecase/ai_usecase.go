package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/valoracion-api/internal/application/dto"
	"github.com/jhoicas/valoracion-api/internal/application/ports"
	"github.com/jhoicas/valoracion-api/internal/domain"
	"github.com/jhoicas/valoracion-api/internal/domain/repository"
	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
	"github.com/jhoicas/valoracion-api/pkg/logger"
)

// MaxDocumentBytes es el tamaño máximo del documento a extraer.
const MaxDocumentBytes = 10 << 20

var supportedMIME = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/webp":      true,
	"text/plain":      true,
}

// AIUseCase orquesta la extracción de documentos y el asistente de consultas.
// Aplica un timeout en cada llamada al LLM para que la latencia externa no
// bloquee los goroutines del servidor.
type AIUseCase struct {
	llm     ports.LLMService
	drafts  repository.DraftRepository
	timeout time.Duration
	log     *logger.Logger
	now     func() time.Time
}

// NewAIUseCase construye el caso de uso. llm nil deja el asistente deshabilitado
// (todas las operaciones devuelven domain.ErrAIUnavailable).
func NewAIUseCase(llm ports.LLMService, drafts repository.DraftRepository, timeout time.Duration, log *logger.Logger) *AIUseCase {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &AIUseCase{llm: llm, drafts: drafts, timeout: timeout, log: log.Named("ai"), now: time.Now}
}

// Enabled indica si hay un modelo configurado.
func (uc *AIUseCase) Enabled() bool { return uc.llm != nil }

// ExtractFromDocument envía el documento al modelo, normaliza lo extraído y
// devuelve la vista previa del cálculo. Con SaveDraft guarda el resultado como
// borrador en curso del usuario.
func (uc *AIUseCase) ExtractFromDocument(
	ctx context.Context,
	ownerID string,
	document []byte,
	mimeType string,
	req dto.ExtractRequest,
) (*dto.ExtractResponse, error) {
	if uc.llm == nil {
		return nil, domain.ErrAIUnavailable
	}
	if len(document) == 0 {
		return nil, fmt.Errorf("%w: documento vacío", domain.ErrInvalidInput)
	}
	if len(document) > MaxDocumentBytes {
		return nil, fmt.Errorf("%w: el documento supera %d MB", domain.ErrInvalidInput, MaxDocumentBytes>>20)
	}
	mimeType = normalizeMIME(mimeType)
	if !supportedMIME[mimeType] {
		return nil, fmt.Errorf("%w: tipo de documento no soportado %q", domain.ErrInvalidInput, mimeType)
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	extraction, err := uc.llm.ExtractValuation(ctx, document, mimeType, strings.TrimSpace(req.Hint))
	if err != nil {
		return nil, uc.wrap("extracción", err)
	}

	details, rec := valuation.Normalize(valuation.ExtractedSource{Extraction: *extraction})

	out := &dto.ExtractResponse{
		Details: dto.DetailsFromDomain(details),
		Preview: dto.CalculateResponse{
			Result:  dto.NewResultDTO(rec.Result()),
			Lines:   dto.NewAnswerLines(rec.Answers),
			Missing: rec.Missing(),
		},
		Confidence: clamp01(extraction.Confidence),
		Notes:      extraction.Notes,
	}

	if req.SaveDraft {
		draft := valuation.Draft{Details: details, Record: rec, SavedAt: uc.now().UTC()}
		if err := uc.drafts.Save(ctx, ownerID, draft); err != nil {
			return nil, fmt.Errorf("ai: guardar borrador: %w", err)
		}
		out.DraftSaved = true
	}

	uc.log.Info().
		Str("owner_id", ownerID).
		Str("mime", mimeType).
		Int("missing", len(out.Preview.Missing)).
		Bool("draft_saved", out.DraftSaved).
		Msg("documento extraído")
	return out, nil
}

// Chat responde una consulta con el historial previo.
func (uc *AIUseCase) Chat(ctx context.Context, req dto.ChatRequest) (*dto.ChatResponse, error) {
	if uc.llm == nil {
		return nil, domain.ErrAIUnavailable
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question es obligatorio", domain.ErrInvalidInput)
	}

	history := make([]ports.ChatTurn, 0, len(req.History))
	for _, m := range req.History {
		history = append(history, ports.ChatTurn{Role: m.Role, Text: m.Text})
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	answer, err := uc.llm.Chat(ctx, history, question)
	if err != nil {
		return nil, uc.wrap("chat", err)
	}
	return &dto.ChatResponse{Answer: strings.TrimSpace(answer)}, nil
}

// wrap traduce timeouts y fallas del proveedor a ErrAIUnavailable. El detalle
// del proveedor sólo va al log; al cliente le llega la operación.
func (uc *AIUseCase) wrap(op string, err error) error {
	uc.log.Warn().Err(err).Str("op", op).Msg("llamada al modelo fallida")
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s: tiempo de espera agotado", domain.ErrAIUnavailable, op)
	}
	return fmt.Errorf("%w: %s", domain.ErrAIUnavailable, op)
}

func normalizeMIME(m string) string {
	m, _, _ = strings.Cut(m, ";")
	m = strings.ToLower(strings.TrimSpace(m))
	if m == "image/jpg" {
		return "image/jpeg"
	}
	return m
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
