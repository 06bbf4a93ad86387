package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/valoracion-api/internal/application/dto"
	"github.com/jhoicas/valoracion-api/internal/application/ports"
	"github.com/jhoicas/valoracion-api/internal/application/usecase"
	"github.com/jhoicas/valoracion-api/internal/domain"
	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
	"github.com/jhoicas/valoracion-api/internal/infrastructure/memory"
	"github.com/jhoicas/valoracion-api/pkg/logger"
	"github.com/jhoicas/valoracion-api/pkg/money"
)

type fakeLLM struct {
	extraction *valuation.Extraction
	err        error
	block      bool

	gotMIME    string
	gotHint    string
	gotHistory []ports.ChatTurn
}

func (f *fakeLLM) ExtractValuation(ctx context.Context, _ []byte, mimeType, hint string) (*valuation.Extraction, error) {
	f.gotMIME, f.gotHint = mimeType, hint
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.extraction, f.err
}

func (f *fakeLLM) Chat(_ context.Context, history []ports.ChatTurn, question string) (string, error) {
	f.gotHistory = history
	if f.err != nil {
		return "", f.err
	}
	return "  Respuesta sobre " + question + "  ", nil
}

func sampleExtraction() *valuation.Extraction {
	return &valuation.Extraction{
		OperationType: "Importacion",
		Exporter:      "Shenzhen Tools Co.",
		Incoterm:      "fob",
		Currency:      "usd",
		BaseItemValue: money.NewAmount(money.Parse("10.200,00")),
		Answers: map[string]valuation.ExtractedAnswer{
			"q12": {Status: "yes", Amount: &money.Amount{Decimal: money.Parse("300")}},
			"q17": {Status: "yes", Amount: &money.Amount{Decimal: money.Parse("150")}},
		},
		OriginCertificate: "yes",
		Confidence:        1.7,
		Notes:             "Flete no discriminado",
	}
}

func TestExtractFromDocument_NormalizaYGuardaBorrador(t *testing.T) {
	llm := &fakeLLM{extraction: sampleExtraction()}
	drafts := memory.NewDraftRepository(0)
	uc := usecase.NewAIUseCase(llm, drafts, time.Second, logger.Nop())

	out, err := uc.ExtractFromDocument(context.Background(), "u1", []byte("%PDF-1.4"), "application/pdf; charset=binary",
		dto.ExtractRequest{Hint: "  factura FOB  ", SaveDraft: true})
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", llm.gotMIME)
	assert.Equal(t, "factura FOB", llm.gotHint)
	assert.Equal(t, "FOB", out.Details.Incoterm)
	assert.Equal(t, "importacion", out.Details.OperationType)
	assert.Equal(t, "10.350,00", out.Preview.Result.Formatted.FinalValue)
	assert.Equal(t, 1.0, out.Confidence)
	assert.True(t, out.DraftSaved)
	assert.Len(t, out.Preview.Missing, 15)

	d, err := drafts.Load(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, valuation.RecordDraft, d.Record.Status)
	assert.Equal(t, "USD", d.Details.Currency)
}

func TestExtractFromDocument_SinGuardar(t *testing.T) {
	drafts := memory.NewDraftRepository(0)
	uc := usecase.NewAIUseCase(&fakeLLM{extraction: sampleExtraction()}, drafts, time.Second, logger.Nop())

	out, err := uc.ExtractFromDocument(context.Background(), "u1", []byte("x"), "image/jpg", dto.ExtractRequest{})
	require.NoError(t, err)
	assert.False(t, out.DraftSaved)

	d, err := drafts.Load(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestExtractFromDocument_Validaciones(t *testing.T) {
	uc := usecase.NewAIUseCase(&fakeLLM{extraction: sampleExtraction()}, memory.NewDraftRepository(0), time.Second, logger.Nop())
	ctx := context.Background()

	_, err := uc.ExtractFromDocument(ctx, "u1", nil, "application/pdf", dto.ExtractRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.ExtractFromDocument(ctx, "u1", []byte("x"), "application/zip", dto.ExtractRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAI_SinModeloConfigurado(t *testing.T) {
	uc := usecase.NewAIUseCase(nil, memory.NewDraftRepository(0), time.Second, logger.Nop())
	assert.False(t, uc.Enabled())

	_, err := uc.ExtractFromDocument(context.Background(), "u1", []byte("x"), "text/plain", dto.ExtractRequest{})
	assert.ErrorIs(t, err, domain.ErrAIUnavailable)

	_, err = uc.Chat(context.Background(), dto.ChatRequest{Question: "hola"})
	assert.ErrorIs(t, err, domain.ErrAIUnavailable)
}

func TestAI_TimeoutEsNoDisponible(t *testing.T) {
	uc := usecase.NewAIUseCase(&fakeLLM{block: true}, memory.NewDraftRepository(0), 10*time.Millisecond, logger.Nop())
	_, err := uc.ExtractFromDocument(context.Background(), "u1", []byte("x"), "text/plain", dto.ExtractRequest{})
	assert.ErrorIs(t, err, domain.ErrAIUnavailable)
}

func TestChat(t *testing.T) {
	llm := &fakeLLM{}
	uc := usecase.NewAIUseCase(llm, memory.NewDraftRepository(0), time.Second, logger.Nop())

	out, err := uc.Chat(context.Background(), dto.ChatRequest{
		History:  []dto.ChatMessage{{Role: "user", Text: "¿Qué es el Art. 8?"}, {Role: "model", Text: "Ajustes."}},
		Question: "regalías",
	})
	require.NoError(t, err)
	assert.Equal(t, "Respuesta sobre regalías", out.Answer)
	require.Len(t, llm.gotHistory, 2)
	assert.Equal(t, "model", llm.gotHistory[1].Role)

	llm.err = errors.New("AI: Anthropic error (authentication_error): invalid x-api-key sk-ant-123")
	_, err = uc.Chat(context.Background(), dto.ChatRequest{Question: "x"})
	assert.ErrorIs(t, err, domain.ErrAIUnavailable)
	assert.Equal(t, "servicio de IA no disponible: chat", err.Error())
	assert.NotContains(t, err.Error(), "sk-ant")

	_, err = uc.Chat(context.Background(), dto.ChatRequest{Question: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
