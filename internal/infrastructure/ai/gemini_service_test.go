package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExtraction_JSONValido(t *testing.T) {
	raw := "```json\n" + `{"incoterm":"FOB","currency":"USD","base_item_value":10200,
		"answers":{"q12":{"status":"yes","amount":"300,00"}},"confidence":0.8}` + "\n```"

	out, err := parseExtraction(raw)
	require.NoError(t, err)
	assert.Equal(t, "FOB", out.Incoterm)
	assert.Equal(t, "10200", out.BaseItemValue.String())
	assert.Equal(t, "300", out.Answers["q12"].Amount.String())
	assert.InDelta(t, 0.8, out.Confidence, 1e-9)
}

func TestParseExtraction_RepararTruncado(t *testing.T) {
	raw := `{"incoterm": "CIF", "currency": "EUR", "notes": "sin flete", `
	out, err := parseExtraction(raw)
	require.NoError(t, err)
	assert.Equal(t, "CIF", out.Incoterm)
	assert.Equal(t, "EUR", out.Currency)
}

func TestParseExtraction_Vacio(t *testing.T) {
	_, err := parseExtraction("   ")
	assert.Error(t, err)
}

func TestQuestionCatalogue_ListaLas17(t *testing.T) {
	cat := questionCatalogue()
	assert.Contains(t, cat, "- q1 (general):")
	assert.Contains(t, cat, "- q17 (deducción):")
	assert.Contains(t, cat, "(adición)")
}

func TestNewGeminiService_SinAPIKey(t *testing.T) {
	_, err := NewGeminiService(context.Background(), "", "")
	assert.Error(t, err)
}
