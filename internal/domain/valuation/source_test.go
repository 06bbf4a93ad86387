package valuation_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
)

func TestNormalize_Fresh(t *testing.T) {
	details, rec := valuation.Normalize(valuation.FreshSource{Details: valuation.Details{
		OperationType: " Exportacion ",
		Incoterm:      "fob",
		Currency:      "usd",
	}})
	assert.Equal(t, "exportacion", details.OperationType)
	assert.Equal(t, "FOB", details.Incoterm)
	assert.Equal(t, "USD", details.Currency)
	assert.Equal(t, valuation.NewDraft(), rec)
}

func TestNormalize_BorradorCargado(t *testing.T) {
	loaded := valuation.NewDraft()
	loaded.BaseItemValue = dec("500")
	loaded.Answers = valuation.Answers{
		"q5":  {Status: valuation.StatusYes, Amount: amt("10,00")},
		"q6":  {Status: valuation.StatusNo, Amount: amt("99,00")}, // monto huérfano
		"qXX": {Status: valuation.StatusYes},                      // id desconocido
		"q16": {Status: valuation.StatusYes, Amount: amt("5,00")},
	}
	loaded.Status = valuation.RecordFinalized
	loaded.OriginCertificate = valuation.StatusNo

	_, rec := valuation.Normalize(valuation.LoadedDraftSource{Draft: valuation.Draft{
		Record:  loaded,
		SavedAt: time.Now(),
	}})

	assert.Equal(t, valuation.RecordDraft, rec.Status)
	assert.Len(t, rec.Answers, 17)
	assert.Nil(t, rec.Answers["q6"].Amount)
	_, ok := rec.Answers["qXX"]
	assert.False(t, ok)
	assert.Equal(t, valuation.StatusUnanswered, rec.Answers["q1"].Status)

	res := rec.Result()
	assertDec(t, "510.05", res.FinalValue, "final") // (500 + 10 - 5) * 1,01
}

func TestNormalize_Extraccion(t *testing.T) {
	raw := `{
		"operation_type": "importacion",
		"exporter": "Shenzhen Tools Co.",
		"importer": "Ferretería del Sur SA",
		"incoterm": "cif",
		"currency": "usd",
		"base_item_value": "10.200,00",
		"answers": {
			"q12": {"status": "yes", "amount": 300},
			"q17": {"status": "YES", "amount": "150,00"},
			"q3":  {"status": "no"},
			"q40": {"status": "yes", "amount": 1},
			"q5":  {"status": "tal vez"}
		},
		"origin_certificate": "yes"
	}`
	var e valuation.Extraction
	require.NoError(t, json.Unmarshal([]byte(raw), &e))

	details, rec := valuation.Normalize(valuation.ExtractedSource{Extraction: e})
	assert.Equal(t, "CIF", details.Incoterm)
	assert.Equal(t, "Shenzhen Tools Co.", details.Exporter)
	assert.Equal(t, valuation.StatusNo, rec.Answers["q3"].Status)
	assert.Equal(t, valuation.StatusUnanswered, rec.Answers["q5"].Status)

	res := rec.Result()
	assertDec(t, "10350", res.FinalValue, "final")
}
