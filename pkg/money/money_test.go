package money_test

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/valoracion-api/pkg/money"
)

func TestParse_FormatoArgentino(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"1.234,56", "1234.56"},
		{"0,50", "0.5"},
		{"10200,00", "10200"},
		{"1.200,50", "1200.5"},
		{"1.000.000", "1000000"},
		{"  300,00 ", "300"},
		{"-150,25", "-150.25"},
		{"", "0"},
		{"abc", "0"},
		{"1,2,3", "0"},
		{"12abc", "0"},
		{"1e3", "0"},
		{"1E3", "0"},
		{"1e5000000", "0"},
		{"1,5e2", "0"},
		{"+5", "0"},
		{"1 000", "0"},
		{strings.Repeat("9", 41), "0"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := money.Parse(tc.in)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
				"Parse(%q) = %s, se esperaba %s", tc.in, got, tc.want)
		})
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "0,00"},
		{"0.5", "0,50"},
		{"999", "999,00"},
		{"1234.56", "1.234,56"},
		{"1234567.5", "1.234.567,50"},
		{"10350", "10.350,00"},
		{"-400", "-400,00"},
		{"-1234.5", "-1.234,50"},
		{"10.005", "10,01"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, money.Format(decimal.RequireFromString(tc.in)))
		})
	}
}

// Parse(Format(x)) debe devolver x para montos no negativos con hasta dos decimales.
func TestParseFormat_IdaYVuelta(t *testing.T) {
	values := []string{"0", "0.01", "0.1", "1", "12.3", "999.99", "1000", "1234.56", "98765432.1", "1000000000.99"}
	for _, v := range values {
		x := decimal.RequireFromString(v)
		back := money.Parse(money.Format(x))
		assert.True(t, back.Equal(x), "ida y vuelta de %s devolvió %s", v, back)
	}
}

func TestFromAny_NumerosPasanSinCambios(t *testing.T) {
	assert.True(t, money.FromAny(1500).Equal(decimal.NewFromInt(1500)))
	assert.True(t, money.FromAny(12.5).Equal(decimal.RequireFromString("12.5")))
	assert.True(t, money.FromAny(decimal.RequireFromString("7.25")).Equal(decimal.RequireFromString("7.25")))
	assert.True(t, money.FromAny("1.234,56").Equal(decimal.RequireFromString("1234.56")))
	assert.True(t, money.FromAny(nil).IsZero())
	assert.True(t, money.FromAny(struct{}{}).IsZero())
}

func TestAmount_UnmarshalJSON(t *testing.T) {
	var payload struct {
		Texto   money.Amount  `json:"texto"`
		Numero  money.Amount  `json:"numero"`
		Malo    money.Amount  `json:"malo"`
		Nulo    *money.Amount `json:"nulo"`
		Ausente money.Amount  `json:"ausente"`
	}
	raw := `{"texto":"1.234,56","numero":300.5,"malo":"xx","nulo":null}`
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	assert.True(t, payload.Texto.Equal(decimal.RequireFromString("1234.56")))
	assert.True(t, payload.Numero.Equal(decimal.RequireFromString("300.5")))
	assert.True(t, payload.Malo.IsZero())
	assert.Nil(t, payload.Nulo)
	assert.True(t, payload.Ausente.IsZero())
}

func TestParse_NotacionCientificaNoSeExpande(t *testing.T) {
	start := time.Now()
	got := money.Parse("1e2000000000")
	assert.True(t, got.IsZero())
	assert.Equal(t, "0,00", money.Format(got))
	assert.Less(t, time.Since(start), time.Second)
}

func TestFromAny_FloatsNoFinitosSonCero(t *testing.T) {
	assert.NotPanics(t, func() {
		assert.True(t, money.FromAny(math.NaN()).IsZero())
		assert.True(t, money.FromAny(math.Inf(1)).IsZero())
		assert.True(t, money.FromAny(math.Inf(-1)).IsZero())
		assert.True(t, money.FromAny(float32(math.NaN())).IsZero())
		assert.True(t, money.FromAny(1e300).IsZero())
	})
	assert.True(t, money.FromAny(float32(0.5)).Equal(decimal.RequireFromString("0.5")))
}

func TestAmount_UnmarshalJSON_ExponenteEsCero(t *testing.T) {
	var payload struct {
		Grande money.Amount `json:"grande"`
		Chico  money.Amount `json:"chico"`
		Normal money.Amount `json:"normal"`
	}
	raw := `{"grande":1e999999999,"chico":2.5E-3,"normal":-12.75}`
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	assert.True(t, payload.Grande.IsZero())
	assert.True(t, payload.Chico.IsZero())
	assert.True(t, payload.Normal.Equal(decimal.RequireFromString("-12.75")))
}
