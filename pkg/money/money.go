// Package money convierte montos escritos con la convención argentina
// (punto = separador de miles, coma = separador decimal) a decimal exacto y viceversa.
//
// El parseo es tolerante: una entrada vacía o mal formada vale cero. Así el
// formulario puede recalcular en cada tecla sin propagar errores al usuario.
package money

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// maxLen acota la representación normalizada: 28 dígitos enteros más decimales
// sobran para cualquier monto aduanero y evitan reescalados gigantes.
const maxLen = 40

// maxFloat es el mayor float que se acepta como monto.
const maxFloat = 1e28

// plainDecimal es la única forma aceptada después de normalizar: sin exponente,
// sin signo "+", sin espacios internos.
var plainDecimal = regexp.MustCompile(`^-?(\d+(\.\d*)?|\.\d+)$`)

// Parse convierte "1.200,50" en 1200.50. Quita todos los puntos, cambia la coma
// por punto decimal y parsea en base 10. Nunca devuelve error: lo inválido es cero.
func Parse(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	s = strings.ReplaceAll(s, ".", "")
	if strings.Count(s, ",") > 1 {
		return decimal.Zero
	}
	return parsePlain(strings.Replace(s, ",", ".", 1))
}

// parsePlain parsea un decimal con punto como separador; notación científica
// y entradas demasiado largas valen cero.
func parsePlain(s string) decimal.Decimal {
	if len(s) > maxLen || !plainDecimal.MatchString(s) {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FromAny acepta valores que ya son numéricos (pasan sin cambios) o strings en formato es-AR.
func FromAny(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case *decimal.Decimal:
		if x == nil {
			return decimal.Zero
		}
		return *x
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case float64:
		return fromFloat(x)
	case float32:
		if fromFloat(float64(x)).IsZero() {
			return decimal.Zero
		}
		return decimal.NewFromFloat32(x)
	case json.Number:
		return parsePlain(x.String())
	case string:
		return Parse(x)
	default:
		return decimal.Zero
	}
}

// fromFloat descarta NaN, infinitos y magnitudes fuera de rango.
func fromFloat(x float64) decimal.Decimal {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) >= maxFloat {
		return decimal.Zero
	}
	return decimal.NewFromFloat(x)
}

// Format devuelve el monto con dos decimales, puntos de miles y coma decimal.
// Ej: 1234567.5 → "1.234.567,50"; -400 → "-400,00".
func Format(d decimal.Decimal) string {
	fixed := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	intPart, frac, _ := strings.Cut(fixed, ".")
	if frac == "" {
		frac = "00"
	}
	// StringFixed puede devolver "-0.00" para valores negativos que redondean a cero.
	if intPart == "0" && frac == "00" {
		sign = ""
	}
	return sign + groupThousands(intPart) + "," + frac
}

// groupThousands inserta puntos de miles en un string de dígitos.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	buf := make([]byte, 0, n+n/3)
	for i, c := range []byte(s) {
		if i > 0 && (n-i)%3 == 0 {
			buf = append(buf, '.')
		}
		buf = append(buf, c)
	}
	return string(buf)
}

// Amount es el tipo de frontera para montos en JSON: acepta número JSON o
// string es-AR ("1.234,56"). La decodificación nunca falla; lo inválido es cero.
type Amount struct {
	decimal.Decimal
}

// NewAmount construye un Amount a partir de un decimal.
func NewAmount(d decimal.Decimal) Amount { return Amount{Decimal: d} }

// UnmarshalJSON implementa json.Unmarshaler con la política tolerante del parser.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		a.Decimal = decimal.Zero
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			a.Decimal = decimal.Zero
			return nil
		}
		a.Decimal = Parse(s)
	default:
		a.Decimal = FromAny(json.Number(b))
	}
	return nil
}

// Ptr devuelve un puntero al decimal, o nil si el Amount es nil.
func (a *Amount) Ptr() *decimal.Decimal {
	if a == nil {
		return nil
	}
	d := a.Decimal
	return &d
}
