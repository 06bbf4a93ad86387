package afip

import (
	"fmt"
	"unicode"
)

// pesos del algoritmo módulo 11 de AFIP, aplicados a los 10 primeros dígitos del CUIT/CUIL.
var cuitWeights = [10]int{5, 4, 3, 2, 7, 6, 5, 4, 3, 2}

// prefijos de tipo válidos: personas humanas (20, 23, 24, 27) y jurídicas (30, 33, 34).
var cuitPrefixes = map[string]bool{
	"20": true, "23": true, "24": true, "27": true,
	"30": true, "33": true, "34": true,
}

// ValidateCUIT valida el CUIT/CUIL (con o sin guiones/puntos) y su dígito verificador.
// cuit puede ser "20-12345678-6", "20.12345678.6" o "20123456786".
func ValidateCUIT(cuit string) error {
	digits := extractDigits(cuit)
	if len(digits) != 11 {
		return fmt.Errorf("afip: el CUIT debe tener 11 dígitos, se encontraron %d", len(digits))
	}
	if !cuitPrefixes[string(digits[:2])] {
		return fmt.Errorf("afip: prefijo de CUIT inválido %q", string(digits[:2]))
	}
	expected, err := ComputeCUITVerificationDigit(string(digits[:10]))
	if err != nil {
		return err
	}
	if digits[10] != expected {
		return fmt.Errorf("afip: dígito verificador del CUIT inválido: esperado %c, recibido %c", expected, digits[10])
	}
	return nil
}

// ComputeCUITVerificationDigit calcula el dígito verificador para los 10 primeros dígitos.
// Un resto que produce 10 no tiene dígito válido: AFIP asigna otro prefijo en ese caso.
func ComputeCUITVerificationDigit(base string) (byte, error) {
	digits := extractDigits(base)
	if len(digits) < 10 {
		return 0, fmt.Errorf("afip: se requieren 10 dígitos para calcular el verificador, se encontraron %d", len(digits))
	}
	var sum int
	for i, d := range digits[:10] {
		sum += int(d-'0') * cuitWeights[i]
	}
	check := 11 - sum%11
	switch check {
	case 11:
		return '0', nil
	case 10:
		return 0, fmt.Errorf("afip: la base %s no admite dígito verificador", string(digits[:10]))
	default:
		return byte('0' + check), nil
	}
}

// FormatCUIT devuelve el CUIT en formato XX-XXXXXXXX-X. Si no tiene 11 dígitos lo devuelve sin cambios.
func FormatCUIT(cuit string) string {
	d := extractDigits(cuit)
	if len(d) != 11 {
		return cuit
	}
	return string(d[:2]) + "-" + string(d[2:10]) + "-" + string(d[10:])
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			out = append(out, byte(r))
		}
	}
	return out
}

// NormalizeCUIT deja sólo los dígitos, forma en que se persiste.
func NormalizeCUIT(cuit string) string {
	return string(extractDigits(cuit))
}
