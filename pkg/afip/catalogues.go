// Package afip contiene catálogos y validaciones de identificación fiscal y
// comercio exterior usados en Argentina (AFIP / Dirección General de Aduanas).
package afip

import "strings"

// Incoterms 2020 (Cámara de Comercio Internacional). Solo se usan como etiqueta descriptiva.
const (
	IncotermEXW = "EXW"
	IncotermFCA = "FCA"
	IncotermFAS = "FAS"
	IncotermFOB = "FOB"
	IncotermCFR = "CFR"
	IncotermCIF = "CIF"
	IncotermCPT = "CPT"
	IncotermCIP = "CIP"
	IncotermDAP = "DAP"
	IncotermDPU = "DPU"
	IncotermDDP = "DDP"
)

// Incoterms lista ordenada para combos y validación.
var Incoterms = []string{
	IncotermEXW, IncotermFCA, IncotermFAS, IncotermFOB, IncotermCFR, IncotermCIF,
	IncotermCPT, IncotermCIP, IncotermDAP, IncotermDPU, IncotermDDP,
}

// IsIncoterm indica si code es un Incoterm 2020 (sin distinguir mayúsculas).
func IsIncoterm(code string) bool {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, c := range Incoterms {
		if c == code {
			return true
		}
	}
	return false
}

// Tipos de operación aduanera.
const (
	OperationExport = "exportacion"
	OperationImport = "importacion"
)

// Monedas habituales en destinaciones aduaneras. La etiqueta acompaña a todo el
// registro; el sistema no convierte entre monedas.
var Currencies = map[string]string{
	"USD": "Dólar estadounidense",
	"EUR": "Euro",
	"ARS": "Peso argentino",
	"BRL": "Real brasileño",
	"CNY": "Yuan renminbi",
	"GBP": "Libra esterlina",
	"JPY": "Yen",
	"CLP": "Peso chileno",
	"UYU": "Peso uruguayo",
	"PYG": "Guaraní",
}
