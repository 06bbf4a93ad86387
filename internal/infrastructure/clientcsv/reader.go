// Package clientcsv lee planillas de clientes exportadas de Excel o de otros
// sistemas de despachantes. Acepta UTF-8 (con o sin BOM) y Windows-1252, con
// separador coma o punto y coma.
package clientcsv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/valoracion-api/internal/application/dto"
)

// MaxRows límite de filas por importación.
const MaxRows = 5000

var ErrNoHeader = errors.New("csv: falta la fila de encabezados con la columna nombre")

// columnas aceptadas → campo
var headerAliases = map[string]string{
	"name":                  "name",
	"nombre":              "name",
	"razon social":  "name",
	"razón social":  "name",
	"cuit":                  "cuit",
	"contact_name":  "contact_name",
	"contacto":          "contact_name",
	"email":                "email",
	"correo":              "email",
	"phone":                "phone",
	"telefono":          "phone",
	"teléfono":          "phone",
	"address":            "address",
	"direccion":        "address",
	"dirección":        "address",
	"domicilio":        "address",
	"country":            "country",
	"pais":                  "country",
	"país":                  "country",
	"notes":                "notes",
	"notas":                "notes",
	"observaciones": "notes",
}

// Read parsea la planilla completa. Las filas vacías se ignoran; las columnas
// desconocidas también.
func Read(r io.Reader) ([]dto.ClientRequest, error) {
	raw, err := io.ReadAll(io.LimitReader(r, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("csv: leer: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(raw) {
		raw, _, err = transform.Bytes(charmap.Windows1252.NewDecoder(), raw)
		if err != nil {
			return nil, fmt.Errorf("csv: decodificar Windows-1252: %w", err)
		}
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = detectDelimiter(raw)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("csv: encabezado: %w", err)
	}
	cols := make([]string, len(header))
	hasName := false
	for i, h := range header {
		cols[i] = headerAliases[strings.ToLower(strings.TrimSpace(h))]
		hasName = hasName || cols[i] == "name"
	}
	if !hasName {
		return nil, ErrNoHeader
	}

	var out []dto.ClientRequest
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: línea %d: %w", line, err)
		}
		row, empty := toRequest(cols, rec)
		if empty {
			continue
		}
		if len(out) == MaxRows {
			return nil, fmt.Errorf("csv: más de %d filas", MaxRows)
		}
		out = append(out, row)
	}
	return out, nil
}

func toRequest(cols, rec []string) (dto.ClientRequest, bool) {
	var in dto.ClientRequest
	empty := true
	for i, v := range rec {
		if i >= len(cols) {
			break
		}
		v = strings.TrimSpace(v)
		if v != "" {
			empty = false
		}
		switch cols[i] {
		case "name":
			in.Name = v
		case "cuit":
			in.CUIT = v
		case "contact_name":
			in.ContactName = v
		case "email":
			in.Email = v
		case "phone":
			in.Phone = v
		case "address":
			in.Address = v
		case "country":
			in.Country = v
		case "notes":
			in.Notes = v
		}
	}
	return in, empty
}

// detectDelimiter mira la primera línea: Excel en locale es-AR exporta con ';'.
func detectDelimiter(raw []byte) rune {
	first, _, _ := bytes.Cut(raw, []byte("\n"))
	if bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		return ';'
	}
	return ','
}
