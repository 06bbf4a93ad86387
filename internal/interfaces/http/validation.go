package http

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/valoracion-api/pkg/afip"
)

// validate es la instancia compartida: validator cachea la metadata de cada struct.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Los errores se reportan con el nombre JSON del campo.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query", "form"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})

	_ = v.RegisterValidation("cuit", func(fl validator.FieldLevel) bool {
		return afip.ValidateCUIT(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("incoterm", func(fl validator.FieldLevel) bool {
		return afip.IsIncoterm(fl.Field().String())
	})
	return v
}

// bindError es un error de entrada: cuerpo ilegible o reglas de validación.
type bindError struct {
	code    string
	message string
	fields  map[string]string
}

func (e *bindError) Error() string { return e.message }

// bindJSON parsea el cuerpo y lo valida.
func bindJSON(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return &bindError{code: "INVALID_BODY", message: "cuerpo inválido"}
	}
	return validateStruct(out)
}

// validateStruct aplica las reglas `validate` y arma el detalle por campo.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &bindError{code: "VALIDATION", message: err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = ruleMessage(fe)
	}
	return &bindError{code: "VALIDATION", message: "datos inválidos", fields: fields}
}

// fieldPath quita el nombre del struct raíz: "CreateValuationRequest.details.incoterm" → "details.incoterm".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es obligatorio"
	case "email":
		return "email inválido"
	case "cuit":
		return "CUIT inválido (dígito verificador)"
	case "incoterm":
		return "Incoterm 2020 desconocido"
	case "uuid":
		return "identificador inválido"
	case "oneof":
		return "debe ser uno de: " + fe.Param()
	case "min":
		return "mínimo " + fe.Param()
	case "max":
		return "máximo " + fe.Param()
	case "len":
		return "longitud exacta " + fe.Param()
	case "datetime":
		return "fecha inválida (formato " + fe.Param() + ")"
	default:
		return "no cumple la regla " + fe.Tag()
	}
}
