package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/valoracion-api/internal/application/dto"
	"github.com/jhoicas/valoracion-api/internal/domain"
	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
)

// respondError traduce errores de dominio a status HTTP y dto.ErrorResponse.
// Lo que no se reconoce es 500 INTERNAL.
func respondError(c *fiber.Ctx, err error) error {
	var be *bindError
	if errors.As(err, &be) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: be.code, Message: be.message, Fields: be.fields})
	}

	var inc *valuation.IncompleteError
	if errors.As(err, &inc) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{
			Code: "INCOMPLETE", Message: valuation.ErrIncomplete.Error(), Missing: inc.Missing,
		})
	}

	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, valuation.ErrUnknownQuestion):
		status, code = fiber.StatusNotFound, "UNKNOWN_QUESTION"
	case errors.Is(err, domain.ErrForbidden):
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrInvalidCUIT):
		status, code = fiber.StatusBadRequest, "INVALID_CUIT"
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, valuation.ErrInvalidStatus):
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrEmailAlreadyExists):
		status, code = fiber.StatusConflict, "EMAIL_EXISTS"
	case errors.Is(err, domain.ErrDuplicate):
		status, code = fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, valuation.ErrFinalized):
		status, code = fiber.StatusConflict, "FINALIZED"
	case errors.Is(err, valuation.ErrNotFinalized):
		status, code = fiber.StatusConflict, "NOT_FINALIZED"
	case errors.Is(err, domain.ErrConflict):
		status, code = fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrAIUnavailable):
		status, code = fiber.StatusServiceUnavailable, "AI_UNAVAILABLE"
	}

	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}
