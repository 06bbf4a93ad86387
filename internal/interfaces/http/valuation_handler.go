package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/valoracion-api/internal/application/dto"
	"github.com/jhoicas/valoracion-api/internal/application/valuations"
)

// ValuationHandler expone el cuestionario, el cálculo y el ciclo de vida de
// las valoraciones.
type ValuationHandler struct {
	uc *valuations.ValuationUseCase
}

// NewValuationHandler construye el handler.
func NewValuationHandler(uc *valuations.ValuationUseCase) *ValuationHandler {
	return &ValuationHandler{uc: uc}
}

// Questions godoc
// @Summary      Tabla de preguntas regulatorias
// @Description  Las 17 preguntas en orden oficial, con categoría y referencia legal.
// @Tags         valuations
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.QuestionTableResponse
// @Router       /api/valuations/questions [get]
func (h *ValuationHandler) Questions(c *fiber.Ctx) error {
	return c.JSON(h.uc.Questions())
}

// Calculate godoc
// @Summary      Calcular valor en aduana
// @Description  Cálculo sin estado: no guarda nada. Montos en número o texto es-AR ("10.200,50").
// @Tags         valuations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CalculateRequest  true  "valor base, respuestas y certificado"
// @Success      200   {object}  dto.CalculateResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/valuations/calculate [post]
func (h *ValuationHandler) Calculate(c *fiber.Ctx) error {
	var in dto.CalculateRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	return c.JSON(h.uc.Calculate(in))
}

// Create godoc
// @Summary      Crear valoración
// @Description  Con from_draft=true parte del borrador en curso del usuario.
// @Tags         valuations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateValuationRequest  true  "detalles de la operación"
// @Success      201   {object}  dto.ValuationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/valuations [post]
func (h *ValuationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateValuationRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.CreateDraft(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar valoraciones
// @Tags         valuations
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "draft | finalized"
// @Param        limit   query  int     false  "máx. 100"
// @Param        offset  query  int     false  "desde"
// @Success      200  {object}  dto.ValuationListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/valuations [get]
func (h *ValuationHandler) List(c *fiber.Ctx) error {
	in := dto.ValuationListRequest{
		PageRequest: dto.PageRequest{Limit: c.QueryInt("limit", dto.DefaultPageLimit), Offset: c.QueryInt("offset", 0)},
		Status:      c.Query("status"),
	}
	if err := validateStruct(&in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.List(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Obtener valoración
// @Tags         valuations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la valoración"
// @Success      200  {object}  dto.ValuationResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/valuations/{id} [get]
func (h *ValuationHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// UpdateDetails godoc
// @Summary      Actualizar datos de la operación
// @Tags         valuations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la valoración"
// @Param        body  body  dto.UpdateDetailsRequest  true  "detalles"
// @Success      200   {object}  dto.ValuationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/valuations/{id}/details [put]
func (h *ValuationHandler) UpdateDetails(c *fiber.Ctx) error {
	var in dto.UpdateDetailsRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.UpdateDetails(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SetAnswer godoc
// @Summary      Responder una pregunta
// @Description  status: yes | no | unanswered. El monto sólo se conserva con "yes" en adiciones y deducciones.
// @Tags         valuations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                true  "ID de la valoración"
// @Param        qid   path  string                true  "ID de la pregunta (q1..q17)"
// @Param        body  body  dto.SetAnswerRequest  true  "respuesta"
// @Success      200   {object}  dto.ValuationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/valuations/{id}/answers/{qid} [put]
func (h *ValuationHandler) SetAnswer(c *fiber.Ctx) error {
	var in dto.SetAnswerRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.SetAnswer(c.Context(), GetUserID(c), c.Params("id"), c.Params("qid"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SetBaseValue godoc
// @Summary      Fijar valor base del ítem
// @Tags         valuations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la valoración"
// @Param        body  body  dto.SetBaseValueRequest  true  "valor base"
// @Success      200   {object}  dto.ValuationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/valuations/{id}/base-value [put]
func (h *ValuationHandler) SetBaseValue(c *fiber.Ctx) error {
	var in dto.SetBaseValueRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.SetBaseValue(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SetOriginCertificate godoc
// @Summary      Indicar certificado de origen
// @Description  "no" aplica la penalidad del 1 % sobre el valor preliminar.
// @Tags         valuations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                           true  "ID de la valoración"
// @Param        body  body  dto.SetOriginCertificateRequest  true  "estado"
// @Success      200   {object}  dto.ValuationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/valuations/{id}/origin-certificate [put]
func (h *ValuationHandler) SetOriginCertificate(c *fiber.Ctx) error {
	var in dto.SetOriginCertificateRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.SetOriginCertificate(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Preview godoc
// @Summary      Vista previa del cálculo
// @Tags         valuations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la valoración"
// @Success      200  {object}  dto.CalculateResponse
// @Router       /api/valuations/{id}/preview [get]
func (h *ValuationHandler) Preview(c *fiber.Ctx) error {
	out, err := h.uc.Preview(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Finalize godoc
// @Summary      Finalizar valoración
// @Description  Exige las 17 respuestas y el certificado. Congela el resultado.
// @Tags         valuations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la valoración"
// @Success      200  {object}  dto.ValuationResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse  "missing: preguntas sin responder"
// @Router       /api/valuations/{id}/finalize [post]
func (h *ValuationHandler) Finalize(c *fiber.Ctx) error {
	out, err := h.uc.Finalize(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Reopen godoc
// @Summary      Reabrir valoración finalizada
// @Tags         valuations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true   "ID de la valoración"
// @Param        body  body  dto.ReopenRequest  false  "motivo"
// @Success      200   {object}  dto.ValuationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/valuations/{id}/reopen [post]
func (h *ValuationHandler) Reopen(c *fiber.Ctx) error {
	var in dto.ReopenRequest
	if len(c.Body()) > 0 {
		if err := bindJSON(c, &in); err != nil {
			return respondError(c, err)
		}
	}
	out, err := h.uc.Reopen(c.Context(), GetUserID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial de eventos
// @Tags         valuations
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la valoración"
// @Success      200  {array}   dto.EventDTO
// @Router       /api/valuations/{id}/history [get]
func (h *ValuationHandler) History(c *fiber.Ctx) error {
	out, err := h.uc.History(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Eliminar valoración en borrador
// @Tags         valuations
// @Security     Bearer
// @Param        id   path  string  true  "ID de la valoración"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse  "finalizada"
// @Router       /api/valuations/{id} [delete]
func (h *ValuationHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ── Borrador en curso ─────────────────────────────────────────────────────────

// LoadDraft godoc
// @Summary      Borrador en curso del usuario
// @Tags         drafts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DraftResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/drafts [get]
func (h *ValuationHandler) LoadDraft(c *fiber.Ctx) error {
	out, err := h.uc.LoadDraft(c.Context(), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// SaveDraft godoc
// @Summary      Guardar borrador en curso
// @Tags         drafts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.DraftRequest  true  "formulario"
// @Success      200   {object}  dto.DraftResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/drafts [put]
func (h *ValuationHandler) SaveDraft(c *fiber.Ctx) error {
	var in dto.DraftRequest
	if err := bindJSON(c, &in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.SaveDraft(c.Context(), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// DiscardDraft godoc
// @Summary      Descartar borrador en curso
// @Tags         drafts
// @Security     Bearer
// @Success      204
// @Router       /api/drafts [delete]
func (h *ValuationHandler) DiscardDraft(c *fiber.Ctx) error {
	if err := h.uc.DiscardDraft(c.Context(), GetUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
