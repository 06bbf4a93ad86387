package http

import (
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/valoracion-api/internal/application/dto"
	"github.com/jhoicas/valoracion-api/internal/application/usecase"
)

// AIHandler extracción asistida de documentos y consultas al asistente.
type AIHandler struct {
	uc *usecase.AIUseCase
}

// NewAIHandler construye el handler.
func NewAIHandler(uc *usecase.AIUseCase) *AIHandler {
	return &AIHandler{uc: uc}
}

// Extract godoc
// @Summary      Extraer una valoración desde un documento
// @Description  Lee factura o packing list (PDF, imagen o texto) y devuelve los datos normalizados
// @Description  con la vista previa del cálculo. save_draft=true lo guarda como borrador en curso.
// @Tags         ai
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file        formData  file    true   "documento (máx. 10 MB)"
// @Param        hint        formData  string  false  "indicaciones adicionales"
// @Param        save_draft  formData  bool    false  "guardar como borrador"
// @Success      200  {object}  dto.ExtractResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/ai/extract [post]
func (h *AIHandler) Extract(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "MISSING_FILE", Message: "campo file requerido"})
	}
	if fh.Size > usecase.MaxDocumentBytes {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(dto.ErrorResponse{Code: "TOO_LARGE", Message: "el documento supera 10 MB"})
	}
	var req dto.ExtractRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "formulario inválido"})
	}
	if err := validateStruct(&req); err != nil {
		return respondError(c, err)
	}

	f, err := fh.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer f.Close()
	doc, err := io.ReadAll(f)
	if err != nil {
		return respondError(c, err)
	}

	out, err := h.uc.ExtractFromDocument(c.Context(), GetUserID(c), doc, fh.Header.Get(fiber.HeaderContentType), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Chat godoc
// @Summary      Consultar al asistente de valoración
// @Tags         ai
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ChatRequest  true  "historial y pregunta"
// @Success      200   {object}  dto.ChatResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/ai/chat [post]
func (h *AIHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := bindJSON(c, &req); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Chat(c.Context(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
