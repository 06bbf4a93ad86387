package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/valoracion-api/internal/application/report"
)

// ReportHandler documentos de valoraciones finalizadas.
type ReportHandler struct {
	uc *report.ReportUseCase
}

// NewReportHandler construye el handler.
func NewReportHandler(uc *report.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// PDF godoc
// @Summary      Descargar PDF de la valoración
// @Description  style: tecnico | comercial | dictamen. Vacío usa el estilo guardado.
// @Description  El dictamen lleva el digest SHA-256 de la declaración XML.
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Param        id     path   string  true   "ID de la valoración"
// @Param        style  query  string  false  "estilo del reporte"
// @Success      200  {file}    file
// @Failure      400  {object}  dto.ErrorResponse  "borrador o estilo inválido"
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/valuations/{id}/report [get]
func (h *ReportHandler) PDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.uc.RenderPDF(c.Context(), GetUserID(c), c.Params("id"), c.Query("style"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(pdfBytes)
}

// XML godoc
// @Summary      Declaración de valor en XML
// @Description  El header X-Document-Digest trae el SHA-256 (hex) del XML canonicalizado (C14N) sin firma. Con certificado configurado el XML va firmado (XMLDSig) y X-Document-Signed es true.
// @Tags         reports
// @Security     Bearer
// @Produce      application/xml
// @Param        id   path  string  true  "ID de la valoración"
// @Success      200  {file}    file
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/valuations/{id}/xml [get]
func (h *ReportHandler) XML(c *fiber.Ctx) error {
	decl, filename, err := h.uc.DeclarationXML(c.Context(), GetUserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Set("X-Document-Digest", decl.Digest)
	if decl.Signed {
		c.Set("X-Document-Signed", "true")
	}
	return c.Send(decl.XML)
}
