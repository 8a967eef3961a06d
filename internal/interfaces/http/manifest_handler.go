package http

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Traslados-api/internal/application/transfer"
)

// ManifestHandler descarga de la guía de traslado en PDF.
type ManifestHandler struct {
	uc  *transfer.ManifestUseCase
	log zerolog.Logger
}

// NewManifestHandler construye el handler.
func NewManifestHandler(uc *transfer.ManifestUseCase, log zerolog.Logger) *ManifestHandler {
	return &ManifestHandler{uc: uc, log: log}
}

// Download godoc
// @Summary      Descargar guía de traslado (PDF)
// @Description  Disponible desde el despacho. Incluye recepción y discrepancias si existen.
// @Tags         transfers
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/manifest [get]
func (h *ManifestHandler) Download(c *fiber.Ctx) error {
	pdf, filename, err := h.uc.Download(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(pdf)
}
