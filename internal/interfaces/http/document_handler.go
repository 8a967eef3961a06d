package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Traslados-api/internal/application/dto"
	"github.com/jhoicas/Traslados-api/internal/application/transfer"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
)

// DocumentHandler referencias documentales (guías, fotos, actas).
type DocumentHandler struct {
	uc  *transfer.UseCase
	log zerolog.Logger
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(uc *transfer.UseCase, log zerolog.Logger) *DocumentHandler {
	return &DocumentHandler{uc: uc, log: log}
}

// Attach godoc
// @Summary      Adjuntar referencia documental
// @Tags         documents
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AttachDocumentRequest  true  "Dueño y referencia"
// @Success      201   {object}  dto.DocumentResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/documents [post]
func (h *DocumentHandler) Attach(c *fiber.Ctx) error {
	actor, ok, err := requireActor(c)
	if !ok {
		return err
	}
	var in dto.AttachDocumentRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	doc, err := h.uc.AttachDocument(c.UserContext(), entity.AttachableKind(in.OwnerKind), in.OwnerID, in.Reference, actor)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewDocumentResponse(doc))
}

// List godoc
// @Summary      Listar referencias de un registro
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        owner_kind  query  string  true  "transfer|shipment|receipt|discrepancy"
// @Param        owner_id    query  string  true  "ID del dueño"
// @Success      200  {array}  dto.DocumentResponse
// @Router       /api/documents [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	docs, err := h.uc.ListDocuments(c.UserContext(), entity.AttachableKind(c.Query("owner_kind")), c.Query("owner_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		out = append(out, dto.NewDocumentResponse(d))
	}
	return c.JSON(out)
}
