package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Traslados-api/internal/application/dto"
	"github.com/jhoicas/Traslados-api/internal/application/transfer"
	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
)

// DiscrepancyHandler alta manual y resolución de discrepancias (protegido).
type DiscrepancyHandler struct {
	uc  *transfer.UseCase
	log zerolog.Logger
}

// NewDiscrepancyHandler construye el handler.
func NewDiscrepancyHandler(uc *transfer.UseCase, log zerolog.Logger) *DiscrepancyHandler {
	return &DiscrepancyHandler{uc: uc, log: log}
}

// Raise godoc
// @Summary      Reportar discrepancia en destino (daño, vencimiento, error de picking)
// @Tags         discrepancies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID del traslado"
// @Param        body  body  dto.RaiseDiscrepancyRequest  true  "Motivo y líneas"
// @Success      201   {object}  dto.DiscrepancyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/discrepancies [post]
func (h *DiscrepancyHandler) Raise(c *fiber.Ctx) error {
	actor, ok, err := requireActor(c)
	if !ok {
		return err
	}
	var in dto.RaiseDiscrepancyRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	input := transfer.RaiseInput{Reason: entity.DiscrepancyReason(in.Reason), Notes: in.Notes, Actor: actor}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, transfer.RaiseLineInput{
			TransferLineID: l.TransferLineID,
			ProductID:      l.ProductID,
			QuantityDelta:  l.QuantityDelta,
			WeightDeltaKg:  l.WeightDeltaKg,
			Notes:          l.Notes,
		})
	}
	d, err := h.uc.RaiseDiscrepancy(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewDiscrepancyResponse(d))
}

// GetByID godoc
// @Summary      Obtener discrepancia
// @Tags         discrepancies
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la discrepancia"
// @Success      200  {object}  dto.DiscrepancyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/discrepancies/{id} [get]
func (h *DiscrepancyHandler) GetByID(c *fiber.Ctx) error {
	d, err := h.uc.GetDiscrepancy(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewDiscrepancyResponse(d))
}

// ListByTransfer godoc
// @Summary      Listar discrepancias de un traslado
// @Tags         discrepancies
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {array}  dto.DiscrepancyResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/discrepancies [get]
func (h *DiscrepancyHandler) ListByTransfer(c *fiber.Ctx) error {
	list, err := h.uc.ListDiscrepancies(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.DiscrepancyResponse, 0, len(list))
	for _, d := range list {
		out = append(out, dto.NewDiscrepancyResponse(d))
	}
	return c.JSON(out)
}

// Resolve godoc
// @Summary      Resolver discrepancia
// @Description  disposition aplica a todas las líneas abiertas; lines asigna una disposición por línea.
// @Description  Si ya estaba resuelta responde 200 con warning y el estado actual.
// @Tags         discrepancies
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID de la discrepancia"
// @Param        body  body  dto.ResolveRequest  true  "Disposición"
// @Success      200   {object}  dto.DiscrepancyResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/discrepancies/{id}/resolve [post]
func (h *DiscrepancyHandler) Resolve(c *fiber.Ctx) error {
	actor, ok, err := requireActor(c)
	if !ok {
		return err
	}
	var in dto.ResolveRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	if (in.Disposition == "") == (len(in.Lines) == 0) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: "indique disposition o lines, no ambos",
		})
	}

	var d *entity.Discrepancy
	if in.Disposition != "" {
		d, err = h.uc.ResolveDiscrepancy(c.UserContext(), c.Params("id"), entity.Disposition(in.Disposition), actor)
	} else {
		byLine := make(map[string]entity.Disposition, len(in.Lines))
		for lineID, disp := range in.Lines {
			byLine[lineID] = entity.Disposition(disp)
		}
		d, err = h.uc.ResolveDiscrepancyLines(c.UserContext(), c.Params("id"), byLine, actor)
	}
	if errors.Is(err, domain.ErrAlreadyResolved) && d != nil {
		out := dto.NewDiscrepancyResponse(d)
		out.Warning = err.Error()
		return c.JSON(out)
	}
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewDiscrepancyResponse(d))
}
