package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Traslados-api/internal/application/dto"
	"github.com/jhoicas/Traslados-api/internal/application/inventory"
)

// BatchHandler lotes con vencimiento (protegido).
type BatchHandler struct {
	uc  *inventory.BatchUseCase
	log zerolog.Logger
}

// NewBatchHandler construye el handler.
func NewBatchHandler(uc *inventory.BatchUseCase, log zerolog.Logger) *BatchHandler {
	return &BatchHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Registrar lote de compra
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBatchRequest  true  "Lote"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/batches [post]
func (h *BatchHandler) Create(c *fiber.Ctx) error {
	actor, ok, err := requireActor(c)
	if !ok {
		return err
	}
	var in dto.CreateBatchRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	b, err := h.uc.CreateBatch(c.UserContext(), in.ToInput(actor))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewBatchResponse(b))
}

// List godoc
// @Summary      Listar lotes (FEFO)
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Producto"
// @Param        branch_id   query  string  false  "Sucursal"
// @Success      200  {array}  dto.BatchResponse
// @Router       /api/batches [get]
func (h *BatchHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.ListBatches(c.UserContext(), c.Query("product_id"), c.Query("branch_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.BatchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, dto.NewBatchResponse(b))
	}
	return c.JSON(out)
}

// Consume godoc
// @Summary      Consumir saldo de un lote
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del lote"
// @Param        body  body  dto.ConsumeBatchRequest  true  "Cantidad"
// @Success      200   {object}  dto.BatchResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/consume [post]
func (h *BatchHandler) Consume(c *fiber.Ctx) error {
	var in dto.ConsumeBatchRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	b, err := h.uc.ConsumeFromBatch(c.UserContext(), c.Params("id"), in.Quantity)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewBatchResponse(b))
}

// Expire godoc
// @Summary      Marcar lotes vencidos y recomendar bajas
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ExpireBatchesRequest  false  "Fecha de corte"
// @Success      200   {array}  dto.WriteOffResponse
// @Router       /api/batches/expire [post]
func (h *BatchHandler) Expire(c *fiber.Ctx) error {
	var in dto.ExpireBatchesRequest
	if len(c.Body()) > 0 {
		if ok, err := bindBody(c, &in); !ok {
			return err
		}
	}
	asOf := time.Now()
	if in.AsOf != nil {
		asOf = *in.AsOf
	}
	recs, err := h.uc.ExpireBatches(c.UserContext(), asOf)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.WriteOffResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, dto.NewWriteOffResponse(r))
	}
	return c.JSON(out)
}
