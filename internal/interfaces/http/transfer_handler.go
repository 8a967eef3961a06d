package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Traslados-api/internal/application/dto"
	"github.com/jhoicas/Traslados-api/internal/application/transfer"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/domain/repository"
)

// TransferHandler ciclo de vida de traslados (protegido).
type TransferHandler struct {
	uc  *transfer.UseCase
	log zerolog.Logger
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfer.UseCase, log zerolog.Logger) *TransferHandler {
	return &TransferHandler{uc: uc, log: log}
}

func (h *TransferHandler) respond(c *fiber.Ctx, status int, t *entity.Transfer, err error) error {
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(status).JSON(dto.NewTransferResponse(t))
}

// Create godoc
// @Summary      Solicitar traslado
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "Origen, destino y líneas esperadas"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	actor, ok, err := requireActor(c)
	if !ok {
		return err
	}
	var in dto.CreateTransferRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	input := transfer.CreateInput{
		OriginBranchID:         in.OriginBranchID,
		DestinationBranchID:    in.DestinationBranchID,
		DestinationSubLocation: in.DestinationSubLocation,
		Notes:                  in.Notes,
		Actor:                  actor,
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, transfer.LineInput{
			ProductID:        l.ProductID,
			ExpectedQuantity: l.ExpectedQuantity,
			ExpectedWeightKg: l.ExpectedWeightKg,
			BatchNumber:      l.BatchNumber,
			ExpiryDate:       l.ExpiryDate,
		})
	}
	t, err := h.uc.CreateTransfer(c.UserContext(), input)
	return h.respond(c, fiber.StatusCreated, t, err)
}

// GetByID godoc
// @Summary      Obtener traslado con despacho, recepción y discrepancias
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	t, err := h.uc.GetTransfer(c.UserContext(), c.Params("id"))
	return h.respond(c, fiber.StatusOK, t, err)
}

// List godoc
// @Summary      Listar traslados
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        branch_id  query  string  false  "Sucursal origen o destino"
// @Param        status     query  string  false  "pending|approved|dispatched|delivered|received"
// @Param        limit      query  int     false  "Límite"  default(20)
// @Param        offset     query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.TransferListResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	var q dto.TransferListRequest
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	q.DefaultPage()
	list, err := h.uc.ListTransfers(c.UserContext(), repository.TransferFilter{
		BranchID: q.BranchID,
		Status:   entity.TransferStatus(q.Status),
		Limit:    q.Limit,
		Offset:   q.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.TransferListResponse{
		Items: make([]dto.TransferResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}
	for _, t := range list {
		out.Items = append(out.Items, dto.NewTransferResponse(t))
	}
	return c.JSON(out)
}

// Approve godoc
// @Summary      Aprobar traslado (pending → approved)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/approve [post]
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	actor, ok, err := requireActor(c)
	if !ok {
		return err
	}
	t, err := h.uc.ApproveTransfer(c.UserContext(), c.Params("id"), actor)
	return h.respond(c, fiber.StatusOK, t, err)
}

// Dispatch godoc
// @Summary      Despachar traslado: descuenta origen y acredita tránsito
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "ID del traslado"
// @Param        body  body  dto.DispatchRequest  true  "Transportista, vehículo y pesos"
// @Success      200   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/dispatch [post]
func (h *TransferHandler) Dispatch(c *fiber.Ctx) error {
	actor, ok, err := requireActor(c)
	if !ok {
		return err
	}
	var in dto.DispatchRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	t, err := h.uc.DispatchTransfer(c.UserContext(), c.Params("id"), transfer.ShipmentInput{
		Transporter:   in.Transporter,
		VehicleNumber: in.VehicleNumber,
		LRNumber:      in.LRNumber,
		SealNumber:    in.SealNumber,
		GrossKg:       in.GrossKg,
		TareKg:        in.TareKg,
		NetKg:         in.NetKg,
		DispatchedAt:  in.DispatchedAt,
		Documents:     in.Documents,
		Actor:         actor,
	})
	return h.respond(c, fiber.StatusOK, t, err)
}

// Deliver godoc
// @Summary      Confirmar entrega física (dispatched → delivered)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/deliver [post]
func (h *TransferHandler) Deliver(c *fiber.Ctx) error {
	actor, ok, err := requireActor(c)
	if !ok {
		return err
	}
	t, err := h.uc.MarkDelivered(c.UserContext(), c.Params("id"), actor)
	return h.respond(c, fiber.StatusOK, t, err)
}

// Receive godoc
// @Summary      Recibir traslado con re-pesaje y tolerancia
// @Description  Las líneas fuera de tolerancia abren una discrepancia; la diferencia queda en tránsito.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "ID del traslado"
// @Param        body  body  dto.ReceiveRequest  true  "Cantidades recibidas por línea"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transfers/{id}/receive [post]
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	actor, ok, err := requireActor(c)
	if !ok {
		return err
	}
	var in dto.ReceiveRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	input := transfer.ReceiptInput{
		ArrivedAt:         in.ArrivedAt,
		ReweighGrossKg:    in.ReweighGrossKg,
		ReweighTareKg:     in.ReweighTareKg,
		ReweighNetKg:      in.ReweighNetKg,
		TolerancePercent:  *in.TolerancePercent,
		AllowSkipDelivery: in.AllowSkipDelivery,
		Documents:         in.Documents,
		Actor:             actor,
	}
	for _, l := range in.Lines {
		input.Lines = append(input.Lines, transfer.ReceiptLineInput{
			TransferLineID:   l.TransferLineID,
			ReceivedQuantity: l.ReceivedQuantity,
			ReceivedWeightKg: l.ReceivedWeightKg,
		})
	}
	t, err := h.uc.ReceiveTransfer(c.UserContext(), c.Params("id"), input)
	return h.respond(c, fiber.StatusOK, t, err)
}
