package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Traslados-api/internal/application/dto"
	"github.com/jhoicas/Traslados-api/internal/application/inventory"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/domain/repository"
)

// StockHandler ledger de movimientos y consultas de stock (protegido).
type StockHandler struct {
	ledger *inventory.LedgerUseCase
	log    zerolog.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *inventory.LedgerUseCase, log zerolog.Logger) *StockHandler {
	return &StockHandler{ledger: ledger, log: log}
}

// RecordMovement godoc
// @Summary      Registrar movimiento en el ledger
// @Description  quantity lleva signo: negativa para sale, loss y transfer_out.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordMovementRequest  true  "Movimiento"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/movements [post]
func (h *StockHandler) RecordMovement(c *fiber.Ctx) error {
	actor, ok, err := requireActor(c)
	if !ok {
		return err
	}
	var in dto.RecordMovementRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	id, err := h.ledger.RecordMovement(c.UserContext(), in.ToInput(actor))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"id": id, "message": "movimiento registrado"})
}

// ListMovements godoc
// @Summary      Listar movimientos del ledger
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id      query  string  false  "Producto"
// @Param        branch_id       query  string  false  "Sucursal"
// @Param        reference_type  query  string  false  "transfer|discrepancy|batch|manual"
// @Param        reference_id    query  string  false  "ID de referencia"
// @Param        from            query  string  false  "Desde (AAAA-MM-DD)"
// @Param        to              query  string  false  "Hasta inclusive (AAAA-MM-DD)"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *fiber.Ctx) error {
	var q dto.MovementListRequest
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	q.DefaultPage()
	f := repository.MovementFilter{
		ProductID:     q.ProductID,
		BranchID:      q.BranchID,
		ReferenceType: entity.ReferenceType(q.ReferenceType),
		ReferenceID:   q.ReferenceID,
		Limit:         q.Limit,
		Offset:        q.Offset,
	}
	// El validador ya garantizó el formato de fecha.
	if q.From != "" {
		from, _ := time.Parse(time.DateOnly, q.From)
		f.From = &from
	}
	if q.To != "" {
		to, _ := time.Parse(time.DateOnly, q.To)
		to = to.AddDate(0, 0, 1)
		f.To = &to
	}
	list, err := h.ledger.ListMovements(c.UserContext(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.MovementListResponse{
		Items: make([]dto.MovementResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: q.Limit, Offset: q.Offset},
	}
	for _, m := range list {
		out.Items = append(out.Items, dto.NewMovementResponse(m))
	}
	return c.JSON(out)
}

// CurrentStock godoc
// @Summary      Stock actual de un producto en una sucursal
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "Producto"
// @Param        branch_id   query  string  true  "Sucursal"
// @Success      200  {object}  dto.StockResponse
// @Router       /api/stock [get]
func (h *StockHandler) CurrentStock(c *fiber.Ctx) error {
	var q dto.StockQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	st, err := h.ledger.CurrentStock(c.UserContext(), q.ProductID, q.BranchID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.NewStockResponse(st))
}

// Consistency godoc
// @Summary      Auditar stock cacheado contra la suma del ledger
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "Producto"
// @Param        branch_id   query  string  true  "Sucursal"
// @Success      200  {object}  dto.ConsistencyResponse
// @Router       /api/stock/consistency [get]
func (h *StockHandler) Consistency(c *fiber.Ctx) error {
	var q dto.StockQuery
	if ok, err := bindQuery(c, &q); !ok {
		return err
	}
	res, err := h.ledger.VerifyConsistency(c.UserContext(), q.ProductID, q.BranchID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	if !res.Consistent() {
		h.log.Warn().
			Str("product_id", res.ProductID).
			Str("branch_id", res.BranchID).
			Str("drift", res.Drift.String()).
			Msg("stock descuadrado respecto al ledger")
	}
	return c.JSON(dto.NewConsistencyResponse(res))
}
