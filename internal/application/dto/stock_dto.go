package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Traslados-api/internal/application/inventory"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
)

// RecordMovementRequest body para POST /api/stock/movements.
// Quantity lleva signo: negativa para salidas (sale, loss, transfer_out).
type RecordMovementRequest struct {
	ProductID     string          `json:"product_id" validate:"required,uuid"`
	BranchID      string          `json:"branch_id" validate:"required,uuid"`
	BatchID       string          `json:"batch_id,omitempty" validate:"omitempty,uuid"`
	Type          string          `json:"type" validate:"required,oneof=purchase sale loss transfer_out transfer_in adjustment"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price" validate:"dgte0"`
	Notes         string          `json:"notes,omitempty" validate:"omitempty,max=500"`
	AllowNegative bool            `json:"allow_negative,omitempty"`
	ReferenceType string          `json:"reference_type,omitempty" validate:"omitempty,oneof=transfer discrepancy batch manual"`
	ReferenceID   string          `json:"reference_id,omitempty" validate:"omitempty,uuid"`
}

// ToInput convierte el request al input del ledger.
func (r RecordMovementRequest) ToInput(actor string) inventory.MovementInput {
	return inventory.MovementInput{
		ProductID:     r.ProductID,
		BranchID:      r.BranchID,
		BatchID:       r.BatchID,
		Type:          entity.MovementType(r.Type),
		Quantity:      r.Quantity,
		UnitPrice:     r.UnitPrice,
		Actor:         actor,
		Notes:         r.Notes,
		AllowNegative: r.AllowNegative,
		ReferenceType: entity.ReferenceType(r.ReferenceType),
		ReferenceID:   r.ReferenceID,
	}
}

// MovementListRequest query de GET /api/stock/movements.
type MovementListRequest struct {
	ProductID     string `query:"product_id" validate:"omitempty,uuid"`
	BranchID      string `query:"branch_id" validate:"omitempty,uuid"`
	ReferenceType string `query:"reference_type" validate:"omitempty,oneof=transfer discrepancy batch manual"`
	ReferenceID   string `query:"reference_id" validate:"omitempty,uuid"`
	From          string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To            string `query:"to" validate:"omitempty,datetime=2006-01-02"`
	PageRequest
}

// StockQuery query de GET /api/stock y /api/stock/consistency.
type StockQuery struct {
	ProductID string `query:"product_id" validate:"required,uuid"`
	BranchID  string `query:"branch_id" validate:"required,uuid"`
}

// StockResponse stock cacheado de un producto en una sucursal.
type StockResponse struct {
	ProductID string          `json:"product_id"`
	BranchID  string          `json:"branch_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UpdatedAt time.Time       `json:"updated_at,omitempty"`
}

// NewStockResponse mapea el stock de dominio.
func NewStockResponse(s *entity.BranchStock) StockResponse {
	return StockResponse{ProductID: s.ProductID, BranchID: s.BranchID, Quantity: s.Quantity, UpdatedAt: s.UpdatedAt}
}

// MovementResponse salida de un asiento del ledger.
type MovementResponse struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	BranchID      string          `json:"branch_id"`
	BatchID       string          `json:"batch_id,omitempty"`
	Type          string          `json:"type"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	ReferenceType string          `json:"reference_type,omitempty"`
	ReferenceID   string          `json:"reference_id,omitempty"`
	Actor         string          `json:"actor"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// NewMovementResponse mapea el movimiento de dominio.
func NewMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		BranchID:      m.BranchID,
		BatchID:       m.BatchID,
		Type:          string(m.Type),
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		ReferenceType: string(m.ReferenceType),
		ReferenceID:   m.ReferenceID,
		Actor:         m.Actor,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
	}
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ConsistencyResponse resultado de auditar cache contra ledger.
type ConsistencyResponse struct {
	ProductID  string          `json:"product_id"`
	BranchID   string          `json:"branch_id"`
	Cached     decimal.Decimal `json:"cached"`
	LedgerSum  decimal.Decimal `json:"ledger_sum"`
	Drift      decimal.Decimal `json:"drift"`
	Consistent bool            `json:"consistent"`
}

// NewConsistencyResponse mapea el resultado de la auditoría.
func NewConsistencyResponse(c *inventory.Consistency) ConsistencyResponse {
	return ConsistencyResponse{
		ProductID:  c.ProductID,
		BranchID:   c.BranchID,
		Cached:     c.Cached,
		LedgerSum:  c.LedgerSum,
		Drift:      c.Drift,
		Consistent: c.Consistent(),
	}
}
