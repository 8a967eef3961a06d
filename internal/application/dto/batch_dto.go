package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Traslados-api/internal/application/inventory"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
)

// CreateBatchRequest body para POST /api/batches.
type CreateBatchRequest struct {
	ProductID     string          `json:"product_id" validate:"required,uuid"`
	BranchID      string          `json:"branch_id" validate:"required,uuid"`
	Quantity      decimal.Decimal `json:"quantity" validate:"dgt0"`
	PurchasePrice decimal.Decimal `json:"purchase_price" validate:"dgte0"`
	PurchaseDate  *time.Time      `json:"purchase_date,omitempty"`
	ExpiryDate    *time.Time      `json:"expiry_date,omitempty"`
	BatchNumber   string          `json:"batch_number,omitempty" validate:"omitempty,max=60"`
}

// ToInput convierte el request al input del caso de uso.
func (r CreateBatchRequest) ToInput(actor string) inventory.CreateBatchInput {
	return inventory.CreateBatchInput{
		ProductID:     r.ProductID,
		BranchID:      r.BranchID,
		Quantity:      r.Quantity,
		PurchasePrice: r.PurchasePrice,
		PurchaseDate:  r.PurchaseDate,
		ExpiryDate:    r.ExpiryDate,
		BatchNumber:   r.BatchNumber,
		Actor:         actor,
	}
}

// ConsumeBatchRequest body para POST /api/batches/:id/consume.
type ConsumeBatchRequest struct {
	Quantity decimal.Decimal `json:"quantity" validate:"dgt0"`
}

// ExpireBatchesRequest body para POST /api/batches/expire; sin as_of se usa el momento actual.
type ExpireBatchesRequest struct {
	AsOf *time.Time `json:"as_of,omitempty"`
}

// BatchResponse salida de un lote.
type BatchResponse struct {
	ID              string          `json:"id"`
	BatchNumber     string          `json:"batch_number"`
	ProductID       string          `json:"product_id"`
	BranchID        string          `json:"branch_id"`
	InitialQuantity decimal.Decimal `json:"initial_quantity"`
	CurrentQuantity decimal.Decimal `json:"current_quantity"`
	PurchasePrice   decimal.Decimal `json:"purchase_price"`
	PurchaseDate    time.Time       `json:"purchase_date"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// NewBatchResponse mapea el lote de dominio.
func NewBatchResponse(b *entity.Batch) BatchResponse {
	return BatchResponse{
		ID:              b.ID,
		BatchNumber:     b.BatchNumber,
		ProductID:       b.ProductID,
		BranchID:        b.BranchID,
		InitialQuantity: b.InitialQuantity,
		CurrentQuantity: b.CurrentQuantity,
		PurchasePrice:   b.PurchasePrice,
		PurchaseDate:    b.PurchaseDate,
		ExpiryDate:      b.ExpiryDate,
		Status:          string(b.Status),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
}

// WriteOffResponse recomendación de baja de un lote vencido.
type WriteOffResponse struct {
	BatchID        string          `json:"batch_id"`
	BatchNumber    string          `json:"batch_number"`
	ProductID      string          `json:"product_id"`
	BranchID       string          `json:"branch_id"`
	Remaining      decimal.Decimal `json:"remaining"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
	ExpiryDate     time.Time       `json:"expiry_date"`
}

// NewWriteOffResponse mapea la recomendación.
func NewWriteOffResponse(w inventory.WriteOffRecommendation) WriteOffResponse {
	return WriteOffResponse(w)
}
