package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Traslados-api/internal/domain/entity"
)

// RaiseLineRequest línea de una discrepancia manual.
type RaiseLineRequest struct {
	TransferLineID string           `json:"transfer_line_id,omitempty" validate:"omitempty,uuid"`
	ProductID      string           `json:"product_id,omitempty" validate:"omitempty,uuid"`
	QuantityDelta  decimal.Decimal  `json:"quantity_delta"`
	WeightDeltaKg  *decimal.Decimal `json:"weight_delta_kg,omitempty"`
	Notes          string           `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// RaiseDiscrepancyRequest body para POST /api/transfers/:id/discrepancies.
type RaiseDiscrepancyRequest struct {
	Reason string             `json:"reason" validate:"required,oneof=short excess damaged spoiled expired mispick weight_diff other"`
	Notes  string             `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Lines  []RaiseLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ResolveRequest body para POST /api/discrepancies/:id/resolve.
// Disposition aplica a todas las líneas abiertas; Lines permite una disposición por línea.
type ResolveRequest struct {
	Disposition string            `json:"disposition,omitempty" validate:"omitempty,oneof=adjust return scrap quarantine replace"`
	Lines       map[string]string `json:"lines,omitempty" validate:"omitempty,dive,keys,uuid,endkeys,oneof=adjust return scrap quarantine replace"`
}

// DiscrepancyLineResponse salida de una línea de discrepancia.
type DiscrepancyLineResponse struct {
	ID               string           `json:"id"`
	TransferLineID   string           `json:"transfer_line_id"`
	ProductID        string           `json:"product_id"`
	ExpectedQuantity decimal.Decimal  `json:"expected_quantity"`
	ReceivedQuantity decimal.Decimal  `json:"received_quantity"`
	QuantityDelta    decimal.Decimal  `json:"quantity_delta"`
	WeightDeltaKg    *decimal.Decimal `json:"weight_delta_kg,omitempty"`
	DeviationPercent decimal.Decimal  `json:"deviation_percent"`
	Dimension        string           `json:"dimension"`
	Source           string           `json:"source"`
	Disposition      string           `json:"disposition,omitempty"`
	Resolved         bool             `json:"resolved"`
	ResolvedAt       *time.Time       `json:"resolved_at,omitempty"`
	Notes            string           `json:"notes,omitempty"`
}

// DiscrepancyResponse salida de una discrepancia.
type DiscrepancyResponse struct {
	ID         string                    `json:"id"`
	TransferID string                    `json:"transfer_id"`
	Reason     string                    `json:"reason"`
	Status     string                    `json:"status"`
	Notes      string                    `json:"notes,omitempty"`
	RaisedBy   string                    `json:"raised_by"`
	RaisedAt   time.Time                 `json:"raised_at"`
	ResolvedBy string                    `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time                `json:"resolved_at,omitempty"`
	Lines      []DiscrepancyLineResponse `json:"lines"`
	// Warning se informa cuando la resolución ya estaba aplicada.
	Warning string `json:"warning,omitempty"`
}

// NewDiscrepancyResponse mapea la discrepancia de dominio.
func NewDiscrepancyResponse(d *entity.Discrepancy) DiscrepancyResponse {
	out := DiscrepancyResponse{
		ID:         d.ID,
		TransferID: d.TransferID,
		Reason:     string(d.Reason),
		Status:     string(d.Status),
		Notes:      d.Notes,
		RaisedBy:   d.RaisedBy,
		RaisedAt:   d.RaisedAt,
		ResolvedBy: d.ResolvedBy,
		ResolvedAt: d.ResolvedAt,
		Lines:      make([]DiscrepancyLineResponse, 0, len(d.Lines)),
	}
	for _, l := range d.Lines {
		out.Lines = append(out.Lines, DiscrepancyLineResponse{
			ID:               l.ID,
			TransferLineID:   l.TransferLineID,
			ProductID:        l.ProductID,
			ExpectedQuantity: l.ExpectedQuantity,
			ReceivedQuantity: l.ReceivedQuantity,
			QuantityDelta:    l.QuantityDelta,
			WeightDeltaKg:    l.WeightDeltaKg,
			DeviationPercent: l.DeviationPercent,
			Dimension:        string(l.Dimension),
			Source:           string(l.Source),
			Disposition:      string(l.Disposition),
			Resolved:         l.Resolved,
			ResolvedAt:       l.ResolvedAt,
			Notes:            l.Notes,
		})
	}
	return out
}

// AttachDocumentRequest body para POST /api/documents.
type AttachDocumentRequest struct {
	OwnerKind string `json:"owner_kind" validate:"required,oneof=transfer shipment receipt discrepancy"`
	OwnerID   string `json:"owner_id" validate:"required,uuid"`
	Reference string `json:"reference" validate:"required,max=500"`
}

// DocumentResponse salida de una referencia documental.
type DocumentResponse struct {
	ID        string    `json:"id"`
	OwnerKind string    `json:"owner_kind"`
	OwnerID   string    `json:"owner_id"`
	Reference string    `json:"reference"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDocumentResponse mapea el documento de dominio.
func NewDocumentResponse(d *entity.Document) DocumentResponse {
	return DocumentResponse{
		ID:        d.ID,
		OwnerKind: string(d.OwnerKind),
		OwnerID:   d.OwnerID,
		Reference: d.Reference,
		CreatedBy: d.CreatedBy,
		CreatedAt: d.CreatedAt,
	}
}
