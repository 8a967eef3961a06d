package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Traslados-api/internal/domain/entity"
)

// TransferLineRequest línea esperada de un traslado.
type TransferLineRequest struct {
	ProductID        string           `json:"product_id" validate:"required,uuid"`
	ExpectedQuantity decimal.Decimal  `json:"expected_quantity" validate:"dgt0"`
	ExpectedWeightKg *decimal.Decimal `json:"expected_weight_kg,omitempty" validate:"omitempty,dgte0"`
	BatchNumber      string           `json:"batch_number,omitempty" validate:"omitempty,max=60"`
	ExpiryDate       *time.Time       `json:"expiry_date,omitempty"`
}

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	OriginBranchID         string                `json:"origin_branch_id" validate:"required,uuid"`
	DestinationBranchID    string                `json:"destination_branch_id" validate:"required,uuid,nefield=OriginBranchID"`
	DestinationSubLocation string                `json:"destination_sub_location,omitempty" validate:"omitempty,max=120"`
	Notes                  string                `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Lines                  []TransferLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// DispatchRequest body para POST /api/transfers/:id/dispatch.
type DispatchRequest struct {
	Transporter   string           `json:"transporter" validate:"omitempty,max=120"`
	VehicleNumber string           `json:"vehicle_number" validate:"omitempty,max=30"`
	LRNumber      string           `json:"lr_number,omitempty" validate:"omitempty,max=60"`
	SealNumber    string           `json:"seal_number,omitempty" validate:"omitempty,max=60"`
	GrossKg       decimal.Decimal  `json:"gross_kg" validate:"dgte0"`
	TareKg        decimal.Decimal  `json:"tare_kg" validate:"dgte0"`
	NetKg         *decimal.Decimal `json:"net_kg,omitempty" validate:"omitempty,dgte0"`
	DispatchedAt  *time.Time       `json:"dispatched_at,omitempty"`
	Documents     []string         `json:"documents,omitempty" validate:"omitempty,dive,required,max=500"`
}

// ReceiptLineRequest cantidades re-pesadas de una línea.
type ReceiptLineRequest struct {
	TransferLineID   string           `json:"transfer_line_id" validate:"required,uuid"`
	ReceivedQuantity decimal.Decimal  `json:"received_quantity" validate:"dgte0"`
	ReceivedWeightKg *decimal.Decimal `json:"received_weight_kg,omitempty" validate:"omitempty,dgte0"`
}

// ReceiveRequest body para POST /api/transfers/:id/receive.
type ReceiveRequest struct {
	ArrivedAt         *time.Time           `json:"arrived_at,omitempty"`
	ReweighGrossKg    *decimal.Decimal     `json:"reweigh_gross_kg,omitempty" validate:"omitempty,dgte0"`
	ReweighTareKg     *decimal.Decimal     `json:"reweigh_tare_kg,omitempty" validate:"omitempty,dgte0"`
	ReweighNetKg      *decimal.Decimal     `json:"reweigh_net_kg,omitempty" validate:"omitempty,dgte0"`
	TolerancePercent  *decimal.Decimal     `json:"tolerance_percent" validate:"required,dgte0"`
	AllowSkipDelivery bool                 `json:"allow_skip_delivery,omitempty"`
	Lines             []ReceiptLineRequest `json:"lines" validate:"required,min=1,dive"`
	Documents         []string             `json:"documents,omitempty" validate:"omitempty,dive,required,max=500"`
}

// TransferListRequest query de GET /api/transfers.
type TransferListRequest struct {
	BranchID string `query:"branch_id" validate:"omitempty,uuid"`
	Status   string `query:"status" validate:"omitempty,oneof=pending approved dispatched delivered received"`
	PageRequest
}

// TransferLineResponse salida de una línea.
type TransferLineResponse struct {
	ID               string           `json:"id"`
	LineNo           int              `json:"line_no"`
	ProductID        string           `json:"product_id"`
	ExpectedQuantity decimal.Decimal  `json:"expected_quantity"`
	ExpectedWeightKg *decimal.Decimal `json:"expected_weight_kg,omitempty"`
	BatchNumber      string           `json:"batch_number,omitempty"`
	ExpiryDate       *time.Time       `json:"expiry_date,omitempty"`
	ReceivedQuantity *decimal.Decimal `json:"received_quantity,omitempty"`
	ReceivedWeightKg *decimal.Decimal `json:"received_weight_kg,omitempty"`
}

// ShipmentResponse salida del despacho.
type ShipmentResponse struct {
	ID            string          `json:"id"`
	Transporter   string          `json:"transporter"`
	VehicleNumber string          `json:"vehicle_number"`
	LRNumber      string          `json:"lr_number,omitempty"`
	SealNumber    string          `json:"seal_number,omitempty"`
	GrossKg       decimal.Decimal `json:"gross_kg"`
	TareKg        decimal.Decimal `json:"tare_kg"`
	NetKg         decimal.Decimal `json:"net_kg"`
	DispatchedAt  time.Time       `json:"dispatched_at"`
	Documents     []string        `json:"documents,omitempty"`
	CreatedBy     string          `json:"created_by"`
}

// ReceiptResponse salida de la recepción.
type ReceiptResponse struct {
	ID               string           `json:"id"`
	ArrivedAt        time.Time        `json:"arrived_at"`
	ReweighGrossKg   *decimal.Decimal `json:"reweigh_gross_kg,omitempty"`
	ReweighTareKg    *decimal.Decimal `json:"reweigh_tare_kg,omitempty"`
	ReweighNetKg     *decimal.Decimal `json:"reweigh_net_kg,omitempty"`
	TolerancePercent decimal.Decimal  `json:"tolerance_percent"`
	ReceivedBy       string           `json:"received_by"`
}

// TransferResponse agregado completo de un traslado.
type TransferResponse struct {
	ID                     string                 `json:"id"`
	OriginBranchID         string                 `json:"origin_branch_id"`
	DestinationBranchID    string                 `json:"destination_branch_id"`
	DestinationSubLocation string                 `json:"destination_sub_location,omitempty"`
	Status                 string                 `json:"status"`
	Notes                  string                 `json:"notes,omitempty"`
	CreatedBy              string                 `json:"created_by"`
	CreatedAt              time.Time              `json:"created_at"`
	ApprovedAt             *time.Time             `json:"approved_at,omitempty"`
	DispatchedAt           *time.Time             `json:"dispatched_at,omitempty"`
	DeliveredAt            *time.Time             `json:"delivered_at,omitempty"`
	ReceivedAt             *time.Time             `json:"received_at,omitempty"`
	Lines                  []TransferLineResponse `json:"lines"`
	Shipment               *ShipmentResponse      `json:"shipment,omitempty"`
	Receipt                *ReceiptResponse       `json:"receipt,omitempty"`
	Discrepancies          []DiscrepancyResponse  `json:"discrepancies,omitempty"`
}

// TransferListResponse lista paginada de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// NewTransferResponse mapea el agregado de dominio.
func NewTransferResponse(t *entity.Transfer) TransferResponse {
	out := TransferResponse{
		ID:                     t.ID,
		OriginBranchID:         t.OriginBranchID,
		DestinationBranchID:    t.DestinationBranchID,
		DestinationSubLocation: t.DestinationSubLocation,
		Status:                 string(t.Status),
		Notes:                  t.Notes,
		CreatedBy:              t.CreatedBy,
		CreatedAt:              t.CreatedAt,
		ApprovedAt:             t.ApprovedAt,
		DispatchedAt:           t.DispatchedAt,
		DeliveredAt:            t.DeliveredAt,
		ReceivedAt:             t.ReceivedAt,
		Lines:                  make([]TransferLineResponse, 0, len(t.Lines)),
	}
	for _, l := range t.Lines {
		out.Lines = append(out.Lines, TransferLineResponse{
			ID:               l.ID,
			LineNo:           l.LineNo,
			ProductID:        l.ProductID,
			ExpectedQuantity: l.ExpectedQuantity,
			ExpectedWeightKg: l.ExpectedWeightKg,
			BatchNumber:      l.BatchNumber,
			ExpiryDate:       l.ExpiryDate,
			ReceivedQuantity: l.ReceivedQuantity,
			ReceivedWeightKg: l.ReceivedWeightKg,
		})
	}
	if s := t.Shipment; s != nil {
		out.Shipment = &ShipmentResponse{
			ID:            s.ID,
			Transporter:   s.Transporter,
			VehicleNumber: s.VehicleNumber,
			LRNumber:      s.LRNumber,
			SealNumber:    s.SealNumber,
			GrossKg:       s.GrossKg,
			TareKg:        s.TareKg,
			NetKg:         s.NetKg,
			DispatchedAt:  s.DispatchedAt,
			Documents:     s.Documents,
			CreatedBy:     s.CreatedBy,
		}
	}
	if r := t.Receipt; r != nil {
		out.Receipt = &ReceiptResponse{
			ID:               r.ID,
			ArrivedAt:        r.ArrivedAt,
			ReweighGrossKg:   r.ReweighGrossKg,
			ReweighTareKg:    r.ReweighTareKg,
			ReweighNetKg:     r.ReweighNetKg,
			TolerancePercent: r.TolerancePercent,
			ReceivedBy:       r.ReceivedBy,
		}
	}
	for _, d := range t.Discrepancies {
		out.Discrepancies = append(out.Discrepancies, NewDiscrepancyResponse(d))
	}
	return out
}
