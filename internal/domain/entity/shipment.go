package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shipment registro físico del despacho; se crea una sola vez por traslado.
type Shipment struct {
	ID            string
	TransferID    string
	Transporter   string
	VehicleNumber string
	LRNumber      string
	SealNumber    string
	GrossKg       decimal.Decimal
	TareKg        decimal.Decimal
	NetKg         decimal.Decimal
	DispatchedAt  time.Time
	Documents     []string // referencias; se persisten como Document de tipo shipment
	CreatedBy     string
	CreatedAt     time.Time
}

// Receipt registro de llegada; se crea una sola vez por traslado.
type Receipt struct {
	ID               string
	TransferID       string
	ArrivedAt        time.Time
	ReweighGrossKg   *decimal.Decimal
	ReweighTareKg    *decimal.Decimal
	ReweighNetKg     *decimal.Decimal
	TolerancePercent decimal.Decimal
	ReceivedBy       string
	CreatedAt        time.Time
	Lines            []ReceiptLine
}

// ReceiptLine cantidades re-pesadas de una línea del traslado.
type ReceiptLine struct {
	TransferLineID   string
	ReceivedQuantity decimal.Decimal
	ReceivedWeightKg *decimal.Decimal
}
