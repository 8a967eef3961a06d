package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo de movimiento del ledger de stock.
type MovementType string

const (
	MovementPurchase    MovementType = "purchase"
	MovementSale        MovementType = "sale"
	MovementLoss        MovementType = "loss"
	MovementTransferOut MovementType = "transfer_out"
	MovementTransferIn  MovementType = "transfer_in"
	MovementAdjustment  MovementType = "adjustment"
)

// IsValid indica si el tipo pertenece al conjunto cerrado de movimientos.
func (t MovementType) IsValid() bool {
	switch t {
	case MovementPurchase, MovementSale, MovementLoss,
		MovementTransferOut, MovementTransferIn, MovementAdjustment:
		return true
	}
	return false
}

// IsReduction indica si el tipo representa una salida de stock.
// Las salidas no pueden dejar el stock en negativo salvo autorización explícita.
func (t MovementType) IsReduction() bool {
	return t == MovementSale || t == MovementLoss || t == MovementTransferOut
}

// AcceptsSign valida el signo de la cantidad para el tipo.
func (t MovementType) AcceptsSign(qty decimal.Decimal) bool {
	switch {
	case qty.IsZero():
		return false
	case t == MovementAdjustment:
		return true
	case t.IsReduction():
		return qty.IsNegative()
	default:
		return qty.IsPositive()
	}
}

// ReferenceType tipo de documento que origina un movimiento.
type ReferenceType string

const (
	ReferenceTransfer    ReferenceType = "transfer"
	ReferenceDiscrepancy ReferenceType = "discrepancy"
	ReferenceBatch       ReferenceType = "batch"
	ReferenceManual      ReferenceType = "manual"
)

// StockMovement es un asiento inmutable del ledger. Nunca se actualiza ni se borra;
// las correcciones se hacen con nuevos movimientos.
type StockMovement struct {
	ID            string
	ProductID     string
	BranchID      string
	BatchID       string // vacío si no aplica
	Type          MovementType
	Quantity      decimal.Decimal // con signo
	UnitPrice     decimal.Decimal
	ReferenceType ReferenceType
	ReferenceID   string
	Actor         string
	Notes         string
	CreatedAt     time.Time
}

// IsValid indica si la referencia pertenece al conjunto cerrado; vacío se admite.
func (r ReferenceType) IsValid() bool {
	switch r {
	case "", ReferenceTransfer, ReferenceDiscrepancy, ReferenceBatch, ReferenceManual:
		return true
	}
	return false
}
