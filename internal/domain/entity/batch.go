package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de lote.
const (
	BatchStatusActive   = "active"
	BatchStatusExpired  = "expired"
	BatchStatusSoldOut  = "sold_out"
	BatchStatusFinished = "finished"
)

// Batch representa un lote de un producto en una sucursal.
// CurrentQuantity nunca es negativa ni supera InitialQuantity.
type Batch struct {
	ID              string
	BatchNumber     string
	ProductID       string
	BranchID        string
	InitialQuantity decimal.Decimal
	CurrentQuantity decimal.Decimal
	PurchasePrice   decimal.Decimal
	PurchaseDate    time.Time
	ExpiryDate      *time.Time
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsTerminal indica si el lote ya no admite consumos.
func (b *Batch) IsTerminal() bool {
	return b.Status == BatchStatusFinished || b.Status == BatchStatusExpired
}

// ExpiredAt indica si el lote vence antes de asOf.
func (b *Batch) ExpiredAt(asOf time.Time) bool {
	return b.ExpiryDate != nil && b.ExpiryDate.Before(asOf)
}

// Consume descuenta qty del saldo. Devuelve false si qty supera el saldo,
// sin modificar el lote. Al llegar a cero el lote queda finished.
func (b *Batch) Consume(qty decimal.Decimal, now time.Time) bool {
	if qty.GreaterThan(b.CurrentQuantity) {
		return false
	}
	b.CurrentQuantity = b.CurrentQuantity.Sub(qty)
	if b.CurrentQuantity.IsZero() {
		b.Status = BatchStatusFinished
	}
	b.UpdatedAt = now
	return true
}

// TopUp suma qty al lote; un lote terminado vuelve a quedar activo.
func (b *Batch) TopUp(qty decimal.Decimal, now time.Time) {
	b.InitialQuantity = b.InitialQuantity.Add(qty)
	b.CurrentQuantity = b.CurrentQuantity.Add(qty)
	if b.Status == BatchStatusFinished {
		b.Status = BatchStatusActive
	}
	b.UpdatedAt = now
}

// Value devuelve el valor del saldo al precio de compra.
func (b *Batch) Value() decimal.Decimal {
	return b.CurrentQuantity.Mul(b.PurchasePrice)
}
