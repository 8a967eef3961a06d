package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BranchStock es el stock cacheado de un producto en una sucursal.
// Solo cambia como efecto de un StockMovement; la fuente de verdad es el ledger.
type BranchStock struct {
	ProductID string
	BranchID  string
	Quantity  decimal.Decimal
	UpdatedAt time.Time
}
