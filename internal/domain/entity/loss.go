package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LossRecord pérdida financiera registrada al desechar mercancía.
type LossRecord struct {
	ID            string
	DiscrepancyID string
	ProductID     string
	BranchID      string
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	Amount        decimal.Decimal
	Actor         string
	CreatedAt     time.Time
}

// QuarantineEntry mercancía retenida, no vendible, en una sucursal.
type QuarantineEntry struct {
	ID            string
	DiscrepancyID string
	ProductID     string
	BranchID      string
	Quantity      decimal.Decimal
	Actor         string
	CreatedAt     time.Time
}
