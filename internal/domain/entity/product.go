package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o SKU. Cost es el costo de valoración usado
// como precio unitario de los movimientos y para valorizar pérdidas.
type Product struct {
	ID          string
	SKU         string
	Name        string
	UnitMeasure string // unit, kg, ...
	Price       decimal.Decimal
	Cost        decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
