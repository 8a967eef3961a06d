package entity

import "time"

// Tipos de sucursal.
const (
	BranchKindStore     = "store"
	BranchKindWarehouse = "warehouse"
	BranchKindTransit   = "transit" // ubicación lógica de mercancía en tránsito
)

// TransitBranchID identifica la sucursal de sistema que contabiliza el stock en tránsito.
// La crea la migración inicial; no admite traslados propios.
const TransitBranchID = "00000000-0000-0000-0000-00000000d157"

// Branch representa una sucursal o bodega física donde se almacena inventario.
type Branch struct {
	ID        string
	Code      string
	Name      string
	Address   string
	Kind      string // store, warehouse, transit
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsTransit indica si la sucursal es la ubicación lógica de tránsito.
func (b *Branch) IsTransit() bool {
	return b.Kind == BranchKindTransit || b.ID == TransitBranchID
}
