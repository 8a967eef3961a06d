package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// MovementFilter filtros para listar movimientos; campos vacíos no filtran.
type MovementFilter struct {
	ProductID     string
	BranchID      string
	ReferenceType entity.ReferenceType
	ReferenceID   string
	From, To      *time.Time
	Limit, Offset int
}

// StockMovementRepository define el puerto del ledger append-only (DIP).
// No existe Update ni Delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
	// Sum devuelve la suma de cantidades del ledger para producto+sucursal.
	Sum(ctx context.Context, productID, branchID string) (decimal.Decimal, error)
}
