package repository

import (
	"context"

	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockRepository define el puerto del cache de stock por producto+sucursal.
// Solo el ledger llama a Increment.
type StockRepository interface {
	// Get devuelve cantidad cero si no hay fila.
	Get(ctx context.Context, productID, branchID string) (*entity.BranchStock, error)
	// Increment suma delta en una sola sentencia y devuelve la cantidad resultante.
	Increment(ctx context.Context, productID, branchID string, delta decimal.Decimal) (decimal.Decimal, error)
	// TotalByProduct suma el stock del producto en todas las sucursales salvo tránsito.
	TotalByProduct(ctx context.Context, productID string) (decimal.Decimal, error)
	ListByBranch(ctx context.Context, branchID string) ([]*entity.BranchStock, error)
}
