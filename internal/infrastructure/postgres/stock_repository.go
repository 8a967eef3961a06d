package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo cache de stock por producto+sucursal sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get obtiene el stock actual de un producto en una sucursal.
func (r *StockRepo) Get(ctx context.Context, productID, branchID string) (*entity.BranchStock, error) {
	query := `
		SELECT product_id, branch_id, quantity, updated_at
		FROM branch_stock WHERE product_id = $1 AND branch_id = $2`
	var s entity.BranchStock
	err := r.q.QueryRow(ctx, query, productID, branchID).Scan(
		&s.ProductID, &s.BranchID, &s.Quantity, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &entity.BranchStock{ProductID: productID, BranchID: branchID, Quantity: decimal.Zero}, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return &s, nil
}

// Increment suma delta en una sola sentencia; la fila queda bloqueada hasta el fin de la transacción.
func (r *StockRepo) Increment(ctx context.Context, productID, branchID string, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		INSERT INTO branch_stock (product_id, branch_id, quantity, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (product_id, branch_id)
		DO UPDATE SET quantity = branch_stock.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING quantity`
	var qty decimal.Decimal
	if err := r.q.QueryRow(ctx, query, productID, branchID, delta).Scan(&qty); err != nil {
		return decimal.Zero, mapError("increment stock", err)
	}
	return qty, nil
}

// TotalByProduct suma el stock del producto en todas las sucursales salvo tránsito.
func (r *StockRepo) TotalByProduct(ctx context.Context, productID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM branch_stock
		WHERE product_id = $1 AND branch_id <> $2`,
		productID, entity.TransitBranchID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total stock: %w", err)
	}
	return total, nil
}

// ListByBranch lista el stock de una sucursal.
func (r *StockRepo) ListByBranch(ctx context.Context, branchID string) ([]*entity.BranchStock, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, branch_id, quantity, updated_at
		FROM branch_stock WHERE branch_id = $1 ORDER BY product_id`, branchID)
	if err != nil {
		return nil, fmt.Errorf("list stock: %w", err)
	}
	defer rows.Close()
	var out []*entity.BranchStock
	for rows.Next() {
		var s entity.BranchStock
		if err := rows.Scan(&s.ProductID, &s.BranchID, &s.Quantity, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
