package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo lotes sobre PostgreSQL.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes.
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

const batchColumns = `id, batch_number, product_id, branch_id, initial_quantity, current_quantity,
	purchase_price, purchase_date, expiry_date, status, created_at, updated_at`

func scanBatch(row pgx.Row) (*entity.Batch, error) {
	var b entity.Batch
	err := row.Scan(
		&b.ID, &b.BatchNumber, &b.ProductID, &b.BranchID, &b.InitialQuantity, &b.CurrentQuantity,
		&b.PurchasePrice, &b.PurchaseDate, &b.ExpiryDate, &b.Status, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BatchRepo) getOne(ctx context.Context, op, query string, args ...any) (*entity.Batch, error) {
	b, err := scanBatch(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(op, err)
	}
	return b, nil
}

func (r *BatchRepo) Create(ctx context.Context, b *entity.Batch) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO batches (`+batchColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.BatchNumber, b.ProductID, b.BranchID, b.InitialQuantity, b.CurrentQuantity,
		b.PurchasePrice, b.PurchaseDate, b.ExpiryDate, b.Status, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Invalid("lote %s ya existe", b.BatchNumber)
		}
		return mapError("insert batch", err)
	}
	return nil
}

func (r *BatchRepo) GetByID(ctx context.Context, id string) (*entity.Batch, error) {
	return r.getOne(ctx, "get batch", `SELECT `+batchColumns+` FROM batches WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila del lote hasta el fin de la transacción.
func (r *BatchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Batch, error) {
	return r.getOne(ctx, "get batch for update", `SELECT `+batchColumns+` FROM batches WHERE id = $1 FOR UPDATE`, id)
}

func (r *BatchRepo) GetByNumberForUpdate(ctx context.Context, batchNumber string) (*entity.Batch, error) {
	return r.getOne(ctx, "get batch by number", `SELECT `+batchColumns+` FROM batches WHERE batch_number = $1 FOR UPDATE`, batchNumber)
}

func (r *BatchRepo) Update(ctx context.Context, b *entity.Batch) error {
	_, err := r.q.Exec(ctx, `
		UPDATE batches SET initial_quantity = $2, current_quantity = $3, status = $4, expiry_date = $5, updated_at = $6
		WHERE id = $1`,
		b.ID, b.InitialQuantity, b.CurrentQuantity, b.Status, b.ExpiryDate, b.UpdatedAt,
	)
	if err != nil {
		return mapError("update batch", err)
	}
	return nil
}

func (r *BatchRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Batch, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	var out []*entity.Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// List filtra por producto y/o sucursal; vacío no filtra. Orden FEFO.
func (r *BatchRepo) List(ctx context.Context, productID, branchID string) ([]*entity.Batch, error) {
	return r.list(ctx, "list batches", `
		SELECT `+batchColumns+` FROM batches
		WHERE ($1 = '' OR product_id::text = $1) AND ($2 = '' OR branch_id::text = $2)
		ORDER BY expiry_date NULLS LAST, created_at`, productID, branchID)
}

func (r *BatchRepo) ListExpiredActive(ctx context.Context, asOf time.Time) ([]*entity.Batch, error) {
	return r.list(ctx, "list expired batches", `
		SELECT `+batchColumns+` FROM batches
		WHERE status = 'active' AND expiry_date IS NOT NULL AND expiry_date < $1
		ORDER BY expiry_date
		FOR UPDATE`, asOf)
}
