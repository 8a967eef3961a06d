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

var (
	_ repository.LossRepository       = (*LossRepo)(nil)
	_ repository.QuarantineRepository = (*QuarantineRepo)(nil)
)

// LossRepo pérdidas valorizadas.
type LossRepo struct {
	q Querier
}

func NewLossRepository(q Querier) *LossRepo {
	return &LossRepo{q: q}
}

func (r *LossRepo) Create(ctx context.Context, l *entity.LossRecord) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO loss_records (id, discrepancy_id, product_id, branch_id, quantity, unit_cost, amount, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.DiscrepancyID, l.ProductID, l.BranchID, l.Quantity, l.UnitCost, l.Amount, l.Actor, l.CreatedAt,
	)
	if err != nil {
		return mapError("insert loss record", err)
	}
	return nil
}

func (r *LossRepo) ListByDiscrepancy(ctx context.Context, discrepancyID string) ([]*entity.LossRecord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, discrepancy_id, product_id, branch_id, quantity, unit_cost, amount, actor, created_at
		FROM loss_records WHERE discrepancy_id = $1 ORDER BY created_at, id`, discrepancyID)
	if err != nil {
		return nil, fmt.Errorf("list loss records: %w", err)
	}
	defer rows.Close()
	var out []*entity.LossRecord
	for rows.Next() {
		var l entity.LossRecord
		if err := rows.Scan(&l.ID, &l.DiscrepancyID, &l.ProductID, &l.BranchID,
			&l.Quantity, &l.UnitCost, &l.Amount, &l.Actor, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan loss record: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// QuarantineRepo mercancía retenida por sucursal.
type QuarantineRepo struct {
	q Querier
}

func NewQuarantineRepository(q Querier) *QuarantineRepo {
	return &QuarantineRepo{q: q}
}

// Hold registra la entrada y acumula el bucket en la misma transacción.
func (r *QuarantineRepo) Hold(ctx context.Context, e *entity.QuarantineEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO quarantine_entries (id, discrepancy_id, product_id, branch_id, quantity, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.DiscrepancyID, e.ProductID, e.BranchID, e.Quantity, e.Actor, e.CreatedAt,
	)
	if err != nil {
		return mapError("insert quarantine entry", err)
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO quarantine_stock (product_id, branch_id, quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, branch_id)
		DO UPDATE SET quantity = quarantine_stock.quantity + EXCLUDED.quantity, updated_at = EXCLUDED.updated_at`,
		e.ProductID, e.BranchID, e.Quantity, e.CreatedAt,
	)
	if err != nil {
		return mapError("upsert quarantine stock", err)
	}
	return nil
}

func (r *QuarantineRepo) Get(ctx context.Context, productID, branchID string) (decimal.Decimal, error) {
	var qty decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT quantity FROM quarantine_stock WHERE product_id = $1 AND branch_id = $2`,
		productID, branchID,
	).Scan(&qty)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("get quarantine stock: %w", err)
	}
	return qty, nil
}
