package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/domain/repository"
)

var _ repository.DiscrepancyRepository = (*DiscrepancyRepo)(nil)

// DiscrepancyRepo discrepancias y sus líneas sobre PostgreSQL.
type DiscrepancyRepo struct {
	q Querier
}

// NewDiscrepancyRepository construye el adaptador de discrepancias.
func NewDiscrepancyRepository(q Querier) *DiscrepancyRepo {
	return &DiscrepancyRepo{q: q}
}

const discrepancyColumns = `id, transfer_id, reason, status, notes, raised_by, raised_at, resolved_by, resolved_at`

func scanDiscrepancy(row pgx.Row) (*entity.Discrepancy, error) {
	var (
		d              entity.Discrepancy
		reason, status string
	)
	if err := row.Scan(&d.ID, &d.TransferID, &reason, &status, &d.Notes,
		&d.RaisedBy, &d.RaisedAt, &d.ResolvedBy, &d.ResolvedAt); err != nil {
		return nil, err
	}
	d.Reason = entity.DiscrepancyReason(reason)
	d.Status = entity.DiscrepancyStatus(status)
	return &d, nil
}

// Create inserta la cabecera y sus líneas. El índice parcial uq_discrepancies_open
// rechaza una segunda discrepancia abierta para el mismo traslado.
func (r *DiscrepancyRepo) Create(ctx context.Context, d *entity.Discrepancy) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO discrepancies (`+discrepancyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.TransferID, string(d.Reason), string(d.Status), d.Notes,
		d.RaisedBy, d.RaisedAt, d.ResolvedBy, d.ResolvedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: el traslado %s ya tiene una discrepancia abierta", domain.ErrConcurrentModification, d.TransferID)
		}
		return mapError("insert discrepancy", err)
	}
	return r.AddLines(ctx, d.ID, d.Lines)
}

func (r *DiscrepancyRepo) AddLines(ctx context.Context, discrepancyID string, lines []*entity.DiscrepancyLine) error {
	for _, l := range lines {
		var disposition *string
		if l.Disposition != "" {
			s := string(l.Disposition)
			disposition = &s
		}
		_, err := r.q.Exec(ctx, `
			INSERT INTO discrepancy_lines (id, discrepancy_id, transfer_line_id, product_id,
				expected_quantity, received_quantity, quantity_delta, weight_delta_kg, deviation_percent,
				dimension, source, disposition, notes, resolved, resolved_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
			l.ID, discrepancyID, l.TransferLineID, l.ProductID,
			l.ExpectedQuantity, l.ReceivedQuantity, l.QuantityDelta, l.WeightDeltaKg, l.DeviationPercent,
			string(l.Dimension), string(l.Source), disposition, l.Notes, l.Resolved, l.ResolvedAt,
		)
		if err != nil {
			return mapError("insert discrepancy line", err)
		}
		l.DiscrepancyID = discrepancyID
	}
	return nil
}

func (r *DiscrepancyRepo) GetByID(ctx context.Context, id string) (*entity.Discrepancy, error) {
	return r.get(ctx, `SELECT `+discrepancyColumns+` FROM discrepancies WHERE id = $1`, id)
}

// GetForUpdate bloquea sin esperar; se llama siempre después de bloquear el traslado.
func (r *DiscrepancyRepo) GetForUpdate(ctx context.Context, id string) (*entity.Discrepancy, error) {
	return r.get(ctx, `SELECT `+discrepancyColumns+` FROM discrepancies WHERE id = $1 FOR UPDATE NOWAIT`, id)
}

func (r *DiscrepancyRepo) get(ctx context.Context, query, id string) (*entity.Discrepancy, error) {
	d, err := scanDiscrepancy(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get discrepancy", err)
	}
	if d.Lines, err = r.lines(ctx, d.ID); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DiscrepancyRepo) lines(ctx context.Context, discrepancyID string) ([]*entity.DiscrepancyLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, discrepancy_id, transfer_line_id, product_id, expected_quantity, received_quantity,
			quantity_delta, weight_delta_kg, deviation_percent, dimension, source,
			COALESCE(disposition, ''), notes, resolved, resolved_at
		FROM discrepancy_lines WHERE discrepancy_id = $1 ORDER BY line_no`, discrepancyID)
	if err != nil {
		return nil, fmt.Errorf("list discrepancy lines: %w", err)
	}
	defer rows.Close()
	var out []*entity.DiscrepancyLine
	for rows.Next() {
		var (
			l                          entity.DiscrepancyLine
			dimension, source, dispose string
		)
		if err := rows.Scan(
			&l.ID, &l.DiscrepancyID, &l.TransferLineID, &l.ProductID, &l.ExpectedQuantity, &l.ReceivedQuantity,
			&l.QuantityDelta, &l.WeightDeltaKg, &l.DeviationPercent, &dimension, &source,
			&dispose, &l.Notes, &l.Resolved, &l.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scan discrepancy line: %w", err)
		}
		l.Dimension = entity.Dimension(dimension)
		l.Source = entity.LineSource(source)
		l.Disposition = entity.Disposition(dispose)
		out = append(out, &l)
	}
	return out, rows.Err()
}

func (r *DiscrepancyRepo) ListByTransfer(ctx context.Context, transferID string) ([]*entity.Discrepancy, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+discrepancyColumns+` FROM discrepancies
		WHERE transfer_id = $1 ORDER BY raised_at, id`, transferID)
	if err != nil {
		return nil, fmt.Errorf("list discrepancies: %w", err)
	}
	var out []*entity.Discrepancy
	for rows.Next() {
		d, err := scanDiscrepancy(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan discrepancy: %w", err)
		}
		out = append(out, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// Las líneas se leen después de cerrar rows: la conexión no admite dos cursores abiertos.
	for _, d := range out {
		if d.Lines, err = r.lines(ctx, d.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Update persiste motivo, notas y cierre de la cabecera.
func (r *DiscrepancyRepo) Update(ctx context.Context, d *entity.Discrepancy) error {
	_, err := r.q.Exec(ctx, `
		UPDATE discrepancies SET reason = $2, status = $3, notes = $4, resolved_by = $5, resolved_at = $6
		WHERE id = $1`,
		d.ID, string(d.Reason), string(d.Status), d.Notes, d.ResolvedBy, d.ResolvedAt,
	)
	if err != nil {
		return mapError("update discrepancy", err)
	}
	return nil
}

// ResolveLine aplica la disposición con un UPDATE condicional; cero filas
// afectadas significa que otra resolución ya la aplicó.
func (r *DiscrepancyRepo) ResolveLine(ctx context.Context, l *entity.DiscrepancyLine) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE discrepancy_lines SET disposition = $2, resolved = true, resolved_at = $3
		WHERE id = $1 AND NOT resolved`,
		l.ID, string(l.Disposition), l.ResolvedAt,
	)
	if err != nil {
		return mapError("resolve discrepancy line", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyResolved
	}
	return nil
}
