package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo traslados, líneas, despacho y recepción sobre PostgreSQL.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador de traslados.
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, origin_branch_id, destination_branch_id, destination_sub_location, status, notes,
	created_by, created_at, approved_at, dispatched_at, delivered_at, received_at, updated_at`

func scanTransfer(row pgx.Row) (*entity.Transfer, error) {
	var (
		t      entity.Transfer
		status string
	)
	err := row.Scan(
		&t.ID, &t.OriginBranchID, &t.DestinationBranchID, &t.DestinationSubLocation, &status, &t.Notes,
		&t.CreatedBy, &t.CreatedAt, &t.ApprovedAt, &t.DispatchedAt, &t.DeliveredAt, &t.ReceivedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.Status = entity.TransferStatus(status)
	return &t, nil
}

// Create inserta el traslado y sus líneas.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO transfers (`+transferColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		t.ID, t.OriginBranchID, t.DestinationBranchID, t.DestinationSubLocation, string(t.Status), t.Notes,
		t.CreatedBy, t.CreatedAt, t.ApprovedAt, t.DispatchedAt, t.DeliveredAt, t.ReceivedAt, t.UpdatedAt,
	)
	if err != nil {
		return mapError("insert transfer", err)
	}
	for _, l := range t.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO transfer_lines (id, transfer_id, line_no, product_id, expected_quantity,
				expected_weight_kg, batch_number, expiry_date, received_quantity, received_weight_kg)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			l.ID, t.ID, l.LineNo, l.ProductID, l.ExpectedQuantity,
			l.ExpectedWeightKg, l.BatchNumber, l.ExpiryDate, l.ReceivedQuantity, l.ReceivedWeightKg,
		)
		if err != nil {
			return mapError("insert transfer line", err)
		}
	}
	return nil
}

func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1`, id)
}

// GetForUpdate usa NOWAIT: si otra transacción tiene la fila, el error 55P03
// se traduce a domain.ErrConcurrentModification.
func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error) {
	return r.get(ctx, `SELECT `+transferColumns+` FROM transfers WHERE id = $1 FOR UPDATE NOWAIT`, id)
}

func (r *TransferRepo) get(ctx context.Context, query, id string) (*entity.Transfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError("get transfer", err)
	}
	if t.Lines, err = r.lines(ctx, t.ID); err != nil {
		return nil, err
	}
	if t.Shipment, err = r.shipment(ctx, t.ID); err != nil {
		return nil, err
	}
	if t.Receipt, err = r.receipt(ctx, t.ID); err != nil {
		return nil, err
	}
	return t, nil
}

func (r *TransferRepo) lines(ctx context.Context, transferID string) ([]*entity.TransferLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, transfer_id, line_no, product_id, expected_quantity, expected_weight_kg,
			batch_number, expiry_date, received_quantity, received_weight_kg
		FROM transfer_lines WHERE transfer_id = $1 ORDER BY line_no`, transferID)
	if err != nil {
		return nil, fmt.Errorf("list transfer lines: %w", err)
	}
	defer rows.Close()
	var out []*entity.TransferLine
	for rows.Next() {
		var l entity.TransferLine
		if err := rows.Scan(
			&l.ID, &l.TransferID, &l.LineNo, &l.ProductID, &l.ExpectedQuantity, &l.ExpectedWeightKg,
			&l.BatchNumber, &l.ExpiryDate, &l.ReceivedQuantity, &l.ReceivedWeightKg,
		); err != nil {
			return nil, fmt.Errorf("scan transfer line: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

func (r *TransferRepo) shipment(ctx context.Context, transferID string) (*entity.Shipment, error) {
	var sh entity.Shipment
	err := r.q.QueryRow(ctx, `
		SELECT id, transfer_id, transporter, vehicle_number, lr_number, seal_number,
			gross_kg, tare_kg, net_kg, dispatched_at, created_by, created_at
		FROM shipments WHERE transfer_id = $1`, transferID,
	).Scan(
		&sh.ID, &sh.TransferID, &sh.Transporter, &sh.VehicleNumber, &sh.LRNumber, &sh.SealNumber,
		&sh.GrossKg, &sh.TareKg, &sh.NetKg, &sh.DispatchedAt, &sh.CreatedBy, &sh.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get shipment: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT reference FROM documents
		WHERE owner_kind = 'shipment' AND owner_id = $1 ORDER BY created_at, id`, sh.ID)
	if err != nil {
		return nil, fmt.Errorf("list shipment documents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, fmt.Errorf("scan shipment document: %w", err)
		}
		sh.Documents = append(sh.Documents, ref)
	}
	return &sh, rows.Err()
}

func (r *TransferRepo) receipt(ctx context.Context, transferID string) (*entity.Receipt, error) {
	var rc entity.Receipt
	err := r.q.QueryRow(ctx, `
		SELECT id, transfer_id, arrived_at, reweigh_gross_kg, reweigh_tare_kg, reweigh_net_kg,
			tolerance_percent, received_by, created_at
		FROM receipts WHERE transfer_id = $1`, transferID,
	).Scan(
		&rc.ID, &rc.TransferID, &rc.ArrivedAt, &rc.ReweighGrossKg, &rc.ReweighTareKg, &rc.ReweighNetKg,
		&rc.TolerancePercent, &rc.ReceivedBy, &rc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT rl.transfer_line_id, rl.received_quantity, rl.received_weight_kg
		FROM receipt_lines rl
		JOIN transfer_lines tl ON tl.id = rl.transfer_line_id
		WHERE rl.receipt_id = $1 ORDER BY tl.line_no`, rc.ID)
	if err != nil {
		return nil, fmt.Errorf("list receipt lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.ReceiptLine
		if err := rows.Scan(&l.TransferLineID, &l.ReceivedQuantity, &l.ReceivedWeightKg); err != nil {
			return nil, fmt.Errorf("scan receipt line: %w", err)
		}
		rc.Lines = append(rc.Lines, l)
	}
	return &rc, rows.Err()
}

// UpdateStatus persiste el estado y las marcas de tiempo del ciclo de vida.
func (r *TransferRepo) UpdateStatus(ctx context.Context, t *entity.Transfer) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE transfers SET status = $2, approved_at = $3, dispatched_at = $4,
			delivered_at = $5, received_at = $6, updated_at = $7
		WHERE id = $1`,
		t.ID, string(t.Status), t.ApprovedAt, t.DispatchedAt, t.DeliveredAt, t.ReceivedAt, t.UpdatedAt,
	)
	if err != nil {
		return mapError("update transfer status", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NotFound("traslado %s", t.ID)
	}
	return nil
}

func (r *TransferRepo) UpdateLineReceipt(ctx context.Context, l *entity.TransferLine) error {
	_, err := r.q.Exec(ctx, `
		UPDATE transfer_lines SET received_quantity = $2, received_weight_kg = $3 WHERE id = $1`,
		l.ID, l.ReceivedQuantity, l.ReceivedWeightKg,
	)
	if err != nil {
		return mapError("update transfer line", err)
	}
	return nil
}

// CreateShipment inserta el despacho. Las referencias documentales viajan en la tabla documents.
func (r *TransferRepo) CreateShipment(ctx context.Context, sh *entity.Shipment) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO shipments (id, transfer_id, transporter, vehicle_number, lr_number, seal_number,
			gross_kg, tare_kg, net_kg, dispatched_at, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		sh.ID, sh.TransferID, sh.Transporter, sh.VehicleNumber, sh.LRNumber, sh.SealNumber,
		sh.GrossKg, sh.TareKg, sh.NetKg, sh.DispatchedAt, sh.CreatedBy, sh.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.InvalidState("despachar", "con despacho registrado")
		}
		return mapError("insert shipment", err)
	}
	return nil
}

func (r *TransferRepo) CreateReceipt(ctx context.Context, rc *entity.Receipt) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO receipts (id, transfer_id, arrived_at, reweigh_gross_kg, reweigh_tare_kg, reweigh_net_kg,
			tolerance_percent, received_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rc.ID, rc.TransferID, rc.ArrivedAt, rc.ReweighGrossKg, rc.ReweighTareKg, rc.ReweighNetKg,
		rc.TolerancePercent, rc.ReceivedBy, rc.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.InvalidState("recibir", "con recepción registrada")
		}
		return mapError("insert receipt", err)
	}
	for _, l := range rc.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO receipt_lines (receipt_id, transfer_line_id, received_quantity, received_weight_kg)
			VALUES ($1, $2, $3, $4)`,
			rc.ID, l.TransferLineID, l.ReceivedQuantity, l.ReceivedWeightKg,
		)
		if err != nil {
			return mapError("insert receipt line", err)
		}
	}
	return nil
}

// List devuelve traslados sin detalle, del más reciente al más antiguo.
func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	var (
		where []string
		args  []any
	)
	if f.BranchID != "" {
		args = append(args, f.BranchID)
		where = append(where, fmt.Sprintf("(origin_branch_id = $%d OR destination_branch_id = $%d)", len(args), len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `SELECT ` + transferColumns + ` FROM transfers`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, f.Limit, f.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT NULLIF($%d::int, 0) OFFSET $%d", len(args)-1, len(args))

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	var out []*entity.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
