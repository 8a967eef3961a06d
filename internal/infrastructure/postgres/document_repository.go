package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/domain/repository"
)

var _ repository.DocumentRepository = (*DocumentRepo)(nil)

// DocumentRepo referencias documentales polimórficas (owner_kind + owner_id).
type DocumentRepo struct {
	q Querier
}

func NewDocumentRepository(q Querier) *DocumentRepo {
	return &DocumentRepo{q: q}
}

// ownerTables tabla dueña por tipo; owner_id no tiene FK porque apunta a varias tablas.
var ownerTables = map[entity.AttachableKind]string{
	entity.AttachTransfer:    "transfers",
	entity.AttachShipment:    "shipments",
	entity.AttachReceipt:     "receipts",
	entity.AttachDiscrepancy: "discrepancies",
}

func (r *DocumentRepo) Create(ctx context.Context, d *entity.Document) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO documents (id, owner_kind, owner_id, reference, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, string(d.OwnerKind), d.OwnerID, d.Reference, d.CreatedBy, d.CreatedAt,
	)
	if err != nil {
		return mapError("insert document", err)
	}
	return nil
}

func (r *DocumentRepo) ListByOwner(ctx context.Context, kind entity.AttachableKind, ownerID string) ([]*entity.Document, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, owner_kind, owner_id, reference, created_by, created_at
		FROM documents WHERE owner_kind = $1 AND owner_id = $2
		ORDER BY created_at, id`, string(kind), ownerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()
	var out []*entity.Document
	for rows.Next() {
		var (
			d    entity.Document
			kind string
		)
		if err := rows.Scan(&d.ID, &kind, &d.OwnerID, &d.Reference, &d.CreatedBy, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.OwnerKind = entity.AttachableKind(kind)
		out = append(out, &d)
	}
	return out, rows.Err()
}

func (r *DocumentRepo) OwnerExists(ctx context.Context, kind entity.AttachableKind, ownerID string) (bool, error) {
	table, ok := ownerTables[kind]
	if !ok {
		return false, domain.Invalid("tipo de documento desconocido: %s", kind)
	}
	var exists bool
	// table sale de ownerTables, nunca de la entrada del cliente.
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, ownerID).Scan(&exists)
	if err != nil {
		return false, mapError("check document owner", err)
	}
	return exists, nil
}
