package repository

import (
	"context"

	"github.com/jhoicas/Traslados-api/internal/domain/entity"
)

// DiscrepancyRepository define el puerto de persistencia de discrepancias y sus líneas.
type DiscrepancyRepository interface {
	Create(ctx context.Context, d *entity.Discrepancy) error
	AddLines(ctx context.Context, discrepancyID string, lines []*entity.DiscrepancyLine) error
	GetByID(ctx context.Context, id string) (*entity.Discrepancy, error)
	// GetForUpdate bloquea la fila sin esperar (FOR UPDATE NOWAIT).
	GetForUpdate(ctx context.Context, id string) (*entity.Discrepancy, error)
	ListByTransfer(ctx context.Context, transferID string) ([]*entity.Discrepancy, error)
	Update(ctx context.Context, d *entity.Discrepancy) error
	// ResolveLine marca la línea aplicada solo si seguía abierta;
	// si ya estaba aplicada devuelve domain.ErrAlreadyResolved.
	ResolveLine(ctx context.Context, line *entity.DiscrepancyLine) error
}
