package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Traslados-api/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia para lotes.
// Los getters devuelven (nil, nil) si el lote no existe.
type BatchRepository interface {
	Create(ctx context.Context, batch *entity.Batch) error
	GetByID(ctx context.Context, id string) (*entity.Batch, error)
	// GetForUpdate bloquea la fila del lote (SELECT ... FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.Batch, error)
	GetByNumberForUpdate(ctx context.Context, batchNumber string) (*entity.Batch, error)
	Update(ctx context.Context, batch *entity.Batch) error
	List(ctx context.Context, productID, branchID string) ([]*entity.Batch, error)
	// ListExpiredActive bloquea y devuelve lotes activos con vencimiento anterior a asOf.
	ListExpiredActive(ctx context.Context, asOf time.Time) ([]*entity.Batch, error)
}
