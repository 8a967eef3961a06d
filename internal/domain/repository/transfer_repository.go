package repository

import (
	"context"

	"github.com/jhoicas/Traslados-api/internal/domain/entity"
)

// TransferFilter filtros para listar traslados.
type TransferFilter struct {
	BranchID      string // origen o destino
	Status        entity.TransferStatus
	Limit, Offset int
}

// TransferRepository define el puerto de persistencia del agregado Transfer.
// GetByID y GetForUpdate cargan líneas, shipment y receipt; no cargan discrepancias.
type TransferRepository interface {
	Create(ctx context.Context, transfer *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
	// GetForUpdate bloquea la fila sin esperar (FOR UPDATE NOWAIT).
	// Un bloqueo tomado por otra transacción devuelve domain.ErrConcurrentModification.
	GetForUpdate(ctx context.Context, id string) (*entity.Transfer, error)
	UpdateStatus(ctx context.Context, transfer *entity.Transfer) error
	UpdateLineReceipt(ctx context.Context, line *entity.TransferLine) error
	CreateShipment(ctx context.Context, shipment *entity.Shipment) error
	CreateReceipt(ctx context.Context, receipt *entity.Receipt) error
	List(ctx context.Context, filter TransferFilter) ([]*entity.Transfer, error)
}
