package ports

import (
	"context"

	"github.com/jhoicas/Traslados-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Branches      repository.BranchRepository
	Products      repository.ProductRepository
	Stock         repository.StockRepository
	Movements     repository.StockMovementRepository
	Batches       repository.BatchRepository
	Transfers     repository.TransferRepository
	Discrepancies repository.DiscrepancyRepository
	Losses        repository.LossRepository
	Quarantine    repository.QuarantineRepository
	Documents     repository.DocumentRepository
}

// TxRunner ejecuta fn dentro de una transacción, pasando repositorios atados a ella.
// Si fn devuelve error se hace Rollback y ningún cambio queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(r Repos) error) error
}
