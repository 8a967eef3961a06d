package repository

import (
	"context"

	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// LossRepository registra pérdidas financieras.
type LossRepository interface {
	Create(ctx context.Context, loss *entity.LossRecord) error
	ListByDiscrepancy(ctx context.Context, discrepancyID string) ([]*entity.LossRecord, error)
}

// QuarantineRepository bucket de mercancía retenida por producto+sucursal.
type QuarantineRepository interface {
	// Hold registra la entrada y suma la cantidad al bucket.
	Hold(ctx context.Context, entry *entity.QuarantineEntry) error
	Get(ctx context.Context, productID, branchID string) (decimal.Decimal, error)
}
