package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Traslados-api/internal/application/ports"
	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Traslados-api/internal/domain/inventory"
)

// BatchUseCase registro de lotes: alta con su compra, consumo y vencimiento.
type BatchUseCase struct {
	tx     ports.TxRunner
	ledger *LedgerUseCase
	log    zerolog.Logger
	now    func() time.Time
}

// NewBatchUseCase construye el caso de uso de lotes.
func NewBatchUseCase(tx ports.TxRunner, ledger *LedgerUseCase, log zerolog.Logger) *BatchUseCase {
	return &BatchUseCase{tx: tx, ledger: ledger, log: log, now: time.Now}
}

// CreateBatchInput datos de un lote recibido de proveedor.
type CreateBatchInput struct {
	ProductID     string
	BranchID      string
	Quantity      decimal.Decimal
	PurchasePrice decimal.Decimal
	PurchaseDate  *time.Time
	ExpiryDate    *time.Time
	BatchNumber   string // se genera si está vacío
	Actor         string
}

// GenerateBatchNumber arma un número LOT-AAAAMMDD-xxxxxxxx.
func GenerateBatchNumber(at time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("LOT-%s-%s", at.Format("20060102"), strings.ToUpper(suffix))
}

// CreateBatch crea un lote activo y registra su movimiento de compra.
// Actualiza el costo promedio ponderado del producto.
func (uc *BatchUseCase) CreateBatch(ctx context.Context, in CreateBatchInput) (*entity.Batch, error) {
	if in.ProductID == "" || in.BranchID == "" || in.Actor == "" {
		return nil, domain.Invalid("producto, sucursal y actor son obligatorios")
	}
	if !in.Quantity.IsPositive() {
		return nil, domain.Invalid("la cantidad del lote debe ser mayor a cero")
	}
	if in.PurchasePrice.IsNegative() {
		return nil, domain.Invalid("precio de compra negativo")
	}
	if err := errors.Join(
		domain.CheckScale("cantidad del lote", in.Quantity),
		domain.CheckScale("precio de compra", in.PurchasePrice),
	); err != nil {
		return nil, err
	}
	now := uc.now()
	purchaseDate := now
	if in.PurchaseDate != nil {
		purchaseDate = *in.PurchaseDate
	}
	if in.ExpiryDate != nil && in.ExpiryDate.Before(purchaseDate) {
		return nil, domain.Invalid("vencimiento anterior a la fecha de compra")
	}
	number := strings.TrimSpace(in.BatchNumber)
	if number == "" {
		number = GenerateBatchNumber(now)
	}

	batch := &entity.Batch{
		ID:              uuid.New().String(),
		BatchNumber:     number,
		ProductID:       in.ProductID,
		BranchID:        in.BranchID,
		InitialQuantity: in.Quantity,
		CurrentQuantity: in.Quantity,
		PurchasePrice:   in.PurchasePrice,
		PurchaseDate:    purchaseDate,
		ExpiryDate:      in.ExpiryDate,
		Status:          entity.BatchStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		branch, err := r.Branches.GetByID(ctx, in.BranchID)
		if err != nil {
			return err
		}
		if branch == nil {
			return domain.NotFound("sucursal %s", in.BranchID)
		}
		if branch.IsTransit() {
			return domain.Invalid("no se crean lotes en la sucursal de tránsito")
		}
		product, err := r.Products.GetByID(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NotFound("producto %s", in.ProductID)
		}
		total, err := r.Stock.TotalByProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}
		cost := domaininv.AverageCost(total, product.Cost, in.Quantity, in.PurchasePrice)
		if err := r.Products.UpdateCost(ctx, in.ProductID, cost); err != nil {
			return err
		}
		if err := r.Batches.Create(ctx, batch); err != nil {
			return err
		}
		_, err = uc.ledger.RecordInTx(ctx, r, MovementInput{
			ProductID:     in.ProductID,
			BranchID:      in.BranchID,
			BatchID:       batch.ID,
			Type:          entity.MovementPurchase,
			Quantity:      in.Quantity,
			UnitPrice:     in.PurchasePrice,
			Actor:         in.Actor,
			Notes:         "ingreso de lote " + number,
			ReferenceType: entity.ReferenceBatch,
			ReferenceID:   batch.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("batch_id", batch.ID).
		Str("batch_number", batch.BatchNumber).
		Str("quantity", batch.InitialQuantity.String()).
		Msg("lote creado")
	return batch, nil
}

// ConsumeFromBatch descuenta quantity del saldo del lote. No registra movimientos:
// el caller decide el asiento de stock correspondiente.
func (uc *BatchUseCase) ConsumeFromBatch(ctx context.Context, batchID string, quantity decimal.Decimal) (*entity.Batch, error) {
	var batch *entity.Batch
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		batch, err = r.Batches.GetForUpdate(ctx, batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return domain.NotFound("lote %s", batchID)
		}
		return uc.ConsumeInTx(ctx, r, batch, quantity)
	})
	if err != nil {
		return nil, err
	}
	return batch, nil
}

// ConsumeInTx consume un lote ya bloqueado dentro de la transacción del caller.
func (uc *BatchUseCase) ConsumeInTx(ctx context.Context, r ports.Repos, batch *entity.Batch, quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return domain.Invalid("la cantidad a consumir debe ser mayor a cero")
	}
	if err := domain.CheckScale("cantidad a consumir", quantity); err != nil {
		return err
	}
	if batch.IsTerminal() {
		return domain.InvalidState("consumir lote", batch.Status)
	}
	if !batch.Consume(quantity, uc.now()) {
		return fmt.Errorf("%w: lote %s tiene %s, se pidieron %s",
			domain.ErrOverConsumption, batch.BatchNumber, batch.CurrentQuantity, quantity)
	}
	return r.Batches.Update(ctx, batch)
}

// WriteOffRecommendation sugerencia de baja para un lote vencido; no mueve stock.
type WriteOffRecommendation struct {
	BatchID        string
	BatchNumber    string
	ProductID      string
	BranchID       string
	Remaining      decimal.Decimal
	EstimatedValue decimal.Decimal
	ExpiryDate     time.Time
}

// ExpireBatches marca expired los lotes activos vencidos antes de asOf y
// devuelve las recomendaciones de baja para los que conservan saldo.
func (uc *BatchUseCase) ExpireBatches(ctx context.Context, asOf time.Time) ([]WriteOffRecommendation, error) {
	var recs []WriteOffRecommendation
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		batches, err := r.Batches.ListExpiredActive(ctx, asOf)
		if err != nil {
			return err
		}
		for _, b := range batches {
			b.Status = entity.BatchStatusExpired
			b.UpdatedAt = uc.now()
			if err := r.Batches.Update(ctx, b); err != nil {
				return err
			}
			if !b.CurrentQuantity.IsPositive() {
				continue
			}
			recs = append(recs, WriteOffRecommendation{
				BatchID:        b.ID,
				BatchNumber:    b.BatchNumber,
				ProductID:      b.ProductID,
				BranchID:       b.BranchID,
				Remaining:      b.CurrentQuantity,
				EstimatedValue: b.Value(),
				ExpiryDate:     *b.ExpiryDate,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Time("as_of", asOf).Int("recommendations", len(recs)).Msg("lotes vencidos")
	return recs, nil
}

// ListBatches lista lotes por producto y/o sucursal.
func (uc *BatchUseCase) ListBatches(ctx context.Context, productID, branchID string) ([]*entity.Batch, error) {
	var out []*entity.Batch
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		out, err = r.Batches.List(ctx, productID, branchID)
		return err
	})
	return out, err
}
