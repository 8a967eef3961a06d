package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Traslados-api/internal/application/ports"
	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/domain/repository"
)

// LedgerUseCase es el único punto de escritura del stock: cada cambio de cantidad
// agrega un movimiento inmutable y actualiza el cache en la misma transacción.
type LedgerUseCase struct {
	tx      ports.TxRunner
	metrics ports.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

// NewLedgerUseCase construye el ledger. metrics puede ser nil.
func NewLedgerUseCase(tx ports.TxRunner, metrics ports.Metrics, log zerolog.Logger) *LedgerUseCase {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &LedgerUseCase{tx: tx, metrics: metrics, log: log, now: time.Now}
}

// MovementInput entrada para registrar un movimiento. Quantity lleva signo.
type MovementInput struct {
	ProductID     string
	BranchID      string
	BatchID       string
	Type          entity.MovementType
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	Actor         string
	Notes         string
	AllowNegative bool // solo para asientos de corrección
	ReferenceType entity.ReferenceType
	ReferenceID   string
}

// RecordMovement registra un movimiento en su propia transacción y devuelve su ID.
func (uc *LedgerUseCase) RecordMovement(ctx context.Context, in MovementInput) (string, error) {
	var mov *entity.StockMovement
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		mov, err = uc.RecordInTx(ctx, r, in)
		return err
	})
	if err != nil {
		return "", err
	}
	uc.metrics.MovementRecorded(string(mov.Type))
	uc.log.Info().
		Str("movement_id", mov.ID).
		Str("product_id", mov.ProductID).
		Str("branch_id", mov.BranchID).
		Str("type", string(mov.Type)).
		Str("quantity", mov.Quantity.String()).
		Msg("movimiento registrado")
	return mov.ID, nil
}

// RecordInTx registra el movimiento con los repositorios de la transacción del caller.
// Un error deja la transacción en estado a revertir; el caller no debe hacer Commit.
func (uc *LedgerUseCase) RecordInTx(ctx context.Context, r ports.Repos, in MovementInput) (*entity.StockMovement, error) {
	if err := validateMovement(in); err != nil {
		return nil, err
	}
	product, err := r.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NotFound("producto %s", in.ProductID)
	}
	branch, err := r.Branches.GetByID(ctx, in.BranchID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, domain.NotFound("sucursal %s", in.BranchID)
	}

	newQty, err := r.Stock.Increment(ctx, in.ProductID, in.BranchID, in.Quantity)
	if err != nil {
		return nil, err
	}
	if in.Type.IsReduction() && newQty.IsNegative() && !in.AllowNegative {
		return nil, domain.Insufficient(in.ProductID, in.BranchID, newQty.Sub(in.Quantity), in.Quantity.Neg())
	}

	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		ProductID:     in.ProductID,
		BranchID:      in.BranchID,
		BatchID:       in.BatchID,
		Type:          in.Type,
		Quantity:      in.Quantity,
		UnitPrice:     in.UnitPrice,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Actor:         in.Actor,
		Notes:         in.Notes,
		CreatedAt:     uc.now(),
	}
	if err := r.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

func validateMovement(in MovementInput) error {
	if in.ProductID == "" || in.BranchID == "" {
		return domain.Invalid("producto y sucursal son obligatorios")
	}
	if in.Actor == "" {
		return domain.Invalid("actor obligatorio")
	}
	if in.UnitPrice.IsNegative() {
		return domain.Invalid("precio unitario negativo")
	}
	if err := errors.Join(
		domain.CheckScale("cantidad", in.Quantity),
		domain.CheckScale("precio unitario", in.UnitPrice),
	); err != nil {
		return err
	}
	if !in.ReferenceType.IsValid() {
		return domain.Invalid("tipo de referencia desconocido: %s", in.ReferenceType)
	}
	if !in.Type.IsValid() {
		return domain.InvalidMovementf("tipo desconocido: %s", in.Type)
	}
	if !in.Type.AcceptsSign(in.Quantity) {
		return domain.InvalidMovementf("cantidad %s no válida para %s", in.Quantity, in.Type)
	}
	return nil
}

// CurrentStock devuelve la cantidad cacheada de producto+sucursal.
func (uc *LedgerUseCase) CurrentStock(ctx context.Context, productID, branchID string) (*entity.BranchStock, error) {
	if productID == "" || branchID == "" {
		return nil, domain.Invalid("producto y sucursal son obligatorios")
	}
	var out *entity.BranchStock
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		out, err = r.Stock.Get(ctx, productID, branchID)
		return err
	})
	return out, err
}

// ListMovements lista movimientos del ledger, más recientes primero.
func (uc *LedgerUseCase) ListMovements(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	if f.Limit <= 0 || f.Limit > 500 {
		f.Limit = 100
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	var out []*entity.StockMovement
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		out, err = r.Movements.List(ctx, f)
		return err
	})
	return out, err
}

// Consistency compara el cache contra la suma del ledger.
type Consistency struct {
	ProductID string
	BranchID  string
	Cached    decimal.Decimal
	LedgerSum decimal.Decimal
	Drift     decimal.Decimal // Cached - LedgerSum; cero si el invariante se cumple
}

// Consistent indica si el cache coincide con el ledger.
func (c Consistency) Consistent() bool { return c.Drift.IsZero() }

// VerifyConsistency audita el invariante cache = suma de movimientos.
func (uc *LedgerUseCase) VerifyConsistency(ctx context.Context, productID, branchID string) (*Consistency, error) {
	if productID == "" || branchID == "" {
		return nil, domain.Invalid("producto y sucursal son obligatorios")
	}
	out := &Consistency{ProductID: productID, BranchID: branchID}
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		st, err := r.Stock.Get(ctx, productID, branchID)
		if err != nil {
			return err
		}
		sum, err := r.Movements.Sum(ctx, productID, branchID)
		if err != nil {
			return err
		}
		out.Cached = st.Quantity
		out.LedgerSum = sum
		out.Drift = st.Quantity.Sub(sum)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !out.Consistent() {
		uc.log.Warn().
			Str("product_id", productID).
			Str("branch_id", branchID).
			Str("drift", out.Drift.String()).
			Msg("cache de stock descuadrado respecto al ledger")
	}
	return out, nil
}
