// Package transfer implementa el ciclo de vida de los traslados entre sucursales
// y la resolución de sus discrepancias.
package transfer

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Traslados-api/internal/application/inventory"
	"github.com/jhoicas/Traslados-api/internal/application/ports"
	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/domain/reconciliation"
)

// Config opciones de política del motor de traslados.
type Config struct {
	// AllowSkipDelivery permite recibir un traslado despachado sin confirmación de entrega.
	AllowSkipDelivery bool
}

// UseCase orquesta la máquina de estados del traslado y el resolvedor de discrepancias.
// Cada operación corre en una transacción que bloquea primero la fila del traslado.
type UseCase struct {
	tx      ports.TxRunner
	ledger  *inventory.LedgerUseCase
	batches *inventory.BatchUseCase
	locker  ports.Locker
	metrics ports.Metrics
	log     zerolog.Logger
	cfg     Config
	now     func() time.Time
}

// NewUseCase construye el caso de uso. locker y metrics pueden ser nil.
func NewUseCase(
	tx ports.TxRunner,
	ledger *inventory.LedgerUseCase,
	batches *inventory.BatchUseCase,
	locker ports.Locker,
	metrics ports.Metrics,
	log zerolog.Logger,
	cfg Config,
) *UseCase {
	if locker == nil {
		locker = ports.NopLocker{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &UseCase{
		tx:      tx,
		ledger:  ledger,
		batches: batches,
		locker:  locker,
		metrics: metrics,
		log:     log,
		cfg:     cfg,
		now:     time.Now,
	}
}

func lockKey(transferID string) string { return "transfer:" + transferID }

// opState acumula efectos de una operación para reportarlos tras el Commit.
type opState struct {
	movements []entity.MovementType
	products  map[string]*entity.Product
}

// withTransfer toma el lock distribuido, abre la transacción, bloquea el traslado
// (NOWAIT) y ejecuta fn. Devuelve el agregado recargado dentro de la misma transacción.
func (uc *UseCase) withTransfer(
	ctx context.Context,
	id string,
	fn func(r ports.Repos, t *entity.Transfer, st *opState) error,
) (*entity.Transfer, *opState, error) {
	release, err := uc.locker.Lock(ctx, lockKey(id))
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			uc.log.Warn().Err(err).Str("transfer_id", id).Msg("liberar lock de traslado")
		}
	}()

	st := &opState{products: make(map[string]*entity.Product)}
	var out *entity.Transfer
	err = uc.tx.Run(ctx, func(r ports.Repos) error {
		t, err := r.Transfers.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.NotFound("traslado %s", id)
		}
		if t.Discrepancies, err = r.Discrepancies.ListByTransfer(ctx, id); err != nil {
			return err
		}
		if err := fn(r, t, st); err != nil {
			return err
		}
		out, err = loadTransfer(ctx, r, id)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	for _, m := range st.movements {
		uc.metrics.MovementRecorded(string(m))
	}
	return out, st, nil
}

func loadTransfer(ctx context.Context, r ports.Repos, id string) (*entity.Transfer, error) {
	t, err := r.Transfers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NotFound("traslado %s", id)
	}
	if t.Discrepancies, err = r.Discrepancies.ListByTransfer(ctx, id); err != nil {
		return nil, err
	}
	return t, nil
}

func (st *opState) product(ctx context.Context, r ports.Repos, id string) (*entity.Product, error) {
	if p, ok := st.products[id]; ok {
		return p, nil
	}
	p, err := r.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.NotFound("producto %s", id)
	}
	st.products[id] = p
	return p, nil
}

// postingRef origen documental y lote de un grupo de asientos.
type postingRef struct {
	refType entity.ReferenceType
	refID   string
	actor   string
	// batchByBranch lote a asociar al asiento de cada sucursal.
	batchByBranch map[string]string
}

// post registra los asientos planificados en el ledger, valorizados al costo del producto.
func (uc *UseCase) post(
	ctx context.Context,
	r ports.Repos,
	st *opState,
	productID string,
	postings []reconciliation.Posting,
	ref postingRef,
) error {
	if len(postings) == 0 {
		return nil
	}
	product, err := st.product(ctx, r, productID)
	if err != nil {
		return err
	}
	for _, p := range postings {
		_, err := uc.ledger.RecordInTx(ctx, r, inventory.MovementInput{
			ProductID:     productID,
			BranchID:      p.BranchID,
			BatchID:       ref.batchByBranch[p.BranchID],
			Type:          p.Type,
			Quantity:      p.Quantity,
			UnitPrice:     product.Cost,
			Actor:         ref.actor,
			Notes:         p.Notes,
			ReferenceType: ref.refType,
			ReferenceID:   ref.refID,
		})
		if err != nil {
			return err
		}
		st.movements = append(st.movements, p.Type)
	}
	return nil
}

func routeOf(t *entity.Transfer) reconciliation.Route {
	return reconciliation.Route{
		Origin:      t.OriginBranchID,
		Destination: t.DestinationBranchID,
		Transit:     entity.TransitBranchID,
	}
}

// attachDocuments guarda referencias documentales de un registro.
func (uc *UseCase) attachDocuments(
	ctx context.Context,
	r ports.Repos,
	kind entity.AttachableKind,
	ownerID string,
	refs []string,
	actor string,
) error {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		doc := newDocument(kind, ownerID, ref, actor, uc.now())
		if err := r.Documents.Create(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

func (uc *UseCase) logTransition(t *entity.Transfer, actor string) {
	uc.metrics.TransferTransition(string(t.Status))
	uc.log.Info().
		Str("transfer_id", t.ID).
		Str("status", string(t.Status)).
		Str("actor", actor).
		Msg("traslado actualizado")
}
