package transfer_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Traslados-api/internal/application/inventory"
	"github.com/jhoicas/Traslados-api/internal/application/ports"
	"github.com/jhoicas/Traslados-api/internal/application/transfer"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/domain/repository"
	"github.com/jhoicas/Traslados-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	originID   = "10000000-0000-0000-0000-000000000001"
	destID     = "10000000-0000-0000-0000-000000000002"
	tomatoID   = "20000000-0000-0000-0000-000000000001"
	onionID    = "20000000-0000-0000-0000-000000000002"
	actor      = "30000000-0000-0000-0000-000000000001"
	transitID  = entity.TransitBranchID
	unitCost   = "2"
	startStock = "500"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decp(s string) *decimal.Decimal {
	v := dec(s)
	return &v
}

type fixture struct {
	t       *testing.T
	ctx     context.Context
	store   *memory.Store
	ledger  *inventory.LedgerUseCase
	batches *inventory.BatchUseCase
	uc      *transfer.UseCase
	metrics *countingMetrics
}

// countingMetrics cuenta las llamadas al puerto de métricas.
type countingMetrics struct {
	mu            sync.Mutex
	transitions   map[string]int
	discrepancies map[string]int
	dispositions  map[string]int
	movements     int
}

func (m *countingMetrics) TransferTransition(s string) { m.inc(func() { m.transitions[s]++ }) }
func (m *countingMetrics) DiscrepancyRaised(r string)  { m.inc(func() { m.discrepancies[r]++ }) }
func (m *countingMetrics) DispositionApplied(d string) { m.inc(func() { m.dispositions[d]++ }) }
func (m *countingMetrics) MovementRecorded(string)     { m.inc(func() { m.movements++ }) }

func (m *countingMetrics) inc(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
}

func newFixture(t *testing.T, cfg transfer.Config) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	log := zerolog.Nop()
	metrics := &countingMetrics{
		transitions:   map[string]int{},
		discrepancies: map[string]int{},
		dispositions:  map[string]int{},
	}
	ledger := inventory.NewLedgerUseCase(store, metrics, log)
	batches := inventory.NewBatchUseCase(store, ledger, log)
	uc := transfer.NewUseCase(store, ledger, batches, nil, metrics, log, cfg)

	now := time.Now()
	err := store.Run(ctx, func(r ports.Repos) error {
		for _, b := range []*entity.Branch{
			{ID: originID, Code: "BOD-01", Name: "Bodega central", Kind: entity.BranchKindWarehouse, CreatedAt: now, UpdatedAt: now},
			{ID: destID, Code: "TDA-07", Name: "Tienda norte", Kind: entity.BranchKindStore, CreatedAt: now, UpdatedAt: now},
		} {
			if err := r.Branches.Create(ctx, b); err != nil {
				return err
			}
		}
		for _, p := range []*entity.Product{
			{ID: tomatoID, SKU: "TOM-01", Name: "Tomate", UnitMeasure: "kg", Price: dec("3"), Cost: dec(unitCost), CreatedAt: now, UpdatedAt: now},
			{ID: onionID, SKU: "CEB-01", Name: "Cebolla", UnitMeasure: "kg", Price: dec("3"), Cost: dec(unitCost), CreatedAt: now, UpdatedAt: now},
		} {
			if err := r.Products.Create(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	f := &fixture{t: t, ctx: ctx, store: store, ledger: ledger, batches: batches, uc: uc, metrics: metrics}
	for _, p := range []string{tomatoID, onionID} {
		_, err := ledger.RecordMovement(ctx, inventory.MovementInput{
			ProductID: p, BranchID: originID, Type: entity.MovementPurchase,
			Quantity: dec(startStock), UnitPrice: dec(unitCost), Actor: actor,
		})
		require.NoError(t, err)
	}
	return f
}

func (f *fixture) stock(productID, branchID string) decimal.Decimal {
	f.t.Helper()
	st, err := f.ledger.CurrentStock(f.ctx, productID, branchID)
	require.NoError(f.t, err)
	return st.Quantity
}

func (f *fixture) requireStock(productID, branchID, want string) {
	f.t.Helper()
	got := f.stock(productID, branchID)
	require.True(f.t, dec(want).Equal(got), "stock %s en %s: esperado %s, obtenido %s", productID, branchID, want, got)
}

func (f *fixture) movementCount() int {
	f.t.Helper()
	movs, err := f.ledger.ListMovements(f.ctx, repository.MovementFilter{Limit: 500})
	require.NoError(f.t, err)
	return len(movs)
}

// requireConsistent verifica cache = suma del ledger en todas las sucursales.
func (f *fixture) requireConsistent() {
	f.t.Helper()
	for _, p := range []string{tomatoID, onionID} {
		for _, b := range []string{originID, destID, transitID} {
			c, err := f.ledger.VerifyConsistency(f.ctx, p, b)
			require.NoError(f.t, err)
			require.True(f.t, c.Consistent(), "descuadre en %s/%s: %s", p, b, c.Drift)
		}
	}
}

type line struct {
	product  string
	expected string
	weight   string
	batch    string
}

func (f *fixture) create(lines ...line) *entity.Transfer {
	f.t.Helper()
	in := transfer.CreateInput{OriginBranchID: originID, DestinationBranchID: destID, Actor: actor}
	for _, l := range lines {
		li := transfer.LineInput{ProductID: l.product, ExpectedQuantity: dec(l.expected), BatchNumber: l.batch}
		if l.weight != "" {
			li.ExpectedWeightKg = decp(l.weight)
		}
		in.Lines = append(in.Lines, li)
	}
	tr, err := f.uc.CreateTransfer(f.ctx, in)
	require.NoError(f.t, err)
	return tr
}

func (f *fixture) dispatched(lines ...line) *entity.Transfer {
	f.t.Helper()
	tr := f.create(lines...)
	_, err := f.uc.ApproveTransfer(f.ctx, tr.ID, actor)
	require.NoError(f.t, err)
	tr, err = f.uc.DispatchTransfer(f.ctx, tr.ID, transfer.ShipmentInput{
		Transporter: "Transportes del Valle", VehicleNumber: "ABC123",
		GrossKg: dec("1200"), TareKg: dec("200"), Actor: actor,
	})
	require.NoError(f.t, err)
	return tr
}

func (f *fixture) delivered(lines ...line) *entity.Transfer {
	f.t.Helper()
	tr := f.dispatched(lines...)
	tr, err := f.uc.MarkDelivered(f.ctx, tr.ID, actor)
	require.NoError(f.t, err)
	return tr
}

type received struct {
	qty    string
	weight string
}

func receiptFor(tr *entity.Transfer, tolerance string, got ...received) transfer.ReceiptInput {
	in := transfer.ReceiptInput{TolerancePercent: dec(tolerance), Actor: actor}
	for i, l := range tr.Lines {
		rl := transfer.ReceiptLineInput{TransferLineID: l.ID, ReceivedQuantity: dec(got[i].qty)}
		if got[i].weight != "" {
			rl.ReceivedWeightKg = decp(got[i].weight)
		}
		in.Lines = append(in.Lines, rl)
	}
	return in
}

func (f *fixture) receive(tr *entity.Transfer, tolerance string, got ...received) *entity.Transfer {
	f.t.Helper()
	out, err := f.uc.ReceiveTransfer(f.ctx, tr.ID, receiptFor(tr, tolerance, got...))
	require.NoError(f.t, err)
	return out
}

func batchAtOrigin(number, qty string) inventory.CreateBatchInput {
	return inventory.CreateBatchInput{
		ProductID: tomatoID, BranchID: originID, Quantity: dec(qty),
		PurchasePrice: dec(unitCost), BatchNumber: number, Actor: actor,
	}
}
