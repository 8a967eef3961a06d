package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/Traslados-api/internal/application/inventory"
	"github.com/jhoicas/Traslados-api/internal/application/ports"
	"github.com/jhoicas/Traslados-api/internal/application/transfer"
	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Traslados-api/pkg/config"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test (PostgreSQL real vía testcontainers)
// ──────────────────────────────────────────────────────────────────────────────

const (
	originID = "10000000-0000-0000-0000-000000000001"
	destID   = "10000000-0000-0000-0000-000000000002"
	tomatoID = "20000000-0000-0000-0000-000000000001"
	actor    = "30000000-0000-0000-0000-000000000001"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type pgFixture struct {
	ctx    context.Context
	dsn    string
	pool   *pgxpool.Pool
	tx     *postgres.TxRunner
	ledger *inventory.LedgerUseCase
	uc     *transfer.UseCase
}

func newPGFixture(t *testing.T) *pgFixture {
	t.Helper()
	if testing.Short() {
		t.Skip("requiere Docker; omitido con -short")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("traslados_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	log := zerolog.Nop()
	m, err := postgres.NewMigrator(dsn, log)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn}, log)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	tx := postgres.NewTxRunner(pool)
	ledger := inventory.NewLedgerUseCase(tx, ports.NopMetrics{}, log)
	batches := inventory.NewBatchUseCase(tx, ledger, log)
	uc := transfer.NewUseCase(tx, ledger, batches, nil, ports.NopMetrics{}, log, transfer.Config{})

	now := time.Now().UTC()
	err = tx.Run(ctx, func(r ports.Repos) error {
		for _, b := range []*entity.Branch{
			{ID: originID, Code: "BOD-01", Name: "Bodega central", Kind: entity.BranchKindWarehouse, CreatedAt: now, UpdatedAt: now},
			{ID: destID, Code: "TDA-07", Name: "Tienda norte", Kind: entity.BranchKindStore, CreatedAt: now, UpdatedAt: now},
		} {
			if err := r.Branches.Create(ctx, b); err != nil {
				return err
			}
		}
		return r.Products.Create(ctx, &entity.Product{
			ID: tomatoID, SKU: "TOM-01", Name: "Tomate", UnitMeasure: "kg",
			Price: dec("3"), Cost: dec("2"), CreatedAt: now, UpdatedAt: now,
		})
	})
	require.NoError(t, err)

	_, err = ledger.RecordMovement(ctx, inventory.MovementInput{
		ProductID: tomatoID, BranchID: originID, Type: entity.MovementPurchase,
		Quantity: dec("500"), UnitPrice: dec("2"), Actor: actor,
	})
	require.NoError(t, err)

	return &pgFixture{ctx: ctx, dsn: dsn, pool: pool, tx: tx, ledger: ledger, uc: uc}
}

func (f *pgFixture) requireStock(t *testing.T, branchID, want string) {
	t.Helper()
	st, err := f.ledger.CurrentStock(f.ctx, tomatoID, branchID)
	require.NoError(t, err)
	require.True(t, dec(want).Equal(st.Quantity), "stock en %s: esperado %s, obtenido %s", branchID, want, st.Quantity)

	c, err := f.ledger.VerifyConsistency(f.ctx, tomatoID, branchID)
	require.NoError(t, err)
	require.True(t, c.Consistent(), "descuadre en %s: %s", branchID, c.Drift)
}

// delivered crea, aprueba, despacha y entrega un traslado de 100 unidades.
func (f *pgFixture) delivered(t *testing.T) *entity.Transfer {
	t.Helper()
	weight := dec("100")
	tr, err := f.uc.CreateTransfer(f.ctx, transfer.CreateInput{
		OriginBranchID: originID, DestinationBranchID: destID, Actor: actor,
		Lines: []transfer.LineInput{{ProductID: tomatoID, ExpectedQuantity: dec("100"), ExpectedWeightKg: &weight}},
	})
	require.NoError(t, err)
	_, err = f.uc.ApproveTransfer(f.ctx, tr.ID, actor)
	require.NoError(t, err)
	_, err = f.uc.DispatchTransfer(f.ctx, tr.ID, transfer.ShipmentInput{
		Transporter: "Transportes del Valle", VehicleNumber: "ABC123",
		GrossKg: dec("300"), TareKg: dec("200"), Documents: []string{"GUIA-001"}, Actor: actor,
	})
	require.NoError(t, err)
	tr, err = f.uc.MarkDelivered(f.ctx, tr.ID, actor)
	require.NoError(t, err)
	return tr
}

// ──────────────────────────────────────────────────────────────────────────────
// Ciclo completo
// ──────────────────────────────────────────────────────────────────────────────

func TestPostgres_CicloConFaltanteYDesecho(t *testing.T) {
	f := newPGFixture(t)
	tr := f.delivered(t)

	require.NotNil(t, tr.Shipment)
	assert.True(t, dec("100").Equal(tr.Shipment.NetKg))
	assert.Equal(t, []string{"GUIA-001"}, tr.Shipment.Documents)
	f.requireStock(t, originID, "400")
	f.requireStock(t, entity.TransitBranchID, "100")

	tr, err := f.uc.ReceiveTransfer(f.ctx, tr.ID, transfer.ReceiptInput{
		TolerancePercent: dec("5"), Actor: actor,
		Lines: []transfer.ReceiptLineInput{{TransferLineID: tr.Lines[0].ID, ReceivedQuantity: dec("80")}},
	})
	require.NoError(t, err)
	assert.Equal(t, entity.TransferReceived, tr.Status)
	require.NotNil(t, tr.Receipt)
	require.Len(t, tr.Receipt.Lines, 1)
	require.Len(t, tr.Discrepancies, 1)

	d := tr.Discrepancies[0]
	assert.Equal(t, entity.ReasonShort, d.Reason)
	require.Len(t, d.Lines, 1)
	assert.True(t, dec("-20").Equal(d.Lines[0].QuantityDelta))
	assert.Equal(t, entity.SourceInTransit, d.Lines[0].Source)
	f.requireStock(t, destID, "80")
	f.requireStock(t, entity.TransitBranchID, "20")

	out, err := f.uc.ResolveDiscrepancy(f.ctx, d.ID, entity.DispositionScrap, actor)
	require.NoError(t, err)
	assert.Equal(t, entity.DiscrepancyResolved, out.Status)
	require.NotNil(t, out.ResolvedAt)
	f.requireStock(t, entity.TransitBranchID, "0")

	losses, err := postgres.NewLossRepository(f.pool).ListByDiscrepancy(f.ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, losses, 1)
	assert.True(t, dec("40").Equal(losses[0].Amount))

	// Segunda resolución: no duplica movimientos ni pérdidas.
	_, err = f.uc.ResolveDiscrepancy(f.ctx, d.ID, entity.DispositionAdjust, actor)
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
	losses, err = postgres.NewLossRepository(f.pool).ListByDiscrepancy(f.ctx, d.ID)
	require.NoError(t, err)
	assert.Len(t, losses, 1)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concurrencia y restricciones del esquema
// ──────────────────────────────────────────────────────────────────────────────

func TestPostgres_BloqueoTomadoDevuelveModificacionConcurrente(t *testing.T) {
	f := newPGFixture(t)
	tr, err := f.uc.CreateTransfer(f.ctx, transfer.CreateInput{
		OriginBranchID: originID, DestinationBranchID: destID, Actor: actor,
		Lines: []transfer.LineInput{{ProductID: tomatoID, ExpectedQuantity: dec("10")}},
	})
	require.NoError(t, err)

	holder, err := f.pool.Begin(f.ctx)
	require.NoError(t, err)
	defer func() { _ = holder.Rollback(f.ctx) }()
	_, err = holder.Exec(f.ctx, `SELECT id FROM transfers WHERE id = $1 FOR UPDATE`, tr.ID)
	require.NoError(t, err)

	_, err = f.uc.ApproveTransfer(f.ctx, tr.ID, actor)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)

	require.NoError(t, holder.Rollback(f.ctx))
	got, err := f.uc.ApproveTransfer(f.ctx, tr.ID, actor)
	require.NoError(t, err, "al liberar el bloqueo el reintento procede")
	assert.Equal(t, entity.TransferApproved, got.Status)
}

func TestPostgres_LedgerNoAdmiteUpdateNiDelete(t *testing.T) {
	f := newPGFixture(t)

	_, err := f.pool.Exec(f.ctx, `UPDATE stock_movements SET quantity = 1`)
	assert.Error(t, err)
	_, err = f.pool.Exec(f.ctx, `DELETE FROM stock_movements`)
	assert.Error(t, err)
	f.requireStock(t, originID, "500")
}

func TestPostgres_TransitoSembradoPorMigracion(t *testing.T) {
	f := newPGFixture(t)

	b, err := postgres.NewBranchRepository(f.pool).GetByID(f.ctx, entity.TransitBranchID)
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.True(t, b.IsTransit())
}

func TestMigrator_VersionYUpIdempotente(t *testing.T) {
	f := newPGFixture(t)
	log := zerolog.Nop()

	m, err := postgres.NewMigrator(f.dsn, log)
	require.NoError(t, err)
	defer m.Close()

	v, dirty, err := m.Version()
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(3), v)

	require.NoError(t, m.Up(), "sin cambios no es error")
}
