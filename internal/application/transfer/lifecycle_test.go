package transfer_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Traslados-api/internal/application/transfer"
	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// CreateTransfer
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateTransfer_Pendiente(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	tr := f.create(line{product: tomatoID, expected: "100", weight: "100"})

	assert.Equal(t, entity.TransferPending, tr.Status)
	require.Len(t, tr.Lines, 1)
	assert.Equal(t, 1, tr.Lines[0].LineNo)
	assert.Equal(t, actor, tr.CreatedBy)
	assert.Nil(t, tr.ApprovedAt)
	f.requireStock(tomatoID, originID, startStock)
}

func TestCreateTransfer_Validaciones(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	base := func() transfer.CreateInput {
		return transfer.CreateInput{
			OriginBranchID: originID, DestinationBranchID: destID, Actor: actor,
			Lines: []transfer.LineInput{{ProductID: tomatoID, ExpectedQuantity: dec("10")}},
		}
	}

	cases := map[string]struct {
		mutate func(*transfer.CreateInput)
		want   error
	}{
		"origen igual a destino":   {func(in *transfer.CreateInput) { in.DestinationBranchID = originID }, domain.ErrValidation},
		"sin líneas":               {func(in *transfer.CreateInput) { in.Lines = nil }, domain.ErrValidation},
		"cantidad cero":            {func(in *transfer.CreateInput) { in.Lines[0].ExpectedQuantity = dec("0") }, domain.ErrValidation},
		"cantidad negativa":        {func(in *transfer.CreateInput) { in.Lines[0].ExpectedQuantity = dec("-1") }, domain.ErrValidation},
		"peso negativo":            {func(in *transfer.CreateInput) { in.Lines[0].ExpectedWeightKg = decp("-1") }, domain.ErrValidation},
		"cantidad con 5 decimales": {func(in *transfer.CreateInput) { in.Lines[0].ExpectedQuantity = dec("10.00001") }, domain.ErrValidation},
		"peso con 5 decimales":     {func(in *transfer.CreateInput) { in.Lines[0].ExpectedWeightKg = decp("2.12345") }, domain.ErrValidation},
		"sin actor":                {func(in *transfer.CreateInput) { in.Actor = "" }, domain.ErrValidation},
		"destino tránsito":         {func(in *transfer.CreateInput) { in.DestinationBranchID = transitID }, domain.ErrValidation},
		"sucursal inexistente":     {func(in *transfer.CreateInput) { in.OriginBranchID = "no-existe" }, domain.ErrNotFound},
		"producto inexistente":     {func(in *transfer.CreateInput) { in.Lines[0].ProductID = "no-existe" }, domain.ErrNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := base()
			tc.mutate(&in)
			_, err := f.uc.CreateTransfer(f.ctx, in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	list, err := f.uc.ListTransfers(f.ctx, repository.TransferFilter{})
	require.NoError(t, err)
	assert.Empty(t, list, "ninguna solicitud inválida se persiste")
}

// ──────────────────────────────────────────────────────────────────────────────
// Transiciones
// ──────────────────────────────────────────────────────────────────────────────

func TestTransiciones_CicloCompletoExacto(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	tr := f.dispatched(line{product: tomatoID, expected: "100"})

	assert.Equal(t, entity.TransferDispatched, tr.Status)
	require.NotNil(t, tr.Shipment)
	assert.True(t, dec("1000").Equal(tr.Shipment.NetKg), "neto = bruto - tara")
	f.requireStock(tomatoID, originID, "400")
	f.requireStock(tomatoID, transitID, "100")
	f.requireStock(tomatoID, destID, "0")

	tr, err := f.uc.MarkDelivered(f.ctx, tr.ID, actor)
	require.NoError(t, err)
	f.requireStock(tomatoID, transitID, "100")

	tr = f.receive(tr, "0", received{qty: "100"})
	assert.Equal(t, entity.TransferReceived, tr.Status)
	require.NotNil(t, tr.Receipt)
	require.NotNil(t, tr.ReceivedAt)
	require.NotNil(t, tr.DeliveredAt)
	require.NotNil(t, tr.DispatchedAt)
	require.NotNil(t, tr.ApprovedAt)
	assert.Empty(t, tr.Discrepancies)
	require.NotNil(t, tr.Lines[0].ReceivedQuantity)
	assert.True(t, dec("100").Equal(*tr.Lines[0].ReceivedQuantity))

	f.requireStock(tomatoID, originID, "400")
	f.requireStock(tomatoID, transitID, "0")
	f.requireStock(tomatoID, destID, "100")
	f.requireConsistent()

	assert.Equal(t, 1, f.metrics.transitions[string(entity.TransferReceived)])
}

func TestTransiciones_NoSeSaltanEstados(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	tr := f.create(line{product: tomatoID, expected: "10"})

	_, err := f.uc.DispatchTransfer(f.ctx, tr.ID, transfer.ShipmentInput{Actor: actor})
	assert.ErrorIs(t, err, domain.ErrInvalidState, "pending no se despacha")
	_, err = f.uc.MarkDelivered(f.ctx, tr.ID, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	_, err = f.uc.ReceiveTransfer(f.ctx, tr.ID, receiptFor(tr, "0", received{qty: "10"}))
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = f.uc.ApproveTransfer(f.ctx, tr.ID, actor)
	require.NoError(t, err)
	_, err = f.uc.ApproveTransfer(f.ctx, tr.ID, actor)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "no se aprueba dos veces")

	got, err := f.uc.GetTransfer(f.ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferApproved, got.Status)
	f.requireStock(tomatoID, originID, startStock)
}

// Con el store en memoria las transacciones se serializan: el segundo despacho
// ve el estado dispatched y falla por estado, no por modificación concurrente.
func TestTransiciones_DespachosSimultaneos(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	tr := f.create(line{product: tomatoID, expected: "10"})
	_, err := f.uc.ApproveTransfer(f.ctx, tr.ID, actor)
	require.NoError(t, err)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.uc.DispatchTransfer(f.ctx, tr.ID, transfer.ShipmentInput{
				GrossKg: dec("20"), TareKg: dec("10"), Actor: actor,
			})
		}()
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	}
	assert.Equal(t, 1, ok)
	f.requireStock(tomatoID, transitID, "10")
	f.requireConsistent()
}

func TestTransiciones_TrasladoInexistente(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	_, err := f.uc.ApproveTransfer(f.ctx, "no-existe", actor)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDispatch_StockInsuficienteRevierteTodo(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	tr := f.create(
		line{product: onionID, expected: "50"},
		line{product: tomatoID, expected: "600"},
	)
	_, err := f.uc.ApproveTransfer(f.ctx, tr.ID, actor)
	require.NoError(t, err)

	_, err = f.uc.DispatchTransfer(f.ctx, tr.ID, transfer.ShipmentInput{Actor: actor})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := f.uc.GetTransfer(f.ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferApproved, got.Status)
	assert.Nil(t, got.Shipment, "el despacho fallido no deja shipment")
	f.requireStock(onionID, originID, startStock)
	f.requireStock(onionID, transitID, "0")
	f.requireConsistent()
}

func TestDispatch_PesosInvalidos(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	tr := f.create(line{product: tomatoID, expected: "10"})
	_, err := f.uc.ApproveTransfer(f.ctx, tr.ID, actor)
	require.NoError(t, err)

	_, err = f.uc.DispatchTransfer(f.ctx, tr.ID, transfer.ShipmentInput{GrossKg: dec("10"), TareKg: dec("20"), Actor: actor})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.DispatchTransfer(f.ctx, tr.ID, transfer.ShipmentInput{GrossKg: dec("20"), TareKg: dec("1.00005"), Actor: actor})
	assert.ErrorIs(t, err, domain.ErrValidation)
	f.requireStock(tomatoID, transitID, "0")
}

func TestCreateTransfer_CerosALaDerechaNoCuentanComoDecimales(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	tr := f.create(line{product: tomatoID, expected: "10.500000", weight: "3.25000000"})
	assert.True(t, dec("10.5").Equal(tr.Lines[0].ExpectedQuantity))
}

// ──────────────────────────────────────────────────────────────────────────────
// ReceiveTransfer
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_DentroDeTolerancia(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	tr := f.delivered(line{product: tomatoID, expected: "100"})

	tr = f.receive(tr, "5", received{qty: "95"})
	assert.Empty(t, tr.Discrepancies)
	f.requireStock(tomatoID, destID, "95")
	f.requireStock(tomatoID, transitID, "0")
	f.requireConsistent()

	movs, err := f.ledger.ListMovements(f.ctx, repository.MovementFilter{BranchID: transitID, ReferenceID: tr.ID})
	require.NoError(t, err)
	var losses int
	for _, m := range movs {
		if m.Type == entity.MovementLoss {
			losses++
			assert.True(t, dec("-5").Equal(m.Quantity))
		}
	}
	assert.Equal(t, 1, losses, "la merma tolerada se registra como pérdida en tránsito")
}

func TestReceive_FueraDeTolerancia(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	tr := f.delivered(line{product: tomatoID, expected: "100"})

	tr = f.receive(tr, "5", received{qty: "80"})
	require.Len(t, tr.Discrepancies, 1)
	d := tr.Discrepancies[0]
	assert.Equal(t, entity.DiscrepancyOpen, d.Status)
	assert.Equal(t, entity.ReasonShort, d.Reason)
	require.Len(t, d.Lines, 1)
	assert.True(t, dec("-20").Equal(d.Lines[0].QuantityDelta))
	assert.True(t, dec("20").Equal(d.Lines[0].DeviationPercent))
	assert.Equal(t, entity.SourceInTransit, d.Lines[0].Source)
	assert.Equal(t, tr.Lines[0].ID, d.Lines[0].TransferLineID)
	assert.False(t, d.Lines[0].Resolved)

	f.requireStock(tomatoID, destID, "80")
	f.requireStock(tomatoID, transitID, "20")
	f.requireConsistent()
	assert.Equal(t, 1, f.metrics.discrepancies[string(entity.ReasonShort)])
}

func TestReceive_MotivosMezcladosSonOther(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	tr := f.delivered(
		line{product: tomatoID, expected: "100"},
		line{product: onionID, expected: "50"},
	)
	tr = f.receive(tr, "5", received{qty: "80"}, received{qty: "60"})

	require.Len(t, tr.Discrepancies, 1, "todas las líneas fuera de tolerancia van a una discrepancia")
	assert.Equal(t, entity.ReasonOther, tr.Discrepancies[0].Reason)
	assert.Len(t, tr.Discrepancies[0].Lines, 2)
	f.requireStock(onionID, destID, "50")
	f.requireStock(onionID, transitID, "0")
	f.requireConsistent()
}

func TestReceive_SoloPesoFueraDeTolerancia(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	tr := f.delivered(line{product: tomatoID, expected: "10", weight: "50"})

	tr = f.receive(tr, "2", received{qty: "10", weight: "45"})
	require.Len(t, tr.Discrepancies, 1)
	d := tr.Discrepancies[0]
	assert.Equal(t, entity.ReasonWeightDiff, d.Reason)
	assert.Equal(t, entity.DimensionWeight, d.Lines[0].Dimension)
	assert.True(t, d.Lines[0].QuantityDelta.IsZero())
	require.NotNil(t, d.Lines[0].WeightDeltaKg)
	assert.True(t, dec("-5").Equal(*d.Lines[0].WeightDeltaKg))
	f.requireStock(tomatoID, destID, "10")
	f.requireStock(tomatoID, transitID, "0")
}

func TestReceive_DebeReportarCadaLineaUnaVez(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	tr := f.delivered(
		line{product: tomatoID, expected: "10"},
		line{product: onionID, expected: "10"},
	)

	missing := receiptFor(tr, "0", received{qty: "10"}, received{qty: "10"})
	missing.Lines = missing.Lines[:1]
	_, err := f.uc.ReceiveTransfer(f.ctx, tr.ID, missing)
	assert.ErrorIs(t, err, domain.ErrValidation)

	dup := receiptFor(tr, "0", received{qty: "10"}, received{qty: "10"})
	dup.Lines[1].TransferLineID = dup.Lines[0].TransferLineID
	_, err = f.uc.ReceiveTransfer(f.ctx, tr.ID, dup)
	assert.ErrorIs(t, err, domain.ErrValidation)

	negTol := receiptFor(tr, "-1", received{qty: "10"}, received{qty: "10"})
	_, err = f.uc.ReceiveTransfer(f.ctx, tr.ID, negTol)
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := f.uc.GetTransfer(f.ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferDelivered, got.Status)
	assert.Nil(t, got.Receipt)
	f.requireStock(tomatoID, transitID, "10")
}

// NUMERIC(18, 4) redondearía 49.99995 a 50 y ocultaría la diferencia.
func TestReceive_RechazaMasDeCuatroDecimales(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	tr := f.delivered(line{product: tomatoID, expected: "50"})
	movements := f.movementCount()

	cases := map[string]transfer.ReceiptInput{
		"cantidad": receiptFor(tr, "1", received{qty: "49.99995"}),
		"peso":     receiptFor(tr, "1", received{qty: "50", weight: "10.00001"}),
		"tolerancia": func() transfer.ReceiptInput {
			in := receiptFor(tr, "1", received{qty: "50"})
			in.TolerancePercent = dec("0.00001")
			return in
		}(),
		"re-pesaje": func() transfer.ReceiptInput {
			in := receiptFor(tr, "1", received{qty: "50"})
			in.ReweighGrossKg = decp("100.12345")
			return in
		}(),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.uc.ReceiveTransfer(f.ctx, tr.ID, in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	assert.Equal(t, movements, f.movementCount())
	f.requireStock(tomatoID, transitID, "50")
	f.requireStock(tomatoID, destID, "0")
	got := f.receive(tr, "1", received{qty: "49.9999"})
	assert.Equal(t, entity.TransferReceived, got.Status)
}

func TestReceive_SoloUnaVez(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	tr := f.delivered(line{product: tomatoID, expected: "10"})
	f.receive(tr, "0", received{qty: "10"})

	_, err := f.uc.ReceiveTransfer(f.ctx, tr.ID, receiptFor(tr, "0", received{qty: "10"}))
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	f.requireStock(tomatoID, destID, "10")
}

func TestReceive_OmitirEntrega(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	tr := f.dispatched(line{product: tomatoID, expected: "10"})

	_, err := f.uc.ReceiveTransfer(f.ctx, tr.ID, receiptFor(tr, "0", received{qty: "10"}))
	assert.ErrorIs(t, err, domain.ErrInvalidState, "sin autorización se exige la entrega")

	in := receiptFor(tr, "0", received{qty: "10"})
	in.AllowSkipDelivery = true
	got, err := f.uc.ReceiveTransfer(f.ctx, tr.ID, in)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferReceived, got.Status)
	assert.NotNil(t, got.DeliveredAt)
}

func TestReceive_OmitirEntregaPorConfiguracion(t *testing.T) {
	f := newFixture(t, transfer.Config{AllowSkipDelivery: true})
	tr := f.dispatched(line{product: tomatoID, expected: "10"})
	tr = f.receive(tr, "0", received{qty: "10"})
	assert.Equal(t, entity.TransferReceived, tr.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lotes
// ──────────────────────────────────────────────────────────────────────────────

func TestLotes_DespachoConsumeYRecepcionCreaLote(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	b, err := f.batches.CreateBatch(f.ctx, batchAtOrigin("L-100", "100"))
	require.NoError(t, err)

	tr := f.delivered(line{product: tomatoID, expected: "40", batch: "L-100"})
	origin, err := f.batches.ListBatches(f.ctx, tomatoID, originID)
	require.NoError(t, err)
	require.Len(t, origin, 1)
	assert.Equal(t, b.ID, origin[0].ID)
	assert.True(t, dec("60").Equal(origin[0].CurrentQuantity))

	f.receive(tr, "5", received{qty: "39"})
	dest, err := f.batches.ListBatches(f.ctx, tomatoID, destID)
	require.NoError(t, err)
	require.Len(t, dest, 1)
	assert.Contains(t, dest[0].BatchNumber, "L-100-")
	assert.True(t, dec("39").Equal(dest[0].CurrentQuantity))
	assert.True(t, b.PurchasePrice.Equal(dest[0].PurchasePrice))
	f.requireConsistent()
}

func TestLotes_SobreconsumoAbortaDespacho(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	_, err := f.batches.CreateBatch(f.ctx, batchAtOrigin("L-200", "10"))
	require.NoError(t, err)

	tr := f.create(line{product: tomatoID, expected: "15", batch: "L-200"})
	_, err = f.uc.ApproveTransfer(f.ctx, tr.ID, actor)
	require.NoError(t, err)
	_, err = f.uc.DispatchTransfer(f.ctx, tr.ID, transfer.ShipmentInput{Actor: actor})
	assert.ErrorIs(t, err, domain.ErrOverConsumption)

	batches, err := f.batches.ListBatches(f.ctx, tomatoID, originID)
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(batches[0].CurrentQuantity))
	f.requireStock(tomatoID, transitID, "0")
}

// ──────────────────────────────────────────────────────────────────────────────
// Documentos y listados
// ──────────────────────────────────────────────────────────────────────────────

func TestAttachDocument(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	tr := f.dispatched(line{product: tomatoID, expected: "10"})

	doc, err := f.uc.AttachDocument(f.ctx, entity.AttachShipment, tr.Shipment.ID, "guia-0001.pdf", actor)
	require.NoError(t, err)
	assert.Equal(t, entity.AttachShipment, doc.OwnerKind)

	_, err = f.uc.AttachDocument(f.ctx, entity.AttachableKind("factura"), tr.ID, "x.pdf", actor)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.AttachDocument(f.ctx, entity.AttachReceipt, "no-existe", "x.pdf", actor)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	docs, err := f.uc.ListDocuments(f.ctx, entity.AttachShipment, tr.Shipment.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestListTransfers_FiltraPorSucursalYEstado(t *testing.T) {
	f := newFixture(t, transfer.Config{})
	f.create(line{product: tomatoID, expected: "1"})
	f.dispatched(line{product: tomatoID, expected: "1"})

	all, err := f.uc.ListTransfers(f.ctx, repository.TransferFilter{BranchID: destID})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	pending, err := f.uc.ListTransfers(f.ctx, repository.TransferFilter{Status: entity.TransferPending})
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = f.uc.ListTransfers(f.ctx, repository.TransferFilter{Status: "perdido"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
