package pdf_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Traslados-api/internal/application/transfer"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/infrastructure/pdf"
)

func manifest(received bool) *transfer.ManifestData {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	t := &entity.Transfer{
		ID:                  "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		OriginBranchID:      "b1",
		DestinationBranchID: "b2",
		Status:              entity.TransferDispatched,
		DispatchedAt:        &now,
		Lines: []*entity.TransferLine{
			{ID: "l1", LineNo: 1, ProductID: "p1", ExpectedQuantity: decimal.NewFromInt(100), BatchNumber: "L-0314"},
			{ID: "l2", LineNo: 2, ProductID: "p-sin-catalogo", ExpectedQuantity: decimal.NewFromInt(5)},
		},
		Shipment: &entity.Shipment{
			Transporter: "Transportes del Valle", VehicleNumber: "ABC123",
			GrossKg: decimal.NewFromInt(300), TareKg: decimal.NewFromInt(200), NetKg: decimal.NewFromInt(100),
			DispatchedAt: now,
		},
	}
	if received {
		got := decimal.NewFromInt(80)
		t.Status = entity.TransferReceived
		t.Lines[0].ReceivedQuantity = &got
		t.Receipt = &entity.Receipt{ArrivedAt: now.Add(6 * time.Hour), TolerancePercent: decimal.NewFromInt(5)}
		t.Discrepancies = []*entity.Discrepancy{{
			ID: "d1", Reason: entity.ReasonShort, Status: entity.DiscrepancyOpen,
			Lines: []*entity.DiscrepancyLine{{
				ProductID: "p1", QuantityDelta: decimal.NewFromInt(-20), DeviationPercent: decimal.NewFromInt(20),
			}},
		}}
	}
	return &transfer.ManifestData{
		Transfer:    t,
		Origin:      &entity.Branch{ID: "b1", Code: "BOD-01", Name: "Bodega central"},
		Destination: &entity.Branch{ID: "b2", Code: "TDA-07", Name: "Tienda norte"},
		Products: map[string]*entity.Product{
			"p1": {ID: "p1", SKU: "TOM-01", Name: "Tomate", UnitMeasure: "kg"},
		},
	}
}

func TestRenderManifest_Despachado(t *testing.T) {
	out, err := pdf.NewManifestGenerator("Traslados").RenderManifest(context.Background(), manifest(false))
	require.NoError(t, err)
	assert.True(t, len(out) > 4 && string(out[:4]) == "%PDF", "la salida debe ser un PDF")
}

func TestRenderManifest_ConRecepcionYDiscrepancias(t *testing.T) {
	out, err := pdf.NewManifestGenerator("Traslados").RenderManifest(context.Background(), manifest(true))
	require.NoError(t, err)
	assert.True(t, len(out) > 4 && string(out[:4]) == "%PDF")
}
