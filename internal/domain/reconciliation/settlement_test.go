package reconciliation_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/domain/reconciliation"
)

var route = reconciliation.Route{Origin: "origen", Destination: "destino", Transit: entity.TransitBranchID}

func settle(t *testing.T, in reconciliation.LineInput, tolerance string) reconciliation.ReceiptSettlement {
	t.Helper()
	res, err := reconciliation.EvaluateLine(in, d(tolerance))
	require.NoError(t, err)
	return reconciliation.SettleReceipt(route, in, res)
}

// balance suma despacho + asientos adicionales por sucursal.
func balance(expected decimal.Decimal, groups ...[]reconciliation.Posting) map[string]decimal.Decimal {
	all := reconciliation.DispatchPostings(route, expected)
	for _, g := range groups {
		all = append(all, g...)
	}
	return reconciliation.Net(all)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "%s: esperado %s, obtenido %s", msg, want, got)
}

// ──────────────────────────────────────────────────────────────────────────────
// SettleReceipt
// ──────────────────────────────────────────────────────────────────────────────

func TestSettleReceipt_DentroDeTolerancia_Merma(t *testing.T) {
	s := settle(t, reconciliation.LineInput{ExpectedQuantity: d("100"), ReceivedQuantity: d("95")}, "5")

	assert.Nil(t, s.Line)
	assertDec(t, "95", s.Credited, "acreditado")
	net := balance(d("100"), s.Postings)
	assertDec(t, "-100", net["origen"], "origen")
	assertDec(t, "95", net["destino"], "destino")
	assertDec(t, "0", net[entity.TransitBranchID], "tránsito")

	last := s.Postings[len(s.Postings)-1]
	assert.Equal(t, entity.MovementLoss, last.Type)
	assertDec(t, "-5", last.Quantity, "merma")
}

func TestSettleReceipt_DentroDeTolerancia_Sobrante(t *testing.T) {
	s := settle(t, reconciliation.LineInput{ExpectedQuantity: d("100"), ReceivedQuantity: d("102")}, "5")

	assert.Nil(t, s.Line)
	assert.Equal(t, entity.MovementAdjustment, s.Postings[0].Type)
	net := balance(d("100"), s.Postings)
	assertDec(t, "102", net["destino"], "destino")
	assertDec(t, "0", net[entity.TransitBranchID], "tránsito")
}

func TestSettleReceipt_FaltanteFueraDeTolerancia(t *testing.T) {
	s := settle(t, reconciliation.LineInput{ExpectedQuantity: d("100"), ReceivedQuantity: d("80")}, "5")

	require.NotNil(t, s.Line)
	assertDec(t, "80", s.Credited, "acreditado")
	assertDec(t, "-20", s.Line.QuantityDelta, "delta")
	assert.Equal(t, entity.SourceInTransit, s.Line.Source)
	assert.Equal(t, entity.DimensionQuantity, s.Line.Dimension)
	assert.Equal(t, entity.ReasonShort, entity.ReasonFor(s.Line))

	net := balance(d("100"), s.Postings)
	assertDec(t, "80", net["destino"], "destino")
	assertDec(t, "20", net[entity.TransitBranchID], "el delta queda en tránsito")
}

func TestSettleReceipt_ExcesoFueraDeTolerancia(t *testing.T) {
	s := settle(t, reconciliation.LineInput{ExpectedQuantity: d("100"), ReceivedQuantity: d("120")}, "5")

	require.NotNil(t, s.Line)
	assertDec(t, "100", s.Credited, "solo se acredita lo esperado")
	assertDec(t, "20", s.Line.QuantityDelta, "delta")
	assert.Equal(t, entity.ReasonExcess, entity.ReasonFor(s.Line))
	net := balance(d("100"), s.Postings)
	assertDec(t, "0", net[entity.TransitBranchID], "tránsito")
}

func TestSettleReceipt_NadaRecibido(t *testing.T) {
	s := settle(t, reconciliation.LineInput{ExpectedQuantity: d("10"), ReceivedQuantity: d("0")}, "5")

	require.NotNil(t, s.Line)
	assert.Empty(t, s.Postings)
	assertDec(t, "0", s.Credited, "acreditado")
}

func TestSettleReceipt_SoloPesoExcede(t *testing.T) {
	s := settle(t, reconciliation.LineInput{
		ExpectedQuantity: d("10"), ReceivedQuantity: d("10"),
		ExpectedWeightKg: dp("20"), ReceivedWeightKg: dp("15"),
	}, "5")

	require.NotNil(t, s.Line)
	assertDec(t, "10", s.Credited, "acreditado")
	assert.True(t, s.Line.QuantityDelta.IsZero())
	require.NotNil(t, s.Line.WeightDeltaKg)
	assertDec(t, "-5", *s.Line.WeightDeltaKg, "delta de peso")
	assert.Equal(t, entity.DimensionWeight, s.Line.Dimension)
	assert.Equal(t, entity.ReasonWeightDiff, entity.ReasonFor(s.Line))
}

// ──────────────────────────────────────────────────────────────────────────────
// SettleDisposition
// ──────────────────────────────────────────────────────────────────────────────

func TestSettleDisposition_Faltante(t *testing.T) {
	in := reconciliation.LineInput{ExpectedQuantity: d("100"), ReceivedQuantity: d("80")}
	s := settle(t, in, "5")

	cases := []struct {
		disp        entity.Disposition
		origin      string
		destination string
		transit     string
		loss        string
		quarantine  string
	}{
		{entity.DispositionAdjust, "-100", "80", "0", "0", "0"},
		{entity.DispositionReturn, "-80", "80", "0", "0", "0"},
		{entity.DispositionScrap, "-100", "80", "0", "20", "0"},
		{entity.DispositionQuarantine, "-100", "80", "0", "0", "20"},
		{entity.DispositionReplace, "-100", "80", "20", "0", "0"},
	}
	for _, tc := range cases {
		t.Run(string(tc.disp), func(t *testing.T) {
			r := reconciliation.SettleDisposition(route, s.Line, tc.disp)
			net := balance(d("100"), s.Postings, r.Postings)
			assertDec(t, tc.origin, net["origen"], "origen")
			assertDec(t, tc.destination, net["destino"], "destino")
			assertDec(t, tc.transit, net[entity.TransitBranchID], "tránsito")
			assertDec(t, tc.loss, r.LossQuantity, "pérdida")
			assertDec(t, tc.quarantine, r.QuarantineQuantity, "cuarentena")
		})
	}
}

func TestSettleDisposition_Exceso(t *testing.T) {
	in := reconciliation.LineInput{ExpectedQuantity: d("100"), ReceivedQuantity: d("120")}
	s := settle(t, in, "5")

	cases := []struct {
		disp        entity.Disposition
		origin      string
		destination string
		loss        string
		quarantine  string
	}{
		{entity.DispositionAdjust, "-100", "120", "0", "0"},
		{entity.DispositionReturn, "-80", "100", "0", "0"},
		{entity.DispositionScrap, "-100", "100", "20", "0"},
		{entity.DispositionQuarantine, "-100", "100", "0", "20"},
		{entity.DispositionReplace, "-100", "100", "0", "0"},
	}
	for _, tc := range cases {
		t.Run(string(tc.disp), func(t *testing.T) {
			r := reconciliation.SettleDisposition(route, s.Line, tc.disp)
			net := balance(d("100"), s.Postings, r.Postings)
			assertDec(t, tc.origin, net["origen"], "origen")
			assertDec(t, tc.destination, net["destino"], "destino")
			assertDec(t, "0", net[entity.TransitBranchID], "tránsito")
			assertDec(t, tc.loss, r.LossQuantity, "pérdida")
			assertDec(t, tc.quarantine, r.QuarantineQuantity, "cuarentena")
		})
	}
}

func TestSettleDisposition_LineaDeDestino_Devolucion(t *testing.T) {
	line := &entity.DiscrepancyLine{QuantityDelta: d("-3"), Source: entity.SourceDestination}

	r := reconciliation.SettleDisposition(route, line, entity.DispositionReturn)
	net := reconciliation.Net(r.Postings)
	assertDec(t, "-3", net["destino"], "destino")
	assertDec(t, "3", net["origen"], "origen")
	_, touched := net[entity.TransitBranchID]
	assert.False(t, touched, "una línea de destino no toca tránsito")
}

func TestSettleDisposition_SinDeltaDeCantidad(t *testing.T) {
	line := &entity.DiscrepancyLine{QuantityDelta: decimal.Zero, WeightDeltaKg: dp("-2"), Source: entity.SourceInTransit}
	for _, disp := range []entity.Disposition{
		entity.DispositionAdjust, entity.DispositionReturn, entity.DispositionScrap,
		entity.DispositionQuarantine, entity.DispositionReplace,
	} {
		r := reconciliation.SettleDisposition(route, line, disp)
		assert.Empty(t, r.Postings, string(disp))
		assert.True(t, r.LossQuantity.IsZero())
		assert.True(t, r.QuarantineQuantity.IsZero())
	}
}
