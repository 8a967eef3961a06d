package reconciliation_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/domain/reconciliation"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

// ──────────────────────────────────────────────────────────────────────────────
// Evaluate
// ──────────────────────────────────────────────────────────────────────────────

func TestEvaluate_CantidadExacta_SinDesviacion(t *testing.T) {
	res, err := reconciliation.Evaluate(d("100"), d("100"), d("0"))
	require.NoError(t, err)

	assert.True(t, res.WithinTolerance, "recepción exacta debe pasar con tolerancia 0")
	assert.True(t, res.Delta.IsZero())
	assert.True(t, res.PercentDeviation.IsZero())
}

func TestEvaluate_CincoPorCiento(t *testing.T) {
	res, err := reconciliation.Evaluate(d("100"), d("95"), d("5"))
	require.NoError(t, err)
	assert.True(t, res.WithinTolerance, "5% de desviación con tolerancia 5 está dentro (<=)")
	assert.Equal(t, "-5", res.Delta.String())
	assert.Equal(t, "5", res.PercentDeviation.String())

	res, err = reconciliation.Evaluate(d("100"), d("95"), d("4.99"))
	require.NoError(t, err)
	assert.False(t, res.WithinTolerance)
}

func TestEvaluate_ExcesoSimetrico(t *testing.T) {
	res, err := reconciliation.Evaluate(d("200"), d("210"), d("5"))
	require.NoError(t, err)
	assert.True(t, res.WithinTolerance)
	assert.Equal(t, "10", res.Delta.String())
	assert.Equal(t, "5", res.PercentDeviation.String())
}

func TestEvaluate_EsperadoCero_SiempreExcede(t *testing.T) {
	res, err := reconciliation.Evaluate(d("0"), d("3"), d("1000"))
	require.NoError(t, err)
	assert.False(t, res.WithinTolerance, "esperado cero es desviación total")
	assert.Equal(t, "100", res.PercentDeviation.String())
}

func TestEvaluate_ToleranciaNegativa(t *testing.T) {
	_, err := reconciliation.Evaluate(d("10"), d("10"), d("-1"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestEvaluate_SinRedondeoAntesDeComparar(t *testing.T) {
	// 1/3 * 100 = 33.33...; con tolerancia 33.33 debe exceder.
	res, err := reconciliation.Evaluate(d("3"), d("2"), d("33.33"))
	require.NoError(t, err)
	assert.False(t, res.WithinTolerance)
}

// ──────────────────────────────────────────────────────────────────────────────
// EvaluateLine
// ──────────────────────────────────────────────────────────────────────────────

func TestEvaluateLine_PasaCantidadFallaPeso(t *testing.T) {
	res, err := reconciliation.EvaluateLine(reconciliation.LineInput{
		ExpectedQuantity: d("10"),
		ReceivedQuantity: d("10"),
		ExpectedWeightKg: dp("50"),
		ReceivedWeightKg: dp("45"),
	}, d("2"))
	require.NoError(t, err)

	assert.False(t, res.QuantityExceeded())
	require.NotNil(t, res.Weight)
	assert.True(t, res.WeightExceeded())
	assert.False(t, res.WithinTolerance())
	assert.Equal(t, entity.DimensionWeight, res.Weight.Dimension)
	assert.Equal(t, "10", res.Weight.PercentDeviation.String())
}

func TestEvaluateLine_SinPesoRecibido_NoEvaluaPeso(t *testing.T) {
	res, err := reconciliation.EvaluateLine(reconciliation.LineInput{
		ExpectedQuantity: d("10"),
		ReceivedQuantity: d("10"),
		ExpectedWeightKg: dp("50"),
	}, d("0"))
	require.NoError(t, err)
	assert.Nil(t, res.Weight)
	assert.True(t, res.WithinTolerance())
	assert.Equal(t, entity.DimensionQuantity, res.Quantity.Dimension)
}
