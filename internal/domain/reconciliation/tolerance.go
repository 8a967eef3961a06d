// Package reconciliation contiene el motor de tolerancia y la planificación
// de asientos de inventario para recepciones y disposiciones de discrepancias.
// Todas las funciones son puras: no acceden a repositorios ni mutan estado.
package reconciliation

import (
	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Result resultado de comparar un valor esperado contra el recibido.
type Result struct {
	WithinTolerance  bool
	Delta            decimal.Decimal // recibido - esperado
	PercentDeviation decimal.Decimal
	Dimension        entity.Dimension
}

// Evaluate compara expected contra received con la tolerancia dada en porcentaje.
// percentDeviation = |received - expected| / expected * 100, sin redondeo.
// Con expected = 0 la línea siempre excede (desviación reportada 100).
func Evaluate(expected, received, tolerancePercent decimal.Decimal) (Result, error) {
	if tolerancePercent.IsNegative() {
		return Result{}, domain.Invalid("tolerancia negativa: %s", tolerancePercent)
	}
	delta := received.Sub(expected)
	if expected.IsZero() {
		return Result{WithinTolerance: false, Delta: delta, PercentDeviation: hundred}, nil
	}
	pct := delta.Abs().Mul(hundred).Div(expected.Abs())
	return Result{
		WithinTolerance:  pct.LessThanOrEqual(tolerancePercent),
		Delta:            delta,
		PercentDeviation: pct,
	}, nil
}

// LineInput valores esperados y recibidos de una línea de traslado.
type LineInput struct {
	ExpectedQuantity decimal.Decimal
	ReceivedQuantity decimal.Decimal
	ExpectedWeightKg *decimal.Decimal
	ReceivedWeightKg *decimal.Decimal
}

// LineResult evaluación de una línea por cantidad y, si aplica, por peso.
type LineResult struct {
	Quantity Result
	Weight   *Result
}

// WithinTolerance indica si la línea pasa en todas las dimensiones evaluadas.
func (r LineResult) WithinTolerance() bool {
	if !r.Quantity.WithinTolerance {
		return false
	}
	return r.Weight == nil || r.Weight.WithinTolerance
}

// QuantityExceeded indica si la cantidad está fuera de tolerancia.
func (r LineResult) QuantityExceeded() bool {
	return !r.Quantity.WithinTolerance
}

// WeightExceeded indica si el peso se evaluó y está fuera de tolerancia.
func (r LineResult) WeightExceeded() bool {
	return r.Weight != nil && !r.Weight.WithinTolerance
}

// EvaluateLine aplica Evaluate a la cantidad y, de forma independiente, al peso
// cuando se conocen ambos pesos. Una línea puede pasar en cantidad y fallar en peso.
func EvaluateLine(in LineInput, tolerancePercent decimal.Decimal) (LineResult, error) {
	q, err := Evaluate(in.ExpectedQuantity, in.ReceivedQuantity, tolerancePercent)
	if err != nil {
		return LineResult{}, err
	}
	q.Dimension = entity.DimensionQuantity
	out := LineResult{Quantity: q}
	if in.ExpectedWeightKg != nil && in.ReceivedWeightKg != nil {
		w, err := Evaluate(*in.ExpectedWeightKg, *in.ReceivedWeightKg, tolerancePercent)
		if err != nil {
			return LineResult{}, err
		}
		w.Dimension = entity.DimensionWeight
		out.Weight = &w
	}
	return out, nil
}
