package inventory

import "github.com/shopspring/decimal"

// AverageCost costo promedio ponderado tras el ingreso de un lote.
// nuevo = ((stock * costo) + (entrada * costoEntrada)) / (stock + entrada)
// Con stock total no positivo se toma el costo de la entrada.
func AverageCost(stock, cost, incoming, incomingCost decimal.Decimal) decimal.Decimal {
	if stock.IsNegative() {
		stock = decimal.Zero
	}
	sum := stock.Add(incoming)
	if !sum.IsPositive() {
		return incomingCost
	}
	num := stock.Mul(cost).Add(incoming.Mul(incomingCost))
	return num.Div(sum)
}

// LossAmount valor de una pérdida: |cantidad| * costo unitario.
func LossAmount(qty, unitCost decimal.Decimal) decimal.Decimal {
	return qty.Abs().Mul(unitCost)
}
