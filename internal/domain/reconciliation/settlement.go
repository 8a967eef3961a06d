package reconciliation

import (
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Route sucursales involucradas en un traslado.
type Route struct {
	Origin      string
	Destination string
	Transit     string
}

// Posting asiento de inventario planificado; el caso de uso lo registra en el ledger.
type Posting struct {
	BranchID string
	Type     entity.MovementType
	Quantity decimal.Decimal // con signo
	Notes    string
}

func move(from, to string, qty decimal.Decimal, notes string) []Posting {
	return []Posting{
		{BranchID: from, Type: entity.MovementTransferOut, Quantity: qty.Neg(), Notes: notes},
		{BranchID: to, Type: entity.MovementTransferIn, Quantity: qty, Notes: notes},
	}
}

// DispatchPostings saca la cantidad esperada del origen y la deja en tránsito.
func DispatchPostings(r Route, expected decimal.Decimal) []Posting {
	return move(r.Origin, r.Transit, expected, "despacho")
}

// ReceiptSettlement resultado de liquidar una línea recibida.
type ReceiptSettlement struct {
	Postings []Posting
	// Credited cantidad que ingresa al stock del destino.
	Credited decimal.Decimal
	// Line es nil si la línea no genera discrepancia.
	Line *entity.DiscrepancyLine
}

// SettleReceipt planifica los asientos de una línea recibida.
//
// Dentro de tolerancia se acredita lo recibido y la diferencia tolerada se
// liquida en tránsito (ajuste por sobrante, pérdida por merma). Si la cantidad
// excede la tolerancia solo se acredita min(esperado, recibido) y el delta queda
// pendiente en tránsito con una línea de discrepancia. Si solo excede el peso,
// se acredita lo recibido y la línea de discrepancia lleva delta de cantidad cero.
func SettleReceipt(r Route, in LineInput, res LineResult) ReceiptSettlement {
	expected, received := in.ExpectedQuantity, in.ReceivedQuantity

	if res.QuantityExceeded() {
		credited := decimal.Min(expected, received)
		var postings []Posting
		if credited.IsPositive() {
			postings = move(r.Transit, r.Destination, credited, "recepción")
		}
		line := &entity.DiscrepancyLine{
			ExpectedQuantity: expected,
			ReceivedQuantity: received,
			QuantityDelta:    res.Quantity.Delta,
			DeviationPercent: res.Quantity.PercentDeviation,
			Dimension:        entity.DimensionQuantity,
			Source:           entity.SourceInTransit,
		}
		if res.Weight != nil {
			wd := res.Weight.Delta
			line.WeightDeltaKg = &wd
		}
		return ReceiptSettlement{Postings: postings, Credited: credited, Line: line}
	}

	var postings []Posting
	if diff := received.Sub(expected); diff.IsPositive() {
		postings = append(postings, Posting{
			BranchID: r.Transit, Type: entity.MovementAdjustment, Quantity: diff, Notes: "sobrante tolerado",
		})
	}
	if received.IsPositive() {
		postings = append(postings, move(r.Transit, r.Destination, received, "recepción")...)
	}
	if diff := expected.Sub(received); diff.IsPositive() {
		postings = append(postings, Posting{
			BranchID: r.Transit, Type: entity.MovementLoss, Quantity: diff.Neg(), Notes: "merma tolerada",
		})
	}
	out := ReceiptSettlement{Postings: postings, Credited: received}
	if res.WeightExceeded() {
		wd := res.Weight.Delta
		out.Line = &entity.DiscrepancyLine{
			ExpectedQuantity: expected,
			ReceivedQuantity: received,
			QuantityDelta:    decimal.Zero,
			WeightDeltaKg:    &wd,
			DeviationPercent: res.Weight.PercentDeviation,
			Dimension:        entity.DimensionWeight,
			Source:           entity.SourceInTransit,
		}
	}
	return out
}

// Resolution efectos planificados de aplicar una disposición a una línea.
type Resolution struct {
	Postings []Posting
	// LossQuantity cantidad a valorizar como pérdida en LossBranchID.
	LossQuantity decimal.Decimal
	LossBranchID string
	// QuarantineQuantity cantidad retenida en el destino.
	QuarantineQuantity decimal.Decimal
}

// HoldingBranch sucursal donde está físicamente el delta de la línea.
func HoldingBranch(r Route, line *entity.DiscrepancyLine) string {
	if line.Source == entity.SourceInTransit {
		return r.Transit
	}
	return r.Destination
}

// SettleDisposition planifica los asientos de una disposición sobre una línea.
// Una línea sin delta de cantidad no tiene efecto en el ledger.
func SettleDisposition(r Route, line *entity.DiscrepancyLine, d entity.Disposition) Resolution {
	delta := line.QuantityDelta
	if delta.IsZero() || d == entity.DispositionReplace {
		return Resolution{}
	}
	h := HoldingBranch(r, line)
	qty := delta.Abs()

	adjustment := func(q decimal.Decimal, notes string) Posting {
		return Posting{BranchID: h, Type: entity.MovementAdjustment, Quantity: q, Notes: notes}
	}
	loss := Posting{BranchID: h, Type: entity.MovementLoss, Quantity: qty.Neg(), Notes: "desecho por discrepancia"}

	if delta.IsNegative() {
		switch d {
		case entity.DispositionAdjust:
			return Resolution{Postings: []Posting{adjustment(qty.Neg(), "ajuste por faltante")}}
		case entity.DispositionReturn:
			return Resolution{Postings: move(h, r.Origin, qty, "devolución al origen")}
		case entity.DispositionScrap:
			return Resolution{Postings: []Posting{loss}, LossQuantity: qty, LossBranchID: h}
		case entity.DispositionQuarantine:
			return Resolution{
				Postings:           []Posting{adjustment(qty.Neg(), "retiro a cuarentena")},
				QuarantineQuantity: qty,
			}
		}
		return Resolution{}
	}

	switch d {
	case entity.DispositionAdjust:
		postings := []Posting{adjustment(qty, "ajuste por sobrante")}
		if h == r.Transit {
			postings = append(postings, move(r.Transit, r.Destination, qty, "recepción de sobrante")...)
		}
		return Resolution{Postings: postings}
	case entity.DispositionReturn:
		postings := []Posting{adjustment(qty, "ajuste por sobrante")}
		postings = append(postings, move(h, r.Origin, qty, "devolución al origen")...)
		return Resolution{Postings: postings}
	case entity.DispositionScrap:
		return Resolution{
			Postings:     []Posting{adjustment(qty, "ajuste por sobrante"), loss},
			LossQuantity: qty,
			LossBranchID: h,
		}
	case entity.DispositionQuarantine:
		return Resolution{QuarantineQuantity: qty}
	}
	return Resolution{}
}

// Net suma las cantidades de los asientos por sucursal.
func Net(postings []Posting) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, p := range postings {
		out[p.BranchID] = out[p.BranchID].Add(p.Quantity)
	}
	return out
}
