// Package pdf genera la guía de traslado (remisión) que acompaña la mercancía
// entre sucursales.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: GUÍA DE TRASLADO + N° │ Fecha de despacho           │
//	│  RUTA: Origen → Destino (+ sub-ubicación)                    │
//	│  TRANSPORTE: Transportista / Vehículo / Guía / Sello / Pesos │
//	│  TABLA: # | SKU | Producto | Esperado | Recibido | Lote       │
//	│  RECEPCIÓN: tolerancia + re-pesaje (si ya se recibió)        │
//	│  DISCREPANCIAS: motivo + deltas por línea                    │
//	│  FOOTER: firmas + QR con el ID del traslado                  │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Traslados-api/internal/application/transfer"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// ManifestGenerator implementa transfer.ManifestRenderer usando Maroto v2.
type ManifestGenerator struct {
	// Issuer nombre que encabeza la guía (razón social o nombre de la app).
	Issuer string
}

// NewManifestGenerator construye el generador.
func NewManifestGenerator(issuer string) *ManifestGenerator {
	return &ManifestGenerator{Issuer: issuer}
}

// RenderManifest genera el PDF y devuelve sus bytes.
func (g *ManifestGenerator) RenderManifest(_ context.Context, m *transfer.ManifestData) ([]byte, error) {
	t := m.Transfer
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Guía de traslado "+manifestNumber(t.ID), true).
		WithAuthor(g.Issuer, true).
		Build()

	doc := maroto.New(cfg)

	doc.AddRows(headerRow(g.Issuer, t))
	doc.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	doc.AddRows(routeRow(m))
	doc.AddRows(transportRow(t.Shipment))
	doc.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	doc.AddRows(tableHeaderRow())
	doc.AddRows(tableLineRows(t.Lines, m.Products)...)

	if t.Receipt != nil {
		doc.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
		doc.AddRows(receiptRow(t.Receipt))
	}
	if len(t.Discrepancies) > 0 {
		doc.AddRows(discrepancyRows(t.Discrepancies, m.Products)...)
	}

	doc.AddRows(line.NewRow(3))
	doc.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	doc.AddRows(footerRow(t))

	out, err := doc.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar guía: %w", err)
	}
	return out.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(issuer string, t *entity.Transfer) core.Row {
	fecha := "—"
	if t.DispatchedAt != nil {
		fecha = t.DispatchedAt.Format("02/01/2006 15:04")
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(issuer, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Estado: "+string(t.Status), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("GUÍA DE TRASLADO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(manifestNumber(t.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Despacho: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func routeRow(m *transfer.ManifestData) core.Row {
	dest := m.Destination.Code + " · " + m.Destination.Name
	if sub := m.Transfer.DestinationSubLocation; sub != "" {
		dest += " (" + sub + ")"
	}
	return row.New(14).Add(
		col.New(6).Add(
			text.New("ORIGEN", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(m.Origin.Code+" · "+m.Origin.Name, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
		),
		col.New(6).Add(
			text.New("DESTINO", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(dest, props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
		),
	)
}

func transportRow(s *entity.Shipment) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("TRANSPORTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("Transportista: %s   |   Vehículo: %s   |   Guía: %s   |   Sello: %s",
				nonEmpty(s.Transporter, "—"),
				nonEmpty(s.VehicleNumber, "—"),
				nonEmpty(s.LRNumber, "—"),
				nonEmpty(s.SealNumber, "—"),
			), props.Text{Size: 8, Top: 6, Color: colorGray}),
			text.New(fmt.Sprintf("Bruto: %s kg   |   Tara: %s kg   |   Neto: %s kg",
				kg(s.GrossKg), kg(s.TareKg), kg(s.NetKg),
			), props.Text{Size: 8, Top: 10, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("#", 1, align.Center),
		h("SKU", 2, align.Left),
		h("Producto", 4, align.Left),
		h("Esperado", 2, align.Right),
		h("Recibido", 2, align.Right),
		h("Lote", 1, align.Left),
	)
}

func tableLineRows(lines []*entity.TransferLine, products map[string]*entity.Product) []core.Row {
	out := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		sku, name, unit := l.ProductID, l.ProductID, ""
		if p := products[l.ProductID]; p != nil {
			sku, name, unit = p.SKU, p.Name, p.UnitMeasure
		}
		received := "—"
		if l.ReceivedQuantity != nil {
			received = qty(*l.ReceivedQuantity, unit)
		}
		out = append(out, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprint(l.LineNo), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(sku, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(qty(l.ExpectedQuantity, unit), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(2).Add(text.New(received, props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(nonEmpty(l.BatchNumber, "—"), props.Text{Size: 7, Top: 1, Left: 1})),
		))
	}
	return out
}

func receiptRow(r *entity.Receipt) core.Row {
	reweigh := "sin re-pesaje"
	if r.ReweighNetKg != nil {
		reweigh = "re-pesaje neto " + kg(*r.ReweighNetKg) + " kg"
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("RECEPCIÓN", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(fmt.Sprintf("Llegada: %s   |   Tolerancia: %s%%   |   %s",
				r.ArrivedAt.Format("02/01/2006 15:04"),
				r.TolerancePercent.String(),
				reweigh,
			), props.Text{Size: 8, Top: 6, Color: colorGray}),
		),
	)
}

func discrepancyRows(list []*entity.Discrepancy, products map[string]*entity.Product) []core.Row {
	rows := []core.Row{
		row.New(7).Add(col.New(12).Add(
			text.New("DISCREPANCIAS", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorAlert, Top: 2}),
		)),
	}
	for _, d := range list {
		rows = append(rows, row.New(5).Add(col.New(12).Add(
			text.New(fmt.Sprintf("%s · motivo %s · %s", manifestNumber(d.ID), d.Reason, d.Status),
				props.Text{Style: fontstyle.Bold, Size: 7.5, Top: 1, Left: 2}),
		)))
		for _, l := range d.Lines {
			name := l.ProductID
			if p := products[l.ProductID]; p != nil {
				name = p.Name
			}
			disposition := "pendiente"
			if l.Resolved {
				disposition = string(l.Disposition)
			}
			rows = append(rows, row.New(4).Add(col.New(12).Add(
				text.New(fmt.Sprintf("%s: delta %s (%s%%, %s) → %s",
					name, l.QuantityDelta.String(), l.DeviationPercent.StringFixed(2), l.Dimension, disposition),
					props.Text{Size: 7, Color: colorGray, Left: 4}),
			)))
		}
	}
	return rows
}

// footerRow: firmas de despacho y recepción + QR con el ID del traslado.
func footerRow(t *entity.Transfer) core.Row {
	signature := func(label string, top float64) core.Component {
		return text.New("______________________________\n"+label, props.Text{Size: 8, Top: top, Color: colorGray})
	}
	return row.New(40).Add(
		col.New(4).Add(code.NewQr(t.ID, props.Rect{Percent: 90, Center: true})),
		col.New(4).Add(signature("Despacha (origen)", 18)),
		col.New(4).Add(signature("Recibe (destino)", 18)),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// manifestNumber número corto legible: primeros 8 hex del UUID en mayúsculas.
func manifestNumber(id string) string {
	s := strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(s) > 8 {
		s = s[:8]
	}
	return "TR-" + s
}

func kg(d decimal.Decimal) string { return d.StringFixed(2) }

func qty(d decimal.Decimal, unit string) string {
	if unit == "" {
		return d.String()
	}
	return d.String() + " " + unit
}
