package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DiscrepancyReason motivo de la discrepancia.
type DiscrepancyReason string

const (
	ReasonShort      DiscrepancyReason = "short"
	ReasonExcess     DiscrepancyReason = "excess"
	ReasonDamaged    DiscrepancyReason = "damaged"
	ReasonSpoiled    DiscrepancyReason = "spoiled"
	ReasonExpired    DiscrepancyReason = "expired"
	ReasonMispick    DiscrepancyReason = "mispick"
	ReasonWeightDiff DiscrepancyReason = "weight_diff"
	ReasonOther      DiscrepancyReason = "other"
)

// IsValid indica si el motivo es conocido.
func (r DiscrepancyReason) IsValid() bool {
	switch r {
	case ReasonShort, ReasonExcess, ReasonDamaged, ReasonSpoiled, ReasonExpired, ReasonMispick, ReasonWeightDiff, ReasonOther:
		return true
	}
	return false
}

// Disposition acción tipada con la que se resuelve una línea de discrepancia.
type Disposition string

const (
	DispositionAdjust     Disposition = "adjust"
	DispositionReturn     Disposition = "return"
	DispositionScrap      Disposition = "scrap"
	DispositionQuarantine Disposition = "quarantine"
	DispositionReplace    Disposition = "replace"
)

// IsValid indica si la disposición es conocida.
func (d Disposition) IsValid() bool {
	switch d {
	case DispositionAdjust, DispositionReturn, DispositionScrap, DispositionQuarantine, DispositionReplace:
		return true
	}
	return false
}

// DiscrepancyStatus estado de la discrepancia; open -> resolved, nunca al revés.
type DiscrepancyStatus string

const (
	DiscrepancyOpen     DiscrepancyStatus = "open"
	DiscrepancyResolved DiscrepancyStatus = "resolved"
)

// LineSource dónde está físicamente la diferencia pendiente.
type LineSource string

const (
	SourceInTransit   LineSource = "in_transit"  // delta retenido en la sucursal de tránsito
	SourceDestination LineSource = "destination" // reportado por el operador en destino
)

// Dimension magnitud evaluada por el motor de tolerancia.
type Dimension string

const (
	DimensionQuantity Dimension = "quantity"
	DimensionWeight   Dimension = "weight"
)

// Discrepancy agrupa las líneas fuera de tolerancia de un traslado.
type Discrepancy struct {
	ID         string
	TransferID string
	Reason     DiscrepancyReason
	Status     DiscrepancyStatus
	Notes      string
	RaisedBy   string
	RaisedAt   time.Time
	ResolvedBy string
	ResolvedAt *time.Time
	Lines      []*DiscrepancyLine
}

// PendingLines devuelve las líneas aún sin disposición aplicada.
func (d *Discrepancy) PendingLines() []*DiscrepancyLine {
	var out []*DiscrepancyLine
	for _, l := range d.Lines {
		if !l.Resolved {
			out = append(out, l)
		}
	}
	return out
}

// Line busca una línea por ID.
func (d *Discrepancy) Line(id string) *DiscrepancyLine {
	for _, l := range d.Lines {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// DiscrepancyLine diferencia de un producto. QuantityDelta = recibido - esperado.
type DiscrepancyLine struct {
	ID               string
	DiscrepancyID    string
	TransferLineID   string
	ProductID        string
	ExpectedQuantity decimal.Decimal
	ReceivedQuantity decimal.Decimal
	QuantityDelta    decimal.Decimal
	WeightDeltaKg    *decimal.Decimal
	DeviationPercent decimal.Decimal
	Dimension        Dimension
	Source           LineSource
	Disposition      Disposition
	Notes            string
	Resolved         bool
	ResolvedAt       *time.Time
}

// ReasonFor deduce el motivo automático de una línea fuera de tolerancia.
func ReasonFor(l *DiscrepancyLine) DiscrepancyReason {
	switch {
	case l.QuantityDelta.IsNegative():
		return ReasonShort
	case l.QuantityDelta.IsPositive():
		return ReasonExcess
	default:
		return ReasonWeightDiff
	}
}

// MergeReason combina motivos; causas mezcladas se reportan como other.
func MergeReason(current, next DiscrepancyReason) DiscrepancyReason {
	if current == "" || current == next {
		return next
	}
	return ReasonOther
}
