package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus estado del ciclo de vida de un traslado.
type TransferStatus string

const (
	TransferPending    TransferStatus = "pending"
	TransferApproved   TransferStatus = "approved"
	TransferDispatched TransferStatus = "dispatched"
	TransferDelivered  TransferStatus = "delivered"
	TransferReceived   TransferStatus = "received"
)

// transferOrder posición de cada estado; los estados solo avanzan.
var transferOrder = map[TransferStatus]int{
	TransferPending:    0,
	TransferApproved:   1,
	TransferDispatched: 2,
	TransferDelivered:  3,
	TransferReceived:   4,
}

// IsValid indica si el estado es conocido.
func (s TransferStatus) IsValid() bool {
	_, ok := transferOrder[s]
	return ok
}

// Next devuelve el único estado alcanzable desde s.
func (s TransferStatus) Next() (TransferStatus, bool) {
	switch s {
	case TransferPending:
		return TransferApproved, true
	case TransferApproved:
		return TransferDispatched, true
	case TransferDispatched:
		return TransferDelivered, true
	case TransferDelivered:
		return TransferReceived, true
	}
	return "", false
}

// Before indica si s es anterior a other en el ciclo de vida.
func (s TransferStatus) Before(other TransferStatus) bool {
	return transferOrder[s] < transferOrder[other]
}

// Transfer es una solicitud de traslado entre dos sucursales.
type Transfer struct {
	ID                     string
	OriginBranchID         string
	DestinationBranchID    string
	DestinationSubLocation string
	Status                 TransferStatus
	Notes                  string
	CreatedBy              string
	CreatedAt              time.Time
	ApprovedAt             *time.Time
	DispatchedAt           *time.Time
	DeliveredAt            *time.Time
	ReceivedAt             *time.Time
	UpdatedAt              time.Time

	Lines         []*TransferLine
	Shipment      *Shipment
	Receipt       *Receipt
	Discrepancies []*Discrepancy
}

// Advance mueve el traslado al estado siguiente si coincide con to.
// Devuelve false si to no es el sucesor inmediato del estado actual.
func (t *Transfer) Advance(to TransferStatus, at time.Time) bool {
	next, ok := t.Status.Next()
	if !ok || next != to {
		return false
	}
	t.Status = to
	t.UpdatedAt = at
	stamp := at
	switch to {
	case TransferApproved:
		t.ApprovedAt = &stamp
	case TransferDispatched:
		t.DispatchedAt = &stamp
	case TransferDelivered:
		t.DeliveredAt = &stamp
	case TransferReceived:
		t.ReceivedAt = &stamp
	}
	return true
}

// Line busca una línea por ID.
func (t *Transfer) Line(id string) *TransferLine {
	for _, l := range t.Lines {
		if l.ID == id {
			return l
		}
	}
	return nil
}

// OpenDiscrepancy devuelve la discrepancia abierta del traslado, si existe.
func (t *Transfer) OpenDiscrepancy() *Discrepancy {
	for _, d := range t.Discrepancies {
		if d.Status == DiscrepancyOpen {
			return d
		}
	}
	return nil
}

// TransferLine es el movimiento esperado de un producto dentro del traslado.
// Es inmutable desde el despacho; solo se registran los valores recibidos.
type TransferLine struct {
	ID               string
	TransferID       string
	LineNo           int
	ProductID        string
	ExpectedQuantity decimal.Decimal
	ExpectedWeightKg *decimal.Decimal
	BatchNumber      string
	ExpiryDate       *time.Time
	ReceivedQuantity *decimal.Decimal
	ReceivedWeightKg *decimal.Decimal
}
