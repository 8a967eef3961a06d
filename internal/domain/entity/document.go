package entity

import "time"

// AttachableKind tipo de entidad a la que se adjunta un documento.
type AttachableKind string

const (
	AttachTransfer    AttachableKind = "transfer"
	AttachShipment    AttachableKind = "shipment"
	AttachReceipt     AttachableKind = "receipt"
	AttachDiscrepancy AttachableKind = "discrepancy"
)

// IsValid indica si el tipo es uno de los admitidos.
func (k AttachableKind) IsValid() bool {
	switch k {
	case AttachTransfer, AttachShipment, AttachReceipt, AttachDiscrepancy:
		return true
	}
	return false
}

// Document referencia a un archivo (guía, foto, acta) asociado a un registro.
type Document struct {
	ID        string
	OwnerKind AttachableKind
	OwnerID   string
	Reference string
	CreatedBy string
	CreatedAt time.Time
}
