package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/domain/repository"
)

var (
	_ repository.LossRepository       = lossRepo{}
	_ repository.QuarantineRepository = quarantineRepo{}
	_ repository.DocumentRepository   = documentRepo{}
)

type lossRepo struct{ s *Store }

func (r lossRepo) Create(_ context.Context, l *entity.LossRecord) error {
	r.s.data.losses = append(r.s.data.losses, *l)
	return nil
}

func (r lossRepo) ListByDiscrepancy(_ context.Context, discrepancyID string) ([]*entity.LossRecord, error) {
	var out []*entity.LossRecord
	for _, l := range r.s.data.losses {
		if l.DiscrepancyID == discrepancyID {
			l := l
			out = append(out, &l)
		}
	}
	return out, nil
}

type quarantineRepo struct{ s *Store }

func (r quarantineRepo) Hold(_ context.Context, e *entity.QuarantineEntry) error {
	r.s.data.quarantine = append(r.s.data.quarantine, *e)
	k := stockKey{e.ProductID, e.BranchID}
	r.s.data.quarantineStock[k] = r.s.data.quarantineStock[k].Add(e.Quantity)
	return nil
}

func (r quarantineRepo) Get(_ context.Context, productID, branchID string) (decimal.Decimal, error) {
	return r.s.data.quarantineStock[stockKey{productID, branchID}], nil
}

type documentRepo struct{ s *Store }

func (r documentRepo) Create(_ context.Context, d *entity.Document) error {
	r.s.data.documents = append(r.s.data.documents, *d)
	return nil
}

func (r documentRepo) ListByOwner(_ context.Context, kind entity.AttachableKind, ownerID string) ([]*entity.Document, error) {
	var out []*entity.Document
	for _, d := range r.s.data.documents {
		if d.OwnerKind == kind && d.OwnerID == ownerID {
			d := d
			out = append(out, &d)
		}
	}
	return out, nil
}

func (r documentRepo) OwnerExists(_ context.Context, kind entity.AttachableKind, ownerID string) (bool, error) {
	switch kind {
	case entity.AttachTransfer:
		_, ok := r.s.data.transfers[ownerID]
		return ok, nil
	case entity.AttachDiscrepancy:
		_, ok := r.s.data.discrepancies[ownerID]
		return ok, nil
	case entity.AttachShipment:
		for _, sh := range r.s.data.shipments {
			if sh.ID == ownerID {
				return true, nil
			}
		}
	case entity.AttachReceipt:
		for _, rc := range r.s.data.receipts {
			if rc.ID == ownerID {
				return true, nil
			}
		}
	}
	return false, nil
}
