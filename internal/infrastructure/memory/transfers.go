package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/domain/repository"
)

var (
	_ repository.TransferRepository    = transferRepo{}
	_ repository.DiscrepancyRepository = discrepancyRepo{}
)

type transferRepo struct{ s *Store }

func (r transferRepo) Create(_ context.Context, t *entity.Transfer) error {
	if _, ok := r.s.data.transfers[t.ID]; ok {
		return domain.Invalid("traslado %s duplicado", t.ID)
	}
	if t.OriginBranchID == t.DestinationBranchID {
		return domain.Invalid("origen y destino deben ser distintos")
	}
	row := *t
	row.Lines, row.Shipment, row.Receipt, row.Discrepancies = nil, nil, nil, nil
	r.s.data.transfers[t.ID] = row
	lines := make([]entity.TransferLine, 0, len(t.Lines))
	for _, l := range t.Lines {
		lines = append(lines, *l)
	}
	r.s.data.lines[t.ID] = lines
	return nil
}

func (r transferRepo) load(id string) *entity.Transfer {
	row, ok := r.s.data.transfers[id]
	if !ok {
		return nil
	}
	t := row
	for _, l := range r.s.data.lines[id] {
		l := l
		t.Lines = append(t.Lines, &l)
	}
	if sh, ok := r.s.data.shipments[id]; ok {
		sh.Documents = append([]string(nil), sh.Documents...)
		t.Shipment = &sh
	}
	if rc, ok := r.s.data.receipts[id]; ok {
		rc.Lines = append([]entity.ReceiptLine(nil), rc.Lines...)
		t.Receipt = &rc
	}
	return &t
}

func (r transferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	return r.load(id), nil
}

// GetForUpdate no necesita bloqueo propio: Run ya serializa las transacciones.
func (r transferRepo) GetForUpdate(_ context.Context, id string) (*entity.Transfer, error) {
	return r.load(id), nil
}

func (r transferRepo) UpdateStatus(_ context.Context, t *entity.Transfer) error {
	row, ok := r.s.data.transfers[t.ID]
	if !ok {
		return domain.NotFound("traslado %s", t.ID)
	}
	row.Status = t.Status
	row.ApprovedAt = t.ApprovedAt
	row.DispatchedAt = t.DispatchedAt
	row.DeliveredAt = t.DeliveredAt
	row.ReceivedAt = t.ReceivedAt
	row.UpdatedAt = t.UpdatedAt
	r.s.data.transfers[t.ID] = row
	return nil
}

func (r transferRepo) UpdateLineReceipt(_ context.Context, line *entity.TransferLine) error {
	lines := r.s.data.lines[line.TransferID]
	for i := range lines {
		if lines[i].ID == line.ID {
			lines[i].ReceivedQuantity = line.ReceivedQuantity
			lines[i].ReceivedWeightKg = line.ReceivedWeightKg
			return nil
		}
	}
	return domain.NotFound("línea de traslado %s", line.ID)
}

func (r transferRepo) CreateShipment(_ context.Context, sh *entity.Shipment) error {
	if _, ok := r.s.data.shipments[sh.TransferID]; ok {
		return domain.Invalid("el traslado %s ya tiene despacho", sh.TransferID)
	}
	r.s.data.shipments[sh.TransferID] = *sh
	return nil
}

func (r transferRepo) CreateReceipt(_ context.Context, rc *entity.Receipt) error {
	if _, ok := r.s.data.receipts[rc.TransferID]; ok {
		return domain.Invalid("el traslado %s ya tiene recepción", rc.TransferID)
	}
	r.s.data.receipts[rc.TransferID] = *rc
	return nil
}

func (r transferRepo) List(_ context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	var out []*entity.Transfer
	for id, row := range r.s.data.transfers {
		if f.BranchID != "" && row.OriginBranchID != f.BranchID && row.DestinationBranchID != f.BranchID {
			continue
		}
		if f.Status != "" && row.Status != f.Status {
			continue
		}
		out = append(out, r.load(id))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return paginate(out, f.Limit, f.Offset), nil
}

type discrepancyRepo struct{ s *Store }

func (r discrepancyRepo) Create(ctx context.Context, d *entity.Discrepancy) error {
	if _, ok := r.s.data.discrepancies[d.ID]; ok {
		return domain.Invalid("discrepancia %s duplicada", d.ID)
	}
	row := *d
	row.Lines = nil
	r.s.data.discrepancies[d.ID] = row
	return r.AddLines(ctx, d.ID, d.Lines)
}

func (r discrepancyRepo) AddLines(_ context.Context, discrepancyID string, lines []*entity.DiscrepancyLine) error {
	if _, ok := r.s.data.discrepancies[discrepancyID]; !ok {
		return domain.NotFound("discrepancia %s", discrepancyID)
	}
	for _, l := range lines {
		row := *l
		row.DiscrepancyID = discrepancyID
		r.s.data.discLines[discrepancyID] = append(r.s.data.discLines[discrepancyID], row)
	}
	return nil
}

func (r discrepancyRepo) load(id string) *entity.Discrepancy {
	row, ok := r.s.data.discrepancies[id]
	if !ok {
		return nil
	}
	d := row
	for _, l := range r.s.data.discLines[id] {
		l := l
		d.Lines = append(d.Lines, &l)
	}
	return &d
}

func (r discrepancyRepo) GetByID(_ context.Context, id string) (*entity.Discrepancy, error) {
	return r.load(id), nil
}

func (r discrepancyRepo) GetForUpdate(_ context.Context, id string) (*entity.Discrepancy, error) {
	return r.load(id), nil
}

func (r discrepancyRepo) ListByTransfer(_ context.Context, transferID string) ([]*entity.Discrepancy, error) {
	var out []*entity.Discrepancy
	for id, row := range r.s.data.discrepancies {
		if row.TransferID == transferID {
			out = append(out, r.load(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RaisedAt.Before(out[j].RaisedAt) })
	return out, nil
}

func (r discrepancyRepo) Update(_ context.Context, d *entity.Discrepancy) error {
	row, ok := r.s.data.discrepancies[d.ID]
	if !ok {
		return domain.NotFound("discrepancia %s", d.ID)
	}
	if row.Status == entity.DiscrepancyResolved && d.Status != entity.DiscrepancyResolved {
		return domain.InvalidState("reabrir discrepancia", string(row.Status))
	}
	row.Reason = d.Reason
	row.Status = d.Status
	row.Notes = d.Notes
	row.ResolvedBy = d.ResolvedBy
	row.ResolvedAt = d.ResolvedAt
	r.s.data.discrepancies[d.ID] = row
	return nil
}

func (r discrepancyRepo) ResolveLine(_ context.Context, line *entity.DiscrepancyLine) error {
	lines := r.s.data.discLines[line.DiscrepancyID]
	for i := range lines {
		if lines[i].ID != line.ID {
			continue
		}
		if lines[i].Resolved {
			return domain.ErrAlreadyResolved
		}
		lines[i].Disposition = line.Disposition
		lines[i].Resolved = true
		lines[i].ResolvedAt = line.ResolvedAt
		return nil
	}
	return domain.NotFound("línea de discrepancia %s", line.ID)
}
