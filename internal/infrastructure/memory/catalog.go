package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/domain/repository"
)

var (
	_ repository.BranchRepository        = branchRepo{}
	_ repository.ProductRepository       = productRepo{}
	_ repository.StockRepository         = stockRepo{}
	_ repository.StockMovementRepository = movementRepo{}
	_ repository.BatchRepository         = batchRepo{}
)

type branchRepo struct{ s *Store }

func (r branchRepo) Create(_ context.Context, b *entity.Branch) error {
	if _, ok := r.s.data.branches[b.ID]; ok {
		return domain.Invalid("sucursal %s duplicada", b.ID)
	}
	for _, other := range r.s.data.branches {
		if other.Code == b.Code {
			return domain.Invalid("código de sucursal %s duplicado", b.Code)
		}
	}
	r.s.data.branches[b.ID] = *b
	return nil
}

func (r branchRepo) GetByID(_ context.Context, id string) (*entity.Branch, error) {
	b, ok := r.s.data.branches[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r branchRepo) List(_ context.Context) ([]*entity.Branch, error) {
	out := make([]*entity.Branch, 0, len(r.s.data.branches))
	for _, b := range r.s.data.branches {
		b := b
		out = append(out, &b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

type productRepo struct{ s *Store }

func (r productRepo) Create(_ context.Context, p *entity.Product) error {
	if _, ok := r.s.data.products[p.ID]; ok {
		return domain.Invalid("producto %s duplicado", p.ID)
	}
	for _, other := range r.s.data.products {
		if other.SKU == p.SKU {
			return domain.Invalid("SKU %s duplicado", p.SKU)
		}
	}
	r.s.data.products[p.ID] = *p
	return nil
}

func (r productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.s.data.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r productRepo) UpdateCost(_ context.Context, id string, cost decimal.Decimal) error {
	p, ok := r.s.data.products[id]
	if !ok {
		return domain.NotFound("producto %s", id)
	}
	p.Cost = cost
	p.UpdatedAt = r.s.now()
	r.s.data.products[id] = p
	return nil
}

type stockRepo struct{ s *Store }

func (r stockRepo) Get(_ context.Context, productID, branchID string) (*entity.BranchStock, error) {
	st, ok := r.s.data.stock[stockKey{productID, branchID}]
	if !ok {
		return &entity.BranchStock{ProductID: productID, BranchID: branchID, Quantity: decimal.Zero}, nil
	}
	return &st, nil
}

func (r stockRepo) Increment(_ context.Context, productID, branchID string, delta decimal.Decimal) (decimal.Decimal, error) {
	k := stockKey{productID, branchID}
	st, ok := r.s.data.stock[k]
	if !ok {
		st = entity.BranchStock{ProductID: productID, BranchID: branchID, Quantity: decimal.Zero}
	}
	st.Quantity = st.Quantity.Add(delta)
	st.UpdatedAt = r.s.now()
	r.s.data.stock[k] = st
	return st.Quantity, nil
}

func (r stockRepo) TotalByProduct(_ context.Context, productID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for k, st := range r.s.data.stock {
		if k.productID == productID && k.branchID != entity.TransitBranchID {
			total = total.Add(st.Quantity)
		}
	}
	return total, nil
}

func (r stockRepo) ListByBranch(_ context.Context, branchID string) ([]*entity.BranchStock, error) {
	var out []*entity.BranchStock
	for k, st := range r.s.data.stock {
		if k.branchID == branchID {
			st := st
			out = append(out, &st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

type movementRepo struct{ s *Store }

func (r movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.s.data.movements = append(r.s.data.movements, *m)
	return nil
}

func (r movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for i := len(r.s.data.movements) - 1; i >= 0; i-- {
		m := r.s.data.movements[i]
		switch {
		case f.ProductID != "" && m.ProductID != f.ProductID,
			f.BranchID != "" && m.BranchID != f.BranchID,
			f.ReferenceType != "" && m.ReferenceType != f.ReferenceType,
			f.ReferenceID != "" && m.ReferenceID != f.ReferenceID,
			f.From != nil && m.CreatedAt.Before(*f.From),
			f.To != nil && m.CreatedAt.After(*f.To):
			continue
		}
		out = append(out, &m)
	}
	return paginate(out, f.Limit, f.Offset), nil
}

func (r movementRepo) Sum(_ context.Context, productID, branchID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, m := range r.s.data.movements {
		if m.ProductID == productID && m.BranchID == branchID {
			sum = sum.Add(m.Quantity)
		}
	}
	return sum, nil
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type batchRepo struct{ s *Store }

func (r batchRepo) Create(_ context.Context, b *entity.Batch) error {
	for _, other := range r.s.data.batches {
		if other.BatchNumber == b.BatchNumber {
			return domain.Invalid("número de lote %s duplicado", b.BatchNumber)
		}
	}
	r.s.data.batches[b.ID] = *b
	return nil
}

func (r batchRepo) GetByID(_ context.Context, id string) (*entity.Batch, error) {
	b, ok := r.s.data.batches[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r batchRepo) GetForUpdate(ctx context.Context, id string) (*entity.Batch, error) {
	return r.GetByID(ctx, id)
}

func (r batchRepo) GetByNumberForUpdate(_ context.Context, number string) (*entity.Batch, error) {
	for _, b := range r.s.data.batches {
		if b.BatchNumber == number {
			return &b, nil
		}
	}
	return nil, nil
}

func (r batchRepo) Update(_ context.Context, b *entity.Batch) error {
	if _, ok := r.s.data.batches[b.ID]; !ok {
		return domain.NotFound("lote %s", b.ID)
	}
	if b.CurrentQuantity.IsNegative() || b.CurrentQuantity.GreaterThan(b.InitialQuantity) {
		return domain.Invalid("saldo de lote fuera de rango")
	}
	r.s.data.batches[b.ID] = *b
	return nil
}

func (r batchRepo) List(_ context.Context, productID, branchID string) ([]*entity.Batch, error) {
	var out []*entity.Batch
	for _, b := range r.s.data.batches {
		if (productID == "" || b.ProductID == productID) && (branchID == "" || b.BranchID == branchID) {
			b := b
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BatchNumber < out[j].BatchNumber })
	return out, nil
}

func (r batchRepo) ListExpiredActive(_ context.Context, asOf time.Time) ([]*entity.Batch, error) {
	var out []*entity.Batch
	for _, b := range r.s.data.batches {
		if b.Status == entity.BatchStatusActive && b.ExpiredAt(asOf) {
			b := b
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BatchNumber < out[j].BatchNumber })
	return out, nil
}
