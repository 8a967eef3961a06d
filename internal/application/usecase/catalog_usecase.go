package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Traslados-api/internal/application/ports"
	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
)

// CatalogUseCase alta y consulta de sucursales y productos.
// Cost del producto solo cambia vía compras (costo promedio ponderado).
type CatalogUseCase struct {
	tx  ports.TxRunner
	log zerolog.Logger
	now func() time.Time
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(tx ports.TxRunner, log zerolog.Logger) *CatalogUseCase {
	return &CatalogUseCase{tx: tx, log: log, now: time.Now}
}

// BranchInput datos de una sucursal nueva.
type BranchInput struct {
	ID      string // opcional; se genera si está vacío
	Code    string
	Name    string
	Address string
	Kind    string
}

// CreateBranch crea una sucursal física. El tránsito es de sistema y no se crea por aquí.
func (uc *CatalogUseCase) CreateBranch(ctx context.Context, in BranchInput) (*entity.Branch, error) {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	if in.Code == "" || in.Name == "" {
		return nil, domain.Invalid("code y name son obligatorios")
	}
	if in.Kind == "" {
		in.Kind = entity.BranchKindStore
	}
	if in.Kind != entity.BranchKindStore && in.Kind != entity.BranchKindWarehouse {
		return nil, domain.Invalid("tipo de sucursal no admitido: %s", in.Kind)
	}
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	if in.ID == entity.TransitBranchID {
		return nil, domain.Invalid("id reservado para tránsito")
	}
	now := uc.now()
	b := &entity.Branch{
		ID:        in.ID,
		Code:      in.Code,
		Name:      in.Name,
		Address:   in.Address,
		Kind:      in.Kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.tx.Run(ctx, func(r ports.Repos) error {
		return r.Branches.Create(ctx, b)
	}); err != nil {
		return nil, err
	}
	uc.log.Info().Str("branch_id", b.ID).Str("code", b.Code).Msg("sucursal creada")
	return b, nil
}

// GetBranch devuelve la sucursal o domain.ErrNotFound.
func (uc *CatalogUseCase) GetBranch(ctx context.Context, id string) (*entity.Branch, error) {
	var out *entity.Branch
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		b, err := r.Branches.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return domain.NotFound("sucursal %s", id)
		}
		out = b
		return nil
	})
	return out, err
}

// ListBranches lista todas las sucursales, incluida la de tránsito.
func (uc *CatalogUseCase) ListBranches(ctx context.Context) ([]*entity.Branch, error) {
	var out []*entity.Branch
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		out, err = r.Branches.List(ctx)
		return err
	})
	return out, err
}

// ProductInput datos de un producto nuevo.
type ProductInput struct {
	ID          string
	SKU         string
	Name        string
	UnitMeasure string
	Price       decimal.Decimal
	Cost        decimal.Decimal
}

// CreateProduct crea un producto. Cost es el costo inicial de valoración.
func (uc *CatalogUseCase) CreateProduct(ctx context.Context, in ProductInput) (*entity.Product, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.SKU == "" || in.Name == "" {
		return nil, domain.Invalid("sku y name son obligatorios")
	}
	if in.Price.IsNegative() || in.Cost.IsNegative() {
		return nil, domain.Invalid("precio y costo no pueden ser negativos")
	}
	if err := domain.CheckScale("precio", in.Price); err != nil {
		return nil, err
	}
	if err := domain.CheckScale("costo", in.Cost); err != nil {
		return nil, err
	}
	if in.UnitMeasure == "" {
		in.UnitMeasure = "unit"
	}
	if in.ID == "" {
		in.ID = uuid.New().String()
	}
	now := uc.now()
	p := &entity.Product{
		ID:          in.ID,
		SKU:         in.SKU,
		Name:        in.Name,
		UnitMeasure: in.UnitMeasure,
		Price:       in.Price,
		Cost:        in.Cost,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.tx.Run(ctx, func(r ports.Repos) error {
		return r.Products.Create(ctx, p)
	}); err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", p.ID).Str("sku", p.SKU).Msg("producto creado")
	return p, nil
}

// GetProduct devuelve el producto o domain.ErrNotFound.
func (uc *CatalogUseCase) GetProduct(ctx context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		p, err := r.Products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NotFound("producto %s", id)
		}
		out = p
		return nil
	})
	return out, err
}
