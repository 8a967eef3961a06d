package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Traslados-api/internal/application/usecase"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
)

// CreateBranchRequest body para POST /api/branches.
type CreateBranchRequest struct {
	Code    string `json:"code" validate:"required,max=30"`
	Name    string `json:"name" validate:"required,max=120"`
	Address string `json:"address,omitempty" validate:"omitempty,max=250"`
	Kind    string `json:"kind,omitempty" validate:"omitempty,oneof=store warehouse"`
}

// ToInput convierte el request al input del catálogo.
func (r CreateBranchRequest) ToInput() usecase.BranchInput {
	return usecase.BranchInput{Code: r.Code, Name: r.Name, Address: r.Address, Kind: r.Kind}
}

// BranchResponse salida de una sucursal.
type BranchResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

func NewBranchResponse(b *entity.Branch) BranchResponse {
	return BranchResponse{ID: b.ID, Code: b.Code, Name: b.Name, Address: b.Address, Kind: b.Kind, CreatedAt: b.CreatedAt}
}

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	SKU         string          `json:"sku" validate:"required,max=60"`
	Name        string          `json:"name" validate:"required,max=200"`
	UnitMeasure string          `json:"unit_measure,omitempty" validate:"omitempty,max=20"`
	Price       decimal.Decimal `json:"price" validate:"dgte0"`
	Cost        decimal.Decimal `json:"cost" validate:"dgte0"`
}

func (r CreateProductRequest) ToInput() usecase.ProductInput {
	return usecase.ProductInput{SKU: r.SKU, Name: r.Name, UnitMeasure: r.UnitMeasure, Price: r.Price, Cost: r.Cost}
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	UnitMeasure string          `json:"unit_measure"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func NewProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID: p.ID, SKU: p.SKU, Name: p.Name, UnitMeasure: p.UnitMeasure,
		Price: p.Price, Cost: p.Cost, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}
