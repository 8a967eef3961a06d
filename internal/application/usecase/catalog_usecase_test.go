package usecase_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Traslados-api/internal/application/usecase"
	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/infrastructure/memory"
)

func newCatalog() *usecase.CatalogUseCase {
	return usecase.NewCatalogUseCase(memory.New(), zerolog.Nop())
}

func TestCatalog_CrearSucursal(t *testing.T) {
	uc := newCatalog()
	ctx := context.Background()

	b, err := uc.CreateBranch(ctx, usecase.BranchInput{Code: " TDA-07 ", Name: "Tienda norte"})
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "TDA-07", b.Code)
	assert.Equal(t, entity.BranchKindStore, b.Kind, "tipo por defecto")

	got, err := uc.GetBranch(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Name, got.Name)

	list, err := uc.ListBranches(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2, "incluye la sucursal de tránsito")
}

func TestCatalog_CrearSucursal_Validaciones(t *testing.T) {
	uc := newCatalog()
	ctx := context.Background()

	cases := map[string]usecase.BranchInput{
		"sin código":     {Name: "Tienda"},
		"tipo tránsito":  {Code: "X", Name: "X", Kind: entity.BranchKindTransit},
		"id de tránsito": {ID: entity.TransitBranchID, Code: "X", Name: "X"},
		"tipo inventado": {Code: "X", Name: "X", Kind: "kiosko"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.CreateBranch(ctx, in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	_, err := uc.CreateBranch(ctx, usecase.BranchInput{Code: "BOD-01", Name: "Bodega"})
	require.NoError(t, err)
	_, err = uc.CreateBranch(ctx, usecase.BranchInput{Code: "BOD-01", Name: "Otra"})
	assert.ErrorIs(t, err, domain.ErrValidation, "código duplicado")
}

func TestCatalog_Producto(t *testing.T) {
	uc := newCatalog()
	ctx := context.Background()

	p, err := uc.CreateProduct(ctx, usecase.ProductInput{SKU: "TOM-01", Name: "Tomate", Cost: decimal.NewFromInt(2)})
	require.NoError(t, err)
	assert.Equal(t, "unit", p.UnitMeasure)

	got, err := uc.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2).Equal(got.Cost))

	_, err = uc.CreateProduct(ctx, usecase.ProductInput{SKU: "TOM-01", Name: "Otro"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.CreateProduct(ctx, usecase.ProductInput{SKU: "X", Name: "X", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = uc.CreateProduct(ctx, usecase.ProductInput{SKU: "Y", Name: "Y", Cost: decimal.RequireFromString("0.12345")})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = uc.GetProduct(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
