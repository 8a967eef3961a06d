// seed carga un catálogo de demostración (bodega, dos tiendas y productos
// perecibles con stock inicial en bodega) e imprime tokens de desarrollo por rol.
// Es idempotente: lo que ya existe se omite.
//
// Uso: go run ./cmd/seed [-stock 500]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Traslados-api/internal/application/inventory"
	"github.com/jhoicas/Traslados-api/internal/application/usecase"
	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Traslados-api/pkg/config"
	"github.com/jhoicas/Traslados-api/pkg/jwt"
	"github.com/jhoicas/Traslados-api/pkg/logger"
)

const demoUserID = "00000000-0000-0000-0000-0000000000a1"

var branches = []usecase.BranchInput{
	{ID: "10000000-0000-0000-0000-000000000001", Code: "BOD-01", Name: "Bodega central", Kind: entity.BranchKindWarehouse},
	{ID: "10000000-0000-0000-0000-000000000002", Code: "TDA-01", Name: "Tienda centro", Kind: entity.BranchKindStore},
	{ID: "10000000-0000-0000-0000-000000000003", Code: "TDA-02", Name: "Tienda norte", Kind: entity.BranchKindStore},
}

var products = []usecase.ProductInput{
	{ID: "20000000-0000-0000-0000-000000000001", SKU: "TOM-01", Name: "Tomate chonto", UnitMeasure: "kg", Price: decimal.RequireFromString("3.2"), Cost: decimal.RequireFromString("2.1")},
	{ID: "20000000-0000-0000-0000-000000000002", SKU: "CEB-01", Name: "Cebolla cabezona", UnitMeasure: "kg", Price: decimal.RequireFromString("2.8"), Cost: decimal.RequireFromString("1.7")},
	{ID: "20000000-0000-0000-0000-000000000003", SKU: "LEC-01", Name: "Leche entera 1L", UnitMeasure: "unit", Price: decimal.RequireFromString("1.5"), Cost: decimal.RequireFromString("1.1")},
}

func main() {
	stock := flag.Int64("stock", 500, "Unidades iniciales por producto en la bodega")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, log.Component("postgres"))
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	tx := postgres.NewTxRunner(pool)
	catalog := usecase.NewCatalogUseCase(tx, log.Component("catalog"))
	ledger := inventory.NewLedgerUseCase(tx, nil, log.Component("ledger"))

	for _, b := range branches {
		if _, err := catalog.GetBranch(ctx, b.ID); err == nil {
			continue
		}
		if _, err := catalog.CreateBranch(ctx, b); err != nil {
			log.Fatal().Err(err).Str("code", b.Code).Msg("crear sucursal")
		}
	}

	warehouse := branches[0].ID
	for _, p := range products {
		if _, err := catalog.GetProduct(ctx, p.ID); errors.Is(err, domain.ErrNotFound) {
			if _, err := catalog.CreateProduct(ctx, p); err != nil {
				log.Fatal().Err(err).Str("sku", p.SKU).Msg("crear producto")
			}
		}
		st, err := ledger.CurrentStock(ctx, p.ID, warehouse)
		if err != nil {
			log.Fatal().Err(err).Msg("consultar stock")
		}
		if !st.Quantity.IsZero() {
			continue
		}
		if _, err := ledger.RecordMovement(ctx, inventory.MovementInput{
			ProductID:     p.ID,
			BranchID:      warehouse,
			Type:          entity.MovementPurchase,
			Quantity:      decimal.NewFromInt(*stock),
			UnitPrice:     p.Cost,
			Actor:         demoUserID,
			Notes:         "stock inicial de demostración",
			ReferenceType: entity.ReferenceManual,
		}); err != nil {
			log.Fatal().Err(err).Str("sku", p.SKU).Msg("registrar compra inicial")
		}
	}

	for _, role := range []string{"admin", "supervisor", "bodeguero"} {
		tok, err := jwt.Generate(cfg.JWT.Secret, demoUserID, role, cfg.JWT.Issuer, cfg.JWT.Expiration)
		if err != nil {
			log.Fatal().Err(err).Msg("generar token")
		}
		fmt.Printf("%s\t%s\n", role, tok)
	}
	log.Info().Int("branches", len(branches)).Int("products", len(products)).Msg("catálogo de demostración listo")
}
