package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Traslados-api/internal/application/inventory"
	"github.com/jhoicas/Traslados-api/internal/application/transfer"
	"github.com/jhoicas/Traslados-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	TransferUC *transfer.UseCase
	LedgerUC   *inventory.LedgerUseCase
	BatchUC    *inventory.BatchUseCase
	CatalogUC  *usecase.CatalogUseCase
	ManifestUC *transfer.ManifestUseCase
	JWTSecret  string
	Log        zerolog.Logger
}

// Router registra las rutas de la API. Todas exigen Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(RoleAdmin)
	supervisors := RequireRole(RoleAdmin, RoleSupervisor)

	// Catálogo
	catalog := NewCatalogHandler(deps.CatalogUC, deps.Log.With().Str("handler", "catalog").Logger())
	api.Post("/branches", adminOnly, catalog.CreateBranch)
	api.Get("/branches", catalog.ListBranches)
	api.Get("/branches/:id", catalog.GetBranch)
	api.Post("/products", adminOnly, catalog.CreateProduct)
	api.Get("/products/:id", catalog.GetProduct)

	// Ledger y stock
	stock := NewStockHandler(deps.LedgerUC, deps.Log.With().Str("handler", "stock").Logger())
	api.Post("/stock/movements", stock.RecordMovement)
	api.Get("/stock/movements", stock.ListMovements)
	api.Get("/stock/consistency", stock.Consistency)
	api.Get("/stock", stock.CurrentStock)

	// Lotes
	batches := NewBatchHandler(deps.BatchUC, deps.Log.With().Str("handler", "batches").Logger())
	api.Post("/batches", batches.Create)
	api.Get("/batches", batches.List)
	api.Post("/batches/expire", supervisors, batches.Expire)
	api.Post("/batches/:id/consume", batches.Consume)

	// Traslados
	transfers := NewTransferHandler(deps.TransferUC, deps.Log.With().Str("handler", "transfers").Logger())
	api.Post("/transfers", transfers.Create)
	api.Get("/transfers", transfers.List)
	api.Get("/transfers/:id", transfers.GetByID)
	api.Post("/transfers/:id/approve", supervisors, transfers.Approve)
	api.Post("/transfers/:id/dispatch", transfers.Dispatch)
	api.Post("/transfers/:id/deliver", transfers.Deliver)
	api.Post("/transfers/:id/receive", transfers.Receive)
	if deps.ManifestUC != nil {
		manifest := NewManifestHandler(deps.ManifestUC, deps.Log.With().Str("handler", "manifest").Logger())
		api.Get("/transfers/:id/manifest", manifest.Download)
	}

	// Discrepancias
	discrepancies := NewDiscrepancyHandler(deps.TransferUC, deps.Log.With().Str("handler", "discrepancies").Logger())
	api.Post("/transfers/:id/discrepancies", discrepancies.Raise)
	api.Get("/transfers/:id/discrepancies", discrepancies.ListByTransfer)
	api.Get("/discrepancies/:id", discrepancies.GetByID)
	api.Post("/discrepancies/:id/resolve", supervisors, discrepancies.Resolve)

	// Documentos
	documents := NewDocumentHandler(deps.TransferUC, deps.Log.With().Str("handler", "documents").Logger())
	api.Post("/documents", documents.Attach)
	api.Get("/documents", documents.List)
}
