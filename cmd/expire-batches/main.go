// expire-batches marca como vencidos los lotes activos cuya fecha de vencimiento
// ya pasó y lista las bajas recomendadas. No registra pérdidas: la baja la decide
// un supervisor con un movimiento loss.
//
// Uso: go run ./cmd/expire-batches [-as-of 2006-01-02]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jhoicas/Traslados-api/internal/application/inventory"
	"github.com/jhoicas/Traslados-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Traslados-api/pkg/config"
	"github.com/jhoicas/Traslados-api/pkg/logger"
)

func main() {
	asOfStr := flag.String("as-of", "", "Fecha de corte (AAAA-MM-DD). Por defecto, ahora.")
	flag.Parse()

	asOf := time.Now()
	if s := strings.TrimSpace(*asOfStr); s != "" {
		d, err := time.Parse(time.DateOnly, s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fecha inválida: %v\n", err)
			os.Exit(1)
		}
		asOf = d
	}

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
	ledger := inventory.NewLedgerUseCase(tx, nil, log.Component("ledger"))
	batches := inventory.NewBatchUseCase(tx, ledger, log.Component("batches"))

	recs, err := batches.ExpireBatches(ctx, asOf)
	if err != nil {
		log.Error().Err(err).Msg("vencer lotes")
		os.Exit(1)
	}
	for _, r := range recs {
		fmt.Printf("%s\t%s\t%s\t%s\t%s\t%s\n", r.BatchNumber, r.ProductID, r.BranchID, r.Remaining, r.EstimatedValue, r.ExpiryDate.Format(time.DateOnly))
	}
	log.Info().Int("batches", len(recs)).Time("as_of", asOf).Msg("lotes vencidos")
}
