// Package memory implementa los repositorios en memoria. Cada transacción
// toma el lock del store y trabaja sobre el estado vivo; si falla se restaura
// la copia tomada al inicio. Se usa en desarrollo (STORE_DRIVER=memory) y en tests.
//
// Como Run serializa, GetForUpdate nunca choca: una segunda transición sobre
// el mismo traslado espera y falla con ErrInvalidState, mientras que en
// Postgres el FOR UPDATE NOWAIT devuelve ErrConcurrentModification.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Traslados-api/internal/application/ports"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
)

var _ ports.TxRunner = (*Store)(nil)

type stockKey struct {
	productID string
	branchID  string
}

type state struct {
	branches        map[string]entity.Branch
	products        map[string]entity.Product
	stock           map[stockKey]entity.BranchStock
	movements       []entity.StockMovement
	batches         map[string]entity.Batch
	transfers       map[string]entity.Transfer
	lines           map[string][]entity.TransferLine // por transfer_id
	shipments       map[string]entity.Shipment       // por transfer_id
	receipts        map[string]entity.Receipt        // por transfer_id
	discrepancies   map[string]entity.Discrepancy
	discLines       map[string][]entity.DiscrepancyLine // por discrepancy_id
	losses          []entity.LossRecord
	quarantine      []entity.QuarantineEntry
	quarantineStock map[stockKey]decimal.Decimal
	documents       []entity.Document
}

func newState() *state {
	return &state{
		branches:        map[string]entity.Branch{},
		products:        map[string]entity.Product{},
		stock:           map[stockKey]entity.BranchStock{},
		batches:         map[string]entity.Batch{},
		transfers:       map[string]entity.Transfer{},
		lines:           map[string][]entity.TransferLine{},
		shipments:       map[string]entity.Shipment{},
		receipts:        map[string]entity.Receipt{},
		discrepancies:   map[string]entity.Discrepancy{},
		discLines:       map[string][]entity.DiscrepancyLine{},
		quarantineStock: map[stockKey]decimal.Decimal{},
	}
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copySlices[K comparable, V any](m map[K][]V) map[K][]V {
	out := make(map[K][]V, len(m))
	for k, v := range m {
		out[k] = append([]V(nil), v...)
	}
	return out
}

func (s *state) clone() *state {
	receipts := make(map[string]entity.Receipt, len(s.receipts))
	for k, r := range s.receipts {
		r.Lines = append([]entity.ReceiptLine(nil), r.Lines...)
		receipts[k] = r
	}
	return &state{
		branches:        copyMap(s.branches),
		products:        copyMap(s.products),
		stock:           copyMap(s.stock),
		movements:       append([]entity.StockMovement(nil), s.movements...),
		batches:         copyMap(s.batches),
		transfers:       copyMap(s.transfers),
		lines:           copySlices(s.lines),
		shipments:       copyMap(s.shipments),
		receipts:        receipts,
		discrepancies:   copyMap(s.discrepancies),
		discLines:       copySlices(s.discLines),
		losses:          append([]entity.LossRecord(nil), s.losses...),
		quarantine:      append([]entity.QuarantineEntry(nil), s.quarantine...),
		quarantineStock: copyMap(s.quarantineStock),
		documents:       append([]entity.Document(nil), s.documents...),
	}
}

// Store almacén en memoria; implementa ports.TxRunner.
type Store struct {
	mu   sync.Mutex
	data *state
	now  func() time.Time
}

// New crea un store vacío con la sucursal de tránsito ya registrada.
func New() *Store {
	s := &Store{data: newState(), now: time.Now}
	now := s.now()
	s.data.branches[entity.TransitBranchID] = entity.Branch{
		ID:        entity.TransitBranchID,
		Code:      "TRANSITO",
		Name:      "Mercancía en tránsito",
		Kind:      entity.BranchKindTransit,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s
}

// Run ejecuta fn de forma serializada; si fn falla el estado vuelve a la copia inicial.
func (s *Store) Run(ctx context.Context, fn func(r ports.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(s.repos()); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func (s *Store) repos() ports.Repos {
	return ports.Repos{
		Branches:      branchRepo{s},
		Products:      productRepo{s},
		Stock:         stockRepo{s},
		Movements:     movementRepo{s},
		Batches:       batchRepo{s},
		Transfers:     transferRepo{s},
		Discrepancies: discrepancyRepo{s},
		Losses:        lossRepo{s},
		Quarantine:    quarantineRepo{s},
		Documents:     documentRepo{s},
	}
}
