package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Traslados-api/internal/application/ports"
	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	"github.com/jhoicas/Traslados-api/internal/domain/reconciliation"
	"github.com/jhoicas/Traslados-api/internal/domain/repository"
)

// LineInput línea esperada de un traslado nuevo.
type LineInput struct {
	ProductID        string
	ExpectedQuantity decimal.Decimal
	ExpectedWeightKg *decimal.Decimal
	BatchNumber      string
	ExpiryDate       *time.Time
}

// CreateInput solicitud de traslado.
type CreateInput struct {
	OriginBranchID         string
	DestinationBranchID    string
	DestinationSubLocation string
	Notes                  string
	Lines                  []LineInput
	Actor                  string
}

func (in CreateInput) validate() error {
	if in.Actor == "" {
		return domain.Invalid("actor obligatorio")
	}
	if in.OriginBranchID == "" || in.DestinationBranchID == "" {
		return domain.Invalid("origen y destino son obligatorios")
	}
	if in.OriginBranchID == in.DestinationBranchID {
		return domain.Invalid("origen y destino deben ser distintos")
	}
	if len(in.Lines) == 0 {
		return domain.Invalid("el traslado requiere al menos una línea")
	}
	batches := make(map[string]bool)
	for i, l := range in.Lines {
		if l.ProductID == "" {
			return domain.Invalid("línea %d: producto obligatorio", i+1)
		}
		if !l.ExpectedQuantity.IsPositive() {
			return domain.Invalid("línea %d: la cantidad esperada debe ser mayor a cero", i+1)
		}
		if l.ExpectedWeightKg != nil && l.ExpectedWeightKg.IsNegative() {
			return domain.Invalid("línea %d: peso esperado negativo", i+1)
		}
		if err := errors.Join(
			domain.CheckScale("cantidad esperada", l.ExpectedQuantity),
			domain.CheckScalePtr("peso esperado", l.ExpectedWeightKg),
		); err != nil {
			return fmt.Errorf("línea %d: %w", i+1, err)
		}
		if b := strings.TrimSpace(l.BatchNumber); b != "" {
			if batches[b] {
				return domain.Invalid("línea %d: lote %s repetido", i+1, b)
			}
			batches[b] = true
		}
	}
	return nil
}

// CreateTransfer persiste un traslado en estado pending con sus líneas.
func (uc *UseCase) CreateTransfer(ctx context.Context, in CreateInput) (*entity.Transfer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := uc.now()
	t := &entity.Transfer{
		ID:                     uuid.New().String(),
		OriginBranchID:         in.OriginBranchID,
		DestinationBranchID:    in.DestinationBranchID,
		DestinationSubLocation: in.DestinationSubLocation,
		Status:                 entity.TransferPending,
		Notes:                  in.Notes,
		CreatedBy:              in.Actor,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	for i, l := range in.Lines {
		t.Lines = append(t.Lines, &entity.TransferLine{
			ID:               uuid.New().String(),
			TransferID:       t.ID,
			LineNo:           i + 1,
			ProductID:        l.ProductID,
			ExpectedQuantity: l.ExpectedQuantity,
			ExpectedWeightKg: l.ExpectedWeightKg,
			BatchNumber:      strings.TrimSpace(l.BatchNumber),
			ExpiryDate:       l.ExpiryDate,
		})
	}

	var out *entity.Transfer
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		for _, id := range []string{in.OriginBranchID, in.DestinationBranchID} {
			b, err := r.Branches.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if b == nil {
				return domain.NotFound("sucursal %s", id)
			}
			if b.IsTransit() {
				return domain.Invalid("la sucursal de tránsito no puede ser origen ni destino")
			}
		}
		for _, l := range t.Lines {
			p, err := r.Products.GetByID(ctx, l.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.NotFound("producto %s", l.ProductID)
			}
		}
		if err := r.Transfers.Create(ctx, t); err != nil {
			return err
		}
		var err error
		out, err = loadTransfer(ctx, r, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.logTransition(out, in.Actor)
	return out, nil
}

// advance aplica una transición sin efecto de stock.
func (uc *UseCase) advance(ctx context.Context, id, actor, op string, to entity.TransferStatus) (*entity.Transfer, error) {
	if actor == "" {
		return nil, domain.Invalid("actor obligatorio")
	}
	out, _, err := uc.withTransfer(ctx, id, func(r ports.Repos, t *entity.Transfer, _ *opState) error {
		if !t.Advance(to, uc.now()) {
			return domain.InvalidState(op, string(t.Status))
		}
		return r.Transfers.UpdateStatus(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	uc.logTransition(out, actor)
	return out, nil
}

// ApproveTransfer pending -> approved. No reserva stock.
func (uc *UseCase) ApproveTransfer(ctx context.Context, id, actor string) (*entity.Transfer, error) {
	return uc.advance(ctx, id, actor, "aprobar", entity.TransferApproved)
}

// MarkDelivered dispatched -> delivered. Sin efecto de stock.
func (uc *UseCase) MarkDelivered(ctx context.Context, id, actor string) (*entity.Transfer, error) {
	return uc.advance(ctx, id, actor, "marcar entregado", entity.TransferDelivered)
}

// ShipmentInput datos físicos del despacho.
type ShipmentInput struct {
	Transporter   string
	VehicleNumber string
	LRNumber      string
	SealNumber    string
	GrossKg       decimal.Decimal
	TareKg        decimal.Decimal
	NetKg         *decimal.Decimal // gross - tare si se omite
	DispatchedAt  *time.Time
	Documents     []string
	Actor         string
}

func (in ShipmentInput) netKg() (decimal.Decimal, error) {
	if in.GrossKg.IsNegative() || in.TareKg.IsNegative() {
		return decimal.Zero, domain.Invalid("pesos de despacho negativos")
	}
	if err := errors.Join(
		domain.CheckScale("peso bruto", in.GrossKg),
		domain.CheckScale("tara", in.TareKg),
		domain.CheckScalePtr("peso neto", in.NetKg),
	); err != nil {
		return decimal.Zero, err
	}
	net := in.GrossKg.Sub(in.TareKg)
	if in.NetKg != nil {
		net = *in.NetKg
	}
	if net.IsNegative() {
		return decimal.Zero, domain.Invalid("peso neto negativo")
	}
	return net, nil
}

// DispatchTransfer approved -> dispatched. Crea el Shipment y por cada línea
// saca la cantidad esperada del origen hacia tránsito; consume el lote de origen si la línea lo indica.
func (uc *UseCase) DispatchTransfer(ctx context.Context, id string, in ShipmentInput) (*entity.Transfer, error) {
	if in.Actor == "" {
		return nil, domain.Invalid("actor obligatorio")
	}
	net, err := in.netKg()
	if err != nil {
		return nil, err
	}
	out, _, err := uc.withTransfer(ctx, id, func(r ports.Repos, t *entity.Transfer, st *opState) error {
		now := uc.now()
		if t.Status != entity.TransferApproved {
			return domain.InvalidState("despachar", string(t.Status))
		}
		dispatchedAt := now
		if in.DispatchedAt != nil {
			dispatchedAt = *in.DispatchedAt
		}
		shipment := &entity.Shipment{
			ID:            uuid.New().String(),
			TransferID:    t.ID,
			Transporter:   in.Transporter,
			VehicleNumber: in.VehicleNumber,
			LRNumber:      in.LRNumber,
			SealNumber:    in.SealNumber,
			GrossKg:       in.GrossKg,
			TareKg:        in.TareKg,
			NetKg:         net,
			DispatchedAt:  dispatchedAt,
			Documents:     in.Documents,
			CreatedBy:     in.Actor,
			CreatedAt:     now,
		}
		if err := r.Transfers.CreateShipment(ctx, shipment); err != nil {
			return err
		}
		if err := uc.attachDocuments(ctx, r, entity.AttachShipment, shipment.ID, in.Documents, in.Actor); err != nil {
			return err
		}

		route := routeOf(t)
		for _, l := range t.Lines {
			ref := postingRef{refType: entity.ReferenceTransfer, refID: t.ID, actor: in.Actor}
			if l.BatchNumber != "" {
				batch, err := r.Batches.GetByNumberForUpdate(ctx, l.BatchNumber)
				if err != nil {
					return err
				}
				if batch == nil {
					return domain.NotFound("lote %s", l.BatchNumber)
				}
				if batch.BranchID != t.OriginBranchID || batch.ProductID != l.ProductID {
					return domain.Invalid("lote %s no corresponde al producto en el origen", l.BatchNumber)
				}
				if err := uc.batches.ConsumeInTx(ctx, r, batch, l.ExpectedQuantity); err != nil {
					return err
				}
				ref.batchByBranch = map[string]string{t.OriginBranchID: batch.ID}
			}
			if err := uc.post(ctx, r, st, l.ProductID, reconciliation.DispatchPostings(route, l.ExpectedQuantity), ref); err != nil {
				return err
			}
		}

		if !t.Advance(entity.TransferDispatched, now) {
			return domain.InvalidState("despachar", string(t.Status))
		}
		return r.Transfers.UpdateStatus(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	uc.logTransition(out, in.Actor)
	return out, nil
}

// ReceiptLineInput cantidades re-pesadas de una línea.
type ReceiptLineInput struct {
	TransferLineID   string
	ReceivedQuantity decimal.Decimal
	ReceivedWeightKg *decimal.Decimal
}

// ReceiptInput datos de llegada.
type ReceiptInput struct {
	ArrivedAt         *time.Time
	ReweighGrossKg    *decimal.Decimal
	ReweighTareKg     *decimal.Decimal
	ReweighNetKg      *decimal.Decimal
	Lines             []ReceiptLineInput
	TolerancePercent  decimal.Decimal
	AllowSkipDelivery bool
	Documents         []string
	Actor             string
}

func (in ReceiptInput) validate() error {
	if in.Actor == "" {
		return domain.Invalid("actor obligatorio")
	}
	if in.TolerancePercent.IsNegative() {
		return domain.Invalid("tolerancia negativa: %s", in.TolerancePercent)
	}
	if err := domain.CheckScale("tolerancia", in.TolerancePercent); err != nil {
		return err
	}
	for _, w := range []*decimal.Decimal{in.ReweighGrossKg, in.ReweighTareKg, in.ReweighNetKg} {
		if w != nil && w.IsNegative() {
			return domain.Invalid("pesos de recepción negativos")
		}
		if err := domain.CheckScalePtr("peso de recepción", w); err != nil {
			return err
		}
	}
	for _, l := range in.Lines {
		if l.ReceivedQuantity.IsNegative() {
			return domain.Invalid("línea %s: cantidad recibida negativa", l.TransferLineID)
		}
		if l.ReceivedWeightKg != nil && l.ReceivedWeightKg.IsNegative() {
			return domain.Invalid("línea %s: peso recibido negativo", l.TransferLineID)
		}
		if err := errors.Join(
			domain.CheckScale("cantidad recibida", l.ReceivedQuantity),
			domain.CheckScalePtr("peso recibido", l.ReceivedWeightKg),
		); err != nil {
			return fmt.Errorf("línea %s: %w", l.TransferLineID, err)
		}
	}
	return nil
}

// matchLines exige que cada línea del traslado se reporte exactamente una vez.
func matchLines(t *entity.Transfer, lines []ReceiptLineInput) (map[string]ReceiptLineInput, error) {
	byID := make(map[string]ReceiptLineInput, len(lines))
	for _, l := range lines {
		if t.Line(l.TransferLineID) == nil {
			return nil, domain.Invalid("línea %s no pertenece al traslado", l.TransferLineID)
		}
		if _, dup := byID[l.TransferLineID]; dup {
			return nil, domain.Invalid("línea %s reportada más de una vez", l.TransferLineID)
		}
		byID[l.TransferLineID] = l
	}
	if len(byID) != len(t.Lines) {
		return nil, domain.Invalid("se deben reportar las %d líneas del traslado", len(t.Lines))
	}
	return byID, nil
}

// ReceiveTransfer delivered -> received (o dispatched -> received si se permite omitir la entrega).
// Concilia cada línea contra la tolerancia, acredita en destino lo no disputado y agrupa
// las líneas fuera de tolerancia en una discrepancia abierta.
func (uc *UseCase) ReceiveTransfer(ctx context.Context, id string, in ReceiptInput) (*entity.Transfer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var raised *entity.Discrepancy
	out, _, err := uc.withTransfer(ctx, id, func(r ports.Repos, t *entity.Transfer, st *opState) error {
		now := uc.now()
		switch {
		case t.Status == entity.TransferDelivered:
		case t.Status == entity.TransferDispatched && (in.AllowSkipDelivery || uc.cfg.AllowSkipDelivery):
			t.Advance(entity.TransferDelivered, now)
		default:
			return domain.InvalidState("recibir", string(t.Status))
		}
		byID, err := matchLines(t, in.Lines)
		if err != nil {
			return err
		}

		arrivedAt := now
		if in.ArrivedAt != nil {
			arrivedAt = *in.ArrivedAt
		}
		receipt := &entity.Receipt{
			ID:               uuid.New().String(),
			TransferID:       t.ID,
			ArrivedAt:        arrivedAt,
			ReweighGrossKg:   in.ReweighGrossKg,
			ReweighTareKg:    in.ReweighTareKg,
			ReweighNetKg:     in.ReweighNetKg,
			TolerancePercent: in.TolerancePercent,
			ReceivedBy:       in.Actor,
			CreatedAt:        now,
		}
		if receipt.ReweighNetKg == nil && in.ReweighGrossKg != nil && in.ReweighTareKg != nil {
			net := in.ReweighGrossKg.Sub(*in.ReweighTareKg)
			receipt.ReweighNetKg = &net
		}

		route := routeOf(t)
		var pending []*entity.DiscrepancyLine
		for _, l := range t.Lines {
			got := byID[l.ID]
			lineIn := reconciliation.LineInput{
				ExpectedQuantity: l.ExpectedQuantity,
				ReceivedQuantity: got.ReceivedQuantity,
				ExpectedWeightKg: l.ExpectedWeightKg,
				ReceivedWeightKg: got.ReceivedWeightKg,
			}
			res, err := reconciliation.EvaluateLine(lineIn, in.TolerancePercent)
			if err != nil {
				return err
			}
			s := reconciliation.SettleReceipt(route, lineIn, res)

			ref := postingRef{refType: entity.ReferenceTransfer, refID: t.ID, actor: in.Actor}
			if l.BatchNumber != "" && s.Credited.IsPositive() {
				batchID, err := uc.creditDestinationBatch(ctx, r, st, t, l, s.Credited, now)
				if err != nil {
					return err
				}
				ref.batchByBranch = map[string]string{t.DestinationBranchID: batchID}
			}
			if err := uc.post(ctx, r, st, l.ProductID, s.Postings, ref); err != nil {
				return err
			}

			qty := got.ReceivedQuantity
			l.ReceivedQuantity = &qty
			l.ReceivedWeightKg = got.ReceivedWeightKg
			if err := r.Transfers.UpdateLineReceipt(ctx, l); err != nil {
				return err
			}
			receipt.Lines = append(receipt.Lines, entity.ReceiptLine{
				TransferLineID:   l.ID,
				ReceivedQuantity: got.ReceivedQuantity,
				ReceivedWeightKg: got.ReceivedWeightKg,
			})

			if s.Line != nil {
				s.Line.ID = uuid.New().String()
				s.Line.TransferLineID = l.ID
				s.Line.ProductID = l.ProductID
				pending = append(pending, s.Line)
			}
		}

		if err := r.Transfers.CreateReceipt(ctx, receipt); err != nil {
			return err
		}
		if err := uc.attachDocuments(ctx, r, entity.AttachReceipt, receipt.ID, in.Documents, in.Actor); err != nil {
			return err
		}
		if len(pending) > 0 {
			var reason entity.DiscrepancyReason
			for _, dl := range pending {
				reason = entity.MergeReason(reason, entity.ReasonFor(dl))
			}
			raised, err = uc.appendDiscrepancy(ctx, r, t, reason, "", pending, in.Actor)
			if err != nil {
				return err
			}
		}

		if !t.Advance(entity.TransferReceived, now) {
			return domain.InvalidState("recibir", string(t.Status))
		}
		return r.Transfers.UpdateStatus(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	uc.logTransition(out, in.Actor)
	if raised != nil {
		uc.metrics.DiscrepancyRaised(string(raised.Reason))
		uc.log.Warn().
			Str("transfer_id", out.ID).
			Str("discrepancy_id", raised.ID).
			Str("reason", string(raised.Reason)).
			Int("lines", len(raised.Lines)).
			Msg("recepción fuera de tolerancia")
	}
	return out, nil
}

// creditDestinationBatch acredita qty al lote <lote>-<traslado> del destino,
// creándolo en la recepción o completándolo al resolver un sobrante.
func (uc *UseCase) creditDestinationBatch(
	ctx context.Context,
	r ports.Repos,
	st *opState,
	t *entity.Transfer,
	l *entity.TransferLine,
	qty decimal.Decimal,
	now time.Time,
) (string, error) {
	number := l.BatchNumber + "-" + shortID(t.ID)
	existing, err := r.Batches.GetByNumberForUpdate(ctx, number)
	if err != nil {
		return "", err
	}
	if existing != nil {
		existing.TopUp(qty, now)
		if err := r.Batches.Update(ctx, existing); err != nil {
			return "", err
		}
		return existing.ID, nil
	}

	var price decimal.Decimal
	purchaseDate := now
	source, err := r.Batches.GetByNumberForUpdate(ctx, l.BatchNumber)
	if err != nil {
		return "", err
	}
	if source != nil {
		price = source.PurchasePrice
		purchaseDate = source.PurchaseDate
	} else {
		p, err := st.product(ctx, r, l.ProductID)
		if err != nil {
			return "", err
		}
		price = p.Cost
	}
	expiry := l.ExpiryDate
	if expiry == nil && source != nil {
		expiry = source.ExpiryDate
	}
	batch := &entity.Batch{
		ID:              uuid.New().String(),
		BatchNumber:     number,
		ProductID:       l.ProductID,
		BranchID:        t.DestinationBranchID,
		InitialQuantity: qty,
		CurrentQuantity: qty,
		PurchasePrice:   price,
		PurchaseDate:    purchaseDate,
		ExpiryDate:      expiry,
		Status:          entity.BatchStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := r.Batches.Create(ctx, batch); err != nil {
		return "", err
	}
	return batch.ID, nil
}

func shortID(id string) string {
	s := strings.ReplaceAll(id, "-", "")
	if len(s) > 8 {
		s = s[:8]
	}
	return strings.ToUpper(s)
}

// GetTransfer devuelve el agregado completo.
func (uc *UseCase) GetTransfer(ctx context.Context, id string) (*entity.Transfer, error) {
	var out *entity.Transfer
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		out, err = loadTransfer(ctx, r, id)
		return err
	})
	return out, err
}

// ListTransfers lista traslados por sucursal (origen o destino) y estado.
func (uc *UseCase) ListTransfers(ctx context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	if f.Status != "" && !f.Status.IsValid() {
		return nil, domain.Invalid("estado desconocido: %s", f.Status)
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	var out []*entity.Transfer
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		out, err = r.Transfers.List(ctx, f)
		return err
	})
	return out, err
}
