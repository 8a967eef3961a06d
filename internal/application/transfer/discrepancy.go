package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Traslados-api/internal/application/ports"
	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Traslados-api/internal/domain/inventory"
	"github.com/jhoicas/Traslados-api/internal/domain/reconciliation"
)

// appendDiscrepancy agrega lines a la discrepancia abierta del traslado o crea una nueva.
// La recepción siempre crea (antes de recibir no hay discrepancias); los
// reportes manuales posteriores se suman a la abierta.
func (uc *UseCase) appendDiscrepancy(
	ctx context.Context,
	r ports.Repos,
	t *entity.Transfer,
	reason entity.DiscrepancyReason,
	notes string,
	lines []*entity.DiscrepancyLine,
	actor string,
) (*entity.Discrepancy, error) {
	if open := t.OpenDiscrepancy(); open != nil {
		locked, err := r.Discrepancies.GetForUpdate(ctx, open.ID)
		if err != nil {
			return nil, err
		}
		if locked != nil && locked.Status == entity.DiscrepancyOpen {
			for _, l := range lines {
				l.DiscrepancyID = locked.ID
			}
			if err := r.Discrepancies.AddLines(ctx, locked.ID, lines); err != nil {
				return nil, err
			}
			locked.Reason = entity.MergeReason(locked.Reason, reason)
			locked.Notes = joinNotes(locked.Notes, notes)
			if err := r.Discrepancies.Update(ctx, locked); err != nil {
				return nil, err
			}
			locked.Lines = append(locked.Lines, lines...)
			return locked, nil
		}
	}

	d := &entity.Discrepancy{
		ID:         uuid.New().String(),
		TransferID: t.ID,
		Reason:     reason,
		Status:     entity.DiscrepancyOpen,
		Notes:      notes,
		RaisedBy:   actor,
		RaisedAt:   uc.now(),
		Lines:      lines,
	}
	for _, l := range lines {
		l.DiscrepancyID = d.ID
	}
	if err := r.Discrepancies.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func joinNotes(a, b string) string {
	switch {
	case b == "":
		return a
	case a == "":
		return b
	}
	return a + "\n" + b
}

// RaiseLineInput línea reportada manualmente en destino.
type RaiseLineInput struct {
	TransferLineID string // opcional; si falta se toma la línea del producto
	ProductID      string
	QuantityDelta  decimal.Decimal
	WeightDeltaKg  *decimal.Decimal
	Notes          string
}

// RaiseInput discrepancia manual del operador.
type RaiseInput struct {
	Reason entity.DiscrepancyReason
	Notes  string
	Lines  []RaiseLineInput
	Actor  string
}

func (in RaiseInput) validate() error {
	if in.Actor == "" {
		return domain.Invalid("actor obligatorio")
	}
	if !in.Reason.IsValid() {
		return domain.Invalid("motivo desconocido: %s", in.Reason)
	}
	if len(in.Lines) == 0 {
		return domain.Invalid("la discrepancia requiere al menos una línea")
	}
	for i, l := range in.Lines {
		if l.ProductID == "" && l.TransferLineID == "" {
			return domain.Invalid("línea %d: producto o línea de traslado obligatorio", i+1)
		}
		noWeight := l.WeightDeltaKg == nil || l.WeightDeltaKg.IsZero()
		if l.QuantityDelta.IsZero() && noWeight {
			return domain.Invalid("línea %d: sin diferencia de cantidad ni de peso", i+1)
		}
		if err := errors.Join(
			domain.CheckScale("diferencia de cantidad", l.QuantityDelta),
			domain.CheckScalePtr("diferencia de peso", l.WeightDeltaKg),
		); err != nil {
			return fmt.Errorf("línea %d: %w", i+1, err)
		}
	}
	return nil
}

func findLine(t *entity.Transfer, in RaiseLineInput) (*entity.TransferLine, error) {
	if in.TransferLineID != "" {
		l := t.Line(in.TransferLineID)
		if l == nil {
			return nil, domain.Invalid("línea %s no pertenece al traslado", in.TransferLineID)
		}
		if in.ProductID != "" && in.ProductID != l.ProductID {
			return nil, domain.Invalid("la línea %s no corresponde al producto %s", l.ID, in.ProductID)
		}
		return l, nil
	}
	for _, l := range t.Lines {
		if l.ProductID == in.ProductID {
			return l, nil
		}
	}
	return nil, domain.Invalid("el producto %s no está en el traslado", in.ProductID)
}

// RaiseDiscrepancy registra una discrepancia manual sobre un traslado recibido
// (daño, vencimiento, mercancía equivocada). Sus líneas se originan en destino.
func (uc *UseCase) RaiseDiscrepancy(ctx context.Context, transferID string, in RaiseInput) (*entity.Discrepancy, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var out *entity.Discrepancy
	_, _, err := uc.withTransfer(ctx, transferID, func(r ports.Repos, t *entity.Transfer, _ *opState) error {
		if t.Status != entity.TransferReceived {
			return domain.InvalidState("reportar discrepancia", string(t.Status))
		}
		var lines []*entity.DiscrepancyLine
		for _, li := range in.Lines {
			tl, err := findLine(t, li)
			if err != nil {
				return err
			}
			received := tl.ExpectedQuantity
			if tl.ReceivedQuantity != nil {
				received = *tl.ReceivedQuantity
			}
			dim := entity.DimensionQuantity
			if li.QuantityDelta.IsZero() {
				dim = entity.DimensionWeight
			}
			res, err := reconciliation.Evaluate(received, received.Add(li.QuantityDelta), decimal.Zero)
			if err != nil {
				return err
			}
			lines = append(lines, &entity.DiscrepancyLine{
				ID:               uuid.New().String(),
				TransferLineID:   tl.ID,
				ProductID:        tl.ProductID,
				ExpectedQuantity: tl.ExpectedQuantity,
				ReceivedQuantity: received,
				QuantityDelta:    li.QuantityDelta,
				WeightDeltaKg:    li.WeightDeltaKg,
				DeviationPercent: res.PercentDeviation,
				Dimension:        dim,
				Source:           entity.SourceDestination,
				Notes:            li.Notes,
			})
		}
		var err error
		out, err = uc.appendDiscrepancy(ctx, r, t, in.Reason, in.Notes, lines, in.Actor)
		if err != nil {
			return err
		}
		return uc.reloadDiscrepancy(ctx, r, &out)
	})
	if err != nil {
		return nil, err
	}
	uc.metrics.DiscrepancyRaised(string(in.Reason))
	uc.log.Warn().
		Str("transfer_id", transferID).
		Str("discrepancy_id", out.ID).
		Str("reason", string(in.Reason)).
		Str("actor", in.Actor).
		Msg("discrepancia reportada")
	return out, nil
}

// destinationInflow cantidad que entra al destino por traslado desde tránsito.
func destinationInflow(route reconciliation.Route, postings []reconciliation.Posting) decimal.Decimal {
	in := decimal.Zero
	for _, p := range postings {
		if p.BranchID == route.Destination && p.Type == entity.MovementTransferIn && p.Quantity.IsPositive() {
			in = in.Add(p.Quantity)
		}
	}
	return in
}

func (uc *UseCase) reloadDiscrepancy(ctx context.Context, r ports.Repos, d **entity.Discrepancy) error {
	fresh, err := r.Discrepancies.GetByID(ctx, (*d).ID)
	if err != nil {
		return err
	}
	if fresh == nil {
		return domain.NotFound("discrepancia %s", (*d).ID)
	}
	*d = fresh
	return nil
}

// GetDiscrepancy devuelve la discrepancia con sus líneas.
func (uc *UseCase) GetDiscrepancy(ctx context.Context, id string) (*entity.Discrepancy, error) {
	var out *entity.Discrepancy
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		out, err = r.Discrepancies.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if out == nil {
			return domain.NotFound("discrepancia %s", id)
		}
		return nil
	})
	return out, err
}

// ListDiscrepancies lista las discrepancias de un traslado, abiertas o cerradas.
func (uc *UseCase) ListDiscrepancies(ctx context.Context, transferID string) ([]*entity.Discrepancy, error) {
	var out []*entity.Discrepancy
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		t, err := r.Transfers.GetByID(ctx, transferID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.NotFound("traslado %s", transferID)
		}
		out, err = r.Discrepancies.ListByTransfer(ctx, transferID)
		return err
	})
	return out, err
}

// ResolveDiscrepancy aplica la misma disposición a todas las líneas abiertas.
func (uc *UseCase) ResolveDiscrepancy(ctx context.Context, id string, d entity.Disposition, actor string) (*entity.Discrepancy, error) {
	if !d.IsValid() {
		return nil, domain.Invalid("disposición desconocida: %s", d)
	}
	return uc.resolve(ctx, id, nil, d, actor)
}

// ResolveDiscrepancyLines aplica una disposición por línea. La discrepancia se
// cierra solo cuando todas sus líneas quedan aplicadas.
func (uc *UseCase) ResolveDiscrepancyLines(ctx context.Context, id string, byLine map[string]entity.Disposition, actor string) (*entity.Discrepancy, error) {
	if len(byLine) == 0 {
		return nil, domain.Invalid("sin líneas a resolver")
	}
	for lineID, d := range byLine {
		if !d.IsValid() {
			return nil, domain.Invalid("línea %s: disposición desconocida: %s", lineID, d)
		}
	}
	return uc.resolve(ctx, id, byLine, "", actor)
}

func (uc *UseCase) resolve(
	ctx context.Context,
	id string,
	byLine map[string]entity.Disposition,
	uniform entity.Disposition,
	actor string,
) (*entity.Discrepancy, error) {
	if actor == "" {
		return nil, domain.Invalid("actor obligatorio")
	}
	head, err := uc.GetDiscrepancy(ctx, id)
	if err != nil {
		return nil, err
	}
	if head.Status == entity.DiscrepancyResolved {
		return head, domain.ErrAlreadyResolved
	}

	var out *entity.Discrepancy
	applied := make(map[entity.Disposition]int)
	_, _, err = uc.withTransfer(ctx, head.TransferID, func(r ports.Repos, t *entity.Transfer, st *opState) error {
		disc, err := r.Discrepancies.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if disc == nil {
			return domain.NotFound("discrepancia %s", id)
		}
		if disc.Status == entity.DiscrepancyResolved {
			return domain.ErrAlreadyResolved
		}

		type target struct {
			line *entity.DiscrepancyLine
			disp entity.Disposition
		}
		var targets []target
		if byLine == nil {
			for _, l := range disc.PendingLines() {
				targets = append(targets, target{l, uniform})
			}
		} else {
			for lineID := range byLine {
				l := disc.Line(lineID)
				if l == nil {
					return domain.NotFound("línea de discrepancia %s", lineID)
				}
				if l.Resolved {
					return fmt.Errorf("%w: línea %s", domain.ErrAlreadyResolved, lineID)
				}
			}
			for _, l := range disc.Lines {
				if d, ok := byLine[l.ID]; ok {
					targets = append(targets, target{l, d})
				}
			}
		}
		if len(targets) == 0 {
			return domain.ErrAlreadyResolved
		}

		now := uc.now()
		route := routeOf(t)
		for _, tg := range targets {
			res := reconciliation.SettleDisposition(route, tg.line, tg.disp)
			ref := postingRef{refType: entity.ReferenceDiscrepancy, refID: disc.ID, actor: actor}
			if tl := t.Line(tg.line.TransferLineID); tl != nil && tl.BatchNumber != "" {
				if in := destinationInflow(route, res.Postings); in.IsPositive() {
					batchID, err := uc.creditDestinationBatch(ctx, r, st, t, tl, in, now)
					if err != nil {
						return err
					}
					ref.batchByBranch = map[string]string{t.DestinationBranchID: batchID}
				}
			}
			if err := uc.post(ctx, r, st, tg.line.ProductID, res.Postings, ref); err != nil {
				return err
			}
			if res.LossQuantity.IsPositive() {
				product, err := st.product(ctx, r, tg.line.ProductID)
				if err != nil {
					return err
				}
				if err := r.Losses.Create(ctx, &entity.LossRecord{
					ID:            uuid.New().String(),
					DiscrepancyID: disc.ID,
					ProductID:     tg.line.ProductID,
					BranchID:      res.LossBranchID,
					Quantity:      res.LossQuantity,
					UnitCost:      product.Cost,
					Amount:        domaininv.LossAmount(res.LossQuantity, product.Cost),
					Actor:         actor,
					CreatedAt:     now,
				}); err != nil {
					return err
				}
			}
			if res.QuarantineQuantity.IsPositive() {
				if err := r.Quarantine.Hold(ctx, &entity.QuarantineEntry{
					ID:            uuid.New().String(),
					DiscrepancyID: disc.ID,
					ProductID:     tg.line.ProductID,
					BranchID:      t.DestinationBranchID,
					Quantity:      res.QuarantineQuantity,
					Actor:         actor,
					CreatedAt:     now,
				}); err != nil {
					return err
				}
			}
			resolvedAt := now
			tg.line.Disposition = tg.disp
			tg.line.Resolved = true
			tg.line.ResolvedAt = &resolvedAt
			if err := r.Discrepancies.ResolveLine(ctx, tg.line); err != nil {
				return err
			}
			applied[tg.disp]++
		}

		if len(disc.PendingLines()) == 0 {
			resolvedAt := now
			disc.Status = entity.DiscrepancyResolved
			disc.ResolvedBy = actor
			disc.ResolvedAt = &resolvedAt
			if err := r.Discrepancies.Update(ctx, disc); err != nil {
				return err
			}
		}
		out = disc
		return uc.reloadDiscrepancy(ctx, r, &out)
	})
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyResolved) {
			current, gerr := uc.GetDiscrepancy(ctx, id)
			if gerr == nil {
				return current, err
			}
		}
		return nil, err
	}
	for d, n := range applied {
		for i := 0; i < n; i++ {
			uc.metrics.DispositionApplied(string(d))
		}
	}
	uc.log.Info().
		Str("discrepancy_id", out.ID).
		Str("transfer_id", out.TransferID).
		Str("status", string(out.Status)).
		Str("actor", actor).
		Msg("discrepancia resuelta")
	return out, nil
}
