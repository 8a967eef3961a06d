package transfer

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Traslados-api/internal/application/ports"
	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
)

func newDocument(kind entity.AttachableKind, ownerID, reference, actor string, at time.Time) *entity.Document {
	return &entity.Document{
		ID:        uuid.New().String(),
		OwnerKind: kind,
		OwnerID:   ownerID,
		Reference: reference,
		CreatedBy: actor,
		CreatedAt: at,
	}
}

// AttachDocument adjunta una referencia documental a un traslado, despacho, recepción o discrepancia.
func (uc *UseCase) AttachDocument(ctx context.Context, kind entity.AttachableKind, ownerID, reference, actor string) (*entity.Document, error) {
	if !kind.IsValid() {
		return nil, domain.Invalid("tipo de documento desconocido: %s", kind)
	}
	reference = strings.TrimSpace(reference)
	if ownerID == "" || reference == "" || actor == "" {
		return nil, domain.Invalid("dueño, referencia y actor son obligatorios")
	}
	doc := newDocument(kind, ownerID, reference, actor, uc.now())
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		ok, err := r.Documents.OwnerExists(ctx, kind, ownerID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFound("%s %s", kind, ownerID)
		}
		return r.Documents.Create(ctx, doc)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments lista las referencias adjuntas a un registro.
func (uc *UseCase) ListDocuments(ctx context.Context, kind entity.AttachableKind, ownerID string) ([]*entity.Document, error) {
	if !kind.IsValid() {
		return nil, domain.Invalid("tipo de documento desconocido: %s", kind)
	}
	var out []*entity.Document
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		out, err = r.Documents.ListByOwner(ctx, kind, ownerID)
		return err
	})
	return out, err
}
