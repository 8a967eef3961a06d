package repository

import (
	"context"

	"github.com/jhoicas/Traslados-api/internal/domain/entity"
)

// DocumentRepository referencias documentales adjuntas.
type DocumentRepository interface {
	Create(ctx context.Context, doc *entity.Document) error
	ListByOwner(ctx context.Context, kind entity.AttachableKind, ownerID string) ([]*entity.Document, error)
	// OwnerExists verifica que exista el registro dueño según su tipo.
	OwnerExists(ctx context.Context, kind entity.AttachableKind, ownerID string) (bool, error)
}
