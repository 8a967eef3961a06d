package transfer

import (
	"context"
	"fmt"

	"github.com/jhoicas/Traslados-api/internal/application/ports"
	"github.com/jhoicas/Traslados-api/internal/domain"
	"github.com/jhoicas/Traslados-api/internal/domain/entity"
)

// ManifestData todo lo que imprime la guía de traslado (remisión).
type ManifestData struct {
	Transfer    *entity.Transfer
	Origin      *entity.Branch
	Destination *entity.Branch
	// Products por ID, para nombre, SKU y unidad de cada línea.
	Products map[string]*entity.Product
}

// ManifestRenderer genera el documento imprimible de la guía.
type ManifestRenderer interface {
	RenderManifest(ctx context.Context, m *ManifestData) ([]byte, error)
}

// ManifestUseCase arma la guía de traslado que acompaña la mercancía.
type ManifestUseCase struct {
	tx       ports.TxRunner
	renderer ManifestRenderer
}

// NewManifestUseCase construye el caso de uso.
func NewManifestUseCase(tx ports.TxRunner, renderer ManifestRenderer) *ManifestUseCase {
	return &ManifestUseCase{tx: tx, renderer: renderer}
}

// Download devuelve el PDF de la guía y su nombre de archivo. Solo existe guía
// desde el despacho: antes no hay vehículo ni pesos que imprimir.
func (uc *ManifestUseCase) Download(ctx context.Context, transferID string) ([]byte, string, error) {
	data := &ManifestData{Products: make(map[string]*entity.Product)}
	err := uc.tx.Run(ctx, func(r ports.Repos) error {
		t, err := loadTransfer(ctx, r, transferID)
		if err != nil {
			return err
		}
		if t.Status.Before(entity.TransferDispatched) || t.Shipment == nil {
			return domain.InvalidState("imprimir guía", string(t.Status))
		}
		data.Transfer = t

		if data.Origin, err = r.Branches.GetByID(ctx, t.OriginBranchID); err != nil {
			return err
		}
		if data.Destination, err = r.Branches.GetByID(ctx, t.DestinationBranchID); err != nil {
			return err
		}
		if data.Origin == nil || data.Destination == nil {
			return domain.NotFound("sucursal del traslado %s", t.ID)
		}
		for _, l := range t.Lines {
			if _, ok := data.Products[l.ProductID]; ok {
				continue
			}
			p, err := r.Products.GetByID(ctx, l.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.NotFound("producto %s", l.ProductID)
			}
			data.Products[l.ProductID] = p
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	pdf, err := uc.renderer.RenderManifest(ctx, data)
	if err != nil {
		return nil, "", fmt.Errorf("guía: generación fallida: %w", err)
	}
	return pdf, fmt.Sprintf("guia_traslado_%s.pdf", shortID(data.Transfer.ID)), nil
}
