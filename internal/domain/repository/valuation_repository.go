package repository

import (
	"context"

	"github.com/jhoicas/valoracion-api/internal/domain/entity"
	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
)

// ValuationFilter filtros del listado de valoraciones.
type ValuationFilter struct {
	OwnerID string
	Status  valuation.RecordStatus // vacío = todas
	Limit   int
	Offset  int
}

// ValuationRepository define el puerto de persistencia para Valuation.
type ValuationRepository interface {
	Create(ctx context.Context, v *entity.Valuation) error
	GetByID(ctx context.Context, id string) (*entity.Valuation, error)
	// GetForUpdate lee y bloquea la fila hasta el fin de la transacción; (nil, nil) si no existe.
	GetForUpdate(ctx context.Context, id string) (*entity.Valuation, error)
	List(ctx context.Context, f ValuationFilter) ([]*entity.Valuation, int, error)
	Update(ctx context.Context, v *entity.Valuation) error
	Delete(ctx context.Context, id string) error
}

// ValuationEventRepository historial append-only de una valoración.
type ValuationEventRepository interface {
	Append(ctx context.Context, ev *entity.ValuationEvent) error
	ListByValuation(ctx context.Context, valuationID string) ([]*entity.ValuationEvent, error)
}
