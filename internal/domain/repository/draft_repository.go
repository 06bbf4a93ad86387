package repository

import (
	"context"

	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
)

// DraftRepository guarda el formulario en curso de cada usuario (uno por usuario).
// Load devuelve (nil, nil) si no hay borrador o si venció.
type DraftRepository interface {
	Load(ctx context.Context, ownerID string) (*valuation.Draft, error)
	Save(ctx context.Context, ownerID string, draft valuation.Draft) error
	Delete(ctx context.Context, ownerID string) error
}
