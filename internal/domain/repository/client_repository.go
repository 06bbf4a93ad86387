package repository

import (
	"context"

	"github.com/jhoicas/valoracion-api/internal/domain/entity"
)

// ClientRepository define el puerto de persistencia para Client.
type ClientRepository interface {
	Create(ctx context.Context, client *entity.Client) error
	GetByID(ctx context.Context, id string) (*entity.Client, error)
	GetByOwnerAndCUIT(ctx context.Context, ownerID, cuit string) (*entity.Client, error)
	// ListByOwner devuelve todos los clientes del usuario ordenados por nombre.
	// El filtrado por texto lo hace el caso de uso (insensible a acentos).
	ListByOwner(ctx context.Context, ownerID string) ([]*entity.Client, error)
	Update(ctx context.Context, client *entity.Client) error
	Delete(ctx context.Context, id string) error
}
