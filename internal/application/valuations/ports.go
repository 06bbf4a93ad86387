package valuations

import (
	"context"

	"github.com/jhoicas/valoracion-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios de valoraciones e historial atados a esa tx. Finalizar y
// reabrir escriben ambos o ninguno.
type TxRunner interface {
	RunValuation(ctx context.Context, fn func(
		valRepo repository.ValuationRepository,
		eventRepo repository.ValuationEventRepository,
	) error) error
}
