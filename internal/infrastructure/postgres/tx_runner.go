package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/valoracion-api/internal/application/valuations"
	"github.com/jhoicas/valoracion-api/internal/domain/repository"
)

var _ valuations.TxRunner = (*TxRunner)(nil)

// valuationTxOptions: cada operación bloquea su fila con FOR UPDATE antes de
// modificarla, así que READ COMMITTED alcanza.
var valuationTxOptions = pgx.TxOptions{
	IsoLevel:   pgx.ReadCommitted,
	AccessMode: pgx.ReadWrite,
}

// TxRunner ata los repositorios de valoración a una transacción.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunValuation ejecuta fn con repos sobre la misma tx. Si fn devuelve error
// se hace rollback y el error sale sin envolver, para que errors.Is siga
// funcionando en el caso de uso.
func (r *TxRunner) RunValuation(ctx context.Context, fn func(
	valRepo repository.ValuationRepository,
	eventRepo repository.ValuationEventRepository,
) error) error {
	var fnErr error
	err := pgx.BeginTxFunc(ctx, r.pool, valuationTxOptions, func(tx pgx.Tx) error {
		fnErr = fn(NewValuationRepository(tx), NewValuationEventRepository(tx))
		return fnErr
	})
	switch {
	case fnErr != nil:
		return fnErr
	case err != nil:
		return fmt.Errorf("transacción de valoración: %w", err)
	}
	return nil
}
