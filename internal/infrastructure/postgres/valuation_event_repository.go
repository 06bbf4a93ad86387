package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jhoicas/valoracion-api/internal/domain/entity"
	"github.com/jhoicas/valoracion-api/internal/domain/repository"
	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
)

var _ repository.ValuationEventRepository = (*ValuationEventRepo)(nil)

// ValuationEventRepo historial append-only.
type ValuationEventRepo struct {
	db Querier
}

// NewValuationEventRepository construye el repositorio de eventos.
func NewValuationEventRepository(db Querier) *ValuationEventRepo {
	return &ValuationEventRepo{db: db}
}

// Append inserta un evento. result es NULL salvo en finalizaciones.
func (r *ValuationEventRepo) Append(ctx context.Context, ev *entity.ValuationEvent) error {
	var result []byte
	if ev.Result != nil {
		b, err := json.Marshal(ev.Result)
		if err != nil {
			return fmt.Errorf("marshal result: %w", err)
		}
		result = b
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO valuation_events (id, valuation_id, user_id, type, result, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ev.ID, ev.ValuationID, ev.UserID, ev.Type, result, ev.Note, ev.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert valuation event: %w", err)
	}
	return nil
}

// ListByValuation devuelve el historial en orden cronológico.
func (r *ValuationEventRepo) ListByValuation(ctx context.Context, valuationID string) ([]*entity.ValuationEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, valuation_id, user_id, type, result, note, created_at
		FROM valuation_events WHERE valuation_id = $1
		ORDER BY created_at, id`, valuationID)
	if err != nil {
		return nil, fmt.Errorf("list valuation events: %w", err)
	}
	defer rows.Close()

	var list []*entity.ValuationEvent
	for rows.Next() {
		var (
			ev     entity.ValuationEvent
			result []byte
		)
		if err := rows.Scan(&ev.ID, &ev.ValuationID, &ev.UserID, &ev.Type, &result, &ev.Note, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan valuation event: %w", err)
		}
		if len(result) > 0 {
			var res valuation.Result
			if err := json.Unmarshal(result, &res); err != nil {
				return nil, fmt.Errorf("unmarshal result: %w", err)
			}
			ev.Result = &res
		}
		list = append(list, &ev)
	}
	return list, rows.Err()
}
