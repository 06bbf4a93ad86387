package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/valoracion-api/internal/domain"
	"github.com/jhoicas/valoracion-api/internal/domain/entity"
	"github.com/jhoicas/valoracion-api/internal/domain/repository"
	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
)

var _ repository.ValuationRepository = (*ValuationRepo)(nil)

// ValuationRepo persiste el agregado en JSONB (details, record) y replica el
// total congelado en columnas NUMERIC para las consultas del dashboard.
type ValuationRepo struct {
	db Querier
}

// NewValuationRepository construye el repositorio de valoraciones.
func NewValuationRepository(db Querier) *ValuationRepo {
	return &ValuationRepo{db: db}
}

const valuationColumns = `id, owner_id, details, record, report_style, created_at, updated_at`

// valuationRow son los parámetros derivados del agregado.
type valuationRow struct {
	details, record []byte
	clientID        *string
	base, additions decimal.NullDecimal
	deductions      decimal.NullDecimal
	penalty, final  decimal.NullDecimal
}

func toRow(v *entity.Valuation) (*valuationRow, error) {
	details, err := json.Marshal(v.Details)
	if err != nil {
		return nil, fmt.Errorf("marshal details: %w", err)
	}
	record, err := json.Marshal(v.Record)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	row := &valuationRow{details: details, record: record, clientID: nullIfEmpty(v.Details.ClientID)}
	if f := v.Record.Frozen; v.Record.IsFinalized() && f != nil {
		row.base = decimal.NewNullDecimal(f.BaseItemValue)
		row.additions = decimal.NewNullDecimal(f.TotalAdditions)
		row.deductions = decimal.NewNullDecimal(f.TotalDeductions)
		row.penalty = decimal.NewNullDecimal(f.CompliancePenalty)
		row.final = decimal.NewNullDecimal(f.FinalValue)
	}
	return row, nil
}

func scanValuation(row pgx.Row, extra ...any) (*entity.Valuation, error) {
	var (
		v               entity.Valuation
		details, record []byte
	)
	dest := append([]any{&v.ID, &v.OwnerID, &details, &record, &v.ReportStyle, &v.CreatedAt, &v.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(details, &v.Details); err != nil {
		return nil, fmt.Errorf("unmarshal details: %w", err)
	}
	if err := json.Unmarshal(record, &v.Record); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	if v.Record.Answers == nil {
		v.Record.Answers = valuation.Answers{}
	}
	return &v, nil
}

// Create inserta la valoración.
func (r *ValuationRepo) Create(ctx context.Context, v *entity.Valuation) error {
	row, err := toRow(v)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO valuations (
			id, owner_id, client_id, status, operation_type, incoterm, currency, origin_certificate,
			report_style, details, record, base_item_value, total_additions, total_deductions,
			compliance_penalty, final_value, finalized_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err = r.db.Exec(ctx, query,
		v.ID, v.OwnerID, row.clientID, v.Record.Status, v.Details.OperationType, v.Details.Incoterm,
		v.Details.Currency, v.Record.OriginCertificate, v.ReportStyle, row.details, row.record,
		row.base, row.additions, row.deductions, row.penalty, row.final, v.Record.FinalizedAt,
		v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: cliente inexistente", domain.ErrInvalidInput)
		}
		return fmt.Errorf("insert valuation: %w", err)
	}
	return nil
}

// GetByID obtiene una valoración; (nil, nil) si no existe.
func (r *ValuationRepo) GetByID(ctx context.Context, id string) (*entity.Valuation, error) {
	v, err := scanValuation(r.db.QueryRow(ctx, `SELECT `+valuationColumns+` FROM valuations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get valuation: %w", err)
	}
	return v, nil
}

// GetForUpdate obtiene la valoración y bloquea la fila (SELECT FOR UPDATE).
// Sólo tiene sentido sobre un Querier transaccional.
func (r *ValuationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Valuation, error) {
	v, err := scanValuation(r.db.QueryRow(ctx, `SELECT `+valuationColumns+` FROM valuations WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get valuation for update: %w", err)
	}
	return v, nil
}

// List devuelve una página de valoraciones del usuario (más recientes primero) y el total.
func (r *ValuationRepo) List(ctx context.Context, f repository.ValuationFilter) ([]*entity.Valuation, int, error) {
	limit, offset := clampPage(f.Limit, f.Offset)
	query := `
		SELECT ` + valuationColumns + `, COUNT(*) OVER() AS total
		FROM valuations
		WHERE owner_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY updated_at DESC, id
		LIMIT $3 OFFSET $4`
	rows, err := r.db.Query(ctx, query, f.OwnerID, string(f.Status), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list valuations: %w", err)
	}
	defer rows.Close()

	var (
		list  []*entity.Valuation
		total int
	)
	for rows.Next() {
		v, err := scanValuation(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan valuation: %w", err)
		}
		list = append(list, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(list) == 0 && offset > 0 {
		// Página fuera de rango: el total se consulta aparte.
		if err := r.db.QueryRow(ctx,
			`SELECT COUNT(*) FROM valuations WHERE owner_id = $1 AND ($2 = '' OR status = $2)`,
			f.OwnerID, string(f.Status)).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count valuations: %w", err)
		}
	}
	return list, total, nil
}

// Update reemplaza el agregado y las columnas derivadas.
func (r *ValuationRepo) Update(ctx context.Context, v *entity.Valuation) error {
	row, err := toRow(v)
	if err != nil {
		return err
	}
	query := `
		UPDATE valuations SET
			client_id = $2, status = $3, operation_type = $4, incoterm = $5, currency = $6,
			origin_certificate = $7, report_style = $8, details = $9, record = $10,
			base_item_value = $11, total_additions = $12, total_deductions = $13,
			compliance_penalty = $14, final_value = $15, finalized_at = $16, updated_at = $17
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		v.ID, row.clientID, v.Record.Status, v.Details.OperationType, v.Details.Incoterm, v.Details.Currency,
		v.Record.OriginCertificate, v.ReportStyle, row.details, row.record,
		row.base, row.additions, row.deductions, row.penalty, row.final, v.Record.FinalizedAt, v.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: cliente inexistente", domain.ErrInvalidInput)
		}
		return fmt.Errorf("update valuation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la valoración y su historial (ON DELETE CASCADE).
func (r *ValuationRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM valuations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete valuation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
