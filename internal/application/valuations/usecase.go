// Package valuations orquesta el ciclo de vida de una valoración aduanera:
// alta, respuestas, vista previa, finalización, reapertura e historial.
package valuations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/valoracion-api/internal/application/dto"
	"github.com/jhoicas/valoracion-api/internal/domain"
	"github.com/jhoicas/valoracion-api/internal/domain/entity"
	"github.com/jhoicas/valoracion-api/internal/domain/repository"
	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
	"github.com/jhoicas/valoracion-api/pkg/logger"
)

// ValuationUseCase casos de uso de valoraciones y del borrador en curso.
type ValuationUseCase struct {
	valRepo    repository.ValuationRepository
	eventRepo  repository.ValuationEventRepository
	clientRepo repository.ClientRepository
	drafts     repository.DraftRepository
	tx         TxRunner
	log        *logger.Logger
	now        func() time.Time
}

// NewValuationUseCase construye el caso de uso inyectando sus dependencias.
func NewValuationUseCase(
	valRepo repository.ValuationRepository,
	eventRepo repository.ValuationEventRepository,
	clientRepo repository.ClientRepository,
	drafts repository.DraftRepository,
	tx TxRunner,
	log *logger.Logger,
) *ValuationUseCase {
	return &ValuationUseCase{
		valRepo:    valRepo,
		eventRepo:  eventRepo,
		clientRepo: clientRepo,
		drafts:     drafts,
		tx:         tx,
		log:        log.Named("valuations"),
		now:        time.Now,
	}
}

// ── Consultas sin estado ─────────────────────────────────────────────────────

// Questions devuelve la tabla regulatoria vigente.
func (uc *ValuationUseCase) Questions() dto.QuestionTableResponse {
	qs := valuation.Questions()
	out := make([]dto.QuestionDTO, 0, len(qs))
	for _, q := range qs {
		out = append(out, dto.NewQuestionDTO(q))
	}
	return dto.QuestionTableResponse{Version: valuation.TableVersion, Questions: out}
}

// Calculate calcula sin persistir nada. Nunca falla: lo mal formado vale cero.
func (uc *ValuationUseCase) Calculate(in dto.CalculateRequest) dto.CalculateResponse {
	rec := dto.RecordFromInputs(in.BaseItemValue, in.Answers, in.OriginCertificate)
	return preview(&rec)
}

// ── Alta y lectura ───────────────────────────────────────────────────────────

// CreateDraft crea una valoración en borrador. Con FromDraft parte del
// formulario en curso del usuario y lo descarta al persistir.
func (uc *ValuationUseCase) CreateDraft(ctx context.Context, ownerID string, in dto.CreateValuationRequest) (*dto.ValuationResponse, error) {
	var src valuation.RecordSource = valuation.FreshSource{Details: in.Details.ToDomain()}
	if in.FromDraft {
		d, err := uc.drafts.Load(ctx, ownerID)
		if err != nil {
			return nil, fmt.Errorf("valuations: cargar borrador: %w", err)
		}
		if d == nil {
			return nil, fmt.Errorf("%w: no hay borrador en curso", domain.ErrNotFound)
		}
		src = valuation.LoadedDraftSource{Draft: *d}
	}
	details, rec := valuation.Normalize(src)
	if err := uc.checkClient(ctx, ownerID, details.ClientID); err != nil {
		return nil, err
	}

	now := uc.now()
	v := &entity.Valuation{
		ID:          uuid.New().String(),
		OwnerID:     ownerID,
		Details:     details,
		Record:      rec,
		ReportStyle: styleOrDefault(in.ReportStyle),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := uc.tx.RunValuation(ctx, func(valRepo repository.ValuationRepository, eventRepo repository.ValuationEventRepository) error {
		if err := valRepo.Create(ctx, v); err != nil {
			return err
		}
		return eventRepo.Append(ctx, uc.event(v, ownerID, entity.EventCreated, nil, ""))
	})
	if err != nil {
		return nil, fmt.Errorf("valuations: crear: %w", err)
	}

	if in.FromDraft {
		if err := uc.drafts.Delete(ctx, ownerID); err != nil {
			uc.log.Warn().Err(err).Str("user_id", ownerID).Msg("no se pudo descartar el borrador")
		}
	}
	return toValuationResponse(v), nil
}

// Get obtiene una valoración propia.
func (uc *ValuationUseCase) Get(ctx context.Context, ownerID, id string) (*dto.ValuationResponse, error) {
	v, err := uc.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return toValuationResponse(v), nil
}

// List lista las valoraciones del usuario, más recientes primero.
func (uc *ValuationUseCase) List(ctx context.Context, ownerID string, in dto.ValuationListRequest) (*dto.ValuationListResponse, error) {
	in.DefaultPage()
	list, total, err := uc.valRepo.List(ctx, repository.ValuationFilter{
		OwnerID: ownerID,
		Status:  valuation.RecordStatus(in.Status),
		Limit:   in.Limit,
		Offset:  in.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ValuationSummaryDTO, 0, len(list))
	for _, v := range list {
		items = append(items, toSummary(v))
	}
	return &dto.ValuationListResponse{
		Items: items,
		Page:  dto.NewPage(in.PageRequest, total),
	}, nil
}

// Preview calcula el resultado vigente del registro sin modificarlo.
func (uc *ValuationUseCase) Preview(ctx context.Context, ownerID, id string) (*dto.CalculateResponse, error) {
	v, err := uc.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	p := preview(&v.Record)
	return &p, nil
}

// History devuelve el historial de la valoración, del más antiguo al más nuevo.
func (uc *ValuationUseCase) History(ctx context.Context, ownerID, id string) ([]dto.EventDTO, error) {
	if _, err := uc.load(ctx, ownerID, id); err != nil {
		return nil, err
	}
	events, err := uc.eventRepo.ListByValuation(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EventDTO, 0, len(events))
	for _, ev := range events {
		e := dto.EventDTO{
			ID:        ev.ID,
			Type:      ev.Type,
			UserID:    ev.UserID,
			Note:      ev.Note,
			CreatedAt: ev.CreatedAt,
		}
		if ev.Result != nil {
			r := dto.NewResultDTO(*ev.Result)
			e.Result = &r
		}
		out = append(out, e)
	}
	return out, nil
}

// ── Edición ──────────────────────────────────────────────────────────────────

// UpdateDetails reemplaza los datos descriptivos. Requiere borrador.
func (uc *ValuationUseCase) UpdateDetails(ctx context.Context, ownerID, id string, in dto.UpdateDetailsRequest) (*dto.ValuationResponse, error) {
	details := in.Details.ToDomain()
	if err := uc.checkClient(ctx, ownerID, details.ClientID); err != nil {
		return nil, err
	}
	return uc.mutate(ctx, ownerID, id, func(v *entity.Valuation) error {
		if v.Record.IsFinalized() {
			return valuation.ErrFinalized
		}
		v.Details = details
		if in.ReportStyle != "" {
			v.ReportStyle = in.ReportStyle
		}
		return nil
	})
}

// SetAnswer responde una pregunta regulatoria.
func (uc *ValuationUseCase) SetAnswer(ctx context.Context, ownerID, id, questionID string, in dto.SetAnswerRequest) (*dto.ValuationResponse, error) {
	status, err := valuation.ParseAnswerStatus(in.Status)
	if err != nil {
		return nil, err
	}
	return uc.mutate(ctx, ownerID, id, func(v *entity.Valuation) error {
		return v.Record.SetAnswer(questionID, status, in.Amount.Ptr())
	})
}

// SetBaseValue cambia el valor declarado de la mercadería.
func (uc *ValuationUseCase) SetBaseValue(ctx context.Context, ownerID, id string, in dto.SetBaseValueRequest) (*dto.ValuationResponse, error) {
	return uc.mutate(ctx, ownerID, id, func(v *entity.Valuation) error {
		return v.Record.SetBaseValue(in.BaseItemValue.Decimal)
	})
}

// SetOriginCertificate registra la presentación del certificado de origen.
func (uc *ValuationUseCase) SetOriginCertificate(ctx context.Context, ownerID, id string, in dto.SetOriginCertificateRequest) (*dto.ValuationResponse, error) {
	status, err := valuation.ParseAnswerStatus(in.Status)
	if err != nil {
		return nil, err
	}
	return uc.mutate(ctx, ownerID, id, func(v *entity.Valuation) error {
		return v.Record.SetOriginCertificate(status)
	})
}

// Delete elimina una valoración en borrador. Las finalizadas se conservan.
func (uc *ValuationUseCase) Delete(ctx context.Context, ownerID, id string) error {
	return uc.tx.RunValuation(ctx, func(valRepo repository.ValuationRepository, _ repository.ValuationEventRepository) error {
		v, err := lockOwned(ctx, valRepo, ownerID, id)
		if err != nil {
			return err
		}
		if v.Record.IsFinalized() {
			return valuation.ErrFinalized
		}
		return valRepo.Delete(ctx, id)
	})
}

// ── Ciclo de vida ────────────────────────────────────────────────────────────

// Finalize valida que todo esté respondido, congela el resultado y lo
// registra en el historial dentro de la misma transacción.
//
// Retorna:
//   - *valuation.IncompleteError (errors.Is ErrIncomplete) con los ids faltantes.
//   - valuation.ErrFinalized si ya estaba finalizada.
func (uc *ValuationUseCase) Finalize(ctx context.Context, ownerID, id string) (*dto.ValuationResponse, error) {
	var (
		v   *entity.Valuation
		res valuation.Result
	)
	err := uc.tx.RunValuation(ctx, func(valRepo repository.ValuationRepository, eventRepo repository.ValuationEventRepository) error {
		var err error
		if v, err = lockOwned(ctx, valRepo, ownerID, id); err != nil {
			return err
		}
		now := uc.now()
		if res, err = v.Record.Finalize(now); err != nil {
			return err
		}
		v.UpdatedAt = now
		if err := valRepo.Update(ctx, v); err != nil {
			return err
		}
		return eventRepo.Append(ctx, uc.event(v, ownerID, entity.EventFinalized, &res, ""))
	})
	if err != nil {
		return nil, err
	}

	uc.clearDraftFor(ctx, ownerID, v.ID)
	uc.log.Info().
		Str("valuation_id", v.ID).
		Str("user_id", ownerID).
		Str("final_value", res.FinalValue.String()).
		Msg("valoración finalizada")
	return toValuationResponse(v), nil
}

// Reopen vuelve una valoración finalizada a borrador.
func (uc *ValuationUseCase) Reopen(ctx context.Context, ownerID, id string, in dto.ReopenRequest) (*dto.ValuationResponse, error) {
	var v *entity.Valuation
	err := uc.tx.RunValuation(ctx, func(valRepo repository.ValuationRepository, eventRepo repository.ValuationEventRepository) error {
		var err error
		if v, err = lockOwned(ctx, valRepo, ownerID, id); err != nil {
			return err
		}
		if err := v.Record.Reopen(); err != nil {
			return err
		}
		v.UpdatedAt = uc.now()
		if err := valRepo.Update(ctx, v); err != nil {
			return err
		}
		return eventRepo.Append(ctx, uc.event(v, ownerID, entity.EventReopened, nil, in.Note))
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("valuation_id", v.ID).Str("user_id", ownerID).Msg("valoración reabierta")
	return toValuationResponse(v), nil
}

// ── Borrador en curso ────────────────────────────────────────────────────────

// SaveDraft guarda el formulario en curso del usuario (uno por usuario).
func (uc *ValuationUseCase) SaveDraft(ctx context.Context, ownerID string, in dto.DraftRequest) (*dto.DraftResponse, error) {
	if in.ValuationID != "" {
		if _, err := uc.load(ctx, ownerID, in.ValuationID); err != nil {
			return nil, err
		}
	}
	d := valuation.Draft{
		ValuationID: in.ValuationID,
		Details:     in.Details.ToDomain(),
		Record:      dto.RecordFromInputs(in.BaseItemValue, in.Answers, in.OriginCertificate),
		SavedAt:     uc.now().UTC(),
	}
	if err := uc.drafts.Save(ctx, ownerID, d); err != nil {
		return nil, fmt.Errorf("valuations: guardar borrador: %w", err)
	}
	return toDraftResponse(d), nil
}

// LoadDraft recupera el formulario en curso normalizado.
func (uc *ValuationUseCase) LoadDraft(ctx context.Context, ownerID string) (*dto.DraftResponse, error) {
	d, err := uc.drafts.Load(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("valuations: cargar borrador: %w", err)
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	details, rec := valuation.Normalize(valuation.LoadedDraftSource{Draft: *d})
	d.Details = details
	d.Record = rec
	return toDraftResponse(*d), nil
}

// DiscardDraft borra el formulario en curso.
func (uc *ValuationUseCase) DiscardDraft(ctx context.Context, ownerID string) error {
	return uc.drafts.Delete(ctx, ownerID)
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func (uc *ValuationUseCase) load(ctx context.Context, ownerID, id string) (*entity.Valuation, error) {
	v, err := uc.valRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return owned(v, ownerID)
}

// lockOwned lee la valoración con la fila bloqueada hasta el commit.
// Toda escritura sobre un agregado existente pasa por acá.
func lockOwned(ctx context.Context, valRepo repository.ValuationRepository, ownerID, id string) (*entity.Valuation, error) {
	v, err := valRepo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	return owned(v, ownerID)
}

func owned(v *entity.Valuation, ownerID string) (*entity.Valuation, error) {
	if v == nil {
		return nil, domain.ErrNotFound
	}
	if !v.IsOwnedBy(ownerID) {
		return nil, domain.ErrForbidden
	}
	return v, nil
}

// mutate aplica fn sobre el agregado bloqueado y lo guarda en la misma transacción.
func (uc *ValuationUseCase) mutate(ctx context.Context, ownerID, id string, fn func(v *entity.Valuation) error) (*dto.ValuationResponse, error) {
	var v *entity.Valuation
	err := uc.tx.RunValuation(ctx, func(valRepo repository.ValuationRepository, _ repository.ValuationEventRepository) error {
		var err error
		if v, err = lockOwned(ctx, valRepo, ownerID, id); err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
		v.UpdatedAt = uc.now()
		return valRepo.Update(ctx, v)
	})
	if err != nil {
		return nil, err
	}
	return toValuationResponse(v), nil
}

// checkClient verifica que el cliente referenciado exista y sea del usuario.
func (uc *ValuationUseCase) checkClient(ctx context.Context, ownerID, clientID string) error {
	if clientID == "" {
		return nil
	}
	c, err := uc.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return err
	}
	if c == nil || c.OwnerID != ownerID {
		return fmt.Errorf("%w: cliente inexistente", domain.ErrInvalidInput)
	}
	return nil
}

// clearDraftFor descarta el borrador en curso si corresponde a la valoración.
func (uc *ValuationUseCase) clearDraftFor(ctx context.Context, ownerID, valuationID string) {
	d, err := uc.drafts.Load(ctx, ownerID)
	if err != nil || d == nil || d.ValuationID != valuationID {
		return
	}
	if err := uc.drafts.Delete(ctx, ownerID); err != nil {
		uc.log.Warn().Err(err).Str("user_id", ownerID).Msg("no se pudo descartar el borrador")
	}
}

func (uc *ValuationUseCase) event(v *entity.Valuation, userID, typ string, res *valuation.Result, note string) *entity.ValuationEvent {
	return &entity.ValuationEvent{
		ID:          uuid.New().String(),
		ValuationID: v.ID,
		UserID:      userID,
		Type:        typ,
		Result:      res,
		Note:        note,
		CreatedAt:   v.UpdatedAt,
	}
}

func styleOrDefault(s string) string {
	if s == "" {
		return entity.ReportTecnico
	}
	return s
}
