package valuations_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/valoracion-api/internal/application/dto"
	"github.com/jhoicas/valoracion-api/internal/application/valuations"
	"github.com/jhoicas/valoracion-api/internal/domain"
	"github.com/jhoicas/valoracion-api/internal/domain/entity"
	"github.com/jhoicas/valoracion-api/internal/domain/repository"
	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
	"github.com/jhoicas/valoracion-api/internal/infrastructure/memory"
	"github.com/jhoicas/valoracion-api/pkg/logger"
	"github.com/jhoicas/valoracion-api/pkg/money"
)

// ── Fakes ────────────────────────────────────────────────────────────────────

type fakeValuationRepo struct {
	mu     sync.Mutex
	items  map[string]*entity.Valuation
	onLock func(id string) // se llama con la fila ya bloqueada
}

func newFakeValuationRepo() *fakeValuationRepo {
	return &fakeValuationRepo{items: map[string]*entity.Valuation{}}
}

func cloneValuation(v *entity.Valuation) *entity.Valuation {
	c := *v
	c.Record = v.Record.Clone()
	return &c
}

func (r *fakeValuationRepo) Create(_ context.Context, v *entity.Valuation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[v.ID] = cloneValuation(v)
	return nil
}

func (r *fakeValuationRepo) GetByID(_ context.Context, id string) (*entity.Valuation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.items[id]
	if !ok {
		return nil, nil
	}
	return cloneValuation(v), nil
}

func (r *fakeValuationRepo) GetForUpdate(ctx context.Context, id string) (*entity.Valuation, error) {
	v, err := r.GetByID(ctx, id)
	if err == nil && v != nil && r.onLock != nil {
		r.onLock(id)
	}
	return v, err
}

func (r *fakeValuationRepo) List(_ context.Context, f repository.ValuationFilter) ([]*entity.Valuation, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Valuation
	for _, v := range r.items {
		if v.OwnerID != f.OwnerID || (f.Status != "" && v.Record.Status != f.Status) {
			continue
		}
		out = append(out, cloneValuation(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *fakeValuationRepo) Update(_ context.Context, v *entity.Valuation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[v.ID]; !ok {
		return domain.ErrNotFound
	}
	r.items[v.ID] = cloneValuation(v)
	return nil
}

func (r *fakeValuationRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

type fakeEventRepo struct {
	mu     sync.Mutex
	events []*entity.ValuationEvent
	fail   error
}

func (r *fakeEventRepo) Append(_ context.Context, ev *entity.ValuationEvent) error {
	if r.fail != nil {
		return r.fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *fakeEventRepo) ListByValuation(_ context.Context, id string) ([]*entity.ValuationEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ValuationEvent
	for _, ev := range r.events {
		if ev.ValuationID == id {
			out = append(out, ev)
		}
	}
	return out, nil
}

type fakeClientRepo struct {
	items map[string]*entity.Client
}

func (r *fakeClientRepo) Create(context.Context, *entity.Client) error { return nil }
func (r *fakeClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	return r.items[id], nil
}
func (r *fakeClientRepo) GetByOwnerAndCUIT(context.Context, string, string) (*entity.Client, error) {
	return nil, nil
}
func (r *fakeClientRepo) ListByOwner(context.Context, string) ([]*entity.Client, error) {
	return nil, nil
}
func (r *fakeClientRepo) Update(context.Context, *entity.Client) error { return nil }
func (r *fakeClientRepo) Delete(context.Context, string) error         { return nil }

// fakeTx simula la transacción: las tx se serializan (como el FOR UPDATE sobre
// una misma fila) y si fn falla se restaura el estado previo del repo.
type fakeTx struct {
	mu     sync.Mutex
	vals   *fakeValuationRepo
	events *fakeEventRepo
}

func (tx *fakeTx) RunValuation(ctx context.Context, fn func(repository.ValuationRepository, repository.ValuationEventRepository) error) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	tx.vals.mu.Lock()
	snapshot := make(map[string]*entity.Valuation, len(tx.vals.items))
	for k, v := range tx.vals.items {
		snapshot[k] = cloneValuation(v)
	}
	tx.vals.mu.Unlock()

	if err := fn(tx.vals, tx.events); err != nil {
		tx.vals.mu.Lock()
		tx.vals.items = snapshot
		tx.vals.mu.Unlock()
		return err
	}
	return nil
}

type fixture struct {
	uc     *valuations.ValuationUseCase
	vals   *fakeValuationRepo
	events *fakeEventRepo
	drafts *memory.DraftRepo
}

func newFixture() fixture {
	vals := newFakeValuationRepo()
	events := &fakeEventRepo{}
	drafts := memory.NewDraftRepository(0)
	clients := &fakeClientRepo{items: map[string]*entity.Client{
		"11111111-1111-1111-1111-111111111111": {ID: "11111111-1111-1111-1111-111111111111", OwnerID: "owner", Name: "Acme SA"},
	}}
	uc := valuations.NewValuationUseCase(vals, events, clients, drafts, &fakeTx{vals: vals, events: events}, logger.Nop())
	return fixture{uc: uc, vals: vals, events: events, drafts: drafts}
}

func amount(s string) *money.Amount {
	a := money.NewAmount(money.Parse(s))
	return &a
}

func answerAll(t *testing.T, f fixture, id string) {
	t.Helper()
	ctx := context.Background()
	for _, q := range valuation.Questions() {
		_, err := f.uc.SetAnswer(ctx, "owner", id, q.ID, dto.SetAnswerRequest{Status: "no"})
		require.NoError(t, err)
	}
}

// ── Tests ────────────────────────────────────────────────────────────────────

func TestCreateDraft_FormularioNuevo(t *testing.T) {
	f := newFixture()
	out, err := f.uc.CreateDraft(context.Background(), "owner", dto.CreateValuationRequest{
		Details: dto.DetailsDTO{OperationType: "importacion", Incoterm: "fob", Currency: "usd"},
	})
	require.NoError(t, err)

	assert.Equal(t, "draft", out.Status)
	assert.Equal(t, "FOB", out.Details.Incoterm)
	assert.Equal(t, entity.ReportTecnico, out.ReportStyle)
	assert.Len(t, out.Lines, 17)
	assert.Len(t, out.Missing, 18)
	require.Len(t, f.events.events, 1)
	assert.Equal(t, entity.EventCreated, f.events.events[0].Type)
}

func TestCreateDraft_ClienteAjeno(t *testing.T) {
	f := newFixture()
	_, err := f.uc.CreateDraft(context.Background(), "otro", dto.CreateValuationRequest{
		Details: dto.DetailsDTO{ClientID: "11111111-1111-1111-1111-111111111111"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateDraft_DesdeBorradorLoDescarta(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	_, err := f.uc.SaveDraft(ctx, "owner", dto.DraftRequest{
		Details:       dto.DetailsDTO{Incoterm: "CIF"},
		BaseItemValue: *amount("1.000,00"),
		Answers: map[string]dto.AnswerInput{
			"q5": {Status: "yes", Amount: amount("100,00")},
		},
	})
	require.NoError(t, err)

	out, err := f.uc.CreateDraft(ctx, "owner", dto.CreateValuationRequest{FromDraft: true})
	require.NoError(t, err)
	assert.Equal(t, "CIF", out.Details.Incoterm)
	assert.True(t, out.Result.FinalValue.Equal(money.Parse("1.100,00")))

	d, err := f.drafts.Load(ctx, "owner")
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestCreateDraft_DesdeBorradorInexistente(t *testing.T) {
	f := newFixture()
	_, err := f.uc.CreateDraft(context.Background(), "owner", dto.CreateValuationRequest{FromDraft: true})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGet_DeOtroUsuarioEsForbidden(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.uc.CreateDraft(ctx, "owner", dto.CreateValuationRequest{})
	require.NoError(t, err)

	_, err = f.uc.Get(ctx, "intruso", v.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = f.uc.Get(ctx, "owner", "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFinalize_FlujoCompleto(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.uc.CreateDraft(ctx, "owner", dto.CreateValuationRequest{})
	require.NoError(t, err)

	_, err = f.uc.SetBaseValue(ctx, "owner", v.ID, dto.SetBaseValueRequest{BaseItemValue: *amount("10200,00")})
	require.NoError(t, err)
	answerAll(t, f, v.ID)
	_, err = f.uc.SetAnswer(ctx, "owner", v.ID, "q12", dto.SetAnswerRequest{Status: "yes", Amount: amount("300,00")})
	require.NoError(t, err)
	_, err = f.uc.SetAnswer(ctx, "owner", v.ID, "q17", dto.SetAnswerRequest{Status: "yes", Amount: amount("150,00")})
	require.NoError(t, err)

	// Sin certificado respondido no se puede finalizar.
	_, err = f.uc.Finalize(ctx, "owner", v.ID)
	var inc *valuation.IncompleteError
	require.True(t, errors.As(err, &inc))
	assert.Equal(t, []string{valuation.OriginCertificateField}, inc.Missing)

	_, err = f.uc.SetOriginCertificate(ctx, "owner", v.ID, dto.SetOriginCertificateRequest{Status: "yes"})
	require.NoError(t, err)

	out, err := f.uc.Finalize(ctx, "owner", v.ID)
	require.NoError(t, err)
	assert.Equal(t, "finalized", out.Status)
	assert.Equal(t, "10.350,00", out.Result.Formatted.FinalValue)
	assert.NotNil(t, out.FinalizedAt)

	// Editar requiere reabrir.
	_, err = f.uc.SetAnswer(ctx, "owner", v.ID, "q5", dto.SetAnswerRequest{Status: "yes", Amount: amount("1,00")})
	assert.ErrorIs(t, err, valuation.ErrFinalized)
	assert.ErrorIs(t, f.uc.Delete(ctx, "owner", v.ID), valuation.ErrFinalized)

	hist, err := f.uc.History(ctx, "owner", v.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, entity.EventFinalized, hist[1].Type)
	require.NotNil(t, hist[1].Result)
	assert.Equal(t, "10.350,00", hist[1].Result.Formatted.FinalValue)
}

func TestFinalize_FallaDelHistorialRevierte(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.uc.CreateDraft(ctx, "owner", dto.CreateValuationRequest{})
	require.NoError(t, err)
	answerAll(t, f, v.ID)
	_, err = f.uc.SetOriginCertificate(ctx, "owner", v.ID, dto.SetOriginCertificateRequest{Status: "no"})
	require.NoError(t, err)

	f.events.fail = errors.New("db caída")
	_, err = f.uc.Finalize(ctx, "owner", v.ID)
	require.Error(t, err)

	got, err := f.uc.Get(ctx, "owner", v.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft", got.Status)
}

func TestFinalize_LimpiaBorradorAsociado(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.uc.CreateDraft(ctx, "owner", dto.CreateValuationRequest{})
	require.NoError(t, err)
	_, err = f.uc.SaveDraft(ctx, "owner", dto.DraftRequest{ValuationID: v.ID})
	require.NoError(t, err)

	answerAll(t, f, v.ID)
	_, err = f.uc.SetOriginCertificate(ctx, "owner", v.ID, dto.SetOriginCertificateRequest{Status: "yes"})
	require.NoError(t, err)
	_, err = f.uc.Finalize(ctx, "owner", v.ID)
	require.NoError(t, err)

	_, err = f.uc.LoadDraft(ctx, "owner")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReopen_PermiteEditarDeNuevo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.uc.CreateDraft(ctx, "owner", dto.CreateValuationRequest{})
	require.NoError(t, err)

	_, err = f.uc.Reopen(ctx, "owner", v.ID, dto.ReopenRequest{})
	assert.ErrorIs(t, err, valuation.ErrNotFinalized)

	answerAll(t, f, v.ID)
	_, err = f.uc.SetOriginCertificate(ctx, "owner", v.ID, dto.SetOriginCertificateRequest{Status: "yes"})
	require.NoError(t, err)
	_, err = f.uc.Finalize(ctx, "owner", v.ID)
	require.NoError(t, err)

	out, err := f.uc.Reopen(ctx, "owner", v.ID, dto.ReopenRequest{Note: "corrige flete"})
	require.NoError(t, err)
	assert.Equal(t, "draft", out.Status)
	assert.Nil(t, out.FinalizedAt)

	_, err = f.uc.SetAnswer(ctx, "owner", v.ID, "q13", dto.SetAnswerRequest{Status: "yes", Amount: amount("50,00")})
	assert.NoError(t, err)

	hist, err := f.uc.History(ctx, "owner", v.ID)
	require.NoError(t, err)
	require.Len(t, hist, 3)
	assert.Equal(t, "corrige flete", hist[2].Note)
}

func TestSetAnswer_Errores(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.uc.CreateDraft(ctx, "owner", dto.CreateValuationRequest{})
	require.NoError(t, err)

	_, err = f.uc.SetAnswer(ctx, "owner", v.ID, "q18", dto.SetAnswerRequest{Status: "yes"})
	assert.ErrorIs(t, err, valuation.ErrUnknownQuestion)
	_, err = f.uc.SetAnswer(ctx, "owner", v.ID, "q1", dto.SetAnswerRequest{Status: "quizás"})
	assert.ErrorIs(t, err, valuation.ErrInvalidStatus)
}

func TestCalculate_SinEstado(t *testing.T) {
	f := newFixture()
	out := f.uc.Calculate(dto.CalculateRequest{
		BaseItemValue: *amount("1.000,00"),
		Answers: map[string]dto.AnswerInput{
			"q6":  {Status: "yes", Amount: amount("abc")},
			"q99": {Status: "yes", Amount: amount("5")},
		},
		OriginCertificate: "no",
	})
	assert.Equal(t, "1.010,00", out.Result.Formatted.FinalValue)
	assert.Equal(t, "10,00", out.Result.Formatted.CompliancePenalty)
	assert.Len(t, out.Lines, 17)
}

func TestList_FiltraPorEstado(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := f.uc.CreateDraft(ctx, "owner", dto.CreateValuationRequest{})
		require.NoError(t, err)
	}
	_, err := f.uc.CreateDraft(ctx, "otro", dto.CreateValuationRequest{})
	require.NoError(t, err)

	out, err := f.uc.List(ctx, "owner", dto.ValuationListRequest{Status: "draft"})
	require.NoError(t, err)
	assert.Len(t, out.Items, 3)
	assert.Equal(t, 3, out.Page.Total)
	assert.Equal(t, 20, out.Page.Limit)

	out, err = f.uc.List(ctx, "owner", dto.ValuationListRequest{Status: "finalized"})
	require.NoError(t, err)
	assert.Empty(t, out.Items)
}

func TestDelete_Borrador(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.uc.CreateDraft(ctx, "owner", dto.CreateValuationRequest{})
	require.NoError(t, err)
	require.NoError(t, f.uc.Delete(ctx, "owner", v.ID))
	_, err = f.uc.Get(ctx, "owner", v.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDraft_GuardarCargarDescartar(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	saved, err := f.uc.SaveDraft(ctx, "owner", dto.DraftRequest{
		BaseItemValue: *amount("500"),
		Answers:       map[string]dto.AnswerInput{"q16": {Status: "yes", Amount: amount("20,00")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "480,00", saved.Preview.Result.Formatted.FinalValue)
	assert.False(t, saved.SavedAt.IsZero())
	assert.WithinDuration(t, time.Now(), saved.SavedAt, time.Minute)

	loaded, err := f.uc.LoadDraft(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, saved.Preview.Result.FinalValue.String(), loaded.Preview.Result.FinalValue.String())

	require.NoError(t, f.uc.DiscardDraft(ctx, "owner"))
	_, err = f.uc.LoadDraft(ctx, "owner")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFinalize_EsperaEdicionEnCurso(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	v, err := f.uc.CreateDraft(ctx, "owner", dto.CreateValuationRequest{})
	require.NoError(t, err)
	_, err = f.uc.SetBaseValue(ctx, "owner", v.ID, dto.SetBaseValueRequest{BaseItemValue: *amount("1.000,00")})
	require.NoError(t, err)
	answerAll(t, f, v.ID)
	_, err = f.uc.SetOriginCertificate(ctx, "owner", v.ID, dto.SetOriginCertificateRequest{Status: "yes"})
	require.NoError(t, err)

	// La edición queda detenida con la fila bloqueada.
	locked := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	f.vals.onLock = func(string) {
		once.Do(func() {
			close(locked)
			<-release
		})
	}

	editDone := make(chan error, 1)
	go func() {
		_, err := f.uc.SetAnswer(ctx, "owner", v.ID, "q5", dto.SetAnswerRequest{Status: "yes", Amount: amount("100,00")})
		editDone <- err
	}()
	<-locked

	type finalizeOut struct {
		res *dto.ValuationResponse
		err error
	}
	finDone := make(chan finalizeOut, 1)
	go func() {
		res, err := f.uc.Finalize(ctx, "owner", v.ID)
		finDone <- finalizeOut{res, err}
	}()

	select {
	case <-finDone:
		t.Fatal("Finalize no debería avanzar mientras la edición tiene la fila")
	case <-time.After(50 * time.Millisecond):
	}
	close(release)

	require.NoError(t, <-editDone)
	fin := <-finDone
	require.NoError(t, fin.err)
	assert.Equal(t, "finalized", fin.res.Status)

	stored, err := f.vals.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, stored.Record.IsFinalized())
	require.NotNil(t, stored.Record.Frozen)
	// El total congelado incluye la edición que terminó primero.
	assert.True(t, stored.Record.Frozen.FinalValue.Equal(money.Parse("1.100,00")))

	hist, err := f.uc.History(ctx, "owner", v.ID)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, entity.EventFinalized, hist[1].Type)
}
