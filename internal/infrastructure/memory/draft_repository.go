// Package memory contiene adaptadores en memoria para desarrollo en un solo nodo.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/valoracion-api/internal/domain/repository"
	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
)

var _ repository.DraftRepository = (*DraftRepo)(nil)

type entry struct {
	draft     valuation.Draft
	expiresAt time.Time // cero = no vence
}

// DraftRepo guarda borradores en un mapa protegido por mutex.
type DraftRepo struct {
	mu    sync.RWMutex
	items map[string]entry
	ttl   time.Duration
	now   func() time.Time
}

// NewDraftRepository construye el repositorio. ttl 0 = sin vencimiento.
func NewDraftRepository(ttl time.Duration) *DraftRepo {
	return &DraftRepo{items: make(map[string]entry), ttl: ttl, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (r *DraftRepo) WithClock(now func() time.Time) *DraftRepo {
	r.now = now
	return r
}

func (r *DraftRepo) Load(_ context.Context, ownerID string) (*valuation.Draft, error) {
	r.mu.RLock()
	e, ok := r.items[ownerID]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !e.expiresAt.IsZero() && !r.now().Before(e.expiresAt) {
		r.mu.Lock()
		delete(r.items, ownerID)
		r.mu.Unlock()
		return nil, nil
	}
	d := e.draft
	d.Record = e.draft.Record.Clone()
	return &d, nil
}

func (r *DraftRepo) Save(_ context.Context, ownerID string, draft valuation.Draft) error {
	e := entry{draft: draft}
	e.draft.Record = draft.Record.Clone()
	if r.ttl > 0 {
		e.expiresAt = r.now().Add(r.ttl)
	}
	r.mu.Lock()
	r.items[ownerID] = e
	r.mu.Unlock()
	return nil
}

func (r *DraftRepo) Delete(_ context.Context, ownerID string) error {
	r.mu.Lock()
	delete(r.items, ownerID)
	r.mu.Unlock()
	return nil
}
