// Package redisstore guarda en Redis el borrador en curso de cada usuario.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/valoracion-api/internal/domain/repository"
	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
)

var _ repository.DraftRepository = (*DraftRepo)(nil)

const keyPrefix = "valoracion:draft:"

// DraftRepo implementación de DraftRepository sobre Redis (JSON con TTL).
type DraftRepo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDraftRepository construye el adaptador. ttl 0 = sin vencimiento.
func NewDraftRepository(client *redis.Client, ttl time.Duration) *DraftRepo {
	return &DraftRepo{client: client, ttl: ttl}
}

// NewClient abre la conexión y verifica con PING.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func key(ownerID string) string { return keyPrefix + ownerID }

// Load devuelve el borrador del usuario o nil si no existe o venció.
func (r *DraftRepo) Load(ctx context.Context, ownerID string) (*valuation.Draft, error) {
	data, err := r.client.Get(ctx, key(ownerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}
	var d valuation.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &d, nil
}

// Save reemplaza el borrador del usuario y renueva el TTL.
func (r *DraftRepo) Save(ctx context.Context, ownerID string, draft valuation.Draft) error {
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := r.client.Set(ctx, key(ownerID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("set draft: %w", err)
	}
	return nil
}

// Delete borra el borrador; no falla si no existía.
func (r *DraftRepo) Delete(ctx context.Context, ownerID string) error {
	if err := r.client.Del(ctx, key(ownerID)).Err(); err != nil {
		return fmt.Errorf("del draft: %w", err)
	}
	return nil
}
