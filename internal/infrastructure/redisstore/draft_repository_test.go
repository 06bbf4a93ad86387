package redisstore_test

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/valoracion-api/internal/domain/valuation"
	"github.com/jhoicas/valoracion-api/internal/infrastructure/redisstore"
	"github.com/jhoicas/valoracion-api/pkg/money"
)

func newRepo(t *testing.T, ttl time.Duration) (*redisstore.DraftRepo, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return redisstore.NewDraftRepository(client, ttl), mr
}

func TestDraftRepo_GuardarYCargar(t *testing.T) {
	repo, _ := newRepo(t, time.Hour)
	ctx := context.Background()

	rec := valuation.NewDraft()
	require.NoError(t, rec.SetBaseValue(money.Parse("10.200,00")))
	amount := money.Parse("300,00")
	require.NoError(t, rec.SetAnswer("q12", valuation.StatusYes, &amount))
	require.NoError(t, rec.SetOriginCertificate(valuation.StatusNo))

	in := valuation.Draft{
		ValuationID: "v-1",
		Details:     valuation.Details{Incoterm: "FOB", Currency: "USD"},
		Record:      rec,
		SavedAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Save(ctx, "user-1", in))

	out, err := repo.Load(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "v-1", out.ValuationID)
	assert.Equal(t, "FOB", out.Details.Incoterm)
	assert.True(t, out.SavedAt.Equal(in.SavedAt))
	assert.True(t, out.Record.Result().FinalValue.Equal(rec.Result().FinalValue))
	require.NotNil(t, out.Record.Answers["q12"].Amount)
	assert.True(t, out.Record.Answers["q12"].Amount.Equal(amount))
}

func TestDraftRepo_InexistenteDevuelveNil(t *testing.T) {
	repo, _ := newRepo(t, time.Hour)
	out, err := repo.Load(context.Background(), "nadie")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestDraftRepo_VenceConTTL(t *testing.T) {
	repo, mr := newRepo(t, time.Hour)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, "user-1", valuation.Draft{Record: valuation.NewDraft()}))

	mr.FastForward(2 * time.Hour)

	out, err := repo.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestDraftRepo_Delete(t *testing.T) {
	repo, _ := newRepo(t, 0)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, "user-1", valuation.Draft{Record: valuation.NewDraft()}))
	require.NoError(t, repo.Delete(ctx, "user-1"))
	require.NoError(t, repo.Delete(ctx, "user-1"))

	out, err := repo.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, out)
}
