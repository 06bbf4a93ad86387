package client_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/valoracion-api/internal/application/client"
	"github.com/jhoicas/valoracion-api/internal/application/dto"
	"github.com/jhoicas/valoracion-api/internal/domain"
	"github.com/jhoicas/valoracion-api/internal/domain/entity"
)

type fakeRepo struct {
	items []*entity.Client
}

func (r *fakeRepo) Create(_ context.Context, c *entity.Client) error {
	cp := *c
	r.items = append(r.items, &cp)
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	for _, c := range r.items {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) GetByOwnerAndCUIT(_ context.Context, ownerID, cuit string) (*entity.Client, error) {
	for _, c := range r.items {
		if c.OwnerID == ownerID && c.CUIT == cuit {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) ListByOwner(_ context.Context, ownerID string) ([]*entity.Client, error) {
	var out []*entity.Client
	for _, c := range r.items {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, c *entity.Client) error {
	for i, x := range r.items {
		if x.ID == c.ID {
			cp := *c
			r.items[i] = &cp
		}
	}
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	for i, x := range r.items {
		if x.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return nil
}

func TestCreate_NormalizaCUIT(t *testing.T) {
	uc := client.NewClientUseCase(&fakeRepo{})
	out, err := uc.Create(context.Background(), "u1", dto.ClientRequest{Name: " Acme SA ", CUIT: "30-71234567-1"})
	require.NoError(t, err)
	assert.Equal(t, "Acme SA", out.Name)
	assert.Equal(t, "30712345671", out.CUIT)
	assert.Equal(t, "30-71234567-1", out.CUITFormatted)
}

func TestCreate_CUITInvalidoODuplicado(t *testing.T) {
	uc := client.NewClientUseCase(&fakeRepo{})
	ctx := context.Background()

	_, err := uc.Create(ctx, "u1", dto.ClientRequest{Name: "X", CUIT: "30-71234567-2"})
	assert.ErrorIs(t, err, domain.ErrInvalidCUIT)

	_, err = uc.Create(ctx, "u1", dto.ClientRequest{Name: "X", CUIT: "30712345671"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, "u1", dto.ClientRequest{Name: "Y", CUIT: "30-71234567-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	// Otro usuario puede tener el mismo CUIT en su cartera.
	_, err = uc.Create(ctx, "u2", dto.ClientRequest{Name: "Y", CUIT: "30-71234567-1"})
	assert.NoError(t, err)
}

func TestSearch_IgnoraAcentosYMayusculas(t *testing.T) {
	uc := client.NewClientUseCase(&fakeRepo{})
	ctx := context.Background()
	for _, name := range []string{"José Pérez", "Ferretería Ñandú", "Comercial Norte"} {
		_, err := uc.Create(ctx, "u1", dto.ClientRequest{Name: name})
		require.NoError(t, err)
	}

	out, total, err := uc.Search(ctx, "u1", "PEREZ", dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "José Pérez", out[0].Name)

	out, _, err = uc.Search(ctx, "u1", "ferreteria nandu", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, out, 1)

	_, total, err = uc.Search(ctx, "u1", "", dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestGet_AjenoEsForbidden(t *testing.T) {
	uc := client.NewClientUseCase(&fakeRepo{})
	ctx := context.Background()
	c, err := uc.Create(ctx, "u1", dto.ClientRequest{Name: "Acme"})
	require.NoError(t, err)

	_, err = uc.Get(ctx, "u2", c.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, uc.Delete(ctx, "u2", c.ID), domain.ErrForbidden)
	require.NoError(t, uc.Delete(ctx, "u1", c.ID))
	_, err = uc.Get(ctx, "u1", c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestImport_SaltaDuplicadosYReportaErrores(t *testing.T) {
	uc := client.NewClientUseCase(&fakeRepo{})
	res, err := uc.Import(context.Background(), "u1", []dto.ClientRequest{
		{Name: "A", CUIT: "20-12345678-6"},
		{Name: "A bis", CUIT: "20123456786"},
		{Name: "", CUIT: ""},
		{Name: "B", CUIT: "20-12345678-0"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Skipped)
	assert.Len(t, res.Errors, 2)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "nandu", client.Fold("ÑANDÚ"))
	assert.Equal(t, "cordoba", client.Fold("  Córdoba "))
}
