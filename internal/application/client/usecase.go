// Package client contiene los casos de uso de la cartera de clientes del profesional.
package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/valoracion-api/internal/application/dto"
	"github.com/jhoicas/valoracion-api/internal/domain"
	"github.com/jhoicas/valoracion-api/internal/domain/entity"
	"github.com/jhoicas/valoracion-api/internal/domain/repository"
	"github.com/jhoicas/valoracion-api/pkg/afip"
)

// ClientUseCase casos de uso para clientes y contactos.
type ClientUseCase struct {
	repo repository.ClientRepository
	now  func() time.Time
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(repo repository.ClientRepository) *ClientUseCase {
	return &ClientUseCase{repo: repo, now: time.Now}
}

// Create crea un nuevo cliente. El CUIT, si viene, debe ser válido y único por usuario.
func (uc *ClientUseCase) Create(ctx context.Context, ownerID string, in dto.ClientRequest) (*dto.ClientResponse, error) {
	c := &entity.Client{
		ID:      uuid.New().String(),
		OwnerID: ownerID,
	}
	if err := uc.apply(ctx, c, in); err != nil {
		return nil, err
	}
	c.CreatedAt = c.UpdatedAt
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toClientResponse(c), nil
}

// Get obtiene un cliente propio.
func (uc *ClientUseCase) Get(ctx context.Context, ownerID, id string) (*dto.ClientResponse, error) {
	c, err := uc.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return toClientResponse(c), nil
}

// Update reemplaza los datos del cliente.
func (uc *ClientUseCase) Update(ctx context.Context, ownerID, id string, in dto.ClientRequest) (*dto.ClientResponse, error) {
	c, err := uc.load(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := uc.apply(ctx, c, in); err != nil {
		return nil, err
	}
	if err := uc.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return toClientResponse(c), nil
}

// Delete elimina un cliente propio.
func (uc *ClientUseCase) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := uc.load(ctx, ownerID, id); err != nil {
		return err
	}
	return uc.repo.Delete(ctx, id)
}

// Search lista los clientes del usuario que contienen q en nombre, contacto,
// email o CUIT. La comparación ignora mayúsculas y acentos ("perez" encuentra "Pérez").
// q vacío devuelve todos.
func (uc *ClientUseCase) Search(ctx context.Context, ownerID, q string, page dto.PageRequest) ([]*dto.ClientResponse, int, error) {
	page.DefaultPage()
	list, err := uc.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, 0, err
	}
	needle := Fold(q)
	digits := afip.NormalizeCUIT(q)

	var matched []*entity.Client
	for _, c := range list {
		if needle == "" || matches(c, needle, digits) {
			matched = append(matched, c)
		}
	}
	total := len(matched)
	if page.Offset >= total {
		return []*dto.ClientResponse{}, total, nil
	}
	end := page.Offset + page.Limit
	if end > total {
		end = total
	}
	out := make([]*dto.ClientResponse, 0, end-page.Offset)
	for _, c := range matched[page.Offset:end] {
		out = append(out, toClientResponse(c))
	}
	return out, total, nil
}

// Import da de alta clientes en lote. Los CUIT ya cargados se saltean; las filas
// inválidas se informan sin cortar la importación.
func (uc *ClientUseCase) Import(ctx context.Context, ownerID string, rows []dto.ClientRequest) (*dto.ClientImportResult, error) {
	res := &dto.ClientImportResult{}
	for i, in := range rows {
		_, err := uc.Create(ctx, ownerID, in)
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, domain.ErrDuplicate):
			res.Skipped++
		case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidCUIT):
			res.Errors = append(res.Errors, fmt.Sprintf("fila %d: %v", i+1, err))
		default:
			return res, fmt.Errorf("importar fila %d: %w", i+1, err)
		}
	}
	return res, nil
}

func (uc *ClientUseCase) load(ctx context.Context, ownerID, id string) (*entity.Client, error) {
	c, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if c.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}
	return c, nil
}

// apply valida la entrada y la vuelca sobre c.
func (uc *ClientUseCase) apply(ctx context.Context, c *entity.Client, in dto.ClientRequest) error {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
	}
	cuit := ""
	if strings.TrimSpace(in.CUIT) != "" {
		if err := afip.ValidateCUIT(in.CUIT); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrInvalidCUIT, err)
		}
		cuit = afip.NormalizeCUIT(in.CUIT)
		existing, err := uc.repo.GetByOwnerAndCUIT(ctx, c.OwnerID, cuit)
		if err != nil {
			return err
		}
		if existing != nil && existing.ID != c.ID {
			return domain.ErrDuplicate
		}
	}
	c.Name = name
	c.CUIT = cuit
	c.ContactName = strings.TrimSpace(in.ContactName)
	c.Email = strings.TrimSpace(in.Email)
	c.Phone = strings.TrimSpace(in.Phone)
	c.Address = strings.TrimSpace(in.Address)
	c.Country = strings.TrimSpace(in.Country)
	c.Notes = strings.TrimSpace(in.Notes)
	c.UpdatedAt = uc.now()
	return nil
}

func matches(c *entity.Client, needle, digits string) bool {
	for _, field := range []string{c.Name, c.ContactName, c.Email} {
		if strings.Contains(Fold(field), needle) {
			return true
		}
	}
	return digits != "" && strings.Contains(c.CUIT, digits)
}

// Fold quita diacríticos y pliega mayúsculas para comparar texto en español.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = s
	}
	return cases.Fold().String(out)
}

func toClientResponse(c *entity.Client) *dto.ClientResponse {
	r := &dto.ClientResponse{
		ID:          c.ID,
		Name:        c.Name,
		CUIT:        c.CUIT,
		ContactName: c.ContactName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		Country:     c.Country,
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if c.CUIT != "" {
		r.CUITFormatted = afip.FormatCUIT(c.CUIT)
	}
	return r
}
