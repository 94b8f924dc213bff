package address

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

type Service interface {
	Create(ctx context.Context, actor visibility.Actor, input CreateInput) (*Address, error)
	Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Address, error)
	List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[Address], error)
	Update(ctx context.Context, actor visibility.Actor, id uuid.UUID, input UpdateInput) (*Address, error)
	Delete(ctx context.Context, actor visibility.Actor, id uuid.UUID) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "address repository required")
	}
	return &service{repo: repo}, nil
}

// normalize trims every component and upper-cases two letter country codes.
func normalize(field, value string) (string, error) {
	value = strings.Join(strings.Fields(value), " ")
	if value == "" {
		return "", pkgerrors.Field(field, field+" is required")
	}
	if field == "country" && len(value) == 2 {
		value = strings.ToUpper(value)
	}
	return value, nil
}

func (s *service) Create(ctx context.Context, actor visibility.Actor, input CreateInput) (*Address, error) {
	if _, err := visibility.MutableScope(actor, visibility.ResourceAddress); err != nil {
		return nil, err
	}
	owner, err := visibility.OwnerFor(actor, input.UserID)
	if err != nil {
		return nil, err
	}
	row := models.Address{UserID: owner}
	for _, f := range []struct {
		name  string
		value string
		dest  *string
	}{
		{"street_address", input.StreetAddress, &row.StreetAddress},
		{"city", input.City, &row.City},
		{"state", input.State, &row.State},
		{"postal_code", input.PostalCode, &row.PostalCode},
		{"country", input.Country, &row.Country},
	} {
		v, err := normalize(f.name, f.value)
		if err != nil {
			return nil, err
		}
		*f.dest = v
	}
	if err := s.repo.Create(ctx, &row); err != nil {
		return nil, err
	}
	out := FromModel(row)
	return &out, nil
}

func (s *service) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Address, error) {
	row, err := s.repo.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	out := FromModel(*row)
	return &out, nil
}

func (s *service) List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[Address], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[Address]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	page, err := s.repo.List(ctx, actor, pagination.NormalizeLimit(params.Limit), cursor)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return pagination.Page[Address]{}, err
		}
		return pagination.Page[Address]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list addresses")
	}
	out := pagination.Page[Address]{Items: make([]Address, 0, len(page.Items)), Cursor: page.Cursor}
	for _, row := range page.Items {
		out.Items = append(out.Items, FromModel(row))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, actor visibility.Actor, id uuid.UUID, input UpdateInput) (*Address, error) {
	row, err := s.repo.GetForWrite(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	for _, f := range []struct {
		name  string
		value *string
		dest  *string
	}{
		{"street_address", input.StreetAddress, &row.StreetAddress},
		{"city", input.City, &row.City},
		{"state", input.State, &row.State},
		{"postal_code", input.PostalCode, &row.PostalCode},
		{"country", input.Country, &row.Country},
	} {
		if f.value == nil {
			continue
		}
		v, err := normalize(f.name, *f.value)
		if err != nil {
			return nil, err
		}
		updates[f.name] = v
		*f.dest = v
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, err
		}
	}
	out := FromModel(*row)
	return &out, nil
}

func (s *service) Delete(ctx context.Context, actor visibility.Actor, id uuid.UUID) error {
	if _, err := s.repo.GetForWrite(ctx, actor, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
