package useditems

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketplace-backend/internal/items"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

// Service manages secondhand listings owned by customers.
type Service interface {
	Create(ctx context.Context, actor visibility.Actor, input CreateInput) (*UsedItem, error)
	Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*UsedItem, error)
	List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[UsedItem], error)
	Update(ctx context.Context, actor visibility.Actor, id uuid.UUID, input UpdateInput) (*UsedItem, error)
	Delete(ctx context.Context, actor visibility.Actor, id uuid.UUID) error
}

type service struct {
	repo *Repository
}

func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "used item repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, actor visibility.Actor, input CreateInput) (*UsedItem, error) {
	if _, err := visibility.MutableScope(actor, visibility.ResourceUsedItem); err != nil {
		return nil, err
	}
	owner, err := visibility.OwnerFor(actor, input.UserID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.Field("name", "name is required")
	}
	if err := items.ValidatePrice("price", input.Price); err != nil {
		return nil, err
	}
	category, err := enums.ParseItemCategory(input.Category)
	if err != nil {
		return nil, pkgerrors.Field("category", "unknown category "+input.Category)
	}
	if input.WarrantyPeriod < 0 {
		return nil, pkgerrors.Field("warranty_period", "warranty_period cannot be negative")
	}
	row := models.UsedItem{
		UserID:         owner,
		Name:           name,
		Description:    input.Description,
		Price:          input.Price,
		Category:       category,
		WarrantyPeriod: input.WarrantyPeriod,
	}
	if err := s.repo.Create(ctx, &row); err != nil {
		return nil, err
	}
	out := FromModel(row)
	return &out, nil
}

func (s *service) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*UsedItem, error) {
	row, err := s.repo.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	out := FromModel(*row)
	return &out, nil
}

func (s *service) List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[UsedItem], error) {
	query := listQuery{Actor: actor, Limit: params.Limit, Name: strings.TrimSpace(params.Name)}
	if c := strings.TrimSpace(params.Category); c != "" {
		category, err := enums.ParseItemCategory(c)
		if err != nil {
			return pagination.Page[UsedItem]{}, pkgerrors.Field("category", "unknown category "+c)
		}
		query.Category = category
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[UsedItem]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query.Cursor = cursor
	rows, err := s.repo.List(ctx, query)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return pagination.Page[UsedItem]{}, typed
		}
		return pagination.Page[UsedItem]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list used items")
	}
	out := pagination.Page[UsedItem]{Items: make([]UsedItem, 0, len(rows.Items)), Cursor: rows.Cursor}
	for _, row := range rows.Items {
		out.Items = append(out.Items, FromModel(row))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, actor visibility.Actor, id uuid.UUID, input UpdateInput) (*UsedItem, error) {
	row, err := s.repo.GetForWrite(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if input.Name != nil {
		row.Name = strings.TrimSpace(*input.Name)
		if row.Name == "" {
			return nil, pkgerrors.Field("name", "name cannot be blank")
		}
		updates["name"] = row.Name
	}
	if input.Description != nil {
		row.Description = *input.Description
		updates["description"] = row.Description
	}
	if input.Price != nil {
		if err := items.ValidatePrice("price", *input.Price); err != nil {
			return nil, err
		}
		row.Price = *input.Price
		updates["price"] = row.Price
	}
	if input.Category != nil {
		category, err := enums.ParseItemCategory(*input.Category)
		if err != nil {
			return nil, pkgerrors.Field("category", "unknown category "+*input.Category)
		}
		row.Category = category
		updates["category"] = category
	}
	if input.WarrantyPeriod != nil {
		if *input.WarrantyPeriod < 0 {
			return nil, pkgerrors.Field("warranty_period", "warranty_period cannot be negative")
		}
		row.WarrantyPeriod = *input.WarrantyPeriod
		updates["warranty_period"] = row.WarrantyPeriod
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, row.ID, updates); err != nil {
			return nil, err
		}
	}
	out := FromModel(*row)
	return &out, nil
}

func (s *service) Delete(ctx context.Context, actor visibility.Actor, id uuid.UUID) error {
	row, err := s.repo.GetForWrite(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, row.ID)
}
