package items

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type Service interface {
	Create(ctx context.Context, actor visibility.Actor, input CreateInput) (*Item, error)
	Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Item, error)
	List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[Item], error)
	Update(ctx context.Context, actor visibility.Actor, id uuid.UUID, input UpdateInput) (*Item, error)
	Delete(ctx context.Context, actor visibility.Actor, id uuid.UUID) error
}

type service struct {
	repo *Repository
	tx   txRunner
	logg *logger.Logger
}

func NewService(repo *Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "item repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, actor visibility.Actor, input CreateInput) (*Item, error) {
	if _, err := visibility.MutableScope(actor, visibility.ResourceItem); err != nil {
		return nil, err
	}
	vendorID, err := visibility.OwnerFor(actor, input.VendorID)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		ok, err := s.repo.IsVendor(ctx, vendorID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check vendor")
		}
		if !ok {
			return nil, pkgerrors.Field("vendor_id", "vendor_id must reference a vendor")
		}
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.Field("name", "name is required")
	}
	if err := ValidatePrice("price", input.Price); err != nil {
		return nil, err
	}
	category, err := enums.ParseItemCategory(input.Category)
	if err != nil {
		return nil, pkgerrors.Field("category", "category must be one of electronics, clothing, home, books, toys, sports, jewelry")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.Field("item_quantity", "item_quantity cannot be negative")
	}

	item := models.Item{
		VendorID:    vendorID,
		Name:        name,
		Description: input.Description,
		Price:       input.Price,
		Category:    category,
	}
	inv := models.Inventory{
		ItemQuantity: input.Quantity,
		InStock:      input.Quantity > 0,
		Location:     strings.TrimSpace(input.Location),
	}
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.Create(ctx, tx, &item, &inv)
	}); err != nil {
		return nil, repoErr(err, "create item")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"item_id": item.ID.String(), "vendor_id": vendorID.String()}), "item created")
	}
	out := FromModel(item)
	return &out, nil
}

func (s *service) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Item, error) {
	row, err := s.repo.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	out := FromModel(*row)
	return &out, nil
}

func (s *service) List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[Item], error) {
	query := listQuery{Actor: actor, Params: params}
	query.Params.Name = strings.TrimSpace(params.Name)
	query.Params.Location = strings.TrimSpace(params.Location)
	if c := strings.TrimSpace(params.Category); c != "" {
		category, err := enums.ParseItemCategory(c)
		if err != nil {
			return pagination.Page[Item]{}, pkgerrors.Field("category", "unknown category "+c)
		}
		query.Category = category
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[Item]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query.Cursor = cursor

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return pagination.Page[Item]{}, repoErr(err, "list items")
	}
	out := pagination.Page[Item]{Items: make([]Item, 0, len(rows.Items)), Cursor: rows.Cursor}
	for _, row := range rows.Items {
		out.Items = append(out.Items, FromModel(row))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, actor visibility.Actor, id uuid.UUID, input UpdateInput) (*Item, error) {
	row, err := s.repo.GetForWrite(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.Field("name", "name cannot be blank")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		if err := ValidatePrice("price", *input.Price); err != nil {
			return nil, err
		}
		updates["price"] = *input.Price
	}
	if input.Category != nil {
		category, err := enums.ParseItemCategory(*input.Category)
		if err != nil {
			return nil, pkgerrors.Field("category", "unknown category "+*input.Category)
		}
		updates["category"] = category
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, row.ID, updates); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, actor, row.ID)
}

func (s *service) Delete(ctx context.Context, actor visibility.Actor, id uuid.UUID) error {
	row, err := s.repo.GetForWrite(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, row.ID)
}

// ValidatePrice accepts positive amounts with at most two decimal places.
func ValidatePrice(field string, price decimal.Decimal) error {
	if !price.IsPositive() {
		return pkgerrors.Field(field, field+" must be greater than zero")
	}
	if !price.Equal(price.Round(2)) {
		return pkgerrors.Field(field, field+" allows at most 2 decimal places")
	}
	if price.GreaterThanOrEqual(decimal.New(1, 8)) {
		return pkgerrors.Field(field, field+" is too large")
	}
	return nil
}

func repoErr(err error, msg string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
