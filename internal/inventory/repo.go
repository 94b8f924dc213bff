package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/internal/repo"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/filters"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

type listQuery struct {
	Actor    visibility.Actor
	Limit    int
	Cursor   *pagination.Cursor
	InStock  *bool
	Location string
}

func (r *Repository) List(ctx context.Context, q listQuery) (pagination.Page[models.Inventory], error) {
	query, err := r.base.Visible(ctx, q.Actor, visibility.ResourceInventory, &models.Inventory{})
	if err != nil {
		return pagination.Page[models.Inventory]{}, err
	}
	if q.InStock != nil {
		query = query.Where("inventories.in_stock = ?", *q.InStock)
	}
	if q.Location != "" {
		query = query.Scopes(filters.ContainsFold("inventories.location", q.Location))
	}
	var rows []models.Inventory
	if err := query.Scopes(pagination.Scope("inventories", "updated_at", q.Cursor, q.Limit)).Find(&rows).Error; err != nil {
		return pagination.Page[models.Inventory]{}, err
	}
	return pagination.Trim(rows, q.Limit, func(inv models.Inventory) pagination.Cursor {
		return pagination.Cursor{CreatedAt: inv.UpdatedAt, ID: inv.ID}
	}), nil
}

func (r *Repository) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.Inventory, error) {
	var row models.Inventory
	if err := r.base.FindVisible(ctx, actor, visibility.ResourceInventory, "inventories", id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) GetForWrite(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.Inventory, error) {
	var row models.Inventory
	if err := r.base.FindMutable(ctx, actor, visibility.ResourceInventory, "inventories", id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// Reload reads a row without any role scope, for returning the result of a write.
func (r *Repository) Reload(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Inventory, error) {
	var row models.Inventory
	if err := r.base.WithTx(tx).DB(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, repo.NotFoundOr(err, "inventory not found")
	}
	return &row, nil
}

func (r *Repository) UpdateLocation(ctx context.Context, tx *gorm.DB, id uuid.UUID, location string) error {
	return repo.WriteError(r.base.WithTx(tx).DB(ctx).Model(&models.Inventory{}).Where("id = ?", id).Update("location", location).Error, "inventory")
}
