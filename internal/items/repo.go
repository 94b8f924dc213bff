package items

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/internal/repo"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
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
	Params   ListParams
	Actor    visibility.Actor
	Cursor   *pagination.Cursor
	Category enums.ItemCategory
}

// Create inserts the item and its inventory row in tx.
func (r *Repository) Create(ctx context.Context, tx *gorm.DB, item *models.Item, inv *models.Inventory) error {
	db := r.base.WithTx(tx).DB(ctx)
	if err := db.Omit("Inventory").Create(item).Error; err != nil {
		return repo.WriteError(err, "item")
	}
	inv.ItemID = item.ID
	if err := db.Create(inv).Error; err != nil {
		return repo.WriteError(err, "inventory")
	}
	item.Inventory = inv
	return nil
}

func (r *Repository) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.Item, error) {
	query, err := r.base.Visible(ctx, actor, visibility.ResourceItem, &models.Item{})
	if err != nil {
		return nil, err
	}
	var row models.Item
	if err := query.Preload("Inventory").Where("items.id = ?", id).Take(&row).Error; err != nil {
		return nil, repo.NotFoundOr(err, "item not found")
	}
	return &row, nil
}

func (r *Repository) GetForWrite(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.Item, error) {
	var row models.Item
	if err := r.base.FindMutable(ctx, actor, visibility.ResourceItem, "items", id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) List(ctx context.Context, q listQuery) (pagination.Page[models.Item], error) {
	query, err := r.base.Visible(ctx, q.Actor, visibility.ResourceItem, &models.Item{})
	if err != nil {
		return pagination.Page[models.Item]{}, err
	}
	query = query.Joins("JOIN inventories ON inventories.item_id = items.id")
	if q.Params.MinPrice != nil {
		query = query.Where("items.price >= ?", filters.Numeric(*q.Params.MinPrice))
	}
	if q.Params.MaxPrice != nil {
		query = query.Where("items.price <= ?", filters.Numeric(*q.Params.MaxPrice))
	}
	if q.Params.InStock != nil {
		query = query.Where("inventories.in_stock = ?", *q.Params.InStock)
	}
	if q.Params.Name != "" {
		query = query.Scopes(filters.ContainsFold("items.name", q.Params.Name))
	}
	if q.Params.Location != "" {
		query = query.Scopes(filters.ContainsFold("inventories.location", q.Params.Location))
	}
	if q.Category != "" {
		query = query.Where("items.category = ?", q.Category)
	}
	var rows []models.Item
	if err := query.Preload("Inventory").
		Scopes(pagination.Scope("items", "created_at", q.Cursor, q.Params.Limit)).
		Find(&rows).Error; err != nil {
		return pagination.Page[models.Item]{}, err
	}
	return pagination.Trim(rows, q.Params.Limit, func(i models.Item) pagination.Cursor {
		return pagination.Cursor{CreatedAt: i.CreatedAt, ID: i.ID}
	}), nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return repo.WriteError(r.base.DB(ctx).Model(&models.Item{}).Where("id = ?", id).Updates(updates).Error, "item")
}

// Delete removes the item. Items referenced by order history are protected by
// ON DELETE RESTRICT and come back as CONFLICT.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return repo.WriteError(r.base.DB(ctx).Delete(&models.Item{}, "id = ?", id).Error, "item")
}

// IsVendor reports whether id belongs to a vendor account.
func (r *Repository) IsVendor(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.base.HasRole(ctx, id, enums.RoleVendor)
}
