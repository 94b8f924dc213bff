package useditems

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
	Actor    visibility.Actor
	Limit    int
	Cursor   *pagination.Cursor
	Name     string
	Category enums.ItemCategory
}

func (r *Repository) Create(ctx context.Context, row *models.UsedItem) error {
	return repo.WriteError(r.base.DB(ctx).Create(row).Error, "used item")
}

func (r *Repository) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.UsedItem, error) {
	var row models.UsedItem
	if err := r.base.FindVisible(ctx, actor, visibility.ResourceUsedItem, "used_items", id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) GetForWrite(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.UsedItem, error) {
	var row models.UsedItem
	if err := r.base.FindMutable(ctx, actor, visibility.ResourceUsedItem, "used_items", id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) List(ctx context.Context, q listQuery) (pagination.Page[models.UsedItem], error) {
	query, err := r.base.Visible(ctx, q.Actor, visibility.ResourceUsedItem, &models.UsedItem{})
	if err != nil {
		return pagination.Page[models.UsedItem]{}, err
	}
	if q.Name != "" {
		query = query.Scopes(filters.ContainsFold("used_items.name", q.Name))
	}
	if q.Category != "" {
		query = query.Where("used_items.category = ?", q.Category)
	}
	var rows []models.UsedItem
	if err := query.Scopes(pagination.Scope("used_items", "created_at", q.Cursor, q.Limit)).Find(&rows).Error; err != nil {
		return pagination.Page[models.UsedItem]{}, err
	}
	return pagination.Trim(rows, q.Limit, func(u models.UsedItem) pagination.Cursor {
		return pagination.Cursor{CreatedAt: u.CreatedAt, ID: u.ID}
	}), nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return repo.WriteError(r.base.DB(ctx).Model(&models.UsedItem{}).Where("id = ?", id).Updates(updates).Error, "used item")
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return repo.WriteError(r.base.DB(ctx).Delete(&models.UsedItem{}, "id = ?", id).Error, "used item")
}
