package address

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/internal/repo"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

type Repository struct {
	base repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, row *models.Address) error {
	return repo.WriteError(r.base.DB(ctx).Create(row).Error, "address")
}

func (r *Repository) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.Address, error) {
	var row models.Address
	if err := r.base.FindVisible(ctx, actor, visibility.ResourceAddress, "addresses", id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) GetForWrite(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.Address, error) {
	var row models.Address
	if err := r.base.FindMutable(ctx, actor, visibility.ResourceAddress, "addresses", id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) List(ctx context.Context, actor visibility.Actor, limit int, cursor *pagination.Cursor) (pagination.Page[models.Address], error) {
	query, err := r.base.Visible(ctx, actor, visibility.ResourceAddress, &models.Address{})
	if err != nil {
		return pagination.Page[models.Address]{}, err
	}
	var rows []models.Address
	if err := query.Scopes(pagination.Scope("addresses", "created_at", cursor, limit)).Find(&rows).Error; err != nil {
		return pagination.Page[models.Address]{}, err
	}
	return pagination.Trim(rows, limit, func(a models.Address) pagination.Cursor {
		return pagination.Cursor{CreatedAt: a.CreatedAt, ID: a.ID}
	}), nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return repo.WriteError(r.base.DB(ctx).Model(&models.Address{}).Where("id = ?", id).Updates(updates).Error, "address")
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return repo.WriteError(r.base.DB(ctx).Delete(&models.Address{}, "id = ?", id).Error, "address")
}
