package ratings

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
	Actor     visibility.Actor
	Limit     int
	Cursor    *pagination.Cursor
	MinRating *int
	MaxRating *int
	Item      string
	UserID    *uuid.UUID
}

const vendorAverage = `UPDATE users SET rating = (
	SELECT COALESCE(ROUND(AVG(r.rating), 2), 0) FROM ratings r
	JOIN items i ON i.id = r.item_id WHERE i.vendor_id = ?
) WHERE id = ?`

func (r *Repository) Create(ctx context.Context, tx *gorm.DB, row *models.Rating) error {
	return repo.WriteError(r.base.WithTx(tx).DB(ctx).Create(row).Error, "rating")
}

func (r *Repository) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.Rating, error) {
	var row models.Rating
	if err := r.base.FindVisible(ctx, actor, visibility.ResourceRating, "ratings", id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) GetForWrite(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.Rating, error) {
	var row models.Rating
	if err := r.base.FindMutable(ctx, actor, visibility.ResourceRating, "ratings", id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Reload(ctx context.Context, id uuid.UUID) (*models.Rating, error) {
	var row models.Rating
	if err := r.base.DB(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, repo.NotFoundOr(err, "rating not found")
	}
	return &row, nil
}

func (r *Repository) List(ctx context.Context, q listQuery) (pagination.Page[models.Rating], error) {
	query, err := r.base.Visible(ctx, q.Actor, visibility.ResourceRating, &models.Rating{})
	if err != nil {
		return pagination.Page[models.Rating]{}, err
	}
	if q.MinRating != nil {
		query = query.Where("ratings.rating >= ?", *q.MinRating)
	}
	if q.MaxRating != nil {
		query = query.Where("ratings.rating <= ?", *q.MaxRating)
	}
	if q.Item != "" {
		query = query.Where("ratings.item_id IN (SELECT i.id FROM items i WHERE "+filters.ContainsClause("i.name")+")", filters.ContainsPattern(q.Item))
	}
	if q.UserID != nil {
		query = query.Where("ratings.user_id = ?", *q.UserID)
	}
	var rows []models.Rating
	if err := query.Scopes(pagination.Scope("ratings", "reviewed_at", q.Cursor, q.Limit)).Find(&rows).Error; err != nil {
		return pagination.Page[models.Rating]{}, err
	}
	return pagination.Trim(rows, q.Limit, func(r models.Rating) pagination.Cursor {
		return pagination.Cursor{CreatedAt: r.ReviewedAt, ID: r.ID}
	}), nil
}

func (r *Repository) Update(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]any) error {
	return repo.WriteError(r.base.WithTx(tx).DB(ctx).Model(&models.Rating{}).Where("id = ?", id).Updates(updates).Error, "rating")
}

func (r *Repository) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	return repo.WriteError(r.base.WithTx(tx).DB(ctx).Delete(&models.Rating{}, "id = ?", id).Error, "rating")
}

// VendorOf returns the vendor that sells an item.
func (r *Repository) VendorOf(ctx context.Context, tx *gorm.DB, itemID uuid.UUID) (uuid.UUID, error) {
	var item models.Item
	if err := r.base.WithTx(tx).DB(ctx).Select("id", "vendor_id").Where("id = ?", itemID).Take(&item).Error; err != nil {
		return uuid.Nil, err
	}
	return item.VendorID, nil
}

// RecomputeVendorRating sets a vendor's rating to the average over their items.
func (r *Repository) RecomputeVendorRating(ctx context.Context, tx *gorm.DB, vendorID uuid.UUID) error {
	return r.base.WithTx(tx).DB(ctx).Exec(vendorAverage, vendorID, vendorID).Error
}
