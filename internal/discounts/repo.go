package discounts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/internal/repo"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
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
	Params ListParams
	Actor  visibility.Actor
	Cursor *pagination.Cursor
	Status visibility.Scope
}

func (r *Repository) Create(ctx context.Context, d *models.Discount) error {
	return repo.WriteError(r.base.DB(ctx).Create(d).Error, "discount code")
}

func (r *Repository) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.Discount, error) {
	var row models.Discount
	if err := r.base.FindVisible(ctx, actor, visibility.ResourceDiscount, "discounts", id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) GetForWrite(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.Discount, error) {
	var row models.Discount
	if err := r.base.FindMutable(ctx, actor, visibility.ResourceDiscount, "discounts", id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) List(ctx context.Context, q listQuery) (pagination.Page[models.Discount], error) {
	query, err := r.base.Visible(ctx, q.Actor, visibility.ResourceDiscount, &models.Discount{})
	if err != nil {
		return pagination.Page[models.Discount]{}, err
	}
	if q.Status != nil {
		query = query.Scopes(q.Status)
	}
	if q.Params.Search != "" {
		query = query.Scopes(SearchScope(q.Params.Search))
	}
	if q.Params.MinPercentage != nil {
		query = query.Where("discounts.percentage >= ?", filters.Numeric(*q.Params.MinPercentage))
	}
	if q.Params.MaxPercentage != nil {
		query = query.Where("discounts.percentage <= ?", filters.Numeric(*q.Params.MaxPercentage))
	}
	if q.Params.Redemptions != nil {
		query = query.Where("discounts.redemptions >= ?", *q.Params.Redemptions)
	}
	if q.Params.MaxRedemptions != nil {
		query = query.Where("discounts.max_redemptions <= ?", *q.Params.MaxRedemptions)
	}
	var rows []models.Discount
	if err := query.Scopes(pagination.Scope("discounts", "added_at", q.Cursor, q.Params.Limit)).Find(&rows).Error; err != nil {
		return pagination.Page[models.Discount]{}, err
	}
	return pagination.Trim(rows, q.Params.Limit, func(d models.Discount) pagination.Cursor {
		return pagination.Cursor{CreatedAt: d.AddedAt, ID: d.ID}
	}), nil
}

// Update applies updates to a discount. A new max_redemptions only lands while
// it still covers the redemptions taken so far.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	query := r.base.DB(ctx).Model(&models.Discount{}).Where("id = ?", id)
	capped, hasCap := updates["max_redemptions"].(int)
	if hasCap {
		query = query.Where("redemptions <= ?", capped)
	}
	res := query.Updates(updates)
	if res.Error != nil {
		return repo.WriteError(res.Error, "discount")
	}
	if hasCap && res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "redemptions already exceed max_redemptions")
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return repo.WriteError(r.base.DB(ctx).Delete(&models.Discount{}, "id = ?", id).Error, "discount")
}

// ExpiredBefore lists discounts whose expiry date is before today, oldest first.
func (r *Repository) ExpiredBefore(ctx context.Context, tx *gorm.DB, now time.Time, limit int) ([]models.Discount, error) {
	var rows []models.Discount
	err := r.base.WithTx(tx).DB(ctx).
		Where("expires_at < ?", Today(now).Format(dateLayout)).
		Where("id NOT IN (SELECT aggregate_id FROM outbox_events WHERE event_type = 'discount_expired')").
		Order("expires_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// IsVendor reports whether id belongs to a vendor account.
func (r *Repository) IsVendor(ctx context.Context, id uuid.UUID) (bool, error) {
	return r.base.HasRole(ctx, id, enums.RoleVendor)
}
