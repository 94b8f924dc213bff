package cart

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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
	Window   *filters.Window
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Name     string
}

func (r *Repository) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.Cart, error) {
	var row models.Cart
	if err := r.base.FindVisible(ctx, actor, visibility.ResourceCart, "carts", id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) GetForWrite(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.Cart, error) {
	var row models.Cart
	if err := r.base.FindMutable(ctx, actor, visibility.ResourceCart, "carts", id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Reload(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Cart, error) {
	var row models.Cart
	if err := r.base.WithTx(tx).DB(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, repo.NotFoundOr(err, "cart line not found")
	}
	return &row, nil
}

func (r *Repository) List(ctx context.Context, q listQuery) (pagination.Page[models.Cart], error) {
	query, err := r.base.Visible(ctx, q.Actor, visibility.ResourceCart, &models.Cart{})
	if err != nil {
		return pagination.Page[models.Cart]{}, err
	}
	if q.Window != nil {
		query = query.Scopes(q.Window.Scope("carts.added_at"))
	}
	if q.MinPrice != nil || q.MaxPrice != nil || q.Name != "" {
		query = query.Joins("JOIN items ON items.id = carts.item_id")
		if q.MinPrice != nil {
			query = query.Where("items.price >= CAST(? AS NUMERIC)", filters.Numeric(*q.MinPrice))
		}
		if q.MaxPrice != nil {
			query = query.Where("items.price <= CAST(? AS NUMERIC)", filters.Numeric(*q.MaxPrice))
		}
		if q.Name != "" {
			query = query.Scopes(filters.ContainsFold("items.name", q.Name))
		}
	}
	var rows []models.Cart
	if err := query.Select("carts.*").
		Scopes(pagination.Scope("carts", "added_at", q.Cursor, q.Limit)).
		Find(&rows).Error; err != nil {
		return pagination.Page[models.Cart]{}, err
	}
	return pagination.Trim(rows, q.Limit, func(c models.Cart) pagination.Cursor {
		return pagination.Cursor{CreatedAt: c.AddedAt, ID: c.ID}
	}), nil
}

func (r *Repository) Item(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var row models.Item
	if err := r.base.DB(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// DiscountByCode looks a code up without regard to case.
func (r *Repository) DiscountByCode(ctx context.Context, code string) (*models.Discount, error) {
	var row models.Discount
	if err := r.base.DB(ctx).Scopes(filters.EqualFold("code", code)).Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindLine returns the user's existing line for an item and discount pair.
func (r *Repository) FindLine(ctx context.Context, tx *gorm.DB, userID, itemID uuid.UUID, discountID *uuid.UUID) (*models.Cart, error) {
	query := r.base.WithTx(tx).DB(ctx).Where("user_id = ? AND item_id = ?", userID, itemID)
	if discountID == nil {
		query = query.Where("discount_id IS NULL")
	} else {
		query = query.Where("discount_id = ?", *discountID)
	}
	var row models.Cart
	if err := query.Order("added_at ASC").Take(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, tx *gorm.DB, row *models.Cart) error {
	return repo.WriteError(r.base.WithTx(tx).DB(ctx).Create(row).Error, "cart line")
}

// Increment adds qty to a line in one statement.
func (r *Repository) Increment(ctx context.Context, tx *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	res := r.base.WithTx(tx).DB(ctx).Model(&models.Cart{}).
		Where("id = ?", id).
		UpdateColumn("item_quantity", gorm.Expr("item_quantity + ?", qty))
	return res.RowsAffected == 1, res.Error
}

func (r *Repository) SetQuantity(ctx context.Context, id uuid.UUID, qty int) error {
	return repo.WriteError(r.base.DB(ctx).Model(&models.Cart{}).Where("id = ?", id).UpdateColumn("item_quantity", qty).Error, "cart line")
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return repo.WriteError(r.base.DB(ctx).Delete(&models.Cart{}, "id = ?", id).Error, "cart line")
}
