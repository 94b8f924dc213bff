package bids

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/internal/repo"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
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
	Actor      visibility.Actor
	Limit      int
	Cursor     *pagination.Cursor
	UsedItemID *uuid.UUID
	// Unscoped skips the role predicate; callers must have authorised the listing.
	Unscoped bool
}

func (r *Repository) Create(ctx context.Context, tx *gorm.DB, bid *models.Bid) error {
	return repo.WriteError(r.base.WithTx(tx).DB(ctx).Create(bid).Error, "bid")
}

func (r *Repository) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.Bid, error) {
	var row models.Bid
	if err := r.base.FindVisible(ctx, actor, visibility.ResourceBid, "bids", id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) GetForWrite(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.Bid, error) {
	var row models.Bid
	if err := r.base.FindMutable(ctx, actor, visibility.ResourceBid, "bids", id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// Reload reads a bid without a role scope.
func (r *Repository) Reload(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Bid, error) {
	var row models.Bid
	if err := r.base.WithTx(tx).DB(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, repo.NotFoundOr(err, "bid not found")
	}
	return &row, nil
}

func (r *Repository) List(ctx context.Context, q listQuery) (pagination.Page[models.Bid], error) {
	var (
		query *gorm.DB
		err   error
	)
	if q.Unscoped {
		query = r.base.DB(ctx).Model(&models.Bid{})
	} else if query, err = r.base.Visible(ctx, q.Actor, visibility.ResourceBid, &models.Bid{}); err != nil {
		return pagination.Page[models.Bid]{}, err
	}
	if q.UsedItemID != nil {
		query = query.Where("bids.used_item_id = ?", *q.UsedItemID)
	}
	var rows []models.Bid
	if err := query.Scopes(pagination.Scope("bids", "created_at", q.Cursor, q.Limit)).Find(&rows).Error; err != nil {
		return pagination.Page[models.Bid]{}, err
	}
	return pagination.Trim(rows, q.Limit, func(b models.Bid) pagination.Cursor {
		return pagination.Cursor{CreatedAt: b.CreatedAt, ID: b.ID}
	}), nil
}

// UsedItem loads a listing without a role scope.
func (r *Repository) UsedItem(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.UsedItem, error) {
	var row models.UsedItem
	if err := r.base.WithTx(tx).DB(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, repo.NotFoundOr(err, "used item not found")
	}
	return &row, nil
}

// ListingClosed reports whether a listing already has a completed bid.
func (r *Repository) ListingClosed(ctx context.Context, tx *gorm.DB, usedItemID uuid.UUID) (bool, error) {
	var count int64
	err := r.base.WithTx(tx).DB(ctx).Model(&models.Bid{}).
		Where("used_item_id = ? AND status = ?", usedItemID, enums.BidStatusCompleted).
		Count(&count).Error
	return count > 0, err
}

// Complete moves a bid to completed if it is still bidding and no other bid on
// the same listing has been completed. It reports whether the row changed.
func (r *Repository) Complete(ctx context.Context, tx *gorm.DB, bid models.Bid, at time.Time) (bool, error) {
	res := r.base.WithTx(tx).DB(ctx).Model(&models.Bid{}).
		Where("id = ? AND status = ?", bid.ID, enums.BidStatusBidding).
		Where("NOT EXISTS (SELECT 1 FROM bids b WHERE b.used_item_id = ? AND b.status = ?)", bid.UsedItemID, enums.BidStatusCompleted).
		Updates(map[string]any{"status": enums.BidStatusCompleted, "completed_at": at})
	return res.RowsAffected == 1, res.Error
}

// UpdateAmount changes the amount of a bid that is still bidding.
func (r *Repository) UpdateAmount(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	res := r.base.DB(ctx).Model(&models.Bid{}).
		Where("id = ? AND status = ?", id, enums.BidStatusBidding).
		Update("amount", amount)
	return res.RowsAffected == 1, res.Error
}

// DeleteBidding removes a bid that is still bidding.
func (r *Repository) DeleteBidding(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.base.DB(ctx).Where("id = ? AND status = ?", id, enums.BidStatusBidding).Delete(&models.Bid{})
	return res.RowsAffected == 1, res.Error
}
