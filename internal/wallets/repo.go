package wallets

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

func (r *Repository) Create(ctx context.Context, w *models.Wallet) error {
	return repo.WriteError(r.base.DB(ctx).Create(w).Error, "wallet")
}

func (r *Repository) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.Wallet, error) {
	var row models.Wallet
	if err := r.base.FindVisible(ctx, actor, visibility.ResourceWallet, "wallets", id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) ByUser(ctx context.Context, userID uuid.UUID) (*models.Wallet, error) {
	var row models.Wallet
	if err := r.base.DB(ctx).Where("user_id = ?", userID).Take(&row).Error; err != nil {
		return nil, repo.NotFoundOr(err, "wallet not found")
	}
	return &row, nil
}

func (r *Repository) Reload(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Wallet, error) {
	var row models.Wallet
	if err := r.base.WithTx(tx).DB(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, repo.NotFoundOr(err, "wallet not found")
	}
	return &row, nil
}

func (r *Repository) List(ctx context.Context, actor visibility.Actor, limit int, cursor *pagination.Cursor) (pagination.Page[models.Wallet], error) {
	query, err := r.base.Visible(ctx, actor, visibility.ResourceWallet, &models.Wallet{})
	if err != nil {
		return pagination.Page[models.Wallet]{}, err
	}
	var rows []models.Wallet
	if err := query.Scopes(pagination.Scope("wallets", "connected_at", cursor, limit)).Find(&rows).Error; err != nil {
		return pagination.Page[models.Wallet]{}, err
	}
	return pagination.Trim(rows, limit, func(w models.Wallet) pagination.Cursor {
		return pagination.Cursor{CreatedAt: w.ConnectedAt, ID: w.ID}
	}), nil
}
