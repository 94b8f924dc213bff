package transactions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/internal/repo"
	dbpkg "github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
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
	Actor   visibility.Actor
	Limit   int
	Cursor  *pagination.Cursor
	Status  enums.TransactionStatus
	OrderID *uuid.UUID
}

// openOrderConstraints name the one-live-payment-per-order index on Postgres and SQLite.
var openOrderConstraints = []string{"ux_transactions_open_order", "transactions.order_id"}

func (r *Repository) Create(ctx context.Context, row *models.Transaction) error {
	err := r.base.DB(ctx).Create(row).Error
	for _, constraint := range openOrderConstraints {
		if dbpkg.IsUniqueViolation(err, constraint) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "order already has an open transaction")
		}
	}
	if dbpkg.IsUniqueViolation(err, "") {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "transaction hash already recorded")
	}
	return repo.WriteError(err, "transaction")
}

// LiveForOrder returns the pending or completed transaction of an order, if any.
func (r *Repository) LiveForOrder(ctx context.Context, orderID uuid.UUID) (*models.Transaction, error) {
	var rows []models.Transaction
	err := r.base.DB(ctx).
		Where("order_id = ? AND status IN ?", orderID, []enums.TransactionStatus{enums.TransactionStatusPending, enums.TransactionStatusCompleted}).
		Limit(1).Find(&rows).Error
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return &rows[0], nil
}

// OrderStatus reads the current status of an order inside tx.
func (r *Repository) OrderStatus(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (enums.OrderStatus, error) {
	var order models.Order
	if err := r.base.WithTx(tx).DB(ctx).Select("id", "status").Where("id = ?", orderID).Take(&order).Error; err != nil {
		return "", repo.NotFoundOr(err, "order not found")
	}
	return order.Status, nil
}

func (r *Repository) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.Transaction, error) {
	var row models.Transaction
	if err := r.base.FindVisible(ctx, actor, visibility.ResourceTransaction, "transactions", id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// Reload reads a transaction without a role scope.
func (r *Repository) Reload(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Transaction, error) {
	var row models.Transaction
	if err := r.base.WithTx(tx).DB(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, repo.NotFoundOr(err, "transaction not found")
	}
	return &row, nil
}

// OrderForWrite loads an order the actor may pay for.
func (r *Repository) OrderForWrite(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.Order, error) {
	var row models.Order
	if err := r.base.FindMutable(ctx, actor, visibility.ResourceOrder, "orders", id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) List(ctx context.Context, q listQuery) (pagination.Page[models.Transaction], error) {
	query, err := r.base.Visible(ctx, q.Actor, visibility.ResourceTransaction, &models.Transaction{})
	if err != nil {
		return pagination.Page[models.Transaction]{}, err
	}
	if q.Status != "" {
		query = query.Where("transactions.status = ?", q.Status)
	}
	if q.OrderID != nil {
		query = query.Where("transactions.order_id = ?", *q.OrderID)
	}
	var rows []models.Transaction
	if err := query.Scopes(pagination.Scope("transactions", "created_at", q.Cursor, q.Limit)).Find(&rows).Error; err != nil {
		return pagination.Page[models.Transaction]{}, err
	}
	return pagination.Trim(rows, q.Limit, func(t models.Transaction) pagination.Cursor {
		return pagination.Cursor{CreatedAt: t.CreatedAt, ID: t.ID}
	}), nil
}

// Transition moves a pending transaction to a terminal status. It reports
// false when the row was not pending.
func (r *Repository) Transition(ctx context.Context, tx *gorm.DB, id uuid.UUID, to enums.TransactionStatus, settledAt *time.Time) (bool, error) {
	updates := map[string]any{"status": to}
	if settledAt != nil {
		updates["settled_at"] = *settledAt
	}
	res := r.base.WithTx(tx).DB(ctx).Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, enums.TransactionStatusPending).
		Updates(updates)
	return res.RowsAffected == 1, res.Error
}

func (r *Repository) OrderLines(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]models.OrderItem, error) {
	var rows []models.OrderItem
	err := r.base.WithTx(tx).DB(ctx).Where("order_id = ?", orderID).Find(&rows).Error
	return rows, err
}

func (r *Repository) InsertSettlement(ctx context.Context, tx *gorm.DB, row *models.WalletSettlement) error {
	return r.base.WithTx(tx).DB(ctx).Create(row).Error
}
