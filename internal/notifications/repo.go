package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/internal/repo"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	"github.com/angelmondragon/marketplace-backend/pkg/filters"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

// Repository exposes persistence helpers for notifications.
type Repository struct {
	base repo.Base
}

// NewRepository returns a notifications repository bound to the provided database.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

type listQuery struct {
	Actor  visibility.Actor
	Limit  int
	Cursor *pagination.Cursor
	Type   string
	Read   *bool
}

func (r *Repository) Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error {
	return r.base.WithTx(tx).DB(ctx).Create(notification).Error
}

func (r *Repository) List(ctx context.Context, q listQuery) (pagination.Page[models.Notification], error) {
	query, err := r.base.Visible(ctx, q.Actor, visibility.ResourceNotification, &models.Notification{})
	if err != nil {
		return pagination.Page[models.Notification]{}, err
	}
	if q.Type != "" {
		query = query.Scopes(filters.EqualFold("notifications.type", q.Type))
	}
	if q.Read != nil {
		query = query.Where("notifications.read = ?", *q.Read)
	}
	var rows []models.Notification
	if err := query.Scopes(pagination.Scope("notifications", "notified_at", q.Cursor, q.Limit)).Find(&rows).Error; err != nil {
		return pagination.Page[models.Notification]{}, err
	}
	return pagination.Trim(rows, q.Limit, func(n models.Notification) pagination.Cursor {
		return pagination.Cursor{CreatedAt: n.NotifiedAt, ID: n.ID}
	}), nil
}

func (r *Repository) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.Notification, error) {
	var row models.Notification
	if err := r.base.FindMutable(ctx, actor, visibility.ResourceNotification, "notifications", id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) MarkRead(ctx context.Context, id uuid.UUID) error {
	return r.base.DB(ctx).Model(&models.Notification{}).
		Where("id = ?", id).
		UpdateColumn("read", true).Error
}

func (r *Repository) MarkAllRead(ctx context.Context, actor visibility.Actor) (int64, error) {
	query, err := r.base.Mutable(ctx, actor, visibility.ResourceNotification, &models.Notification{})
	if err != nil {
		return 0, err
	}
	res := query.Where("notifications.read = ?", false).UpdateColumn("read", true)
	return res.RowsAffected, res.Error
}

// DeleteArchivedBefore removes archived notifications older than cutoff.
func (r *Repository) DeleteArchivedBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	res := r.base.WithTx(tx).DB(ctx).
		Where("type = ? AND notified_at < ?", enums.NotificationTypeArchived, cutoff).
		Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
