package notifications

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

// Service defines notification list/read operations.
type Service interface {
	List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[models.Notification], error)
	MarkRead(ctx context.Context, actor visibility.Actor, notificationID uuid.UUID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, actor visibility.Actor) (int64, error)
	Notify(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind enums.NotificationType, text string) error
}

type service struct {
	repo *Repository
}

// ListParams configures filters and pagination for notifications.
type ListParams struct {
	Limit  int
	Cursor string
	Type   string
	Read   *bool
}

// NewService wires notifications dependencies.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[models.Notification], error) {
	query := listQuery{Actor: actor, Limit: params.Limit, Read: params.Read}
	if t := strings.TrimSpace(params.Type); t != "" {
		kind, err := enums.ParseNotificationType(t)
		if err != nil {
			return pagination.Page[models.Notification]{}, pkgerrors.Field("type", "type must be one of system, general, product, archived")
		}
		query.Type = string(kind)
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[models.Notification]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query.Cursor = cursor

	page, err := s.repo.List(ctx, query)
	if err != nil {
		return page, mapErr(err, "list notifications")
	}
	return page, nil
}

func (s *service) MarkRead(ctx context.Context, actor visibility.Actor, notificationID uuid.UUID) (*models.Notification, error) {
	if notificationID == uuid.Nil {
		return nil, pkgerrors.Field("id", "notification id required")
	}
	row, err := s.repo.Get(ctx, actor, notificationID)
	if err != nil {
		return nil, err
	}
	if row.Read {
		return row, nil
	}
	if err := s.repo.MarkRead(ctx, row.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark notification read")
	}
	row.Read = true
	return row, nil
}

func (s *service) MarkAllRead(ctx context.Context, actor visibility.Actor) (int64, error) {
	count, err := s.repo.MarkAllRead(ctx, actor)
	if err != nil {
		return 0, mapErr(err, "mark notifications read")
	}
	return count, nil
}

// Notify records a notification inside the caller's transaction.
func (s *service) Notify(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind enums.NotificationType, text string) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "notification recipient required")
	}
	if !kind.IsValid() {
		kind = enums.NotificationTypeGeneral
	}
	return s.repo.Create(ctx, tx, &models.Notification{UserID: userID, Type: kind, Text: text})
}

func mapErr(err error, msg string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
