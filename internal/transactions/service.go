package transactions

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/metrics"
	"github.com/angelmondragon/marketplace-backend/pkg/outbox"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type notifier interface {
	Notify(ctx context.Context, tx *gorm.DB, userID uuid.UUID, kind enums.NotificationType, text string) error
}

// Service records payment transactions against orders and settles them
// from the buyer's wallet.
type Service interface {
	Create(ctx context.Context, actor visibility.Actor, input CreateInput) (*Transaction, error)
	Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Transaction, error)
	List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[Transaction], error)
	Complete(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Transaction, error)
	Fail(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Transaction, error)
}

type service struct {
	repo     *Repository
	tx       txRunner
	outbox   outboxPublisher
	notifier notifier
	metrics  *metrics.DomainMetrics
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(repo *Repository, tx txRunner, outbox outboxPublisher, notifier notifier, m *metrics.DomainMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transactions repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox publisher required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifier required")
	}
	return &service{repo: repo, tx: tx, outbox: outbox, notifier: notifier, metrics: m, logg: logg, now: time.Now}, nil
}

// Create opens a pending transaction for an order the actor may pay for. An
// order carries at most one pending or completed transaction at a time.
func (s *service) Create(ctx context.Context, actor visibility.Actor, input CreateInput) (*Transaction, error) {
	if _, err := visibility.MutableScope(actor, visibility.ResourceTransaction); err != nil {
		return nil, err
	}
	hash := strings.TrimSpace(input.TransactionHash)
	if hash == "" {
		return nil, pkgerrors.Field("transaction_hash", "transaction_hash is required")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.Field("order_id", "order_id is required")
	}
	order, err := s.repo.OrderForWrite(ctx, actor, input.OrderID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return nil, pkgerrors.Field("order_id", "order does not exist")
		}
		return nil, err
	}
	if order.Status == enums.OrderStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot pay for a cancelled order")
	}
	live, err := s.repo.LiveForOrder(ctx, order.ID)
	if err != nil {
		return nil, repoErr(err, "check order transactions")
	}
	if live != nil {
		if live.Status == enums.TransactionStatusCompleted {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has already been paid")
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already has an open transaction")
	}
	row := models.Transaction{
		TransactionHash: hash,
		Status:          enums.TransactionStatusPending,
		OrderID:         order.ID,
		UserID:          order.UserID,
	}
	if err := s.repo.Create(ctx, &row); err != nil {
		return nil, err
	}
	out := FromModel(row)
	return &out, nil
}

func (s *service) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Transaction, error) {
	row, err := s.repo.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	out := FromModel(*row)
	return &out, nil
}

func (s *service) List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[Transaction], error) {
	query := listQuery{Actor: actor, Limit: params.Limit, OrderID: params.OrderID}
	if raw := strings.TrimSpace(params.Status); raw != "" {
		status := enums.TransactionStatus(strings.ToLower(raw))
		if !status.IsValid() {
			return pagination.Page[Transaction]{}, pkgerrors.Field("status", "status must be one of pending, failed, completed")
		}
		query.Status = status
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[Transaction]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query.Cursor = cursor

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return pagination.Page[Transaction]{}, repoErr(err, "list transactions")
	}
	out := pagination.Page[Transaction]{Items: make([]Transaction, 0, len(rows.Items)), Cursor: rows.Cursor}
	for _, row := range rows.Items {
		out.Items = append(out.Items, FromModel(row))
	}
	return out, nil
}

func repoErr(err error, msg string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
