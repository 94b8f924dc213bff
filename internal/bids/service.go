package bids

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/internal/items"
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

// Service places and resolves bids on used item listings.
type Service interface {
	Create(ctx context.Context, actor visibility.Actor, input CreateInput) (*Bid, error)
	Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Bid, error)
	List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[Bid], error)
	ListForListing(ctx context.Context, actor visibility.Actor, usedItemID uuid.UUID, params ListParams) (pagination.Page[Bid], error)
	Update(ctx context.Context, actor visibility.Actor, id uuid.UUID, input UpdateInput) (*Bid, error)
	Complete(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Bid, error)
	Delete(ctx context.Context, actor visibility.Actor, id uuid.UUID) error
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

var errBidClosed = pkgerrors.New(pkgerrors.CodeStateConflict, "bid is already completed")

var errBidNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "bid not found")

func NewService(repo *Repository, tx txRunner, outbox outboxPublisher, notifier notifier, m *metrics.DomainMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "bids repository required")
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

func (s *service) Create(ctx context.Context, actor visibility.Actor, input CreateInput) (*Bid, error) {
	if _, err := visibility.MutableScope(actor, visibility.ResourceBid); err != nil {
		return nil, err
	}
	bidder, err := visibility.OwnerFor(actor, input.UserID)
	if err != nil {
		return nil, err
	}
	if input.UsedItemID == uuid.Nil {
		return nil, pkgerrors.Field("used_item_id", "used_item_id is required")
	}
	if err := items.ValidatePrice("amount", input.Amount); err != nil {
		return nil, err
	}

	row := models.Bid{
		UsedItemID: input.UsedItemID,
		UserID:     bidder,
		Amount:     input.Amount,
		Status:     enums.BidStatusBidding,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		listing, err := s.repo.UsedItem(ctx, tx, input.UsedItemID)
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return pkgerrors.Field("used_item_id", "used item does not exist")
		}
		if err != nil {
			return err
		}
		if listing.UserID == bidder {
			return pkgerrors.Field("used_item_id", "cannot bid on your own listing")
		}
		closed, err := s.repo.ListingClosed(ctx, tx, listing.ID)
		if err != nil {
			return err
		}
		if closed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "listing already has a completed bid")
		}
		if err := s.repo.Create(ctx, tx, &row); err != nil {
			return err
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBidPlaced,
			AggregateType: enums.AggregateBid,
			AggregateID:   row.ID,
			Actor:         &outbox.ActorRef{UserID: actor.ID, Role: actor.Role},
			Data: outbox.BidPlacedEvent{
				BidID:      row.ID,
				UsedItemID: row.UsedItemID,
				BidderID:   bidder,
				Amount:     row.Amount,
			},
		})
	})
	if err != nil {
		return nil, repoErr(err, "create bid")
	}
	s.metrics.Bid("placed")
	out := FromModel(row)
	return &out, nil
}

func (s *service) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Bid, error) {
	row, err := s.repo.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	out := FromModel(*row)
	return &out, nil
}

func (s *service) List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[Bid], error) {
	return s.list(ctx, listQuery{Actor: actor, Limit: params.Limit, UsedItemID: params.UsedItemID}, params.Cursor)
}

// ListForListing shows the seller every bid on one of their listings.
func (s *service) ListForListing(ctx context.Context, actor visibility.Actor, usedItemID uuid.UUID, params ListParams) (pagination.Page[Bid], error) {
	if err := s.authorizeSeller(ctx, actor, usedItemID); err != nil {
		return pagination.Page[Bid]{}, err
	}
	return s.list(ctx, listQuery{Actor: actor, Limit: params.Limit, UsedItemID: &usedItemID, Unscoped: true}, params.Cursor)
}

func (s *service) list(ctx context.Context, query listQuery, rawCursor string) (pagination.Page[Bid], error) {
	cursor, err := pagination.ParseCursor(rawCursor)
	if err != nil {
		return pagination.Page[Bid]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query.Cursor = cursor
	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return pagination.Page[Bid]{}, repoErr(err, "list bids")
	}
	out := pagination.Page[Bid]{Items: make([]Bid, 0, len(rows.Items)), Cursor: rows.Cursor}
	for _, row := range rows.Items {
		out.Items = append(out.Items, FromModel(row))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, actor visibility.Actor, id uuid.UUID, input UpdateInput) (*Bid, error) {
	row, err := s.repo.GetForWrite(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if row.Status != enums.BidStatusBidding {
		return nil, errBidClosed
	}
	if err := items.ValidatePrice("amount", input.Amount); err != nil {
		return nil, err
	}
	changed, err := s.repo.UpdateAmount(ctx, row.ID, input.Amount)
	if err != nil {
		return nil, repoErr(err, "update bid")
	}
	if !changed {
		return nil, errBidClosed
	}
	return s.reload(ctx, row.ID)
}

// Complete accepts a bid. Only the seller of the listing or an admin may do
// it, and each listing closes on its first completed bid.
func (s *service) Complete(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Bid, error) {
	if !actor.Authenticated() {
		return nil, visibility.ErrAuthenticationMissing
	}
	row, err := s.repo.Reload(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	listing, err := s.repo.UsedItem(ctx, nil, row.UsedItemID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && listing.UserID != actor.ID {
		return nil, s.denyComplete(ctx, actor, id)
	}
	if row.Status != enums.BidStatusBidding {
		return nil, errBidClosed
	}

	completedAt := s.now().UTC()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		changed, err := s.repo.Complete(ctx, tx, *row, completedAt)
		if err != nil {
			return err
		}
		if !changed {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "bid is no longer open")
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBidCompleted,
			AggregateType: enums.AggregateBid,
			AggregateID:   row.ID,
			Actor:         &outbox.ActorRef{UserID: actor.ID, Role: actor.Role},
			Data: outbox.BidCompletedEvent{
				BidID:       row.ID,
				UsedItemID:  row.UsedItemID,
				BidderID:    row.UserID,
				SellerID:    listing.UserID,
				Amount:      row.Amount,
				CompletedAt: completedAt,
			},
		}); err != nil {
			return err
		}
		return s.notifier.Notify(ctx, tx, row.UserID, enums.NotificationTypeProduct,
			fmt.Sprintf("Your bid of %s on %s was accepted.", row.Amount.StringFixed(2), listing.Name))
	})
	if err != nil {
		return nil, repoErr(err, "complete bid")
	}
	s.metrics.Bid("completed")
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"bid_id":       row.ID.String(),
			"used_item_id": row.UsedItemID.String(),
			"bidder_id":    row.UserID.String(),
		}), "bid completed")
	}
	return s.reload(ctx, row.ID)
}

func (s *service) Delete(ctx context.Context, actor visibility.Actor, id uuid.UUID) error {
	row, err := s.repo.GetForWrite(ctx, actor, id)
	if err != nil {
		return err
	}
	if row.Status != enums.BidStatusBidding {
		return errBidClosed
	}
	deleted, err := s.repo.DeleteBidding(ctx, row.ID)
	if err != nil {
		return repoErr(err, "delete bid")
	}
	if !deleted {
		return errBidClosed
	}
	s.metrics.Bid("withdrawn")
	return nil
}

func (s *service) authorizeSeller(ctx context.Context, actor visibility.Actor, usedItemID uuid.UUID) error {
	if !actor.Authenticated() {
		return visibility.ErrAuthenticationMissing
	}
	listing, err := s.repo.UsedItem(ctx, nil, usedItemID)
	if err != nil {
		return err
	}
	if actor.IsAdmin() || listing.UserID == actor.ID {
		return nil
	}
	return pkgerrors.Denied(pkgerrors.DenialDetails{
		Role:     actor.Role.String(),
		Resource: string(visibility.ResourceBid),
		Action:   string(visibility.ActionRead),
		Reason:   "only the seller of the listing may see all of its bids",
	})
}

// denyComplete answers a caller who is not the seller. Bids the caller cannot
// see are reported missing so their ids do not leak.
func (s *service) denyComplete(ctx context.Context, actor visibility.Actor, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, actor, id); err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) || pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
			return errBidNotFound
		}
		return err
	}
	return pkgerrors.Denied(pkgerrors.DenialDetails{
		Role:     actor.Role.String(),
		Resource: string(visibility.ResourceBid),
		Action:   "complete",
		Reason:   "only the seller of the listing may complete a bid",
	})
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*Bid, error) {
	row, err := s.repo.Reload(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	out := FromModel(*row)
	return &out, nil
}

func repoErr(err error, msg string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
