package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/internal/discounts"
	"github.com/angelmondragon/marketplace-backend/internal/inventory"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/filters"
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

// Service defines order placement, reads and status transitions.
type Service interface {
	Create(ctx context.Context, actor visibility.Actor, input CreateInput) (*Order, error)
	Checkout(ctx context.Context, actor visibility.Actor) (*Order, error)
	Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Order, error)
	List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[Order], error)
	ListLines(ctx context.Context, actor visibility.Actor, params LineListParams) (pagination.Page[Line], error)
	UpdateStatus(ctx context.Context, actor visibility.Actor, id uuid.UUID, status string) (*Order, error)
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

// transitionRoles lists who may move an order into each status. The legal
// edges themselves come from enums.OrderStatus.CanTransitionTo.
var transitionRoles = map[enums.OrderStatus][]enums.Role{
	enums.OrderStatusShipped:   {enums.RoleAdmin, enums.RoleDelivery},
	enums.OrderStatusDelivered: {enums.RoleAdmin, enums.RoleDelivery},
	enums.OrderStatusCancelled: {enums.RoleAdmin, enums.RoleCustomer},
}

var hundred = decimal.NewFromInt(100)

// NewService builds the order service with the required dependencies.
func NewService(repo *Repository, tx txRunner, outbox outboxPublisher, notifier notifier, m *metrics.DomainMetrics, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "orders repository required")
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
	return &service{
		repo:     repo,
		tx:       tx,
		outbox:   outbox,
		notifier: notifier,
		metrics:  m,
		logg:     logg,
		now:      time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, actor visibility.Actor, input CreateInput) (*Order, error) {
	if err := s.canPlace(actor); err != nil {
		return nil, err
	}
	buyer, err := visibility.OwnerFor(actor, input.UserID)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		ok, err := s.repo.HasRole(ctx, buyer, enums.RoleCustomer)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check customer")
		}
		if !ok {
			return nil, pkgerrors.Field("user_id", "user_id must reference a customer")
		}
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.Field("items", "an order needs at least one item")
	}
	ids := make([]uuid.UUID, 0, len(input.Lines))
	for i, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, pkgerrors.Field(fmt.Sprintf("items[%d].quantity", i), "quantity must be greater than zero")
		}
		ids = append(ids, line.ItemID)
	}

	var orderID uuid.UUID
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		catalog, err := s.repo.ItemsByID(ctx, tx, ids)
		if err != nil {
			return err
		}
		lines := make([]models.OrderItem, 0, len(input.Lines))
		for i, in := range input.Lines {
			item, ok := catalog[in.ItemID]
			if !ok {
				return pkgerrors.Field(fmt.Sprintf("items[%d].item_id", i), "item does not exist")
			}
			if err := inventory.Decrement(tx, item.ID, in.Quantity); err != nil {
				return err
			}
			lines = append(lines, models.OrderItem{
				ItemID:          item.ID,
				Quantity:        in.Quantity,
				PriceAtPurchase: item.Price.Round(TotalPlaces),
			})
		}
		order, err := s.place(ctx, tx, actor, buyer, lines)
		if err != nil {
			return err
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, repoErr(err, "create order")
	}
	return s.reload(ctx, orderID)
}

// Checkout turns the actor's cart into an order. Prices are snapped with the
// discount applied, each discount is redeemed once per cart row, stock is
// taken, and the cart is emptied, all in one transaction.
func (s *service) Checkout(ctx context.Context, actor visibility.Actor) (*Order, error) {
	if err := s.canPlace(actor); err != nil {
		return nil, err
	}
	if _, err := visibility.MutableScope(actor, visibility.ResourceCart); err != nil {
		return nil, err
	}
	now := s.now()
	var (
		orderID  uuid.UUID
		redeemed int
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cart, err := s.repo.CartLines(ctx, tx, actor.ID)
		if err != nil {
			return err
		}
		if len(cart) == 0 {
			return pkgerrors.Field("cart", "cart is empty")
		}
		lines := make([]models.OrderItem, 0, len(cart))
		cartIDs := make([]uuid.UUID, 0, len(cart))
		var applied []outbox.DiscountRedeemedEvent
		for _, row := range cart {
			price := row.Price
			if row.DiscountID != nil && row.Percentage.Valid {
				if err := discounts.Redeem(tx, *row.DiscountID, now); err != nil {
					return err
				}
				price = ApplyDiscount(price, row.Percentage.Decimal)
				code := ""
				if row.Code != nil {
					code = *row.Code
				}
				applied = append(applied, outbox.DiscountRedeemedEvent{DiscountID: *row.DiscountID, Code: code})
			}
			if err := inventory.Decrement(tx, row.ItemID, row.ItemQuantity); err != nil {
				return err
			}
			lines = append(lines, models.OrderItem{
				ItemID:          row.ItemID,
				Quantity:        row.ItemQuantity,
				PriceAtPurchase: price.Round(TotalPlaces),
				DiscountID:      row.DiscountID,
			})
			cartIDs = append(cartIDs, row.CartID)
		}
		order, err := s.place(ctx, tx, actor, actor.ID, lines)
		if err != nil {
			return err
		}
		for _, event := range applied {
			event.OrderID = order.ID
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventDiscountRedeemed,
				AggregateType: enums.AggregateDiscount,
				AggregateID:   event.DiscountID,
				Actor:         actorRef(actor),
				Data:          event,
			}); err != nil {
				return err
			}
		}
		if err := s.repo.DeleteCartRows(ctx, tx, cartIDs); err != nil {
			return err
		}
		orderID = order.ID
		redeemed = len(applied)
		return nil
	})
	if err != nil {
		return nil, repoErr(err, "checkout")
	}
	for i := 0; i < redeemed; i++ {
		s.metrics.Redemption()
	}
	return s.reload(ctx, orderID)
}

// place inserts a pending order with its lines and records order_placed.
func (s *service) place(ctx context.Context, tx *gorm.DB, actor visibility.Actor, buyer uuid.UUID, lines []models.OrderItem) (*models.Order, error) {
	order := models.Order{UserID: buyer, Status: enums.OrderStatusPending}
	if err := s.repo.Create(ctx, tx, &order, lines); err != nil {
		return nil, err
	}
	placed := outbox.OrderPlacedEvent{
		OrderID: order.ID,
		UserID:  buyer,
		Total:   Total(order.Items),
		Lines:   make([]outbox.OrderPlacedLine, 0, len(order.Items)),
	}
	for _, line := range order.Items {
		placed.Lines = append(placed.Lines, outbox.OrderPlacedLine{
			ItemID:          line.ItemID,
			Quantity:        line.Quantity,
			PriceAtPurchase: line.PriceAtPurchase,
			DiscountID:      line.DiscountID,
		})
	}
	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventOrderPlaced,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actorRef(actor),
		Data:          placed,
	}); err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"order_id": order.ID.String(),
			"user_id":  buyer.String(),
			"total":    FormatTotal(placed.Total),
		}), "order placed")
	}
	return &order, nil
}

func (s *service) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Order, error) {
	row, err := s.repo.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	out := FromModel(*row)
	return &out, nil
}

func (s *service) List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[Order], error) {
	query := listQuery{
		Actor:    actor,
		Limit:    params.Limit,
		Name:     strings.TrimSpace(params.Name),
		MinTotal: params.MinTotal,
		MaxTotal: params.MaxTotal,
	}
	if raw := strings.TrimSpace(params.Date); raw != "" {
		tag, err := filters.ParseDateRange(raw)
		if err != nil {
			return pagination.Page[Order]{}, err
		}
		window, err := tag.Resolve(s.now())
		if err != nil {
			return pagination.Page[Order]{}, err
		}
		query.Window = &window
	}
	if raw := strings.TrimSpace(params.Status); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return pagination.Page[Order]{}, pkgerrors.Field("status", "status must be one of pending, shipped, delivered, cancelled")
		}
		query.Status = string(status)
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[Order]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query.Cursor = cursor

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return pagination.Page[Order]{}, repoErr(err, "list orders")
	}
	out := pagination.Page[Order]{Items: make([]Order, 0, len(rows.Items)), Cursor: rows.Cursor}
	for _, row := range rows.Items {
		out.Items = append(out.Items, FromModel(row))
	}
	return out, nil
}

func (s *service) ListLines(ctx context.Context, actor visibility.Actor, params LineListParams) (pagination.Page[Line], error) {
	query := lineQuery{Actor: actor, Limit: params.Limit}
	if raw := strings.TrimSpace(params.Status); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return pagination.Page[Line]{}, pkgerrors.Field("status", "status must be one of pending, shipped, delivered, cancelled")
		}
		query.Status = string(status)
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[Line]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query.Cursor = cursor

	rows, err := s.repo.ListLines(ctx, query)
	if err != nil {
		return pagination.Page[Line]{}, repoErr(err, "list order items")
	}
	out := pagination.Page[Line]{Items: make([]Line, 0, len(rows.Items)), Cursor: rows.Cursor}
	for _, row := range rows.Items {
		out.Items = append(out.Items, LineFromModel(row))
	}
	return out, nil
}

func (s *service) UpdateStatus(ctx context.Context, actor visibility.Actor, id uuid.UUID, raw string) (*Order, error) {
	next, err := enums.ParseOrderStatus(raw)
	if err != nil {
		return nil, pkgerrors.Field("status", "status must be one of pending, shipped, delivered, cancelled")
	}
	row, err := s.repo.GetForWrite(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !row.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot move from "+row.Status.String()+" to "+next.String())
	}
	if !roleMay(actor.Role, next) || (actor.Role == enums.RoleCustomer && row.Status != enums.OrderStatusPending) {
		return nil, pkgerrors.Denied(pkgerrors.DenialDetails{
			Role:     actor.Role.String(),
			Resource: string(visibility.ResourceOrder),
			Action:   string(visibility.ActionWrite),
			Reason:   "role " + actor.Role.String() + " may not move an order from " + row.Status.String() + " to " + next.String(),
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		moved, err := s.repo.TransitionStatus(ctx, tx, row.ID, row.Status, next)
		if err != nil {
			return err
		}
		if !moved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   row.ID,
			Actor:         actorRef(actor),
			Data:          outbox.OrderStatusChangedEvent{OrderID: row.ID, From: row.Status, To: next},
		}); err != nil {
			return err
		}
		return s.notifier.Notify(ctx, tx, row.UserID, enums.NotificationTypeSystem,
			fmt.Sprintf("Your order %s is now %s.", row.ID, next))
	})
	if err != nil {
		return nil, repoErr(err, "update order status")
	}
	s.metrics.OrderStatus(next.String())
	return s.reload(ctx, row.ID)
}

// Delete removes an order and, by cascade, its lines and transactions. Admin only.
func (s *service) Delete(ctx context.Context, actor visibility.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		if _, err := visibility.VisibleScope(actor, visibility.ResourceOrder); err != nil {
			return err
		}
		return pkgerrors.Denied(pkgerrors.DenialDetails{
			Role:     actor.Role.String(),
			Resource: string(visibility.ResourceOrder),
			Action:   "delete",
			Reason:   "only admins may delete orders",
		})
	}
	row, err := s.repo.GetForWrite(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, row.ID)
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*Order, error) {
	row, err := s.repo.Reload(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	out := FromModel(*row)
	return &out, nil
}

func (s *service) canPlace(actor visibility.Actor) error {
	if !actor.Authenticated() {
		return visibility.ErrAuthenticationMissing
	}
	if actor.Role == enums.RoleCustomer || actor.Role == enums.RoleAdmin {
		return nil
	}
	return pkgerrors.Denied(pkgerrors.DenialDetails{
		Role:     actor.Role.String(),
		Resource: string(visibility.ResourceOrder),
		Action:   "create",
		Reason:   "only customers place orders",
	})
}

// ApplyDiscount takes percentage off price.
func ApplyDiscount(price, percentage decimal.Decimal) decimal.Decimal {
	return price.Mul(hundred.Sub(percentage)).Div(hundred)
}

func roleMay(role enums.Role, next enums.OrderStatus) bool {
	for _, allowed := range transitionRoles[next] {
		if allowed == role {
			return true
		}
	}
	return false
}

func actorRef(actor visibility.Actor) *outbox.ActorRef {
	return &outbox.ActorRef{UserID: actor.ID, Role: actor.Role}
}

func repoErr(err error, msg string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
