package cart

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/internal/discounts"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/filters"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages a user's cart lines ahead of checkout.
type Service interface {
	Add(ctx context.Context, actor visibility.Actor, input AddInput) (*Line, error)
	Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Line, error)
	List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[Line], error)
	Update(ctx context.Context, actor visibility.Actor, id uuid.UUID, input UpdateInput) (*Line, error)
	Remove(ctx context.Context, actor visibility.Actor, id uuid.UUID) error
}

type service struct {
	repo   *Repository
	tx     txRunner
	policy enums.CartDuplicatePolicy
	now    func() time.Time
}

// NewService builds the cart service. An empty policy means increment.
func NewService(repo *Repository, tx txRunner, policy enums.CartDuplicatePolicy) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if policy == "" {
		policy = enums.CartDuplicateIncrement
	}
	if !policy.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "unknown cart duplicate policy "+string(policy))
	}
	return &service{repo: repo, tx: tx, policy: policy, now: time.Now}, nil
}

// Add puts an item in the cart. With the increment policy a second add of the
// same item and discount grows the existing line; with the duplicate policy
// every add is its own line.
func (s *service) Add(ctx context.Context, actor visibility.Actor, input AddInput) (*Line, error) {
	if _, err := visibility.MutableScope(actor, visibility.ResourceCart); err != nil {
		return nil, err
	}
	owner, err := visibility.OwnerFor(actor, input.UserID)
	if err != nil {
		return nil, err
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.Field("item_quantity", "item_quantity must be greater than zero")
	}
	item, err := s.repo.Item(ctx, input.ItemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Field("item_id", "item does not exist")
	}
	if err != nil {
		return nil, repoErr(err, "load item")
	}
	discountID, err := s.resolveDiscount(ctx, item, input.DiscountCode)
	if err != nil {
		return nil, err
	}

	var lineID uuid.UUID
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if s.policy == enums.CartDuplicateIncrement {
			existing, err := s.repo.FindLine(ctx, tx, owner, item.ID, discountID)
			switch {
			case err == nil:
				grown, err := s.repo.Increment(ctx, tx, existing.ID, input.Quantity)
				if err != nil {
					return err
				}
				if grown {
					lineID = existing.ID
					return nil
				}
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}
		row := models.Cart{UserID: owner, ItemID: item.ID, ItemQuantity: input.Quantity, DiscountID: discountID}
		if err := s.repo.Create(ctx, tx, &row); err != nil {
			return err
		}
		lineID = row.ID
		return nil
	})
	if err != nil {
		return nil, repoErr(err, "add to cart")
	}
	return s.reload(ctx, lineID)
}

func (s *service) resolveDiscount(ctx context.Context, item *models.Item, raw string) (*uuid.UUID, error) {
	code := strings.TrimSpace(raw)
	if code == "" {
		return nil, nil
	}
	d, err := s.repo.DiscountByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Field("discount_code", "unknown discount code")
	}
	if err != nil {
		return nil, repoErr(err, "load discount")
	}
	if d.VendorID != item.VendorID {
		return nil, pkgerrors.Field("discount_code", "discount does not apply to this item")
	}
	if !discounts.IsActive(*d, s.now()) {
		return nil, pkgerrors.Field("discount_code", "discount is not active")
	}
	return &d.ID, nil
}

func (s *service) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Line, error) {
	row, err := s.repo.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	out := FromModel(*row)
	return &out, nil
}

func (s *service) List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[Line], error) {
	query := listQuery{
		Actor:    actor,
		Limit:    params.Limit,
		MinPrice: params.MinPrice,
		MaxPrice: params.MaxPrice,
		Name:     strings.TrimSpace(params.Name),
	}
	if raw := strings.TrimSpace(params.Date); raw != "" {
		tag, err := filters.ParseDateRange(raw)
		if err != nil {
			return pagination.Page[Line]{}, err
		}
		window, err := tag.Resolve(s.now())
		if err != nil {
			return pagination.Page[Line]{}, err
		}
		query.Window = &window
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[Line]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query.Cursor = cursor

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return pagination.Page[Line]{}, repoErr(err, "list cart")
	}
	out := pagination.Page[Line]{Items: make([]Line, 0, len(rows.Items)), Cursor: rows.Cursor}
	for _, row := range rows.Items {
		out.Items = append(out.Items, FromModel(row))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, actor visibility.Actor, id uuid.UUID, input UpdateInput) (*Line, error) {
	row, err := s.repo.GetForWrite(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.Field("item_quantity", "item_quantity must be greater than zero")
	}
	if err := s.repo.SetQuantity(ctx, row.ID, input.Quantity); err != nil {
		return nil, err
	}
	return s.reload(ctx, row.ID)
}

func (s *service) Remove(ctx context.Context, actor visibility.Actor, id uuid.UUID) error {
	row, err := s.repo.GetForWrite(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, row.ID)
}

func (s *service) reload(ctx context.Context, id uuid.UUID) (*Line, error) {
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
