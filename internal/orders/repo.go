package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/internal/repo"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
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
	Status   string
	Name     string
	MinTotal *decimal.Decimal
	MaxTotal *decimal.Decimal
}

type lineQuery struct {
	Actor  visibility.Actor
	Limit  int
	Cursor *pagination.Cursor
	Status string
}

// cartLine is one cart row joined with the current item price and discount.
type cartLine struct {
	CartID       uuid.UUID
	ItemID       uuid.UUID
	ItemQuantity int
	Price        decimal.Decimal
	DiscountID   *uuid.UUID
	Percentage   decimal.NullDecimal
	Code         *string
}

func (r *Repository) Create(ctx context.Context, tx *gorm.DB, order *models.Order, lines []models.OrderItem) error {
	db := r.base.WithTx(tx).DB(ctx)
	if err := db.Omit("Items").Create(order).Error; err != nil {
		return repo.WriteError(err, "order")
	}
	for i := range lines {
		lines[i].OrderID = order.ID
	}
	if len(lines) > 0 {
		if err := db.Create(&lines).Error; err != nil {
			return repo.WriteError(err, "order item")
		}
	}
	order.Items = lines
	return nil
}

func (r *Repository) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.Order, error) {
	query, err := r.base.Visible(ctx, actor, visibility.ResourceOrder, &models.Order{})
	if err != nil {
		return nil, err
	}
	var row models.Order
	if err := query.Preload("Items", orderLines).Where("orders.id = ?", id).Take(&row).Error; err != nil {
		return nil, repo.NotFoundOr(err, "order not found")
	}
	return &row, nil
}

func (r *Repository) GetForWrite(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.Order, error) {
	var row models.Order
	if err := r.base.FindMutable(ctx, actor, visibility.ResourceOrder, "orders", id, &row); err != nil {
		return nil, err
	}
	return &row, nil
}

// Reload reads an order and its lines without a role scope.
func (r *Repository) Reload(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Order, error) {
	var row models.Order
	err := r.base.WithTx(tx).DB(ctx).Preload("Items", orderLines).Where("id = ?", id).Take(&row).Error
	if err != nil {
		return nil, repo.NotFoundOr(err, "order not found")
	}
	return &row, nil
}

func (r *Repository) List(ctx context.Context, q listQuery) (pagination.Page[models.Order], error) {
	query, err := r.base.Visible(ctx, q.Actor, visibility.ResourceOrder, &models.Order{})
	if err != nil {
		return pagination.Page[models.Order]{}, err
	}
	if q.Window != nil {
		query = query.Scopes(q.Window.Scope("orders.created_at"))
	}
	if q.Status != "" {
		query = query.Scopes(filters.EqualFold("orders.status", q.Status))
	}
	if q.Name != "" {
		query = query.Where(`orders.id IN (SELECT oi.order_id FROM order_items oi
			JOIN items i ON i.id = oi.item_id WHERE `+filters.ContainsClause("i.name")+`)`, filters.ContainsPattern(q.Name))
	}
	if q.MinTotal != nil {
		query = query.Scopes(MinTotalScope(*q.MinTotal))
	}
	if q.MaxTotal != nil {
		query = query.Scopes(MaxTotalScope(*q.MaxTotal))
	}
	var rows []models.Order
	if err := query.Preload("Items", orderLines).
		Scopes(pagination.Scope("orders", "created_at", q.Cursor, q.Limit)).
		Find(&rows).Error; err != nil {
		return pagination.Page[models.Order]{}, err
	}
	return pagination.Trim(rows, q.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	}), nil
}

// ListLines lists order items, optionally narrowed to orders in one status.
func (r *Repository) ListLines(ctx context.Context, q lineQuery) (pagination.Page[models.OrderItem], error) {
	query, err := r.base.Visible(ctx, q.Actor, visibility.ResourceOrderItem, &models.OrderItem{})
	if err != nil {
		return pagination.Page[models.OrderItem]{}, err
	}
	if q.Status != "" {
		query = query.Where("order_items.order_id IN (SELECT o.id FROM orders o WHERE LOWER(o.status) = ?)", q.Status)
	}
	var rows []models.OrderItem
	if err := query.Scopes(pagination.Scope("order_items", "created_at", q.Cursor, q.Limit)).Find(&rows).Error; err != nil {
		return pagination.Page[models.OrderItem]{}, err
	}
	return pagination.Trim(rows, q.Limit, func(l models.OrderItem) pagination.Cursor {
		return pagination.Cursor{CreatedAt: l.CreatedAt, ID: l.ID}
	}), nil
}

// TransitionStatus moves an order from one status to another. It reports
// false when the order was no longer in from.
func (r *Repository) TransitionStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, from, to enums.OrderStatus) (bool, error) {
	res := r.base.WithTx(tx).DB(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected == 1, res.Error
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return repo.WriteError(r.base.DB(ctx).Delete(&models.Order{}, "id = ?", id).Error, "order")
}

// ItemsByID loads the catalog rows referenced by an order request.
func (r *Repository) ItemsByID(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.Item, error) {
	var rows []models.Item
	if err := r.base.WithTx(tx).DB(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]models.Item, len(rows))
	for _, row := range rows {
		out[row.ID] = row
	}
	return out, nil
}

// CartLines returns the user's cart in the order it was filled.
func (r *Repository) CartLines(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]cartLine, error) {
	var rows []cartLine
	err := r.base.WithTx(tx).DB(ctx).Table("carts").
		Select(`carts.id AS cart_id, carts.item_id, carts.item_quantity, items.price,
			carts.discount_id, discounts.percentage, discounts.code`).
		Joins("JOIN items ON items.id = carts.item_id").
		Joins("LEFT JOIN discounts ON discounts.id = carts.discount_id").
		Where("carts.user_id = ?", userID).
		Order("carts.added_at ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) DeleteCartRows(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.base.WithTx(tx).DB(ctx).Where("id IN ?", ids).Delete(&models.Cart{}).Error
}

func (r *Repository) HasRole(ctx context.Context, id uuid.UUID, role enums.Role) (bool, error) {
	return r.base.HasRole(ctx, id, role)
}

func orderLines(db *gorm.DB) *gorm.DB {
	return db.Order("order_items.created_at ASC").Order("order_items.id ASC")
}
