package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// Order is the API view of an order. Total is derived from Items on every read.
type Order struct {
	ID        uuid.UUID         `json:"id"`
	UserID    uuid.UUID         `json:"user_id"`
	Status    enums.OrderStatus `json:"status"`
	Total     string            `json:"total"`
	Items     []Line            `json:"items"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type Line struct {
	ID              uuid.UUID  `json:"id"`
	OrderID         uuid.UUID  `json:"order_id"`
	ItemID          uuid.UUID  `json:"item_id"`
	Quantity        int        `json:"quantity"`
	PriceAtPurchase string     `json:"price_at_purchase"`
	DiscountID      *uuid.UUID `json:"discount_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func FromModel(o models.Order) Order {
	out := Order{
		ID:        o.ID,
		UserID:    o.UserID,
		Status:    o.Status,
		Total:     FormatTotal(Total(o.Items)),
		Items:     make([]Line, 0, len(o.Items)),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	for _, line := range o.Items {
		out.Items = append(out.Items, LineFromModel(line))
	}
	return out
}

func LineFromModel(l models.OrderItem) Line {
	return Line{
		ID:              l.ID,
		OrderID:         l.OrderID,
		ItemID:          l.ItemID,
		Quantity:        l.Quantity,
		PriceAtPurchase: l.PriceAtPurchase.StringFixed(TotalPlaces),
		DiscountID:      l.DiscountID,
		CreatedAt:       l.CreatedAt,
	}
}

type LineInput struct {
	ItemID   uuid.UUID `json:"item_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1"`
}

type CreateInput struct {
	UserID *uuid.UUID  `json:"user_id"`
	Lines  []LineInput `json:"items" validate:"required,min=1,dive"`
}

type StatusInput struct {
	Status string `json:"status" validate:"required"`
}

type ListParams struct {
	Limit    int
	Cursor   string
	Date     string
	Status   string
	Name     string
	MinTotal *decimal.Decimal
	MaxTotal *decimal.Decimal
}

type LineListParams struct {
	Limit  int
	Cursor string
	Status string
}
