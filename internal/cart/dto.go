package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
)

type Line struct {
	ID           uuid.UUID  `json:"id"`
	UserID       uuid.UUID  `json:"user_id"`
	ItemID       uuid.UUID  `json:"item_id"`
	ItemQuantity int        `json:"item_quantity"`
	DiscountID   *uuid.UUID `json:"discount_id,omitempty"`
	AddedAt      time.Time  `json:"added_at"`
}

func FromModel(c models.Cart) Line {
	return Line{
		ID:           c.ID,
		UserID:       c.UserID,
		ItemID:       c.ItemID,
		ItemQuantity: c.ItemQuantity,
		DiscountID:   c.DiscountID,
		AddedAt:      c.AddedAt,
	}
}

type AddInput struct {
	UserID       *uuid.UUID `json:"user_id"`
	ItemID       uuid.UUID  `json:"item_id" validate:"required"`
	Quantity     int        `json:"item_quantity" validate:"required,min=1"`
	DiscountCode string     `json:"discount_code" validate:"omitempty,max=64"`
}

type UpdateInput struct {
	Quantity int `json:"item_quantity" validate:"required,min=1"`
}

type ListParams struct {
	Limit    int
	Cursor   string
	Date     string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Name     string
}
