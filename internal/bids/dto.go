package bids

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

type Bid struct {
	ID          uuid.UUID       `json:"id"`
	UsedItemID  uuid.UUID       `json:"used_item_id"`
	UserID      uuid.UUID       `json:"user_id"`
	Amount      string          `json:"amount"`
	Status      enums.BidStatus `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

func FromModel(b models.Bid) Bid {
	return Bid{
		ID:          b.ID,
		UsedItemID:  b.UsedItemID,
		UserID:      b.UserID,
		Amount:      b.Amount.StringFixed(2),
		Status:      b.Status,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		CompletedAt: b.CompletedAt,
	}
}

type CreateInput struct {
	UserID     *uuid.UUID      `json:"user_id"`
	UsedItemID uuid.UUID       `json:"used_item_id" validate:"required"`
	Amount     decimal.Decimal `json:"amount"`
}

type UpdateInput struct {
	Amount decimal.Decimal `json:"amount"`
}

type ListParams struct {
	Limit      int
	Cursor     string
	UsedItemID *uuid.UUID
}
