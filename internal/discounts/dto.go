package discounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// Discount is the API view of a discount with its derived status.
type Discount struct {
	ID             uuid.UUID            `json:"id"`
	VendorID       uuid.UUID            `json:"vendor_id"`
	Code           string               `json:"code"`
	Name           string               `json:"name"`
	Percentage     decimal.Decimal      `json:"percentage"`
	ExpiresAt      string               `json:"expires_at"`
	Redemptions    int                  `json:"redemptions"`
	MaxRedemptions *int                 `json:"max_redemptions"`
	Status         enums.DiscountStatus `json:"status"`
	AddedAt        time.Time            `json:"added_at"`
}

func FromModel(d models.Discount, now time.Time) Discount {
	return Discount{
		ID:             d.ID,
		VendorID:       d.VendorID,
		Code:           d.Code,
		Name:           d.Name,
		Percentage:     d.Percentage,
		ExpiresAt:      d.ExpiresAt.UTC().Format(dateLayout),
		Redemptions:    d.Redemptions,
		MaxRedemptions: d.MaxRedemptions,
		Status:         StatusOf(d, now),
		AddedAt:        d.AddedAt,
	}
}

type CreateInput struct {
	VendorID       *uuid.UUID      `json:"vendor_id"`
	Code           string          `json:"code" validate:"required,max=64"`
	Name           string          `json:"name" validate:"required,max=255"`
	Percentage     decimal.Decimal `json:"percentage"`
	ExpiresAt      string          `json:"expires_at" validate:"required"`
	MaxRedemptions *int            `json:"max_redemptions" validate:"omitempty,min=1"`
}

type UpdateInput struct {
	Name           *string          `json:"name" validate:"omitempty,max=255"`
	Percentage     *decimal.Decimal `json:"percentage"`
	ExpiresAt      *string          `json:"expires_at"`
	MaxRedemptions *int             `json:"max_redemptions" validate:"omitempty,min=1"`
}

// ListParams are the list filters. Nil pointers are ignored.
type ListParams struct {
	Limit          int
	Cursor         string
	Status         string
	Search         string
	MinPercentage  *decimal.Decimal
	MaxPercentage  *decimal.Decimal
	Redemptions    *int
	MaxRedemptions *int
}
