package useditems

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

type UsedItem struct {
	ID             uuid.UUID          `json:"id"`
	UserID         uuid.UUID          `json:"user_id"`
	Name           string             `json:"name"`
	Description    string             `json:"description"`
	Price          decimal.Decimal    `json:"price"`
	Category       enums.ItemCategory `json:"category"`
	WarrantyPeriod int                `json:"warranty_period"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func FromModel(m models.UsedItem) UsedItem {
	return UsedItem{
		ID:             m.ID,
		UserID:         m.UserID,
		Name:           m.Name,
		Description:    m.Description,
		Price:          m.Price,
		Category:       m.Category,
		WarrantyPeriod: m.WarrantyPeriod,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

type CreateInput struct {
	UserID         *uuid.UUID      `json:"user_id"`
	Name           string          `json:"name" validate:"required,max=255"`
	Description    string          `json:"description"`
	Price          decimal.Decimal `json:"price"`
	Category       string          `json:"category" validate:"required"`
	WarrantyPeriod int             `json:"warranty_period" validate:"min=0"`
}

type UpdateInput struct {
	Name           *string          `json:"name" validate:"omitempty,max=255"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price"`
	Category       *string          `json:"category"`
	WarrantyPeriod *int             `json:"warranty_period" validate:"omitempty,min=0"`
}

type ListParams struct {
	Limit    int
	Cursor   string
	Name     string
	Category string
}
