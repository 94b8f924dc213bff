package items

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// Item is the catalog view, flattened with its stock.
type Item struct {
	ID           uuid.UUID          `json:"id"`
	VendorID     uuid.UUID          `json:"vendor_id"`
	Name         string             `json:"name"`
	Description  string             `json:"description"`
	Price        decimal.Decimal    `json:"price"`
	Category     enums.ItemCategory `json:"category"`
	ItemQuantity int                `json:"item_quantity"`
	InStock      bool               `json:"in_stock"`
	Location     string             `json:"location"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func FromModel(m models.Item) Item {
	out := Item{
		ID:          m.ID,
		VendorID:    m.VendorID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Category:    m.Category,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.Inventory != nil {
		out.ItemQuantity = m.Inventory.ItemQuantity
		out.InStock = m.Inventory.InStock
		out.Location = m.Inventory.Location
	}
	return out
}

type CreateInput struct {
	VendorID    *uuid.UUID      `json:"vendor_id"`
	Name        string          `json:"name" validate:"required,max=255"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category" validate:"required"`
	Quantity    int             `json:"item_quantity" validate:"min=0"`
	Location    string          `json:"location" validate:"max=255"`
}

type UpdateInput struct {
	Name        *string          `json:"name" validate:"omitempty,max=255"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Category    *string          `json:"category"`
}

type ListParams struct {
	Limit    int
	Cursor   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	InStock  *bool
	Name     string
	Location string
	Category string
}
