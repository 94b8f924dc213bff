package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
)

type Inventory struct {
	ID            uuid.UUID  `json:"id"`
	ItemID        uuid.UUID  `json:"item_id"`
	ItemQuantity  int        `json:"item_quantity"`
	InStock       bool       `json:"in_stock"`
	Location      string     `json:"location"`
	LastRestocked *time.Time `json:"last_restocked,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func FromModel(m models.Inventory) Inventory {
	return Inventory{
		ID:            m.ID,
		ItemID:        m.ItemID,
		ItemQuantity:  m.ItemQuantity,
		InStock:       m.InStock,
		Location:      m.Location,
		LastRestocked: m.LastRestocked,
		UpdatedAt:     m.UpdatedAt,
	}
}

type UpdateInput struct {
	ItemQuantity *int    `json:"item_quantity" validate:"omitempty,min=0"`
	Location     *string `json:"location" validate:"omitempty,max=255"`
}

type RestockInput struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

type ListParams struct {
	Limit    int
	Cursor   string
	InStock  *bool
	Location string
}
