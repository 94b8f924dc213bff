package ratings

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
)

type Rating struct {
	ID         uuid.UUID `json:"id"`
	ItemID     uuid.UUID `json:"item_id"`
	UserID     uuid.UUID `json:"user_id"`
	Rating     int       `json:"rating"`
	Review     string    `json:"review"`
	ReviewedAt time.Time `json:"reviewed_at"`
}

func FromModel(r models.Rating) Rating {
	return Rating{
		ID:         r.ID,
		ItemID:     r.ItemID,
		UserID:     r.UserID,
		Rating:     r.Rating,
		Review:     r.Review,
		ReviewedAt: r.ReviewedAt,
	}
}

type CreateInput struct {
	UserID *uuid.UUID `json:"user_id"`
	ItemID uuid.UUID  `json:"item_id" validate:"required"`
	Rating int        `json:"rating" validate:"required,min=1,max=5"`
	Review string     `json:"review" validate:"max=2000"`
}

type UpdateInput struct {
	Rating *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Review *string `json:"review" validate:"omitempty,max=2000"`
}

type ListParams struct {
	Limit     int
	Cursor    string
	MinRating *int
	MaxRating *int
	Item      string
	UserID    *uuid.UUID
}
