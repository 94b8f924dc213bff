package address

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
)

type Address struct {
	ID            uuid.UUID `json:"id"`
	UserID        uuid.UUID `json:"user_id"`
	StreetAddress string    `json:"street_address"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	PostalCode    string    `json:"postal_code"`
	Country       string    `json:"country"`
	CreatedAt     time.Time `json:"created_at"`
}

func FromModel(a models.Address) Address {
	return Address{
		ID:            a.ID,
		UserID:        a.UserID,
		StreetAddress: a.StreetAddress,
		City:          a.City,
		State:         a.State,
		PostalCode:    a.PostalCode,
		Country:       a.Country,
		CreatedAt:     a.CreatedAt,
	}
}

type CreateInput struct {
	UserID        *uuid.UUID `json:"user_id"`
	StreetAddress string     `json:"street_address" validate:"required,max=255"`
	City          string     `json:"city" validate:"required,max=100"`
	State         string     `json:"state" validate:"required,max=100"`
	PostalCode    string     `json:"postal_code" validate:"required,max=20"`
	Country       string     `json:"country" validate:"required,max=100"`
}

type UpdateInput struct {
	StreetAddress *string `json:"street_address" validate:"omitempty,max=255"`
	City          *string `json:"city" validate:"omitempty,max=100"`
	State         *string `json:"state" validate:"omitempty,max=100"`
	PostalCode    *string `json:"postal_code" validate:"omitempty,max=20"`
	Country       *string `json:"country" validate:"omitempty,max=100"`
}

type ListParams struct {
	Limit  int
	Cursor string
}
