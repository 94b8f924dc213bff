package transactions

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

type Transaction struct {
	ID              uuid.UUID               `json:"id"`
	TransactionHash string                  `json:"transaction_hash"`
	Status          enums.TransactionStatus `json:"status"`
	OrderID         uuid.UUID               `json:"order_id"`
	UserID          uuid.UUID               `json:"user_id"`
	SettledAt       *time.Time              `json:"settled_at,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

func FromModel(t models.Transaction) Transaction {
	return Transaction{
		ID:              t.ID,
		TransactionHash: t.TransactionHash,
		Status:          t.Status,
		OrderID:         t.OrderID,
		UserID:          t.UserID,
		SettledAt:       t.SettledAt,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

type CreateInput struct {
	OrderID         uuid.UUID `json:"order_id" validate:"required"`
	TransactionHash string    `json:"transaction_hash" validate:"required,max=255"`
}

type ListParams struct {
	Limit   int
	Cursor  string
	Status  string
	OrderID *uuid.UUID
}
