package wallets

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
)

type Wallet struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Address     string    `json:"address"`
	Balance     string    `json:"balance"`
	ConnectedAt time.Time `json:"connected_at"`
}

func FromModel(w models.Wallet) Wallet {
	return Wallet{
		ID:          w.ID,
		UserID:      w.UserID,
		Address:     w.Address,
		Balance:     w.Balance.StringFixed(4),
		ConnectedAt: w.ConnectedAt,
	}
}

type CreateInput struct {
	UserID  *uuid.UUID `json:"user_id"`
	Address string     `json:"address" validate:"required,max=255"`
}

type DepositInput struct {
	Amount decimal.Decimal `json:"amount"`
}

type ListParams struct {
	Limit  int
	Cursor string
}
