package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet holds a user's spendable balance. Balance only moves through
// conditional single-row updates.
type Wallet struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID      uuid.UUID       `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Address     string          `gorm:"column:address;not null"`
	Balance     decimal.Decimal `gorm:"column:balance;type:numeric(20,4);not null"`
	ConnectedAt time.Time       `gorm:"column:connected_at;autoCreateTime"`
}

// WalletSettlement records the single debit made for a completed transaction.
type WalletSettlement struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionID uuid.UUID       `gorm:"column:transaction_id;type:uuid;not null;uniqueIndex"`
	OrderID       uuid.UUID       `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	WalletID      uuid.UUID       `gorm:"column:wallet_id;type:uuid;not null"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(20,4);not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}
