package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// Order has no stored total; it is always aggregated from its lines.
type Order struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID         `gorm:"column:user_id;type:uuid;not null"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
	Items     []OrderItem       `gorm:"foreignKey:OrderID;references:ID"`
}

// OrderItem snapshots the unit price when the order is placed.
type OrderItem struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ItemID          uuid.UUID       `gorm:"column:item_id;type:uuid;not null"`
	Quantity        int             `gorm:"column:quantity;not null"`
	PriceAtPurchase decimal.Decimal `gorm:"column:price_at_purchase;type:numeric(10,4);not null"`
	DiscountID      *uuid.UUID      `gorm:"column:discount_id;type:uuid"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
}

type Transaction struct {
	ID              uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TransactionHash string                  `gorm:"column:transaction_hash;not null;uniqueIndex"`
	Status          enums.TransactionStatus `gorm:"column:status;type:text;not null"`
	OrderID         uuid.UUID               `gorm:"column:order_id;type:uuid;not null"`
	UserID          uuid.UUID               `gorm:"column:user_id;type:uuid;not null"`
	SettledAt       *time.Time              `gorm:"column:settled_at"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
