package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

type Bid struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UsedItemID  uuid.UUID       `gorm:"column:used_item_id;type:uuid;not null"`
	UserID      uuid.UUID       `gorm:"column:user_id;type:uuid;not null"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric(10,2);not null"`
	Status      enums.BidStatus `gorm:"column:status;type:text;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
	CompletedAt *time.Time      `gorm:"column:completed_at"`
}
