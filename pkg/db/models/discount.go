package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Discount is a vendor coupon. ExpiresAt is a calendar date stored at UTC midnight.
// A nil MaxRedemptions means unlimited.
type Discount struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID       uuid.UUID       `gorm:"column:vendor_id;type:uuid;not null"`
	Code           string          `gorm:"column:code;not null;uniqueIndex"`
	Name           string          `gorm:"column:name;not null"`
	Percentage     decimal.Decimal `gorm:"column:percentage;type:numeric(5,2);not null"`
	ExpiresAt      time.Time       `gorm:"column:expires_at;type:date;not null"`
	Redemptions    int             `gorm:"column:redemptions;not null"`
	MaxRedemptions *int            `gorm:"column:max_redemptions"`
	AddedAt        time.Time       `gorm:"column:added_at;autoCreateTime"`
}

type Cart struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID  `gorm:"column:user_id;type:uuid;not null"`
	ItemID       uuid.UUID  `gorm:"column:item_id;type:uuid;not null"`
	ItemQuantity int        `gorm:"column:item_quantity;not null"`
	DiscountID   *uuid.UUID `gorm:"column:discount_id;type:uuid"`
	AddedAt      time.Time  `gorm:"column:added_at;autoCreateTime"`
}
