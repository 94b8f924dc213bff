package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// Item is a vendor catalog entry. It exclusively owns one Inventory row.
type Item struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID    uuid.UUID          `gorm:"column:vendor_id;type:uuid;not null"`
	Name        string             `gorm:"column:name;not null"`
	Description string             `gorm:"column:description;not null"`
	Price       decimal.Decimal    `gorm:"column:price;type:numeric(10,2);not null"`
	Category    enums.ItemCategory `gorm:"column:category;type:text;not null"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
	Inventory   *Inventory         `gorm:"foreignKey:ItemID;references:ID"`
}

// Inventory tracks stock for an item. InStock mirrors ItemQuantity > 0.
type Inventory struct {
	ID            uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID        uuid.UUID  `gorm:"column:item_id;type:uuid;not null;uniqueIndex"`
	ItemQuantity  int        `gorm:"column:item_quantity;not null"`
	InStock       bool       `gorm:"column:in_stock;not null"`
	Location      string     `gorm:"column:location;not null"`
	LastRestocked *time.Time `gorm:"column:last_restocked"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Inventory) TableName() string { return "inventories" }

// UsedItem is a customer listing that other users bid on.
type UsedItem struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID         uuid.UUID          `gorm:"column:user_id;type:uuid;not null"`
	Name           string             `gorm:"column:name;not null"`
	Description    string             `gorm:"column:description;not null"`
	Price          decimal.Decimal    `gorm:"column:price;type:numeric(10,2);not null"`
	Category       enums.ItemCategory `gorm:"column:category;type:text;not null"`
	WarrantyPeriod int                `gorm:"column:warranty_period;not null"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
