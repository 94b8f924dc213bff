package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// Notification stores in-app notifications addressed to a single user.
type Notification struct {
	ID         uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID              `gorm:"column:user_id;type:uuid;not null"`
	Type       enums.NotificationType `gorm:"column:type;type:text;not null"`
	Text       string                 `gorm:"column:text;type:text;not null"`
	Read       bool                   `gorm:"column:read;not null"`
	NotifiedAt time.Time              `gorm:"column:notified_at;autoCreateTime"`
}

type Rating struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID     uuid.UUID `gorm:"column:item_id;type:uuid;not null"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null"`
	Rating     int       `gorm:"column:rating;not null"`
	Review     string    `gorm:"column:review;type:text;not null"`
	ReviewedAt time.Time `gorm:"column:reviewed_at;autoCreateTime"`
}
