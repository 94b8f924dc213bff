package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// User represents the canonical identity entity. Role is fixed at creation.
type User struct {
	ID                 uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Username           string                   `gorm:"column:username;type:text;not null;uniqueIndex"`
	Email              string                   `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash       string                   `gorm:"column:password_hash;not null"`
	FirstName          string                   `gorm:"column:first_name;not null"`
	LastName           string                   `gorm:"column:last_name;not null"`
	Phone              *string                  `gorm:"column:phone"`
	Role               enums.Role               `gorm:"column:role;type:text;not null"`
	TelegramID         *int64                   `gorm:"column:telegram_id;uniqueIndex"`
	BusinessName       *string                  `gorm:"column:business_name"`
	VendorType         *enums.VendorType        `gorm:"column:vendor_type;type:text"`
	BusinessLicense    *string                  `gorm:"column:business_license"`
	Rating             decimal.Decimal          `gorm:"column:rating;type:numeric(3,2);not null"`
	VerificationStatus enums.VerificationStatus `gorm:"column:verification_status;type:text;not null"`
	LastLoginAt        *time.Time               `gorm:"column:last_login_at"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
