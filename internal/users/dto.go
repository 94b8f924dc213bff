package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID                 uuid.UUID                `json:"id"`
	Username           string                   `json:"username"`
	Email              string                   `json:"email"`
	FirstName          string                   `json:"first_name"`
	LastName           string                   `json:"last_name"`
	Phone              *string                  `json:"phone,omitempty"`
	Role               enums.Role               `json:"role"`
	TelegramID         *int64                   `json:"telegram_id,omitempty"`
	BusinessName       *string                  `json:"business_name,omitempty"`
	VendorType         *enums.VendorType        `json:"vendor_type,omitempty"`
	BusinessLicense    *string                  `json:"business_license,omitempty"`
	Rating             *string                  `json:"rating,omitempty"`
	VerificationStatus enums.VerificationStatus `json:"verification_status"`
	LastLoginAt        *time.Time               `json:"last_login_at,omitempty"`
	CreatedAt          time.Time                `json:"created_at"`
	UpdatedAt          time.Time                `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Username        string
	Email           string
	PasswordHash    string
	FirstName       string
	LastName        string
	Phone           *string
	Role            enums.Role
	TelegramID      *int64
	BusinessName    *string
	VendorType      *enums.VendorType
	BusinessLicense *string
}

// UpdateInput is the self-service patch body. Role is accepted only so that an
// attempt to change it can be rejected explicitly.
type UpdateInput struct {
	FirstName       *string `json:"first_name" validate:"omitempty,max=100"`
	LastName        *string `json:"last_name" validate:"omitempty,max=100"`
	Phone           *string `json:"phone" validate:"omitempty,max=32"`
	BusinessName    *string `json:"business_name" validate:"omitempty,max=255"`
	VendorType      *string `json:"vendor_type"`
	BusinessLicense *string `json:"business_license" validate:"omitempty,max=255"`
	Role            *string `json:"role"`
}

type VerificationInput struct {
	Status string `json:"verification_status" validate:"required"`
}

type ListParams struct {
	Limit  int
	Cursor string
	Role   string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	out := &UserDTO{
		ID:                 u.ID,
		Username:           u.Username,
		Email:              u.Email,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Phone:              u.Phone,
		Role:               u.Role,
		TelegramID:         u.TelegramID,
		VerificationStatus: u.VerificationStatus,
		LastLoginAt:        u.LastLoginAt,
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
	if u.Role == enums.RoleVendor {
		rating := u.Rating.StringFixed(2)
		out.Rating = &rating
		out.BusinessName = u.BusinessName
		out.VendorType = u.VendorType
		out.BusinessLicense = u.BusinessLicense
	}
	return out
}

func (c CreateUserDTO) ToModel() *models.User {
	return &models.User{
		Username:           c.Username,
		Email:              c.Email,
		PasswordHash:       c.PasswordHash,
		FirstName:          c.FirstName,
		LastName:           c.LastName,
		Phone:              c.Phone,
		Role:               c.Role,
		TelegramID:         c.TelegramID,
		BusinessName:       c.BusinessName,
		VendorType:         c.VendorType,
		BusinessLicense:    c.BusinessLicense,
		VerificationStatus: enums.VerificationUnverified,
	}
}
