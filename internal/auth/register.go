package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/internal/repo"
	"github.com/angelmondragon/marketplace-backend/internal/users"
	"github.com/angelmondragon/marketplace-backend/pkg/config"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/outbox"
	"github.com/angelmondragon/marketplace-backend/pkg/security"
)

// RegisterRequest contains the payload for public sign-up. Vendor-only fields
// are ignored for other roles.
type RegisterRequest struct {
	Username        string  `json:"username" validate:"required,min=3,max=50"`
	Email           string  `json:"email" validate:"required,email"`
	Password        string  `json:"password" validate:"required,min=8"`
	ConfirmPassword string  `json:"confirm_password" validate:"required"`
	FirstName       string  `json:"first_name" validate:"required"`
	LastName        string  `json:"last_name" validate:"required"`
	Phone           *string `json:"phone,omitempty"`
	Role            string  `json:"role" validate:"required"`
	TelegramID      *int64  `json:"telegram_id,omitempty"`
	BusinessName    *string `json:"business_name,omitempty"`
	VendorType      *string `json:"vendor_type,omitempty"`
	BusinessLicense *string `json:"business_license,omitempty"`
}

// RegisterService handles the onboarding transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type registerUserRepository interface {
	FindByLogin(ctx context.Context, login string) (*models.User, error)
	Create(ctx context.Context, tx *gorm.DB, dto users.CreateUserDTO) (*models.User, error)
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             txRunner
	Users          registerUserRepository
	Outbox         outboxPublisher
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
}

type registerService struct {
	db          txRunner
	users       registerUserRepository
	outbox      outboxPublisher
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user repository required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox publisher required")
	}
	return &registerService{
		db:          params.DB,
		users:       params.Users,
		outbox:      params.Outbox,
		passwordCfg: params.PasswordConfig,
		logg:        params.Logger,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*users.UserDTO, error) {
	dto, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	dto.PasswordHash, err = security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var created *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.ensureAvailable(ctx, dto); err != nil {
			return err
		}
		user, err := s.users.Create(ctx, tx, dto)
		if err != nil {
			return repo.WriteError(err, "user")
		}
		created = user
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserRegistered,
			AggregateType: enums.AggregateUser,
			AggregateID:   user.ID,
			Data: outbox.UserRegisteredEvent{
				UserID:   user.ID,
				Username: user.Username,
				Role:     user.Role,
			},
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "register user")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"user_id": created.ID.String(),
			"role":    created.Role.String(),
		}), "user registered")
	}
	return users.FromModel(created), nil
}

func (s *registerService) validate(req RegisterRequest) (users.CreateUserDTO, error) {
	if req.Password != req.ConfirmPassword {
		return users.CreateUserDTO{}, pkgerrors.Field("confirm_password", "passwords do not match")
	}
	role, err := enums.ParseRole(req.Role)
	if err != nil {
		return users.CreateUserDTO{}, pkgerrors.Field("role", err.Error())
	}
	if !role.SelfRegistrable() {
		return users.CreateUserDTO{}, pkgerrors.Field("role", "admin accounts cannot self-register")
	}

	dto := users.CreateUserDTO{
		Username:   strings.TrimSpace(req.Username),
		Email:      strings.ToLower(strings.TrimSpace(req.Email)),
		FirstName:  strings.TrimSpace(req.FirstName),
		LastName:   strings.TrimSpace(req.LastName),
		Phone:      trimmed(req.Phone),
		Role:       role,
		TelegramID: req.TelegramID,
	}
	for _, f := range []struct{ name, value string }{
		{"username", dto.Username},
		{"email", dto.Email},
		{"first_name", dto.FirstName},
		{"last_name", dto.LastName},
	} {
		if f.value == "" {
			return users.CreateUserDTO{}, pkgerrors.Field(f.name, f.name+" is required")
		}
	}

	if role != enums.RoleVendor {
		return dto, nil
	}
	dto.BusinessName = trimmed(req.BusinessName)
	if dto.BusinessName == nil {
		return users.CreateUserDTO{}, pkgerrors.Field("business_name", "business_name is required for vendors")
	}
	vendorType := enums.VendorTypeIndividual
	if raw := trimmed(req.VendorType); raw != nil {
		vendorType, err = enums.ParseVendorType(*raw)
		if err != nil {
			return users.CreateUserDTO{}, pkgerrors.Field("vendor_type", err.Error())
		}
	}
	dto.VendorType = &vendorType
	dto.BusinessLicense = trimmed(req.BusinessLicense)
	return dto, nil
}

func (s *registerService) ensureAvailable(ctx context.Context, dto users.CreateUserDTO) error {
	for _, login := range []string{dto.Email, dto.Username} {
		existing, err := s.users.FindByLogin(ctx, login)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing user")
		}
		if existing.Email == dto.Email {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return pkgerrors.New(pkgerrors.CodeConflict, "username already taken")
	}
	return nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	out := strings.TrimSpace(*v)
	if out == "" {
		return nil
	}
	return &out
}

