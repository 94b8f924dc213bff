package users

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

// Service exposes user profiles, the vendor customer list and admin verification.
type Service interface {
	Me(ctx context.Context, actor visibility.Actor) (*UserDTO, error)
	Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*UserDTO, error)
	List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[UserDTO], error)
	Customers(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[UserDTO], error)
	Update(ctx context.Context, actor visibility.Actor, id uuid.UUID, input UpdateInput) (*UserDTO, error)
	SetVerification(ctx context.Context, actor visibility.Actor, id uuid.UUID, input VerificationInput) (*UserDTO, error)
}

type service struct {
	repo *Repository
	logg *logger.Logger
}

func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) Me(ctx context.Context, actor visibility.Actor) (*UserDTO, error) {
	if !actor.Authenticated() {
		return nil, visibility.ErrAuthenticationMissing
	}
	return s.Get(ctx, actor, actor.ID)
}

func (s *service) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[UserDTO], error) {
	var role *enums.Role
	if raw := strings.TrimSpace(params.Role); raw != "" {
		parsed, err := enums.ParseRole(raw)
		if err != nil {
			return pagination.Page[UserDTO]{}, pkgerrors.Field("role", err.Error())
		}
		role = &parsed
	}
	return s.list(ctx, actor, visibility.ResourceUser, role, params)
}

func (s *service) Customers(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[UserDTO], error) {
	return s.list(ctx, actor, visibility.ResourceCustomer, nil, params)
}

func (s *service) list(ctx context.Context, actor visibility.Actor, resource visibility.Resource, role *enums.Role, params ListParams) (pagination.Page[UserDTO], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[UserDTO]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	page, err := s.repo.List(ctx, actor, resource, role, pagination.NormalizeLimit(params.Limit), cursor)
	if err != nil {
		if pkgerrors.As(err) != nil {
			return pagination.Page[UserDTO]{}, err
		}
		return pagination.Page[UserDTO]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	out := pagination.Page[UserDTO]{Items: make([]UserDTO, 0, len(page.Items)), Cursor: page.Cursor}
	for i := range page.Items {
		out.Items = append(out.Items, *FromModel(&page.Items[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, actor visibility.Actor, id uuid.UUID, input UpdateInput) (*UserDTO, error) {
	if input.Role != nil {
		return nil, pkgerrors.Field("role", "role cannot be changed")
	}
	user, err := s.repo.GetForWrite(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"first_name", input.FirstName},
		{"last_name", input.LastName},
	} {
		if f.value == nil {
			continue
		}
		v := strings.TrimSpace(*f.value)
		if v == "" {
			return nil, pkgerrors.Field(f.name, f.name+" cannot be blank")
		}
		updates[f.name] = v
	}
	if input.Phone != nil {
		updates["phone"] = optional(*input.Phone)
	}

	vendorOnly := input.BusinessName != nil || input.VendorType != nil || input.BusinessLicense != nil
	if vendorOnly && user.Role != enums.RoleVendor {
		return nil, pkgerrors.Field("business_name", "business fields apply to vendors only")
	}
	if input.BusinessName != nil {
		v := strings.TrimSpace(*input.BusinessName)
		if v == "" {
			return nil, pkgerrors.Field("business_name", "business_name is required for vendors")
		}
		updates["business_name"] = v
	}
	if input.VendorType != nil {
		vt, err := enums.ParseVendorType(*input.VendorType)
		if err != nil {
			return nil, pkgerrors.Field("vendor_type", err.Error())
		}
		updates["vendor_type"] = vt
	}
	if input.BusinessLicense != nil {
		updates["business_license"] = optional(*input.BusinessLicense)
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			return nil, err
		}
	}
	reloaded, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload user")
	}
	return FromModel(reloaded), nil
}

func (s *service) SetVerification(ctx context.Context, actor visibility.Actor, id uuid.UUID, input VerificationInput) (*UserDTO, error) {
	if _, err := visibility.MutableScope(actor, visibility.ResourceVerification); err != nil {
		return nil, err
	}
	status, err := enums.ParseVerificationStatus(input.Status)
	if err != nil {
		return nil, pkgerrors.Field("verification_status", err.Error())
	}
	if _, err := s.repo.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, map[string]any{"verification_status": status}); err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"user_id": id.String(),
			"status":  status.String(),
		}), "user verification changed")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload user")
	}
	return FromModel(user), nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
