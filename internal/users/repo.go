package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/internal/repo"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	base repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// Create inserts a new user inside tx when one is given.
func (r *Repository) Create(ctx context.Context, tx *gorm.DB, dto CreateUserDTO) (*models.User, error) {
	user := dto.ToModel()
	if err := r.base.WithTx(tx).DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByLogin retrieves the user whose email or username matches login.
func (r *Repository) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	if err := r.base.DB(ctx).Where("email = ? OR username = ?", login, login).Take(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.base.DB(ctx).Take(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateLastLogin refreshes the user's last_login_at timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.base.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at).Error
}

func (r *Repository) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.base.FindVisible(ctx, actor, visibility.ResourceUser, "users", id, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *Repository) GetForWrite(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.base.FindMutable(ctx, actor, visibility.ResourceUser, "users", id, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// List pages through the users visible to actor under resource. Customer
// listings always narrow to role customer so admins get the same shape.
func (r *Repository) List(ctx context.Context, actor visibility.Actor, resource visibility.Resource, role *enums.Role, limit int, cursor *pagination.Cursor) (pagination.Page[models.User], error) {
	query, err := r.base.Visible(ctx, actor, resource, &models.User{})
	if err != nil {
		return pagination.Page[models.User]{}, err
	}
	if resource == visibility.ResourceCustomer {
		query = query.Where("users.role = ?", enums.RoleCustomer)
	}
	if role != nil {
		query = query.Where("users.role = ?", *role)
	}
	var rows []models.User
	if err := query.Scopes(pagination.Scope("users", "created_at", cursor, limit)).Find(&rows).Error; err != nil {
		return pagination.Page[models.User]{}, err
	}
	return pagination.Trim(rows, limit, func(u models.User) pagination.Cursor {
		return pagination.Cursor{CreatedAt: u.CreatedAt, ID: u.ID}
	}), nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return repo.WriteError(r.base.DB(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error, "user")
}
