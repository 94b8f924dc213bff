package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

// Base provides a shared foundation for domain repositories. Every query that
// starts from Visible or Mutable carries the actor's role scope before any
// caller-supplied filter is added.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// WithTx rebinds the base to tx.
func (b Base) WithTx(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// Visible opens a query on model limited to rows the actor may read.
func (b Base) Visible(ctx context.Context, actor visibility.Actor, resource visibility.Resource, model any) (*gorm.DB, error) {
	scope, err := visibility.VisibleScope(actor, resource)
	if err != nil {
		return nil, err
	}
	return b.DB(ctx).Model(model).Scopes(scope), nil
}

// Mutable opens a query on model limited to rows the actor may change.
func (b Base) Mutable(ctx context.Context, actor visibility.Actor, resource visibility.Resource, model any) (*gorm.DB, error) {
	scope, err := visibility.MutableScope(actor, resource)
	if err != nil {
		return nil, err
	}
	return b.DB(ctx).Model(model).Scopes(scope), nil
}

// FindVisible loads one row by id through the read scope.
func (b Base) FindVisible(ctx context.Context, actor visibility.Actor, resource visibility.Resource, table string, id uuid.UUID, dest any) error {
	query, err := b.Visible(ctx, actor, resource, dest)
	if err != nil {
		return err
	}
	if err := query.Where(table+".id = ?", id).Take(dest).Error; err != nil {
		return NotFoundOr(err, string(resource)+" not found")
	}
	return nil
}

// FindMutable loads one row by id through the write scope. A row the actor can
// read but not change is FORBIDDEN; a row they cannot see at all is NOT_FOUND.
func (b Base) FindMutable(ctx context.Context, actor visibility.Actor, resource visibility.Resource, table string, id uuid.UUID, dest any) error {
	query, err := b.Mutable(ctx, actor, resource, dest)
	if err != nil {
		return err
	}
	err = query.Where(table+".id = ?", id).Take(dest).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load "+string(resource))
	}
	visible, vErr := b.Visible(ctx, actor, resource, dest)
	if vErr != nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, string(resource)+" not found")
	}
	var count int64
	if cErr := visible.Where(table+".id = ?", id).Count(&count).Error; cErr != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, cErr, "load "+string(resource))
	}
	if count > 0 {
		return pkgerrors.Denied(pkgerrors.DenialDetails{
			Role:     actor.Role.String(),
			Resource: string(resource),
			Action:   string(visibility.ActionWrite),
			Reason:   "you may view this " + string(resource) + " but not change it",
		})
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, string(resource)+" not found")
}

// HasRole reports whether id belongs to a user with role.
func (b Base) HasRole(ctx context.Context, id uuid.UUID, role enums.Role) (bool, error) {
	var count int64
	err := b.DB(ctx).Model(&models.User{}).Where("id = ? AND role = ?", id, role).Count(&count).Error
	return count > 0, err
}

// NotFoundOr maps gorm.ErrRecordNotFound to NOT_FOUND and anything else to INTERNAL.
func NotFoundOr(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, message)
}

// WriteError classifies a failed insert/update/delete. Typed errors pass through.
func WriteError(err error, what string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	switch {
	case dbpkg.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, what+" already exists")
	case dbpkg.IsForeignKeyViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, what+" is still referenced by other records")
	case dbpkg.IsCheckViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeStateConflict, err, what+" no longer allows this change")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write "+what)
}
