package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages stock levels. Items create their own inventory row.
type Service interface {
	List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[Inventory], error)
	Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Inventory, error)
	Update(ctx context.Context, actor visibility.Actor, id uuid.UUID, input UpdateInput) (*Inventory, error)
	Restock(ctx context.Context, actor visibility.Actor, id uuid.UUID, qty int) (*Inventory, error)
}

type service struct {
	repo *Repository
	tx   txRunner
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo *Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "inventory repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	return &service{repo: repo, tx: tx, logg: logg, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[Inventory], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[Inventory]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, listQuery{
		Actor:    actor,
		Limit:    params.Limit,
		Cursor:   cursor,
		InStock:  params.InStock,
		Location: strings.TrimSpace(params.Location),
	})
	if err != nil {
		return pagination.Page[Inventory]{}, repoErr(err, "list inventory")
	}
	out := pagination.Page[Inventory]{Items: make([]Inventory, 0, len(rows.Items)), Cursor: rows.Cursor}
	for _, row := range rows.Items {
		out.Items = append(out.Items, FromModel(row))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Inventory, error) {
	row, err := s.repo.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	out := FromModel(*row)
	return &out, nil
}

func (s *service) Update(ctx context.Context, actor visibility.Actor, id uuid.UUID, input UpdateInput) (*Inventory, error) {
	row, err := s.repo.GetForWrite(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	var updated *models.Inventory
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if input.ItemQuantity != nil {
			if err := SetQuantity(tx, row.ItemID, *input.ItemQuantity); err != nil {
				return err
			}
		}
		if input.Location != nil {
			if err := s.repo.UpdateLocation(ctx, tx, row.ID, strings.TrimSpace(*input.Location)); err != nil {
				return err
			}
		}
		updated, err = s.repo.Reload(ctx, tx, row.ID)
		return err
	})
	if err != nil {
		return nil, repoErr(err, "update inventory")
	}
	out := FromModel(*updated)
	return &out, nil
}

func (s *service) Restock(ctx context.Context, actor visibility.Actor, id uuid.UUID, qty int) (*Inventory, error) {
	row, err := s.repo.GetForWrite(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	var updated *models.Inventory
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := Restock(tx, row.ItemID, qty, s.now()); err != nil {
			return err
		}
		updated, err = s.repo.Reload(ctx, tx, row.ID)
		return err
	})
	if err != nil {
		return nil, repoErr(err, "restock inventory")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"item_id":  row.ItemID.String(),
			"quantity": qty,
		}), "inventory restocked")
	}
	out := FromModel(*updated)
	return &out, nil
}

func repoErr(err error, msg string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
