package ratings

import (
	"context"
	"errors"
	"strings"

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

// Service manages item reviews and keeps vendor ratings in step with them.
type Service interface {
	Create(ctx context.Context, actor visibility.Actor, input CreateInput) (*Rating, error)
	Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Rating, error)
	List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[Rating], error)
	Update(ctx context.Context, actor visibility.Actor, id uuid.UUID, input UpdateInput) (*Rating, error)
	Delete(ctx context.Context, actor visibility.Actor, id uuid.UUID) error
}

type service struct {
	repo *Repository
	tx   txRunner
	logg *logger.Logger
}

func NewService(repo *Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "ratings repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func validateScore(score int) error {
	if score < 1 || score > 5 {
		return pkgerrors.Field("rating", "rating must be between 1 and 5")
	}
	return nil
}

func (s *service) Create(ctx context.Context, actor visibility.Actor, input CreateInput) (*Rating, error) {
	if _, err := visibility.MutableScope(actor, visibility.ResourceRating); err != nil {
		return nil, err
	}
	reviewer, err := visibility.OwnerFor(actor, input.UserID)
	if err != nil {
		return nil, err
	}
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.Field("item_id", "item_id is required")
	}
	if err := validateScore(input.Rating); err != nil {
		return nil, err
	}

	row := models.Rating{
		ItemID: input.ItemID,
		UserID: reviewer,
		Rating: input.Rating,
		Review: strings.TrimSpace(input.Review),
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		vendorID, err := s.repo.VendorOf(ctx, tx, input.ItemID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Field("item_id", "item does not exist")
		}
		if err != nil {
			return err
		}
		if err := s.repo.Create(ctx, tx, &row); err != nil {
			return err
		}
		return s.repo.RecomputeVendorRating(ctx, tx, vendorID)
	})
	if err != nil {
		return nil, repoErr(err, "create rating")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"rating_id": row.ID.String(),
			"item_id":   row.ItemID.String(),
			"rating":    row.Rating,
		}), "rating created")
	}
	reloaded, err := s.repo.Reload(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	out := FromModel(*reloaded)
	return &out, nil
}

func (s *service) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Rating, error) {
	row, err := s.repo.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	out := FromModel(*row)
	return &out, nil
}

func (s *service) List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[Rating], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[Rating]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	for field, v := range map[string]*int{"min_rating": params.MinRating, "max_rating": params.MaxRating} {
		if v != nil && (*v < 1 || *v > 5) {
			return pagination.Page[Rating]{}, pkgerrors.Field(field, field+" must be between 1 and 5")
		}
	}
	page, err := s.repo.List(ctx, listQuery{
		Actor:     actor,
		Limit:     pagination.NormalizeLimit(params.Limit),
		Cursor:    cursor,
		MinRating: params.MinRating,
		MaxRating: params.MaxRating,
		Item:      strings.TrimSpace(params.Item),
		UserID:    params.UserID,
	})
	if err != nil {
		return pagination.Page[Rating]{}, repoErr(err, "list ratings")
	}
	out := pagination.Page[Rating]{Items: make([]Rating, 0, len(page.Items)), Cursor: page.Cursor}
	for _, row := range page.Items {
		out.Items = append(out.Items, FromModel(row))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, actor visibility.Actor, id uuid.UUID, input UpdateInput) (*Rating, error) {
	updates := map[string]any{}
	if input.Rating != nil {
		if err := validateScore(*input.Rating); err != nil {
			return nil, err
		}
		updates["rating"] = *input.Rating
	}
	if input.Review != nil {
		updates["review"] = strings.TrimSpace(*input.Review)
	}
	row, err := s.repo.GetForWrite(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		out := FromModel(*row)
		return &out, nil
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, id, updates); err != nil {
			return err
		}
		if _, ok := updates["rating"]; !ok {
			return nil
		}
		vendorID, err := s.repo.VendorOf(ctx, tx, row.ItemID)
		if err != nil {
			return err
		}
		return s.repo.RecomputeVendorRating(ctx, tx, vendorID)
	})
	if err != nil {
		return nil, repoErr(err, "update rating")
	}
	reloaded, err := s.repo.Reload(ctx, id)
	if err != nil {
		return nil, err
	}
	out := FromModel(*reloaded)
	return &out, nil
}

func (s *service) Delete(ctx context.Context, actor visibility.Actor, id uuid.UUID) error {
	row, err := s.repo.GetForWrite(ctx, actor, id)
	if err != nil {
		return err
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		vendorID, err := s.repo.VendorOf(ctx, tx, row.ItemID)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return s.repo.RecomputeVendorRating(ctx, tx, vendorID)
	})
	return repoErr(err, "delete rating")
}

func repoErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
