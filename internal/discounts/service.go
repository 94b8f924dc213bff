package discounts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

var hundred = decimal.NewFromInt(100)

type Service interface {
	Create(ctx context.Context, actor visibility.Actor, input CreateInput) (*Discount, error)
	Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Discount, error)
	List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[Discount], error)
	Update(ctx context.Context, actor visibility.Actor, id uuid.UUID, input UpdateInput) (*Discount, error)
	Delete(ctx context.Context, actor visibility.Actor, id uuid.UUID) error
}

type service struct {
	repo *Repository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "discount repository required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

func (s *service) Create(ctx context.Context, actor visibility.Actor, input CreateInput) (*Discount, error) {
	if _, err := visibility.MutableScope(actor, visibility.ResourceDiscount); err != nil {
		return nil, err
	}
	vendorID, err := visibility.OwnerFor(actor, input.VendorID)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		ok, err := s.repo.IsVendor(ctx, vendorID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check vendor")
		}
		if !ok {
			return nil, pkgerrors.Field("vendor_id", "vendor_id must reference a vendor")
		}
	}
	code := strings.TrimSpace(input.Code)
	if code == "" {
		return nil, pkgerrors.Field("code", "code is required")
	}
	if err := validatePercentage(input.Percentage); err != nil {
		return nil, err
	}
	expires, err := parseDate(input.ExpiresAt)
	if err != nil {
		return nil, err
	}

	row := models.Discount{
		VendorID:       vendorID,
		Code:           code,
		Name:           strings.TrimSpace(input.Name),
		Percentage:     input.Percentage,
		ExpiresAt:      expires,
		MaxRedemptions: input.MaxRedemptions,
	}
	if err := s.repo.Create(ctx, &row); err != nil {
		return nil, err
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"discount_id": row.ID.String(), "code": row.Code}), "discount created")
	}
	out := FromModel(row, s.now())
	return &out, nil
}

func (s *service) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Discount, error) {
	row, err := s.repo.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	out := FromModel(*row, s.now())
	return &out, nil
}

func (s *service) List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[Discount], error) {
	now := s.now()
	query := listQuery{Actor: actor, Params: params}
	if strings.TrimSpace(params.Status) != "" {
		status, err := ParseStatus(params.Status)
		if err != nil {
			return pagination.Page[Discount]{}, err
		}
		scope, err := StatusScope(status, now)
		if err != nil {
			return pagination.Page[Discount]{}, err
		}
		query.Status = scope
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[Discount]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query.Cursor = cursor

	rows, err := s.repo.List(ctx, query)
	if err != nil {
		return pagination.Page[Discount]{}, repoErr(err, "list discounts")
	}
	out := pagination.Page[Discount]{Items: make([]Discount, 0, len(rows.Items)), Cursor: rows.Cursor}
	for _, row := range rows.Items {
		out.Items = append(out.Items, FromModel(row, now))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, actor visibility.Actor, id uuid.UUID, input UpdateInput) (*Discount, error) {
	row, err := s.repo.GetForWrite(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{}
	if input.Name != nil {
		row.Name = strings.TrimSpace(*input.Name)
		updates["name"] = row.Name
	}
	if input.Percentage != nil {
		if err := validatePercentage(*input.Percentage); err != nil {
			return nil, err
		}
		row.Percentage = *input.Percentage
		updates["percentage"] = row.Percentage
	}
	if input.ExpiresAt != nil {
		expires, err := parseDate(*input.ExpiresAt)
		if err != nil {
			return nil, err
		}
		row.ExpiresAt = expires
		updates["expires_at"] = expires
	}
	if input.MaxRedemptions != nil {
		if *input.MaxRedemptions < row.Redemptions {
			return nil, pkgerrors.Field("max_redemptions", "max_redemptions cannot be below redemptions already taken")
		}
		row.MaxRedemptions = input.MaxRedemptions
		updates["max_redemptions"] = *input.MaxRedemptions
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, row.ID, updates); err != nil {
			return nil, err
		}
	}
	out := FromModel(*row, s.now())
	return &out, nil
}

func (s *service) Delete(ctx context.Context, actor visibility.Actor, id uuid.UUID) error {
	row, err := s.repo.GetForWrite(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, row.ID)
}

func validatePercentage(p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(hundred) {
		return pkgerrors.Field("percentage", "percentage must be between 0 and 100")
	}
	if !p.Equal(p.Round(2)) {
		return pkgerrors.Field("percentage", "percentage allows at most 2 decimal places")
	}
	return nil
}

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, pkgerrors.Field("expires_at", "expires_at must be a date formatted YYYY-MM-DD")
	}
	return t.UTC(), nil
}

func repoErr(err error, msg string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, msg)
}
