package wallets

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

// Service manages user wallets. Balances change only through settlement
// debits and admin deposits.
type Service interface {
	Create(ctx context.Context, actor visibility.Actor, input CreateInput) (*Wallet, error)
	Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Wallet, error)
	Mine(ctx context.Context, actor visibility.Actor) (*Wallet, error)
	List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[Wallet], error)
	Deposit(ctx context.Context, actor visibility.Actor, id uuid.UUID, input DepositInput) (*Wallet, error)
}

type service struct {
	repo *Repository
	tx   txRunner
	logg *logger.Logger
}

func NewService(repo *Repository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "wallets repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, actor visibility.Actor, input CreateInput) (*Wallet, error) {
	if _, err := visibility.MutableScope(actor, visibility.ResourceWallet); err != nil {
		return nil, err
	}
	owner, err := visibility.OwnerFor(actor, input.UserID)
	if err != nil {
		return nil, err
	}
	address := strings.TrimSpace(input.Address)
	if address == "" {
		return nil, pkgerrors.Field("address", "address is required")
	}
	row := models.Wallet{UserID: owner, Address: address, Balance: decimal.Zero}
	if err := s.repo.Create(ctx, &row); err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already has a wallet")
		}
		return nil, err
	}
	out := FromModel(row)
	return &out, nil
}

func (s *service) Get(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Wallet, error) {
	row, err := s.repo.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	out := FromModel(*row)
	return &out, nil
}

func (s *service) Mine(ctx context.Context, actor visibility.Actor) (*Wallet, error) {
	if !actor.Authenticated() {
		return nil, visibility.ErrAuthenticationMissing
	}
	row, err := s.repo.ByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	out := FromModel(*row)
	return &out, nil
}

func (s *service) List(ctx context.Context, actor visibility.Actor, params ListParams) (pagination.Page[Wallet], error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return pagination.Page[Wallet]{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	rows, err := s.repo.List(ctx, actor, params.Limit, cursor)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return pagination.Page[Wallet]{}, typed
		}
		return pagination.Page[Wallet]{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list wallets")
	}
	out := pagination.Page[Wallet]{Items: make([]Wallet, 0, len(rows.Items)), Cursor: rows.Cursor}
	for _, row := range rows.Items {
		out.Items = append(out.Items, FromModel(row))
	}
	return out, nil
}

// Deposit credits a wallet. Admin only.
func (s *service) Deposit(ctx context.Context, actor visibility.Actor, id uuid.UUID, input DepositInput) (*Wallet, error) {
	if _, err := visibility.MutableScope(actor, visibility.ResourceWalletFunding); err != nil {
		return nil, err
	}
	if !input.Amount.Equal(input.Amount.Round(4)) {
		return nil, pkgerrors.Field("amount", "amount allows at most 4 decimal places")
	}
	var row *models.Wallet
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := Credit(tx, id, input.Amount); err != nil {
			return err
		}
		var err error
		row, err = s.repo.Reload(ctx, tx, id)
		return err
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deposit")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"wallet_id": id.String(),
			"amount":    input.Amount.StringFixed(4),
		}), "wallet funded")
	}
	out := FromModel(*row)
	return &out, nil
}
