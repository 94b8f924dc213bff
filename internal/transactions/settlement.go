package transactions

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/internal/orders"
	"github.com/angelmondragon/marketplace-backend/internal/wallets"
	dbpkg "github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/metrics"
	"github.com/angelmondragon/marketplace-backend/pkg/outbox"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

// settlement ledger uniqueness, by Postgres constraint name and SQLite column.
var (
	settlementConstraints      = []string{"ux_wallet_settlements_transaction", "wallet_settlements.transaction_id"}
	orderSettlementConstraints = []string{"ux_wallet_settlements_order", "wallet_settlements.order_id"}
)

// errAlreadySettled unwinds a settlement that lost the race to another one.
var errAlreadySettled = errors.New("transaction already settled")

// Complete settles a pending transaction by debiting the buyer's wallet for
// the order total. Replaying a completed transaction returns it unchanged
// and never debits twice. An order is settled at most once, whichever of its
// transactions gets there first, and cancelled orders are never charged.
func (s *service) Complete(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Transaction, error) {
	if err := s.requireSettler(actor, "complete"); err != nil {
		return nil, err
	}
	settledAt := s.now().UTC()
	outcome := metrics.OutcomeSettled
	var row *models.Transaction

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		moved, err := s.repo.Transition(ctx, tx, id, enums.TransactionStatusCompleted, &settledAt)
		if err != nil {
			return err
		}
		row, err = s.repo.Reload(ctx, tx, id)
		if err != nil {
			return err
		}
		if !moved {
			switch row.Status {
			case enums.TransactionStatusCompleted:
				outcome = metrics.OutcomeReplayed
				return nil
			case enums.TransactionStatusFailed:
				return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction has failed and cannot be settled")
			default:
				return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction changed concurrently")
			}
		}

		orderStatus, err := s.repo.OrderStatus(ctx, tx, row.OrderID)
		if err != nil {
			return err
		}
		if orderStatus == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order was cancelled and cannot be settled")
		}

		lines, err := s.repo.OrderLines(ctx, tx, row.OrderID)
		if err != nil {
			return err
		}
		total := orders.Total(lines)
		walletID, err := wallets.Debit(tx, row.UserID, total)
		if err != nil {
			switch {
			case pkgerrors.IsCode(err, pkgerrors.CodeConflict):
				outcome = metrics.OutcomeNoWallet
			case pkgerrors.IsCode(err, pkgerrors.CodeStateConflict):
				outcome = metrics.OutcomeInsufficient
			}
			return err
		}
		if err := s.repo.InsertSettlement(ctx, tx, &models.WalletSettlement{
			TransactionID: row.ID,
			OrderID:       row.OrderID,
			WalletID:      walletID,
			Amount:        total,
		}); err != nil {
			for _, constraint := range settlementConstraints {
				if dbpkg.IsUniqueViolation(err, constraint) {
					return errAlreadySettled
				}
			}
			for _, constraint := range orderSettlementConstraints {
				if dbpkg.IsUniqueViolation(err, constraint) {
					return pkgerrors.New(pkgerrors.CodeStateConflict, "order has already been settled")
				}
			}
			return err
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransactionSettled,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   row.ID,
			Actor:         &outbox.ActorRef{UserID: actor.ID, Role: actor.Role},
			Data: outbox.TransactionSettledEvent{
				TransactionID: row.ID,
				OrderID:       row.OrderID,
				UserID:        row.UserID,
				WalletID:      walletID,
				Amount:        total,
				SettledAt:     settledAt,
			},
		}); err != nil {
			return err
		}
		if err := s.notifier.Notify(ctx, tx, row.UserID, enums.NotificationTypeSystem,
			fmt.Sprintf("Payment of %s for order %s has settled.", orders.FormatTotal(total), row.OrderID)); err != nil {
			return err
		}
		if s.logg != nil {
			s.logg.Info(s.logg.WithFields(ctx, map[string]any{
				"transaction_id": row.ID.String(),
				"wallet_id":      walletID.String(),
				"amount":         orders.FormatTotal(total),
			}), "wallet settled")
		}
		return nil
	})
	if errors.Is(err, errAlreadySettled) {
		outcome = metrics.OutcomeReplayed
		row, err = s.repo.Reload(ctx, nil, id)
	}
	if err != nil {
		if outcome != metrics.OutcomeSettled {
			s.metrics.Settlement(outcome)
		}
		return nil, repoErr(err, "settle transaction")
	}
	s.metrics.Settlement(outcome)
	out := FromModel(*row)
	return &out, nil
}

// Fail marks a pending transaction as failed. Failing it again is a no-op.
func (s *service) Fail(ctx context.Context, actor visibility.Actor, id uuid.UUID) (*Transaction, error) {
	if err := s.requireSettler(actor, "fail"); err != nil {
		return nil, err
	}
	var (
		row    *models.Transaction
		failed bool
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		moved, err := s.repo.Transition(ctx, tx, id, enums.TransactionStatusFailed, nil)
		if err != nil {
			return err
		}
		row, err = s.repo.Reload(ctx, tx, id)
		if err != nil {
			return err
		}
		if !moved {
			if row.Status == enums.TransactionStatusFailed {
				return nil
			}
			return pkgerrors.New(pkgerrors.CodeStateConflict, "transaction is already "+row.Status.String())
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventTransactionFailed,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   row.ID,
			Actor:         &outbox.ActorRef{UserID: actor.ID, Role: actor.Role},
			Data:          outbox.TransactionFailedEvent{TransactionID: row.ID, OrderID: row.OrderID, UserID: row.UserID},
		}); err != nil {
			return err
		}
		failed = true
		return s.notifier.Notify(ctx, tx, row.UserID, enums.NotificationTypeSystem,
			fmt.Sprintf("Payment for order %s failed.", row.OrderID))
	})
	if err != nil {
		return nil, repoErr(err, "fail transaction")
	}
	if failed {
		s.metrics.Settlement(metrics.OutcomeFailed)
	}
	out := FromModel(*row)
	return &out, nil
}

func (s *service) requireSettler(actor visibility.Actor, action string) error {
	if _, err := visibility.MutableScope(actor, visibility.ResourceSettlement); err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeForbidden) {
			return pkgerrors.Denied(pkgerrors.DenialDetails{
				Role:     actor.Role.String(),
				Resource: string(visibility.ResourceTransaction),
				Action:   action,
				Reason:   "only admins may " + action + " a transaction",
			})
		}
		return err
	}
	return nil
}
