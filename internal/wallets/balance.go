package wallets

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/filters"
)

// ErrWalletMissing is returned when a debit targets a user with no wallet.
var ErrWalletMissing = pkgerrors.New(pkgerrors.CodeConflict, "wallet missing for user")

// Debit takes amount from the user's wallet in one conditional update and
// returns the wallet id. It never lets the balance go negative.
func Debit(tx *gorm.DB, userID uuid.UUID, amount decimal.Decimal) (uuid.UUID, error) {
	if amount.IsNegative() {
		return uuid.Nil, pkgerrors.Field("amount", "amount cannot be negative")
	}
	res := tx.Model(&models.Wallet{}).
		Where("user_id = ? AND balance >= CAST(? AS NUMERIC)", userID, filters.Numeric(amount)).
		UpdateColumn("balance", gorm.Expr("balance - CAST(? AS NUMERIC)", filters.Numeric(amount)))
	if res.Error != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "debit wallet")
	}
	var wallet models.Wallet
	if err := tx.Select("id").Where("user_id = ?", userID).Take(&wallet).Error; err != nil {
		if res.RowsAffected == 0 {
			return uuid.Nil, ErrWalletMissing
		}
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debit wallet")
	}
	if res.RowsAffected == 0 {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeStateConflict, "insufficient wallet balance").
			WithDetails(map[string]string{"wallet_id": wallet.ID.String(), "required": amount.StringFixed(4)})
	}
	return wallet.ID, nil
}

// Credit adds a positive amount to a wallet.
func Credit(tx *gorm.DB, walletID uuid.UUID, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return pkgerrors.Field("amount", "amount must be greater than zero")
	}
	res := tx.Model(&models.Wallet{}).
		Where("id = ?", walletID).
		UpdateColumn("balance", gorm.Expr("balance + CAST(? AS NUMERIC)", filters.Numeric(amount)))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "credit wallet")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "wallet not found")
	}
	return nil
}
