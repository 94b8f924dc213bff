package discounts

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/filters"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

const dateLayout = "2006-01-02"

// Today is the UTC calendar date of now at midnight.
func Today(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func expiryDate(d models.Discount) time.Time {
	return Today(d.ExpiresAt)
}

// IsActive: not expired before today and still under the redemption cap.
func IsActive(d models.Discount, now time.Time) bool {
	notExpired := !expiryDate(d).Before(Today(now))
	underCap := d.MaxRedemptions == nil || d.Redemptions < *d.MaxRedemptions
	return notExpired && underCap
}

// IsInactive: expired before today or the redemption cap is reached. Written
// independently of IsActive so tests can check they partition every discount.
func IsInactive(d models.Discount, now time.Time) bool {
	expired := expiryDate(d).Before(Today(now))
	capped := d.MaxRedemptions != nil && d.Redemptions >= *d.MaxRedemptions
	return expired || capped
}

// StatusOf names the status of d at now.
func StatusOf(d models.Discount, now time.Time) enums.DiscountStatus {
	if IsActive(d, now) {
		return enums.DiscountStatusActive
	}
	return enums.DiscountStatusInactive
}

// StatusScope is the SQL form of IsActive / IsInactive.
func StatusScope(status enums.DiscountStatus, now time.Time) (visibility.Scope, error) {
	today := Today(now).Format(dateLayout)
	switch status {
	case enums.DiscountStatusActive:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("discounts.expires_at >= ? AND (discounts.max_redemptions IS NULL OR discounts.redemptions < discounts.max_redemptions)", today)
		}, nil
	case enums.DiscountStatusInactive:
		return func(db *gorm.DB) *gorm.DB {
			return db.Where("(discounts.expires_at < ? OR (discounts.max_redemptions IS NOT NULL AND discounts.redemptions >= discounts.max_redemptions))", today)
		}, nil
	}
	return nil, pkgerrors.Field("status", "status must be active or inactive")
}

// ParseStatus accepts the filter value in any case.
func ParseStatus(raw string) (enums.DiscountStatus, error) {
	status := enums.DiscountStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !status.IsValid() {
		return "", pkgerrors.Field("status", "status must be active or inactive")
	}
	return status, nil
}

// SearchScope matches codes containing query (ignoring case) or names equal to it.
func SearchScope(query string) visibility.Scope {
	query = strings.TrimSpace(query)
	pattern := filters.ContainsPattern(query)
	clause := "(" + filters.ContainsClause("discounts.code") + " OR discounts.name = ?)"
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause, pattern, query)
	}
}

// Redeem takes one redemption in a single conditional update.
func Redeem(tx *gorm.DB, discountID any, now time.Time) error {
	res := tx.Model(&models.Discount{}).
		Where("id = ? AND expires_at >= ? AND (max_redemptions IS NULL OR redemptions < max_redemptions)", discountID, Today(now).Format(dateLayout)).
		UpdateColumn("redemptions", gorm.Expr("redemptions + 1"))
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "redeem discount")
	}
	if res.RowsAffected == 1 {
		return nil
	}
	var count int64
	if err := tx.Model(&models.Discount{}).Where("id = ?", discountID).Count(&count).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "redeem discount")
	}
	if count == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "discount not found")
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, "discount is not redeemable")
}
