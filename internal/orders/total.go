package orders

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/filters"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

// TotalPlaces is the number of fractional digits totals are rendered with,
// matching order_items.price_at_purchase.
const TotalPlaces = 4

// Total sums price_at_purchase × quantity over the lines. An order with no
// lines totals zero. Totals are never stored.
func Total(lines []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.PriceAtPurchase.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// FormatTotal renders an amount with TotalPlaces fractional digits.
func FormatTotal(amount decimal.Decimal) string {
	return amount.StringFixed(TotalPlaces)
}

const totalHaving = `orders.id IN (SELECT o.id FROM orders o
	LEFT JOIN order_items oi ON oi.order_id = o.id
	GROUP BY o.id
	HAVING COALESCE(SUM(oi.price_at_purchase * oi.quantity), 0) `

// MinTotalScope keeps orders whose aggregated total is at least min.
func MinTotalScope(min decimal.Decimal) visibility.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(totalHaving+">= CAST(? AS NUMERIC))", filters.Numeric(min))
	}
}

// MaxTotalScope keeps orders whose aggregated total is at most max.
func MaxTotalScope(max decimal.Decimal) visibility.Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(totalHaving+"<= CAST(? AS NUMERIC))", filters.Numeric(max))
	}
}
