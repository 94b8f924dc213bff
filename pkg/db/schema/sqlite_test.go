package schema_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/db/dbtest"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/db/schema"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

func statementFor(t *testing.T, table string) string {
	t.Helper()
	marker := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (", table)
	for _, stmt := range schema.SQLiteStatements {
		if strings.HasPrefix(stmt, marker) {
			return stmt
		}
	}
	t.Fatalf("no sqlite statement for %s", table)
	return ""
}

func TestSQLiteSchemaMatchesOwnershipGraph(t *testing.T) {
	for _, edge := range models.OwnershipGraph {
		stmt := statementFor(t, edge.Child)
		want := fmt.Sprintf("REFERENCES %s(id) ON DELETE %s", edge.Parent, edge.OnDelete)
		found := false
		for _, line := range strings.Split(stmt, "\n") {
			line = strings.TrimSpace(line)
			if strings.HasPrefix(line, edge.Column+" ") && strings.Contains(line, want) {
				found = true
				break
			}
		}
		require.Truef(t, found, "%s.%s missing %q", edge.Child, edge.Column, want)
	}
}

func TestCascadesFollowOwnershipGraph(t *testing.T) {
	conn := dbtest.Open(t)
	vendor := dbtest.SeedUser(t, conn, enums.RoleVendor)
	customer := dbtest.SeedUser(t, conn, enums.RoleCustomer)
	item := dbtest.SeedItem(t, conn, vendor.ID, "Lamp", "10.00", 3)

	order := dbtest.SeedOrder(t, conn, customer.ID, enums.OrderStatusPending, models.OrderItem{
		ItemID: item.ID, Quantity: 1, PriceAtPurchase: decimal.RequireFromString("10.0000"),
	})

	// Items referenced by order history are protected.
	err := conn.Delete(&models.Item{}, "id = ?", item.ID).Error
	require.Error(t, err)
	require.True(t, db.IsForeignKeyViolation(err), "expected fk violation, got %v", err)

	// Deleting the order cascades to its lines, then the item and its inventory can go.
	require.NoError(t, conn.Delete(&models.Order{}, "id = ?", order.ID).Error)
	var lines int64
	require.NoError(t, conn.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&lines).Error)
	require.Zero(t, lines)

	require.NoError(t, conn.Delete(&models.Item{}, "id = ?", item.ID).Error)
	var inventories int64
	require.NoError(t, conn.Model(&models.Inventory{}).Where("item_id = ?", item.ID).Count(&inventories).Error)
	require.Zero(t, inventories)
}

func TestDiscountDeleteNullsCartReference(t *testing.T) {
	conn := dbtest.Open(t)
	vendor := dbtest.SeedUser(t, conn, enums.RoleVendor)
	customer := dbtest.SeedUser(t, conn, enums.RoleCustomer)
	item := dbtest.SeedItem(t, conn, vendor.ID, "Mug", "4.50", 10)

	discount := models.Discount{
		VendorID:   vendor.ID,
		Code:       "MUG10",
		Name:       "Mug deal",
		Percentage: decimal.RequireFromString("10"),
		ExpiresAt:  dbtest.Date(item.CreatedAt, 5),
	}
	require.NoError(t, conn.Create(&discount).Error)
	cart := models.Cart{UserID: customer.ID, ItemID: item.ID, ItemQuantity: 1, DiscountID: &discount.ID}
	require.NoError(t, conn.Create(&cart).Error)

	require.NoError(t, conn.Delete(&models.Discount{}, "id = ?", discount.ID).Error)

	var reloaded models.Cart
	require.NoError(t, conn.First(&reloaded, "id = ?", cart.ID).Error)
	require.Nil(t, reloaded.DiscountID)
}

func TestRedemptionCapIsEnforcedByStore(t *testing.T) {
	conn := dbtest.Open(t)
	vendor := dbtest.SeedUser(t, conn, enums.RoleVendor)
	max := 1
	discount := models.Discount{
		ID:             uuid.New(),
		VendorID:       vendor.ID,
		Code:           "ONCE",
		Name:           "Once",
		Percentage:     decimal.RequireFromString("5"),
		ExpiresAt:      dbtest.Date(vendor.CreatedAt, 1),
		Redemptions:    1,
		MaxRedemptions: &max,
	}
	require.NoError(t, conn.Create(&discount).Error)

	err := conn.Model(&models.Discount{}).Where("id = ?", discount.ID).
		Update("redemptions", 2).Error
	require.Error(t, err, "check constraint must reject redemptions above the cap")
}
