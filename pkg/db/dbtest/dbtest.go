// Package dbtest opens isolated in-memory sqlite stores for repository and service tests.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/db/schema"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

// Open returns a fresh schema-initialised sqlite database with foreign keys on.
func Open(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := schema.ApplySQLite(conn); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return conn
}

// Client wraps Open in the shared db.Client so services get a real WithTx.
func Client(t *testing.T) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := Open(t)
	return db.Wrap(conn), conn
}

// SeedUser inserts a user with the given role.
func SeedUser(t *testing.T, conn *gorm.DB, role enums.Role) models.User {
	t.Helper()
	id := uuid.New()
	user := models.User{
		ID:                 id,
		Username:           "user-" + id.String()[:8],
		Email:              id.String()[:8] + "@example.com",
		PasswordHash:       "hash",
		FirstName:          "Test",
		LastName:           string(role),
		Role:               role,
		Rating:             decimal.Zero,
		VerificationStatus: enums.VerificationUnverified,
	}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// SeedItem inserts an item with an inventory row holding qty units.
func SeedItem(t *testing.T, conn *gorm.DB, vendorID uuid.UUID, name, price string, qty int) models.Item {
	t.Helper()
	item := models.Item{
		VendorID:    vendorID,
		Name:        name,
		Description: name,
		Price:       decimal.RequireFromString(price),
		Category:    enums.ItemCategoryElectronics,
	}
	if err := conn.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	inv := models.Inventory{ItemID: item.ID, ItemQuantity: qty, InStock: qty > 0, Location: "warehouse"}
	if err := conn.Create(&inv).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}
	item.Inventory = &inv
	return item
}

// SeedOrder inserts an order for userID with one line per (item, price, qty).
func SeedOrder(t *testing.T, conn *gorm.DB, userID uuid.UUID, status enums.OrderStatus, lines ...models.OrderItem) models.Order {
	t.Helper()
	order := models.Order{UserID: userID, Status: status}
	if err := conn.Omit("Items").Create(&order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	for i := range lines {
		lines[i].OrderID = order.ID
		if err := conn.Create(&lines[i]).Error; err != nil {
			t.Fatalf("seed order item: %v", err)
		}
	}
	order.Items = lines
	return order
}

// Date returns the UTC midnight of the day offset days from now.
func Date(now time.Time, days int) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d+days, 0, 0, 0, 0, time.UTC)
}
