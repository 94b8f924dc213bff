package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/internal/notifications"
	"github.com/angelmondragon/marketplace-backend/pkg/db/dbtest"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/outbox"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

var fixedNow = time.Date(2026, 3, 15, 17, 45, 0, 0, time.UTC)

type fixture struct {
	svc    *service
	conn   *gorm.DB
	vendor models.User
	buyer  models.User
	mug    models.Item
	lamp   models.Item
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	client, conn := dbtest.Client(t)
	notifier, err := notifications.NewService(notifications.NewRepository(conn))
	require.NoError(t, err)
	svc, err := NewService(NewRepository(conn), client, outbox.NewService(outbox.NewRepository(conn), nil), notifier, nil, nil)
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = func() time.Time { return fixedNow }

	vendor := dbtest.SeedUser(t, conn, enums.RoleVendor)
	return fixture{
		svc:    impl,
		conn:   conn,
		vendor: vendor,
		buyer:  dbtest.SeedUser(t, conn, enums.RoleCustomer),
		mug:    dbtest.SeedItem(t, conn, vendor.ID, "Mug", "19.99", 5),
		lamp:   dbtest.SeedItem(t, conn, vendor.ID, "Desk Lamp", "24.99", 1),
	}
}

func actorOf(id uuid.UUID, role enums.Role) visibility.Actor {
	return visibility.Actor{ID: id, Role: role}
}

func stockOf(t *testing.T, conn *gorm.DB, itemID uuid.UUID) models.Inventory {
	t.Helper()
	var inv models.Inventory
	require.NoError(t, conn.Where("item_id = ?", itemID).Take(&inv).Error)
	return inv
}

func eventsOf(t *testing.T, conn *gorm.DB, kind enums.OutboxEventType) []models.OutboxEvent {
	t.Helper()
	var rows []models.OutboxEvent
	require.NoError(t, conn.Where("event_type = ?", kind).Find(&rows).Error)
	return rows
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil, nil, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestCreateSnapshotsPricesAndTakesStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, actorOf(f.buyer.ID, enums.RoleCustomer), CreateInput{Lines: []LineInput{
		{ItemID: f.mug.ID, Quantity: 2},
		{ItemID: f.lamp.ID, Quantity: 1},
	}})
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusPending, order.Status)
	require.Equal(t, f.buyer.ID, order.UserID)
	require.Equal(t, "64.9700", order.Total)
	require.Len(t, order.Items, 2)

	require.Equal(t, 3, stockOf(t, f.conn, f.mug.ID).ItemQuantity)
	lamp := stockOf(t, f.conn, f.lamp.ID)
	require.Equal(t, 0, lamp.ItemQuantity)
	require.False(t, lamp.InStock)

	// later price changes do not touch the snapshot
	require.NoError(t, f.conn.Model(&models.Item{}).Where("id = ?", f.mug.ID).Update("price", "99.00").Error)
	again, err := f.svc.Get(ctx, actorOf(f.buyer.ID, enums.RoleCustomer), order.ID)
	require.NoError(t, err)
	require.Equal(t, "64.9700", again.Total)

	require.Len(t, eventsOf(t, f.conn, enums.EventOrderPlaced), 1)
}

func TestCreateRejectsInsufficientStockAtomically(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, actorOf(f.buyer.ID, enums.RoleCustomer), CreateInput{Lines: []LineInput{
		{ItemID: f.mug.ID, Quantity: 1},
		{ItemID: f.lamp.ID, Quantity: 2},
	}})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	require.Equal(t, 5, stockOf(t, f.conn, f.mug.ID).ItemQuantity)
	var count int64
	require.NoError(t, f.conn.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestCreateRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := actorOf(f.buyer.ID, enums.RoleCustomer)
	admin := actorOf(dbtest.SeedUser(t, f.conn, enums.RoleAdmin).ID, enums.RoleAdmin)

	cases := []struct {
		name  string
		actor visibility.Actor
		input CreateInput
		code  pkgerrors.Code
	}{
		{"no lines", buyer, CreateInput{}, pkgerrors.CodeValidation},
		{"zero quantity", buyer, CreateInput{Lines: []LineInput{{ItemID: f.mug.ID}}}, pkgerrors.CodeValidation},
		{"unknown item", buyer, CreateInput{Lines: []LineInput{{ItemID: uuid.New(), Quantity: 1}}}, pkgerrors.CodeValidation},
		{"vendor", actorOf(f.vendor.ID, enums.RoleVendor), CreateInput{Lines: []LineInput{{ItemID: f.mug.ID, Quantity: 1}}}, pkgerrors.CodeForbidden},
		{"on behalf", buyer, CreateInput{UserID: &admin.ID, Lines: []LineInput{{ItemID: f.mug.ID, Quantity: 1}}}, pkgerrors.CodeForbidden},
		{"admin for vendor", admin, CreateInput{UserID: &f.vendor.ID, Lines: []LineInput{{ItemID: f.mug.ID, Quantity: 1}}}, pkgerrors.CodeValidation},
		{"anonymous", visibility.Actor{}, CreateInput{}, pkgerrors.CodeUnauthorized},
	}
	for _, tc := range cases {
		_, err := f.svc.Create(ctx, tc.actor, tc.input)
		if !pkgerrors.IsCode(err, tc.code) {
			t.Fatalf("%s: expected %s got %v", tc.name, tc.code, err)
		}
	}

	order, err := f.svc.Create(ctx, admin, CreateInput{UserID: &f.buyer.ID, Lines: []LineInput{{ItemID: f.mug.ID, Quantity: 1}}})
	require.NoError(t, err)
	require.Equal(t, f.buyer.ID, order.UserID)
}

func TestCheckoutAppliesDiscountAndEmptiesCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	max := 1
	discount := models.Discount{
		VendorID:       f.vendor.ID,
		Code:           "MUG10",
		Name:           "Mug promo",
		Percentage:     decimal.RequireFromString("10"),
		ExpiresAt:      dbtest.Date(fixedNow, 3),
		MaxRedemptions: &max,
	}
	require.NoError(t, f.conn.Create(&discount).Error)
	require.NoError(t, f.conn.Create(&models.Cart{UserID: f.buyer.ID, ItemID: f.mug.ID, ItemQuantity: 2, DiscountID: &discount.ID}).Error)
	require.NoError(t, f.conn.Create(&models.Cart{UserID: f.buyer.ID, ItemID: f.lamp.ID, ItemQuantity: 1}).Error)

	order, err := f.svc.Checkout(ctx, actorOf(f.buyer.ID, enums.RoleCustomer))
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	for _, line := range order.Items {
		if line.ItemID == f.mug.ID {
			require.Equal(t, "17.9910", line.PriceAtPurchase)
			require.NotNil(t, line.DiscountID)
		} else {
			require.Equal(t, "24.9900", line.PriceAtPurchase)
			require.Nil(t, line.DiscountID)
		}
	}
	require.Equal(t, "60.9720", order.Total)

	var left int64
	require.NoError(t, f.conn.Model(&models.Cart{}).Where("user_id = ?", f.buyer.ID).Count(&left).Error)
	require.Zero(t, left)

	var stored models.Discount
	require.NoError(t, f.conn.Take(&stored, "id = ?", discount.ID).Error)
	require.Equal(t, 1, stored.Redemptions)
	require.Len(t, eventsOf(t, f.conn, enums.EventDiscountRedeemed), 1)

	// the single redemption is used up, so a second checkout with the code fails whole
	require.NoError(t, f.conn.Create(&models.Cart{UserID: f.buyer.ID, ItemID: f.mug.ID, ItemQuantity: 1, DiscountID: &discount.ID}).Error)
	_, err = f.svc.Checkout(ctx, actorOf(f.buyer.ID, enums.RoleCustomer))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)
	require.Equal(t, 3, stockOf(t, f.conn, f.mug.ID).ItemQuantity)
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Checkout(context.Background(), actorOf(f.buyer.ID, enums.RoleCustomer))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUpdateStatusTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := actorOf(f.buyer.ID, enums.RoleCustomer)
	courier := actorOf(dbtest.SeedUser(t, f.conn, enums.RoleDelivery).ID, enums.RoleDelivery)
	vendor := actorOf(f.vendor.ID, enums.RoleVendor)

	order, err := f.svc.Create(ctx, buyer, CreateInput{Lines: []LineInput{{ItemID: f.mug.ID, Quantity: 1}}})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, vendor, order.ID, "shipped")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "got %v", err)

	_, err = f.svc.UpdateStatus(ctx, buyer, order.ID, "shipped")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "got %v", err)

	_, err = f.svc.UpdateStatus(ctx, courier, order.ID, "delivered")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	_, err = f.svc.UpdateStatus(ctx, courier, order.ID, "teleported")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	shipped, err := f.svc.UpdateStatus(ctx, courier, order.ID, "Shipped")
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusShipped, shipped.Status)

	// customers may only cancel while pending
	_, err = f.svc.UpdateStatus(ctx, buyer, order.ID, "cancelled")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "got %v", err)

	delivered, err := f.svc.UpdateStatus(ctx, courier, order.ID, "delivered")
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusDelivered, delivered.Status)

	_, err = f.svc.UpdateStatus(ctx, courier, order.ID, "cancelled")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	require.Len(t, eventsOf(t, f.conn, enums.EventOrderStatusChanged), 2)
	var notes int64
	require.NoError(t, f.conn.Model(&models.Notification{}).Where("user_id = ?", f.buyer.ID).Count(&notes).Error)
	require.EqualValues(t, 2, notes)
}

func TestCustomerCancelsOwnPendingOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := actorOf(f.buyer.ID, enums.RoleCustomer)
	other := actorOf(dbtest.SeedUser(t, f.conn, enums.RoleCustomer).ID, enums.RoleCustomer)

	order, err := f.svc.Create(ctx, buyer, CreateInput{Lines: []LineInput{{ItemID: f.mug.ID, Quantity: 1}}})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, other, order.ID, "cancelled")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	cancelled, err := f.svc.UpdateStatus(ctx, buyer, order.ID, "cancelled")
	require.NoError(t, err)
	require.Equal(t, enums.OrderStatusCancelled, cancelled.Status)
}

func TestListFiltersAndVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := actorOf(f.buyer.ID, enums.RoleCustomer)
	other := actorOf(dbtest.SeedUser(t, f.conn, enums.RoleCustomer).ID, enums.RoleCustomer)

	_, err := f.svc.Create(ctx, buyer, CreateInput{Lines: []LineInput{{ItemID: f.mug.ID, Quantity: 2}, {ItemID: f.lamp.ID, Quantity: 1}}})
	require.NoError(t, err)
	small, err := f.svc.Create(ctx, other, CreateInput{Lines: []LineInput{{ItemID: f.mug.ID, Quantity: 1}}})
	require.NoError(t, err)

	page, err := f.svc.List(ctx, buyer, ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	admin := actorOf(dbtest.SeedUser(t, f.conn, enums.RoleAdmin).ID, enums.RoleAdmin)
	cases := []struct {
		name   string
		params ListParams
		want   int
	}{
		{"all", ListParams{}, 2},
		{"name", ListParams{Name: "lamp"}, 1},
		{"status", ListParams{Status: "PENDING"}, 2},
		{"other status", ListParams{Status: "shipped"}, 0},
		{"min total", ListParams{MinTotal: ptr(decimal.RequireFromString("50"))}, 1},
		{"max total", ListParams{MaxTotal: ptr(decimal.RequireFromString("20"))}, 1},
		{"last year", ListParams{Date: "lastyear"}, 0},
	}
	for _, tc := range cases {
		page, err := f.svc.List(ctx, admin, tc.params)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if len(page.Items) != tc.want {
			t.Fatalf("%s: expected %d got %d", tc.name, tc.want, len(page.Items))
		}
	}

	page, err = f.svc.List(ctx, admin, ListParams{MaxTotal: ptr(decimal.RequireFromString("20"))})
	require.NoError(t, err)
	require.Equal(t, small.ID, page.Items[0].ID)

	_, err = f.svc.List(ctx, admin, ListParams{Status: "lost"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = f.svc.List(ctx, admin, ListParams{Date: "someday"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = f.svc.List(ctx, admin, ListParams{Cursor: "%%%"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestVendorSeesOrdersContainingTheirItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := actorOf(f.buyer.ID, enums.RoleCustomer)
	rival := dbtest.SeedUser(t, f.conn, enums.RoleVendor)
	gadget := dbtest.SeedItem(t, f.conn, rival.ID, "Gadget", "5.00", 3)

	_, err := f.svc.Create(ctx, buyer, CreateInput{Lines: []LineInput{{ItemID: f.mug.ID, Quantity: 1}}})
	require.NoError(t, err)
	theirs, err := f.svc.Create(ctx, buyer, CreateInput{Lines: []LineInput{{ItemID: gadget.ID, Quantity: 1}}})
	require.NoError(t, err)

	page, err := f.svc.List(ctx, actorOf(f.vendor.ID, enums.RoleVendor), ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	_, err = f.svc.Get(ctx, actorOf(f.vendor.ID, enums.RoleVendor), theirs.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	lines, err := f.svc.ListLines(ctx, actorOf(rival.ID, enums.RoleVendor), LineListParams{Status: "Pending"})
	require.NoError(t, err)
	require.Len(t, lines.Items, 1)
	require.Equal(t, gadget.ID, lines.Items[0].ItemID)
}

func TestDeleteIsAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := actorOf(f.buyer.ID, enums.RoleCustomer)
	order, err := f.svc.Create(ctx, buyer, CreateInput{Lines: []LineInput{{ItemID: f.mug.ID, Quantity: 1}}})
	require.NoError(t, err)

	err = f.svc.Delete(ctx, buyer, order.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "got %v", err)

	admin := actorOf(dbtest.SeedUser(t, f.conn, enums.RoleAdmin).ID, enums.RoleAdmin)
	require.NoError(t, f.svc.Delete(ctx, admin, order.ID))

	var lines int64
	require.NoError(t, f.conn.Model(&models.OrderItem{}).Where("order_id = ?", order.ID).Count(&lines).Error)
	require.Zero(t, lines)
}
