package items

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db/dbtest"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	client, conn := dbtest.Client(t)
	svc, err := NewService(NewRepository(conn), client, nil)
	require.NoError(t, err)
	return svc, conn
}

func as(user models.User) visibility.Actor {
	return visibility.Actor{ID: user.ID, Role: user.Role}
}

func input(name, price, category string, qty int, location string) CreateInput {
	return CreateInput{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Category:    category,
		Quantity:    qty,
		Location:    location,
	}
}

func TestCreateItemWithInventory(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	vendor := dbtest.SeedUser(t, conn, enums.RoleVendor)

	created, err := svc.Create(ctx, as(vendor), input("Headphones", "59.99", "Electronics", 3, "Aisle 4"))
	require.NoError(t, err)
	require.Equal(t, vendor.ID, created.VendorID)
	require.Equal(t, enums.ItemCategoryElectronics, created.Category)
	require.True(t, created.InStock)
	require.Equal(t, 3, created.ItemQuantity)

	var inv models.Inventory
	require.NoError(t, conn.Where("item_id = ?", created.ID).Take(&inv).Error)
	require.Equal(t, "Aisle 4", inv.Location)

	empty, err := svc.Create(ctx, as(vendor), input("Poster", "5.00", "home", 0, ""))
	require.NoError(t, err)
	require.False(t, empty.InStock)
}

func TestCreateItemRules(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	vendor := dbtest.SeedUser(t, conn, enums.RoleVendor)
	customer := dbtest.SeedUser(t, conn, enums.RoleCustomer)
	admin := dbtest.SeedUser(t, conn, enums.RoleAdmin)

	_, err := svc.Create(ctx, as(customer), input("Bike", "100.00", "sports", 1, ""))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	for name, in := range map[string]CreateInput{
		"zero price":     input("Free", "0", "books", 1, ""),
		"three decimals": input("Odd", "1.005", "books", 1, ""),
		"bad category":   input("Car", "10.00", "vehicles", 1, ""),
		"blank name":     input(" ", "10.00", "books", 1, ""),
		"negative stock": input("Neg", "10.00", "books", -1, ""),
	} {
		_, err := svc.Create(ctx, as(vendor), in)
		if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}

	_, err = svc.Create(ctx, as(admin), input("Orphan", "10.00", "books", 1, ""))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	onBehalf := input("Consigned", "10.00", "books", 1, "")
	onBehalf.VendorID = &vendor.ID
	created, err := svc.Create(ctx, as(admin), onBehalf)
	require.NoError(t, err)
	require.Equal(t, vendor.ID, created.VendorID)
}

func TestListFiltersAfterRoleScope(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	acme := dbtest.SeedUser(t, conn, enums.RoleVendor)
	globex := dbtest.SeedUser(t, conn, enums.RoleVendor)
	customer := dbtest.SeedUser(t, conn, enums.RoleCustomer)

	_, err := svc.Create(ctx, as(acme), input("Desk Lamp", "25.00", "home", 4, "North Warehouse"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, as(acme), input("Floor Lamp", "80.00", "home", 0, "South Warehouse"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, as(globex), input("Novel", "12.50", "books", 9, "North Warehouse"))
	require.NoError(t, err)

	names := func(actor visibility.Actor, params ListParams) []string {
		t.Helper()
		page, err := svc.List(ctx, actor, params)
		require.NoError(t, err)
		out := []string{}
		for _, it := range page.Items {
			out = append(out, it.Name)
		}
		return out
	}

	require.ElementsMatch(t, []string{"Desk Lamp", "Floor Lamp", "Novel"}, names(as(customer), ListParams{}))
	require.ElementsMatch(t, []string{"Desk Lamp", "Floor Lamp"}, names(as(acme), ListParams{}))
	require.ElementsMatch(t, []string{"Desk Lamp"}, names(as(acme), ListParams{Location: "north"}))

	min := decimal.RequireFromString("20")
	max := decimal.RequireFromString("30")
	require.ElementsMatch(t, []string{"Desk Lamp"}, names(as(customer), ListParams{MinPrice: &min, MaxPrice: &max}))

	inStock := true
	require.ElementsMatch(t, []string{"Desk Lamp", "Novel"}, names(as(customer), ListParams{InStock: &inStock}))
	require.ElementsMatch(t, []string{"Desk Lamp", "Floor Lamp"}, names(as(customer), ListParams{Name: "LAMP"}))
	require.ElementsMatch(t, []string{"Novel"}, names(as(customer), ListParams{Category: "Books"}))

	_, err = svc.List(ctx, as(customer), ListParams{Category: "vehicles"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	acme := dbtest.SeedUser(t, conn, enums.RoleVendor)
	globex := dbtest.SeedUser(t, conn, enums.RoleVendor)
	customer := dbtest.SeedUser(t, conn, enums.RoleCustomer)

	created, err := svc.Create(ctx, as(acme), input("Anvil", "99.00", "home", 2, ""))
	require.NoError(t, err)

	price := decimal.RequireFromString("89.50")
	updated, err := svc.Update(ctx, as(acme), created.ID, UpdateInput{Price: &price})
	require.NoError(t, err)
	require.True(t, price.Equal(updated.Price))

	_, err = svc.Update(ctx, as(globex), created.ID, UpdateInput{Price: &price})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Update(ctx, as(customer), created.ID, UpdateInput{Price: &price})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	require.True(t, pkgerrors.IsCode(svc.Delete(ctx, as(globex), created.ID), pkgerrors.CodeNotFound))
	require.NoError(t, svc.Delete(ctx, as(acme), created.ID))

	var count int64
	require.NoError(t, conn.Model(&models.Inventory{}).Where("item_id = ?", created.ID).Count(&count).Error)
	require.Zero(t, count, "inventory must cascade with its item")
}

func TestDeleteItemWithOrderHistoryConflicts(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	vendor := dbtest.SeedUser(t, conn, enums.RoleVendor)
	buyer := dbtest.SeedUser(t, conn, enums.RoleCustomer)
	item := dbtest.SeedItem(t, conn, vendor.ID, "Kettle", "25.00", 5)
	dbtest.SeedOrder(t, conn, buyer.ID, enums.OrderStatusDelivered, models.OrderItem{
		ItemID: item.ID, Quantity: 1, PriceAtPurchase: decimal.RequireFromString("25.0000"),
	})

	err := svc.Delete(ctx, as(vendor), item.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)

	_, err = svc.Get(ctx, as(vendor), item.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, as(vendor), uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
