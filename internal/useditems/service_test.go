package useditems

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/marketplace-backend/pkg/db/dbtest"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

func TestCustomersOnlySeeTheirOwnListings(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()

	alice := dbtest.SeedUser(t, conn, enums.RoleCustomer)
	bob := dbtest.SeedUser(t, conn, enums.RoleCustomer)
	admin := dbtest.SeedUser(t, conn, enums.RoleAdmin)
	vendor := dbtest.SeedUser(t, conn, enums.RoleVendor)
	aliceActor := visibility.Actor{ID: alice.ID, Role: enums.RoleCustomer}
	bobActor := visibility.Actor{ID: bob.ID, Role: enums.RoleCustomer}

	guitar, err := svc.Create(ctx, aliceActor, CreateInput{
		Name: "Old Guitar", Price: decimal.RequireFromString("120.00"), Category: "toys", WarrantyPeriod: 3,
	})
	require.NoError(t, err)
	require.Equal(t, alice.ID, guitar.UserID)
	_, err = svc.Create(ctx, bobActor, CreateInput{
		Name: "Bike", Price: decimal.RequireFromString("80.00"), Category: "sports",
	})
	require.NoError(t, err)

	page, err := svc.List(ctx, aliceActor, ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, guitar.ID, page.Items[0].ID)

	_, err = svc.Get(ctx, bobActor, guitar.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	require.True(t, pkgerrors.IsCode(svc.Delete(ctx, bobActor, guitar.ID), pkgerrors.CodeNotFound))

	all, err := svc.List(ctx, visibility.Actor{ID: admin.ID, Role: enums.RoleAdmin}, ListParams{})
	require.NoError(t, err)
	require.Len(t, all.Items, 2)

	_, err = svc.List(ctx, visibility.Actor{ID: vendor.ID, Role: enums.RoleVendor}, ListParams{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	filtered, err := svc.List(ctx, visibility.Actor{ID: admin.ID, Role: enums.RoleAdmin}, ListParams{Name: "guitar", Category: "TOYS"})
	require.NoError(t, err)
	require.Len(t, filtered.Items, 1)
}

func TestUpdateUsedItem(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()
	owner := dbtest.SeedUser(t, conn, enums.RoleCustomer)
	actor := visibility.Actor{ID: owner.ID, Role: enums.RoleCustomer}

	listing, err := svc.Create(ctx, actor, CreateInput{
		Name: "Camera", Price: decimal.RequireFromString("45.00"), Category: "electronics",
	})
	require.NoError(t, err)

	bad := decimal.RequireFromString("10.001")
	_, err = svc.Update(ctx, actor, listing.ID, UpdateInput{Price: &bad})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	months := 6
	updated, err := svc.Update(ctx, actor, listing.ID, UpdateInput{WarrantyPeriod: &months})
	require.NoError(t, err)
	require.Equal(t, 6, updated.WarrantyPeriod)

	reloaded, err := svc.Get(ctx, actor, listing.ID)
	require.NoError(t, err)
	require.Equal(t, 6, reloaded.WarrantyPeriod)
}
