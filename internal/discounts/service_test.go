package discounts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db/dbtest"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

func newTestService(t *testing.T) (*service, *gorm.DB) {
	t.Helper()
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn), nil)
	require.NoError(t, err)
	impl := svc.(*service)
	impl.now = func() time.Time { return fixedNow }
	return impl, conn
}

func actorOf(id uuid.UUID, role enums.Role) visibility.Actor {
	return visibility.Actor{ID: id, Role: role}
}

func createInput(code, pct string, expiresInDays int) CreateInput {
	return CreateInput{
		Code:       code,
		Name:       code + " sale",
		Percentage: decimal.RequireFromString(pct),
		ExpiresAt:  dbtest.Date(fixedNow, expiresInDays).Format(dateLayout),
	}
}

func TestNewServiceRequiresRepository(t *testing.T) {
	_, err := NewService(nil, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestCreateByVendorAndDeniedForCustomer(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	vendor := dbtest.SeedUser(t, conn, enums.RoleVendor)
	customer := dbtest.SeedUser(t, conn, enums.RoleCustomer)

	created, err := svc.Create(ctx, actorOf(vendor.ID, enums.RoleVendor), createInput("SPRING20", "20", 10))
	require.NoError(t, err)
	require.Equal(t, vendor.ID, created.VendorID)
	require.Equal(t, enums.DiscountStatusActive, created.Status)
	require.Equal(t, "2026-03-25", created.ExpiresAt)

	_, err = svc.Create(ctx, actorOf(customer.ID, enums.RoleCustomer), createInput("NOPE", "5", 10))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "got %v", err)
}

func TestCreateValidation(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	vendor := dbtest.SeedUser(t, conn, enums.RoleVendor)
	actor := actorOf(vendor.ID, enums.RoleVendor)

	cases := map[string]CreateInput{
		"percentage above 100": createInput("A", "100.01", 1),
		"negative percentage":  createInput("B", "-1", 1),
		"three decimals":       createInput("C", "12.345", 1),
		"blank code":           createInput("  ", "10", 1),
	}
	for name, input := range cases {
		_, err := svc.Create(ctx, actor, input)
		require.Truef(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "%s: %v", name, err)
	}

	bad := createInput("D", "10", 1)
	bad.ExpiresAt = "15/03/2026"
	_, err := svc.Create(ctx, actor, bad)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = svc.Create(ctx, actor, createInput("EDGE", "100", 1))
	require.NoError(t, err)
}

func TestAdminMustTargetAVendor(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	admin := dbtest.SeedUser(t, conn, enums.RoleAdmin)
	vendor := dbtest.SeedUser(t, conn, enums.RoleVendor)
	customer := dbtest.SeedUser(t, conn, enums.RoleCustomer)
	actor := actorOf(admin.ID, enums.RoleAdmin)

	_, err := svc.Create(ctx, actor, createInput("SELF", "10", 5))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation), "admin owning a discount: %v", err)

	input := createInput("FORCUST", "10", 5)
	input.VendorID = &customer.ID
	_, err = svc.Create(ctx, actor, input)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	input = createInput("FORVEND", "10", 5)
	input.VendorID = &vendor.ID
	created, err := svc.Create(ctx, actor, input)
	require.NoError(t, err)
	require.Equal(t, vendor.ID, created.VendorID)
}

func TestVendorCannotCreateForAnotherVendor(t *testing.T) {
	svc, conn := newTestService(t)
	acme := dbtest.SeedUser(t, conn, enums.RoleVendor)
	globex := dbtest.SeedUser(t, conn, enums.RoleVendor)

	input := createInput("STEAL", "10", 5)
	input.VendorID = &globex.ID
	_, err := svc.Create(context.Background(), actorOf(acme.ID, enums.RoleVendor), input)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestDuplicateCodeConflicts(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	acme := dbtest.SeedUser(t, conn, enums.RoleVendor)
	globex := dbtest.SeedUser(t, conn, enums.RoleVendor)

	_, err := svc.Create(ctx, actorOf(acme.ID, enums.RoleVendor), createInput("SHARED", "10", 5))
	require.NoError(t, err)
	_, err = svc.Create(ctx, actorOf(globex.ID, enums.RoleVendor), createInput("SHARED", "15", 5))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "got %v", err)
}

func TestCodeUniquenessIgnoresCase(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	acme := dbtest.SeedUser(t, conn, enums.RoleVendor)
	globex := dbtest.SeedUser(t, conn, enums.RoleVendor)

	_, err := svc.Create(ctx, actorOf(acme.ID, enums.RoleVendor), createInput("SAVE10", "10", 5))
	require.NoError(t, err)
	for _, variant := range []string{"save10", "Save10", " sAvE10 "} {
		_, err = svc.Create(ctx, actorOf(globex.ID, enums.RoleVendor), createInput(variant, "15", 5))
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict), "%q: got %v", variant, err)
	}

	var n int64
	require.NoError(t, conn.Raw("SELECT COUNT(*) FROM discounts WHERE LOWER(code) = ?", "save10").Scan(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestVendorsOnlySeeTheirOwnDiscounts(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	acme := dbtest.SeedUser(t, conn, enums.RoleVendor)
	globex := dbtest.SeedUser(t, conn, enums.RoleVendor)
	admin := dbtest.SeedUser(t, conn, enums.RoleAdmin)

	mine, err := svc.Create(ctx, actorOf(acme.ID, enums.RoleVendor), createInput("ACME10", "10", 5))
	require.NoError(t, err)
	theirs, err := svc.Create(ctx, actorOf(globex.ID, enums.RoleVendor), createInput("GLOBEX10", "10", 5))
	require.NoError(t, err)

	page, err := svc.List(ctx, actorOf(acme.ID, enums.RoleVendor), ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, mine.ID, page.Items[0].ID)

	_, err = svc.Get(ctx, actorOf(acme.ID, enums.RoleVendor), theirs.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.True(t, pkgerrors.IsCode(svc.Delete(ctx, actorOf(acme.ID, enums.RoleVendor), theirs.ID), pkgerrors.CodeNotFound))

	all, err := svc.List(ctx, actorOf(admin.ID, enums.RoleAdmin), ListParams{})
	require.NoError(t, err)
	require.Len(t, all.Items, 2)
}

func TestListFilters(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	vendor := dbtest.SeedUser(t, conn, enums.RoleVendor)
	actor := actorOf(vendor.ID, enums.RoleVendor)

	spring := createInput("SPRING20", "20", 10)
	spring.MaxRedemptions = intPtr(10)
	_, err := svc.Create(ctx, actor, spring)
	require.NoError(t, err)
	_, err = svc.Create(ctx, actor, createInput("WINTER50", "50", -3))
	require.NoError(t, err)
	full := createInput("FULL5", "5", 10)
	full.MaxRedemptions = intPtr(2)
	fullRow, err := svc.Create(ctx, actor, full)
	require.NoError(t, err)
	require.NoError(t, conn.Exec("UPDATE discounts SET redemptions = 2 WHERE id = ?", fullRow.ID).Error)

	codes := func(params ListParams) []string {
		t.Helper()
		page, err := svc.List(ctx, actor, params)
		require.NoError(t, err)
		out := make([]string, 0, len(page.Items))
		for _, d := range page.Items {
			out = append(out, d.Code)
		}
		return out
	}

	require.ElementsMatch(t, []string{"SPRING20"}, codes(ListParams{Status: "Active"}))
	require.ElementsMatch(t, []string{"WINTER50", "FULL5"}, codes(ListParams{Status: "inactive"}))
	require.ElementsMatch(t, []string{"SPRING20"}, codes(ListParams{Search: "ring"}))
	require.ElementsMatch(t, []string{"WINTER50"}, codes(ListParams{Search: "WINTER50 sale"}))

	min := decimal.RequireFromString("10")
	max := decimal.RequireFromString("20")
	require.ElementsMatch(t, []string{"SPRING20"}, codes(ListParams{MinPercentage: &min, MaxPercentage: &max}))
	require.ElementsMatch(t, []string{"FULL5"}, codes(ListParams{Redemptions: intPtr(1)}))
	require.ElementsMatch(t, []string{"FULL5"}, codes(ListParams{MaxRedemptions: intPtr(5)}))

	_, err = svc.List(ctx, actor, ListParams{Status: "expired"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.List(ctx, actor, ListParams{Cursor: "%%%"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListPagesByAddedAt(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	vendor := dbtest.SeedUser(t, conn, enums.RoleVendor)
	actor := actorOf(vendor.ID, enums.RoleVendor)
	for _, code := range []string{"P1", "P2", "P3"} {
		_, err := svc.Create(ctx, actor, createInput(code, "10", 3))
		require.NoError(t, err)
	}

	first, err := svc.List(ctx, actor, ListParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.NotEmpty(t, first.Cursor)

	second, err := svc.List(ctx, actor, ListParams{Limit: 2, Cursor: first.Cursor})
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	require.Empty(t, second.Cursor)

	seen := map[uuid.UUID]bool{}
	for _, d := range append(first.Items, second.Items...) {
		require.False(t, seen[d.ID], "duplicate row across pages")
		seen[d.ID] = true
	}
}

func TestUpdateRules(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	vendor := dbtest.SeedUser(t, conn, enums.RoleVendor)
	actor := actorOf(vendor.ID, enums.RoleVendor)

	input := createInput("LIMITED", "10", 5)
	input.MaxRedemptions = intPtr(10)
	created, err := svc.Create(ctx, actor, input)
	require.NoError(t, err)
	require.NoError(t, conn.Exec("UPDATE discounts SET redemptions = 4 WHERE id = ?", created.ID).Error)

	_, err = svc.Update(ctx, actor, created.ID, UpdateInput{MaxRedemptions: intPtr(3)})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	// Redemptions taken after the row was read still hold the cap.
	err = svc.repo.Update(ctx, created.ID, map[string]any{"max_redemptions": 3})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	name := "Limited run"
	pct := decimal.RequireFromString("12.50")
	expires := "2026-03-10"
	updated, err := svc.Update(ctx, actor, created.ID, UpdateInput{
		Name: &name, Percentage: &pct, ExpiresAt: &expires, MaxRedemptions: intPtr(4),
	})
	require.NoError(t, err)
	require.Equal(t, "Limited run", updated.Name)
	require.True(t, pct.Equal(updated.Percentage))
	require.Equal(t, enums.DiscountStatusInactive, updated.Status)

	reloaded, err := svc.Get(ctx, actor, created.ID)
	require.NoError(t, err)
	require.Equal(t, "2026-03-10", reloaded.ExpiresAt)
	require.Equal(t, 4, *reloaded.MaxRedemptions)
	require.Equal(t, enums.DiscountStatusInactive, reloaded.Status)
}

func TestDeleteDiscount(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	vendor := dbtest.SeedUser(t, conn, enums.RoleVendor)
	actor := actorOf(vendor.ID, enums.RoleVendor)

	created, err := svc.Create(ctx, actor, createInput("GONE", "10", 5))
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, actor, created.ID))

	_, err = svc.Get(ctx, actor, created.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	require.True(t, pkgerrors.IsCode(svc.Delete(ctx, actor, created.ID), pkgerrors.CodeNotFound))
}
