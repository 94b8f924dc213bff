package bids

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
	svc     *service
	conn    *gorm.DB
	seller  visibility.Actor
	bidder  visibility.Actor
	rival   visibility.Actor
	listing models.UsedItem
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

	actor := func() visibility.Actor {
		return visibility.Actor{ID: dbtest.SeedUser(t, conn, enums.RoleCustomer).ID, Role: enums.RoleCustomer}
	}
	seller := actor()
	listing := models.UsedItem{
		UserID:         seller.ID,
		Name:           "Road bike",
		Description:    "Two seasons old",
		Price:          decimal.RequireFromString("350.00"),
		Category:       enums.ItemCategorySports,
		WarrantyPeriod: 0,
	}
	require.NoError(t, conn.Create(&listing).Error)
	return fixture{svc: impl, conn: conn, seller: seller, bidder: actor(), rival: actor(), listing: listing}
}

func amount(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil, nil, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestCreateRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vendor := visibility.Actor{ID: dbtest.SeedUser(t, f.conn, enums.RoleVendor).ID, Role: enums.RoleVendor}

	cases := []struct {
		name  string
		actor visibility.Actor
		input CreateInput
		code  pkgerrors.Code
	}{
		{"self bid", f.seller, CreateInput{UsedItemID: f.listing.ID, Amount: amount("300")}, pkgerrors.CodeValidation},
		{"missing listing", f.bidder, CreateInput{UsedItemID: uuid.New(), Amount: amount("300")}, pkgerrors.CodeValidation},
		{"zero amount", f.bidder, CreateInput{UsedItemID: f.listing.ID, Amount: decimal.Zero}, pkgerrors.CodeValidation},
		{"sub cent", f.bidder, CreateInput{UsedItemID: f.listing.ID, Amount: amount("10.001")}, pkgerrors.CodeValidation},
		{"vendor", vendor, CreateInput{UsedItemID: f.listing.ID, Amount: amount("300")}, pkgerrors.CodeForbidden},
		{"on behalf", f.bidder, CreateInput{UserID: &f.rival.ID, UsedItemID: f.listing.ID, Amount: amount("300")}, pkgerrors.CodeForbidden},
	}
	for _, tc := range cases {
		_, err := f.svc.Create(ctx, tc.actor, tc.input)
		if !pkgerrors.IsCode(err, tc.code) {
			t.Fatalf("%s: expected %s got %v", tc.name, tc.code, err)
		}
	}

	_, err := f.svc.Create(ctx, f.seller, CreateInput{UsedItemID: f.listing.ID, Amount: amount("300")})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(pkgerrors.FieldDetails)
	require.True(t, ok, "details %T", typed.Details())
	require.Equal(t, "cannot bid on your own listing", details["used_item_id"])

	bid, err := f.svc.Create(ctx, f.bidder, CreateInput{UsedItemID: f.listing.ID, Amount: amount("310.5")})
	require.NoError(t, err)
	require.Equal(t, "310.50", bid.Amount)
	require.Equal(t, enums.BidStatusBidding, bid.Status)
}

func TestCompleteIsTerminalAndClosesListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	winner, err := f.svc.Create(ctx, f.bidder, CreateInput{UsedItemID: f.listing.ID, Amount: amount("320")})
	require.NoError(t, err)
	loser, err := f.svc.Create(ctx, f.rival, CreateInput{UsedItemID: f.listing.ID, Amount: amount("300")})
	require.NoError(t, err)

	_, err = f.svc.Complete(ctx, f.rival, winner.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	done, err := f.svc.Complete(ctx, f.seller, winner.ID)
	require.NoError(t, err)
	require.Equal(t, enums.BidStatusCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)
	require.True(t, done.CompletedAt.Equal(fixedNow))

	_, err = f.svc.Complete(ctx, f.seller, winner.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.Complete(ctx, f.seller, loser.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict), "got %v", err)

	_, err = f.svc.Update(ctx, f.bidder, winner.ID, UpdateInput{Amount: amount("1")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	err = f.svc.Delete(ctx, f.bidder, winner.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = f.svc.Create(ctx, f.rival, CreateInput{UsedItemID: f.listing.ID, Amount: amount("400")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	var events int64
	require.NoError(t, f.conn.Model(&models.OutboxEvent{}).Where("event_type = ?", enums.EventBidCompleted).Count(&events).Error)
	require.EqualValues(t, 1, events)

	var notes []models.Notification
	require.NoError(t, f.conn.Where("user_id = ?", f.bidder.ID).Find(&notes).Error)
	require.Len(t, notes, 1)
	require.Contains(t, notes[0].Text, "320.00")
}

func TestCompleteByNonSellerDoesNotRevealBids(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	vendor := visibility.Actor{ID: dbtest.SeedUser(t, f.conn, enums.RoleVendor).ID, Role: enums.RoleVendor}

	bid, err := f.svc.Create(ctx, f.bidder, CreateInput{UsedItemID: f.listing.ID, Amount: amount("320")})
	require.NoError(t, err)

	// The bidder can see the bid, so the refusal is explicit.
	_, err = f.svc.Complete(ctx, f.bidder, bid.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden), "got %v", err)

	cases := []struct {
		name  string
		actor visibility.Actor
		id    uuid.UUID
	}{
		{"stranger existing", f.rival, bid.ID},
		{"stranger missing", f.rival, uuid.New()},
		{"vendor existing", vendor, bid.ID},
		{"seller missing", f.seller, uuid.New()},
	}
	for _, tc := range cases {
		_, err := f.svc.Complete(ctx, tc.actor, tc.id)
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			t.Fatalf("%s: expected not found got %v", tc.name, err)
		}
		if typed.Message() != "bid not found" {
			t.Fatalf("%s: unexpected message %q", tc.name, typed.Message())
		}
	}

	stored, err := f.svc.Get(ctx, f.bidder, bid.ID)
	require.NoError(t, err)
	require.Equal(t, enums.BidStatusBidding, stored.Status)
}

func TestListingBidsOfMissingListing(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ListForListing(context.Background(), f.seller, uuid.New(), ListParams{})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
	require.Equal(t, "used item not found", typed.Message())
}

func TestAdminMayComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := visibility.Actor{ID: dbtest.SeedUser(t, f.conn, enums.RoleAdmin).ID, Role: enums.RoleAdmin}

	bid, err := f.svc.Create(ctx, f.bidder, CreateInput{UsedItemID: f.listing.ID, Amount: amount("320")})
	require.NoError(t, err)
	done, err := f.svc.Complete(ctx, admin, bid.ID)
	require.NoError(t, err)
	require.Equal(t, enums.BidStatusCompleted, done.Status)
}

func TestUpdateAndDeleteWhileBidding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bid, err := f.svc.Create(ctx, f.bidder, CreateInput{UsedItemID: f.listing.ID, Amount: amount("320")})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.rival, bid.ID, UpdateInput{Amount: amount("330")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	updated, err := f.svc.Update(ctx, f.bidder, bid.ID, UpdateInput{Amount: amount("330")})
	require.NoError(t, err)
	require.Equal(t, "330.00", updated.Amount)

	_, err = f.svc.Update(ctx, f.bidder, bid.ID, UpdateInput{Amount: amount("-1")})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	require.NoError(t, f.svc.Delete(ctx, f.bidder, bid.ID))
	_, err = f.svc.Get(ctx, f.bidder, bid.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListScopes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.bidder, CreateInput{UsedItemID: f.listing.ID, Amount: amount("320")})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.rival, CreateInput{UsedItemID: f.listing.ID, Amount: amount("300")})
	require.NoError(t, err)

	mine, err := f.svc.List(ctx, f.bidder, ListParams{})
	require.NoError(t, err)
	require.Len(t, mine.Items, 1)
	require.Equal(t, f.bidder.ID, mine.Items[0].UserID)

	other := uuid.New()
	none, err := f.svc.List(ctx, f.bidder, ListParams{UsedItemID: &other})
	require.NoError(t, err)
	require.Empty(t, none.Items)

	// the seller placed no bids but sees every bid on the listing
	seen, err := f.svc.List(ctx, f.seller, ListParams{})
	require.NoError(t, err)
	require.Empty(t, seen.Items)
	all, err := f.svc.ListForListing(ctx, f.seller, f.listing.ID, ListParams{})
	require.NoError(t, err)
	require.Len(t, all.Items, 2)

	_, err = f.svc.ListForListing(ctx, f.bidder, f.listing.ID, ListParams{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
	_, err = f.svc.ListForListing(ctx, f.seller, uuid.New(), ListParams{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	vendor := visibility.Actor{ID: dbtest.SeedUser(t, f.conn, enums.RoleVendor).ID, Role: enums.RoleVendor}
	_, err = f.svc.List(ctx, vendor, ListParams{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}
