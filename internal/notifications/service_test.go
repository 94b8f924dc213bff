package notifications

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/marketplace-backend/pkg/db/dbtest"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

func newTestService(t *testing.T) (Service, *Repository, func(enums.Role) visibility.Actor) {
	t.Helper()
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo)
	require.NoError(t, err)
	actorFor := func(role enums.Role) visibility.Actor {
		user := dbtest.SeedUser(t, conn, role)
		return visibility.Actor{ID: user.ID, Role: role}
	}
	return svc, repo, actorFor
}

func TestNotifyListAndFilter(t *testing.T) {
	svc, repo, actorFor := newTestService(t)
	ctx := context.Background()
	alice := actorFor(enums.RoleCustomer)
	bob := actorFor(enums.RoleCustomer)
	db := repo.base.DB(ctx)

	require.NoError(t, svc.Notify(ctx, db, alice.ID, enums.NotificationTypeSystem, "wallet settled"))
	require.NoError(t, svc.Notify(ctx, db, alice.ID, enums.NotificationTypeProduct, "bid accepted"))
	require.NoError(t, svc.Notify(ctx, db, bob.ID, enums.NotificationTypeSystem, "hello bob"))

	page, err := svc.List(ctx, alice, ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	page, err = svc.List(ctx, alice, ListParams{Type: "SYSTEM"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, "wallet settled", page.Items[0].Text)

	_, err = svc.List(ctx, alice, ListParams{Type: "loud"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestMarkReadScopesToOwner(t *testing.T) {
	svc, repo, actorFor := newTestService(t)
	ctx := context.Background()
	alice := actorFor(enums.RoleCustomer)
	bob := actorFor(enums.RoleVendor)

	row := models.Notification{UserID: alice.ID, Type: enums.NotificationTypeGeneral, Text: "hi"}
	require.NoError(t, repo.Create(ctx, nil, &row))

	_, err := svc.MarkRead(ctx, bob, row.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)

	updated, err := svc.MarkRead(ctx, alice, row.ID)
	require.NoError(t, err)
	require.True(t, updated.Read)

	unread := false
	page, err := svc.List(ctx, alice, ListParams{Read: &unread})
	require.NoError(t, err)
	require.Empty(t, page.Items)

	_, err = svc.MarkRead(ctx, alice, uuid.Nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestMarkAllReadOnlyTouchesOwnRows(t *testing.T) {
	svc, repo, actorFor := newTestService(t)
	ctx := context.Background()
	alice := actorFor(enums.RoleDelivery)
	bob := actorFor(enums.RoleCustomer)
	db := repo.base.DB(ctx)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Notify(ctx, db, alice.ID, enums.NotificationTypeGeneral, "route update"))
	}
	require.NoError(t, svc.Notify(ctx, db, bob.ID, enums.NotificationTypeGeneral, "promo"))

	count, err := svc.MarkAllRead(ctx, alice)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)

	unread := false
	page, err := svc.List(ctx, bob, ListParams{Read: &unread})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
}
