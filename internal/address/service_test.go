package address

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/marketplace-backend/pkg/db/dbtest"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

func sample() CreateInput {
	return CreateInput{
		StreetAddress: "  123   Demo St ",
		City:          "Example City",
		State:         "Oklahoma",
		PostalCode:    "73106",
		Country:       "us",
	}
}

func TestCreateNormalizesComponents(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	owner := visibility.Actor{ID: dbtest.SeedUser(t, conn, enums.RoleCustomer).ID, Role: enums.RoleCustomer}

	result, err := svc.Create(context.Background(), owner, sample())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if result.StreetAddress != "123 Demo St" {
		t.Fatalf("unexpected street %q", result.StreetAddress)
	}
	if result.Country != "US" {
		t.Fatalf("unexpected country %q", result.Country)
	}
	if result.UserID != owner.ID {
		t.Fatalf("unexpected owner %s", result.UserID)
	}

	missing := sample()
	missing.City = "   "
	_, err = svc.Create(context.Background(), owner, missing)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Equal(t, pkgerrors.FieldDetails{"city": "city is required"}, typed.Details())
}

func TestAddressesAreOwnRows(t *testing.T) {
	conn := dbtest.Open(t)
	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	ctx := context.Background()
	alice := visibility.Actor{ID: dbtest.SeedUser(t, conn, enums.RoleCustomer).ID, Role: enums.RoleCustomer}
	bob := visibility.Actor{ID: dbtest.SeedUser(t, conn, enums.RoleCustomer).ID, Role: enums.RoleCustomer}
	courier := visibility.Actor{ID: dbtest.SeedUser(t, conn, enums.RoleDelivery).ID, Role: enums.RoleDelivery}

	home, err := svc.Create(ctx, alice, sample())
	require.NoError(t, err)
	_, err = svc.Create(ctx, bob, sample())
	require.NoError(t, err)

	_, err = svc.Create(ctx, alice, CreateInput{UserID: &bob.ID, StreetAddress: "x", City: "x", State: "x", PostalCode: "x", Country: "x"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	page, err := svc.List(ctx, alice, ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	_, err = svc.Get(ctx, bob, home.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	seen, err := svc.Get(ctx, courier, home.ID)
	require.NoError(t, err)
	require.Equal(t, home.ID, seen.ID)
	city := "Tulsa"
	_, err = svc.Update(ctx, courier, home.ID, UpdateInput{City: &city})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	updated, err := svc.Update(ctx, alice, home.ID, UpdateInput{City: &city})
	require.NoError(t, err)
	require.Equal(t, "Tulsa", updated.City)
	require.Equal(t, "123 Demo St", updated.StreetAddress)

	blank := " "
	_, err = svc.Update(ctx, alice, home.ID, UpdateInput{PostalCode: &blank})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	require.NoError(t, svc.Delete(ctx, alice, home.ID))
	err = svc.Delete(ctx, alice, home.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	err = svc.Delete(ctx, alice, uuid.New())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
