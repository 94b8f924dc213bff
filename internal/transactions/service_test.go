package transactions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/marketplace-backend/pkg/db/dbtest"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/visibility"
)

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil, nil, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestCreateRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stranger := visibility.Actor{ID: dbtest.SeedUser(t, f.conn, enums.RoleCustomer).ID, Role: enums.RoleCustomer}

	txn := f.open(t, "0xabc")
	require.Equal(t, enums.TransactionStatusPending, txn.Status)
	require.Equal(t, f.buyer.ID, txn.UserID)
	other := f.anotherOrder(t)

	cases := []struct {
		name  string
		actor visibility.Actor
		input CreateInput
		code  pkgerrors.Code
	}{
		{"duplicate hash", f.buyer, CreateInput{OrderID: other.ID, TransactionHash: "0xabc"}, pkgerrors.CodeConflict},
		{"order already open", f.buyer, CreateInput{OrderID: f.order.ID, TransactionHash: "0xnew"}, pkgerrors.CodeConflict},
		{"blank hash", f.buyer, CreateInput{OrderID: f.order.ID, TransactionHash: " "}, pkgerrors.CodeValidation},
		{"foreign order", stranger, CreateInput{OrderID: f.order.ID, TransactionHash: "0xdef"}, pkgerrors.CodeValidation},
		{"vendor", f.vendor, CreateInput{OrderID: f.order.ID, TransactionHash: "0xdef"}, pkgerrors.CodeForbidden},
	}
	for _, tc := range cases {
		_, err := f.svc.Create(ctx, tc.actor, tc.input)
		if !pkgerrors.IsCode(err, tc.code) {
			t.Fatalf("%s: expected %s got %v", tc.name, tc.code, err)
		}
	}

	admin, err := f.svc.Create(ctx, f.admin, CreateInput{OrderID: other.ID, TransactionHash: "0xadmin"})
	require.NoError(t, err)
	require.Equal(t, f.buyer.ID, admin.UserID)
}

func TestListVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.open(t, "0x1")
	_, err := f.svc.Create(ctx, f.buyer, CreateInput{OrderID: f.anotherOrder(t).ID, TransactionHash: "0x2"})
	require.NoError(t, err)

	page, err := f.svc.List(ctx, f.buyer, ListParams{})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	page, err = f.svc.List(ctx, f.vendor, ListParams{Status: "PENDING"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	stranger := visibility.Actor{ID: dbtest.SeedUser(t, f.conn, enums.RoleCustomer).ID, Role: enums.RoleCustomer}
	page, err = f.svc.List(ctx, stranger, ListParams{})
	require.NoError(t, err)
	require.Empty(t, page.Items)

	_, err = f.svc.List(ctx, f.buyer, ListParams{Status: "refunded"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}
