// Package visibility turns an authenticated actor into query predicates.
//
// Every role in enums.Role has its own Policy. A policy maps each resource it
// knows about to a read rule and an optional write rule; anything missing from
// the table is denied. Dispatch is a map lookup on the role, never a chain of
// role comparisons, so adding a role means adding a policy value.
package visibility

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

// Resource names a marketplace collection guarded by the filter.
type Resource string

const (
	ResourceUser          Resource = "user"
	ResourceCustomer      Resource = "customer"
	ResourceAddress       Resource = "address"
	ResourceWallet        Resource = "wallet"
	ResourceWalletFunding Resource = "wallet_funding"
	ResourceItem          Resource = "item"
	ResourceInventory     Resource = "inventory"
	ResourceUsedItem      Resource = "used_item"
	ResourceOrder         Resource = "order"
	ResourceOrderItem     Resource = "order_item"
	ResourceTransaction   Resource = "transaction"
	ResourceSettlement    Resource = "settlement"
	ResourceDiscount      Resource = "discount"
	ResourceCart          Resource = "cart"
	ResourceBid           Resource = "bid"
	ResourceNotification  Resource = "notification"
	ResourceRating        Resource = "rating"
	ResourceVerification  Resource = "verification"
)

// Action is what the actor wants to do with a resource.
type Action string

const (
	ActionRead  Action = "read"
	ActionWrite Action = "write"
)

// Actor is the authenticated principal a request runs as.
type Actor struct {
	ID   uuid.UUID
	Role enums.Role
}

// Authenticated reports whether the actor carries an identity and a known role.
func (a Actor) Authenticated() bool {
	return a.ID != uuid.Nil && a.Role.IsValid()
}

// IsAdmin reports whether the actor is an authenticated admin.
func (a Actor) IsAdmin() bool {
	return a.Authenticated() && a.Role == enums.RoleAdmin
}

// Scope narrows a query to the rows an actor may see or change.
type Scope func(*gorm.DB) *gorm.DB

// Unrestricted leaves the query untouched.
func Unrestricted(db *gorm.DB) *gorm.DB { return db }

// Policy is the per-role strategy.
type Policy interface {
	Role() enums.Role
	Visible(resource Resource, actor Actor) (Scope, error)
	Mutable(resource Resource, actor Actor) (Scope, error)
}

var policies = map[enums.Role]Policy{
	enums.RoleAdmin:    adminPolicy{},
	enums.RoleVendor:   vendorPolicy{table: vendorRules},
	enums.RoleCustomer: customerPolicy{table: customerRules},
	enums.RoleDelivery: deliveryPolicy{table: deliveryRules},
}

// ErrAuthenticationMissing is returned for anonymous or malformed actors.
var ErrAuthenticationMissing = pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication credentials were not provided")

// For returns the policy of a role.
func For(role enums.Role) (Policy, error) {
	policy, ok := policies[role]
	if !ok {
		return nil, ErrAuthenticationMissing
	}
	return policy, nil
}

// VisibleScope resolves the read predicate of resource for actor.
func VisibleScope(actor Actor, resource Resource) (Scope, error) {
	if !actor.Authenticated() {
		return nil, ErrAuthenticationMissing
	}
	policy, err := For(actor.Role)
	if err != nil {
		return nil, err
	}
	return policy.Visible(resource, actor)
}

// MutableScope resolves the write predicate of resource for actor.
func MutableScope(actor Actor, resource Resource) (Scope, error) {
	if !actor.Authenticated() {
		return nil, ErrAuthenticationMissing
	}
	policy, err := For(actor.Role)
	if err != nil {
		return nil, err
	}
	return policy.Mutable(resource, actor)
}

// Can reports whether the actor's role grants action on resource at all.
func Can(actor Actor, resource Resource, action Action) bool {
	var err error
	if action == ActionWrite {
		_, err = MutableScope(actor, resource)
	} else {
		_, err = VisibleScope(actor, resource)
	}
	return err == nil
}

// OwnerFor decides who owns a row being created. Only admins may create on
// behalf of someone else; everyone else always owns what they create.
func OwnerFor(actor Actor, requested *uuid.UUID) (uuid.UUID, error) {
	if requested == nil || *requested == uuid.Nil || *requested == actor.ID {
		return actor.ID, nil
	}
	if actor.Role == enums.RoleAdmin {
		return *requested, nil
	}
	return uuid.Nil, pkgerrors.Denied(pkgerrors.DenialDetails{
		Role:     actor.Role.String(),
		Resource: "owner",
		Action:   string(ActionWrite),
		Reason:   "only admins may act on behalf of another user",
	})
}

func deny(role enums.Role, resource Resource, action Action) error {
	return pkgerrors.Denied(pkgerrors.DenialDetails{
		Role:     role.String(),
		Resource: string(resource),
		Action:   string(action),
		Reason:   "role " + role.String() + " has no " + string(action) + " access to " + string(resource),
	})
}

// Apply is a small helper to run a scope against a query.
func (s Scope) Apply(db *gorm.DB) *gorm.DB {
	if s == nil {
		return db
	}
	return s(db)
}
