package visibility

import (
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

type scopeBuilder func(actor Actor) Scope

// rule is a read predicate plus an optional write predicate. A nil write means read-only.
type rule struct {
	read  scopeBuilder
	write scopeBuilder
}

type ruleTable map[Resource]rule

func (t ruleTable) resolve(role enums.Role, resource Resource, action Action, actor Actor) (Scope, error) {
	r, ok := t[resource]
	if !ok {
		return nil, deny(role, resource, action)
	}
	build := r.read
	if action == ActionWrite {
		build = r.write
	}
	if build == nil {
		return nil, deny(role, resource, action)
	}
	return build(actor), nil
}

type adminPolicy struct{}

func (adminPolicy) Role() enums.Role { return enums.RoleAdmin }

func (adminPolicy) Visible(Resource, Actor) (Scope, error) { return Unrestricted, nil }

func (adminPolicy) Mutable(Resource, Actor) (Scope, error) { return Unrestricted, nil }

type vendorPolicy struct{ table ruleTable }

func (vendorPolicy) Role() enums.Role { return enums.RoleVendor }

func (p vendorPolicy) Visible(resource Resource, actor Actor) (Scope, error) {
	return p.table.resolve(enums.RoleVendor, resource, ActionRead, actor)
}

func (p vendorPolicy) Mutable(resource Resource, actor Actor) (Scope, error) {
	return p.table.resolve(enums.RoleVendor, resource, ActionWrite, actor)
}

type customerPolicy struct{ table ruleTable }

func (customerPolicy) Role() enums.Role { return enums.RoleCustomer }

func (p customerPolicy) Visible(resource Resource, actor Actor) (Scope, error) {
	return p.table.resolve(enums.RoleCustomer, resource, ActionRead, actor)
}

func (p customerPolicy) Mutable(resource Resource, actor Actor) (Scope, error) {
	return p.table.resolve(enums.RoleCustomer, resource, ActionWrite, actor)
}

type deliveryPolicy struct{ table ruleTable }

func (deliveryPolicy) Role() enums.Role { return enums.RoleDelivery }

func (p deliveryPolicy) Visible(resource Resource, actor Actor) (Scope, error) {
	return p.table.resolve(enums.RoleDelivery, resource, ActionRead, actor)
}

func (p deliveryPolicy) Mutable(resource Resource, actor Actor) (Scope, error) {
	return p.table.resolve(enums.RoleDelivery, resource, ActionWrite, actor)
}

// Predicate builders. Subqueries keep the SQL portable between Postgres and sqlite.

func all(Actor) Scope { return Unrestricted }

func ownedBy(column string) scopeBuilder {
	return func(actor Actor) Scope {
		return func(db *gorm.DB) *gorm.DB {
			return db.Where(column+" = ?", actor.ID)
		}
	}
}

func viaVendorItems(column string) scopeBuilder {
	return func(actor Actor) Scope {
		return func(db *gorm.DB) *gorm.DB {
			return db.Where(column+" IN (SELECT items.id FROM items WHERE items.vendor_id = ?)", actor.ID)
		}
	}
}

func ordersWithVendorItems(column string) scopeBuilder {
	return func(actor Actor) Scope {
		return func(db *gorm.DB) *gorm.DB {
			return db.Where(column+` IN (SELECT oi.order_id FROM order_items oi
				JOIN items i ON i.id = oi.item_id WHERE i.vendor_id = ?)`, actor.ID)
		}
	}
}

func orderLinesOfBuyer(actor Actor) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("order_items.order_id IN (SELECT orders.id FROM orders WHERE orders.user_id = ?)", actor.ID)
	}
}

func customersOfVendor(actor Actor) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("users.role = ?", enums.RoleCustomer).
			Where(`users.id IN (SELECT o.user_id FROM orders o
				JOIN order_items oi ON oi.order_id = o.id
				JOIN items i ON i.id = oi.item_id WHERE i.vendor_id = ?)`, actor.ID)
	}
}

var vendorRules = ruleTable{
	ResourceUser:         {read: ownedBy("users.id"), write: ownedBy("users.id")},
	ResourceCustomer:     {read: customersOfVendor},
	ResourceAddress:      {read: ownedBy("addresses.user_id"), write: ownedBy("addresses.user_id")},
	ResourceWallet:       {read: ownedBy("wallets.user_id"), write: ownedBy("wallets.user_id")},
	ResourceNotification: {read: ownedBy("notifications.user_id"), write: ownedBy("notifications.user_id")},
	ResourceItem:         {read: ownedBy("items.vendor_id"), write: ownedBy("items.vendor_id")},
	ResourceDiscount:     {read: ownedBy("discounts.vendor_id"), write: ownedBy("discounts.vendor_id")},
	ResourceInventory:    {read: viaVendorItems("inventories.item_id"), write: viaVendorItems("inventories.item_id")},
	ResourceRating:       {read: viaVendorItems("ratings.item_id")},
	ResourceOrderItem:    {read: viaVendorItems("order_items.item_id")},
	ResourceOrder:        {read: ordersWithVendorItems("orders.id")},
	ResourceTransaction:  {read: ordersWithVendorItems("transactions.order_id")},
}

var customerRules = ruleTable{
	ResourceUser:         {read: ownedBy("users.id"), write: ownedBy("users.id")},
	ResourceAddress:      {read: ownedBy("addresses.user_id"), write: ownedBy("addresses.user_id")},
	ResourceWallet:       {read: ownedBy("wallets.user_id"), write: ownedBy("wallets.user_id")},
	ResourceNotification: {read: ownedBy("notifications.user_id"), write: ownedBy("notifications.user_id")},
	ResourceCart:         {read: ownedBy("carts.user_id"), write: ownedBy("carts.user_id")},
	ResourceBid:          {read: ownedBy("bids.user_id"), write: ownedBy("bids.user_id")},
	ResourceOrder:        {read: ownedBy("orders.user_id"), write: ownedBy("orders.user_id")},
	ResourceUsedItem:     {read: ownedBy("used_items.user_id"), write: ownedBy("used_items.user_id")},
	ResourceTransaction:  {read: ownedBy("transactions.user_id"), write: ownedBy("transactions.user_id")},
	ResourceOrderItem:    {read: orderLinesOfBuyer},
	ResourceItem:         {read: all},
	ResourceInventory:    {read: all},
	ResourceRating:       {read: all, write: ownedBy("ratings.user_id")},
}

var deliveryRules = ruleTable{
	ResourceUser:         {read: ownedBy("users.id"), write: ownedBy("users.id")},
	ResourceWallet:       {read: ownedBy("wallets.user_id"), write: ownedBy("wallets.user_id")},
	ResourceNotification: {read: ownedBy("notifications.user_id"), write: ownedBy("notifications.user_id")},
	ResourceAddress:      {read: all, write: ownedBy("addresses.user_id")},
	ResourceOrder:        {read: all, write: all},
	ResourceOrderItem:    {read: all},
}
