package models

// OnDelete is the referential action taken on a child row when its parent goes away.
type OnDelete string

const (
	OnDeleteCascade  OnDelete = "CASCADE"
	OnDeleteRestrict OnDelete = "RESTRICT"
	OnDeleteSetNull  OnDelete = "SET NULL"
)

// Edge is one parent -> child foreign key in the ownership graph.
type Edge struct {
	Parent   string
	Child    string
	Column   string
	OnDelete OnDelete
}

// OwnershipGraph lists every foreign key and what deleting the parent does.
// Migrations must declare exactly these actions.
var OwnershipGraph = []Edge{
	{Parent: "users", Child: "addresses", Column: "user_id", OnDelete: OnDeleteCascade},
	{Parent: "users", Child: "wallets", Column: "user_id", OnDelete: OnDeleteCascade},
	{Parent: "users", Child: "items", Column: "vendor_id", OnDelete: OnDeleteCascade},
	{Parent: "users", Child: "used_items", Column: "user_id", OnDelete: OnDeleteCascade},
	{Parent: "users", Child: "orders", Column: "user_id", OnDelete: OnDeleteCascade},
	{Parent: "users", Child: "discounts", Column: "vendor_id", OnDelete: OnDeleteCascade},
	{Parent: "users", Child: "carts", Column: "user_id", OnDelete: OnDeleteCascade},
	{Parent: "users", Child: "bids", Column: "user_id", OnDelete: OnDeleteCascade},
	{Parent: "users", Child: "transactions", Column: "user_id", OnDelete: OnDeleteCascade},
	{Parent: "users", Child: "notifications", Column: "user_id", OnDelete: OnDeleteCascade},
	{Parent: "users", Child: "ratings", Column: "user_id", OnDelete: OnDeleteCascade},
	{Parent: "items", Child: "inventories", Column: "item_id", OnDelete: OnDeleteCascade},
	{Parent: "items", Child: "carts", Column: "item_id", OnDelete: OnDeleteCascade},
	{Parent: "items", Child: "ratings", Column: "item_id", OnDelete: OnDeleteCascade},
	{Parent: "items", Child: "order_items", Column: "item_id", OnDelete: OnDeleteRestrict},
	{Parent: "orders", Child: "order_items", Column: "order_id", OnDelete: OnDeleteCascade},
	{Parent: "orders", Child: "transactions", Column: "order_id", OnDelete: OnDeleteCascade},
	{Parent: "used_items", Child: "bids", Column: "used_item_id", OnDelete: OnDeleteCascade},
	{Parent: "discounts", Child: "carts", Column: "discount_id", OnDelete: OnDeleteSetNull},
	{Parent: "discounts", Child: "order_items", Column: "discount_id", OnDelete: OnDeleteSetNull},
	{Parent: "transactions", Child: "wallet_settlements", Column: "transaction_id", OnDelete: OnDeleteCascade},
	{Parent: "orders", Child: "wallet_settlements", Column: "order_id", OnDelete: OnDeleteCascade},
	{Parent: "wallets", Child: "wallet_settlements", Column: "wallet_id", OnDelete: OnDeleteCascade},
}

// ChildrenOf returns the edges whose parent is table.
func ChildrenOf(table string) []Edge {
	var out []Edge
	for _, edge := range OwnershipGraph {
		if edge.Parent == table {
			out = append(out, edge)
		}
	}
	return out
}
