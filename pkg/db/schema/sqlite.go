// Package schema holds the portable sqlite rendition of the goose migrations,
// used by tests and by local development when the sqlite driver is selected.
package schema

import (
	"fmt"

	"gorm.io/gorm"
)

// SQLiteStatements mirrors pkg/migrate/migrations table for table, including the
// ownership graph's ON DELETE actions and the counter CHECK constraints.
var SQLiteStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		phone TEXT,
		role TEXT NOT NULL CHECK (role IN ('customer', 'vendor', 'admin', 'delivery')),
		telegram_id INTEGER UNIQUE,
		business_name TEXT,
		vendor_type TEXT,
		business_license TEXT,
		rating DECIMAL(3,2) NOT NULL DEFAULT 0,
		verification_status TEXT NOT NULL DEFAULT 'unverified',
		last_login_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS addresses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		street_address TEXT NOT NULL,
		city TEXT NOT NULL,
		state TEXT NOT NULL,
		postal_code TEXT NOT NULL,
		country TEXT NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS wallets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		address TEXT NOT NULL,
		balance DECIMAL(20,4) NOT NULL DEFAULT 0 CHECK (balance >= 0),
		connected_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		vendor_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price DECIMAL(10,2) NOT NULL,
		category TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS inventories (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL UNIQUE REFERENCES items(id) ON DELETE CASCADE,
		item_quantity INTEGER NOT NULL DEFAULT 0 CHECK (item_quantity >= 0),
		in_stock BOOLEAN NOT NULL DEFAULT 0 CHECK (in_stock = (item_quantity > 0)),
		location TEXT NOT NULL DEFAULT '',
		last_restocked DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS used_items (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price DECIMAL(10,2) NOT NULL,
		category TEXT NOT NULL,
		warranty_period INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS discounts (
		id TEXT PRIMARY KEY,
		vendor_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		percentage DECIMAL(5,2) NOT NULL CHECK (percentage >= 0 AND percentage <= 100),
		expires_at DATE NOT NULL,
		redemptions INTEGER NOT NULL DEFAULT 0 CHECK (redemptions >= 0),
		max_redemptions INTEGER,
		added_at DATETIME,
		CHECK (max_redemptions IS NULL OR redemptions <= max_redemptions)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_discounts_code_lower ON discounts (LOWER(code))`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		item_id TEXT NOT NULL REFERENCES items(id) ON DELETE RESTRICT,
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		price_at_purchase DECIMAL(10,4) NOT NULL,
		discount_id TEXT REFERENCES discounts(id) ON DELETE SET NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		transaction_hash TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL DEFAULT 'pending',
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		settled_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_transactions_open_order
		ON transactions (order_id)
		WHERE status IN ('pending', 'completed')`,
	`CREATE TABLE IF NOT EXISTS wallet_settlements (
		id TEXT PRIMARY KEY,
		transaction_id TEXT NOT NULL UNIQUE REFERENCES transactions(id) ON DELETE CASCADE,
		order_id TEXT NOT NULL UNIQUE REFERENCES orders(id) ON DELETE CASCADE,
		wallet_id TEXT NOT NULL REFERENCES wallets(id) ON DELETE CASCADE,
		amount DECIMAL(20,4) NOT NULL,
		created_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS carts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		item_quantity INTEGER NOT NULL CHECK (item_quantity > 0),
		discount_id TEXT REFERENCES discounts(id) ON DELETE SET NULL,
		added_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS bids (
		id TEXT PRIMARY KEY,
		used_item_id TEXT NOT NULL REFERENCES used_items(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		amount DECIMAL(10,2) NOT NULL CHECK (amount > 0),
		status TEXT NOT NULL DEFAULT 'bidding',
		created_at DATETIME,
		updated_at DATETIME,
		completed_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type TEXT NOT NULL DEFAULT 'general',
		text TEXT NOT NULL,
		read BOOLEAN NOT NULL DEFAULT 0,
		notified_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS ratings (
		id TEXT PRIMARY KEY,
		item_id TEXT NOT NULL REFERENCES items(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
		review TEXT NOT NULL DEFAULT '',
		reviewed_at DATETIME
	)`,
	`CREATE TABLE IF NOT EXISTS outbox_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload BLOB NOT NULL,
		created_at DATETIME,
		published_at DATETIME,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		last_error TEXT
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_outbox_events_event_aggregate
		ON outbox_events (event_type, aggregate_type, aggregate_id)
		WHERE event_type IN ('discount_expired', 'transaction_settled', 'bid_completed')`,
	`CREATE TABLE IF NOT EXISTS outbox_dlq (
		id TEXT PRIMARY KEY,
		event_id TEXT NOT NULL,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		payload BLOB NOT NULL,
		error_reason TEXT NOT NULL,
		error_message TEXT,
		attempt_count INTEGER NOT NULL DEFAULT 0,
		failed_at DATETIME,
		created_at DATETIME
	)`,
}

// ApplySQLite creates every table on a sqlite connection.
func ApplySQLite(conn *gorm.DB) error {
	if err := conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	for _, stmt := range SQLiteStatements {
		if err := conn.Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}
