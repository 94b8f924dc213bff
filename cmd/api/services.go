package main

import (
	"github.com/angelmondragon/marketplace-backend/api/routes"
	"github.com/angelmondragon/marketplace-backend/internal/address"
	"github.com/angelmondragon/marketplace-backend/internal/auth"
	"github.com/angelmondragon/marketplace-backend/internal/bids"
	"github.com/angelmondragon/marketplace-backend/internal/cart"
	"github.com/angelmondragon/marketplace-backend/internal/discounts"
	"github.com/angelmondragon/marketplace-backend/internal/inventory"
	"github.com/angelmondragon/marketplace-backend/internal/items"
	"github.com/angelmondragon/marketplace-backend/internal/notifications"
	"github.com/angelmondragon/marketplace-backend/internal/orders"
	"github.com/angelmondragon/marketplace-backend/internal/ratings"
	"github.com/angelmondragon/marketplace-backend/internal/transactions"
	"github.com/angelmondragon/marketplace-backend/internal/useditems"
	"github.com/angelmondragon/marketplace-backend/internal/users"
	"github.com/angelmondragon/marketplace-backend/internal/wallets"
	"github.com/angelmondragon/marketplace-backend/pkg/auth/session"
	"github.com/angelmondragon/marketplace-backend/pkg/config"
	"github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/metrics"
	"github.com/angelmondragon/marketplace-backend/pkg/outbox"
)

// buildServices constructs every domain service on top of one database client.
func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, sessions *session.Manager, dm *metrics.DomainMetrics) (routes.Deps, error) {
	var d routes.Deps
	conn := dbClient.DB()
	outboxSvc := outbox.NewService(outbox.NewRepository(conn), logg)
	userRepo := users.NewRepository(conn)

	var err error
	if d.Auth, err = auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
	}); err != nil {
		return d, err
	}
	if d.Register, err = auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		Users:          userRepo,
		Outbox:         outboxSvc,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	}); err != nil {
		return d, err
	}
	if d.AdminRegister, err = auth.NewAdminRegisterService(auth.AdminRegisterServiceParams{
		DB:             dbClient,
		Users:          userRepo,
		PasswordConfig: cfg.Password,
	}); err != nil {
		return d, err
	}

	notifier, err := notifications.NewService(notifications.NewRepository(conn))
	if err != nil {
		return d, err
	}
	d.Notifications = notifier

	if d.Users, err = users.NewService(userRepo, logg); err != nil {
		return d, err
	}
	if d.Addresses, err = address.NewService(address.NewRepository(conn)); err != nil {
		return d, err
	}
	if d.Wallets, err = wallets.NewService(wallets.NewRepository(conn), dbClient, logg); err != nil {
		return d, err
	}
	if d.Items, err = items.NewService(items.NewRepository(conn), dbClient, logg); err != nil {
		return d, err
	}
	if d.Inventory, err = inventory.NewService(inventory.NewRepository(conn), dbClient, logg); err != nil {
		return d, err
	}
	if d.UsedItems, err = useditems.NewService(useditems.NewRepository(conn)); err != nil {
		return d, err
	}
	if d.Discounts, err = discounts.NewService(discounts.NewRepository(conn), logg); err != nil {
		return d, err
	}
	if d.Ratings, err = ratings.NewService(ratings.NewRepository(conn), dbClient, logg); err != nil {
		return d, err
	}

	policy, err := enums.ParseCartDuplicatePolicy(cfg.Cart.DuplicatePolicy)
	if err != nil {
		return d, err
	}
	if d.Cart, err = cart.NewService(cart.NewRepository(conn), dbClient, policy); err != nil {
		return d, err
	}

	if d.Orders, err = orders.NewService(orders.NewRepository(conn), dbClient, outboxSvc, notifier, dm, logg); err != nil {
		return d, err
	}
	if d.Transactions, err = transactions.NewService(transactions.NewRepository(conn), dbClient, outboxSvc, notifier, dm, logg); err != nil {
		return d, err
	}
	if d.Bids, err = bids.NewService(bids.NewRepository(conn), dbClient, outboxSvc, notifier, dm, logg); err != nil {
		return d, err
	}
	return d, nil
}
