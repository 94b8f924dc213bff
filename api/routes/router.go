package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/marketplace-backend/api/controllers"
	"github.com/angelmondragon/marketplace-backend/api/middleware"
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
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/marketplace-backend/pkg/redis"
)

// Deps carries everything the router mounts.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *pkgredis.Client
	Sessions session.AccessSessionChecker
	Gatherer prometheus.Gatherer
	Metrics  *metrics.HTTPMetrics

	Auth          auth.Service
	Register      auth.RegisterService
	AdminRegister auth.AdminRegisterService
	Users         users.Service
	Addresses     address.Service
	Wallets       wallets.Service
	Items         items.Service
	Inventory     inventory.Service
	UsedItems     useditems.Service
	Orders        orders.Service
	Transactions  transactions.Service
	Discounts     discounts.Service
	Cart          cart.Service
	Bids          bids.Service
	Notifications notifications.Service
	Ratings       ratings.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.Metrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	// A nil *Client must not leak into the middleware as a non-nil interface.
	var (
		idempotencyStore pkgredis.IdempotencyStore
		rateStore        middleware.RateLimitStore
		readiness = map[string]controllers.Pinger{}
	)
	if d.DB != nil {
		readiness["db"] = d.DB
	}
	if d.Redis != nil {
		idempotencyStore = d.Redis
		rateStore = d.Redis
		readiness["redis"] = d.Redis
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	authenticate := middleware.Auth(cfg.JWT, d.Sessions, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, rateStore, logg), middleware.Idempotency(idempotencyStore, logg)).
			Post("/register", controllers.AuthRegister(d.Register, d.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.Auth, logg))
		r.With(authenticate).Post("/logout", controllers.AuthLogout(d.Auth, logg))
	})

	if cfg.App.IsDev() {
		r.Post("/api/admin/v1/auth/register", controllers.AdminAuthRegister(d.AdminRegister, logg))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.RateLimit(limiter, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/me", controllers.UserMe(d.Users, logg))
			r.Patch("/me", controllers.UserUpdateMe(d.Users, logg))
			r.With(middleware.RequireRole(logg, enums.RoleAdmin)).Get("/", controllers.UserList(d.Users, logg))
			r.Get("/{userId}", controllers.UserGet(d.Users, logg))
			r.Patch("/{userId}", controllers.UserUpdate(d.Users, logg))
			r.Patch("/{userId}/verification", controllers.UserSetVerification(d.Users, logg))
		})

		r.With(middleware.RequireRole(logg, enums.RoleVendor, enums.RoleAdmin)).
			Get("/vendor/customers", controllers.VendorCustomers(d.Users, logg))

		r.Route("/addresses", func(r chi.Router) {
			r.Post("/", controllers.AddressCreate(d.Addresses, logg))
			r.Get("/", controllers.AddressList(d.Addresses, logg))
			r.Get("/{addressId}", controllers.AddressGet(d.Addresses, logg))
			r.Patch("/{addressId}", controllers.AddressUpdate(d.Addresses, logg))
			r.Delete("/{addressId}", controllers.AddressDelete(d.Addresses, logg))
		})

		r.Route("/wallets", func(r chi.Router) {
			r.Post("/", controllers.WalletCreate(d.Wallets, logg))
			r.Get("/", controllers.WalletList(d.Wallets, logg))
			r.Get("/me", controllers.WalletMine(d.Wallets, logg))
			r.Get("/{walletId}", controllers.WalletGet(d.Wallets, logg))
			r.Post("/{walletId}/deposit", controllers.WalletDeposit(d.Wallets, logg))
		})

		r.Route("/items", func(r chi.Router) {
			r.Post("/", controllers.ItemCreate(d.Items, logg))
			r.Get("/", controllers.ItemList(d.Items, logg))
			r.Get("/{itemId}", controllers.ItemGet(d.Items, logg))
			r.Patch("/{itemId}", controllers.ItemUpdate(d.Items, logg))
			r.Delete("/{itemId}", controllers.ItemDelete(d.Items, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.InventoryList(d.Inventory, logg))
			r.Get("/{inventoryId}", controllers.InventoryGet(d.Inventory, logg))
			r.Patch("/{inventoryId}", controllers.InventoryUpdate(d.Inventory, logg))
			r.Post("/{inventoryId}/restock", controllers.InventoryRestock(d.Inventory, logg))
		})

		r.Route("/used-items", func(r chi.Router) {
			r.Post("/", controllers.UsedItemCreate(d.UsedItems, logg))
			r.Get("/", controllers.UsedItemList(d.UsedItems, logg))
			r.Get("/{usedItemId}", controllers.UsedItemGet(d.UsedItems, logg))
			r.Patch("/{usedItemId}", controllers.UsedItemUpdate(d.UsedItems, logg))
			r.Delete("/{usedItemId}", controllers.UsedItemDelete(d.UsedItems, logg))
			r.Get("/{usedItemId}/bids", controllers.BidListForListing(d.Bids, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(d.Orders, logg))
			r.Post("/checkout", controllers.OrderCheckout(d.Orders, logg))
			r.Get("/", controllers.OrderList(d.Orders, logg))
			r.Get("/{orderId}", controllers.OrderGet(d.Orders, logg))
			r.Patch("/{orderId}/status", controllers.OrderUpdateStatus(d.Orders, logg))
			r.Delete("/{orderId}", controllers.OrderDelete(d.Orders, logg))
		})
		r.Get("/order-items", controllers.OrderItemList(d.Orders, logg))

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", controllers.TransactionCreate(d.Transactions, logg))
			r.Get("/", controllers.TransactionList(d.Transactions, logg))
			r.Get("/{transactionId}", controllers.TransactionGet(d.Transactions, logg))
			r.Post("/{transactionId}/complete", controllers.TransactionComplete(d.Transactions, logg))
			r.Post("/{transactionId}/fail", controllers.TransactionFail(d.Transactions, logg))
		})

		r.Route("/discounts", func(r chi.Router) {
			r.Post("/", controllers.DiscountCreate(d.Discounts, logg))
			r.Get("/", controllers.DiscountList(d.Discounts, logg))
			r.Get("/{discountId}", controllers.DiscountGet(d.Discounts, logg))
			r.Patch("/{discountId}", controllers.DiscountUpdate(d.Discounts, logg))
			r.Delete("/{discountId}", controllers.DiscountDelete(d.Discounts, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Post("/", controllers.CartAdd(d.Cart, logg))
			r.Get("/", controllers.CartList(d.Cart, logg))
			r.Get("/{cartId}", controllers.CartGet(d.Cart, logg))
			r.Patch("/{cartId}", controllers.CartUpdate(d.Cart, logg))
			r.Delete("/{cartId}", controllers.CartRemove(d.Cart, logg))
		})

		r.Route("/bids", func(r chi.Router) {
			r.Post("/", controllers.BidCreate(d.Bids, logg))
			r.Get("/", controllers.BidList(d.Bids, logg))
			r.Get("/{bidId}", controllers.BidGet(d.Bids, logg))
			r.Patch("/{bidId}", controllers.BidUpdate(d.Bids, logg))
			r.Post("/{bidId}/complete", controllers.BidComplete(d.Bids, logg))
			r.Delete("/{bidId}", controllers.BidDelete(d.Bids, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(d.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(d.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(d.Notifications, logg))
		})

		r.Route("/ratings", func(r chi.Router) {
			r.Post("/", controllers.RatingCreate(d.Ratings, logg))
			r.Get("/", controllers.RatingList(d.Ratings, logg))
			r.Get("/{ratingId}", controllers.RatingGet(d.Ratings, logg))
			r.Patch("/{ratingId}", controllers.RatingUpdate(d.Ratings, logg))
			r.Delete("/{ratingId}", controllers.RatingDelete(d.Ratings, logg))
		})
	})

	return r
}
