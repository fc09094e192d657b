package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saborlabs/cardapio-backend/api/controllers"
	"github.com/saborlabs/cardapio-backend/api/middleware"
	"github.com/saborlabs/cardapio-backend/internal/addresses"
	"github.com/saborlabs/cardapio-backend/internal/auth"
	"github.com/saborlabs/cardapio-backend/internal/cart"
	"github.com/saborlabs/cardapio-backend/internal/catalog"
	checkoutsvc "github.com/saborlabs/cardapio-backend/internal/checkout"
	"github.com/saborlabs/cardapio-backend/internal/coupons"
	"github.com/saborlabs/cardapio-backend/internal/orders"
	"github.com/saborlabs/cardapio-backend/internal/points"
	"github.com/saborlabs/cardapio-backend/internal/tenants"
	"github.com/saborlabs/cardapio-backend/pkg/config"
	"github.com/saborlabs/cardapio-backend/pkg/logger"
	"github.com/saborlabs/cardapio-backend/pkg/metrics"
	"github.com/saborlabs/cardapio-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers. Grouping them in a
// struct keeps main readable as the service count grows.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DB    controllers.Pinger
	Redis *redis.Client

	Auth      auth.Service
	Tenants   tenants.Service
	Catalog   catalog.Service
	Coupons   coupons.Service
	Validator coupons.Validator
	Addresses addresses.Service
	Points    points.Service
	Orders    orders.Service
	Carts     *cart.Service
	Wizards   *checkoutsvc.Sessions
	Commit    checkoutsvc.Service

	OrderMetrics *metrics.OrderMetrics
	Gatherer     prometheus.Gatherer
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, d.OrderMetrics),
		middleware.CORS(),
	)

	cartDeps := controllers.CartDeps{
		Sessions:  d.Carts,
		Tenants:   d.Tenants,
		Catalog:   d.Catalog,
		Validator: d.Validator,
		Points:    d.Points,
		Logger:    logg,
	}
	checkoutDeps := controllers.CheckoutDeps{
		Cart:      cartDeps,
		Wizards:   d.Wizards,
		Addresses: d.Addresses,
		Commit:    d.Commit,
		Tenants:   d.Tenants,
		Logger:    logg,
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(d.Auth, logg))
		r.Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.With(middleware.Auth(cfg.JWT, logg)).Get("/me", controllers.AuthMe(d.Auth, logg))
	})

	// Public storefront: no session required to browse a menu.
	r.Route("/api/v1/loja/{slug}", func(r chi.Router) {
		r.Get("/", controllers.StorefrontInfo(d.Tenants, logg))
		r.Get("/menu", controllers.StorefrontMenu(d.Tenants, d.Catalog, logg))
		r.Get("/products/{productId}", controllers.StorefrontProduct(d.Tenants, d.Catalog, logg))

		// Customer session: cart, checkout and order lookups.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Use(middleware.Idempotency(d.Redis, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartFetch(cartDeps))
				r.Post("/items", controllers.CartAddItem(cartDeps))
				r.Put("/items/{lineId}", controllers.CartSetQuantity(cartDeps))
				r.Delete("/items/{lineId}", controllers.CartRemoveLine(cartDeps))
				r.Put("/delivery-mode", controllers.CartSetDeliveryMode(cartDeps))
				r.Post("/coupon", controllers.CartApplyCoupon(cartDeps))
				r.Delete("/coupon", controllers.CartRemoveCoupon(cartDeps))
				r.Put("/points", controllers.CartSetPoints(cartDeps))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", controllers.CheckoutState(checkoutDeps))
				r.Post("/answer", controllers.CheckoutAnswer(checkoutDeps))
				r.Post("/next", controllers.CheckoutNext(checkoutDeps))
				r.Post("/back", controllers.CheckoutBack(checkoutDeps))
				r.Post("/commit", controllers.CheckoutCommit(checkoutDeps))
			})

			r.Get("/orders/{orderId}", controllers.MyOrder(d.Orders, d.Tenants, logg))
		})
	})

	// Customer account surface, tenant-independent.
	r.Route("/api/v1/me", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/orders", controllers.MyOrders(d.Orders, logg))

		r.Route("/addresses", func(r chi.Router) {
			r.Get("/", controllers.AddressesList(d.Addresses, logg))
			r.Post("/", controllers.AddressesCreate(d.Addresses, logg))
			r.Put("/{addressId}", controllers.AddressesUpdate(d.Addresses, logg))
			r.Delete("/{addressId}", controllers.AddressesDelete(d.Addresses, logg))
			r.Post("/{addressId}/default", controllers.AddressesSetDefault(d.Addresses, logg))
		})

		r.Route("/points", func(r chi.Router) {
			r.Get("/", controllers.PointsBalance(d.Points, logg))
			r.Get("/history", controllers.PointsHistory(d.Points, logg))
		})
	})

	// Restaurant panel: elevated roles bound to a tenant.
	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireElevated(logg))
		r.Use(middleware.TenantContext(logg))
		r.Use(middleware.Idempotency(d.Redis, logg))

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.AdminCategoriesCreate(d.Catalog, logg))
			r.Put("/{categoryId}", controllers.AdminCategoriesUpdate(d.Catalog, logg))
			r.Delete("/{categoryId}", controllers.AdminCategoriesDelete(d.Catalog, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductsList(d.Catalog, logg))
			r.Post("/", controllers.AdminProductsCreate(d.Catalog, logg))
			r.Put("/{productId}", controllers.AdminProductsUpdate(d.Catalog, logg))
			r.Delete("/{productId}", controllers.AdminProductsDelete(d.Catalog, logg))
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", controllers.AdminCouponsList(d.Coupons, logg))
			r.Post("/", controllers.AdminCouponsCreate(d.Coupons, logg))
			r.Put("/{couponId}", controllers.AdminCouponsUpdate(d.Coupons, logg))
			r.Delete("/{couponId}", controllers.AdminCouponsDelete(d.Coupons, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrdersList(d.Orders, logg))
			r.Get("/{orderId}", controllers.AdminOrdersGet(d.Orders, logg))
			r.Post("/{orderId}/status", controllers.AdminOrdersAdvanceStatus(d.Orders, logg))
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/", controllers.AdminSettingsGet(d.Tenants, logg))
			r.Put("/delivery", controllers.AdminSettingsUpdateDelivery(d.Tenants, logg))
			r.Put("/store-address", controllers.AdminSettingsUpdateStoreAddress(d.Tenants, logg))
		})
	})

	return r
}
