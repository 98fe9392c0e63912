package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pestilink/pestilink-backend/api/controllers"
	"github.com/pestilink/pestilink-backend/api/middleware"
	"github.com/pestilink/pestilink-backend/internal/auth"
	"github.com/pestilink/pestilink-backend/internal/catalog"
	"github.com/pestilink/pestilink-backend/internal/media"
	"github.com/pestilink/pestilink-backend/internal/notifications"
	"github.com/pestilink/pestilink-backend/internal/orders"
	"github.com/pestilink/pestilink-backend/pkg/auth/session"
	"github.com/pestilink/pestilink-backend/pkg/config"
	"github.com/pestilink/pestilink-backend/pkg/enums"
	"github.com/pestilink/pestilink-backend/pkg/logger"
	"github.com/pestilink/pestilink-backend/pkg/metrics"
	"github.com/pestilink/pestilink-backend/pkg/redis"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything the HTTP surface needs. Nil optional members
// degrade gracefully: a nil redis client disables rate limiting and the
// session check, nil metrics disable instrumentation.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       pinger
	Redis    *redis.Client
	Sessions session.AccessSessionChecker

	AuthService     auth.Service
	RegisterService auth.RegisterService
	CatalogService  catalog.Service
	MediaService    media.Service
	OrdersService   orders.Service
	Notifications   notifications.Service

	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(),
	)

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

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessDeps(deps)))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/uploads/{filename}", controllers.ServeProductImage(deps.MediaService, logg))

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(authLimiter(deps, loginPolicy, logg)).Post("/login", controllers.AuthLogin(deps.AuthService, logg))
		r.With(authLimiter(deps, registerPolicy, logg)).Post("/register", controllers.AuthRegister(deps.RegisterService, logg))
		r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(deps.AuthService, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.CatalogService, logg))
			r.Get("/{productID}", controllers.GetProduct(deps.CatalogService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleShopOwner, logg))
				r.Post("/", controllers.CreateProduct(deps.CatalogService, logg))
				r.Get("/mine", controllers.ListMyProducts(deps.CatalogService, logg))
				r.Patch("/{productID}", controllers.UpdateProduct(deps.CatalogService, logg))
				r.Delete("/{productID}", controllers.DeleteProduct(deps.CatalogService, logg))
			})
		})

		r.With(middleware.RequireRole(enums.UserRoleShopOwner, logg)).
			Post("/media/images", controllers.UploadProductImage(deps.MediaService, logg))

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.RequireRole(enums.UserRoleFarmer, logg)).
				Post("/", controllers.PlaceOrder(deps.OrdersService, logg))
			r.Get("/", controllers.ListOrders(deps.OrdersService, logg))
			r.Get("/{orderCode}", controllers.GetOrder(deps.OrdersService, logg))
			r.With(middleware.RequireRole(enums.UserRoleShopOwner, logg)).
				Patch("/{orderCode}/status", controllers.UpdateOrderStatus(deps.OrdersService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/{notificationID}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		})
	})

	return r
}

// authLimiter skips rate limiting entirely when no redis client is wired,
// avoiding a typed-nil interface reaching the middleware.
func authLimiter(deps Deps, policy middleware.AuthRateLimitPolicy, logg *logger.Logger) func(http.Handler) http.Handler {
	if deps.Redis == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.AuthRateLimit(policy, deps.Redis, logg)
}

func readinessDeps(deps Deps) map[string]controllers.Pinger {
	out := map[string]controllers.Pinger{}
	if deps.DB != nil {
		out["database"] = deps.DB
	}
	if deps.Redis != nil {
		out["redis"] = deps.Redis
	}
	return out
}
