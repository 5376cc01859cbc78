package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/LeDucTai-11/MyStore-BE/api/controllers"
	ordercontrollers "github.com/LeDucTai-11/MyStore-BE/api/controllers/orders"
	requestcontrollers "github.com/LeDucTai-11/MyStore-BE/api/controllers/orderrequests"
	shippingcontrollers "github.com/LeDucTai-11/MyStore-BE/api/controllers/shippings"
	"github.com/LeDucTai-11/MyStore-BE/api/middleware"
	"github.com/LeDucTai-11/MyStore-BE/internal/notifications"
	"github.com/LeDucTai-11/MyStore-BE/internal/orders"
	"github.com/LeDucTai-11/MyStore-BE/internal/payments"
	"github.com/LeDucTai-11/MyStore-BE/internal/vouchers"
	"github.com/LeDucTai-11/MyStore-BE/pkg/config"
	"github.com/LeDucTai-11/MyStore-BE/pkg/db/models"
	"github.com/LeDucTai-11/MyStore-BE/pkg/enums"
	"github.com/LeDucTai-11/MyStore-BE/pkg/logger"
	pkgredis "github.com/LeDucTai-11/MyStore-BE/pkg/redis"
)

// RedisStore backs idempotency replay and rate limiting.
type RedisStore interface {
	pkgredis.IdempotencyStore
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
	Ping(ctx context.Context) error
}

type paymentConfirmer interface {
	Confirm(ctx context.Context, input payments.ConfirmInput) (*models.Payment, error)
}

// Dependencies lists everything the HTTP surface is wired to.
type Dependencies struct {
	DB            controllers.Pinger
	Redis         RedisStore
	Metrics       http.Handler
	Orders        orders.Service
	Payments      paymentConfirmer
	Requests      requestcontrollers.Workflow
	Shipping      shippingcontrollers.Engine
	Vouchers      vouchers.Service
	Bills         controllers.BillLister
	Notifications notifications.Service
	Push          controllers.PushServer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	ready := map[string]controllers.Pinger{"db": deps.DB}
	if deps.Redis != nil {
		ready["redis"] = deps.Redis
	}

	idem := func(next http.Handler) http.Handler { return next }
	critical := idem
	limitPlace := idem
	limitConfirm := idem
	// Without redis the write routes run unguarded.
	if deps.Redis != nil {
		idem = middleware.Idempotency(deps.Redis, middleware.DefaultIdempotencyTTL, logg)
		critical = middleware.Idempotency(deps.Redis, middleware.CriticalIdempotencyTTL, logg)
		limitPlace = middleware.RateLimit(
			middleware.NewRateLimitPolicy("place-order", cfg.RateLimit.PlaceOrderWindow, cfg.RateLimit.PlaceOrderLimit),
			deps.Redis,
			logg,
		)
		limitConfirm = middleware.RateLimit(
			middleware.NewRateLimitPolicy("payment-confirm", cfg.RateLimit.PaymentConfirmWindow, cfg.RateLimit.PaymentConfirmLimit),
			deps.Redis,
			logg,
		)
	}

	staff := middleware.RequireRole(logg, enums.UserRoleStaff, enums.UserRoleAdmin)
	admin := middleware.RequireRole(logg, enums.UserRoleAdmin)
	shipper := middleware.RequireRole(logg, enums.UserRoleShipper)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, ready))
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/orders", func(r chi.Router) {
			r.With(limitPlace, critical).Post("/", ordercontrollers.Place(deps.Orders, logg))
			r.With(staff).Get("/", ordercontrollers.List(deps.Orders, logg))
			r.Get("/me", ordercontrollers.ListMine(deps.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, logg))
			r.With(limitConfirm, critical).Post("/{orderId}/payment-confirm", ordercontrollers.ConfirmPayment(deps.Payments, logg))
		})

		r.Route("/order-requests", func(r chi.Router) {
			r.With(idem).Post("/", requestcontrollers.Create(deps.Requests, logg))
			r.Get("/me", requestcontrollers.ListMine(deps.Requests, logg))
			r.With(staff).Get("/", requestcontrollers.List(deps.Requests, logg))
			r.With(staff).Get("/{requestId}", requestcontrollers.Detail(deps.Requests, logg))
			r.With(staff, idem).Patch("/{requestId}", requestcontrollers.Decide(deps.Requests, logg))
		})

		r.Route("/shippings", func(r chi.Router) {
			r.Use(shipper)
			r.Get("/me", shippingcontrollers.ListMine(deps.Shipping, logg))
			r.With(idem).Patch("/{shippingId}", shippingcontrollers.Decide(deps.Shipping, logg))
			r.With(idem).Post("/{shippingId}/complete", shippingcontrollers.Complete(deps.Shipping, logg))
		})

		r.Route("/vouchers", func(r chi.Router) {
			r.Get("/", controllers.VoucherList(deps.Vouchers, logg))
			r.Get("/{voucherId}", controllers.VoucherDetail(deps.Vouchers, logg))
			r.With(admin, idem).Post("/", controllers.VoucherCreate(deps.Vouchers, logg))
			r.With(admin).Patch("/{voucherId}", controllers.VoucherUpdate(deps.Vouchers, logg))
			r.With(admin).Delete("/{voucherId}", controllers.VoucherDelete(deps.Vouchers, logg))
		})

		r.With(staff).Get("/bills", controllers.BillList(deps.Bills, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(deps.Notifications, logg))
			r.With(idem).Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.With(idem).Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		})

		r.Get("/ws", controllers.PushStream(deps.Push, logg))
	})

	return r
}
