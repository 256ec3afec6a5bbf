package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matiascortez/vestia-backend/api/controllers"
	webhookcontrollers "github.com/matiascortez/vestia-backend/api/controllers/webhooks"
	"github.com/matiascortez/vestia-backend/api/middleware"
	cartsvc "github.com/matiascortez/vestia-backend/internal/cart"
	checkoutsvc "github.com/matiascortez/vestia-backend/internal/checkout"
	productsvc "github.com/matiascortez/vestia-backend/internal/products"
	shippingsvc "github.com/matiascortez/vestia-backend/internal/shipping"
	mpwebhook "github.com/matiascortez/vestia-backend/internal/webhooks/mercadopago"
	"github.com/matiascortez/vestia-backend/pkg/config"
	"github.com/matiascortez/vestia-backend/pkg/logger"
	"github.com/matiascortez/vestia-backend/pkg/metrics"
	"github.com/matiascortez/vestia-backend/pkg/redis"
)

// Params carries every dependency the HTTP surface needs. Redis, the
// registry and the webhook pair may be nil; the affected endpoints degrade
// instead of panicking. The core services are required.
type Params struct {
	Config          *config.Config
	Logger          *logger.Logger
	Redis           *redis.Client
	Registry        *prometheus.Registry
	CartStore       cartsvc.Store
	ProductService  *productsvc.Service
	ShippingService *shippingsvc.Service
	CheckoutManager *checkoutsvc.Manager
	WebhookService  *mpwebhook.Service
	WebhookGuard    *mpwebhook.IdempotencyGuard
}

func NewRouter(params Params) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.SiteURL),
	)
	if params.Registry != nil {
		r.Use(middleware.Metrics(metrics.NewHTTPMetrics(params.Registry)))
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	}

	ready := controllers.HealthReady(cfg, logg, nil)
	if params.Redis != nil {
		ready = controllers.HealthReady(cfg, logg, params.Redis)
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", ready)
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/mercadopago", webhookcontrollers.MercadoPagoWebhook(webhookService(params), webhookGuard(params), logg))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(params.ProductService, logg))
		r.Get("/{slug}", controllers.ProductGet(params.ProductService, logg))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Get("/", controllers.CartGet(params.CartStore, logg))
		r.Delete("/", controllers.CartClear(params.CartStore, logg))
		r.Post("/items", controllers.CartAddItem(params.CartStore, logg))
		r.Delete("/items/{key}", controllers.CartRemoveItem(params.CartStore, logg))
	})

	r.Route("/api/v1/shipping", func(r chi.Router) {
		r.Post("/quote", controllers.ShippingQuote(params.ShippingService, logg))
	})

	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Post("/", controllers.CheckoutStart(params.CheckoutManager, logg))
		r.Get("/{id}", controllers.CheckoutGet(params.CheckoutManager, logg))
		r.Put("/{id}/buyer", controllers.CheckoutBuyer(params.CheckoutManager, logg))
		r.Put("/{id}/address", controllers.CheckoutAddress(params.CheckoutManager, logg))
		r.Post("/{id}/confirm", controllers.CheckoutConfirm(params.CheckoutManager, logg))
		r.Post("/{id}/edit", controllers.CheckoutEdit(params.CheckoutManager, logg))
		r.Post("/{id}/pay", controllers.CheckoutPay(params.CheckoutManager, logg))
	})

	return r
}

func webhookService(params Params) webhookcontrollers.MercadoPagoWebhookService {
	if params.WebhookService == nil {
		return nil
	}
	return params.WebhookService
}

func webhookGuard(params Params) webhookcontrollers.MercadoPagoGuard {
	if params.WebhookGuard == nil {
		return nil
	}
	return params.WebhookGuard
}
