package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/matiascortez/vestia-backend/api/routes"
	cartsvc "github.com/matiascortez/vestia-backend/internal/cart"
	checkoutsvc "github.com/matiascortez/vestia-backend/internal/checkout"
	"github.com/matiascortez/vestia-backend/internal/notifications"
	"github.com/matiascortez/vestia-backend/internal/payments"
	productsvc "github.com/matiascortez/vestia-backend/internal/products"
	shippingsvc "github.com/matiascortez/vestia-backend/internal/shipping"
	mpwebhook "github.com/matiascortez/vestia-backend/internal/webhooks/mercadopago"
	"github.com/matiascortez/vestia-backend/pkg/andreani"
	"github.com/matiascortez/vestia-backend/pkg/config"
	"github.com/matiascortez/vestia-backend/pkg/logger"
	"github.com/matiascortez/vestia-backend/pkg/mercadopago"
	"github.com/matiascortez/vestia-backend/pkg/redis"
	"github.com/matiascortez/vestia-backend/pkg/resend"
)

const webhookDedupScope = "mp-webhook"

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	// Redis backs the cart and webhook dedup. The store is optional: a
	// deployment without it falls back to process-local state.
	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Warn(context.Background(), "redis unavailable, carts will not survive restarts")
		redisClient = nil
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	gateway := payments.NewGateway(nil, cfg.App, logg)
	if mpClient, err := mercadopago.NewClient(cfg.MercadoPago); err != nil {
		logg.Warn(context.Background(), "mercado pago access token missing, payments disabled")
	} else {
		gateway = payments.NewGateway(mpClient, cfg.App, logg)
	}

	shippingService := shippingsvc.NewService(andreani.NewClient(cfg.Andreani), cfg.Andreani, logg)

	var cartStore cartsvc.Store
	if redisClient != nil {
		cartStore = cartsvc.NewRedisStore(redisClient, cfg.Checkout.CartTTL, logg)
	} else {
		cartStore = cartsvc.NewMemoryStore()
	}

	checkoutManager := checkoutsvc.NewManager(cartStore, shippingService, gateway, cfg.Checkout, logg)
	defer checkoutManager.Close()

	dispatcher, err := notifications.NewDispatcher(notifications.DispatcherParams{
		Emails:   resend.NewClient(cfg.Resend),
		Shipping: shippingService,
		Resend:   cfg.Resend,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}

	webhookService, err := mpwebhook.NewService(mpwebhook.ServiceParams{
		Gateway:    gateway,
		Dispatcher: dispatcher,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	var webhookGuard *mpwebhook.IdempotencyGuard
	if redisClient != nil {
		webhookGuard, err = mpwebhook.NewIdempotencyGuard(redisClient, cfg.Checkout.WebhookDedupTTL, webhookDedupScope)
		if err != nil {
			logg.Error(context.Background(), "failed to create webhook guard", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:          cfg,
			Logger:          logg,
			Redis:           redisClient,
			Registry:        registry,
			CartStore:       cartStore,
			ProductService:  productsvc.NewService(),
			ShippingService: shippingService,
			CheckoutManager: checkoutManager,
			WebhookService:  webhookService,
			WebhookGuard:    webhookGuard,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
