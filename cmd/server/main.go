package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"farmdirect-be/internal/api"
	"farmdirect-be/internal/broker"
	"farmdirect-be/internal/cache"
	"farmdirect-be/internal/cart"
	"farmdirect-be/internal/category"
	"farmdirect-be/internal/config"
	"farmdirect-be/internal/db"
	"farmdirect-be/internal/delivery"
	"farmdirect-be/internal/logger"
	"farmdirect-be/internal/memstore"
	"farmdirect-be/internal/order"
	"farmdirect-be/internal/payment"
	"farmdirect-be/internal/payment/webhook"
	"farmdirect-be/internal/product"
	"farmdirect-be/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type repositories struct {
	users      user.Repository
	categories category.Repository
	products   product.Repository
	carts      cart.Repository
	orders     order.Repository
	deliveries delivery.Repository
	payments   payment.Repository
}

func main() {
	cfg := config.LoadConfig()

	logger.Init(cfg.AppEnv)
	defer logger.Sync()
	log := logger.L()

	log.Info("starting farmdirect server", zap.String("env", cfg.AppEnv))

	repos := buildRepositories(cfg, log)

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		repos.orders = cache.NewOrderRepository(repos.orders, client)
		log.Info("order cache enabled", zap.String("addr", cfg.RedisAddr))
	}

	var events order.Publisher = broker.Noop{}
	if cfg.KafkaBrokers != "" {
		producer := broker.NewProducer(strings.Split(cfg.KafkaBrokers, ","), cfg.KafkaTopic)
		defer producer.Close()
		events = producer
		log.Info("kafka producer enabled", zap.String("topic", cfg.KafkaTopic))
	}

	userSvc := user.NewService(repos.users, cfg.JWTSecret)
	categorySvc := category.NewService(repos.categories)
	productSvc := product.NewService(repos.products)
	cartSvc := cart.NewService(repos.carts, repos.products)
	orderSvc := order.NewService(repos.orders, repos.products, events)
	deliverySvc := delivery.NewService(repos.deliveries, repos.orders, orderSvc)

	gateway := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret, cfg.AppURL)
	paymentSvc := payment.NewService(repos.payments, repos.orders, orderSvc, repos.users, gateway)

	handler := api.NewHandler(api.Services{
		JWTSecret:  cfg.JWTSecret,
		Users:      userSvc,
		Categories: categorySvc,
		Products:   productSvc,
		Carts:      cartSvc,
		Orders:     orderSvc,
		Deliveries: deliverySvc,
		Payments:   paymentSvc,
		Webhook:    webhook.NewHandler(paymentSvc, gateway),
	})

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("listening", zap.String("port", cfg.AppPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func buildRepositories(cfg *config.Config, log *zap.Logger) repositories {
	if cfg.DBDriver == "memory" {
		log.Warn("using in-memory storage, data will not survive restarts")
		store := memstore.New()
		return repositories{
			users:      store.Users(),
			categories: store.Categories(),
			products:   store.Products(),
			carts:      store.Carts(),
			orders:     store.Orders(),
			deliveries: store.Deliveries(),
			payments:   store.Payments(),
		}
	}

	conn := db.InitDB(cfg)
	return repositories{
		users:      user.NewRepository(conn),
		categories: category.NewRepository(conn),
		products:   product.NewRepository(conn),
		carts:      cart.NewRepository(conn),
		orders:     order.NewRepository(conn),
		deliveries: delivery.NewRepository(conn),
		payments:   payment.NewRepository(conn),
	}
}
