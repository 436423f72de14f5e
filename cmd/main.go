package main

import (
	"net/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	cartapp "github.com/roastline/storefront/application/cart"
	checkoutapp "github.com/roastline/storefront/application/checkout"
	notificationapp "github.com/roastline/storefront/application/notification"
	orderapp "github.com/roastline/storefront/application/order"
	paymentapp "github.com/roastline/storefront/application/payment"
	productapp "github.com/roastline/storefront/application/product"
	userapp "github.com/roastline/storefront/application/user"
	"github.com/roastline/storefront/cmd/config"
	redisclient "github.com/roastline/storefront/cmd/redis"
	"github.com/roastline/storefront/db"
	_ "github.com/roastline/storefront/docs"
	orderRepo "github.com/roastline/storefront/repository/order"
	productRepo "github.com/roastline/storefront/repository/product"
	redisRepo "github.com/roastline/storefront/repository/redis"
	txRepo "github.com/roastline/storefront/repository/tx"
	userRepo "github.com/roastline/storefront/repository/user"
	"github.com/roastline/storefront/thirdparty/mailer"
	"github.com/roastline/storefront/thirdparty/rabbitmq"
	"github.com/roastline/storefront/thirdparty/stripe"
	"github.com/roastline/storefront/transport"
	"github.com/roastline/storefront/utils/logger"
	"go.uber.org/zap"
)

// @title Roastline Storefront API
// @version 1.0
// @description Coffee storefront commerce API
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables
	cfg := config.Load()

	// Initialize global logger
	if err := logger.Init(cfg.Environment); err != nil {
		// fallback to standard log if zap init fails
		panic(err)
	}
	defer logger.Close()

	logger.Info("Starting server", zap.String("env", cfg.Environment))

	// Connect to database
	conn, err := sqlx.Connect("pgx", cfg.GetDSN())
	if err != nil {
		logger.Fatal("err connect db", zap.Error(err))
	}

	// Apply schema migrations
	if err := db.Migrate(conn); err != nil {
		logger.Fatal("err run migrations", zap.Error(err))
	}

	// Initialize Redis client
	if err := redisclient.New(cfg); err != nil {
		logger.Fatal("err connect redis", zap.Error(err))
	}
	defer func() {
		_ = redisclient.Close()
	}()

	// Set database connection pool settings
	conn.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	// Status-change event publisher; non-fatal when the broker is down
	publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ.Host, cfg.RabbitMQ.Port, cfg.RabbitMQ.User, cfg.RabbitMQ.Password)
	if err != nil {
		logger.Warn("err connect rabbitmq, status events disabled", zap.Error(err))
		publisher = nil
	} else {
		defer publisher.Close()
	}

	// External collaborators
	gateway := stripe.NewGateway(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, cfg.Stripe.Currency)
	sender := mailer.NewSender(cfg.Mail.APIKey, cfg.Mail.From)

	// Initialize repositories
	OrderRepo := orderRepo.NewOrderRepository(conn)
	ProductRepo := productRepo.NewProductRepository(conn)
	UserRepo := userRepo.NewUserRepository(conn)
	TxRepo := txRepo.NewTxRepository(conn)
	RedisRepo := redisRepo.NewRepository()

	// Initialize application layers
	NotificationApp := notificationapp.NewNotificationApp(sender)
	UserApp := userapp.NewUserApp(cfg, UserRepo)
	ProductApp := productapp.NewProductApp(ProductRepo)
	CartApp := cartapp.NewCartApp(cfg, RedisRepo)
	CheckoutApp := checkoutapp.NewCheckoutApp(cfg, UserRepo, gateway)
	PaymentApp := paymentapp.NewPaymentApp(TxRepo, OrderRepo, ProductRepo, gateway, NotificationApp, publisher)
	OrderApp := orderapp.NewOrderApp(OrderRepo, NotificationApp, publisher)

	httpTransport := transport.NewTransport(&transport.RestHandler{
		UserApp:     UserApp,
		ProductApp:  ProductApp,
		CartApp:     CartApp,
		CheckoutApp: CheckoutApp,
		PaymentApp:  PaymentApp,
		OrderApp:    OrderApp,
	}, cfg.Mail.WebhookKey)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpTransport,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	logger.Info("HTTP server running", zap.String("port", cfg.Server.Port))
	err = server.ListenAndServe()
	if err != nil {
		logger.Fatal("failed server", zap.Error(err))
	}
}
