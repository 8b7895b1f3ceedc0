package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/fooddash/gateway"
	"github.com/example/fooddash/pkg/auth"
	"github.com/example/fooddash/pkg/config"
	"github.com/example/fooddash/pkg/discovery"
	"github.com/example/fooddash/pkg/events"
	grpcserver "github.com/example/fooddash/pkg/grpc"
	"github.com/example/fooddash/pkg/logging"
	"github.com/example/fooddash/pkg/notify"
	"github.com/example/fooddash/pkg/repository"
	"github.com/example/fooddash/pkg/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// sqlPinger adapts gorm to the health checks.
type sqlPinger struct {
	db *gorm.DB
}

func (p sqlPinger) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting fooddash",
		zap.String("name", cfg.Server.Name),
		zap.Int("http_port", cfg.Gateway.Port),
		zap.Int("grpc_port", cfg.Server.Port))

	ctx := context.Background()

	// MongoDB
	mongoRepo, err := repository.NewMongoRepository(&cfg.MongoDB)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	if err := mongoRepo.Ping(ctx); err != nil {
		logger.Fatal("MongoDB is not reachable", zap.Error(err))
	}
	if err := mongoRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}

	// MySQL
	db, err := repository.OpenMySQL(&cfg.MySQL)
	if err != nil {
		logger.Fatal("Failed to connect to MySQL", zap.Error(err))
	}

	// Redis
	redisRepo := repository.NewRedisRepository(&cfg.Redis)
	if err := redisRepo.Ping(ctx); err != nil {
		logger.Warn("Redis connection failed, continuing without cache and checkout lock", zap.Error(err))
	} else {
		logger.Info("Redis connected successfully")
	}

	users := repository.NewUserRepository(db, redisRepo, cfg.MySQL.OpTimeout, logger)
	carts := repository.NewCartRepository(mongoRepo)
	catalog := repository.NewCatalogRepository(mongoRepo)
	orders := repository.NewOrderRepository(mongoRepo)
	payments := repository.NewPaymentRepository(mongoRepo)

	tokens := auth.NewTokenManager(cfg.Auth)

	loc, err := time.LoadLocation(cfg.Order.Timezone)
	if err != nil {
		logger.Fatal("Invalid order timezone", zap.Error(err))
	}
	dispatcher, err := notify.NewDispatcher(
		notify.NewSender(cfg.Notification, logger),
		logger,
		notify.WithLocation(loc),
		notify.WithSendTimeout(cfg.Notification.SendTimeout),
	)
	if err != nil {
		logger.Fatal("Failed to start notification dispatcher", zap.Error(err))
	}

	publisher := events.NewPublisher(cfg.Kafka, logger)

	orderService, err := service.NewOrderService(service.OrderDeps{
		Orders:    orders,
		Carts:     carts,
		Catalog:   catalog,
		Payments:  payments,
		Users:     users,
		Notifier:  dispatcher,
		Publisher: publisher,
		Auditor:   mongoRepo,
		Locker:    redisRepo,
	}, cfg.Order, logger)
	if err != nil {
		logger.Fatal("Failed to create order service", zap.Error(err))
	}

	gw := gateway.NewGateway(&cfg.Gateway, gateway.Services{
		Orders:   orderService,
		Carts:    service.NewCartService(carts, catalog, logger),
		Auth:     service.NewAuthService(users, tokens, logger),
		Catalog:  service.NewCatalogService(catalog),
		Payments: service.NewPaymentService(payments, logger),
	}, tokens, mongoRepo, logger)

	health := grpcserver.NewHealthServer(&cfg.Server, map[string]grpcserver.Pinger{
		"mongodb": mongoRepo,
		"mysql":   sqlPinger{db: db},
		"redis":   redisRepo,
	}, logger)

	serverErr := make(chan error, 2)
	go func() {
		if err := gw.Start(); err != nil {
			serverErr <- fmt.Errorf("gateway: %w", err)
		}
	}()
	go func() {
		if err := health.Start(); err != nil {
			serverErr <- fmt.Errorf("health: %w", err)
		}
	}()

	// Service discovery is optional
	instance := &discovery.ServiceInstance{
		Name:     cfg.Server.Name,
		Host:     cfg.Server.Host,
		Port:     cfg.Server.Port,
		Metadata: map[string]string{"http": cfg.Gateway.Addr()},
	}
	var sd *discovery.ServiceDiscovery
	if len(cfg.Etcd.Endpoints) > 0 {
		sd, err = discovery.NewServiceDiscovery(&cfg.Etcd, logger)
		if err != nil {
			logger.Warn("Failed to connect to etcd, continuing without service discovery", zap.Error(err))
		} else if err := sd.Register(ctx, instance); err != nil {
			logger.Warn("Failed to register service", zap.Error(err))
		} else {
			logger.Info("Service registered in etcd",
				zap.String("name", instance.Name),
				zap.String("address", instance.Addr()))
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-serverErr:
		logger.Error("Server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Gateway.ShutdownTimeout)
	defer cancel()

	if sd != nil {
		if err := sd.Deregister(shutdownCtx, instance); err != nil {
			logger.Error("Failed to deregister service", zap.Error(err))
		}
		sd.Close()
	}

	if err := gw.Shutdown(shutdownCtx); err != nil {
		logger.Error("Gateway shutdown failed", zap.Error(err))
	}
	health.Stop()

	if err := dispatcher.Stop(); err != nil {
		logger.Error("Notification dispatcher stop failed", zap.Error(err))
	}
	if err := publisher.Close(); err != nil {
		logger.Error("Event publisher close failed", zap.Error(err))
	}

	if err := redisRepo.Close(); err != nil {
		logger.Error("Redis close failed", zap.Error(err))
	}
	if err := repository.CloseSQL(db); err != nil {
		logger.Error("MySQL close failed", zap.Error(err))
	}
	if err := mongoRepo.Close(shutdownCtx); err != nil {
		logger.Error("MongoDB close failed", zap.Error(err))
	}

	logger.Info("Service stopped")
}
