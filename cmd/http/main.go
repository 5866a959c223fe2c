package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-margin-service/config"
	"github.com/fekuna/omnipos-margin-service/internal/auth"
	"github.com/fekuna/omnipos-margin-service/internal/migrations"
	"github.com/fekuna/omnipos-margin-service/pkg/broker"
	"github.com/fekuna/omnipos-margin-service/pkg/cache"
	"github.com/fekuna/omnipos-margin-service/pkg/logger"
	"github.com/fekuna/omnipos-margin-service/pkg/postgres"

	linkedH "github.com/fekuna/omnipos-margin-service/internal/linked/handler"
	linkedUCPkg "github.com/fekuna/omnipos-margin-service/internal/linked/usecase"

	marginH "github.com/fekuna/omnipos-margin-service/internal/margin/handler"
	marginListenerPkg "github.com/fekuna/omnipos-margin-service/internal/margin/listener"
	marginUCPkg "github.com/fekuna/omnipos-margin-service/internal/margin/usecase"

	metaRepoPkg "github.com/fekuna/omnipos-margin-service/internal/meta/repository"
	orderRepoPkg "github.com/fekuna/omnipos-margin-service/internal/order/repository"
	prodRepoPkg "github.com/fekuna/omnipos-margin-service/internal/product/repository"

	settingsH "github.com/fekuna/omnipos-margin-service/internal/settings/handler"
	settingsRepoPkg "github.com/fekuna/omnipos-margin-service/internal/settings/repository"
	settingsUCPkg "github.com/fekuna/omnipos-margin-service/internal/settings/usecase"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     false,
		DisableStacktrace: false,
	}

	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	// 3.5 Run Migrations
	if err := migrations.Up(db.DB, "migrations"); err != nil {
		appLogger.Fatal("Could not run migrations", zap.Error(err))
	}

	// 4. Initialize Repositories
	prodRepo := prodRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)
	metaRepo := metaRepoPkg.NewPGRepository(db)
	settingsRepo := settingsRepoPkg.NewPGRepository(db)

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5.5 Initialize Kafka Consumer
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// 6. Initialize UseCases
	settingsUC := settingsUCPkg.NewSettingsUseCase(
		settingsRepo,
		redisClient,
		appLogger,
		cfg.Margin.DefaultMetaKey,
		time.Duration(cfg.Margin.SettingsCacheTTL)*time.Second,
	)
	marginUC := marginUCPkg.NewMarginUseCase(prodRepo, orderRepo, metaRepo, settingsUC, appLogger)
	linkedUC := linkedUCPkg.NewLinkedUseCase(prodRepo, metaRepo, appLogger)

	// 6.5 Initialize Listener
	marginListener := marginListenerPkg.NewMarginListener(kafkaConsumer, marginUC, settingsUC, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go marginListener.Start(ctx)

	// 7. Initialize Handlers
	marginHandler := marginH.NewMarginHandler(marginUC, appLogger)
	settingsHandler := settingsH.NewSettingsHandler(settingsUC, appLogger)
	linkedHandler := linkedH.NewLinkedHandler(linkedUC, appLogger)

	// 8. Router
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Route("/products/{id}", func(r chi.Router) {
			r.Get("/margin", marginHandler.GetProductMargin)
			r.Get("/margin/formatted", marginHandler.GetFormattedMargin)
			r.Get("/margin-category", marginHandler.GetAssignedCategory)
			r.Put("/margin-category", marginHandler.AssignCategory)

			r.Get("/linked", linkedHandler.GetLinkedProducts)
			r.Put("/linked", linkedHandler.SaveLinkedProducts)
			r.Get("/linked/candidates", linkedHandler.GetCandidates)
		})

		r.Post("/products/margins/bulk", marginHandler.BulkMargin)

		r.Route("/orders/{id}", func(r chi.Router) {
			r.Get("/margin", marginHandler.GetOrderMargin)
			r.Get("/margin/total", marginHandler.GetOrderTotalMargin)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Get("/margins", settingsHandler.GetMarginSettings)
			r.Put("/margins", settingsHandler.SaveMarginSettings)
			r.Get("/display", settingsHandler.GetDisplayOptions)
			r.Put("/display", settingsHandler.SaveDisplayOptions)
			r.Get("/functionality", settingsHandler.GetFunctionalityOptions)
			r.Put("/functionality", settingsHandler.SaveFunctionalityOptions)
		})
	})

	// 9. Start HTTP Server
	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	appLogger.Info("Starting HTTP server", zap.String("port", port))

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Forced shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
