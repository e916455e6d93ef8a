package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/BuzzwordStrategies/MarketingOS/internal/api/handler"
	"github.com/BuzzwordStrategies/MarketingOS/internal/api/middleware"
	"github.com/BuzzwordStrategies/MarketingOS/internal/attribution"
	"github.com/BuzzwordStrategies/MarketingOS/internal/catalog"
	"github.com/BuzzwordStrategies/MarketingOS/internal/config"
	"github.com/BuzzwordStrategies/MarketingOS/internal/core/postgres/repository"
	"github.com/BuzzwordStrategies/MarketingOS/internal/engine"
	"github.com/BuzzwordStrategies/MarketingOS/internal/executor"
	"github.com/BuzzwordStrategies/MarketingOS/internal/infrastructure/redis"
	"github.com/BuzzwordStrategies/MarketingOS/internal/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}
	if err := repository.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database: ", err)
	}
	store := repository.NewExecutionRepository(db)

	redisClient, err := redis.NewClient(ctx, cfg.Redis.Addr)
	if err != nil {
		log.Fatal("Failed to connect to redis: ", err)
	}
	notifier := redis.NewNotifier(redisClient)

	m := metrics.New(prometheus.DefaultRegisterer)
	estimator := attribution.NewHeuristic(time.Now().UnixNano())
	registry := executor.Simulated(cfg.Engine.SimulatedStepDelay)

	cat := catalog.Default()
	eng := engine.New(cat, store, notifier, registry, estimator, m, engine.Config{
		TaskTimeout:     cfg.Engine.TaskTimeout,
		StoreAttempts:   cfg.Engine.StoreAttempts,
		StoreRetryDelay: cfg.Engine.StoreRetryDelay,
	})

	workflowHandler := handler.NewWorkflowHandler(eng, cat, notifier)

	router := gin.Default()
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	api.Use(middleware.Auth(cfg.Auth.JWTSecret))
	workflowHandler.Register(api)

	server := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router,
	}

	go func() {
		log.Println("Server starting on ", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("HTTP shutdown error: ", err)
	}
	if err := eng.Shutdown(shutdownCtx); err != nil {
		log.Println("Engine shutdown error: ", err)
	}
}
