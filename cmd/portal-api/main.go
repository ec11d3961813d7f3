package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"attendex/event-portal-backend/internal/certificates/designs"
	"attendex/event-portal-backend/internal/certificates/render"
	"attendex/event-portal-backend/internal/config"
	"attendex/event-portal-backend/internal/database"
	"attendex/event-portal-backend/internal/events"
	"attendex/event-portal-backend/internal/exports"
	"attendex/event-portal-backend/internal/notifications"
	ws "attendex/event-portal-backend/internal/notifications/websocket"
	"attendex/event-portal-backend/internal/registration"
	"attendex/event-portal-backend/internal/tasks"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	orm, err := database.ConnectORM(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open ORM connection", zap.Error(err))
	}
	if err := orm.AutoMigrate(&designs.Design{}, &designs.Run{}); err != nil {
		logger.Fatal("Failed to migrate design schema", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer rdb.Close()

	taskClient := tasks.NewClient(cfg.Redis.Addr(), logger)
	defer taskClient.Close()

	renderer, err := render.ForBackend(cfg.Render.Backend)
	if err != nil {
		logger.Fatal("Failed to select renderer", zap.Error(err))
	}

	eventRepo := events.NewRepository(db)
	eventService := events.NewService(eventRepo)
	eventHandler := events.NewHandler(eventService)

	designRepo := designs.NewRepository(orm)
	designService := designs.NewService(designRepo, renderer, taskClient)
	designHandler := designs.NewHandler(designService)

	exportHandler := exports.NewHandler(eventService)

	slotStore := registration.NewRedisSlotStore(rdb, 0)
	scanService := registration.NewService(eventService, slotStore, logger)
	scanIntake := registration.NewIntake(scanService, logger)
	scanHandler := registration.NewHandler(scanService, scanIntake)

	sweeper := registration.NewSweeper(slotStore, logger)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("Failed to start slot sweeper", zap.Error(err))
	}
	defer sweeper.Stop()

	manager := ws.NewManager(logger)
	defer manager.Close()

	bridgeCtx, cancelBridge := context.WithCancel(context.Background())
	defer cancelBridge()
	publisher := notifications.NewPublisher(rdb, logger)
	go bridgeBatchFeed(bridgeCtx, publisher, manager, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	api := router.Group("/api/v1")
	{
		eventHandler.RegisterRoutes(api)
		designHandler.RegisterRoutes(api)
		exportHandler.RegisterRoutes(api)
		scanHandler.RegisterRoutes(api)
	}

	router.GET("/ws", func(c *gin.Context) {
		if _, err := manager.HandleConnection(c.Writer, c.Request); err != nil {
			logger.Warn("WebSocket connection rejected", zap.Error(err))
		}
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	srv := &http.Server{
		Addr:    cfg.API.Addr(),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()
	logger.Info("API server started", zap.String("addr", cfg.API.Addr()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
}

// bridgeBatchFeed forwards Redis batch progress onto the WebSocket hub,
// resubscribing with backoff when the connection drops.
func bridgeBatchFeed(ctx context.Context, publisher *notifications.Publisher, manager *ws.Manager, logger *zap.Logger) {
	for {
		feed, err := publisher.SubscribeAll(ctx)
		if err != nil {
			logger.Warn("Batch feed subscription failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(5 * time.Second):
				continue
			}
		}

		for msg := range feed {
			manager.SendToEvent(msg)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
