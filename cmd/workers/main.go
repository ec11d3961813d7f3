// The workers binary runs the asynq task server that renders and delivers
// certificate batches.
package main

import (
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"attendex/event-portal-backend/internal/certificates/designs"
	"attendex/event-portal-backend/internal/certificates/render"
	"attendex/event-portal-backend/internal/config"
	"attendex/event-portal-backend/internal/database"
	"attendex/event-portal-backend/internal/events"
	"attendex/event-portal-backend/internal/mailer"
	"attendex/event-portal-backend/internal/notifications"
	"attendex/event-portal-backend/internal/tasks"
	"attendex/event-portal-backend/internal/worker"
	"attendex/event-portal-backend/pkg/storage"
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

	store, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		logger.Fatal("Failed to connect to object storage", zap.Error(err))
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr()})
	defer rdb.Close()

	renderer, err := render.ForBackend(cfg.Render.Backend)
	if err != nil {
		logger.Fatal("Failed to select renderer", zap.Error(err))
	}

	eventService := events.NewService(events.NewRepository(db))
	// The worker only reads documents; it never enqueues follow-up batches.
	designService := designs.NewService(designs.NewRepository(orm), renderer, nil)
	deliver := mailer.NewMailer(cfg.SMTP, logger)
	publisher := notifications.NewPublisher(rdb, logger)

	handler := worker.NewCertificateBatchHandler(
		designService,
		eventService,
		renderer,
		store,
		deliver,
		publisher,
		cfg.Render,
		logger,
	)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.Redis.Addr()},
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				"certificates": 10,
				"default":      1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeCertificateBatch, handler)

	logger.Info("Worker started",
		zap.Int("concurrency", cfg.Worker.Concurrency),
		zap.String("render_backend", cfg.Render.Backend))

	if err := srv.Run(mux); err != nil {
		logger.Fatal("Worker server failed", zap.Error(err))
	}
}
