package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Client enqueues certificate batches. It satisfies the design service's
// enqueuer contract.
type Client struct {
	asynq  *asynq.Client
	logger *zap.Logger
}

func NewClient(redisAddr string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		asynq:  asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr}),
		logger: logger,
	}
}

// EnqueueCertificateBatch queues one batch run and returns its task id.
func (c *Client) EnqueueCertificateBatch(ctx context.Context, designID uint, eventID string, checkedInOnly bool) (string, error) {
	taskID := uuid.NewString()

	task, err := NewCertificateBatchTask(CertificateBatchPayload{
		DesignID:      designID,
		EventID:       eventID,
		CheckedInOnly: checkedInOnly,
		TaskID:        taskID,
	})
	if err != nil {
		return "", fmt.Errorf("build batch task: %w", err)
	}

	info, err := c.asynq.EnqueueContext(ctx, task,
		asynq.MaxRetry(3),
		asynq.Timeout(30*time.Minute),
		asynq.Queue("certificates"),
	)
	if err != nil {
		return "", fmt.Errorf("enqueue batch task: %w", err)
	}

	c.logger.Info("Certificate batch queued",
		zap.String("task_id", taskID),
		zap.String("queue_id", info.ID),
		zap.Uint("design_id", designID),
		zap.String("event_id", eventID))

	return taskID, nil
}

// Close releases the underlying queue connection.
func (c *Client) Close() error {
	return c.asynq.Close()
}
