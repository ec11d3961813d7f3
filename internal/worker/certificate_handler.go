// Package worker consumes queued certificate batches: it loads the design
// and the event's attendees, runs the generator, and streams progress back
// through Redis.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"attendex/event-portal-backend/internal/certificates/batch"
	"attendex/event-portal-backend/internal/certificates/designs"
	"attendex/event-portal-backend/internal/certificates/render"
	"attendex/event-portal-backend/internal/certificates/template"
	"attendex/event-portal-backend/internal/config"
	"attendex/event-portal-backend/internal/exports"
	"attendex/event-portal-backend/internal/notifications"
	"attendex/event-portal-backend/internal/tasks"
)

// ObjectUploader is the part of the storage client the worker needs.
type ObjectUploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// DesignSource hands back a saved design's document and records run
// summaries against it.
type DesignSource interface {
	GetDocument(ctx context.Context, id uint) (template.Document, error)
	RecordRun(ctx context.Context, run *designs.Run) error
}

// RecipientSource lists an event's attendees as substitution contexts.
type RecipientSource interface {
	CertificateRecipients(ctx context.Context, eventID uuid.UUID, checkedInOnly bool) ([]template.ContextRecord, error)
}

// ProgressPublisher fans batch lifecycle messages out to listeners.
type ProgressPublisher interface {
	Publish(ctx context.Context, msg notifications.BatchMessage)
}

// CertificateBatchHandler processes certificate batch tasks.
type CertificateBatchHandler struct {
	designs   DesignSource
	events    RecipientSource
	renderer  render.Renderer
	store     ObjectUploader
	deliver   batch.Deliverer
	publisher ProgressPublisher
	render    config.RenderConfig
	logger    *zap.Logger
}

func NewCertificateBatchHandler(
	designService DesignSource,
	eventService RecipientSource,
	renderer render.Renderer,
	store ObjectUploader,
	deliver batch.Deliverer,
	publisher ProgressPublisher,
	renderCfg config.RenderConfig,
	logger *zap.Logger,
) *CertificateBatchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CertificateBatchHandler{
		designs:   designService,
		events:    eventService,
		renderer:  renderer,
		store:     store,
		deliver:   deliver,
		publisher: publisher,
		render:    renderCfg,
		logger:    logger,
	}
}

// ProcessTask implements asynq.Handler.
func (h *CertificateBatchHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.CertificateBatchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		h.logger.Error("Failed to unmarshal batch payload", zap.Error(err))
		return err
	}

	log := h.logger.With(
		zap.String("task_id", payload.TaskID),
		zap.Uint("design_id", payload.DesignID),
		zap.String("event_id", payload.EventID),
	)
	log.Info("Starting certificate batch")

	eventID, err := uuid.Parse(payload.EventID)
	if err != nil {
		log.Error("Invalid event id in payload", zap.Error(err))
		return fmt.Errorf("parse event id: %w", err)
	}

	doc, err := h.designs.GetDocument(ctx, payload.DesignID)
	if err != nil {
		log.Error("Failed to load design", zap.Error(err))
		return err
	}

	recipients, err := h.events.CertificateRecipients(ctx, eventID, payload.CheckedInOnly)
	if err != nil {
		log.Error("Failed to load recipients", zap.Error(err))
		return err
	}

	h.publisher.Publish(ctx, notifications.BatchMessage{
		Type:     notifications.TypeBatchStarted,
		TaskID:   payload.TaskID,
		EventID:  payload.EventID,
		DesignID: payload.DesignID,
		Total:    len(recipients),
	})

	stage := batch.NewStage(doc)
	generator := batch.NewGenerator(stage, h.renderer, h.artifactStore(payload.EventID), h.deliver, log)

	opts := batch.Options{
		SettleDelay: h.render.SettleDelay,
		OnProgress: func(current, total int) {
			h.publisher.Publish(ctx, notifications.BatchMessage{
				Type:     notifications.TypeBatchProgress,
				TaskID:   payload.TaskID,
				EventID:  payload.EventID,
				DesignID: payload.DesignID,
				Current:  current,
				Total:    total,
			})
		},
		OnOutcome: func(_ int, outcome batch.Outcome) {
			o := outcome
			h.publisher.Publish(ctx, notifications.BatchMessage{
				Type:     notifications.TypeBatchOutcome,
				TaskID:   payload.TaskID,
				EventID:  payload.EventID,
				DesignID: payload.DesignID,
				Outcome:  &o,
			})
		},
	}

	outcomes, err := generator.Run(ctx, recipients, opts)
	if err != nil {
		log.Error("Batch run failed", zap.Error(err))
		return err
	}

	summary := summarize(outcomes)
	h.publisher.Publish(ctx, notifications.BatchMessage{
		Type:      notifications.TypeBatchFinished,
		TaskID:    payload.TaskID,
		EventID:   payload.EventID,
		DesignID:  payload.DesignID,
		Total:     len(outcomes),
		Succeeded: summary.succeeded,
		Failed:    summary.failed,
		Cancelled: summary.cancelled,
	})

	reportKey, err := h.uploadReport(ctx, payload, outcomes)
	if err != nil {
		// The certificates themselves went out; a missing report is not
		// worth a retry of the whole batch.
		log.Warn("Failed to upload batch report", zap.Error(err))
		reportKey = ""
	}

	run := &designs.Run{
		TaskID:    payload.TaskID,
		DesignID:  payload.DesignID,
		EventID:   payload.EventID,
		Total:     len(outcomes),
		Succeeded: summary.succeeded,
		Failed:    summary.failed,
		Cancelled: summary.cancelled,
		ReportKey: reportKey,
	}
	if err := h.designs.RecordRun(ctx, run); err != nil {
		log.Warn("Failed to record run summary", zap.Error(err))
	}

	log.Info("Certificate batch completed",
		zap.Int("succeeded", summary.succeeded),
		zap.Int("failed", summary.failed),
		zap.Int("cancelled", summary.cancelled))

	return nil
}

// artifactStore scopes uploads under the event's certificate prefix.
func (h *CertificateBatchHandler) artifactStore(eventID string) batch.ArtifactStore {
	return &minioArtifactStore{store: h.store, eventID: eventID}
}

type minioArtifactStore struct {
	store   ObjectUploader
	eventID string
}

func (s *minioArtifactStore) Persist(ctx context.Context, artifact *render.Artifact, key string) (string, error) {
	objectKey := fmt.Sprintf("certificates/%s/%s-%s", s.eventID, key, artifact.FileName)
	reader := bytes.NewReader(artifact.Data)

	if _, err := s.store.Upload(ctx, objectKey, reader, int64(len(artifact.Data)), artifact.ContentType); err != nil {
		return "", err
	}
	return s.store.PresignedURL(ctx, objectKey, 7*24*time.Hour)
}

func (h *CertificateBatchHandler) uploadReport(ctx context.Context, payload tasks.CertificateBatchPayload, outcomes []batch.Outcome) (string, error) {
	var buf bytes.Buffer
	if err := exports.OutcomesXLSX(&buf, outcomes); err != nil {
		return "", fmt.Errorf("build outcomes workbook: %w", err)
	}

	key := fmt.Sprintf("reports/%s/batch-%s.xlsx", payload.EventID, payload.TaskID)
	if _, err := h.store.Upload(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()),
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"); err != nil {
		return "", err
	}
	return key, nil
}

type batchSummary struct {
	succeeded, failed, cancelled int
}

func summarize(outcomes []batch.Outcome) batchSummary {
	var s batchSummary
	for _, o := range outcomes {
		switch o.Status {
		case batch.StatusSuccess:
			s.succeeded++
		case batch.StatusFailed:
			s.failed++
		case batch.StatusCancelled:
			s.cancelled++
		}
	}
	return s
}
