package worker

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"attendex/event-portal-backend/internal/certificates/designs"
	"attendex/event-portal-backend/internal/certificates/render"
	"attendex/event-portal-backend/internal/certificates/template"
	"attendex/event-portal-backend/internal/config"
	"attendex/event-portal-backend/internal/notifications"
	"attendex/event-portal-backend/internal/tasks"
)

type fakeDesigns struct {
	doc  template.Document
	runs []*designs.Run
}

func (f *fakeDesigns) GetDocument(_ context.Context, _ uint) (template.Document, error) {
	return f.doc, nil
}

func (f *fakeDesigns) RecordRun(_ context.Context, run *designs.Run) error {
	f.runs = append(f.runs, run)
	return nil
}

type fakeEvents struct {
	recipients []template.ContextRecord
}

func (f *fakeEvents) CertificateRecipients(_ context.Context, _ uuid.UUID, _ bool) ([]template.ContextRecord, error) {
	return f.recipients, nil
}

type fakeRenderer struct {
	count int
}

func (f *fakeRenderer) Render(_ context.Context, _ template.Document) (*render.Artifact, error) {
	f.count++
	return &render.Artifact{Data: []byte("png"), ContentType: "image/png", FileName: "certificate.png"}, nil
}

type fakeUploader struct {
	keys []string
}

func (f *fakeUploader) Upload(_ context.Context, key string, _ io.Reader, _ int64, _ string) (string, error) {
	f.keys = append(f.keys, key)
	return key, nil
}

func (f *fakeUploader) PresignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://store.local/" + key, nil
}

type fakeDeliverer struct {
	sent int
}

func (f *fakeDeliverer) Deliver(_ context.Context, _ template.ContextRecord, _ string, _ *render.Artifact) error {
	f.sent++
	return nil
}

type recordingPublisher struct {
	messages []notifications.BatchMessage
}

func (r *recordingPublisher) Publish(_ context.Context, msg notifications.BatchMessage) {
	r.messages = append(r.messages, msg)
}

func (r *recordingPublisher) ofType(t string) []notifications.BatchMessage {
	var out []notifications.BatchMessage
	for _, m := range r.messages {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

func TestProcessTask(t *testing.T) {
	doc := template.NewDocument()
	doc, id := template.AddElement(doc, template.KindText)
	content := "Congrats { userName }"
	doc = template.UpdateElement(doc, id, template.ElementPatch{Content: &content})

	eventID := uuid.New()
	recipients := []template.ContextRecord{
		{"id": "a-1", "userName": "Ana", "email": "ana@example.com"},
		{"id": "a-2", "userName": "Bo", "email": "bo@example.com"},
	}

	uploader := &fakeUploader{}
	deliverer := &fakeDeliverer{}
	publisher := &recordingPublisher{}
	renderer := &fakeRenderer{}

	designSource := &fakeDesigns{doc: doc}
	handler := NewCertificateBatchHandler(
		designSource,
		&fakeEvents{recipients: recipients},
		renderer,
		uploader,
		deliverer,
		publisher,
		config.RenderConfig{},
		zap.NewNop(),
	)

	payload := tasks.CertificateBatchPayload{
		DesignID: 7,
		EventID:  eventID.String(),
		TaskID:   "task-1",
	}
	task, err := tasks.NewCertificateBatchTask(payload)
	require.NoError(t, err)

	require.NoError(t, handler.ProcessTask(context.Background(), task))

	assert.Equal(t, 2, renderer.count)
	assert.Equal(t, 2, deliverer.sent)

	// Two certificates plus the outcome report
	require.Len(t, uploader.keys, 3)
	assert.True(t, strings.HasPrefix(uploader.keys[0], fmt.Sprintf("certificates/%s/a-1", eventID)))
	assert.True(t, strings.HasPrefix(uploader.keys[2], "reports/"))

	require.Len(t, publisher.ofType(notifications.TypeBatchStarted), 1)
	assert.Len(t, publisher.ofType(notifications.TypeBatchProgress), 2)
	assert.Len(t, publisher.ofType(notifications.TypeBatchOutcome), 2)

	finished := publisher.ofType(notifications.TypeBatchFinished)
	require.Len(t, finished, 1)
	assert.Equal(t, 2, finished[0].Succeeded)
	assert.Equal(t, 0, finished[0].Failed)

	require.Len(t, designSource.runs, 1)
	run := designSource.runs[0]
	assert.Equal(t, "task-1", run.TaskID)
	assert.Equal(t, 2, run.Succeeded)
	assert.Equal(t, uploader.keys[2], run.ReportKey)
}

func TestProcessTaskRejectsBadEventID(t *testing.T) {
	handler := NewCertificateBatchHandler(
		&fakeDesigns{doc: template.NewDocument()},
		&fakeEvents{},
		&fakeRenderer{},
		&fakeUploader{},
		&fakeDeliverer{},
		&recordingPublisher{},
		config.RenderConfig{},
		zap.NewNop(),
	)

	task, err := tasks.NewCertificateBatchTask(tasks.CertificateBatchPayload{
		EventID: "not-a-uuid",
		TaskID:  "task-2",
	})
	require.NoError(t, err)

	assert.Error(t, handler.ProcessTask(context.Background(), task))
}

var _ asynq.Handler = (*CertificateBatchHandler)(nil)
