package designs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"attendex/event-portal-backend/internal/certificates/render"
	"attendex/event-portal-backend/internal/certificates/template"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, design *Design) error {
	args := m.Called(ctx, design)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uint) (*Design, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Design), args.Error(1)
}

func (m *MockRepository) ListByEvent(ctx context.Context, eventID string) ([]Design, error) {
	args := m.Called(ctx, eventID)
	return args.Get(0).([]Design), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, design *Design) error {
	args := m.Called(ctx, design)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) CreateRun(ctx context.Context, run *Run) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRepository) ListRunsByDesign(ctx context.Context, designID uint) ([]Run, error) {
	args := m.Called(ctx, designID)
	return args.Get(0).([]Run), args.Error(1)
}

type captureRenderer struct {
	last template.Document
}

func (c *captureRenderer) Render(_ context.Context, doc template.Document) (*render.Artifact, error) {
	c.last = doc
	return &render.Artifact{Data: []byte("png"), ContentType: "image/png", FileName: "certificate.png"}, nil
}

type fakeEnqueuer struct {
	designID uint
	eventID  string
}

func (f *fakeEnqueuer) EnqueueCertificateBatch(_ context.Context, designID uint, eventID string, _ bool) (string, error) {
	f.designID = designID
	f.eventID = eventID
	return "task-123", nil
}

func storedDesign(t *testing.T, doc template.Document) *Design {
	t.Helper()
	data, err := doc.ToJSON()
	require.NoError(t, err)
	d := &Design{Title: "Launch certs", EventID: "ev-1", Content: data}
	d.ID = 7
	return d
}

func TestCreateFromPreset(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, &captureRenderer{}, &fakeEnqueuer{})
	ctx := context.Background()

	mockRepo.On("Create", ctx, mock.AnythingOfType("*designs.Design")).Return(nil)

	design, err := service.Create(ctx, CreateRequest{Title: "Gala", Preset: "classic"})
	require.NoError(t, err)

	doc, err := template.LoadDesign(design.Content)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Elements)
	assert.Equal(t, template.BorderDouble, doc.Border.Style)

	mockRepo.AssertExpectations(t)
}

func TestCreateRejectsUnknownPreset(t *testing.T) {
	service := NewService(new(MockRepository), &captureRenderer{}, &fakeEnqueuer{})

	_, err := service.Create(context.Background(), CreateRequest{Title: "x", Preset: "nope"})
	assert.Error(t, err)
}

func TestAddElementPersistsDocument(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, &captureRenderer{}, &fakeEnqueuer{})
	ctx := context.Background()

	stored := storedDesign(t, template.NewDocument())
	mockRepo.On("GetByID", ctx, uint(7)).Return(stored, nil)
	mockRepo.On("Update", ctx, mock.AnythingOfType("*designs.Design")).Return(nil)

	doc, elementID, err := service.AddElement(ctx, 7, template.KindText)
	require.NoError(t, err)
	require.NotEmpty(t, elementID)

	el, ok := doc.FindElement(elementID)
	require.True(t, ok)
	assert.Equal(t, template.KindText, el.Kind)

	// The stored JSONB now carries the new element
	saved, err := template.LoadDesign(stored.Content)
	require.NoError(t, err)
	_, ok = saved.FindElement(elementID)
	assert.True(t, ok)
}

func TestUpdateElementUnknownIDIsNoOp(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, &captureRenderer{}, &fakeEnqueuer{})
	ctx := context.Background()

	base := template.NewDocument()
	base, id := template.AddElement(base, template.KindText)
	stored := storedDesign(t, base)

	mockRepo.On("GetByID", ctx, uint(7)).Return(stored, nil)
	mockRepo.On("Update", ctx, mock.AnythingOfType("*designs.Design")).Return(nil)

	content := "changed"
	doc, err := service.UpdateElement(ctx, 7, "no-such-element", template.ElementPatch{Content: &content})
	require.NoError(t, err)

	el, _ := doc.FindElement(id)
	assert.Equal(t, "New text", el.Content)
}

func TestApplyPresetMintsFreshIDs(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, &captureRenderer{}, &fakeEnqueuer{})
	ctx := context.Background()

	classic, err := PresetByName("classic")
	require.NoError(t, err)
	presetIDs := map[string]bool{}
	for _, el := range classic.Document().Elements {
		presetIDs[el.ID] = true
	}

	stored := storedDesign(t, template.NewDocument())
	mockRepo.On("GetByID", ctx, uint(7)).Return(stored, nil)
	mockRepo.On("Update", ctx, mock.AnythingOfType("*designs.Design")).Return(nil)

	doc, err := service.ApplyPreset(ctx, 7, "classic")
	require.NoError(t, err)
	require.Len(t, doc.Elements, len(presetIDs))
	for _, el := range doc.Elements {
		assert.False(t, presetIDs[el.ID], "preset ids must be re-minted")
	}
}

func TestExportLeavesTokensVerbatim(t *testing.T) {
	mockRepo := new(MockRepository)
	renderer := &captureRenderer{}
	service := NewService(mockRepo, renderer, &fakeEnqueuer{})
	ctx := context.Background()

	base := template.NewDocument()
	base, id := template.AddElement(base, template.KindText)
	token := "Awarded to { userName }"
	base = template.UpdateElement(base, id, template.ElementPatch{Content: &token})
	stored := storedDesign(t, base)

	mockRepo.On("GetByID", ctx, uint(7)).Return(stored, nil)

	artifact, err := service.Export(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "image/png", artifact.ContentType)

	el, _ := renderer.last.FindElement(id)
	assert.Equal(t, "Awarded to { userName }", el.Content)
}

func TestIssueEnqueuesBatch(t *testing.T) {
	mockRepo := new(MockRepository)
	enqueuer := &fakeEnqueuer{}
	service := NewService(mockRepo, &captureRenderer{}, enqueuer)
	ctx := context.Background()

	stored := storedDesign(t, template.NewDocument())
	mockRepo.On("GetByID", ctx, uint(7)).Return(stored, nil)

	taskID, err := service.Issue(ctx, 7, true)
	require.NoError(t, err)
	assert.Equal(t, "task-123", taskID)
	assert.Equal(t, uint(7), enqueuer.designID)
	assert.Equal(t, "ev-1", enqueuer.eventID)
}

func TestIssueRequiresEvent(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, &captureRenderer{}, &fakeEnqueuer{})
	ctx := context.Background()

	stored := storedDesign(t, template.NewDocument())
	stored.EventID = ""
	mockRepo.On("GetByID", ctx, uint(7)).Return(stored, nil)

	_, err := service.Issue(ctx, 7, false)
	assert.Error(t, err)
}

func TestGetMissingDesign(t *testing.T) {
	mockRepo := new(MockRepository)
	service := NewService(mockRepo, &captureRenderer{}, &fakeEnqueuer{})
	ctx := context.Background()

	mockRepo.On("GetByID", ctx, uint(99)).Return(nil, nil)

	_, err := service.Get(ctx, 99)
	assert.ErrorIs(t, err, ErrDesignNotFound)
}
