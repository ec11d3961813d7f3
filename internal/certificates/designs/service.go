package designs

import (
	"context"
	"fmt"
	"time"

	"gorm.io/datatypes"

	"attendex/event-portal-backend/internal/certificates/render"
	"attendex/event-portal-backend/internal/certificates/template"
)

var ErrDesignNotFound = fmt.Errorf("design not found")

// BatchEnqueuer hands a certificate batch off to the background worker.
type BatchEnqueuer interface {
	EnqueueCertificateBatch(ctx context.Context, designID uint, eventID string, checkedInOnly bool) (taskID string, err error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Design, error)
	Get(ctx context.Context, id uint) (*Design, error)
	GetDocument(ctx context.Context, id uint) (template.Document, error)
	List(ctx context.Context, eventID string) ([]Design, error)
	SaveDocument(ctx context.Context, id uint, doc template.Document) (*Design, error)
	Rename(ctx context.Context, id uint, title string) (*Design, error)
	Delete(ctx context.Context, id uint) error

	AddElement(ctx context.Context, id uint, kind template.ElementKind) (template.Document, string, error)
	UpdateElement(ctx context.Context, id uint, elementID string, patch template.ElementPatch) (template.Document, error)
	RemoveElement(ctx context.Context, id uint, elementID string) (template.Document, error)
	ReorderLayer(ctx context.Context, id uint, elementID string, direction template.LayerDirection) (template.Document, error)
	DuplicateElement(ctx context.Context, id uint, elementID string) (template.Document, string, error)
	ApplyPreset(ctx context.Context, id uint, presetName string) (template.Document, error)

	Export(ctx context.Context, id uint) (*render.Artifact, error)
	Issue(ctx context.Context, id uint, checkedInOnly bool) (string, error)

	RecordRun(ctx context.Context, run *Run) error
	Runs(ctx context.Context, id uint) ([]Run, error)
}

type CreateRequest struct {
	Title     string `json:"title" binding:"required"`
	EventID   string `json:"event_id"`
	Preset    string `json:"preset"`
	CreatedBy string `json:"created_by"`
}

type designService struct {
	repo     Repository
	renderer render.Renderer
	enqueue  BatchEnqueuer
}

func NewService(repo Repository, renderer render.Renderer, enqueue BatchEnqueuer) Service {
	return &designService{repo: repo, renderer: renderer, enqueue: enqueue}
}

func (s *designService) Create(ctx context.Context, req CreateRequest) (*Design, error) {
	doc := template.NewDocument()
	if req.Preset != "" {
		preset, err := PresetByName(req.Preset)
		if err != nil {
			return nil, err
		}
		doc = preset.Document()
	}

	data, err := doc.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("serialize design: %w", err)
	}

	design := &Design{
		Title:     req.Title,
		EventID:   req.EventID,
		Content:   datatypes.JSON(data),
		CreatedBy: req.CreatedBy,
	}
	if err := s.repo.Create(ctx, design); err != nil {
		return nil, err
	}
	return design, nil
}

func (s *designService) Get(ctx context.Context, id uint) (*Design, error) {
	design, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if design == nil {
		return nil, ErrDesignNotFound
	}
	return design, nil
}

func (s *designService) GetDocument(ctx context.Context, id uint) (template.Document, error) {
	design, err := s.Get(ctx, id)
	if err != nil {
		return template.Document{}, err
	}
	return template.LoadDesign(design.Content)
}

func (s *designService) List(ctx context.Context, eventID string) ([]Design, error) {
	return s.repo.ListByEvent(ctx, eventID)
}

func (s *designService) RecordRun(ctx context.Context, run *Run) error {
	return s.repo.CreateRun(ctx, run)
}

func (s *designService) Runs(ctx context.Context, id uint) ([]Run, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListRunsByDesign(ctx, id)
}

func (s *designService) SaveDocument(ctx context.Context, id uint, doc template.Document) (*Design, error) {
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid design: %w", err)
	}

	design, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	data, err := doc.ToJSON()
	if err != nil {
		return nil, fmt.Errorf("serialize design: %w", err)
	}
	design.Content = datatypes.JSON(data)
	design.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, design); err != nil {
		return nil, err
	}
	return design, nil
}

func (s *designService) Rename(ctx context.Context, id uint, title string) (*Design, error) {
	design, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	design.Title = title
	if err := s.repo.Update(ctx, design); err != nil {
		return nil, err
	}
	return design, nil
}

func (s *designService) Delete(ctx context.Context, id uint) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *designService) AddElement(ctx context.Context, id uint, kind template.ElementKind) (template.Document, string, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return template.Document{}, "", err
	}

	doc, elementID := template.AddElement(doc, kind)
	if _, err := s.SaveDocument(ctx, id, doc); err != nil {
		return template.Document{}, "", err
	}
	return doc, elementID, nil
}

func (s *designService) UpdateElement(ctx context.Context, id uint, elementID string, patch template.ElementPatch) (template.Document, error) {
	return s.mutate(ctx, id, func(doc template.Document) template.Document {
		return template.UpdateElement(doc, elementID, patch)
	})
}

func (s *designService) RemoveElement(ctx context.Context, id uint, elementID string) (template.Document, error) {
	return s.mutate(ctx, id, func(doc template.Document) template.Document {
		return template.RemoveElement(doc, elementID)
	})
}

func (s *designService) ReorderLayer(ctx context.Context, id uint, elementID string, direction template.LayerDirection) (template.Document, error) {
	return s.mutate(ctx, id, func(doc template.Document) template.Document {
		return template.ReorderLayer(doc, elementID, direction)
	})
}

func (s *designService) DuplicateElement(ctx context.Context, id uint, elementID string) (template.Document, string, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return template.Document{}, "", err
	}

	doc, newID := template.DuplicateElement(doc, elementID)
	if newID == "" {
		return doc, "", nil
	}
	if _, err := s.SaveDocument(ctx, id, doc); err != nil {
		return template.Document{}, "", err
	}
	return doc, newID, nil
}

func (s *designService) ApplyPreset(ctx context.Context, id uint, presetName string) (template.Document, error) {
	preset, err := PresetByName(presetName)
	if err != nil {
		return template.Document{}, err
	}
	layout := preset.Document()

	return s.mutate(ctx, id, func(doc template.Document) template.Document {
		return template.ApplyTemplate(doc, layout.Elements, layout.Background, layout.Border)
	})
}

// Export rasterizes the saved design as-is, with placeholder tokens left
// verbatim. Used for editor previews and proofing.
func (s *designService) Export(ctx context.Context, id uint) (*render.Artifact, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.renderer.Render(ctx, doc)
}

// Issue queues a certificate batch for the design's event.
func (s *designService) Issue(ctx context.Context, id uint, checkedInOnly bool) (string, error) {
	design, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if design.EventID == "" {
		return "", fmt.Errorf("design %d is not attached to an event", id)
	}
	return s.enqueue.EnqueueCertificateBatch(ctx, design.ID, design.EventID, checkedInOnly)
}

func (s *designService) mutate(ctx context.Context, id uint, op func(template.Document) template.Document) (template.Document, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return template.Document{}, err
	}

	next := op(doc)
	if _, err := s.SaveDocument(ctx, id, next); err != nil {
		return template.Document{}, err
	}
	return next, nil
}
