package designs

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, design *Design) error
	GetByID(ctx context.Context, id uint) (*Design, error)
	ListByEvent(ctx context.Context, eventID string) ([]Design, error)
	Update(ctx context.Context, design *Design) error
	Delete(ctx context.Context, id uint) error

	CreateRun(ctx context.Context, run *Run) error
	ListRunsByDesign(ctx context.Context, designID uint) ([]Run, error)
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, design *Design) error {
	return r.db.WithContext(ctx).Create(design).Error
}

func (r *gormRepository) GetByID(ctx context.Context, id uint) (*Design, error) {
	var design Design
	err := r.db.WithContext(ctx).First(&design, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &design, nil
}

func (r *gormRepository) ListByEvent(ctx context.Context, eventID string) ([]Design, error) {
	var out []Design
	q := r.db.WithContext(ctx).Order("updated_at DESC")
	if eventID != "" {
		q = q.Where("event_id = ?", eventID)
	}
	err := q.Find(&out).Error
	return out, err
}

func (r *gormRepository) Update(ctx context.Context, design *Design) error {
	return r.db.WithContext(ctx).Save(design).Error
}

func (r *gormRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&Design{}, id).Error
}

func (r *gormRepository) CreateRun(ctx context.Context, run *Run) error {
	return r.db.WithContext(ctx).Create(run).Error
}

func (r *gormRepository) ListRunsByDesign(ctx context.Context, designID uint) ([]Run, error) {
	var out []Run
	err := r.db.WithContext(ctx).
		Where("design_id = ?", designID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
