package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"attendex/event-portal-backend/internal/certificates/template"
)

type Service interface {
	CreateEvent(ctx context.Context, req CreateEventRequest) (*Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*Event, error)
	ListEvents(ctx context.Context, status *EventStatus) ([]Event, error)
	UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID) error

	RegisterAttendee(ctx context.Context, eventID uuid.UUID, req RegisterRequest) (*Attendee, error)
	ListAttendees(ctx context.Context, eventID uuid.UUID, checkedInOnly bool) ([]Attendee, error)
	CheckIn(ctx context.Context, attendeeID uuid.UUID) (*Attendee, error)
	FindAttendeeByTag(ctx context.Context, eventID uuid.UUID, tag string) (*Attendee, error)

	CertificateRecipients(ctx context.Context, eventID uuid.UUID, checkedInOnly bool) ([]template.ContextRecord, error)
}

type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	EndsAt      time.Time `json:"ends_at" binding:"required"`
	Capacity    int       `json:"capacity"`
	CreatedBy   uuid.UUID `json:"created_by"`
}

type UpdateEventRequest struct {
	Title       *string      `json:"title"`
	Description *string      `json:"description"`
	Location    *string      `json:"location"`
	Status      *EventStatus `json:"status"`
	StartsAt    *time.Time   `json:"starts_at"`
	EndsAt      *time.Time   `json:"ends_at"`
	Capacity    *int         `json:"capacity"`
}

type RegisterRequest struct {
	UserID       string `json:"user_id"`
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Organization string `json:"organization"`
}

var (
	ErrEventNotFound     = fmt.Errorf("event not found")
	ErrAttendeeNotFound  = fmt.Errorf("attendee not found")
	ErrEventFull         = fmt.Errorf("event is at capacity")
	ErrAlreadyRegistered = fmt.Errorf("already registered for this event")
)

type eventService struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &eventService{repo: repo}
}

func (s *eventService) CreateEvent(ctx context.Context, req CreateEventRequest) (*Event, error) {
	if !req.EndsAt.After(req.StartsAt) {
		return nil, fmt.Errorf("event must end after it starts")
	}

	now := time.Now()
	event := &Event{
		ID:          uuid.New(),
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Status:      StatusDraft,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Capacity:    req.Capacity,
		CreatedBy:   req.CreatedBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventService) GetEvent(ctx context.Context, id uuid.UUID) (*Event, error) {
	event, err := s.repo.GetEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context, status *EventStatus) ([]Event, error) {
	return s.repo.ListEvents(ctx, status)
}

func (s *eventService) UpdateEvent(ctx context.Context, id uuid.UUID, req UpdateEventRequest) (*Event, error) {
	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.Status != nil {
		event.Status = *req.Status
	}
	if req.StartsAt != nil {
		event.StartsAt = *req.StartsAt
	}
	if req.EndsAt != nil {
		event.EndsAt = *req.EndsAt
	}
	if req.Capacity != nil {
		event.Capacity = *req.Capacity
	}
	if !event.EndsAt.After(event.StartsAt) {
		return nil, fmt.Errorf("event must end after it starts")
	}
	event.UpdatedAt = time.Now()

	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetEvent(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteEvent(ctx, id)
}

func (s *eventService) RegisterAttendee(ctx context.Context, eventID uuid.UUID, req RegisterRequest) (*Attendee, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if event.Capacity > 0 {
		count, err := s.repo.CountAttendees(ctx, eventID)
		if err != nil {
			return nil, err
		}
		if count >= event.Capacity {
			return nil, ErrEventFull
		}
	}

	if req.UserID != "" {
		existing, err := s.repo.GetAttendeeByUserID(ctx, eventID, req.UserID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrAlreadyRegistered
		}
	}

	attendee := &Attendee{
		ID:           uuid.New(),
		EventID:      eventID,
		UserID:       req.UserID,
		Name:         req.Name,
		Email:        req.Email,
		Organization: req.Organization,
		RegisteredAt: time.Now(),
	}

	if err := s.repo.CreateAttendee(ctx, attendee); err != nil {
		return nil, err
	}
	return attendee, nil
}

func (s *eventService) ListAttendees(ctx context.Context, eventID uuid.UUID, checkedInOnly bool) ([]Attendee, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListAttendees(ctx, eventID, checkedInOnly)
}

// CheckIn marks an attendee as present. Checking in twice is a no-op.
func (s *eventService) CheckIn(ctx context.Context, attendeeID uuid.UUID) (*Attendee, error) {
	attendee, err := s.repo.GetAttendeeByID(ctx, attendeeID)
	if err != nil {
		return nil, err
	}
	if attendee == nil {
		return nil, ErrAttendeeNotFound
	}
	if attendee.CheckedIn {
		return attendee, nil
	}

	now := time.Now()
	if err := s.repo.MarkCheckedIn(ctx, attendeeID, now); err != nil {
		return nil, err
	}
	attendee.CheckedIn = true
	attendee.CheckedInAt = &now
	return attendee, nil
}

// FindAttendeeByTag resolves a badge tag (the user id encoded on the badge)
// to the attendee it belongs to. Returns nil when no attendee carries it.
func (s *eventService) FindAttendeeByTag(ctx context.Context, eventID uuid.UUID, tag string) (*Attendee, error) {
	return s.repo.GetAttendeeByUserID(ctx, eventID, tag)
}

// CertificateRecipients projects an event's attendees into the context
// records the certificate pipeline substitutes into designs.
func (s *eventService) CertificateRecipients(ctx context.Context, eventID uuid.UUID, checkedInOnly bool) ([]template.ContextRecord, error) {
	event, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	attendees, err := s.repo.ListAttendees(ctx, eventID, checkedInOnly)
	if err != nil {
		return nil, err
	}

	records := make([]template.ContextRecord, 0, len(attendees))
	for _, a := range attendees {
		records = append(records, RecipientRecord(event, a))
	}
	return records, nil
}

// RecipientRecord builds one attendee's substitution context from the event
// and registration data.
func RecipientRecord(event *Event, a Attendee) template.ContextRecord {
	return template.ContextRecord{
		"user_id":      a.UserID,
		"id":           a.ID.String(),
		"userName":     a.Name,
		"email":        a.Email,
		"organization": a.Organization,
		"title":        event.Title,
		"location":     event.Location,
		"eventDate":    event.StartsAt.Format("January 2, 2006"),
	}
}
