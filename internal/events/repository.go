package events

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error)
	ListEvents(ctx context.Context, status *EventStatus) ([]Event, error)
	UpdateEvent(ctx context.Context, event *Event) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error

	CreateAttendee(ctx context.Context, attendee *Attendee) error
	GetAttendeeByID(ctx context.Context, id uuid.UUID) (*Attendee, error)
	GetAttendeeByUserID(ctx context.Context, eventID uuid.UUID, userID string) (*Attendee, error)
	ListAttendees(ctx context.Context, eventID uuid.UUID, checkedInOnly bool) ([]Attendee, error)
	MarkCheckedIn(ctx context.Context, id uuid.UUID, at time.Time) error
	CountAttendees(ctx context.Context, eventID uuid.UUID) (int, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateEvent(ctx context.Context, event *Event) error {
	query := `
		INSERT INTO events (
			id, title, description, location, status, starts_at, ends_at,
			capacity, created_by, created_at, updated_at
		) VALUES (
			:id, :title, :description, :location, :status, :starts_at, :ends_at,
			:capacity, :created_by, :created_at, :updated_at
		)`
	_, err := r.db.NamedExecContext(ctx, query, event)
	return err
}

func (r *postgresRepository) GetEventByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	var event Event
	err := r.db.GetContext(ctx, &event, "SELECT * FROM events WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return &event, err
}

func (r *postgresRepository) ListEvents(ctx context.Context, status *EventStatus) ([]Event, error) {
	var evs []Event
	if status != nil {
		err := r.db.SelectContext(ctx, &evs, "SELECT * FROM events WHERE status = $1 ORDER BY starts_at DESC", *status)
		return evs, err
	}
	err := r.db.SelectContext(ctx, &evs, "SELECT * FROM events ORDER BY starts_at DESC")
	return evs, err
}

func (r *postgresRepository) UpdateEvent(ctx context.Context, event *Event) error {
	query := `
		UPDATE events SET
			title = :title,
			description = :description,
			location = :location,
			status = :status,
			starts_at = :starts_at,
			ends_at = :ends_at,
			capacity = :capacity,
			updated_at = :updated_at
		WHERE id = :id`
	_, err := r.db.NamedExecContext(ctx, query, event)
	return err
}

func (r *postgresRepository) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = $1", id)
	return err
}

func (r *postgresRepository) CreateAttendee(ctx context.Context, attendee *Attendee) error {
	query := `
		INSERT INTO attendees (
			id, event_id, user_id, name, email, organization,
			checked_in, checked_in_at, registered_at
		) VALUES (
			:id, :event_id, :user_id, :name, :email, :organization,
			:checked_in, :checked_in_at, :registered_at
		)`
	_, err := r.db.NamedExecContext(ctx, query, attendee)
	return err
}

func (r *postgresRepository) GetAttendeeByID(ctx context.Context, id uuid.UUID) (*Attendee, error) {
	var attendee Attendee
	err := r.db.GetContext(ctx, &attendee, "SELECT * FROM attendees WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return &attendee, err
}

func (r *postgresRepository) GetAttendeeByUserID(ctx context.Context, eventID uuid.UUID, userID string) (*Attendee, error) {
	var attendee Attendee
	err := r.db.GetContext(ctx, &attendee,
		"SELECT * FROM attendees WHERE event_id = $1 AND user_id = $2", eventID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return &attendee, err
}

func (r *postgresRepository) ListAttendees(ctx context.Context, eventID uuid.UUID, checkedInOnly bool) ([]Attendee, error) {
	var attendees []Attendee
	query := "SELECT * FROM attendees WHERE event_id = $1"
	if checkedInOnly {
		query += " AND checked_in = true"
	}
	query += " ORDER BY registered_at ASC"
	err := r.db.SelectContext(ctx, &attendees, query, eventID)
	return attendees, err
}

func (r *postgresRepository) MarkCheckedIn(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE attendees SET checked_in = true, checked_in_at = $2 WHERE id = $1", id, at)
	return err
}

func (r *postgresRepository) CountAttendees(ctx context.Context, eventID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM attendees WHERE event_id = $1", eventID)
	return count, err
}
