package events

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	StatusDraft     EventStatus = "draft"
	StatusPublished EventStatus = "published"
	StatusCompleted EventStatus = "completed"
	StatusCancelled EventStatus = "cancelled"
)

type Event struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	Title       string      `json:"title" db:"title"`
	Description string      `json:"description" db:"description"`
	Location    string      `json:"location" db:"location"`
	Status      EventStatus `json:"status" db:"status"`
	StartsAt    time.Time   `json:"starts_at" db:"starts_at"`
	EndsAt      time.Time   `json:"ends_at" db:"ends_at"`
	Capacity    int         `json:"capacity" db:"capacity"`
	CreatedBy   uuid.UUID   `json:"created_by" db:"created_by"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

type Attendee struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	EventID      uuid.UUID  `json:"event_id" db:"event_id"`
	UserID       string     `json:"user_id" db:"user_id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	Organization string     `json:"organization" db:"organization"`
	CheckedIn    bool       `json:"checked_in" db:"checked_in"`
	CheckedInAt  *time.Time `json:"checked_in_at,omitempty" db:"checked_in_at"`
	RegisteredAt time.Time  `json:"registered_at" db:"registered_at"`
}
