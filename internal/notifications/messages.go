// Package notifications fans out certificate batch progress to listening
// clients over Redis pub/sub. The API process bridges the channel onto
// WebSocket connections.
package notifications

import (
	"fmt"
	"time"

	"attendex/event-portal-backend/internal/certificates/batch"
)

// Message types carried on the batch progress channel.
const (
	TypeBatchStarted  = "batch:started"
	TypeBatchProgress = "batch:progress"
	TypeBatchOutcome  = "batch:outcome"
	TypeBatchFinished = "batch:finished"
)

// BatchMessage is the envelope published for every batch lifecycle event.
type BatchMessage struct {
	Type     string    `json:"type"`
	TaskID   string    `json:"task_id"`
	EventID  string    `json:"event_id"`
	DesignID uint      `json:"design_id"`
	At       time.Time `json:"at"`

	// progress
	Current int `json:"current,omitempty"`
	Total   int `json:"total,omitempty"`

	// outcome
	Outcome *batch.Outcome `json:"outcome,omitempty"`

	// finished
	Succeeded int `json:"succeeded,omitempty"`
	Failed    int `json:"failed,omitempty"`
	Cancelled int `json:"cancelled,omitempty"`
}

// ChannelForEvent names the Redis channel carrying one event's batch feed.
func ChannelForEvent(eventID string) string {
	return fmt.Sprintf("certificates:batches:%s", eventID)
}
