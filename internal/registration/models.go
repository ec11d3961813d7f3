// Package registration handles hardware scanner intake: badge scans arrive
// over a websocket from WiFi/NFC bridge devices, matched scans check the
// attendee in immediately, and unmatched scans are parked in redis as
// short-lived pending slots a staff member can claim from the desk UI.
package registration

import (
	"time"

	"github.com/google/uuid"
)

// ScanFrame is one badge read as sent by a bridge device.
type ScanFrame struct {
	DeviceID  string    `json:"device_id"`
	Tag       string    `json:"tag"`
	ScannedAt time.Time `json:"scanned_at"`
}

// ScanStatus tells the device what happened to its frame.
type ScanStatus string

const (
	// StatusMatched means the tag mapped to an attendee who is now checked in.
	StatusMatched ScanStatus = "matched"
	// StatusParked means no attendee carries the tag; the scan waits as a
	// pending slot until claimed or expired.
	StatusParked ScanStatus = "parked"
	// StatusRejected means the frame was unusable (empty tag).
	StatusRejected ScanStatus = "rejected"
)

// ScanResult is the acknowledgement written back to the scanner.
type ScanResult struct {
	Tag          string     `json:"tag"`
	Status       ScanStatus `json:"status"`
	AttendeeID   *uuid.UUID `json:"attendee_id,omitempty"`
	AttendeeName string     `json:"attendee_name,omitempty"`
}
