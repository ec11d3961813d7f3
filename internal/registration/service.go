package registration

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"attendex/event-portal-backend/internal/events"
)

// AttendeeDirectory is the slice of the events service the scanner needs.
type AttendeeDirectory interface {
	FindAttendeeByTag(ctx context.Context, eventID uuid.UUID, tag string) (*events.Attendee, error)
	CheckIn(ctx context.Context, attendeeID uuid.UUID) (*events.Attendee, error)
}

// Service resolves scan frames against the attendee list.
type Service struct {
	directory AttendeeDirectory
	slots     SlotStore
	logger    *zap.Logger
}

func NewService(directory AttendeeDirectory, slots SlotStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{directory: directory, slots: slots, logger: logger}
}

// HandleScan checks the attendee in when the tag matches, parks the frame
// otherwise. Frames with an empty tag are rejected without touching the
// store.
func (s *Service) HandleScan(ctx context.Context, eventID uuid.UUID, frame ScanFrame) (ScanResult, error) {
	frame.Tag = strings.TrimSpace(frame.Tag)
	if frame.Tag == "" {
		return ScanResult{Status: StatusRejected}, nil
	}

	attendee, err := s.directory.FindAttendeeByTag(ctx, eventID, frame.Tag)
	if err != nil {
		return ScanResult{}, err
	}

	if attendee == nil {
		if err := s.slots.Park(ctx, eventID, frame); err != nil {
			return ScanResult{}, err
		}
		s.logger.Info("Parked unmatched scan",
			zap.String("event_id", eventID.String()),
			zap.String("device_id", frame.DeviceID),
			zap.String("tag", frame.Tag))
		return ScanResult{Tag: frame.Tag, Status: StatusParked}, nil
	}

	checked, err := s.directory.CheckIn(ctx, attendee.ID)
	if err != nil {
		return ScanResult{}, err
	}
	return ScanResult{
		Tag:          frame.Tag,
		Status:       StatusMatched,
		AttendeeID:   &checked.ID,
		AttendeeName: checked.Name,
	}, nil
}

// ClaimSlot resolves a parked scan by hand: staff pick the attendee the
// badge belongs to, the slot is consumed, and the attendee is checked in.
func (s *Service) ClaimSlot(ctx context.Context, eventID uuid.UUID, tag string, attendeeID uuid.UUID) (*events.Attendee, error) {
	if _, err := s.slots.Take(ctx, eventID, tag); err != nil {
		return nil, err
	}
	return s.directory.CheckIn(ctx, attendeeID)
}

// PendingSlots lists the frames still waiting to be claimed.
func (s *Service) PendingSlots(ctx context.Context, eventID uuid.UUID) ([]ScanFrame, error) {
	return s.slots.List(ctx, eventID)
}
