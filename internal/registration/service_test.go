package registration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendex/event-portal-backend/internal/events"
)

type fakeDirectory struct {
	attendees map[string]*events.Attendee
	checkedIn []uuid.UUID
}

func (f *fakeDirectory) FindAttendeeByTag(_ context.Context, _ uuid.UUID, tag string) (*events.Attendee, error) {
	return f.attendees[tag], nil
}

func (f *fakeDirectory) CheckIn(_ context.Context, attendeeID uuid.UUID) (*events.Attendee, error) {
	for _, a := range f.attendees {
		if a.ID == attendeeID {
			f.checkedIn = append(f.checkedIn, attendeeID)
			a.CheckedIn = true
			return a, nil
		}
	}
	return nil, events.ErrAttendeeNotFound
}

type memorySlotStore struct {
	slots map[string]ScanFrame
}

func newMemorySlotStore() *memorySlotStore {
	return &memorySlotStore{slots: make(map[string]ScanFrame)}
}

func (m *memorySlotStore) key(eventID uuid.UUID, tag string) string {
	return eventID.String() + "/" + tag
}

func (m *memorySlotStore) Park(_ context.Context, eventID uuid.UUID, frame ScanFrame) error {
	m.slots[m.key(eventID, frame.Tag)] = frame
	return nil
}

func (m *memorySlotStore) Take(_ context.Context, eventID uuid.UUID, tag string) (*ScanFrame, error) {
	frame, ok := m.slots[m.key(eventID, tag)]
	if !ok {
		return nil, ErrSlotNotFound
	}
	delete(m.slots, m.key(eventID, tag))
	return &frame, nil
}

func (m *memorySlotStore) List(_ context.Context, eventID uuid.UUID) ([]ScanFrame, error) {
	var frames []ScanFrame
	for key, frame := range m.slots {
		if key[:36] == eventID.String() {
			frames = append(frames, frame)
		}
	}
	return frames, nil
}

func (m *memorySlotStore) Sweep(_ context.Context) (int, error) {
	return 0, nil
}

func TestHandleScanMatchedChecksIn(t *testing.T) {
	eventID := uuid.New()
	attendee := &events.Attendee{ID: uuid.New(), EventID: eventID, UserID: "badge-7", Name: "Ana"}
	dir := &fakeDirectory{attendees: map[string]*events.Attendee{"badge-7": attendee}}
	svc := NewService(dir, newMemorySlotStore(), nil)

	result, err := svc.HandleScan(context.Background(), eventID, ScanFrame{
		DeviceID:  "gate-1",
		Tag:       "badge-7",
		ScannedAt: time.Now(),
	})
	require.NoError(t, err)

	assert.Equal(t, StatusMatched, result.Status)
	require.NotNil(t, result.AttendeeID)
	assert.Equal(t, attendee.ID, *result.AttendeeID)
	assert.Equal(t, "Ana", result.AttendeeName)
	assert.Equal(t, []uuid.UUID{attendee.ID}, dir.checkedIn)
}

func TestHandleScanUnmatchedParks(t *testing.T) {
	eventID := uuid.New()
	store := newMemorySlotStore()
	svc := NewService(&fakeDirectory{attendees: map[string]*events.Attendee{}}, store, nil)

	result, err := svc.HandleScan(context.Background(), eventID, ScanFrame{Tag: "unknown-tag"})
	require.NoError(t, err)

	assert.Equal(t, StatusParked, result.Status)
	pending, err := svc.PendingSlots(context.Background(), eventID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "unknown-tag", pending[0].Tag)
}

func TestHandleScanRejectsEmptyTag(t *testing.T) {
	store := newMemorySlotStore()
	svc := NewService(&fakeDirectory{}, store, nil)

	result, err := svc.HandleScan(context.Background(), uuid.New(), ScanFrame{Tag: "   "})
	require.NoError(t, err)

	assert.Equal(t, StatusRejected, result.Status)
	assert.Empty(t, store.slots)
}

func TestClaimSlotConsumesAndChecksIn(t *testing.T) {
	eventID := uuid.New()
	attendee := &events.Attendee{ID: uuid.New(), EventID: eventID, Name: "Bo"}
	dir := &fakeDirectory{attendees: map[string]*events.Attendee{"badge-9": attendee}}
	store := newMemorySlotStore()
	svc := NewService(dir, store, nil)

	_, err := svc.HandleScan(context.Background(), eventID, ScanFrame{Tag: "stray"})
	require.NoError(t, err)

	claimed, err := svc.ClaimSlot(context.Background(), eventID, "stray", attendee.ID)
	require.NoError(t, err)
	assert.True(t, claimed.CheckedIn)
	assert.Empty(t, store.slots)
}

func TestClaimSlotMissing(t *testing.T) {
	svc := NewService(&fakeDirectory{}, newMemorySlotStore(), nil)

	_, err := svc.ClaimSlot(context.Background(), uuid.New(), "gone", uuid.New())
	assert.ErrorIs(t, err, ErrSlotNotFound)
}
