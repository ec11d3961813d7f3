package registration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrSlotNotFound signals that a pending slot expired or was never parked.
var ErrSlotNotFound = errors.New("pending scan slot not found")

// SlotStore parks unmatched scans as expiring slots.
type SlotStore interface {
	Park(ctx context.Context, eventID uuid.UUID, frame ScanFrame) error
	// Take removes and returns a parked frame. ErrSlotNotFound when absent.
	Take(ctx context.Context, eventID uuid.UUID, tag string) (*ScanFrame, error)
	List(ctx context.Context, eventID uuid.UUID) ([]ScanFrame, error)
	// Sweep drops index entries whose slot keys have expired and reports
	// how many were removed.
	Sweep(ctx context.Context) (int, error)
}

// RedisSlotStore keeps each slot under a TTL key plus set indexes so the
// slots stay enumerable after redis expires the values.
type RedisSlotStore struct {
	rdb *redis.Client
	ttl time.Duration
}

const (
	slotEventsKey = "scans:events"
	defaultTTL    = 15 * time.Minute
)

func NewRedisSlotStore(rdb *redis.Client, ttl time.Duration) *RedisSlotStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisSlotStore{rdb: rdb, ttl: ttl}
}

func slotKey(eventID, tag string) string {
	return fmt.Sprintf("scans:slot:%s:%s", eventID, tag)
}

func tagsKey(eventID string) string {
	return fmt.Sprintf("scans:tags:%s", eventID)
}

func (s *RedisSlotStore) Park(ctx context.Context, eventID uuid.UUID, frame ScanFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("marshal scan frame: %w", err)
	}

	id := eventID.String()
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, slotKey(id, frame.Tag), data, s.ttl)
	pipe.SAdd(ctx, tagsKey(id), frame.Tag)
	pipe.SAdd(ctx, slotEventsKey, id)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisSlotStore) Take(ctx context.Context, eventID uuid.UUID, tag string) (*ScanFrame, error) {
	id := eventID.String()
	data, err := s.rdb.GetDel(ctx, slotKey(id, tag)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	s.rdb.SRem(ctx, tagsKey(id), tag)

	var frame ScanFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("unmarshal scan frame: %w", err)
	}
	return &frame, nil
}

func (s *RedisSlotStore) List(ctx context.Context, eventID uuid.UUID) ([]ScanFrame, error) {
	id := eventID.String()
	tags, err := s.rdb.SMembers(ctx, tagsKey(id)).Result()
	if err != nil {
		return nil, err
	}

	frames := make([]ScanFrame, 0, len(tags))
	for _, tag := range tags {
		data, err := s.rdb.Get(ctx, slotKey(id, tag)).Bytes()
		if errors.Is(err, redis.Nil) {
			// Value expired under us; Sweep will drop the index entry.
			continue
		}
		if err != nil {
			return nil, err
		}
		var frame ScanFrame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

func (s *RedisSlotStore) Sweep(ctx context.Context) (int, error) {
	events, err := s.rdb.SMembers(ctx, slotEventsKey).Result()
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, id := range events {
		tags, err := s.rdb.SMembers(ctx, tagsKey(id)).Result()
		if err != nil {
			return removed, err
		}
		for _, tag := range tags {
			exists, err := s.rdb.Exists(ctx, slotKey(id, tag)).Result()
			if err != nil {
				return removed, err
			}
			if exists == 0 {
				s.rdb.SRem(ctx, tagsKey(id), tag)
				removed++
			}
		}
		remaining, err := s.rdb.SCard(ctx, tagsKey(id)).Result()
		if err == nil && remaining == 0 {
			s.rdb.SRem(ctx, slotEventsKey, id)
		}
	}
	return removed, nil
}
