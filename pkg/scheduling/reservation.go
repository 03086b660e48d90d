package scheduling

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SlotReserver claims an interviewer slot before the interview record is
// written, so concurrent scheduling passes do not hand the same slot to two
// candidates. A reservation is advisory; the interview insert remains the
// authoritative conflict check.
type SlotReserver interface {
	Reserve(ctx context.Context, interviewerID string, start time.Time) (bool, error)
	Release(ctx context.Context, interviewerID string, start time.Time) error
}

// MemoryReserver tracks reservations in-process. Suitable for a single
// runner and for tests.
type MemoryReserver struct {
	mu    sync.Mutex
	slots map[string]struct{}
}

// NewMemoryReserver creates an empty in-process reserver.
func NewMemoryReserver() *MemoryReserver {
	return &MemoryReserver{slots: make(map[string]struct{})}
}

func (r *MemoryReserver) Reserve(_ context.Context, interviewerID string, start time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := slotKey(interviewerID, start)
	if _, taken := r.slots[key]; taken {
		return false, nil
	}

	r.slots[key] = struct{}{}

	return true, nil
}

func (r *MemoryReserver) Release(_ context.Context, interviewerID string, start time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.slots, slotKey(interviewerID, start))

	return nil
}

// RedisReserver shares reservations across runner processes using SET NX
// with a TTL, so a crashed runner's claims expire on their own.
type RedisReserver struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisReserver creates a reserver on the given client. Reservations
// expire after ttl.
func NewRedisReserver(client *redis.Client, ttl time.Duration) *RedisReserver {
	return &RedisReserver{client: client, ttl: ttl}
}

func (r *RedisReserver) Reserve(ctx context.Context, interviewerID string, start time.Time) (bool, error) {
	ok, err := r.client.SetNX(ctx, slotKey(interviewerID, start), "reserved", r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to reserve slot for %s: %w", interviewerID, err)
	}

	return ok, nil
}

func (r *RedisReserver) Release(ctx context.Context, interviewerID string, start time.Time) error {
	err := r.client.Del(ctx, slotKey(interviewerID, start)).Err()
	if err != nil {
		return fmt.Errorf("failed to release slot for %s: %w", interviewerID, err)
	}

	return nil
}

func slotKey(interviewerID string, start time.Time) string {
	return "hireflow:slot:" + interviewerID + ":" + start.UTC().Format(time.RFC3339)
}
