package store

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-process KV used for local runs without Redis.
// Expired keys are dropped lazily on access.
type MemoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	strings map[string]memoryValue
	sets    map[string]map[string]struct{}
}

type memoryValue struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:     time.Now,
		strings: make(map[string]memoryValue),
		sets:    make(map[string]map[string]struct{}),
	}
}

// SetClock replaces the store's time source.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Ping always succeeds.
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// lookup returns a live string value. Caller holds mu.
func (s *MemoryStore) lookup(key string) (memoryValue, bool) {
	v, ok := s.strings[key]
	if !ok {
		return memoryValue{}, false
	}
	if !v.expiresAt.IsZero() && !s.now().Before(v.expiresAt) {
		delete(s.strings, key)
		return memoryValue{}, false
	}
	return v, true
}

// Get returns the value at key.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, isSet := s.sets[key]; isSet {
		return "", false, fmt.Errorf("get %s: wrong kind of value", key)
	}
	v, ok := s.lookup(key)
	return v.value, ok, nil
}

// Set stores value at key. A zero ttl keeps the key forever.
func (s *MemoryStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v := memoryValue{value: value}
	if ttl > 0 {
		v.expiresAt = s.now().Add(ttl)
	}
	delete(s.sets, key)
	s.strings[key] = v
	return nil
}

// TTL returns the remaining lifetime of key.
func (s *MemoryStore) TTL(ctx context.Context, key string) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, isSet := s.sets[key]; isSet {
		return 0, nil
	}
	v, ok := s.lookup(key)
	if !ok {
		return -1, nil
	}
	if v.expiresAt.IsZero() {
		return 0, nil
	}
	return v.expiresAt.Sub(s.now()), nil
}

// SetAdd adds members to the set at key and returns how many were new.
func (s *MemoryStore) SetAdd(ctx context.Context, key string, members ...string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookup(key); ok {
		return 0, fmt.Errorf("sadd %s: wrong kind of value", key)
	}

	set, ok := s.sets[key]
	if !ok {
		if len(members) == 0 {
			return 0, nil
		}
		set = make(map[string]struct{}, len(members))
		s.sets[key] = set
	}

	var added int64
	for _, m := range members {
		if _, exists := set[m]; exists {
			continue
		}
		set[m] = struct{}{}
		added++
	}
	return added, nil
}

// SetMembers returns the members of the set at key in no particular order.
func (s *MemoryStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	set := s.sets[key]
	members := make([]string, 0, len(set))
	for m := range set {
		members = append(members, m)
	}
	return members, nil
}
