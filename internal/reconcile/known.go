package reconcile

import (
	"container/list"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/shiptrack/pkg/models"
)

// KnownKeys is a bounded LRU of trip keys already confirmed on file. Trips are
// never deleted by the pipeline, so a remembered key can skip the store query.
// Keys are compared field by field, never through their rendered form.
type KnownKeys struct {
	mu      sync.Mutex
	store   map[models.TripKey]*list.Element
	lruList *list.List
	maxSize int
	ttl     time.Duration
	now     func() time.Time
	hits    uint64
	misses  uint64
}

type knownEntry struct {
	key       models.TripKey
	expiresAt time.Time
}

// memoKey makes equal instants compare equal as map keys
func memoKey(key models.TripKey) models.TripKey {
	key.DepartureTime = key.DepartureTime.UTC()
	return key
}

// NewKnownKeys creates a memo holding at most maxSize keys for ttl each.
// A ttl of 0 keeps entries until evicted.
func NewKnownKeys(maxSize int, ttl time.Duration) *KnownKeys {
	if maxSize <= 0 {
		maxSize = 1024
	}
	return &KnownKeys{
		store:   make(map[models.TripKey]*list.Element),
		lruList: list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Contains reports whether key was remembered and has not expired
func (k *KnownKeys) Contains(key models.TripKey) bool {
	if k == nil {
		return false
	}
	key = memoKey(key)
	k.mu.Lock()
	defer k.mu.Unlock()

	element, ok := k.store[key]
	if !ok {
		k.misses++
		return false
	}
	entry := element.Value.(*knownEntry)
	if !entry.expiresAt.IsZero() && k.now().After(entry.expiresAt) {
		k.lruList.Remove(element)
		delete(k.store, key)
		k.misses++
		return false
	}
	k.lruList.MoveToFront(element)
	k.hits++
	return true
}

// Remember records key as present in the store
func (k *KnownKeys) Remember(key models.TripKey) {
	if k == nil {
		return
	}
	key = memoKey(key)
	k.mu.Lock()
	defer k.mu.Unlock()

	var expiresAt time.Time
	if k.ttl > 0 {
		expiresAt = k.now().Add(k.ttl)
	}

	if element, ok := k.store[key]; ok {
		element.Value.(*knownEntry).expiresAt = expiresAt
		k.lruList.MoveToFront(element)
		return
	}

	for k.lruList.Len() >= k.maxSize {
		back := k.lruList.Back()
		entry := back.Value.(*knownEntry)
		k.lruList.Remove(back)
		delete(k.store, entry.key)
		log.Debug().Stringer("trip_key", entry.key).Msg("Evicted known trip key (LRU)")
	}

	k.store[key] = k.lruList.PushFront(&knownEntry{key: key, expiresAt: expiresAt})
}

// Len returns the number of remembered keys
func (k *KnownKeys) Len() int {
	if k == nil {
		return 0
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.lruList.Len()
}

// Stats returns hit and miss counters
func (k *KnownKeys) Stats() (hits, misses uint64) {
	if k == nil {
		return 0, 0
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.hits, k.misses
}
