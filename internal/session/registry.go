package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Registry owns the stores of all live sessions. Sessions never share a
// store.
type Registry struct {
	mu     sync.RWMutex
	stores map[string]*Store
	ttl    time.Duration
	now    func() time.Time
	log    *logrus.Entry
}

func NewRegistry(ttl time.Duration, logger *logrus.Entry) *Registry {
	return &Registry{
		stores: make(map[string]*Store),
		ttl:    ttl,
		now:    time.Now,
		log:    logger,
	}
}

// Create starts a fresh session with a random id.
func (r *Registry) Create() *Store {
	store := NewStore(uuid.New().String())
	store.touch(r.now())

	r.mu.Lock()
	r.stores[store.ID()] = store
	r.mu.Unlock()

	r.log.WithField("session_id", store.ID()).Debug("session created")
	return store
}

// GetOrCreate returns the store for id, building one with default values if
// the session is unknown (for example after it was swept).
func (r *Registry) GetOrCreate(id string) *Store {
	r.mu.RLock()
	store, ok := r.stores[id]
	r.mu.RUnlock()

	if !ok {
		r.mu.Lock()
		if store, ok = r.stores[id]; !ok {
			store = NewStore(id)
			r.stores[id] = store
			r.log.WithField("session_id", id).Debug("session restored with defaults")
		}
		r.mu.Unlock()
	}

	store.Init()
	store.touch(r.now())
	return store
}

func (r *Registry) Get(id string) (*Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	store, ok := r.stores[id]
	return store, ok
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.stores, id)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.stores)
}

// Sweep discards sessions idle for longer than the TTL and returns how many
// were removed.
func (r *Registry) Sweep() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, store := range r.stores {
		if store.idleSince(now) > r.ttl {
			delete(r.stores, id)
			removed++
		}
	}

	if removed > 0 {
		r.log.WithFields(logrus.Fields{
			"removed": removed,
			"live":    len(r.stores),
		}).Info("expired sessions swept")
	}
	return removed
}

// Run sweeps on every tick until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
