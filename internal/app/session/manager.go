package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Mahaveer86619/mindguide/internal/domain"
	"github.com/Mahaveer86619/mindguide/internal/observability"
)

const defaultLockTTL = 30 * time.Second

// lockEntry holds a one-slot semaphore and the number of callers waiting on it.
type lockEntry struct {
	sem  *semaphore.Weighted
	refs int
}

// Manager serializes turns per session key. Entries are reference counted
// and dropped once nobody holds or waits for them.
type Manager struct {
	mu    sync.Mutex
	locks map[domain.SessionKey]*lockEntry

	locker  domain.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

type Option func(*Manager)

// WithLocker adds a distributed lock around the in-process one, for
// deployments with several replicas sharing a store.
func WithLocker(locker domain.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL bounds how long a crashed holder can block a session.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

func NewManager(opts ...Option) *Manager {
	m := &Manager{
		locks:   make(map[domain.SessionKey]*lockEntry),
		lockTTL: defaultLockTTL,
		logger:  observability.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) acquire(key domain.SessionKey) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[key]
	if !ok {
		entry = &lockEntry{sem: semaphore.NewWeighted(1)}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(key domain.SessionKey) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.locks[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// active reports how many keys currently have an entry.
func (m *Manager) active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// WithLock runs fn while holding the lock for key. A caller whose context
// ends while waiting gets ErrSessionUnavailable and fn never runs.
func (m *Manager) WithLock(ctx context.Context, key domain.SessionKey, fn func(context.Context) error) error {
	entry := m.acquire(key)
	defer m.release(key)

	if err := entry.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("%w: wait for session: %v", domain.ErrSessionUnavailable, err)
	}
	defer entry.sem.Release(1)

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, string(key), m.lockTTL)
		if err != nil {
			return fmt.Errorf("%w: acquire lock: %v", domain.ErrSessionUnavailable, err)
		}
		defer func() {
			// Release even if the request context is already gone.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"session_key", key,
					"error", err,
				)
			}
		}()
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: wait for session: %v", domain.ErrSessionUnavailable, err)
	}
	return fn(ctx)
}
