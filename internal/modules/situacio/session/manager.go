package session

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

// ErrNotFound is returned when a session id has no stored state.
var ErrNotFound = errors.New("session not found")

// Store persists session state by id. Implementations are not required to serialize
// read-modify-write cycles; Manager does that.
type Store interface {
	Get(ctx context.Context, id string) (State, error)
	Put(ctx context.Context, id string, s State) error
	Delete(ctx context.Context, id string) error
}

// toucher is implemented by stores whose reads do not refresh expiry on their own.
type toucher interface {
	Touch(ctx context.Context, id string) error
}

const stripes = 64

// Manager serializes updates per session id over a Store.
type Manager struct {
	log   *logger.Logger
	store Store
	locks [stripes]sync.Mutex
	now   func() time.Time
}

func NewManager(log *logger.Logger, store Store) *Manager {
	return &Manager{
		log:   log.With("service", "SessionManager"),
		store: store,
		now:   time.Now,
	}
}

// Create allocates a fresh empty session.
func (m *Manager) Create(ctx context.Context) (string, error) {
	id := uuid.NewString()
	if err := m.store.Put(ctx, id, State{}); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	m.log.Debug("session created", "session_id", id)
	return id, nil
}

// Get reads the state of id under its stripe lock and keeps the session alive.
func (m *Manager) Get(ctx context.Context, id string) (State, error) {
	mu := &m.locks[stripe(id)]
	mu.Lock()
	defer mu.Unlock()

	st, err := m.store.Get(ctx, id)
	if err != nil {
		return State{}, err
	}
	if t, ok := m.store.(toucher); ok {
		if err := t.Touch(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
			m.log.Warn("touch session", "session_id", id, "error", err)
		}
	}
	return st, nil
}

// Update applies fn to the current state of id and stores the result. fn must be pure;
// it runs under the session's stripe lock.
func (m *Manager) Update(ctx context.Context, id string, fn func(State, time.Time) (State, error)) (State, error) {
	mu := &m.locks[stripe(id)]
	mu.Lock()
	defer mu.Unlock()

	cur, err := m.store.Get(ctx, id)
	if err != nil {
		return State{}, err
	}
	next, err := fn(cur, m.now())
	if err != nil {
		return cur, err
	}
	if err := m.store.Put(ctx, id, next); err != nil {
		return cur, fmt.Errorf("store session: %w", err)
	}
	return next, nil
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	mu := &m.locks[stripe(id)]
	mu.Lock()
	defer mu.Unlock()
	return m.store.Delete(ctx, id)
}

func stripe(id string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return h.Sum32() % stripes
}
