// Package memory keeps one user's memories in memory, mirrors writes to the
// persistence layer and renders them into the context block of a system prompt.
//
// Writes are optimistic: the local collection changes first and the change is
// rolled back if the persistence layer rejects it. Rolled-back writes are kept
// in an outbox that RetryFailedWrites replays. Persistence failures are logged,
// never returned; returned errors are validation errors only.
package memory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/rcliao/buddy/internal/model"
	"github.com/rcliao/buddy/internal/store"
)

// Recorder receives one event per write attempt. status is "ok" or "error".
type Recorder interface {
	MemoryOp(op, status string)
}

type nopRecorder struct{}

func (nopRecorder) MemoryOp(string, string) {}

// AddParams describes a memory to create, or to update if the key is already loaded.
type AddParams struct {
	Type       model.Type
	Key        string
	Value      string
	Importance int // 0 means model.DefaultImportance
}

// UpdateParams changes the value, and optionally the importance, of a memory.
type UpdateParams struct {
	ID         string
	Value      string
	Importance int // 0 keeps the current importance
}

// Store holds the memories of a single user.
type Store struct {
	userID   string
	db       store.Store
	logger   *slog.Logger
	now      func() time.Time
	recorder Recorder

	retryTries   uint
	retryInitial time.Duration

	// writeMu serializes writes in issuance order, including their remote call.
	writeMu sync.Mutex

	mu          sync.RWMutex
	memories    []model.Memory
	loading     bool
	outbox      []failedWrite
	lastSummary int64
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithRecorder reports write outcomes, e.g. to Prometheus.
func WithRecorder(r Recorder) Option {
	return func(s *Store) { s.recorder = r }
}

// WithRetry sets how RetryFailedWrites backs off: at most tries attempts per
// write, starting at initial and doubling.
func WithRetry(tries uint, initial time.Duration) Option {
	return func(s *Store) {
		s.retryTries = tries
		s.retryInitial = initial
	}
}

// New creates an empty store for userID backed by db.
func New(userID string, db store.Store, opts ...Option) *Store {
	s := &Store{
		userID:       userID,
		db:           db,
		logger:       slog.Default(),
		now:          time.Now,
		recorder:     nopRecorder{},
		retryTries:   3,
		retryInitial: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "memory", "user_id", userID)
	return s
}

// UserID returns the owner of this store.
func (s *Store) UserID() string { return s.userID }

// Loading reports whether FetchAll is in progress.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Memories returns a copy of the loaded memories in their current order.
func (s *Store) Memories() []model.Memory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.memories)
}

// Len returns the number of loaded memories.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.memories)
}

// FetchAll replaces the loaded memories with the user's persisted ones, most
// important first. On failure the loaded memories are left as they were.
func (s *Store) FetchAll(ctx context.Context) {
	_ = s.load(ctx)
}

// load is FetchAll that also returns the persistence error.
func (s *Store) load(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.setLoading(true)
	defer s.setLoading(false)

	memories, err := s.db.SelectByUser(ctx, s.userID)
	if err != nil {
		s.recorder.MemoryOp("fetch", "error")
		s.logger.Error("memory fetch failed", "err", err)
		return fmt.Errorf("load memories for %s: %w", s.userID, err)
	}

	s.mu.Lock()
	s.memories = memories
	s.mu.Unlock()

	s.recorder.MemoryOp("fetch", "ok")
	s.logger.Info("memories loaded", "count", len(memories))
	return nil
}

func (s *Store) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// Add stores a new memory. If a memory with the same key is already loaded it
// is updated instead, so a user never holds two memories with one key.
func (s *Store) Add(ctx context.Context, p AddParams) error {
	p, err := normalizeAdd(p)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	t := target{key: p.Key}
	if existing, ok := s.ByKey(p.Key); ok {
		t.id = existing.ID
	}
	if err := s.applyAdd(ctx, p); err != nil {
		s.fail(failedWrite{op: opAdd, add: p, target: t}, err)
		return nil
	}
	s.supersede(t)
	return nil
}

// Update changes a memory's value and, when p.Importance is non-zero, its
// importance. An id that is not loaded is still sent to the persistence layer.
func (s *Store) Update(ctx context.Context, p UpdateParams) error {
	if p.ID == "" {
		return fmt.Errorf("update memory: id is required")
	}
	if p.Importance != 0 {
		if err := model.ValidateImportance(p.Importance); err != nil {
			return err
		}
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	t := s.targetOf(p.ID)
	if err := s.applyUpdate(ctx, p); err != nil {
		s.fail(failedWrite{op: opUpdate, update: p, target: t}, err)
		return nil
	}
	s.supersede(t)
	return nil
}

// Delete removes a memory by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete memory: id is required")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	t := s.targetOf(id)
	if err := s.applyDelete(ctx, id); err != nil {
		s.fail(failedWrite{op: opDelete, id: id, target: t}, err)
		return nil
	}
	s.supersede(t)
	return nil
}

// ByType returns the loaded memories of type t in their current order.
func (s *Store) ByType(t model.Type) []model.Memory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return filterType(s.memories, t)
}

// ByKey returns the first loaded memory with the given key.
func (s *Store) ByKey(key string) (model.Memory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := slices.IndexFunc(s.memories, func(m model.Memory) bool { return m.Key == key }); i >= 0 {
		return s.memories[i], true
	}
	return model.Memory{}, false
}

// ByID returns the loaded memory with the given id.
func (s *Store) ByID(id string) (model.Memory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.memories[i], true
	}
	return model.Memory{}, false
}

func normalizeAdd(p AddParams) (AddParams, error) {
	if !p.Type.Valid() {
		return p, fmt.Errorf("%w %q", model.ErrInvalidType, p.Type)
	}
	if p.Key == "" {
		return p, model.ErrEmptyKey
	}
	if p.Importance == 0 {
		p.Importance = model.DefaultImportance
	}
	if err := model.ValidateImportance(p.Importance); err != nil {
		return p, err
	}
	return p, nil
}

// applyAdd appends a provisional memory, inserts it remotely and swaps in the
// persisted record. The provisional memory is removed if the insert fails.
// Callers hold writeMu.
func (s *Store) applyAdd(ctx context.Context, p AddParams) error {
	if existing, ok := s.ByKey(p.Key); ok {
		return s.applyUpdate(ctx, UpdateParams{ID: existing.ID, Value: p.Value, Importance: p.Importance})
	}

	now := s.now()
	s.mu.Lock()
	s.memories = append(s.memories, model.Memory{
		UserID:     s.userID,
		Type:       p.Type,
		Key:        p.Key,
		Value:      p.Value,
		Importance: p.Importance,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	s.mu.Unlock()

	mem, err := s.db.Insert(ctx, store.InsertParams{
		UserID:     s.userID,
		Type:       p.Type,
		Key:        p.Key,
		Value:      p.Value,
		Importance: p.Importance,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.memories, func(m model.Memory) bool { return m.ID == "" && m.Key == p.Key })
	if err != nil {
		if i >= 0 {
			s.memories = slices.Delete(s.memories, i, i+1)
		}
		return fmt.Errorf("insert %q: %w", p.Key, err)
	}
	if i >= 0 {
		s.memories[i] = *mem
	} else {
		s.memories = append(s.memories, *mem)
	}

	s.recorder.MemoryOp(opAdd, "ok")
	s.logger.Info("memory added", "key", p.Key, "id", mem.ID)
	return nil
}

// applyUpdate changes the loaded memory first and restores it if the remote
// update fails. Callers hold writeMu.
func (s *Store) applyUpdate(ctx context.Context, p UpdateParams) error {
	now := s.now()

	s.mu.Lock()
	i := s.indexOf(p.ID)
	var prev model.Memory
	if i >= 0 {
		prev = s.memories[i]
		s.memories[i].Value = p.Value
		if p.Importance != 0 {
			s.memories[i].Importance = p.Importance
		}
		s.memories[i].UpdatedAt = now
	}
	s.mu.Unlock()

	err := s.db.UpdateByID(ctx, p.ID, store.UpdateFields{
		Value:      p.Value,
		Importance: p.Importance,
		UpdatedAt:  now,
	})
	if err != nil {
		if i >= 0 {
			s.mu.Lock()
			if j := s.indexOf(p.ID); j >= 0 {
				s.memories[j] = prev
			}
			s.mu.Unlock()
		}
		return fmt.Errorf("update %s: %w", p.ID, err)
	}

	if i < 0 {
		s.logger.Warn("memory updated but not loaded", "id", p.ID)
	}
	s.recorder.MemoryOp(opUpdate, "ok")
	s.logger.Info("memory updated", "id", p.ID)
	return nil
}

// applyDelete removes the loaded memory first and puts it back at its old
// position if the remote delete fails. Callers hold writeMu.
func (s *Store) applyDelete(ctx context.Context, id string) error {
	s.mu.Lock()
	i := s.indexOf(id)
	var removed model.Memory
	if i >= 0 {
		removed = s.memories[i]
		s.memories = slices.Delete(s.memories, i, i+1)
	}
	s.mu.Unlock()

	if err := s.db.DeleteByID(ctx, id); err != nil {
		if i >= 0 {
			s.mu.Lock()
			s.memories = slices.Insert(s.memories, min(i, len(s.memories)), removed)
			s.mu.Unlock()
		}
		return fmt.Errorf("delete %s: %w", id, err)
	}

	s.recorder.MemoryOp(opDelete, "ok")
	s.logger.Info("memory deleted", "id", id)
	return nil
}

// fail logs a rejected write and queues it for RetryFailedWrites. Writes that
// target a missing record are not queued; replaying them cannot succeed.
func (s *Store) fail(w failedWrite, err error) {
	s.recorder.MemoryOp(w.op, "error")
	if errors.Is(err, store.ErrNotFound) {
		s.logger.Error("memory write failed", "op", w.op, "err", err)
		return
	}
	s.mu.Lock()
	s.outbox = append(s.outbox, w)
	s.mu.Unlock()
	s.logger.Error("memory write failed", "op", w.op, "err", err, "queued", true)
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.memories, func(m model.Memory) bool { return m.ID == id })
}

func filterType(memories []model.Memory, t model.Type) []model.Memory {
	var out []model.Memory
	for _, m := range memories {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}
