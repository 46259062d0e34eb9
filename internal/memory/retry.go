package memory

import (
	"context"
	"errors"
	"slices"

	"github.com/cenkalti/backoff/v5"

	"github.com/rcliao/buddy/internal/store"
)

const (
	opAdd    = "add"
	opUpdate = "update"
	opDelete = "delete"
)

// failedWrite is a write whose remote step failed and was rolled back locally.
type failedWrite struct {
	op     string
	add    AddParams
	update UpdateParams
	id     string
	target target
}

// target names the record a write touches. Either field may be empty: a
// queued insert has no id yet, and an id that is not loaded has no known key.
type target struct {
	id  string
	key string
}

// covers reports whether w touches the same record as t.
func (t target) covers(w failedWrite) bool {
	return (t.id != "" && w.target.id == t.id) || (t.key != "" && w.target.key == t.key)
}

func (s *Store) targetOf(id string) target {
	t := target{id: id}
	if m, ok := s.ByID(id); ok {
		t.key = m.Key
	}
	return t
}

// supersede drops queued writes to the record t names. It is called after a
// newer write to that record succeeded, so replaying them would undo it.
func (s *Store) supersede(t target) {
	s.mu.Lock()
	n := len(s.outbox)
	s.outbox = slices.DeleteFunc(s.outbox, t.covers)
	dropped := n - len(s.outbox)
	s.mu.Unlock()
	if dropped > 0 {
		s.logger.Info("queued memory writes superseded", "id", t.id, "key", t.key, "dropped", dropped)
	}
}

// FailedWrites returns the number of writes waiting for RetryFailedWrites.
func (s *Store) FailedWrites() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.outbox)
}

// RetryFailedWrites replays queued writes in their original order, backing
// off between attempts. It returns how many succeeded. Writes that still fail
// stay queued, except those whose target no longer exists and those a later
// replayed write to the same record replaced.
func (s *Store) RetryFailedWrites(ctx context.Context) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	pending := s.outbox
	s.outbox = nil
	s.mu.Unlock()

	var (
		ok      int
		errs    []error
		requeue []failedWrite
	)
	for _, w := range pending {
		_, err := backoff.Retry(ctx, func() (struct{}, error) {
			err := s.replay(ctx, w)
			if errors.Is(err, store.ErrNotFound) {
				return struct{}{}, backoff.Permanent(err)
			}
			return struct{}{}, err
		}, backoff.WithBackOff(s.newBackOff()), backoff.WithMaxTries(max(s.retryTries, 1)))

		if err != nil {
			s.recorder.MemoryOp(w.op, "error")
			errs = append(errs, err)
			if !errors.Is(err, store.ErrNotFound) {
				requeue = append(requeue, w)
			}
			s.logger.Warn("memory write retry failed", "op", w.op, "err", err)
			continue
		}
		ok++
		requeue = slices.DeleteFunc(requeue, w.target.covers)
	}

	if len(requeue) > 0 {
		s.mu.Lock()
		s.outbox = append(requeue, s.outbox...)
		s.mu.Unlock()
	}

	s.logger.Info("memory writes retried", "ok", ok, "failed", len(errs))
	return ok, errors.Join(errs...)
}

func (s *Store) replay(ctx context.Context, w failedWrite) error {
	switch w.op {
	case opAdd:
		return s.applyAdd(ctx, w.add)
	case opUpdate:
		return s.applyUpdate(ctx, w.update)
	default:
		return s.applyDelete(ctx, w.id)
	}
}

func (s *Store) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.retryInitial
	b.Multiplier = 2
	return b
}
