package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rcliao/buddy/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestInsertAndSelect(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, err := s.Insert(ctx, InsertParams{
		UserID: "u1", Type: model.TypeFact, Key: "ชื่อ", Value: "สมชาย", Importance: 8,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if mem.ID == "" {
		t.Error("expected non-empty ID")
	}
	if mem.CreatedAt.IsZero() || !mem.CreatedAt.Equal(mem.UpdatedAt) {
		t.Errorf("expected equal non-zero timestamps, got %v / %v", mem.CreatedAt, mem.UpdatedAt)
	}

	got, err := s.SelectByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %d", len(got))
	}
	if got[0].Value != "สมชาย" || got[0].Type != model.TypeFact || got[0].Importance != 8 {
		t.Errorf("unexpected memory: %+v", got[0])
	}

	other, _ := s.SelectByUser(ctx, "u2")
	if len(other) != 0 {
		t.Errorf("expected no memories for u2, got %d", len(other))
	}
}

func TestInsertDefaultImportance(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, err := s.Insert(ctx, InsertParams{UserID: "u1", Type: model.TypePreference, Key: "style", Value: "visual"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if mem.Importance != model.DefaultImportance {
		t.Errorf("expected importance %d, got %d", model.DefaultImportance, mem.Importance)
	}
}

func TestInsertRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Insert(ctx, InsertParams{UserID: "u1", Type: "opinion", Key: "k", Value: "v"}); !errors.Is(err, model.ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", err)
	}
	if _, err := s.Insert(ctx, InsertParams{UserID: "u1", Type: model.TypeFact, Key: "k", Value: "v", Importance: 11}); !errors.Is(err, model.ErrInvalidImportance) {
		t.Errorf("expected ErrInvalidImportance, got %v", err)
	}
	if _, err := s.Insert(ctx, InsertParams{UserID: "u1", Type: model.TypeFact, Value: "v"}); !errors.Is(err, model.ErrEmptyKey) {
		t.Errorf("expected ErrEmptyKey, got %v", err)
	}
}

func TestInsertDuplicateKeyFails(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Insert(ctx, InsertParams{UserID: "u1", Type: model.TypeFact, Key: "k", Value: "v1"}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := s.Insert(ctx, InsertParams{UserID: "u1", Type: model.TypeFact, Key: "k", Value: "v2"}); err == nil {
		t.Error("expected unique constraint error for duplicate user/key")
	}
	// Same key for a different user is fine.
	if _, err := s.Insert(ctx, InsertParams{UserID: "u2", Type: model.TypeFact, Key: "k", Value: "v"}); err != nil {
		t.Errorf("insert for other user: %v", err)
	}
}

func TestSelectOrdersByImportance(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Insert(ctx, InsertParams{UserID: "u1", Type: model.TypeFact, Key: "a", Value: "a", Importance: 3})
	s.Insert(ctx, InsertParams{UserID: "u1", Type: model.TypeFact, Key: "b", Value: "b", Importance: 9})
	s.Insert(ctx, InsertParams{UserID: "u1", Type: model.TypeFact, Key: "c", Value: "c", Importance: 3})
	s.Insert(ctx, InsertParams{UserID: "u1", Type: model.TypeFact, Key: "d", Value: "d", Importance: 5})

	got, err := s.SelectByUser(ctx, "u1")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	var keys string
	for _, m := range got {
		keys += m.Key
	}
	if keys != "bdac" {
		t.Errorf("expected order bdac, got %s", keys)
	}
}

func TestUpdateByID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, _ := s.Insert(ctx, InsertParams{UserID: "u1", Type: model.TypeFact, Key: "k", Value: "v1", Importance: 4})

	later := mem.UpdatedAt.Add(time.Minute)
	if err := s.UpdateByID(ctx, mem.ID, UpdateFields{Value: "v2", UpdatedAt: later}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.SelectByUser(ctx, "u1")
	if got[0].Value != "v2" || got[0].Importance != 4 {
		t.Errorf("expected v2 with importance kept at 4, got %+v", got[0])
	}
	if !got[0].UpdatedAt.Equal(later) {
		t.Errorf("expected updated_at %v, got %v", later, got[0].UpdatedAt)
	}
	if !got[0].CreatedAt.Equal(mem.CreatedAt) {
		t.Error("created_at should not change on update")
	}

	if err := s.UpdateByID(ctx, mem.ID, UpdateFields{Value: "v3", Importance: 9}); err != nil {
		t.Fatalf("update importance: %v", err)
	}
	got, _ = s.SelectByUser(ctx, "u1")
	if got[0].Importance != 9 {
		t.Errorf("expected importance 9, got %d", got[0].Importance)
	}

	if err := s.UpdateByID(ctx, "missing", UpdateFields{Value: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteByID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	mem, _ := s.Insert(ctx, InsertParams{UserID: "u1", Type: model.TypeFact, Key: "k", Value: "v"})
	if err := s.DeleteByID(ctx, mem.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ := s.SelectByUser(ctx, "u1")
	if len(got) != 0 {
		t.Errorf("expected 0 after delete, got %d", len(got))
	}
	if err := s.DeleteByID(ctx, mem.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSelectRejectsUnknownType(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	// Bypass the CHECK constraint to simulate a row written by an older schema.
	// Pragmas are per connection.
	s.db.SetMaxOpenConns(1)
	if _, err := s.db.Exec(`PRAGMA ignore_check_constraints = ON`); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	_, err := s.db.Exec(`INSERT INTO user_memories (id, user_id, type, key, value, importance, created_at, updated_at)
		VALUES ('x', 'u1', 'opinion', 'k', 'v', 5, '2026-01-01T00:00:00Z', '2026-01-01T00:00:00Z')`)
	if err != nil {
		t.Fatalf("raw insert: %v", err)
	}

	if _, err := s.SelectByUser(ctx, "u1"); !errors.Is(err, model.ErrInvalidType) {
		t.Errorf("expected ErrInvalidType, got %v", err)
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}
