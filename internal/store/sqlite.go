package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/buddy/internal/model"
)

const memoryColumns = `id, user_id, type, key, value, importance, created_at, updated_at`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex // guards entropy
	entropy *rand.Rand
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS user_memories (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL,
		type        TEXT NOT NULL CHECK (type IN ('preference', 'fact', 'summary', 'context', 'feedback')),
		key         TEXT NOT NULL,
		value       TEXT NOT NULL,
		importance  INTEGER NOT NULL DEFAULT 5 CHECK (importance BETWEEN 1 AND 10),
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_user_memories_user_key ON user_memories(user_id, key);
	CREATE INDEX IF NOT EXISTS idx_user_memories_importance ON user_memories(user_id, importance DESC);
	CREATE INDEX IF NOT EXISTS idx_user_memories_type ON user_memories(user_id, type);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SelectByUser returns all memories of a user ordered by importance, highest
// first. Ties keep insertion order.
func (s *SQLiteStore) SelectByUser(ctx context.Context, userID string) ([]model.Memory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+memoryColumns+` FROM user_memories
		 WHERE user_id = ?
		 ORDER BY importance DESC, rowid ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMemories(rows)
}

func (s *SQLiteStore) Insert(ctx context.Context, p InsertParams) (*model.Memory, error) {
	importance := p.Importance
	if importance == 0 {
		importance = model.DefaultImportance
	}

	mem := model.Memory{
		ID:         s.newID(),
		UserID:     p.UserID,
		Type:       p.Type,
		Key:        p.Key,
		Value:      p.Value,
		Importance: importance,
	}
	if err := mem.Validate(); err != nil {
		return nil, err
	}
	if p.UserID == "" {
		return nil, fmt.Errorf("insert memory: user id is required")
	}

	now := time.Now().UTC()
	mem.CreatedAt = now
	mem.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_memories (`+memoryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		mem.ID, mem.UserID, string(mem.Type), mem.Key, mem.Value, mem.Importance,
		formatTime(now), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("insert memory: %w", err)
	}

	return &mem, nil
}

func (s *SQLiteStore) UpdateByID(ctx context.Context, id string, f UpdateFields) error {
	updatedAt := f.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	set := []string{"value = ?", "updated_at = ?"}
	args := []interface{}{f.Value, formatTime(updatedAt)}
	if f.Importance != 0 {
		if err := model.ValidateImportance(f.Importance); err != nil {
			return err
		}
		set = append(set, "importance = ?")
		args = append(args, f.Importance)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		`UPDATE user_memories SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update memory: %w", err)
	}
	return expectRow(res, id)
}

func (s *SQLiteStore) DeleteByID(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM user_memories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete memory: %w", err)
	}
	return expectRow(res, id)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func expectRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanMemory reads one row and rejects types outside the closed enumeration.
func scanMemory(row scanner) (model.Memory, error) {
	var m model.Memory
	var typ, createdAt, updatedAt string

	err := row.Scan(&m.ID, &m.UserID, &typ, &m.Key, &m.Value, &m.Importance, &createdAt, &updatedAt)
	if err != nil {
		return m, err
	}

	m.Type, err = model.ParseType(typ)
	if err != nil {
		return m, fmt.Errorf("memory %s: %w", m.ID, err)
	}
	m.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	m.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

	return m, nil
}

func scanMemories(rows *sql.Rows) ([]model.Memory, error) {
	var memories []model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	return memories, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
