package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rcliao/buddy/internal/model"
)

// ExportAll returns all memories, optionally filtered by user.
func (s *SQLiteStore) ExportAll(ctx context.Context, userID string) ([]model.Memory, error) {
	query := `SELECT ` + memoryColumns + ` FROM user_memories`
	var args []interface{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY user_id, importance DESC, rowid`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemories(rows)
}

// Import stores memories from an export. A memory whose user and key already
// exist overwrites the stored value and importance; type and key stay as stored.
func (s *SQLiteStore) Import(ctx context.Context, memories []model.Memory) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	imported := 0
	for _, m := range memories {
		if m.Importance == 0 {
			m.Importance = model.DefaultImportance
		}
		if err := m.Validate(); err != nil {
			return imported, fmt.Errorf("import %s/%s: %w", m.UserID, m.Key, err)
		}
		if m.UserID == "" {
			return imported, fmt.Errorf("import %q: user id is required", m.Key)
		}
		if m.ID == "" {
			m.ID = s.newID()
		}
		now := time.Now()
		if m.CreatedAt.IsZero() {
			m.CreatedAt = now
		}
		if m.UpdatedAt.IsZero() {
			m.UpdatedAt = now
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO user_memories (`+memoryColumns+`)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(user_id, key) DO UPDATE SET
			   value = excluded.value,
			   importance = excluded.importance,
			   updated_at = excluded.updated_at`,
			m.ID, m.UserID, string(m.Type), m.Key, m.Value, m.Importance,
			formatTime(m.CreatedAt), formatTime(m.UpdatedAt))
		if err != nil {
			return imported, fmt.Errorf("import %s/%s: %w", m.UserID, m.Key, err)
		}
		imported++
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return imported, nil
}
