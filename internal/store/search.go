package store

import (
	"context"
	"strings"

	"github.com/rcliao/buddy/internal/model"
)

// SearchParams holds parameters for searching memories.
type SearchParams struct {
	UserID string
	Query  string
	Type   model.Type
	Limit  int
}

// Search finds memories whose key or value contains the query substring.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]model.Memory, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	query := "%" + p.Query + "%"

	where := []string{"(key LIKE ? OR value LIKE ?)"}
	args := []interface{}{query, query}

	if p.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, p.UserID)
	}
	if p.Type != "" {
		where = append(where, "type = ?")
		args = append(args, string(p.Type))
	}
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+memoryColumns+` FROM user_memories
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY importance DESC, updated_at DESC
		 LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMemories(rows)
}
