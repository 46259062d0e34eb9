package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath        string         `json:"db_path"`
	DBSizeBytes   int64          `json:"db_size_bytes"`
	TotalMemories int            `json:"total_memories"`
	ByType        map[string]int `json:"by_type"`
	Users         []UserStats    `json:"users"`
}

// UserStats holds per-user counts.
type UserStats struct {
	UserID string `json:"user_id"`
	Count  int    `json:"count"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath, ByType: map[string]int{}}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_memories`).Scan(&st.TotalMemories); err != nil {
		return st, err
	}

	typeRows, err := s.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM user_memories GROUP BY type`)
	if err != nil {
		return st, err
	}
	for typeRows.Next() {
		var typ string
		var n int
		if err := typeRows.Scan(&typ, &n); err != nil {
			typeRows.Close()
			return st, err
		}
		st.ByType[typ] = n
	}
	err = typeRows.Err()
	typeRows.Close()
	if err != nil {
		return st, err
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		return st, err
	}
	st.Users = users

	return st, nil
}

// ListUsers returns every user that owns at least one memory, busiest first.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]UserStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, COUNT(*) AS cnt
		FROM user_memories
		GROUP BY user_id ORDER BY cnt DESC, user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []UserStats
	for rows.Next() {
		var u UserStats
		if err := rows.Scan(&u.UserID, &u.Count); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
