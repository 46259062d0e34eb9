package store

import (
	"context"
	"testing"

	"github.com/rcliao/buddy/internal/model"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestStore(t)

	src.Insert(ctx, InsertParams{UserID: "u1", Type: model.TypeFact, Key: "name", Value: "Somchai", Importance: 8})
	src.Insert(ctx, InsertParams{UserID: "u1", Type: model.TypeSummary, Key: "conversation_1", Value: "hi", Importance: 3})
	src.Insert(ctx, InsertParams{UserID: "u2", Type: model.TypePreference, Key: "style", Value: "short"})

	all, err := src.ExportAll(ctx, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 exported, got %d", len(all))
	}

	onlyU1, _ := src.ExportAll(ctx, "u1")
	if len(onlyU1) != 2 {
		t.Errorf("expected 2 for u1, got %d", len(onlyU1))
	}

	dst := newTestStore(t)
	n, err := dst.Import(ctx, all)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 imported, got %d", n)
	}

	got, _ := dst.SelectByUser(ctx, "u1")
	if len(got) != 2 || got[0].Key != "name" || got[0].ID != onlyU1[0].ID {
		t.Errorf("unexpected import result: %+v", got)
	}
}

func TestImportOverwritesSameKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Insert(ctx, InsertParams{UserID: "u1", Type: model.TypeFact, Key: "name", Value: "old", Importance: 4})

	n, err := s.Import(ctx, []model.Memory{
		{UserID: "u1", Type: model.TypeFact, Key: "name", Value: "new", Importance: 9},
	})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 imported, got %d", n)
	}

	got, _ := s.SelectByUser(ctx, "u1")
	if len(got) != 1 {
		t.Fatalf("expected a single record per key, got %d", len(got))
	}
	if got[0].Value != "new" || got[0].Importance != 9 {
		t.Errorf("expected overwritten value, got %+v", got[0])
	}
}

func TestImportRejectsInvalidType(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Import(ctx, []model.Memory{{UserID: "u1", Type: "opinion", Key: "k", Value: "v"}})
	if err == nil {
		t.Fatal("expected error for invalid type")
	}
	got, _ := s.SelectByUser(ctx, "u1")
	if len(got) != 0 {
		t.Errorf("expected nothing imported, got %d", len(got))
	}
}

func TestImportRejectsMissingUser(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Import(ctx, []model.Memory{
		{UserID: "u1", Type: model.TypeFact, Key: "a", Value: "v"},
		{Type: model.TypeFact, Key: "b", Value: "v"},
	})
	if err == nil {
		t.Fatal("expected error for missing user id")
	}
	users, _ := s.ListUsers(ctx)
	if len(users) != 0 {
		t.Errorf("expected the whole import rolled back, got %+v", users)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.Insert(ctx, InsertParams{UserID: "u1", Type: model.TypeFact, Key: "a", Value: "a"})
	s.Insert(ctx, InsertParams{UserID: "u1", Type: model.TypeFact, Key: "b", Value: "b"})
	s.Insert(ctx, InsertParams{UserID: "u2", Type: model.TypeSummary, Key: "c", Value: "c"})

	st, err := s.Stats(ctx, "/nonexistent/path.db")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalMemories != 3 {
		t.Errorf("expected 3 total, got %d", st.TotalMemories)
	}
	if st.ByType["fact"] != 2 || st.ByType["summary"] != 1 {
		t.Errorf("unexpected per-type counts: %v", st.ByType)
	}
	if len(st.Users) != 2 || st.Users[0].UserID != "u1" || st.Users[0].Count != 2 {
		t.Errorf("unexpected user stats: %+v", st.Users)
	}
}
