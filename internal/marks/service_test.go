package marks

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"quizbuddy/internal/kv"
	"quizbuddy/internal/store"
)

func newTestService(t *testing.T) (*Service, *Repository, *kv.InMemory) {
	t.Helper()
	db, err := store.NewDB(context.Background(), store.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "marks.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := NewRepository(db.Client)
	cache := kv.NewInMemory()
	return NewService(repo, cache, time.Minute, nil), repo, cache
}

func TestRecordReplacesPriorScore(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)

	if err := svc.Record(ctx, Mark{StudentEmail: "a@b.com", RollNo: "R1", Subject: "Loops", QuestionCount: 3, Score: 3}); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := svc.Record(ctx, Mark{StudentEmail: "a@b.com", RollNo: "R1", Subject: "Loops", QuestionCount: 3, Score: 1}); err != nil {
		t.Fatalf("second record: %v", err)
	}

	rows, err := repo.ListByStudent(ctx, "a@b.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	if rows[0].Score != 1 || rows[0].QuestionCount != 3 {
		t.Fatalf("row = %+v, want score 1/3", rows[0])
	}
}

func TestRecordKeepsSubjectsApart(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)

	_ = svc.Record(ctx, Mark{StudentEmail: "a@b.com", Subject: "Loops", QuestionCount: 3, Score: 2})
	_ = svc.Record(ctx, Mark{StudentEmail: "a@b.com", Subject: "Strings", QuestionCount: 5, Score: 4})
	_ = svc.Record(ctx, Mark{StudentEmail: "c@d.com", Subject: "Loops", QuestionCount: 3, Score: 3})

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("List = %d rows, want 3", len(all))
	}
}

func TestRecordRejectsImpossibleScore(t *testing.T) {
	svc, _, _ := newTestService(t)
	if err := svc.Record(context.Background(), Mark{StudentEmail: "a@b.com", Subject: "Loops", QuestionCount: 2, Score: 3}); err == nil {
		t.Fatal("expected error for score above question count")
	}
}

func TestListSnapshotInvalidatedOnMutation(t *testing.T) {
	ctx := context.Background()
	svc, repo, cache := newTestService(t)

	_ = svc.Record(ctx, Mark{StudentEmail: "a@b.com", Subject: "Loops", QuestionCount: 3, Score: 2})
	first, _ := svc.List(ctx)
	if len(first) != 1 {
		t.Fatalf("List = %d", len(first))
	}
	if _, err := cache.Get(ctx, SnapshotKey); err != nil {
		t.Fatalf("snapshot not cached: %v", err)
	}

	// a write that bypasses the service is invisible until the snapshot goes
	_ = repo.Upsert(ctx, Mark{StudentEmail: "x@y.com", Subject: "Loops", QuestionCount: 3, Score: 0})
	cached, _ := svc.List(ctx)
	if len(cached) != 1 {
		t.Fatalf("expected cached snapshot of 1 row, got %d", len(cached))
	}

	ok, err := svc.Delete(ctx, "a@b.com", "Loops")
	if err != nil || !ok {
		t.Fatalf("Delete = %v, %v", ok, err)
	}
	fresh, _ := svc.List(ctx)
	if len(fresh) != 1 || fresh[0].StudentEmail != "x@y.com" {
		t.Fatalf("after delete List = %+v", fresh)
	}

	ok, _ = svc.Delete(ctx, "a@b.com", "Loops")
	if ok {
		t.Fatal("second delete reported a row")
	}
}
