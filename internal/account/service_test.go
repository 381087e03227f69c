package account

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"quizbuddy/internal/kv"
	"quizbuddy/internal/marks"
	"quizbuddy/internal/store"
)

type fixture struct {
	svc   *Service
	repo  *Repository
	marks *marks.Service
	cache *kv.InMemory
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db, err := store.NewDB(context.Background(), store.DriverSQLite, "file:"+filepath.Join(t.TempDir(), "accounts.db"))
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	admin, err := NewAdmin("Admin@School.test", "admin-pass", "", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("NewAdmin: %v", err)
	}
	cache := kv.NewInMemory()
	repo := NewRepository(db.Client)
	return fixture{
		svc:   NewService(repo, admin, cache, Options{BcryptCost: bcrypt.MinCost, SnapshotTTL: time.Minute}, nil),
		repo:  repo,
		marks: marks.NewService(marks.NewRepository(db.Client), cache, time.Minute, nil),
		cache: cache,
	}
}

func student(email, password string) Registration {
	return Registration{Email: email, Phone: "555-0100", RollNo: "R-17", Password: password, Name: "Asha", College: "City College"}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ok, err := f.svc.Register(ctx, student("a@b.com", "pw1"))
	if err != nil || !ok {
		t.Fatalf("first Register = %v, %v", ok, err)
	}
	ok, err = f.svc.Register(ctx, student("a@b.com", "other"))
	if err != nil {
		t.Fatalf("second Register error: %v", err)
	}
	if ok {
		t.Fatal("second Register succeeded")
	}

	n, err := f.repo.CountByEmail(ctx, "a@b.com")
	if err != nil || n != 1 {
		t.Fatalf("rows for email = %d, %v", n, err)
	}

	// the original password still works
	if ok, _ := f.svc.Authenticate(ctx, "a@b.com", "pw1"); !ok {
		t.Fatal("original password rejected after duplicate attempt")
	}
}

func TestRegisterRequiresEmailAndPassword(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Register(context.Background(), student(" ", "pw")); !errors.Is(err, ErrInvalidRegistration) {
		t.Fatalf("blank email: %v", err)
	}
	if _, err := f.svc.Register(context.Background(), student("a@b.com", "")); !errors.Is(err, ErrInvalidRegistration) {
		t.Fatalf("blank password: %v", err)
	}
}

func TestRegisterRejectsAdminEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	if _, err := f.svc.Register(ctx, student(" ADMIN@school.test", "pw1")); !errors.Is(err, ErrInvalidRegistration) {
		t.Fatalf("admin email: %v", err)
	}
	if n, _ := f.repo.CountByEmail(ctx, "admin@school.test"); n != 0 {
		t.Fatalf("admin email stored as student: %d rows", n)
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _ = f.svc.Register(ctx, student("a@b.com", "pw1"))

	cases := []struct {
		email, password string
		want            bool
	}{
		{"a@b.com", "pw1", true},
		{"  A@B.com ", "pw1", true},
		{"a@b.com", "wrong", false},
		{"nobody@b.com", "pw1", false},
	}
	for _, tc := range cases {
		got, err := f.svc.Authenticate(ctx, tc.email, tc.password)
		if err != nil {
			t.Fatalf("Authenticate(%q): %v", tc.email, err)
		}
		if got != tc.want {
			t.Errorf("Authenticate(%q, %q) = %v, want %v", tc.email, tc.password, got, tc.want)
		}
	}
}

func TestPasswordIsStoredHashed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _ = f.svc.Register(ctx, student("a@b.com", "pw1"))

	hash, err := f.repo.PasswordHash(ctx, "a@b.com")
	if err != nil {
		t.Fatal(err)
	}
	if string(hash) == "pw1" {
		t.Fatal("password stored in clear text")
	}
	if bcrypt.CompareHashAndPassword(hash, []byte("pw1")) != nil {
		t.Fatal("stored hash does not verify")
	}
}

func TestLoginRoles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _ = f.svc.Register(ctx, student("a@b.com", "pw1"))

	if role, err := f.svc.Login(ctx, "admin@school.test", "admin-pass"); err != nil || role != RoleAdmin {
		t.Fatalf("admin Login = %q, %v", role, err)
	}
	if _, err := f.svc.Login(ctx, "admin@school.test", "pw1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("admin wrong password = %v", err)
	}
	if role, err := f.svc.Login(ctx, "a@b.com", "pw1"); err != nil || role != RoleStudent {
		t.Fatalf("student Login = %q, %v", role, err)
	}
	if _, err := f.svc.Login(ctx, "a@b.com", "nope"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("student wrong password = %v", err)
	}
}

func TestNewAdminFromHash(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("root"), bcrypt.MinCost)
	admin, err := NewAdmin("ops@school.test", "", string(hash), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	if bcrypt.CompareHashAndPassword(admin.PasswordHash, []byte("root")) != nil {
		t.Fatal("hash not preserved")
	}
	if _, err := NewAdmin("ops@school.test", "", "not-a-hash", bcrypt.MinCost); err == nil {
		t.Fatal("expected error for malformed hash")
	}
	if _, err := NewAdmin("", "pw", "", bcrypt.MinCost); err == nil {
		t.Fatal("expected error for empty email")
	}
}

func TestDeleteStudentRemovesMarksAndSnapshots(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _ = f.svc.Register(ctx, student("a@b.com", "pw1"))
	_, _ = f.svc.Register(ctx, student("c@d.com", "pw2"))
	_ = f.marks.Record(ctx, marks.Mark{StudentEmail: "a@b.com", Subject: "Loops", QuestionCount: 3, Score: 3})

	students, _ := f.svc.ListStudents(ctx)
	allMarks, _ := f.marks.List(ctx)
	if len(students) != 2 || len(allMarks) != 1 {
		t.Fatalf("setup: %d students, %d marks", len(students), len(allMarks))
	}

	ok, err := f.svc.DeleteStudent(ctx, "a@b.com")
	if err != nil || !ok {
		t.Fatalf("DeleteStudent = %v, %v", ok, err)
	}

	students, _ = f.svc.ListStudents(ctx)
	allMarks, _ = f.marks.List(ctx)
	if len(students) != 1 || students[0].Email != "c@d.com" {
		t.Fatalf("students after delete = %+v", students)
	}
	if len(allMarks) != 0 {
		t.Fatalf("marks after delete = %+v", allMarks)
	}

	ok, _ = f.svc.DeleteStudent(ctx, "a@b.com")
	if ok {
		t.Fatal("deleting twice reported a row")
	}
}

func TestRegisterInvalidatesStudentSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, _ = f.svc.Register(ctx, student("a@b.com", "pw1"))
	if got, _ := f.svc.ListStudents(ctx); len(got) != 1 {
		t.Fatalf("ListStudents = %d", len(got))
	}
	_, _ = f.svc.Register(ctx, student("c@d.com", "pw2"))
	if got, _ := f.svc.ListStudents(ctx); len(got) != 2 {
		t.Fatalf("ListStudents after register = %d, snapshot not invalidated", len(got))
	}
}
