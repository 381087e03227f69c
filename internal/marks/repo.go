package marks

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Mark is the latest score of one student for one subject.
type Mark struct {
	StudentEmail  string    `json:"student_email"`
	RollNo        string    `json:"roll_no"`
	Subject       string    `json:"subject"`
	QuestionCount int       `json:"number_of_questions"`
	Score         int       `json:"marks"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Repository persists marks.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Upsert replaces the row keyed by (student, subject).
func (r *Repository) Upsert(ctx context.Context, m Mark) error {
	if m.StudentEmail == "" || strings.TrimSpace(m.Subject) == "" {
		return errors.New("student and subject required")
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO marks (student_email, roll_no, subject, number_of_questions, marks, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (student_email, subject) DO UPDATE SET
			roll_no = EXCLUDED.roll_no,
			number_of_questions = EXCLUDED.number_of_questions,
			marks = EXCLUDED.marks,
			updated_at = EXCLUDED.updated_at
	`, m.StudentEmail, m.RollNo, m.Subject, m.QuestionCount, m.Score, m.UpdatedAt)
	return err
}

// List returns every mark.
func (r *Repository) List(ctx context.Context) ([]Mark, error) {
	return r.query(ctx, `
		SELECT student_email, roll_no, subject, number_of_questions, marks, updated_at
		FROM marks
		ORDER BY student_email, subject
	`)
}

// ListByStudent returns the marks of one student.
func (r *Repository) ListByStudent(ctx context.Context, email string) ([]Mark, error) {
	return r.query(ctx, `
		SELECT student_email, roll_no, subject, number_of_questions, marks, updated_at
		FROM marks
		WHERE student_email = $1
		ORDER BY subject
	`, email)
}

// Delete removes one (student, subject) row and reports whether it existed.
func (r *Repository) Delete(ctx context.Context, email, subject string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM marks WHERE student_email = $1 AND subject = $2`, email, subject)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *Repository) query(ctx context.Context, q string, args ...any) ([]Mark, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []Mark{}
	for rows.Next() {
		var m Mark
		if err := rows.Scan(&m.StudentEmail, &m.RollNo, &m.Subject, &m.QuestionCount, &m.Score, &m.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}
