package quiz

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Definition is an admin-created quiz. Questions are generated per attempt.
type Definition struct {
	ID        string    `json:"id"`
	Skill     string    `json:"skill"`
	Topic     string    `json:"topic"`
	Level     Level     `json:"level"`
	Count     int       `json:"number_of_questions"`
	CreatedAt time.Time `json:"created_at"`
}

// Request returns the generation request this definition stands for.
func (d Definition) Request() Request {
	return Request{Skill: d.Skill, Topic: d.Topic, Level: d.Level, Count: d.Count}
}

// Repository persists quiz definitions.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new definition, assigning its id.
func (r *Repository) Insert(ctx context.Context, d Definition) (Definition, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO quizzes (id, skill, topic, level, number_of_questions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, d.ID, d.Skill, d.Topic, string(d.Level), d.Count, d.CreatedAt)
	if err != nil {
		return Definition{}, err
	}
	return d, nil
}

// Get returns a definition, or nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*Definition, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, skill, topic, level, number_of_questions, created_at
		FROM quizzes WHERE id = $1
	`, id)
	var d Definition
	if err := row.Scan(&d.ID, &d.Skill, &d.Topic, &d.Level, &d.Count, &d.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// List returns definitions, newest first.
func (r *Repository) List(ctx context.Context) ([]Definition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, skill, topic, level, number_of_questions, created_at
		FROM quizzes
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	defs := []Definition{}
	for rows.Next() {
		var d Definition
		if err := rows.Scan(&d.ID, &d.Skill, &d.Topic, &d.Level, &d.Count, &d.CreatedAt); err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	return defs, rows.Err()
}

// Delete removes a definition and reports whether it existed.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
