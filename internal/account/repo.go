package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// User is a registered student. The password hash never leaves the repository.
type User struct {
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	RollNo    string    `json:"roll_no"`
	Name      string    `json:"name"`
	College   string    `json:"college"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository persists users in the users table.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores a new user and reports false when the email is taken.
func (r *Repository) Insert(ctx context.Context, u User, passwordHash []byte) (bool, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (email, phone, roll_no, password_hash, name, college, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (email) DO NOTHING
	`, u.Email, u.Phone, u.RollNo, string(passwordHash), u.Name, u.College, u.CreatedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// PasswordHash returns the stored hash, or nil when the email is unknown.
func (r *Repository) PasswordHash(ctx context.Context, email string) ([]byte, error) {
	var hash string
	err := r.db.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE email = $1`, email).Scan(&hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return []byte(hash), nil
}

// Get returns a single user, or nil when absent.
func (r *Repository) Get(ctx context.Context, email string) (*User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT email, phone, roll_no, name, college, created_at
		FROM users WHERE email = $1
	`, email)
	var u User
	if err := row.Scan(&u.Email, &u.Phone, &u.RollNo, &u.Name, &u.College, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// List returns all users.
func (r *Repository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT email, phone, roll_no, name, college, created_at
		FROM users
		ORDER BY email
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Email, &u.Phone, &u.RollNo, &u.Name, &u.College, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountByEmail is used by tests and health checks of registration.
func (r *Repository) CountByEmail(ctx context.Context, email string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE email = $1`, email).Scan(&n)
	return n, err
}

// Delete removes a user together with their marks in one transaction.
func (r *Repository) Delete(ctx context.Context, email string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE email = $1`, email)
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM marks WHERE student_email = $1`, email); err != nil {
		return false, fmt.Errorf("delete marks: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
