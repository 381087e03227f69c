package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"quizbuddy/internal/kv"
	"quizbuddy/internal/logger"
	"quizbuddy/internal/marks"
)

// Role distinguishes administrators from students.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// StudentsSnapshotKey holds the cached student listing.
const StudentsSnapshotKey = "snapshot:students"

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrInvalidRegistration = errors.New("email and password are required")
)

// Registration is the input to Register.
type Registration struct {
	Email    string
	Phone    string
	RollNo   string
	Password string
	Name     string
	College  string
}

// Admin is the administrator account provisioned through configuration.
type Admin struct {
	Email        string
	PasswordHash []byte
}

// NewAdmin builds the admin account from either a bcrypt hash or a plain
// password; the plain password is hashed immediately.
func NewAdmin(email, password, passwordHash string, cost int) (Admin, error) {
	email = normalizeEmail(email)
	if email == "" {
		return Admin{}, errors.New("admin email required")
	}
	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return Admin{}, fmt.Errorf("admin password hash: %w", err)
		}
		return Admin{Email: email, PasswordHash: []byte(passwordHash)}, nil
	}
	if password == "" {
		return Admin{}, errors.New("admin password required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return Admin{}, err
	}
	return Admin{Email: email, PasswordHash: hash}, nil
}

// Service is the credential store.
type Service struct {
	repo        *Repository
	admin       Admin
	cost        int
	cache       kv.Store
	snapshotTTL time.Duration
	log         *zap.Logger
}

// Options tune the service.
type Options struct {
	BcryptCost  int
	SnapshotTTL time.Duration
}

// NewService creates the credential store.
func NewService(repo *Repository, admin Admin, cache kv.Store, opts Options, log *zap.Logger) *Service {
	cost := opts.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		repo:        repo,
		admin:       admin,
		cost:        cost,
		cache:       cache,
		snapshotTTL: opts.SnapshotTTL,
		log:         logger.OrNop(log),
	}
}

// Register stores a new user with a salted bcrypt hash. It returns false
// without error when the email is already registered.
func (s *Service) Register(ctx context.Context, reg Registration) (bool, error) {
	email := normalizeEmail(reg.Email)
	if email == "" || reg.Password == "" {
		return false, ErrInvalidRegistration
	}
	if email == s.admin.Email {
		return false, fmt.Errorf("%w: email is reserved", ErrInvalidRegistration)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}
	created, err := s.repo.Insert(ctx, User{
		Email:   email,
		Phone:   strings.TrimSpace(reg.Phone),
		RollNo:  strings.TrimSpace(reg.RollNo),
		Name:    strings.TrimSpace(reg.Name),
		College: strings.TrimSpace(reg.College),
	}, hash)
	if err != nil {
		return false, fmt.Errorf("insert user: %w", err)
	}
	if created {
		s.invalidate(ctx, StudentsSnapshotKey)
		s.log.Info("student registered", zap.String("email", email))
	}
	return created, nil
}

// Authenticate verifies a student's password. Unknown emails yield false.
func (s *Service) Authenticate(ctx context.Context, email, password string) (bool, error) {
	hash, err := s.repo.PasswordHash(ctx, normalizeEmail(email))
	if err != nil {
		return false, err
	}
	if hash == nil {
		return false, nil
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil, nil
}

// Login resolves credentials to a role. The configured admin account is
// checked before the user table.
func (s *Service) Login(ctx context.Context, email, password string) (Role, error) {
	email = normalizeEmail(email)
	if email != "" && email == s.admin.Email {
		if bcrypt.CompareHashAndPassword(s.admin.PasswordHash, []byte(password)) == nil {
			return RoleAdmin, nil
		}
		return "", ErrInvalidCredentials
	}
	ok, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInvalidCredentials
	}
	return RoleStudent, nil
}

// AdminEmail is the normalized administrator address.
func (s *Service) AdminEmail() string {
	return s.admin.Email
}

// Get returns a user or nil.
func (s *Service) Get(ctx context.Context, email string) (*User, error) {
	return s.repo.Get(ctx, normalizeEmail(email))
}

// ListStudents returns all users, served from the snapshot when fresh.
func (s *Service) ListStudents(ctx context.Context) ([]User, error) {
	var cached []User
	if err := kv.GetJSON(ctx, s.cache, StudentsSnapshotKey, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, kv.ErrMiss) {
		s.log.Warn("students snapshot read failed", zap.Error(err))
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.snapshotTTL > 0 {
		if err := kv.SetJSON(ctx, s.cache, StudentsSnapshotKey, users, s.snapshotTTL); err != nil {
			s.log.Warn("students snapshot write failed", zap.Error(err))
		}
	}
	return users, nil
}

// DeleteStudent removes the user and their marks.
func (s *Service) DeleteStudent(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	ok, err := s.repo.Delete(ctx, email)
	if err != nil {
		return false, err
	}
	s.invalidate(ctx, StudentsSnapshotKey, marks.SnapshotKey)
	if ok {
		s.log.Info("student deleted", zap.String("email", email))
	}
	return ok, nil
}

func (s *Service) invalidate(ctx context.Context, keys ...string) {
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.log.Warn("snapshot invalidate failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
