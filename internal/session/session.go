package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quizbuddy/internal/account"
	"quizbuddy/internal/kv"
	"quizbuddy/internal/quiz"
	"quizbuddy/internal/translate"
)

// ErrNotFound is returned for unknown or logged-out sessions.
var ErrNotFound = errors.New("session not found")

const keyPrefix = "session:"

// Session is the per-login state of one user.
type Session struct {
	ID           string             `json:"id"`
	Email        string             `json:"email"`
	Role         account.Role       `json:"role"`
	Language     translate.Language `json:"language"`
	Attempt      *quiz.Attempt      `json:"attempt,omitempty"`
	Translations translate.Memo     `json:"translations"`
	CreatedAt    time.Time          `json:"created_at"`
}

// Store keeps sessions in the kv store with a fixed TTL.
type Store struct {
	kv  kv.Store
	ttl time.Duration
}

// NewStore creates a session store.
func NewStore(store kv.Store, ttl time.Duration) *Store {
	return &Store{kv: store, ttl: ttl}
}

// TTL is the lifetime applied on every save.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create starts a fresh English session for email.
func (s *Store) Create(ctx context.Context, email string, role account.Role) (*Session, error) {
	sess := &Session{
		ID:           uuid.NewString(),
		Email:        email,
		Role:         role,
		Language:     translate.English,
		Translations: translate.Memo{},
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Save writes the session back.
func (s *Store) Save(ctx context.Context, sess *Session) error {
	if err := kv.SetJSON(ctx, s.kv, keyPrefix+sess.ID, sess, s.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get loads a session by id.
func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	var sess Session
	if err := kv.GetJSON(ctx, s.kv, keyPrefix+id, &sess); err != nil {
		if errors.Is(err, kv.ErrMiss) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess.Translations == nil {
		sess.Translations = translate.Memo{}
	}
	return &sess, nil
}

// Delete ends a session.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.kv.Delete(ctx, keyPrefix+id)
}
