package marks

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"quizbuddy/internal/kv"
	"quizbuddy/internal/logger"
)

// SnapshotKey holds the cached full-table listing.
const SnapshotKey = "snapshot:marks"

// Service is the score store: upserts plus a cached admin listing that is
// dropped after every mutation.
type Service struct {
	repo        *Repository
	cache       kv.Store
	snapshotTTL time.Duration
	log         *zap.Logger
}

// NewService creates a service backed by a repository and a snapshot cache.
func NewService(repo *Repository, cache kv.Store, snapshotTTL time.Duration, log *zap.Logger) *Service {
	return &Service{repo: repo, cache: cache, snapshotTTL: snapshotTTL, log: logger.OrNop(log)}
}

// Record upserts the mark for (student, subject), replacing any prior score.
func (s *Service) Record(ctx context.Context, m Mark) error {
	if m.Score < 0 || m.QuestionCount < 0 || m.Score > m.QuestionCount {
		return errors.New("score out of range")
	}
	if err := s.repo.Upsert(ctx, m); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// List returns all marks, served from the snapshot when fresh.
func (s *Service) List(ctx context.Context) ([]Mark, error) {
	var cached []Mark
	if err := kv.GetJSON(ctx, s.cache, SnapshotKey, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, kv.ErrMiss) {
		s.log.Warn("marks snapshot read failed", zap.Error(err))
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.snapshotTTL > 0 {
		if err := kv.SetJSON(ctx, s.cache, SnapshotKey, all, s.snapshotTTL); err != nil {
			s.log.Warn("marks snapshot write failed", zap.Error(err))
		}
	}
	return all, nil
}

// ListByStudent bypasses the snapshot.
func (s *Service) ListByStudent(ctx context.Context, email string) ([]Mark, error) {
	return s.repo.ListByStudent(ctx, email)
}

// Delete removes one mark.
func (s *Service) Delete(ctx context.Context, email, subject string) (bool, error) {
	ok, err := s.repo.Delete(ctx, email, subject)
	if err != nil {
		return false, err
	}
	s.invalidate(ctx)
	return ok, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, SnapshotKey); err != nil {
		s.log.Warn("marks snapshot invalidate failed", zap.Error(err))
	}
}
