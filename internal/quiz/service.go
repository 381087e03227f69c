package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"quizbuddy/internal/logger"
	"quizbuddy/internal/marks"
	"quizbuddy/internal/metrics"
	"quizbuddy/internal/translate"
)

var (
	ErrQuizNotFound = errors.New("quiz not found")
	ErrNoAttempt    = errors.New("no quiz in progress")
)

// Student identifies who a mark belongs to.
type Student struct {
	Email  string
	RollNo string
}

// StartRequest selects a stored quiz by QuizID, or describes an ad-hoc quiz
// in Quiz when QuizID is empty.
type StartRequest struct {
	QuizID   string
	Quiz     Request
	Language translate.Language
	Memo     translate.Memo
}

// Service ties generation, translation and scoring together.
type Service struct {
	defs       *Repository
	gen        *Generator
	translator *translate.Translator
	marks      *marks.Service
	rnd        *rand.Rand
	log        *zap.Logger
}

// NewService creates the quiz service.
func NewService(defs *Repository, gen *Generator, translator *translate.Translator, marks *marks.Service, log *zap.Logger) *Service {
	return &Service{defs: defs, gen: gen, translator: translator, marks: marks, log: logger.OrNop(log)}
}

// WithRand fixes the shuffle source, for tests.
func (s *Service) WithRand(rnd *rand.Rand) *Service {
	s.rnd = rnd
	return s
}

// CreateQuiz stores a new quiz definition.
func (s *Service) CreateQuiz(ctx context.Context, req Request) (Definition, error) {
	req, err := req.Normalize()
	if err != nil {
		return Definition{}, err
	}
	def, err := s.defs.Insert(ctx, Definition{Skill: req.Skill, Topic: req.Topic, Level: req.Level, Count: req.Count})
	if err != nil {
		return Definition{}, fmt.Errorf("insert quiz: %w", err)
	}
	s.log.Info("quiz created", zap.String("quiz_id", def.ID), zap.String("skill", def.Skill), zap.String("topic", def.Topic))
	return def, nil
}

// ListQuizzes returns all definitions.
func (s *Service) ListQuizzes(ctx context.Context) ([]Definition, error) {
	return s.defs.List(ctx)
}

// GetQuiz returns one definition or ErrQuizNotFound.
func (s *Service) GetQuiz(ctx context.Context, id string) (Definition, error) {
	d, err := s.defs.Get(ctx, id)
	if err != nil {
		return Definition{}, err
	}
	if d == nil {
		return Definition{}, ErrQuizNotFound
	}
	return *d, nil
}

// DeleteQuiz removes a definition.
func (s *Service) DeleteQuiz(ctx context.Context, id string) error {
	ok, err := s.defs.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrQuizNotFound
	}
	return nil
}

// Start generates a fresh attempt: questions from the LLM, shuffled
// options, and every visible string translated into the session language.
func (s *Service) Start(ctx context.Context, sr StartRequest) (*Attempt, error) {
	req := sr.Quiz
	if sr.QuizID != "" {
		def, err := s.GetQuiz(ctx, sr.QuizID)
		if err != nil {
			return nil, err
		}
		req = def.Request()
	}
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	questions, err := s.gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	lang := sr.Language
	if lang == "" {
		lang = translate.English
	}
	tr := func(text string) string { return s.translator.Translate(ctx, sr.Memo, text, lang) }

	attempt := &Attempt{
		ID:        uuid.NewString(),
		QuizID:    sr.QuizID,
		Subject:   req.Topic,
		Skill:     req.Skill,
		Level:     req.Level,
		Language:  lang,
		Questions: make([]Presented, 0, len(questions)),
		StartedAt: time.Now().UTC(),
	}
	for _, q := range questions {
		opts, err := RandomizeOptions(q.Answers(), s.rnd)
		if err != nil {
			return nil, err
		}
		explanation := q.Explanation
		if explanation == "" {
			explanation = DefaultExplanation
		}
		p := Presented{
			Text:         tr(q.Text),
			Options:      make([]string, len(opts.Choices)),
			CorrectIndex: opts.CorrectIndex,
			Explanation:  tr(explanation),
		}
		for i, c := range opts.Choices {
			p.Options[i] = tr(c)
		}
		p.Correct = p.Options[p.CorrectIndex]
		attempt.Questions = append(attempt.Questions, p)
	}
	return attempt, nil
}

// Submit grades the attempt and records the mark for (student, subject).
func (s *Service) Submit(ctx context.Context, student Student, attempt *Attempt, answers []int) (Result, error) {
	if attempt == nil {
		return Result{}, ErrNoAttempt
	}
	res := attempt.Grade(answers)
	rollNo := student.RollNo
	if rollNo == "" {
		rollNo = "N/A"
	}
	err := s.marks.Record(ctx, marks.Mark{
		StudentEmail:  student.Email,
		RollNo:        rollNo,
		Subject:       attempt.Subject,
		QuestionCount: res.Total,
		Score:         res.Score,
	})
	if err != nil {
		return Result{}, fmt.Errorf("record mark: %w", err)
	}
	metrics.QuizSubmissions.Inc()
	s.log.Info("quiz submitted",
		zap.String("email", student.Email),
		zap.String("subject", attempt.Subject),
		zap.Int("score", res.Score),
		zap.Int("total", res.Total),
	)
	return res, nil
}
