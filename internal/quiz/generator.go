package quiz

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"quizbuddy/internal/logger"
	"quizbuddy/internal/metrics"
)

// ErrGenerationFailed matches every *GenerationError.
var ErrGenerationFailed = errors.New("quiz generation failed")

// Generation failure stages.
const (
	StageRequest = "request"
	StageParse   = "parse"
	StageCount   = "count"
)

// GenerationError reports why a quiz could not be produced.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("quiz generation failed (%s): %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrGenerationFailed) true.
func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

// Completer sends a single prompt to an LLM.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator asks the LLM for questions and parses the reply.
type Generator struct {
	llm Completer
	log *zap.Logger
}

// NewGenerator creates a generator.
func NewGenerator(llm Completer, log *zap.Logger) *Generator {
	return &Generator{llm: llm, log: logger.OrNop(log)}
}

// Generate returns exactly req.Count questions or a *GenerationError.
// Replies with more groups than requested are truncated; fewer is a failure.
func (g *Generator) Generate(ctx context.Context, req Request) ([]Question, error) {
	req, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	reply, err := g.llm.Complete(ctx, BuildPrompt(req))
	if err != nil {
		return nil, g.fail(req, StageRequest, err)
	}

	questions, err := ParseQuestions(reply)
	if err != nil {
		g.log.Debug("unparseable llm reply", zap.String("reply", reply))
		return nil, g.fail(req, StageParse, err)
	}
	if len(questions) < req.Count {
		return nil, g.fail(req, StageCount, fmt.Errorf("got %d questions, want %d", len(questions), req.Count))
	}
	if len(questions) > req.Count {
		g.log.Info("truncating extra questions", zap.Int("got", len(questions)), zap.Int("want", req.Count))
		questions = questions[:req.Count]
	}

	metrics.QuizGenerations.WithLabelValues("ok").Inc()
	return questions, nil
}

func (g *Generator) fail(req Request, stage string, err error) error {
	metrics.QuizGenerations.WithLabelValues(stage).Inc()
	g.log.Warn("quiz generation failed",
		zap.String("stage", stage),
		zap.String("skill", req.Skill),
		zap.String("topic", req.Topic),
		zap.Int("count", req.Count),
		zap.Error(err),
	)
	return &GenerationError{Stage: stage, Err: err}
}
