package quiz

import (
	"errors"
	"fmt"
	"strings"
)

// Level is the learner's skill level.
type Level string

const (
	Beginner     Level = "Beginner"
	Intermediate Level = "Intermediate"
	Advanced     Level = "Advanced"
)

// MaxQuestions caps a single generation so the reply fits the token budget.
const MaxQuestions = 50

var (
	ErrInvalidLevel   = errors.New("level must be Beginner, Intermediate or Advanced")
	ErrInvalidRequest = errors.New("invalid quiz request")
)

// ParseLevel maps a level name, case-insensitively.
func ParseLevel(s string) (Level, error) {
	for _, l := range []Level{Beginner, Intermediate, Advanced} {
		if strings.EqualFold(strings.TrimSpace(s), string(l)) {
			return l, nil
		}
	}
	return "", ErrInvalidLevel
}

// Request describes the quiz to generate.
type Request struct {
	Skill string `json:"skill"`
	Topic string `json:"topic"`
	Level Level  `json:"level"`
	Count int    `json:"count"`
}

// Normalize trims fields and canonicalizes the level.
func (r Request) Normalize() (Request, error) {
	r.Skill = strings.TrimSpace(r.Skill)
	r.Topic = strings.TrimSpace(r.Topic)
	if r.Skill == "" || r.Topic == "" {
		return r, fmt.Errorf("%w: skill and topic are required", ErrInvalidRequest)
	}
	lvl, err := ParseLevel(string(r.Level))
	if err != nil {
		return r, err
	}
	r.Level = lvl
	if r.Count < 1 || r.Count > MaxQuestions {
		return r, fmt.Errorf("%w: count must be between 1 and %d", ErrInvalidRequest, MaxQuestions)
	}
	return r, nil
}
