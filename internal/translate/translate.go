package translate

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"quizbuddy/internal/logger"
	"quizbuddy/internal/metrics"
)

// Language is a supported quiz language.
type Language string

const (
	English Language = "English"
	Telugu  Language = "Telugu"
	Tamil   Language = "Tamil"
	Hindi   Language = "Hindi"
)

// ErrUnsupportedLanguage is returned by ParseLanguage.
var ErrUnsupportedLanguage = errors.New("unsupported language")

var languageCodes = map[Language]string{
	Telugu: "te",
	Tamil:  "ta",
	Hindi:  "hi",
}

// Languages lists the selectable languages, English first.
func Languages() []Language {
	return []Language{English, Telugu, Tamil, Hindi}
}

// ParseLanguage maps a name (case-insensitive) to a Language. Empty means English.
func ParseLanguage(s string) (Language, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return English, nil
	}
	for _, l := range Languages() {
		if strings.EqualFold(s, string(l)) {
			return l, nil
		}
	}
	return "", ErrUnsupportedLanguage
}

// Code returns the target language code; English has none.
func (l Language) Code() string {
	return languageCodes[l]
}

// Backend performs one external translation with auto-detected source.
type Backend interface {
	Translate(ctx context.Context, text, targetCode string) (string, error)
}

// Memo caches translations for one session. A nil Memo disables caching.
type Memo map[string]string

func memoKey(text string, lang Language) string {
	return string(lang) + "\x00" + text
}

// Translator localizes quiz text, falling back to the input on any failure.
type Translator struct {
	backend Backend
	log     *zap.Logger
}

// New creates a translator.
func New(backend Backend, log *zap.Logger) *Translator {
	return &Translator{backend: backend, log: logger.OrNop(log)}
}

// Translate returns text in lang. English and blank text are returned as is
// without an external call. Results are memoized per (text, lang) in memo.
func (t *Translator) Translate(ctx context.Context, memo Memo, text string, lang Language) string {
	if lang == English || lang == "" || strings.TrimSpace(text) == "" {
		metrics.Translations.WithLabelValues("skipped").Inc()
		return text
	}
	key := memoKey(text, lang)
	if v, ok := memo[key]; ok {
		metrics.Translations.WithLabelValues("cached").Inc()
		return v
	}

	out := text
	code := lang.Code()
	if code == "" || t.backend == nil {
		metrics.Translations.WithLabelValues("fallback").Inc()
	} else if translated, err := t.backend.Translate(ctx, text, code); err != nil {
		metrics.Translations.WithLabelValues("fallback").Inc()
		t.log.Warn("translation failed, using original text", zap.String("lang", string(lang)), zap.Error(err))
	} else {
		metrics.Translations.WithLabelValues("ok").Inc()
		out = translated
	}

	if memo != nil {
		memo[key] = out
	}
	return out
}
