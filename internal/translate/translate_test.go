package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type countingBackend struct {
	calls int
	err   error
}

func (b *countingBackend) Translate(_ context.Context, text, code string) (string, error) {
	b.calls++
	if b.err != nil {
		return "", b.err
	}
	return code + ":" + text, nil
}

func TestEnglishIsIdentity(t *testing.T) {
	b := &countingBackend{}
	tr := New(b, nil)
	for _, text := range []string{"What is a loop?", "", "  ", "ünïcødé"} {
		if got := tr.Translate(context.Background(), Memo{}, text, English); got != text {
			t.Errorf("Translate(%q, English) = %q", text, got)
		}
	}
	if b.calls != 0 {
		t.Fatalf("backend called %d times for English", b.calls)
	}
}

func TestBlankInputIsIdentity(t *testing.T) {
	b := &countingBackend{}
	tr := New(b, nil)
	for _, lang := range Languages() {
		if got := tr.Translate(context.Background(), Memo{}, "", lang); got != "" {
			t.Errorf("Translate(\"\", %s) = %q", lang, got)
		}
		if got := tr.Translate(context.Background(), Memo{}, " \n", lang); got != " \n" {
			t.Errorf("Translate(whitespace, %s) = %q", lang, got)
		}
	}
	if b.calls != 0 {
		t.Fatalf("backend called %d times for blank text", b.calls)
	}
}

func TestMemoizedPerSession(t *testing.T) {
	b := &countingBackend{}
	tr := New(b, nil)
	memo := Memo{}

	first := tr.Translate(context.Background(), memo, "Loop", Hindi)
	second := tr.Translate(context.Background(), memo, "Loop", Hindi)
	if first != "hi:Loop" || second != first {
		t.Fatalf("got %q then %q", first, second)
	}
	if b.calls != 1 {
		t.Fatalf("backend calls = %d, want 1", b.calls)
	}

	// a different language or a different session is a new lookup
	_ = tr.Translate(context.Background(), memo, "Loop", Tamil)
	_ = tr.Translate(context.Background(), Memo{}, "Loop", Hindi)
	if b.calls != 3 {
		t.Fatalf("backend calls = %d, want 3", b.calls)
	}
}

func TestFailureFallsBackToOriginal(t *testing.T) {
	b := &countingBackend{err: errors.New("quota exceeded")}
	tr := New(b, nil)
	memo := Memo{}

	if got := tr.Translate(context.Background(), memo, "Loop", Telugu); got != "Loop" {
		t.Fatalf("fallback = %q", got)
	}
	_ = tr.Translate(context.Background(), memo, "Loop", Telugu)
	if b.calls != 1 {
		t.Fatalf("fallback result not memoized, calls = %d", b.calls)
	}
}

func TestParseLanguage(t *testing.T) {
	cases := map[string]Language{"": English, "english": English, "TELUGU": Telugu, " Tamil ": Tamil, "hindi": Hindi}
	for in, want := range cases {
		got, err := ParseLanguage(in)
		if err != nil || got != want {
			t.Errorf("ParseLanguage(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseLanguage("Klingon"); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Fatalf("Klingon: %v", err)
	}
	if Telugu.Code() != "te" || Tamil.Code() != "ta" || Hindi.Code() != "hi" || English.Code() != "" {
		t.Fatal("language codes changed")
	}
}

func TestGoogleClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/language/translate/v2" || r.URL.Query().Get("key") != "api-key" {
			t.Errorf("unexpected request %s", r.URL)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["source"]; ok {
			t.Error("source language must be auto-detected")
		}
		if body["target"] != "ta" || body["q"] != "Loops & lists" {
			t.Errorf("body = %v", body)
		}
		_, _ = w.Write([]byte(`{"data":{"translations":[{"translatedText":"சுழல்கள் &amp; பட்டியல்கள்","detectedSourceLanguage":"en"}]}}`))
	}))
	defer srv.Close()

	c := NewGoogleClient(srv.URL, "api-key", time.Second)
	got, err := c.Translate(context.Background(), "Loops & lists", "ta")
	if err != nil {
		t.Fatal(err)
	}
	if got != "சுழல்கள் & பட்டியல்கள்" {
		t.Fatalf("got %q", got)
	}
}

func TestGoogleClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := NewGoogleClient(srv.URL, "bad", time.Second).Translate(context.Background(), "x", "hi"); err == nil {
		t.Fatal("expected error")
	}
}
