package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeLLM answers with a canned reply and records prompts.
type fakeLLM struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeLLM) Complete(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

// cannedReply builds a well-formed reply with n question groups.
func cannedReply(n int) string {
	groups := make([]string, n)
	for i := range groups {
		groups[i] = fmt.Sprintf(`["Question %d", "Right %d", "Wrong %d.1", "Wrong %d.2", "Wrong %d.3"]`, i+1, i+1, i+1, i+1, i+1)
	}
	return "[" + strings.Join(groups, ",\n") + "]"
}

func TestGenerateCountInvariant(t *testing.T) {
	for _, n := range []int{1, 3, 10} {
		llm := &fakeLLM{reply: cannedReply(n)}
		qs, err := NewGenerator(llm, nil).Generate(context.Background(), Request{Skill: "Python", Topic: "Loops", Level: "beginner", Count: n})
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if len(qs) != n {
			t.Fatalf("n=%d: got %d questions", n, len(qs))
		}
		for i, q := range qs {
			answers := q.Answers()
			if len(answers) != 4 || answers[0] != q.Correct {
				t.Fatalf("question %d answers = %v", i, answers)
			}
			if q.Correct != fmt.Sprintf("Right %d", i+1) {
				t.Fatalf("question %d correct = %q", i, q.Correct)
			}
		}
		if len(llm.prompts) != 1 || !strings.Contains(llm.prompts[0], fmt.Sprintf("exactly %d", n)) {
			t.Fatalf("prompt not sent once with count: %v", llm.prompts)
		}
	}
}

func TestGenerateTruncatesExtraGroups(t *testing.T) {
	llm := &fakeLLM{reply: cannedReply(5)}
	qs, err := NewGenerator(llm, nil).Generate(context.Background(), Request{Skill: "Go", Topic: "Maps", Level: Advanced, Count: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(qs) != 3 || qs[2].Text != "Question 3" {
		t.Fatalf("got %+v", qs)
	}
}

func TestGenerateFailures(t *testing.T) {
	req := Request{Skill: "Go", Topic: "Maps", Level: Intermediate, Count: 3}
	cases := []struct {
		name  string
		llm   *fakeLLM
		stage string
	}{
		{"llm down", &fakeLLM{err: errors.New("connection refused")}, StageRequest},
		{"prose reply", &fakeLLM{reply: "Sorry, I can't do that."}, StageParse},
		{"bad group", &fakeLLM{reply: `[["q", "a"]]`}, StageParse},
		{"too few", &fakeLLM{reply: cannedReply(2)}, StageCount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			qs, err := NewGenerator(tc.llm, nil).Generate(context.Background(), req)
			if qs != nil {
				t.Fatalf("expected no questions, got %d", len(qs))
			}
			if !errors.Is(err, ErrGenerationFailed) {
				t.Fatalf("err = %v, want ErrGenerationFailed", err)
			}
			var gerr *GenerationError
			if !errors.As(err, &gerr) || gerr.Stage != tc.stage {
				t.Fatalf("err = %#v, want stage %s", err, tc.stage)
			}
		})
	}
}

func TestGenerateValidatesRequest(t *testing.T) {
	llm := &fakeLLM{reply: cannedReply(1)}
	g := NewGenerator(llm, nil)
	bad := []Request{
		{Skill: "", Topic: "Loops", Level: Beginner, Count: 1},
		{Skill: "Python", Topic: "Loops", Level: "Expert", Count: 1},
		{Skill: "Python", Topic: "Loops", Level: Beginner, Count: 0},
		{Skill: "Python", Topic: "Loops", Level: Beginner, Count: MaxQuestions + 1},
	}
	for _, req := range bad {
		if _, err := g.Generate(context.Background(), req); err == nil {
			t.Errorf("Generate(%+v) succeeded", req)
		} else if errors.Is(err, ErrGenerationFailed) {
			t.Errorf("Generate(%+v) reported generation failure for bad input: %v", req, err)
		}
	}
	if len(llm.prompts) != 0 {
		t.Fatalf("llm called for invalid input")
	}
}
