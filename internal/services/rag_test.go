package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dhruvmojila/memory-api/internal/types"
)

type fakeLLM struct {
	lastSystem string
	lastUser   string
	response   string
	err        error
}

func (f *fakeLLM) Generate(ctx context.Context, system string, user string) (string, error) {
	f.lastSystem = system
	f.lastUser = user
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestAnswerUsesOnlyFactContext(t *testing.T) {
	llm := &fakeLLM{response: "Alice met Bob in Paris."}
	rs := NewRAGService(llm, testLogger(t))

	facts := []types.Fact{
		{Fact: "Alice met Bob in Paris."},
		{Fact: "Bob works at Acme."},
	}
	answer, err := rs.Answer(context.Background(), "Where did Alice meet Bob?", facts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "Alice met Bob in Paris." {
		t.Fatalf("answer=%q", answer)
	}
	if !strings.Contains(llm.lastUser, "Alice met Bob in Paris.. Bob works at Acme.") {
		t.Fatalf("context not joined with fixed separator: %q", llm.lastUser)
	}
	if !strings.Contains(llm.lastSystem, "only from the given context") {
		t.Fatalf("grounding instruction missing: %q", llm.lastSystem)
	}
}

func TestAnswerWithNoFactsUsesSentinel(t *testing.T) {
	llm := &fakeLLM{response: "I do not know based on the available memory."}
	rs := NewRAGService(llm, testLogger(t))

	answer, err := rs.Answer(context.Background(), "Where did Alice meet Bob?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer == "" {
		t.Fatal("answer must be non-empty even without facts")
	}
	if !strings.Contains(llm.lastUser, NoFactsContext) {
		t.Fatalf("sentinel context missing: %q", llm.lastUser)
	}
}

func TestAnswerPropagatesModelFailure(t *testing.T) {
	boom := errors.New("rate limit exceeded repeatedly")
	rs := NewRAGService(&fakeLLM{err: boom}, testLogger(t))

	_, err := rs.Answer(context.Background(), "q", nil)
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v, want wrapped %v", err, boom)
	}
}

func TestBuildFactContext(t *testing.T) {
	cases := []struct {
		name  string
		facts []types.Fact
		want  string
	}{
		{
			name: "empty",
			want: NoFactsContext,
		},
		{
			name:  "blank facts only",
			facts: []types.Fact{{Fact: "  "}},
			want:  NoFactsContext,
		},
		{
			name:  "joined",
			facts: []types.Fact{{Fact: "A"}, {Fact: "B"}},
			want:  "A. B",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := BuildFactContext(tc.facts); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCleanResponse(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "tags and whitespace",
			in:   "  <b>Paris</b>   is the   capital  ",
			want: "Paris is the capital",
		},
		{
			name: "multiline",
			in:   "Paris\n\nis\tthe capital",
			want: "Paris is the capital",
		},
		{
			name: "untouched",
			in:   "plain answer",
			want: "plain answer",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanResponse(tc.in); got != tc.want {
				t.Fatalf("CleanResponse(%q)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
