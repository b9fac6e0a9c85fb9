package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/dhruvmojila/memory-api/internal/platform/groq"
	"github.com/dhruvmojila/memory-api/internal/platform/logger"
	"github.com/dhruvmojila/memory-api/internal/types"
)

// NoFactsContext is the context handed to the model when retrieval found
// nothing. The model must answer (or decline) from this sentinel alone.
const NoFactsContext = "No relevant facts found in memory."

const groundedSystemPrompt = `You answer questions based only on the provided context from a knowledge graph.
Answer strictly and only from the given context. Do not use outside knowledge.
If the context does not contain the answer, say you do not know.`

// RAGService composes a grounded answer from retrieved facts. Grounding is
// the contract: the model sees nothing but the fact statements.
type RAGService interface {
	Answer(ctx context.Context, question string, facts []types.Fact) (string, error)
}

type ragService struct {
	llm groq.Client
	log *logger.Logger
}

func NewRAGService(llm groq.Client, log *logger.Logger) RAGService {
	return &ragService{
		llm: llm,
		log: log.With("service", "RAGService"),
	}
}

func (rs *ragService) Answer(ctx context.Context, question string, facts []types.Fact) (string, error) {
	contextStr := BuildFactContext(facts)

	prompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", contextStr, question)
	raw, err := rs.llm.Generate(ctx, groundedSystemPrompt, prompt)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	answer := CleanResponse(raw)
	rs.log.Debug("answer generated", "facts", len(facts), "answer_len", len(answer))
	return answer, nil
}

// BuildFactContext joins fact statements into the model context, or the
// no-facts sentinel when the list is empty.
func BuildFactContext(facts []types.Fact) string {
	statements := make([]string, 0, len(facts))
	for _, f := range facts {
		if strings.TrimSpace(f.Fact) == "" {
			continue
		}
		statements = append(statements, f.Fact)
	}
	if len(statements) == 0 {
		return NoFactsContext
	}
	return strings.Join(statements, ". ")
}

var tagPattern = regexp.MustCompile(`<.*?>`)

// CleanResponse strips markup-like tags and collapses whitespace. This is
// the only post-processing applied to model output; the text is never
// paraphrased or truncated.
func CleanResponse(text string) string {
	text = tagPattern.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}
