package graphengine

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dhruvmojila/memory-api/internal/platform/groq"
)

const extractionSystemPrompt = `You extract knowledge triples from text.
Return a JSON array, nothing else. Each element has exactly these keys:
  "source":   the subject entity name
  "relation": an UPPER_SNAKE_CASE relation name
  "target":   the object entity name
  "fact":     one self-contained sentence stating the relationship
Return [] if the text contains no factual relationships.`

// triple is one extracted (subject, relation, object) with its supporting
// fact sentence.
type triple struct {
	Source   string `json:"source"`
	Relation string `json:"relation"`
	Target   string `json:"target"`
	Fact     string `json:"fact"`
}

func extractTriples(ctx context.Context, llm groq.Client, text string) ([]triple, error) {
	raw, err := llm.Generate(ctx, extractionSystemPrompt, text)
	if err != nil {
		return nil, fmt.Errorf("extract triples: %w", err)
	}
	triples, err := parseTriples(raw)
	if err != nil {
		return nil, fmt.Errorf("extract triples: %w", err)
	}
	return triples, nil
}

// parseTriples tolerates fenced or prose-wrapped model output by slicing out
// the outermost JSON array before unmarshalling.
func parseTriples(raw string) ([]triple, error) {
	s := strings.TrimSpace(raw)
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in model output")
	}

	var triples []triple
	if err := json.Unmarshal([]byte(s[start:end+1]), &triples); err != nil {
		return nil, fmt.Errorf("decode triples: %w", err)
	}

	valid := triples[:0]
	for _, tr := range triples {
		tr.Source = strings.TrimSpace(tr.Source)
		tr.Relation = strings.TrimSpace(tr.Relation)
		tr.Target = strings.TrimSpace(tr.Target)
		tr.Fact = strings.TrimSpace(tr.Fact)
		if tr.Source == "" || tr.Relation == "" || tr.Target == "" {
			continue
		}
		if tr.Fact == "" {
			tr.Fact = fmt.Sprintf("%s %s %s", tr.Source, strings.ToLower(strings.ReplaceAll(tr.Relation, "_", " ")), tr.Target)
		}
		valid = append(valid, tr)
	}
	return valid, nil
}
