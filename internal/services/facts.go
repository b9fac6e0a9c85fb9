package services

import (
	"time"

	"github.com/dhruvmojila/memory-api/internal/graphengine"
	"github.com/dhruvmojila/memory-api/internal/types"
)

// NormalizeFacts converts engine edge records into the uniform fact shape
// exposed by the API. This is the single point where retrieval results take
// their final form; callers never see engine records.
func NormalizeFacts(records []graphengine.EdgeRecord) []types.Fact {
	facts := make([]types.Fact, 0, len(records))
	for _, rec := range records {
		fact := types.Fact{
			Source:   rec.SourceID,
			Relation: rec.Relation,
			Target:   rec.TargetID,
			Fact:     rec.Fact,
		}
		if rec.CreatedAt != nil {
			fact.CreatedAt = rec.CreatedAt.UTC().Format(time.RFC3339)
		}
		facts = append(facts, fact)
	}
	return facts
}
