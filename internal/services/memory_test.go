package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dhruvmojila/memory-api/internal/graphengine"
)

func TestAddKnowledgeDefaultsAndResult(t *testing.T) {
	engine := &fakeEngine{}
	ms := NewMemoryService(engine, testLogger(t))

	result := ms.AddKnowledge(context.Background(), AddKnowledgeInput{
		Text:     "Alice met Bob in Paris.",
		UserID:   "u1",
		Category: "travel",
	})
	if !result.Success {
		t.Fatalf("success=false, error=%q", result.Error)
	}
	if result.Namespace != "user_u1_travel" {
		t.Fatalf("namespace=%q", result.Namespace)
	}
	if result.EpisodeUUID == "" || result.Timestamp == "" {
		t.Fatalf("missing episode metadata: %+v", result)
	}
	if result.EpisodeKind != "text" {
		t.Fatalf("episode kind=%q, want text", result.EpisodeKind)
	}

	if len(engine.submitted) != 1 {
		t.Fatalf("submitted=%d, want 1", len(engine.submitted))
	}
	ep := engine.submitted[0]
	if ep.SourceDescription != "Knowledge from u1 in travel category" {
		t.Fatalf("source description=%q", ep.SourceDescription)
	}
	if !strings.HasPrefix(ep.Name, "travel_") {
		t.Fatalf("episode name=%q, want travel_ prefix", ep.Name)
	}
	if ep.ReferenceTime.IsZero() {
		t.Fatal("reference time not defaulted")
	}
}

func TestAddKnowledgeCapturesSubmissionFailure(t *testing.T) {
	engine := &fakeEngine{submitErr: errors.New("engine rejected episode")}
	ms := NewMemoryService(engine, testLogger(t))

	result := ms.AddKnowledge(context.Background(), AddKnowledgeInput{
		Text:     "some text",
		UserID:   "u1",
		Category: "travel",
	})
	if result.Success {
		t.Fatal("expected failure result")
	}
	if !strings.Contains(result.Error, "engine rejected episode") {
		t.Fatalf("error=%q", result.Error)
	}
	if result.Namespace != "user_u1_travel" {
		t.Fatalf("namespace=%q", result.Namespace)
	}
}

func TestAddKnowledgeBuildsIndicesOnce(t *testing.T) {
	engine := &fakeEngine{}
	ms := NewMemoryService(engine, testLogger(t))

	for i := 0; i < 3; i++ {
		if result := ms.AddKnowledge(context.Background(), AddKnowledgeInput{
			Text: "t", UserID: "u1", Category: "c",
		}); !result.Success {
			t.Fatalf("add %d failed: %q", i, result.Error)
		}
	}
	if engine.buildIndicesCalls != 1 {
		t.Fatalf("buildIndicesCalls=%d, want 1", engine.buildIndicesCalls)
	}
}

func TestAddKnowledgePreservesExplicitFields(t *testing.T) {
	engine := &fakeEngine{}
	ms := NewMemoryService(engine, testLogger(t))

	ref := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	result := ms.AddKnowledge(context.Background(), AddKnowledgeInput{
		Text:              "t",
		UserID:            "u1",
		Category:          "c",
		SourceDescription: "imported notes",
		ReferenceTime:     ref,
	})
	if !result.Success {
		t.Fatalf("failed: %q", result.Error)
	}
	if engine.submitted[0].SourceDescription != "imported notes" {
		t.Fatalf("source description=%q", engine.submitted[0].SourceDescription)
	}
	if result.Timestamp != ref.Format(time.RFC3339) {
		t.Fatalf("timestamp=%q", result.Timestamp)
	}
}

func TestSearchKnowledgeSingleCategory(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	engine := &fakeEngine{
		searchRecords: []graphengine.EdgeRecord{
			{SourceID: "a", Relation: "MET", TargetID: "b", Fact: "Alice met Bob in Paris.", CreatedAt: &created},
		},
	}
	ms := NewMemoryService(engine, testLogger(t))

	result, err := ms.SearchKnowledge(context.Background(), SearchKnowledgeInput{
		Query:    "Where did Alice meet Bob?",
		UserID:   "u1",
		Category: "travel",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.NumResults != 1 {
		t.Fatalf("result: %+v", result)
	}
	if len(engine.lastNamespaces) != 1 || engine.lastNamespaces[0] != "user_u1_travel" {
		t.Fatalf("namespaces=%v", engine.lastNamespaces)
	}
	if engine.lastLimit != 10 {
		t.Fatalf("limit=%d, want default 10", engine.lastLimit)
	}
	fact := result.Facts[0]
	if fact.Source != "a" || fact.Relation != "MET" || fact.Target != "b" {
		t.Fatalf("fact: %+v", fact)
	}
	if !strings.Contains(fact.Fact, "Paris") {
		t.Fatalf("fact statement=%q", fact.Fact)
	}
	if fact.CreatedAt != "2026-01-02T03:04:05Z" {
		t.Fatalf("created_at=%q", fact.CreatedAt)
	}
}

func TestSearchKnowledgeEmptyNamespaceSetSkipsEngine(t *testing.T) {
	engine := &fakeEngine{namespaces: nil}
	ms := NewMemoryService(engine, testLogger(t))

	result, err := ms.SearchKnowledge(context.Background(), SearchKnowledgeInput{
		Query:  "anything",
		UserID: "u-without-data",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatal("want success for empty scope")
	}
	if result.NumResults != 0 || len(result.Facts) != 0 {
		t.Fatalf("result: %+v", result)
	}
	if engine.searchCalls != 0 {
		t.Fatalf("searchCalls=%d, want 0", engine.searchCalls)
	}
}

func TestSearchKnowledgeAllCategories(t *testing.T) {
	engine := &fakeEngine{
		namespaces: []string{"user_u1_travel", "user_u1_finance"},
	}
	ms := NewMemoryService(engine, testLogger(t))

	result, err := ms.SearchKnowledge(context.Background(), SearchKnowledgeInput{
		Query:  "q",
		UserID: "u1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success {
		t.Fatalf("result: %+v", result)
	}
	if len(engine.lastNamespaces) != 2 {
		t.Fatalf("namespaces=%v", engine.lastNamespaces)
	}
}

func TestSearchKnowledgeEnumerationFailurePropagates(t *testing.T) {
	engine := &fakeEngine{namespacesErr: errors.New("bolt connection refused")}
	ms := NewMemoryService(engine, testLogger(t))

	_, err := ms.SearchKnowledge(context.Background(), SearchKnowledgeInput{
		Query:  "q",
		UserID: "u1",
	})
	if err == nil {
		t.Fatal("expected enumeration failure to propagate")
	}
}

func TestSearchKnowledgeEngineFailureIsStructured(t *testing.T) {
	engine := &fakeEngine{searchErr: errors.New("index unavailable")}
	ms := NewMemoryService(engine, testLogger(t))

	result, err := ms.SearchKnowledge(context.Background(), SearchKnowledgeInput{
		Query:    "q",
		UserID:   "u1",
		Category: "travel",
	})
	if err != nil {
		t.Fatalf("search failure must not propagate as error, got %v", err)
	}
	if result.Success {
		t.Fatal("want success=false")
	}
	if !strings.Contains(result.Error, "index unavailable") {
		t.Fatalf("error=%q", result.Error)
	}
	if len(result.Facts) != 0 {
		t.Fatalf("facts=%v, want empty", result.Facts)
	}
}
