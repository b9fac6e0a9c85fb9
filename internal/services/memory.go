package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dhruvmojila/memory-api/internal/graphengine"
	"github.com/dhruvmojila/memory-api/internal/platform/logger"
	"github.com/dhruvmojila/memory-api/internal/tenant"
	"github.com/dhruvmojila/memory-api/internal/types"
)

const defaultSearchLimit = 10

type AddKnowledgeInput struct {
	Text              string
	UserID            string
	Category          string
	SourceDescription string
	EpisodeKind       string
	ReferenceTime     time.Time
}

type SearchKnowledgeInput struct {
	Query      string
	UserID     string
	Category   string
	NumResults int
}

// MemoryService is the tenant-scoped ingestion and retrieval layer over the
// graph engine.
type MemoryService interface {
	AddKnowledge(ctx context.Context, in AddKnowledgeInput) *types.AddKnowledgeResult
	SearchKnowledge(ctx context.Context, in SearchKnowledgeInput) (*types.SearchKnowledgeResult, error)
}

type memoryService struct {
	engine graphengine.Engine
	log    *logger.Logger

	// Index bootstrap runs once per process. The engine-side operation is
	// idempotent, so a redundant run from a lost race is harmless.
	indicesBuilt atomic.Bool
}

func NewMemoryService(engine graphengine.Engine, log *logger.Logger) MemoryService {
	return &memoryService{
		engine: engine,
		log:    log.With("service", "MemoryService"),
	}
}

// AddKnowledge constructs an episode for the (user, category) namespace and
// submits it. Submission failures are reported in the result, never returned
// as errors, so one bad episode cannot abort a batch caller.
func (ms *memoryService) AddKnowledge(ctx context.Context, in AddKnowledgeInput) *types.AddKnowledgeResult {
	namespace := tenant.Namespace(in.UserID, in.Category)

	result := &types.AddKnowledgeResult{
		UserID:    in.UserID,
		Category:  in.Category,
		Namespace: namespace,
	}
	if in.UserID == "" || in.Category == "" {
		result.Error = "user_id and category are required"
		return result
	}

	if err := ms.ensureIndices(ctx); err != nil {
		result.Error = err.Error()
		return result
	}

	referenceTime := in.ReferenceTime
	if referenceTime.IsZero() {
		referenceTime = time.Now()
	}
	sourceDescription := in.SourceDescription
	if sourceDescription == "" {
		sourceDescription = fmt.Sprintf("Knowledge from %s in %s category", in.UserID, in.Category)
	}
	kind := in.EpisodeKind
	if kind == "" {
		kind = graphengine.EpisodeKindText
	}

	ref, err := ms.engine.SubmitEpisode(ctx, graphengine.Episode{
		// Category plus submission instant keeps concurrent episode names
		// apart; uniqueness is carried by the engine-assigned identifier.
		Name:              fmt.Sprintf("%s_%s", in.Category, time.Now().Format(time.RFC3339Nano)),
		Body:              in.Text,
		SourceDescription: sourceDescription,
		Kind:              kind,
		ReferenceTime:     referenceTime,
		Namespace:         namespace,
	})
	if err != nil {
		ms.log.Warn("episode submission failed", "namespace", namespace, "error", err)
		result.Error = err.Error()
		return result
	}

	ms.log.Info("episode added", "namespace", namespace, "episode_uuid", ref.ID)
	result.Success = true
	result.EpisodeUUID = ref.ID
	result.Timestamp = referenceTime.Format(time.RFC3339)
	result.EpisodeKind = kind
	return result
}

// SearchKnowledge resolves the namespace scope, queries the engine and
// normalizes the hits. The returned error is non-nil only when namespace
// enumeration fails; search failures come back as Success=false.
func (ms *memoryService) SearchKnowledge(ctx context.Context, in SearchKnowledgeInput) (*types.SearchKnowledgeResult, error) {
	var namespaces []string
	if in.Category != "" {
		namespaces = []string{tenant.Namespace(in.UserID, in.Category)}
	} else {
		// Namespaces can appear between calls, so enumeration always goes
		// back to the engine.
		var err error
		namespaces, err = ms.engine.NamespacesByPrefix(ctx, tenant.Prefix(in.UserID))
		if err != nil {
			return nil, fmt.Errorf("enumerate namespaces: %w", err)
		}
	}

	if len(namespaces) == 0 {
		return &types.SearchKnowledgeResult{
			Success:    true,
			Namespaces: []string{},
			Query:      in.Query,
			NumResults: 0,
			Facts:      []types.Fact{},
		}, nil
	}

	limit := in.NumResults
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	records, err := ms.engine.Search(ctx, in.Query, namespaces, limit)
	if err != nil {
		ms.log.Warn("graph search failed", "namespaces", namespaces, "error", err)
		return &types.SearchKnowledgeResult{
			Success:    false,
			Namespaces: namespaces,
			Error:      err.Error(),
			Facts:      []types.Fact{},
		}, nil
	}

	facts := NormalizeFacts(records)
	return &types.SearchKnowledgeResult{
		Success:    true,
		Namespaces: namespaces,
		Query:      in.Query,
		NumResults: len(facts),
		Facts:      facts,
	}, nil
}

func (ms *memoryService) ensureIndices(ctx context.Context) error {
	if ms.indicesBuilt.Load() {
		return nil
	}
	if err := ms.engine.BuildIndices(ctx); err != nil {
		return fmt.Errorf("build indices: %w", err)
	}
	ms.indicesBuilt.Store(true)
	return nil
}
