package services

import (
	"context"
	"fmt"

	"github.com/dhruvmojila/memory-api/internal/graphengine"
	"github.com/dhruvmojila/memory-api/internal/platform/logger"
)

// fakeEngine records calls and serves canned results. Each method fails when
// its corresponding err field is set.
type fakeEngine struct {
	buildIndicesCalls int
	buildIndicesErr   error

	submitted []graphengine.Episode
	submitErr error

	searchCalls    int
	searchRecords  []graphengine.EdgeRecord
	searchErr      error
	lastNamespaces []string
	lastLimit      int

	namespaces    []string
	namespacesErr error

	entities         []graphengine.Entity
	relationships    []graphengine.Relationship
	entitiesErr      error
	relationshipsErr error
}

func (f *fakeEngine) BuildIndices(ctx context.Context) error {
	f.buildIndicesCalls++
	return f.buildIndicesErr
}

func (f *fakeEngine) SubmitEpisode(ctx context.Context, ep graphengine.Episode) (graphengine.EpisodeRef, error) {
	if f.submitErr != nil {
		return graphengine.EpisodeRef{}, f.submitErr
	}
	f.submitted = append(f.submitted, ep)
	return graphengine.EpisodeRef{ID: fmt.Sprintf("ep-%d", len(f.submitted))}, nil
}

func (f *fakeEngine) Search(ctx context.Context, query string, namespaces []string, limit int) ([]graphengine.EdgeRecord, error) {
	f.searchCalls++
	f.lastNamespaces = namespaces
	f.lastLimit = limit
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.searchRecords, nil
}

func (f *fakeEngine) NamespacesByPrefix(ctx context.Context, prefix string) ([]string, error) {
	if f.namespacesErr != nil {
		return nil, f.namespacesErr
	}
	return f.namespaces, nil
}

func (f *fakeEngine) Entities(ctx context.Context, namespaces []string) ([]graphengine.Entity, error) {
	if f.entitiesErr != nil {
		return nil, f.entitiesErr
	}
	return f.entities, nil
}

func (f *fakeEngine) Relationships(ctx context.Context, namespaces []string) ([]graphengine.Relationship, error) {
	if f.relationshipsErr != nil {
		return nil, f.relationshipsErr
	}
	return f.relationships, nil
}

func (f *fakeEngine) Close(ctx context.Context) error { return nil }

func testLogger(t interface{ Fatalf(string, ...any) }) *logger.Logger {
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}
	return log
}
