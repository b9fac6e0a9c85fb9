// Package graphengine defines the boundary to the knowledge-graph store and
// the adapters that implement it. Everything above this package speaks in
// episodes, edge records and namespaces; nothing above it sees Cypher or the
// remote wire format.
package graphengine

import (
	"context"
	"time"
)

// Episode is one unit of ingested knowledge. The engine owns it once
// submitted; callers only read back the assigned identifier.
type Episode struct {
	Name              string
	Body              string
	SourceDescription string
	Kind              string
	ReferenceTime     time.Time
	Namespace         string
}

type EpisodeRef struct {
	ID string
}

// EdgeRecord is a relationship hit returned by relevance search, before
// normalization into the API-facing fact shape.
type EdgeRecord struct {
	SourceID  string
	Relation  string
	TargetID  string
	Fact      string
	CreatedAt *time.Time
}

// Entity and Relationship back the visualization export.
type Entity struct {
	ID         string
	Namespace  string
	Properties map[string]any
}

type Relationship struct {
	ID         string
	SourceID   string
	TargetID   string
	Relation   string
	Namespace  string
	Properties map[string]any
}

// Engine is the external graph collaborator. Implementations must make
// BuildIndices safe to run more than once.
type Engine interface {
	BuildIndices(ctx context.Context) error
	SubmitEpisode(ctx context.Context, ep Episode) (EpisodeRef, error)
	Search(ctx context.Context, query string, namespaces []string, limit int) ([]EdgeRecord, error)
	NamespacesByPrefix(ctx context.Context, prefix string) ([]string, error)
	Entities(ctx context.Context, namespaces []string) ([]Entity, error)
	Relationships(ctx context.Context, namespaces []string) ([]Relationship, error)
	Close(ctx context.Context) error
}

const (
	// EpisodeKindText is the default episode kind for raw text ingestion.
	EpisodeKindText = "text"
)
