package graphengine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/dhruvmojila/memory-api/internal/platform/groq"
	"github.com/dhruvmojila/memory-api/internal/platform/logger"
	"github.com/dhruvmojila/memory-api/internal/platform/neo4jdb"
)

// Neo4jEngine stores episodes and extracted knowledge directly in Neo4j.
// Episode ingestion runs the LLM triple extractor and merges the resulting
// entities and RELATES_TO edges under the episode's namespace.
type Neo4jEngine struct {
	client *neo4jdb.Client
	llm    groq.Client
	log    *logger.Logger
}

func NewNeo4jEngine(client *neo4jdb.Client, llm groq.Client, log *logger.Logger) (*Neo4jEngine, error) {
	if client == nil || client.Driver == nil {
		return nil, fmt.Errorf("neo4j engine: client required")
	}
	if llm == nil {
		return nil, fmt.Errorf("neo4j engine: llm client required")
	}
	return &Neo4jEngine{
		client: client,
		llm:    llm,
		log:    log.With("engine", "Neo4j"),
	}, nil
}

// BuildIndices creates the schema the engine depends on. Every statement is
// IF NOT EXISTS, so concurrent or repeated runs are harmless.
func (e *Neo4jEngine) BuildIndices(ctx context.Context) error {
	session := e.client.WriteSession(ctx)
	defer session.Close(ctx)

	statements := []string{
		`CREATE CONSTRAINT episode_uuid_unique IF NOT EXISTS FOR (ep:Episode) REQUIRE ep.uuid IS UNIQUE`,
		`CREATE CONSTRAINT entity_uuid_unique IF NOT EXISTS FOR (en:Entity) REQUIRE en.uuid IS UNIQUE`,
		`CREATE INDEX episode_group_idx IF NOT EXISTS FOR (ep:Episode) ON (ep.group_id)`,
		`CREATE INDEX entity_group_idx IF NOT EXISTS FOR (en:Entity) ON (en.group_id, en.name)`,
		`CREATE FULLTEXT INDEX fact_text IF NOT EXISTS FOR ()-[r:RELATES_TO]-() ON EACH [r.fact]`,
	}
	for _, stmt := range statements {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			return fmt.Errorf("neo4j engine: build indices: %w", err)
		}
		if _, err := res.Consume(ctx); err != nil {
			return fmt.Errorf("neo4j engine: build indices: %w", err)
		}
	}
	e.log.Info("graph indices and constraints ensured")
	return nil
}

func (e *Neo4jEngine) SubmitEpisode(ctx context.Context, ep Episode) (EpisodeRef, error) {
	if ep.Namespace == "" {
		return EpisodeRef{}, fmt.Errorf("neo4j engine: episode namespace required")
	}

	triples, err := extractTriples(ctx, e.llm, ep.Body)
	if err != nil {
		return EpisodeRef{}, err
	}

	episodeID := uuid.NewString()
	now := time.Now().UTC()

	rels := make([]map[string]any, 0, len(triples))
	for _, tr := range triples {
		rels = append(rels, map[string]any{
			"uuid":     uuid.NewString(),
			"source":   tr.Source,
			"relation": tr.Relation,
			"target":   tr.Target,
			"fact":     tr.Fact,
		})
	}

	session := e.client.WriteSession(ctx)
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
CREATE (ep:Episode {
	uuid: $uuid,
	name: $name,
	body: $body,
	source_description: $source_description,
	kind: $kind,
	reference_time: $reference_time,
	group_id: $group_id,
	created_at: $created_at
})
`, map[string]any{
			"uuid":               episodeID,
			"name":               ep.Name,
			"body":               ep.Body,
			"source_description": ep.SourceDescription,
			"kind":               ep.Kind,
			"reference_time":     ep.ReferenceTime.UTC().Format(time.RFC3339Nano),
			"group_id":           ep.Namespace,
			"created_at":         now.Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, err
		}
		if _, err := res.Consume(ctx); err != nil {
			return nil, err
		}

		if len(rels) == 0 {
			return nil, nil
		}
		res, err = tx.Run(ctx, `
UNWIND $rels AS r
MERGE (a:Entity {name: r.source, group_id: $group_id})
ON CREATE SET a.uuid = randomUUID(), a.created_at = $created_at
MERGE (b:Entity {name: r.target, group_id: $group_id})
ON CREATE SET b.uuid = randomUUID(), b.created_at = $created_at
CREATE (a)-[rel:RELATES_TO {
	uuid: r.uuid,
	name: r.relation,
	fact: r.fact,
	group_id: $group_id,
	episode_uuid: $episode_uuid,
	created_at: $created_at
}]->(b)
`, map[string]any{
			"rels":         rels,
			"group_id":     ep.Namespace,
			"episode_uuid": episodeID,
			"created_at":   now.Format(time.RFC3339Nano),
		})
		if err != nil {
			return nil, err
		}
		_, err = res.Consume(ctx)
		return nil, err
	})
	if err != nil {
		return EpisodeRef{}, fmt.Errorf("neo4j engine: submit episode: %w", err)
	}

	e.log.Debug("episode stored", "episode_uuid", episodeID, "namespace", ep.Namespace, "triples", len(rels))
	return EpisodeRef{ID: episodeID}, nil
}

func (e *Neo4jEngine) Search(ctx context.Context, query string, namespaces []string, limit int) ([]EdgeRecord, error) {
	if len(namespaces) == 0 {
		return []EdgeRecord{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	session := e.client.ReadSession(ctx)
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
CALL db.index.fulltext.queryRelationships('fact_text', $query) YIELD relationship, score
WHERE relationship.group_id IN $group_ids
RETURN startNode(relationship).uuid AS source,
       relationship.name AS relation,
       endNode(relationship).uuid AS target,
       relationship.fact AS fact,
       relationship.created_at AS created_at
ORDER BY score DESC
LIMIT $limit
`, map[string]any{
			"query":     query,
			"group_ids": namespaces,
			"limit":     limit,
		})
		if err != nil {
			return nil, err
		}

		var out []EdgeRecord
		for res.Next(ctx) {
			rec := res.Record()
			out = append(out, EdgeRecord{
				SourceID:  stringValue(rec, "source"),
				Relation:  stringValue(rec, "relation"),
				TargetID:  stringValue(rec, "target"),
				Fact:      stringValue(rec, "fact"),
				CreatedAt: timeValue(rec, "created_at"),
			})
		}
		return out, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j engine: search: %w", err)
	}
	out, _ := records.([]EdgeRecord)
	if out == nil {
		out = []EdgeRecord{}
	}
	return out, nil
}

func (e *Neo4jEngine) NamespacesByPrefix(ctx context.Context, prefix string) ([]string, error) {
	session := e.client.ReadSession(ctx)
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (n)
WHERE n.group_id IS NOT NULL AND n.group_id STARTS WITH $prefix
RETURN DISTINCT n.group_id AS group_id
`, map[string]any{"prefix": prefix})
		if err != nil {
			return nil, err
		}
		var out []string
		for res.Next(ctx) {
			out = append(out, stringValue(res.Record(), "group_id"))
		}
		return out, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j engine: enumerate namespaces: %w", err)
	}
	out, _ := records.([]string)
	return out, nil
}

func (e *Neo4jEngine) Entities(ctx context.Context, namespaces []string) ([]Entity, error) {
	if len(namespaces) == 0 {
		return []Entity{}, nil
	}

	session := e.client.ReadSession(ctx)
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (en:Entity)
WHERE en.group_id IN $group_ids
RETURN en.uuid AS uuid, en.group_id AS group_id, properties(en) AS props
`, map[string]any{"group_ids": namespaces})
		if err != nil {
			return nil, err
		}
		var out []Entity
		for res.Next(ctx) {
			rec := res.Record()
			props, _ := mapValue(rec, "props")
			out = append(out, Entity{
				ID:         stringValue(rec, "uuid"),
				Namespace:  stringValue(rec, "group_id"),
				Properties: props,
			})
		}
		return out, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j engine: query entities: %w", err)
	}
	out, _ := records.([]Entity)
	if out == nil {
		out = []Entity{}
	}
	return out, nil
}

// Relationships returns edges whose endpoints both lie inside the namespace
// filter. Edges reaching outside the scope are never emitted.
func (e *Neo4jEngine) Relationships(ctx context.Context, namespaces []string) ([]Relationship, error) {
	if len(namespaces) == 0 {
		return []Relationship{}, nil
	}

	session := e.client.ReadSession(ctx)
	defer session.Close(ctx)

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
MATCH (a:Entity)-[r:RELATES_TO]->(b:Entity)
WHERE a.group_id IN $group_ids AND b.group_id IN $group_ids AND a.group_id = b.group_id
RETURN r.uuid AS uuid, a.uuid AS source, b.uuid AS target,
       r.name AS relation, r.group_id AS group_id, properties(r) AS props
`, map[string]any{"group_ids": namespaces})
		if err != nil {
			return nil, err
		}
		var out []Relationship
		for res.Next(ctx) {
			rec := res.Record()
			props, _ := mapValue(rec, "props")
			out = append(out, Relationship{
				ID:         stringValue(rec, "uuid"),
				SourceID:   stringValue(rec, "source"),
				TargetID:   stringValue(rec, "target"),
				Relation:   stringValue(rec, "relation"),
				Namespace:  stringValue(rec, "group_id"),
				Properties: props,
			})
		}
		return out, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("neo4j engine: query relationships: %w", err)
	}
	out, _ := records.([]Relationship)
	if out == nil {
		out = []Relationship{}
	}
	return out, nil
}

func (e *Neo4jEngine) Close(ctx context.Context) error {
	return e.client.Close(ctx)
}

func stringValue(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func mapValue(rec *neo4j.Record, key string) (map[string]any, bool) {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

func timeValue(rec *neo4j.Record, key string) *time.Time {
	v, ok := rec.Get(key)
	if !ok || v == nil {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		utc := t.UTC()
		return &utc
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return nil
		}
		utc := parsed.UTC()
		return &utc
	}
	return nil
}
