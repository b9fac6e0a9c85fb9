package graphengine

import (
	"bytes"
	"encoding/json"
	"time"
)

// SearchOutput absorbs the two response shapes remote graph services emit
// for a relevance search: either a bare array of edges or an object exposing
// an "edges" collection. Both decode into the same edge list here, so the
// variance never leaks past this type.
type SearchOutput struct {
	Edges []remoteEdge
}

type remoteEdge struct {
	SourceNodeUUID string     `json:"source_node_uuid"`
	Name           string     `json:"name"`
	TargetNodeUUID string     `json:"target_node_uuid"`
	Fact           string     `json:"fact"`
	CreatedAt      *time.Time `json:"created_at"`
}

func (o *SearchOutput) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &o.Edges)
	}
	var wrapped struct {
		Edges []remoteEdge `json:"edges"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return err
	}
	o.Edges = wrapped.Edges
	return nil
}

// Records converts the decoded edges into the engine's record shape.
func (o *SearchOutput) Records() []EdgeRecord {
	records := make([]EdgeRecord, 0, len(o.Edges))
	for _, e := range o.Edges {
		records = append(records, EdgeRecord{
			SourceID:  e.SourceNodeUUID,
			Relation:  e.Name,
			TargetID:  e.TargetNodeUUID,
			Fact:      e.Fact,
			CreatedAt: e.CreatedAt,
		})
	}
	return records
}
