package types

// Fact is one normalized relationship retrieved from the knowledge graph.
// Its lifetime is a single retrieval response; nothing persists it.
type Fact struct {
	Source    string `json:"source"`
	Relation  string `json:"relation"`
	Target    string `json:"target"`
	Fact      string `json:"fact"`
	CreatedAt string `json:"created_at,omitempty"`
}

// AddKnowledgeResult reports one ingestion attempt. Failures are data, not
// errors: a batch caller keeps going when a single episode is rejected.
type AddKnowledgeResult struct {
	Success     bool   `json:"success"`
	UserID      string `json:"user_id"`
	Category    string `json:"category"`
	Namespace   string `json:"group_id"`
	EpisodeUUID string `json:"episode_uuid,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
	EpisodeKind string `json:"episode_type,omitempty"`
	Error       string `json:"error,omitempty"`
}

// SearchKnowledgeResult carries the normalized facts for one query. When
// Success is false the facts are unusable, not fatal.
type SearchKnowledgeResult struct {
	Success    bool     `json:"success"`
	Namespaces []string `json:"group_id"`
	Query      string   `json:"query,omitempty"`
	NumResults int      `json:"num_results"`
	Facts      []Fact   `json:"facts"`
	Error      string   `json:"error,omitempty"`
}

// Graph visualization shapes. Positions are a presentation artifact assigned
// at export time, not stored coordinates.
type GraphNodeData struct {
	Label string `json:"label"`
}

type GraphNodePosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type GraphNode struct {
	ID         string            `json:"id"`
	Data       GraphNodeData     `json:"data"`
	Position   GraphNodePosition `json:"position"`
	Properties map[string]any    `json:"properties,omitempty"`
}

type GraphEdge struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`
	Target     string         `json:"target"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
}

type GraphExport struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
