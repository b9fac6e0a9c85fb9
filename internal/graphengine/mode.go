package graphengine

import (
	"fmt"
	"strings"

	"github.com/dhruvmojila/memory-api/internal/platform/envutil"
	"github.com/dhruvmojila/memory-api/internal/platform/groq"
	"github.com/dhruvmojila/memory-api/internal/platform/logger"
	"github.com/dhruvmojila/memory-api/internal/platform/neo4jdb"
)

const (
	ModeNeo4j  = "neo4j"
	ModeRemote = "remote"
)

// FromEnv selects the engine implementation. GRAPH_ENGINE=remote points at a
// external HTTP graph service; the default is the embedded Neo4j adapter.
func FromEnv(log *logger.Logger, llm groq.Client) (Engine, error) {
	mode := strings.ToLower(envutil.String("GRAPH_ENGINE", ModeNeo4j))
	switch mode {
	case ModeRemote:
		return NewRemoteEngine(log)
	case ModeNeo4j:
		client, err := neo4jdb.NewFromEnv(log)
		if err != nil {
			return nil, err
		}
		return NewNeo4jEngine(client, llm, log)
	default:
		return nil, fmt.Errorf("graphengine: unknown GRAPH_ENGINE mode %q", mode)
	}
}
