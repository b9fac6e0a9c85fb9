package services

import (
	"context"
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"github.com/dhruvmojila/memory-api/internal/graphengine"
	"github.com/dhruvmojila/memory-api/internal/platform/logger"
	"github.com/dhruvmojila/memory-api/internal/tenant"
	"github.com/dhruvmojila/memory-api/internal/types"
)

// Display canvas for exported nodes. Placement is pseudo-random; real layout
// belongs to the frontend graph library.
const (
	canvasWidth  = 800.0
	canvasHeight = 600.0
)

// GraphService materializes a namespace scope as a layout-ready node/edge
// set for interactive display.
type GraphService interface {
	Export(ctx context.Context, userID, category string) (*types.GraphExport, error)
}

type graphService struct {
	engine graphengine.Engine
	log    *logger.Logger
}

func NewGraphService(engine graphengine.Engine, log *logger.Logger) GraphService {
	return &graphService{
		engine: engine,
		log:    log.With("service", "GraphService"),
	}
}

func (gs *graphService) Export(ctx context.Context, userID, category string) (*types.GraphExport, error) {
	var namespaces []string
	if category != "" {
		namespaces = []string{tenant.Namespace(userID, category)}
	} else {
		var err error
		namespaces, err = gs.engine.NamespacesByPrefix(ctx, tenant.Prefix(userID))
		if err != nil {
			return nil, fmt.Errorf("enumerate namespaces: %w", err)
		}
	}

	export := &types.GraphExport{Nodes: []types.GraphNode{}, Edges: []types.GraphEdge{}}
	if len(namespaces) == 0 {
		return export, nil
	}

	var (
		entities      []graphengine.Entity
		relationships []graphengine.Relationship
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		entities, err = gs.engine.Entities(gctx, namespaces)
		return err
	})
	g.Go(func() error {
		var err error
		relationships, err = gs.engine.Relationships(gctx, namespaces)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("export graph: %w", err)
	}

	inScope := make(map[string]bool, len(entities))
	for _, en := range entities {
		inScope[en.ID] = true
		export.Nodes = append(export.Nodes, types.GraphNode{
			ID:   en.ID,
			Data: types.GraphNodeData{Label: nodeLabel(en.Properties)},
			Position: types.GraphNodePosition{
				X: rand.Float64() * canvasWidth,
				Y: rand.Float64() * canvasHeight,
			},
			Properties: en.Properties,
		})
	}

	for _, rel := range relationships {
		// Both endpoints must be inside the scoped namespace set; the export
		// never exposes an edge reaching outside it.
		if !inScope[rel.SourceID] || !inScope[rel.TargetID] {
			continue
		}
		export.Edges = append(export.Edges, types.GraphEdge{
			ID:         rel.ID,
			Source:     rel.SourceID,
			Target:     rel.TargetID,
			Label:      rel.Relation,
			Properties: rel.Properties,
		})
	}

	gs.log.Debug("graph exported", "namespaces", namespaces, "nodes", len(export.Nodes), "edges", len(export.Edges))
	return export, nil
}

// nodeLabel picks the display label: first non-empty of name, title,
// identifier, then the literal "Node".
func nodeLabel(props map[string]any) string {
	for _, key := range []string{"name", "title", "identifier"} {
		if v, ok := props[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return "Node"
}
