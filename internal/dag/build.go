package dag

import (
	"context"
	"fmt"

	"github.com/kbbdata/fecho/internal/config"
	"github.com/kbbdata/fecho/internal/ctxlog"
)

// Build constructs a complete, validated step graph from a pipeline model.
// Declared step order is the execution order; the explicit edge set exists
// to validate that order and to expose branch structure.
func Build(ctx context.Context, model *config.Model) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")

	graph := New()

	// First pass: create all step nodes.
	for _, s := range model.Steps {
		graph.AddNode(s.Key)
	}
	logger.Debug("Build: Node creation complete.", "node_count", graph.Len())

	// Second pass: link depends_on edges.
	for _, s := range model.Steps {
		for _, dep := range s.DependsOn {
			if err := graph.AddEdge(dep, s.Key); err != nil {
				return nil, fmt.Errorf("step %q: %w", s.Key, err)
			}
		}
	}
	logger.Debug("Build: Node linking complete.")

	if err := graph.DetectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Build: Cycle detection passed.")

	if err := validateOrder(model); err != nil {
		return nil, err
	}
	logger.Debug("Build: Graph construction successful.")
	return graph, nil
}

// validateOrder checks that the declared step order is a valid topological
// order, i.e. every dependency is declared before the step that needs it.
func validateOrder(model *config.Model) error {
	for _, s := range model.Steps {
		for _, depKey := range s.DependsOn {
			dep, ok := model.Step(depKey)
			if !ok {
				return fmt.Errorf("step %q depends on unknown step %q", s.Key, depKey)
			}
			if dep.Ordinal >= s.Ordinal {
				return fmt.Errorf("step %q is declared before its dependency %q", s.Key, depKey)
			}
		}
	}
	return nil
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}
