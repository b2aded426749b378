package dag

import (
	"sync"
)

// Graph is the validated dependency graph of a pipeline's steps.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by step key.
	nodes map[string]*node
}

// node represents a single step vertex. It is un-exported to enforce
// interaction with the graph via the public API (using step keys), not by
// direct struct manipulation.
type node struct {
	// id is the step key.
	id string
	// deps holds the set of nodes this node depends on (predecessors).
	deps map[string]*node
	// dependents holds the set of nodes that depend on this node (successors).
	dependents map[string]*node
}
